package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localTokenTTL = 24 * time.Hour

// Local checks bcrypt hashes stored on the users table. Access tokens live in memory.
type Local struct {
	db      database.Database
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.RWMutex
	tokens map[string]localToken
}

type localToken struct {
	user      AuthUser
	expiresAt time.Time
}

// NewLocal creates a local provider over db
func NewLocal(db database.Database, m *metrics.Metrics) *Local {
	return &Local{
		db:      db,
		metrics: m,
		now:     time.Now,
		tokens:  make(map[string]localToken),
	}
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignIn implements Provider
func (l *Local) SignIn(ctx context.Context, email, password string) (session *AuthSession, err error) {
	defer func(start time.Time) { l.metrics.RemoteCall(collaborator, "sign_in", start, err) }(time.Now())

	user, err := l.db.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	expiresAt := l.now().Add(localTokenTTL)
	au := AuthUser{ID: user.AuthID, Email: user.Email}
	l.mu.Lock()
	l.tokens[token] = localToken{user: au, expiresAt: expiresAt}
	l.mu.Unlock()
	return &AuthSession{AccessToken: token, ExpiresAt: expiresAt, User: au}, nil
}

// GetUser implements Provider
func (l *Local) GetUser(_ context.Context, accessToken string) (*AuthUser, error) {
	l.mu.RLock()
	t, ok := l.tokens[accessToken]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	if l.now().After(t.expiresAt) {
		l.mu.Lock()
		delete(l.tokens, accessToken)
		l.mu.Unlock()
		return nil, ErrInvalidToken
	}
	u := t.user
	return &u, nil
}

// SignOut implements Provider
func (l *Local) SignOut(_ context.Context, accessToken string) error {
	l.mu.Lock()
	delete(l.tokens, accessToken)
	l.mu.Unlock()
	return nil
}

// CreateUser implements Provider. The caller persists PasswordHash on the user row.
func (l *Local) CreateUser(ctx context.Context, email, password string) (*AuthUser, error) {
	_, err := l.db.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &AuthUser{ID: uuid.NewString(), Email: strings.TrimSpace(email), PasswordHash: hash}, nil
}

// UpdateUser implements Provider. An empty password leaves PasswordHash empty.
func (l *Local) UpdateUser(_ context.Context, authID, email, password string) (*AuthUser, error) {
	au := &AuthUser{ID: authID, Email: strings.TrimSpace(email)}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		au.PasswordHash = hash
	}
	return au, nil
}

// DeleteUser implements Provider. Outstanding tokens of the account are revoked.
func (l *Local) DeleteUser(_ context.Context, authID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for token, t := range l.tokens {
		if t.user.ID == authID {
			delete(l.tokens, token)
		}
	}
	return nil
}

var _ Provider = (*Local)(nil)
