package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/auth/jwt"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager signs callers in and out and authenticates requests
type Manager struct {
	provider provider.Provider
	db       database.Database
	store    Store
	tokens   *jwt.Service
	resolver *Resolver
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a session manager. ttl bounds every session.
func NewManager(p provider.Provider, db database.Database, store Store, tokens *jwt.Service, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = tokens.Duration()
	}
	return &Manager{
		provider: p,
		db:       db,
		store:    store,
		tokens:   tokens,
		resolver: NewResolver(db),
		ttl:      ttl,
		logger:   logger.Named("session"),
		now:      time.Now,
	}
}

// SignInResult is returned to the client after a sign-in
type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  *Identity `json:"user"`
}

// SignIn verifies credentials with the provider, marks the user online and opens a session
func (m *Manager) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	authSession, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := m.resolver.ResolveAccount(ctx, authSession.User)
	if err != nil {
		m.revokeProviderToken(ctx, authSession.AccessToken)
		return nil, err
	}
	if user.Disabled {
		m.revokeProviderToken(ctx, authSession.AccessToken)
		return nil, ErrUserDisabled
	}
	if err := m.db.SetUserOnline(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("failed to mark user online: %w", err)
	}
	m.resolver.Invalidate(user.ID)

	now := m.now()
	expiresAt := now.Add(m.ttl)
	if tokenExpiry := now.Add(m.tokens.Duration()); tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}
	sess := &Session{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		AuthID:        authSession.User.ID,
		ProviderToken: authSession.AccessToken,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	identity := identityOf(user)
	token, tokenExpiry, err := m.tokens.GenerateToken(sess.ID, identity.UserID, identity.Username, identity.Role)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	m.logger.Info("user signed in", zap.Uint("user_id", user.ID), zap.String("role", identity.Role))
	return &SignInResult{Token: token, ExpiresAt: tokenExpiry, Identity: identity}, nil
}

// SignOut closes the session and revokes the provider token. The user is
// marked offline once its last session is gone. Provider failures are logged only.
func (m *Manager) SignOut(ctx context.Context, sessionID string) error {
	sess, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	remaining, err := m.store.CountByUser(ctx, sess.UserID)
	if err != nil {
		m.logger.Warn("failed to count sessions", zap.Uint("user_id", sess.UserID), zap.Error(err))
	}
	if err == nil && remaining == 0 {
		if err := m.db.SetUserOnline(ctx, sess.UserID, false); err != nil && !errors.Is(err, database.ErrNotFound) {
			m.logger.Warn("failed to mark user offline", zap.Uint("user_id", sess.UserID), zap.Error(err))
		}
	}
	m.resolver.Invalidate(sess.UserID)
	m.revokeProviderToken(ctx, sess.ProviderToken)
	return nil
}

func (m *Manager) revokeProviderToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := m.provider.SignOut(ctx, token); err != nil {
		m.logger.Warn("provider sign out failed", zap.Error(err))
	}
}

// Authenticate validates a bearer token and loads its session. The identity
// is resolved separately by Identify so a failed lookup does not reject the request.
func (m *Manager) Authenticate(ctx context.Context, token string) (*jwt.Claims, *Session, error) {
	claims, err := m.tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}
	sess, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, nil, ErrSessionNotFound
	}
	return claims, sess, nil
}

// Identify resolves the identity behind a session
func (m *Manager) Identify(ctx context.Context, sess *Session) (*Identity, error) {
	return m.resolver.Resolve(ctx, sess.UserID)
}

// Refresh drops the cached identity of userID after its row changed
func (m *Manager) Refresh(userID uint) {
	m.resolver.Invalidate(userID)
}

// Revoke closes every session of userID, used when a user is disabled or deleted
func (m *Manager) Revoke(ctx context.Context, userID uint) error {
	m.resolver.Invalidate(userID)
	return m.store.DeleteByUser(ctx, userID)
}
