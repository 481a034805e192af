// Package provider talks to the authentication collaborator.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidToken       = errors.New("invalid or expired access token")
	ErrUserExists         = errors.New("auth user already exists")
	ErrUserNotFound       = errors.New("auth user not found")
	ErrUnavailable        = errors.New("auth service unavailable")
)

// AuthUser is the account as the authentication service knows it
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// PasswordHash is set by providers that keep credentials on the local user row
	PasswordHash string `json:"-"`
}

// AuthSession is the result of a successful sign-in
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         AuthUser
}

// Provider is the authentication collaborator
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	GetUser(ctx context.Context, accessToken string) (*AuthUser, error)
	SignOut(ctx context.Context, accessToken string) error

	// Admin operations. They use the server-side service key.
	CreateUser(ctx context.Context, email, password string) (*AuthUser, error)
	UpdateUser(ctx context.Context, authID, email, password string) (*AuthUser, error)
	DeleteUser(ctx context.Context, authID string) error
}

// New creates the provider selected by cfg.Provider
func New(cfg *config.AuthConfig, db database.Database, m *metrics.Metrics, logger *zap.Logger) (Provider, error) {
	logger.Info("Initializing auth provider", zap.String("type", cfg.Provider))
	switch cfg.Provider {
	case "local":
		return NewLocal(db, m), nil
	case "gotrue":
		return NewGoTrue(cfg.GoTrue, m, logger), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider: %s", cfg.Provider)
	}
}
