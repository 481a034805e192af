// Package session keeps the server-side sessions and resolves who the caller is.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/anachak/anachak/internal/access"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrUserDisabled    = errors.New("user is disabled")
	ErrUnknownUser     = errors.New("no local user for auth account")
)

// Identity is the resolved caller. It is computed once per request.
type Identity struct {
	UserID   uint   `json:"userId"`
	AuthID   string `json:"authId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Scope returns the visibility scope of the identity
func (i *Identity) Scope() access.Scope {
	return access.NewScope(i.UserID, i.Role)
}

// IsSuperAdmin reports whether the identity holds the super admin role
func (i *Identity) IsSuperAdmin() bool {
	return access.IsSuperAdmin(i.Role)
}

// Session is a signed-in browser. ProviderToken is the auth service token and never leaves the server.
type Session struct {
	ID            string    `json:"id"`
	UserID        uint      `json:"userId"`
	AuthID        string    `json:"authId"`
	ProviderToken string    `json:"providerToken"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every session of a user
	DeleteByUser(ctx context.Context, userID uint) error
	// CountByUser returns the number of live sessions of a user
	CountByUser(ctx context.Context, userID uint) (int, error)
}
