package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/auth/provider"
)

// Resolver turns user ids and auth accounts into identities. Identities are
// cached per user id until invalidated. A load that overlaps an Invalidate is
// returned but not cached.
type Resolver struct {
	db database.Database

	mu    sync.RWMutex
	cache map[uint]*Identity
	gen   map[uint]uint64
}

// NewResolver creates a resolver over db
func NewResolver(db database.Database) *Resolver {
	return &Resolver{db: db, cache: make(map[uint]*Identity), gen: make(map[uint]uint64)}
}

func identityOf(u *database.User) *Identity {
	return &Identity{
		UserID:   u.ID,
		AuthID:   u.AuthID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.RoleName(),
	}
}

// Resolve returns the identity of userID
func (r *Resolver) Resolve(ctx context.Context, userID uint) (*Identity, error) {
	r.mu.RLock()
	id, ok := r.cache[userID]
	gen := r.gen[userID]
	r.mu.RUnlock()
	if ok {
		cp := *id
		return &cp, nil
	}

	user, err := r.db.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	id = identityOf(user)
	r.mu.Lock()
	if r.gen[userID] == gen {
		r.cache[userID] = id
	}
	r.mu.Unlock()
	cp := *id
	return &cp, nil
}

// ResolveAccount finds the local user of an auth account, by auth id first
// and then by email. A match by email adopts the auth id.
func (r *Resolver) ResolveAccount(ctx context.Context, au provider.AuthUser) (*database.User, error) {
	if au.ID != "" {
		user, err := r.db.GetUserByAuthID(ctx, au.ID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	user, err := r.db.GetUserByEmail(ctx, au.Email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	if au.ID != "" && user.AuthID != au.ID {
		user.AuthID = au.ID
		if err := r.db.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to link auth account: %w", err)
		}
	}
	return user, nil
}

// Invalidate drops the cached identity of userID
func (r *Resolver) Invalidate(userID uint) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.gen[userID]++
	r.mu.Unlock()
}
