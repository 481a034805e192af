package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/anachak/anachak/internal/common/cnst"
)

// DefaultRoles are created on every start when missing
var DefaultRoles = []string{cnst.RoleSuperAdmin, cnst.RoleUser}

// EnsureRoles creates the default roles if they don't exist
func EnsureRoles(ctx context.Context, db Database) error {
	for _, name := range DefaultRoles {
		_, err := db.GetRoleByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to look up role %q: %w", name, err)
		}
		if err := db.CreateRole(ctx, &Role{Name: name}); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("failed to create role %q: %w", name, err)
		}
	}
	return nil
}
