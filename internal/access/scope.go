// Package access decides which rows a caller may see and change.
//
// A privileged caller (role "super admin") sees every tenant's rows. Any other
// caller sees only the rows it owns, either directly through a user id or
// through one of its shops.
package access

import (
	"strings"

	"github.com/anachak/anachak/internal/common/cnst"
)

// Scope is the resolved caller used for every visibility decision
type Scope struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
}

// NewScope builds a scope from a user id and role name
func NewScope(userID uint, role string) Scope {
	return Scope{UserID: userID, Role: role}
}

// Privileged reports whether the role grants the unfiltered view
func (s Scope) Privileged() bool {
	return IsSuperAdmin(s.Role)
}

// IsSuperAdmin compares role names the way they are typed in the roles table
func IsSuperAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), cnst.RoleSuperAdmin)
}

// CanMutate reports whether the caller may change a row owned by owner
func (s Scope) CanMutate(owner uint) bool {
	if s.Privileged() {
		return true
	}
	return s.UserID != 0 && s.UserID == owner
}

// OwnerFor returns the owner a new row gets. Only a privileged caller may create on behalf of another user.
func (s Scope) OwnerFor(requested uint) uint {
	if s.Privileged() && requested != 0 {
		return requested
	}
	return s.UserID
}
