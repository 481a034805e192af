package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

var userPreloads = []string{"Role"}

// ListRoles implements Database
func (s *Store) ListRoles(ctx context.Context) ([]*Role, error) {
	return listAll[Role](getDBFromContext(ctx, s.db), "id asc", nil)
}

// GetRole implements Database
func (s *Store) GetRole(ctx context.Context, id uint) (*Role, error) {
	return first[Role](getDBFromContext(ctx, s.db), "roles", id, nil)
}

// GetRoleByName implements Database. Names compare case-insensitively.
func (s *Store) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := getDBFromContext(ctx, s.db).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&role).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &role, nil
}

// CreateUser implements Database
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return translateErr(getDBFromContext(ctx, s.db).Omit("Role").Create(user).Error)
}

// GetUser implements Database
func (s *Store) GetUser(ctx context.Context, id uint) (*User, error) {
	return first[User](getDBFromContext(ctx, s.db), "users", id, userPreloads)
}

// GetUserByAuthID implements Database
func (s *Store) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	return s.userWhere(ctx, "auth_id = ?", authID)
}

// GetUserByEmail implements Database
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.userWhere(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) userWhere(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).Preload("Role").Where(query, arg).First(&user).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// ListUsers implements Database. Query matches username or email.
func (s *Store) ListUsers(ctx context.Context, opts ListOptions) ([]*User, int64, error) {
	return listPage[User](getDBFromContext(ctx, s.db), opts.Page, "users.id asc", userPreloads, userLike(opts.Query))
}

func userLike(query string) scopeFn {
	return func(db *gorm.DB) *gorm.DB {
		q := strings.TrimSpace(strings.ToLower(query))
		if q == "" {
			return db
		}
		pattern := "%" + escapeLike(q) + "%"
		return db.Where("(LOWER(users.username) LIKE ? ESCAPE '!' OR LOWER(users.email) LIKE ? ESCAPE '!')", pattern, pattern)
	}
}

// UpdateUser implements Database. An empty Password keeps the stored hash.
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	fields := []string{"username", "email", "phone", "role_id", "disabled", "auth_id"}
	if user.Password != "" {
		fields = append(fields, "password")
	}
	return updateFields(getDBFromContext(ctx, s.db), "users", user.ID, user, fields)
}

// SetUserOnline implements Database
func (s *Store) SetUserOnline(ctx context.Context, id uint, online bool) error {
	db := getDBFromContext(ctx, s.db)
	if err := exists[User](db, "users", id); err != nil {
		return err
	}
	return translateErr(db.Model(&User{}).Where("id = ?", id).Update("status", online).Error)
}

// DeleteUser implements Database. Users still owning shops, categories or sale types are kept.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		if err := ensureUnused[Shop](db, "user_id", id); err != nil {
			return err
		}
		if err := ensureUnused[ProductType](db, "user_id", id); err != nil {
			return err
		}
		if err := ensureUnused[SaleType](db, "user_id", id); err != nil {
			return err
		}
		return deleteOne[User](db, "users", id)
	})
}

// CreateRole implements Database
func (s *Store) CreateRole(ctx context.Context, role *Role) error {
	return translateErr(getDBFromContext(ctx, s.db).Create(role).Error)
}
