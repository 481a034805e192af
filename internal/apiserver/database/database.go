package database

import (
	"context"
	"errors"

	"github.com/anachak/anachak/internal/access"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrInUse     = errors.New("record is still referenced")
)

// ListOptions narrows a list query. Zero values mean "no filter".
type ListOptions struct {
	access.Page
	Query      string `form:"q"`
	ShopID     uint   `form:"shopId"`
	CategoryID uint   `form:"categoryId"`
	ActiveOnly bool   `form:"-"`
}

// Database is the relational data collaborator. Methods taking an access.Scope
// only ever read or write rows visible to that scope; a row outside the scope
// is reported as ErrNotFound.
type Database interface {
	Close() error
	// Transaction runs fn with a context carrying the transaction
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Role operations
	CreateRole(ctx context.Context, role *Role) error
	ListRoles(ctx context.Context) ([]*Role, error)
	GetRole(ctx context.Context, id uint) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uint) (*User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]*User, int64, error)
	UpdateUser(ctx context.Context, user *User) error
	SetUserOnline(ctx context.Context, id uint, online bool) error
	DeleteUser(ctx context.Context, id uint) error

	// Industry operations
	ListIndustries(ctx context.Context, opts ListOptions) ([]*Industry, int64, error)
	GetIndustry(ctx context.Context, id uint) (*Industry, error)
	CreateIndustry(ctx context.Context, industry *Industry) error
	UpdateIndustry(ctx context.Context, industry *Industry) error
	DeleteIndustry(ctx context.Context, id uint) error

	// Shop operations
	ListShops(ctx context.Context, scope access.Scope, opts ListOptions) ([]*Shop, int64, error)
	GetShop(ctx context.Context, scope access.Scope, id uint) (*Shop, error)
	GetPublicShop(ctx context.Context, id uint) (*Shop, error)
	CreateShop(ctx context.Context, shop *Shop) error
	UpdateShop(ctx context.Context, scope access.Scope, shop *Shop) error
	DeleteShop(ctx context.Context, scope access.Scope, id uint) error

	// Category (product type) operations
	ListCategories(ctx context.Context, scope access.Scope, opts ListOptions) ([]*ProductType, int64, error)
	ListOwnerCategories(ctx context.Context, ownerID uint, activeOnly bool) ([]*ProductType, error)
	GetCategory(ctx context.Context, scope access.Scope, id uint) (*ProductType, error)
	CreateCategory(ctx context.Context, category *ProductType) error
	UpdateCategory(ctx context.Context, scope access.Scope, category *ProductType) error
	DeleteCategory(ctx context.Context, scope access.Scope, id uint) error

	// Sale type operations
	ListSaleTypes(ctx context.Context, scope access.Scope, opts ListOptions) ([]*SaleType, int64, error)
	GetSaleType(ctx context.Context, scope access.Scope, id uint) (*SaleType, error)
	CreateSaleType(ctx context.Context, saleType *SaleType) error
	UpdateSaleType(ctx context.Context, scope access.Scope, saleType *SaleType) error
	DeleteSaleType(ctx context.Context, scope access.Scope, id uint) error

	// Product operations
	ListProducts(ctx context.Context, scope access.Scope, opts ListOptions) ([]*Product, int64, error)
	ListShopProducts(ctx context.Context, shopID uint, opts ListOptions) ([]*Product, error)
	GetProduct(ctx context.Context, scope access.Scope, id uint) (*Product, error)
	GetPublicProduct(ctx context.Context, id uint) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, scope access.Scope, product *Product) error
	DeleteProduct(ctx context.Context, scope access.Scope, id uint) error

	// Social contact operations
	ListSocialContacts(ctx context.Context, scope access.Scope, opts ListOptions) ([]*SocialContact, int64, error)
	ListShopSocialContacts(ctx context.Context, shopID uint, activeOnly bool) ([]*SocialContact, error)
	GetSocialContact(ctx context.Context, scope access.Scope, id uint) (*SocialContact, error)
	CreateSocialContact(ctx context.Context, contact *SocialContact) error
	UpdateSocialContact(ctx context.Context, scope access.Scope, contact *SocialContact) error
	DeleteSocialContact(ctx context.Context, scope access.Scope, id uint) error

	// ReferenceIDs lists shop, category or sale type ids visible to scope
	ReferenceIDs(ctx context.Context, kind access.ReferenceKind, scope access.Scope) ([]uint, error)
	// Counts returns dashboard totals visible to scope
	Counts(ctx context.Context, scope access.Scope) (*Counts, error)
}
