package database

import (
	"context"
	"fmt"

	"github.com/anachak/anachak/internal/access"
	"gorm.io/gorm"
)

var productPreloads = []string{"Shop", "ProductType", "SaleType"}

func productFilters(opts ListOptions) scopeFn {
	return func(db *gorm.DB) *gorm.DB {
		if opts.ShopID != 0 {
			db = db.Where("products.shop_id = ?", opts.ShopID)
		}
		if opts.CategoryID != 0 {
			db = db.Where("products.product_type_id = ?", opts.CategoryID)
		}
		return db.Scopes(nameLike("products", opts.Query), activeOnly("products", opts.ActiveOnly))
	}
}

// ListProducts implements Database. Products are owned through their shop.
func (s *Store) ListProducts(ctx context.Context, scope access.Scope, opts ListOptions) ([]*Product, int64, error) {
	return listPage[Product](getDBFromContext(ctx, s.db), opts.Page, "products.id asc", productPreloads,
		OwnedThroughShop(scope, "products"), productFilters(opts))
}

// ListShopProducts implements Database. The whole menu is returned, unpaginated.
func (s *Store) ListShopProducts(ctx context.Context, shopID uint, opts ListOptions) ([]*Product, error) {
	opts.ShopID = shopID
	return listAll[Product](getDBFromContext(ctx, s.db), "products.id asc", []string{"ProductType", "SaleType"},
		productFilters(opts))
}

// GetProduct implements Database
func (s *Store) GetProduct(ctx context.Context, scope access.Scope, id uint) (*Product, error) {
	return first[Product](getDBFromContext(ctx, s.db), "products", id, productPreloads, OwnedThroughShop(scope, "products"))
}

// GetPublicProduct implements Database. Hidden products and products of disabled shops are not found.
func (s *Store) GetPublicProduct(ctx context.Context, id uint) (*Product, error) {
	product, err := first[Product](getDBFromContext(ctx, s.db), "products", id, productPreloads, activeOnly("products", true))
	if err != nil {
		return nil, err
	}
	if product.Shop == nil || !product.Shop.Status {
		return nil, ErrNotFound
	}
	return product, nil
}

// CreateProduct implements Database
func (s *Store) CreateProduct(ctx context.Context, product *Product) error {
	return translateErr(getDBFromContext(ctx, s.db).Omit("Shop", "ProductType", "SaleType").Create(product).Error)
}

// UpdateProduct implements Database
func (s *Store) UpdateProduct(ctx context.Context, scope access.Scope, product *Product) error {
	return updateFields(getDBFromContext(ctx, s.db), "products", product.ID, product,
		[]string{"name", "description", "price", "discount", "image", "status", "shop_id", "product_type_id", "sale_type_id"},
		OwnedThroughShop(scope, "products"))
}

// DeleteProduct implements Database
func (s *Store) DeleteProduct(ctx context.Context, scope access.Scope, id uint) error {
	return deleteOne[Product](getDBFromContext(ctx, s.db), "products", id, OwnedThroughShop(scope, "products"))
}

// ListSocialContacts implements Database
func (s *Store) ListSocialContacts(ctx context.Context, scope access.Scope, opts ListOptions) ([]*SocialContact, int64, error) {
	filters := func(db *gorm.DB) *gorm.DB {
		if opts.ShopID != 0 {
			db = db.Where("social_contacts.shop_id = ?", opts.ShopID)
		}
		return db.Scopes(nameLike("social_contacts", opts.Query), activeOnly("social_contacts", opts.ActiveOnly))
	}
	return listPage[SocialContact](getDBFromContext(ctx, s.db), opts.Page, "social_contacts.id asc", []string{"Shop"},
		OwnedThroughShop(scope, "social_contacts"), filters)
}

// ListShopSocialContacts implements Database
func (s *Store) ListShopSocialContacts(ctx context.Context, shopID uint, active bool) ([]*SocialContact, error) {
	return listAll[SocialContact](getDBFromContext(ctx, s.db), "social_contacts.id asc", nil,
		func(db *gorm.DB) *gorm.DB { return db.Where("social_contacts.shop_id = ?", shopID) },
		activeOnly("social_contacts", active))
}

// GetSocialContact implements Database
func (s *Store) GetSocialContact(ctx context.Context, scope access.Scope, id uint) (*SocialContact, error) {
	return first[SocialContact](getDBFromContext(ctx, s.db), "social_contacts", id, []string{"Shop"},
		OwnedThroughShop(scope, "social_contacts"))
}

// CreateSocialContact implements Database
func (s *Store) CreateSocialContact(ctx context.Context, contact *SocialContact) error {
	return translateErr(getDBFromContext(ctx, s.db).Omit("Shop").Create(contact).Error)
}

// UpdateSocialContact implements Database
func (s *Store) UpdateSocialContact(ctx context.Context, scope access.Scope, contact *SocialContact) error {
	return updateFields(getDBFromContext(ctx, s.db), "social_contacts", contact.ID, contact,
		[]string{"name", "link", "description", "status", "shop_id"}, OwnedThroughShop(scope, "social_contacts"))
}

// DeleteSocialContact implements Database
func (s *Store) DeleteSocialContact(ctx context.Context, scope access.Scope, id uint) error {
	return deleteOne[SocialContact](getDBFromContext(ctx, s.db), "social_contacts", id, OwnedThroughShop(scope, "social_contacts"))
}

// ReferenceIDs implements Database and access.ReferenceLookup
func (s *Store) ReferenceIDs(ctx context.Context, kind access.ReferenceKind, scope access.Scope) ([]uint, error) {
	db := getDBFromContext(ctx, s.db)
	ids := make([]uint, 0)
	var err error
	switch kind {
	case access.RefShop:
		err = db.Model(&Shop{}).Scopes(OwnedBy(scope, "shops")).Pluck("shops.id", &ids).Error
	case access.RefCategory:
		err = db.Model(&ProductType{}).Scopes(OwnedBy(scope, "product_types")).Pluck("product_types.id", &ids).Error
	case access.RefSaleType:
		err = db.Model(&SaleType{}).Scopes(OwnedBy(scope, "sale_types")).Pluck("sale_types.id", &ids).Error
	default:
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type countStep struct {
	model any
	dst   *int64
	scope scopeFn
}

// Counts implements Database. Users are only counted for a privileged scope.
func (s *Store) Counts(ctx context.Context, scope access.Scope) (*Counts, error) {
	db := getDBFromContext(ctx, s.db)
	var c Counts
	steps := []countStep{
		{&Product{}, &c.Products, OwnedThroughShop(scope, "products")},
		{&ProductType{}, &c.Categories, OwnedBy(scope, "product_types")},
		{&Shop{}, &c.Shops, OwnedBy(scope, "shops")},
		{&Industry{}, &c.Industries, nil},
	}
	if scope.Privileged() {
		steps = append(steps, countStep{&User{}, &c.Users, nil})
	}
	for _, step := range steps {
		q := db.Model(step.model)
		if step.scope != nil {
			q = q.Scopes(step.scope)
		}
		if err := q.Count(step.dst).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}
