package database

import (
	"context"

	"github.com/anachak/anachak/internal/access"
)

// ListIndustries implements Database
func (s *Store) ListIndustries(ctx context.Context, opts ListOptions) ([]*Industry, int64, error) {
	return listPage[Industry](getDBFromContext(ctx, s.db), opts.Page, "industries.id asc", nil,
		nameLike("industries", opts.Query), activeOnly("industries", opts.ActiveOnly))
}

// GetIndustry implements Database
func (s *Store) GetIndustry(ctx context.Context, id uint) (*Industry, error) {
	return first[Industry](getDBFromContext(ctx, s.db), "industries", id, nil)
}

// CreateIndustry implements Database
func (s *Store) CreateIndustry(ctx context.Context, industry *Industry) error {
	return translateErr(getDBFromContext(ctx, s.db).Create(industry).Error)
}

// UpdateIndustry implements Database
func (s *Store) UpdateIndustry(ctx context.Context, industry *Industry) error {
	return updateFields(getDBFromContext(ctx, s.db), "industries", industry.ID, industry,
		[]string{"name", "description", "status"})
}

// DeleteIndustry implements Database
func (s *Store) DeleteIndustry(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		if err := ensureUnused[Shop](db, "industry_id", id); err != nil {
			return err
		}
		return deleteOne[Industry](db, "industries", id)
	})
}

var shopPreloads = []string{"Industry"}

// ListShops implements Database
func (s *Store) ListShops(ctx context.Context, scope access.Scope, opts ListOptions) ([]*Shop, int64, error) {
	return listPage[Shop](getDBFromContext(ctx, s.db), opts.Page, "shops.id asc", shopPreloads,
		OwnedBy(scope, "shops"), nameLike("shops", opts.Query), activeOnly("shops", opts.ActiveOnly))
}

// GetShop implements Database
func (s *Store) GetShop(ctx context.Context, scope access.Scope, id uint) (*Shop, error) {
	return first[Shop](getDBFromContext(ctx, s.db), "shops", id, shopPreloads, OwnedBy(scope, "shops"))
}

// GetPublicShop implements Database. Disabled shops have no public menu.
func (s *Store) GetPublicShop(ctx context.Context, id uint) (*Shop, error) {
	return first[Shop](getDBFromContext(ctx, s.db), "shops", id, shopPreloads, activeOnly("shops", true))
}

// CreateShop implements Database
func (s *Store) CreateShop(ctx context.Context, shop *Shop) error {
	return translateErr(getDBFromContext(ctx, s.db).Omit("Industry").Create(shop).Error)
}

// UpdateShop implements Database. Only a privileged scope may move a shop to another owner.
func (s *Store) UpdateShop(ctx context.Context, scope access.Scope, shop *Shop) error {
	fields := []string{"name", "address", "profile", "banner", "color", "link_location", "status", "industry_id"}
	if scope.Privileged() && shop.UserID != 0 {
		fields = append(fields, "user_id")
	}
	return updateFields(getDBFromContext(ctx, s.db), "shops", shop.ID, shop, fields, OwnedBy(scope, "shops"))
}

// DeleteShop implements Database. Social contacts go with the shop, products block it.
func (s *Store) DeleteShop(ctx context.Context, scope access.Scope, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		if err := exists[Shop](db, "shops", id, OwnedBy(scope, "shops")); err != nil {
			return err
		}
		if err := ensureUnused[Product](db, "shop_id", id); err != nil {
			return err
		}
		if err := db.Where("shop_id = ?", id).Delete(&SocialContact{}).Error; err != nil {
			return translateErr(err)
		}
		return deleteOne[Shop](db, "shops", id, OwnedBy(scope, "shops"))
	})
}

// ListCategories implements Database
func (s *Store) ListCategories(ctx context.Context, scope access.Scope, opts ListOptions) ([]*ProductType, int64, error) {
	return listPage[ProductType](getDBFromContext(ctx, s.db), opts.Page, "product_types.id asc", nil,
		OwnedBy(scope, "product_types"), nameLike("product_types", opts.Query), activeOnly("product_types", opts.ActiveOnly))
}

// ListOwnerCategories implements Database. It backs the public menu tabs.
func (s *Store) ListOwnerCategories(ctx context.Context, ownerID uint, active bool) ([]*ProductType, error) {
	return listAll[ProductType](getDBFromContext(ctx, s.db), "product_types.id asc", nil,
		OwnedBy(access.Scope{UserID: ownerID}, "product_types"), activeOnly("product_types", active))
}

// GetCategory implements Database
func (s *Store) GetCategory(ctx context.Context, scope access.Scope, id uint) (*ProductType, error) {
	return first[ProductType](getDBFromContext(ctx, s.db), "product_types", id, nil, OwnedBy(scope, "product_types"))
}

// CreateCategory implements Database
func (s *Store) CreateCategory(ctx context.Context, category *ProductType) error {
	return translateErr(getDBFromContext(ctx, s.db).Create(category).Error)
}

// UpdateCategory implements Database
func (s *Store) UpdateCategory(ctx context.Context, scope access.Scope, category *ProductType) error {
	return updateFields(getDBFromContext(ctx, s.db), "product_types", category.ID, category,
		[]string{"name", "description", "status"}, OwnedBy(scope, "product_types"))
}

// DeleteCategory implements Database
func (s *Store) DeleteCategory(ctx context.Context, scope access.Scope, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		if err := exists[ProductType](db, "product_types", id, OwnedBy(scope, "product_types")); err != nil {
			return err
		}
		if err := ensureUnused[Product](db, "product_type_id", id); err != nil {
			return err
		}
		return deleteOne[ProductType](db, "product_types", id, OwnedBy(scope, "product_types"))
	})
}

// ListSaleTypes implements Database
func (s *Store) ListSaleTypes(ctx context.Context, scope access.Scope, opts ListOptions) ([]*SaleType, int64, error) {
	return listPage[SaleType](getDBFromContext(ctx, s.db), opts.Page, "sale_types.id asc", nil,
		OwnedBy(scope, "sale_types"), nameLike("sale_types", opts.Query), activeOnly("sale_types", opts.ActiveOnly))
}

// GetSaleType implements Database
func (s *Store) GetSaleType(ctx context.Context, scope access.Scope, id uint) (*SaleType, error) {
	return first[SaleType](getDBFromContext(ctx, s.db), "sale_types", id, nil, OwnedBy(scope, "sale_types"))
}

// CreateSaleType implements Database
func (s *Store) CreateSaleType(ctx context.Context, saleType *SaleType) error {
	return translateErr(getDBFromContext(ctx, s.db).Create(saleType).Error)
}

// UpdateSaleType implements Database
func (s *Store) UpdateSaleType(ctx context.Context, scope access.Scope, saleType *SaleType) error {
	return updateFields(getDBFromContext(ctx, s.db), "sale_types", saleType.ID, saleType,
		[]string{"name", "status"}, OwnedBy(scope, "sale_types"))
}

// DeleteSaleType implements Database
func (s *Store) DeleteSaleType(ctx context.Context, scope access.Scope, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		if err := exists[SaleType](db, "sale_types", id, OwnedBy(scope, "sale_types")); err != nil {
			return err
		}
		if err := ensureUnused[Product](db, "sale_type_id", id); err != nil {
			return err
		}
		return deleteOne[SaleType](db, "sale_types", id, OwnedBy(scope, "sale_types"))
	})
}
