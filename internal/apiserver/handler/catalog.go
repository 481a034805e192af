package handler

import (
	"context"
	"errors"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/dto"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// visibleItems applies the in-memory visibility filter to rows that came from
// a scoped query and wraps each with its editable flag
func visibleItems[T any, I any](ctx context.Context, logger *zap.Logger, scope *access.Scope, rows []*T,
	ownerOf func(*T) uint, wrap func(*T, bool) I) []I {
	rows = access.Visible(ctx, logger, scope, rows, ownerOf)
	items := make([]I, 0, len(rows))
	for _, r := range rows {
		items = append(items, wrap(r, scope.CanMutate(ownerOf(r))))
	}
	return items
}

type shopItem struct {
	*database.Shop
	Editable bool `json:"editable"`
}

type categoryItem struct {
	*database.ProductType
	Editable bool `json:"editable"`
}

type saleTypeItem struct {
	*database.SaleType
	Editable bool `json:"editable"`
}

type industryItem struct {
	*database.Industry
	Editable bool `json:"editable"`
}

// ListIndustries handles GET /api/industries. Every signed-in user reads the
// whole list; only a super admin may edit it.
func (h *Handler) ListIndustries(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	rows, total, err := h.db.ListIndustries(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := make([]industryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, industryItem{Industry: r, Editable: scope.Privileged()})
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetIndustry handles GET /api/industries/:id
func (h *Handler) GetIndustry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	industry, err := h.db.GetIndustry(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, i18n.ErrorIndustryNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(industry).Send(c)
}

// CreateIndustry handles POST /api/industries
func (h *Handler) CreateIndustry(c *gin.Context) {
	var req dto.IndustryRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	industry := &database.Industry{Name: req.Name, Description: req.Description, Status: req.Status}
	if err := h.db.CreateIndustry(c.Request.Context(), industry); err != nil {
		h.fail(c, err, i18n.ErrorIndustryNotFound)
		return
	}
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Industry").WithPayload(industry).Send(c)
}

// UpdateIndustry handles PUT /api/industries/:id
func (h *Handler) UpdateIndustry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.IndustryRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	industry := &database.Industry{ID: id, Name: req.Name, Description: req.Description, Status: req.Status}
	if err := h.db.UpdateIndustry(ctx, industry); err != nil {
		h.fail(c, err, i18n.ErrorIndustryNotFound)
		return
	}
	h.menus.InvalidateAll(ctx)
	updated, err := h.db.GetIndustry(ctx, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorIndustryNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Industry").WithPayload(updated).Send(c)
}

// ListShops handles GET /api/shops
func (h *Handler) ListShops(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, total, err := h.db.ListShops(ctx, *scope, opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := visibleItems(ctx, h.logger, scope, rows,
		func(s *database.Shop) uint { return s.UserID },
		func(s *database.Shop, editable bool) shopItem { return shopItem{Shop: s, Editable: editable} })
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetShop handles GET /api/shops/:id
func (h *Handler) GetShop(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	shop, err := h.db.GetShop(c.Request.Context(), scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(shopItem{Shop: shop, Editable: scope.CanMutate(shop.UserID)}).Send(c)
}

// checkOwner verifies the user a super admin assigns a row to
func (h *Handler) checkOwner(ctx context.Context, scope access.Scope, requested uint) (uint, error) {
	owner := scope.OwnerFor(requested)
	if owner == scope.UserID {
		return owner, nil
	}
	if _, err := h.db.GetUser(ctx, owner); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, i18n.ErrorUserNotFound
		}
		return 0, err
	}
	return owner, nil
}

func (h *Handler) checkIndustry(ctx context.Context, id uint) error {
	if _, err := h.db.GetIndustry(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return i18n.ErrorIndustryNotFound
		}
		return err
	}
	return nil
}

func shopFromRequest(req *dto.ShopRequest) *database.Shop {
	return &database.Shop{
		Name:         req.Name,
		Address:      req.Address,
		Profile:      req.Profile,
		Banner:       req.Banner,
		Color:        req.Color,
		LinkLocation: req.LinkLocation,
		Status:       req.Status,
		IndustryID:   req.IndustryID,
	}
}

// CreateShop handles POST /api/shops
func (h *Handler) CreateShop(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	var req dto.ShopRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	if err := h.checkIndustry(ctx, req.IndustryID); err != nil {
		h.fail(c, err, nil)
		return
	}
	owner, err := h.checkOwner(ctx, scope, req.UserID)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	shop := shopFromRequest(&req)
	shop.UserID = owner
	if err := h.db.CreateShop(ctx, shop); err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return
	}
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Shop").WithPayload(shopItem{Shop: shop, Editable: true}).Send(c)
}

// UpdateShop handles PUT /api/shops/:id
func (h *Handler) UpdateShop(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ShopRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	if err := h.checkIndustry(ctx, req.IndustryID); err != nil {
		h.fail(c, err, nil)
		return
	}
	shop := shopFromRequest(&req)
	shop.ID = id
	if scope.Privileged() && req.UserID != 0 {
		owner, err := h.checkOwner(ctx, scope, req.UserID)
		if err != nil {
			h.fail(c, err, nil)
			return
		}
		shop.UserID = owner
	}
	if err := h.db.UpdateShop(ctx, scope, shop); err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return
	}
	h.menus.InvalidateShops(ctx, id)
	updated, err := h.db.GetShop(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Shop").
		WithPayload(shopItem{Shop: updated, Editable: scope.CanMutate(updated.UserID)}).Send(c)
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, total, err := h.db.ListCategories(ctx, *scope, opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := visibleItems(ctx, h.logger, scope, rows,
		func(p *database.ProductType) uint { return p.UserID },
		func(p *database.ProductType, editable bool) categoryItem {
			return categoryItem{ProductType: p, Editable: editable}
		})
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetCategory handles GET /api/categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.db.GetCategory(c.Request.Context(), scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorCategoryNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).
		WithPayload(categoryItem{ProductType: category, Editable: scope.CanMutate(category.UserID)}).Send(c)
}

// CreateCategory handles POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	owner, err := h.checkOwner(ctx, scope, req.UserID)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	category := &database.ProductType{Name: req.Name, Description: req.Description, Status: req.Status, UserID: owner}
	if err := h.db.CreateCategory(ctx, category); err != nil {
		h.fail(c, err, i18n.ErrorCategoryNotFound)
		return
	}
	h.menus.InvalidateAll(ctx)
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Category").
		WithPayload(categoryItem{ProductType: category, Editable: true}).Send(c)
}

// UpdateCategory handles PUT /api/categories/:id
func (h *Handler) UpdateCategory(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	category := &database.ProductType{ID: id, Name: req.Name, Description: req.Description, Status: req.Status}
	if err := h.db.UpdateCategory(ctx, scope, category); err != nil {
		h.fail(c, err, i18n.ErrorCategoryNotFound)
		return
	}
	h.menus.InvalidateAll(ctx)
	updated, err := h.db.GetCategory(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorCategoryNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Category").
		WithPayload(categoryItem{ProductType: updated, Editable: scope.CanMutate(updated.UserID)}).Send(c)
}

// ListSaleTypes handles GET /api/sale-types
func (h *Handler) ListSaleTypes(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, total, err := h.db.ListSaleTypes(ctx, *scope, opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := visibleItems(ctx, h.logger, scope, rows,
		func(s *database.SaleType) uint { return s.UserID },
		func(s *database.SaleType, editable bool) saleTypeItem {
			return saleTypeItem{SaleType: s, Editable: editable}
		})
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetSaleType handles GET /api/sale-types/:id
func (h *Handler) GetSaleType(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	saleType, err := h.db.GetSaleType(c.Request.Context(), scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorSaleTypeNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).
		WithPayload(saleTypeItem{SaleType: saleType, Editable: scope.CanMutate(saleType.UserID)}).Send(c)
}

// CreateSaleType handles POST /api/sale-types
func (h *Handler) CreateSaleType(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	var req dto.SaleTypeRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	owner, err := h.checkOwner(ctx, scope, req.UserID)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	saleType := &database.SaleType{Name: req.Name, Status: req.Status, UserID: owner}
	if err := h.db.CreateSaleType(ctx, saleType); err != nil {
		h.fail(c, err, i18n.ErrorSaleTypeNotFound)
		return
	}
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Sale type").
		WithPayload(saleTypeItem{SaleType: saleType, Editable: true}).Send(c)
}

// UpdateSaleType handles PUT /api/sale-types/:id
func (h *Handler) UpdateSaleType(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SaleTypeRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	saleType := &database.SaleType{ID: id, Name: req.Name, Status: req.Status}
	if err := h.db.UpdateSaleType(ctx, scope, saleType); err != nil {
		h.fail(c, err, i18n.ErrorSaleTypeNotFound)
		return
	}
	h.menus.InvalidateAll(ctx)
	updated, err := h.db.GetSaleType(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorSaleTypeNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Sale type").
		WithPayload(saleTypeItem{SaleType: updated, Editable: scope.CanMutate(updated.UserID)}).Send(c)
}
