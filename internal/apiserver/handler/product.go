package handler

import (
	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/common/dto"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productItem struct {
	*database.Product
	FinalPrice decimal.Decimal `json:"finalPrice"`
	Editable   bool            `json:"editable"`
}

func newProductItem(p *database.Product, editable bool) productItem {
	return productItem{Product: p, FinalPrice: p.FinalPrice(), Editable: editable}
}

type socialContactItem struct {
	*database.SocialContact
	Editable bool `json:"editable"`
}

// productOwner is the owner of the product's shop
func productOwner(p *database.Product) uint {
	if p.Shop != nil {
		return p.Shop.UserID
	}
	return p.UserID
}

func contactOwner(sc *database.SocialContact) uint {
	if sc.Shop != nil {
		return sc.Shop.UserID
	}
	return 0
}

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, total, err := h.db.ListProducts(ctx, *scope, opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := visibleItems(ctx, h.logger, scope, rows, productOwner, newProductItem)
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetProduct handles GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.db.GetProduct(c.Request.Context(), scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(newProductItem(product, scope.CanMutate(productOwner(product)))).Send(c)
}

// productFromRequest validates a submission and resolves its owner. The
// referenced shop, category and sale type must all belong to the caller, and
// the category and sale type must belong to the shop's owner.
func (h *Handler) productFromRequest(c *gin.Context, scope access.Scope, req *dto.ProductRequest) (*database.Product, bool) {
	if !requiredFields(c, req.Missing()) {
		return nil, false
	}
	if !req.ValidAmounts() {
		i18n.RespondWithError(c, i18n.ErrorInvalidPrice)
		return nil, false
	}
	ctx := c.Request.Context()
	refs := access.ReferenceSet{ShopID: req.ShopID, CategoryID: req.ProductTypeID, SaleTypeID: req.SaleTypeID}
	if err := access.RequireReferences(ctx, scope, refs, h.db); err != nil {
		h.fail(c, err, nil)
		return nil, false
	}
	shop, err := h.db.GetShop(ctx, scope, req.ShopID)
	if err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return nil, false
	}
	if scope.Privileged() {
		owner := access.NewScope(shop.UserID, cnst.RoleUser)
		if err := access.RequireReferences(ctx, owner, refs, h.db); err != nil {
			h.fail(c, err, nil)
			return nil, false
		}
	}

	product := &database.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		Image:         req.Image,
		Status:        req.Status,
		ShopID:        req.ShopID,
		ProductTypeID: req.ProductTypeID,
		SaleTypeID:    req.SaleTypeID,
		UserID:        shop.UserID,
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	return product, true
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, ok := h.productFromRequest(c, scope, &req)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.db.CreateProduct(ctx, product); err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	h.menus.InvalidateShops(ctx, product.ShopID)
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Product").WithPayload(newProductItem(product, true)).Send(c)
}

// UpdateProduct handles PUT /api/products/:id. Moving a product to another
// shop invalidates both menus.
func (h *Handler) UpdateProduct(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	current, err := h.db.GetProduct(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	product, ok := h.productFromRequest(c, scope, &req)
	if !ok {
		return
	}
	product.ID = id
	if err := h.db.UpdateProduct(ctx, scope, product); err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	h.menus.InvalidateShops(ctx, current.ShopID, product.ShopID)
	updated, err := h.db.GetProduct(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Product").
		WithPayload(newProductItem(updated, scope.CanMutate(productOwner(updated)))).Send(c)
}

// ListSocialContacts handles GET /api/social-contacts
func (h *Handler) ListSocialContacts(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, total, err := h.db.ListSocialContacts(ctx, *scope, opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := visibleItems(ctx, h.logger, scope, rows, contactOwner,
		func(sc *database.SocialContact, editable bool) socialContactItem {
			return socialContactItem{SocialContact: sc, Editable: editable}
		})
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetSocialContact handles GET /api/social-contacts/:id
func (h *Handler) GetSocialContact(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	contact, err := h.db.GetSocialContact(c.Request.Context(), scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorSocialContactNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).
		WithPayload(socialContactItem{SocialContact: contact, Editable: scope.CanMutate(contactOwner(contact))}).Send(c)
}

// contactFromRequest checks the submission and that the caller owns the target shop
func (h *Handler) contactFromRequest(c *gin.Context, scope access.Scope, req *dto.SocialContactRequest) (*database.SocialContact, bool) {
	if !requiredFields(c, req.Missing()) {
		return nil, false
	}
	if _, err := h.db.GetShop(c.Request.Context(), scope, req.ShopID); err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return nil, false
	}
	return &database.SocialContact{
		Name:        req.Name,
		Link:        req.Link,
		Description: req.Description,
		Status:      req.Status,
		ShopID:      req.ShopID,
	}, true
}

// CreateSocialContact handles POST /api/social-contacts
func (h *Handler) CreateSocialContact(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	var req dto.SocialContactRequest
	if !bindJSON(c, &req) {
		return
	}
	contact, ok := h.contactFromRequest(c, scope, &req)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.db.CreateSocialContact(ctx, contact); err != nil {
		h.fail(c, err, i18n.ErrorSocialContactNotFound)
		return
	}
	h.menus.InvalidateShops(ctx, contact.ShopID)
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "Social contact").
		WithPayload(socialContactItem{SocialContact: contact, Editable: true}).Send(c)
}

// UpdateSocialContact handles PUT /api/social-contacts/:id
func (h *Handler) UpdateSocialContact(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SocialContactRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	current, err := h.db.GetSocialContact(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorSocialContactNotFound)
		return
	}
	contact, ok := h.contactFromRequest(c, scope, &req)
	if !ok {
		return
	}
	contact.ID = id
	if err := h.db.UpdateSocialContact(ctx, scope, contact); err != nil {
		h.fail(c, err, i18n.ErrorSocialContactNotFound)
		return
	}
	h.menus.InvalidateShops(ctx, current.ShopID, contact.ShopID)
	updated, err := h.db.GetSocialContact(ctx, scope, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorSocialContactNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "Social contact").
		WithPayload(socialContactItem{SocialContact: updated, Editable: scope.CanMutate(contactOwner(updated))}).Send(c)
}
