package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type menuProduct struct {
	*database.Product
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

// MenuView is the public menu of one shop. Only active rows are included.
type MenuView struct {
	Shop           *database.Shop            `json:"shop"`
	Categories     []*database.ProductType   `json:"categories"`
	Products       []menuProduct             `json:"products"`
	SocialContacts []*database.SocialContact `json:"socialContacts"`
}

func menuVariant(query string, categoryID uint) string {
	return fmt.Sprintf("menu?q=%s&category=%d", strings.ToLower(strings.TrimSpace(query)), categoryID)
}

func (h *Handler) loadMenu(ctx context.Context, shopID uint, query string, categoryID uint) (*MenuView, error) {
	shop, err := h.db.GetPublicShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	view := &MenuView{Shop: shop}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := h.db.ListOwnerCategories(gctx, shop.UserID, true)
		view.Categories = categories
		return err
	})
	g.Go(func() error {
		products, err := h.db.ListShopProducts(gctx, shop.ID, database.ListOptions{
			Query:      query,
			CategoryID: categoryID,
			ActiveOnly: true,
		})
		if err != nil {
			return err
		}
		view.Products = make([]menuProduct, 0, len(products))
		for _, p := range products {
			view.Products = append(view.Products, menuProduct{Product: p, FinalPrice: p.FinalPrice()})
		}
		return nil
	})
	g.Go(func() error {
		contacts, err := h.db.ListShopSocialContacts(gctx, shop.ID, true)
		view.SocialContacts = contacts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// Menu handles GET /api/menu/:shopId. It needs no session; the rendered menu
// is cached per shop, search text and category.
func (h *Handler) Menu(c *gin.Context) {
	shopID, ok := paramID(c, "shopId")
	if !ok {
		return
	}
	query := c.Query("q")
	var categoryID uint
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			i18n.RespondWithError(c, i18n.ErrInvalidID)
			return
		}
		categoryID = uint(id)
	}

	data, err := h.menus.GetOrLoad(c.Request.Context(), shopID, menuVariant(query, categoryID), func(ctx context.Context) (any, error) {
		return h.loadMenu(ctx, shopID, query, categoryID)
	})
	if err != nil {
		h.fail(c, err, i18n.ErrorShopNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(json.RawMessage(data)).Send(c)
}

// MenuProduct handles GET /api/menu/products/:id, the detail view of one
// active product of an active shop
func (h *Handler) MenuProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.db.GetPublicProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, i18n.ErrorProductNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(menuProduct{Product: product, FinalPrice: product.FinalPrice()}).Send(c)
}
