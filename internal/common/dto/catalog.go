package dto

import "github.com/shopspring/decimal"

// IndustryRequest creates or replaces an industry
type IndustryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}

func (r *IndustryRequest) Missing() []string {
	return missing(required("name", r.Name))
}

// ShopRequest creates or replaces a shop. UserID is honored for a super admin only.
type ShopRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Profile      string `json:"profile"`
	Banner       string `json:"banner"`
	Color        string `json:"color"`
	LinkLocation string `json:"linkLocation"`
	Status       bool   `json:"status"`
	IndustryID   uint   `json:"industryId"`
	UserID       uint   `json:"userId"`
}

func (r *ShopRequest) Missing() []string {
	return missing(
		required("name", r.Name),
		requiredID("industryId", r.IndustryID),
	)
}

// CategoryRequest creates or replaces a category. UserID is honored for a super admin only.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
	UserID      uint   `json:"userId"`
}

func (r *CategoryRequest) Missing() []string {
	return missing(required("name", r.Name))
}

// SaleTypeRequest creates or replaces a sale type
type SaleTypeRequest struct {
	Name   string `json:"name"`
	Status bool   `json:"status"`
	UserID uint   `json:"userId"`
}

func (r *SaleTypeRequest) Missing() []string {
	return missing(required("name", r.Name))
}

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Status        bool             `json:"status"`
	ShopID        uint             `json:"shopId"`
	ProductTypeID uint             `json:"productTypeId"`
	SaleTypeID    uint             `json:"saleTypeId"`
}

func (r *ProductRequest) Missing() []string {
	return missing(
		required("name", r.Name),
		field{name: "price", empty: r.Price == nil},
		requiredID("productTypeId", r.ProductTypeID),
		requiredID("shopId", r.ShopID),
		requiredID("saleTypeId", r.SaleTypeID),
		required("description", r.Description),
		required("image", r.Image),
	)
}

var hundred = decimal.NewFromInt(100)

// ValidAmounts reports whether price is non-negative and discount is a percentage
func (r *ProductRequest) ValidAmounts() bool {
	if r.Price != nil && r.Price.IsNegative() {
		return false
	}
	if r.Discount != nil && (r.Discount.IsNegative() || r.Discount.GreaterThan(hundred)) {
		return false
	}
	return true
}

// SocialContactRequest creates or replaces a social contact
type SocialContactRequest struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
	ShopID      uint   `json:"shopId"`
}

func (r *SocialContactRequest) Missing() []string {
	return missing(
		required("name", r.Name),
		required("link", r.Link),
		requiredID("shopId", r.ShopID),
	)
}

// DeletionRequest stages a delete of one row
type DeletionRequest struct {
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
}

func (r *DeletionRequest) Missing() []string {
	return missing(
		required("resource", r.Resource),
		requiredID("id", r.ID),
	)
}
