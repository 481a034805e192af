package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductRequest_Missing(t *testing.T) {
	var r ProductRequest
	assert.Equal(t, []string{"name", "price", "productTypeId", "shopId", "saleTypeId", "description", "image"}, r.Missing())

	price := decimal.RequireFromString("4.50")
	r = ProductRequest{Name: "Latte", Price: &price, ProductTypeID: 1, ShopID: 2, SaleTypeID: 3, Description: "hot", Image: "x.png"}
	assert.Empty(t, r.Missing())

	r.Name = "   "
	assert.Equal(t, []string{"name"}, r.Missing())
}

func TestProductRequest_ValidAmounts(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	ok := decimal.NewFromInt(10)
	over := decimal.NewFromInt(101)

	assert.True(t, (&ProductRequest{Price: &ok, Discount: &ok}).ValidAmounts())
	assert.True(t, (&ProductRequest{Price: &ok}).ValidAmounts())
	assert.False(t, (&ProductRequest{Price: &neg}).ValidAmounts())
	assert.False(t, (&ProductRequest{Price: &ok, Discount: &over}).ValidAmounts())
	assert.False(t, (&ProductRequest{Price: &ok, Discount: &neg}).ValidAmounts())
}

func TestUserRequests_Missing(t *testing.T) {
	assert.Equal(t, []string{"username", "email", "roleId", "password"}, (&CreateUserRequest{}).Missing())
	assert.Equal(t, []string{"username", "email", "roleId"}, (&UpdateUserRequest{}).Missing())
	assert.Empty(t, (&UpdateUserRequest{Username: "a", Email: "a@x.io", RoleID: 2}).Missing())
}

func TestCatalogRequests_Missing(t *testing.T) {
	assert.Equal(t, []string{"name", "industryId"}, (&ShopRequest{}).Missing())
	assert.Equal(t, []string{"name"}, (&CategoryRequest{}).Missing())
	assert.Equal(t, []string{"name"}, (&SaleTypeRequest{}).Missing())
	assert.Equal(t, []string{"name"}, (&IndustryRequest{}).Missing())
	assert.Equal(t, []string{"name", "link", "shopId"}, (&SocialContactRequest{}).Missing())
	assert.Equal(t, []string{"resource", "id"}, (&DeletionRequest{}).Missing())
	assert.Equal(t, []string{"email", "password"}, (&LoginRequest{}).Missing())
}
