package database

import (
	"context"
	"errors"
	"testing"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureRoles(context.Background(), db))
	return db.(*Store)
}

type fixture struct {
	admin, alice, bob        *User
	aliceShop, bobShop       *Shop
	aliceCat, bobCat         *ProductType
	aliceSale, bobSale       *SaleType
	aliceProduct, bobProduct *Product
}

func (f *fixture) adminScope() access.Scope { return access.NewScope(f.admin.ID, cnst.RoleSuperAdmin) }
func (f *fixture) aliceScope() access.Scope { return access.NewScope(f.alice.ID, cnst.RoleUser) }
func (f *fixture) bobScope() access.Scope   { return access.NewScope(f.bob.ID, cnst.RoleUser) }

func seed(t *testing.T, s *Store) *fixture {
	t.Helper()
	ctx := context.Background()
	superRole, err := s.GetRoleByName(ctx, cnst.RoleSuperAdmin)
	require.NoError(t, err)
	userRole, err := s.GetRoleByName(ctx, cnst.RoleUser)
	require.NoError(t, err)

	f := &fixture{
		admin: &User{Username: "root", Email: "root@example.com", RoleID: superRole.ID},
		alice: &User{Username: "alice", Email: "alice@example.com", RoleID: userRole.ID},
		bob:   &User{Username: "bob", Email: "bob@example.com", RoleID: userRole.ID},
	}
	for _, u := range []*User{f.admin, f.alice, f.bob} {
		require.NoError(t, s.CreateUser(ctx, u))
	}

	f.aliceShop = &Shop{Name: "Alice Noodles", Status: true, UserID: f.alice.ID}
	f.bobShop = &Shop{Name: "Bob Coffee", Status: true, UserID: f.bob.ID}
	require.NoError(t, s.CreateShop(ctx, f.aliceShop))
	require.NoError(t, s.CreateShop(ctx, f.bobShop))

	f.aliceCat = &ProductType{Name: "Soup", Status: true, UserID: f.alice.ID}
	f.bobCat = &ProductType{Name: "Drinks", Status: true, UserID: f.bob.ID}
	require.NoError(t, s.CreateCategory(ctx, f.aliceCat))
	require.NoError(t, s.CreateCategory(ctx, f.bobCat))

	f.aliceSale = &SaleType{Name: "Dine in", Status: true, UserID: f.alice.ID}
	f.bobSale = &SaleType{Name: "Take away", Status: true, UserID: f.bob.ID}
	require.NoError(t, s.CreateSaleType(ctx, f.aliceSale))
	require.NoError(t, s.CreateSaleType(ctx, f.bobSale))

	f.aliceProduct = &Product{
		Name: "Kuy Teav", Price: decimal.RequireFromString("3.50"), Discount: decimal.NewFromInt(10), Status: true,
		ShopID: f.aliceShop.ID, ProductTypeID: f.aliceCat.ID, SaleTypeID: f.aliceSale.ID, UserID: f.alice.ID,
	}
	f.bobProduct = &Product{
		Name: "Iced Latte", Price: decimal.RequireFromString("2.00"), Status: true,
		ShopID: f.bobShop.ID, ProductTypeID: f.bobCat.ID, SaleTypeID: f.bobSale.ID, UserID: f.bob.ID,
	}
	require.NoError(t, s.CreateProduct(ctx, f.aliceProduct))
	require.NoError(t, s.CreateProduct(ctx, f.bobProduct))
	return f
}

func TestNewDatabase_Factory(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Type: "unknown"}, nil)
	assert.Error(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, nil)
	require.NoError(t, err)
	assert.NoError(t, db.Close())

	_, err = NewDatabase(&config.DatabaseConfig{Type: "mysql", Host: "127.0.0.1", Port: 1, User: "u", Password: "p", DBName: "d"}, nil)
	assert.Error(t, err)
}

func TestEnsureRoles_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, EnsureRoles(ctx, s))

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	role, err := s.GetRoleByName(ctx, "  Super Admin ")
	require.NoError(t, err)
	assert.Equal(t, cnst.RoleSuperAdmin, role.Name)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	dup := &User{Username: "alice2", Email: "alice@example.com", RoleID: f.alice.RoleID}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

	got, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)
	assert.Equal(t, cnst.RoleUser, got.RoleName())

	require.NoError(t, s.SetUserOnline(ctx, f.alice.ID, true))
	got, err = s.GetUser(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, got.Online)

	got.Disabled = true
	got.Phone = "012345678"
	require.NoError(t, s.UpdateUser(ctx, got))
	got, err = s.GetUser(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, got.Disabled)
	assert.Equal(t, "012345678", got.Phone)

	users, total, err := s.ListUsers(ctx, ListOptions{Query: "EXAMPLE.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SetUserOnline(ctx, 9999, true), ErrNotFound)

	assert.ErrorIs(t, s.DeleteUser(ctx, f.alice.ID), ErrInUse)
	assert.NoError(t, s.DeleteUser(ctx, f.admin.ID))
}

func TestShops_Ownership(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	shops, total, err := s.ListShops(ctx, f.aliceScope(), ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, shops, 1)
	assert.Equal(t, f.aliceShop.ID, shops[0].ID)

	_, total, err = s.ListShops(ctx, f.adminScope(), ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, err = s.GetShop(ctx, f.aliceScope(), f.bobShop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	stolen := *f.bobShop
	stolen.Name = "Mine now"
	assert.ErrorIs(t, s.UpdateShop(ctx, f.aliceScope(), &stolen), ErrNotFound)

	own := *f.aliceShop
	own.Status = false
	own.UserID = f.bob.ID
	require.NoError(t, s.UpdateShop(ctx, f.aliceScope(), &own))
	got, err := s.GetShop(ctx, f.aliceScope(), f.aliceShop.ID)
	require.NoError(t, err)
	assert.False(t, got.Status)
	assert.Equal(t, f.alice.ID, got.UserID)

	_, err = s.GetPublicShop(ctx, f.aliceShop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteShop(ctx, f.bobScope(), f.aliceShop.ID), ErrNotFound)
	assert.ErrorIs(t, s.DeleteShop(ctx, f.aliceScope(), f.aliceShop.ID), ErrInUse)
}

func TestShops_DeleteRemovesContacts(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	empty := &Shop{Name: "Popup", Status: true, UserID: f.alice.ID}
	require.NoError(t, s.CreateShop(ctx, empty))
	contact := &SocialContact{Name: "telegram", Link: "https://t.me/popup", Status: true, ShopID: empty.ID}
	require.NoError(t, s.CreateSocialContact(ctx, contact))

	require.NoError(t, s.DeleteShop(ctx, f.aliceScope(), empty.ID))
	_, err := s.GetSocialContact(ctx, f.adminScope(), contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProducts_OwnedThroughShop(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	products, total, err := s.ListProducts(ctx, f.bobScope(), ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Iced Latte", products[0].Name)
	require.NotNil(t, products[0].Shop)
	assert.Equal(t, f.bobShop.ID, products[0].Shop.ID)

	products, _, err = s.ListProducts(ctx, f.adminScope(), ListOptions{Query: "kuy"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].FinalPrice().Equal(decimal.RequireFromString("3.15")))

	_, err = s.GetProduct(ctx, f.bobScope(), f.aliceProduct.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, f.bobScope(), f.aliceProduct.ID), ErrNotFound)

	update := *f.aliceProduct
	update.Status = false
	update.Discount = decimal.Zero
	require.NoError(t, s.UpdateProduct(ctx, f.aliceScope(), &update))
	_, err = s.GetPublicProduct(ctx, f.aliceProduct.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetProduct(ctx, f.aliceScope(), f.aliceProduct.ID)
	require.NoError(t, err)
	assert.True(t, got.Discount.IsZero())

	require.NoError(t, s.DeleteProduct(ctx, f.aliceScope(), f.aliceProduct.ID))
	assert.NoError(t, s.DeleteShop(ctx, f.aliceScope(), f.aliceShop.ID))
}

func TestShopMenu(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	hidden := &Product{
		Name: "Secret", Price: decimal.NewFromInt(1), Status: false,
		ShopID: f.aliceShop.ID, ProductTypeID: f.aliceCat.ID, SaleTypeID: f.aliceSale.ID, UserID: f.alice.ID,
	}
	require.NoError(t, s.CreateProduct(ctx, hidden))

	menu, err := s.ListShopProducts(ctx, f.aliceShop.ID, ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Kuy Teav", menu[0].Name)
	require.NotNil(t, menu[0].ProductType)
	assert.Equal(t, "Soup", menu[0].ProductType.Name)

	menu, err = s.ListShopProducts(ctx, f.aliceShop.ID, ListOptions{Query: "50%_"})
	require.NoError(t, err)
	assert.Empty(t, menu)

	cats, err := s.ListOwnerCategories(ctx, f.alice.ID, true)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, f.aliceCat.ID, cats[0].ID)
}

func TestCategoriesAndSaleTypes_InUse(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteCategory(ctx, f.aliceScope(), f.aliceCat.ID), ErrInUse)
	assert.ErrorIs(t, s.DeleteCategory(ctx, f.aliceScope(), f.bobCat.ID), ErrNotFound)
	assert.ErrorIs(t, s.DeleteSaleType(ctx, f.bobScope(), f.bobSale.ID), ErrInUse)

	spare := &SaleType{Name: "Delivery", Status: false, UserID: f.bob.ID}
	require.NoError(t, s.CreateSaleType(ctx, spare))
	got, err := s.GetSaleType(ctx, f.bobScope(), spare.ID)
	require.NoError(t, err)
	assert.False(t, got.Status)
	require.NoError(t, s.DeleteSaleType(ctx, f.bobScope(), spare.ID))

	renamed := *f.aliceCat
	renamed.Name = "Soups"
	renamed.Status = false
	require.NoError(t, s.UpdateCategory(ctx, f.aliceScope(), &renamed))
	cats, total, err := s.ListCategories(ctx, f.aliceScope(), ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, cats)
}

func TestIndustries(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	ind := &Industry{Name: "Food", Status: true}
	require.NoError(t, s.CreateIndustry(ctx, ind))
	shop := *f.aliceShop
	shop.IndustryID = ind.ID
	require.NoError(t, s.UpdateShop(ctx, f.aliceScope(), &shop))

	assert.ErrorIs(t, s.DeleteIndustry(ctx, ind.ID), ErrInUse)

	got, err := s.GetShop(ctx, f.aliceScope(), f.aliceShop.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Industry)
	assert.Equal(t, "Food", got.Industry.Name)

	ind.Status = false
	require.NoError(t, s.UpdateIndustry(ctx, ind))
	list, total, err := s.ListIndustries(ctx, ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, list)
	assert.ErrorIs(t, s.DeleteIndustry(ctx, 4242), ErrNotFound)
}

func TestReferenceIDs(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	ids, err := s.ReferenceIDs(ctx, access.RefShop, f.aliceScope())
	require.NoError(t, err)
	assert.Equal(t, []uint{f.aliceShop.ID}, ids)

	ids, err = s.ReferenceIDs(ctx, access.RefSaleType, f.adminScope())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.aliceSale.ID, f.bobSale.ID}, ids)

	_, err = s.ReferenceIDs(ctx, access.ReferenceKind("nope"), f.adminScope())
	assert.Error(t, err)

	err = access.RequireReferences(ctx, f.aliceScope(), access.ReferenceSet{
		ShopID: f.aliceShop.ID, CategoryID: f.bobCat.ID, SaleTypeID: f.aliceSale.ID,
	}, s)
	var refErr *access.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, access.RefCategory, refErr.Kind)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	c, err := s.Counts(ctx, f.aliceScope())
	require.NoError(t, err)
	assert.Equal(t, Counts{Products: 1, Categories: 1, Shops: 1}, *c)

	c, err = s.Counts(ctx, f.adminScope())
	require.NoError(t, err)
	assert.Equal(t, Counts{Products: 2, Categories: 2, Shops: 2, Users: 3}, *c)
}

func TestTransaction_RollsBack(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.CreateIndustry(ctx, &Industry{Name: "Temp"}))
		return s.Transaction(ctx, func(ctx context.Context) error {
			require.NoError(t, s.DeleteProduct(ctx, f.adminScope(), f.bobProduct.ID))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := s.ListIndustries(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	_, err = s.GetProduct(ctx, f.adminScope(), f.bobProduct.ID)
	assert.NoError(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!%!_off!!", escapeLike("50%_off!"))
}
