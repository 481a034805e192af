package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/apiserver/cache"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/apiserver/middleware"
	"github.com/anachak/anachak/internal/auth/jwt"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/internal/confirm"
	"github.com/anachak/anachak/internal/media"
	"github.com/anachak/anachak/internal/session"
	"github.com/anachak/anachak/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "secret-pass"

type testServer struct {
	t        *testing.T
	r        *gin.Engine
	db       database.Database
	provider provider.Provider
	sessions *session.Manager
	menus    *cache.MenuCache
	mediaDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	lg := zap.NewNop()

	db, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, lg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureRoles(ctx, db))

	p := provider.NewLocal(db, nil)
	tokens, err := jwt.NewService(jwt.Config{SecretKey: "0123456789abcdef0123456789abcdef", Duration: time.Hour})
	require.NoError(t, err)
	sessions := session.NewManager(p, db, session.NewMemoryStore(), tokens, time.Hour, lg)

	mediaDir := t.TempDir()
	disk, err := storage.NewDiskStorage(lg, mediaDir, "/media")
	require.NoError(t, err)
	mediaSvc := media.NewService(disk, config.MediaConfig{}, nil, lg)

	menus := cache.NewMenuCache(config.CacheConfig{Enabled: true, L1TTL: time.Minute, L2TTL: time.Minute}, nil, lg)
	deletions := confirm.NewManager(lg, confirm.WithReason(DeleteReason), confirm.WithInvalidator(menus))
	h := NewHandler(db, p, sessions, deletions, mediaSvc, menus, lg)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.GET("/menu/:shopId", h.Menu)
	api.GET("/menu/products/:id", h.MenuProduct)

	authed := api.Group("", middleware.SessionAuth(sessions, lg))
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", middleware.RequireIdentity(), h.Me)
	authed.GET("/dashboard", h.Dashboard)
	routes := []struct {
		resource                  string
		list, get, create, update gin.HandlerFunc
	}{
		{ResourceShops, h.ListShops, h.GetShop, h.CreateShop, h.UpdateShop},
		{ResourceProducts, h.ListProducts, h.GetProduct, h.CreateProduct, h.UpdateProduct},
		{ResourceCategories, h.ListCategories, h.GetCategory, h.CreateCategory, h.UpdateCategory},
		{ResourceSaleTypes, h.ListSaleTypes, h.GetSaleType, h.CreateSaleType, h.UpdateSaleType},
		{ResourceSocialContacts, h.ListSocialContacts, h.GetSocialContact, h.CreateSocialContact, h.UpdateSocialContact},
	}
	for _, rt := range routes {
		authed.GET("/"+rt.resource, rt.list)
		authed.GET("/"+rt.resource+"/:id", rt.get)
		authed.POST("/"+rt.resource, rt.create)
		authed.PUT("/"+rt.resource+"/:id", rt.update)
		authed.DELETE("/"+rt.resource+"/:id", h.StageResourceDeletion(rt.resource))
	}
	authed.GET("/industries", h.ListIndustries)
	authed.GET("/industries/:id", h.GetIndustry)
	authed.DELETE("/industries/:id", h.StageResourceDeletion(ResourceIndustries))
	authed.DELETE("/users/:id", h.StageResourceDeletion(ResourceUsers))
	authed.POST("/deletions", h.StageDeletion)
	authed.GET("/deletions/:token", h.GetDeletion)
	authed.POST("/deletions/:token/confirm", h.ConfirmDeletion)
	authed.POST("/deletions/:token/close", h.CloseDeletion)
	authed.DELETE("/deletions/:token", h.DismissDeletion)
	authed.GET("/media", h.ListMedia)
	authed.POST("/media", h.UploadMedia)
	admin := authed.Group("", middleware.RequireSuperAdmin())
	admin.POST("/industries", h.CreateIndustry)
	admin.PUT("/industries/:id", h.UpdateIndustry)
	admin.GET("/roles", h.ListRoles)
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id", h.UpdateUser)
	admin.GET("/cache/stats", h.CacheStats)
	admin.POST("/cache/clear", h.ClearCache)
	admin.DELETE("/cache/shops/:id", h.InvalidateShopCache)

	return &testServer{t: t, r: r, db: db, provider: p, sessions: sessions, menus: menus, mediaDir: mediaDir}
}

// account creates a user with role and returns it with a session token
func (s *testServer) account(username, role string) (*database.User, string) {
	s.t.Helper()
	ctx := context.Background()
	r, err := s.db.GetRoleByName(ctx, role)
	require.NoError(s.t, err)
	email := username + "@example.com"
	au, err := s.provider.CreateUser(ctx, email, testPassword)
	require.NoError(s.t, err)
	user := &database.User{AuthID: au.ID, Username: username, Email: email, Password: au.PasswordHash, RoleID: r.ID}
	require.NoError(s.t, s.db.CreateUser(ctx, user))
	user.Role = r
	res, err := s.sessions.SignIn(ctx, email, testPassword)
	require.NoError(s.t, err)
	return user, res.Token
}

func scopeOf(u *database.User) access.Scope {
	return access.NewScope(u.ID, u.RoleName())
}

type catalog struct {
	shop     *database.Shop
	category *database.ProductType
	saleType *database.SaleType
	active   *database.Product
	hidden   *database.Product
}

// seedCatalog gives owner an active shop with one active and one inactive product
func (s *testServer) seedCatalog(owner *database.User, shopName string) *catalog {
	s.t.Helper()
	ctx := context.Background()
	industry := &database.Industry{Name: "Food " + shopName, Status: true}
	require.NoError(s.t, s.db.CreateIndustry(ctx, industry))
	c := &catalog{
		shop:     &database.Shop{Name: shopName, Status: true, IndustryID: industry.ID, UserID: owner.ID},
		category: &database.ProductType{Name: "Drinks", Status: true, UserID: owner.ID},
		saleType: &database.SaleType{Name: "Dine-in", Status: true, UserID: owner.ID},
	}
	require.NoError(s.t, s.db.CreateShop(ctx, c.shop))
	require.NoError(s.t, s.db.CreateCategory(ctx, c.category))
	require.NoError(s.t, s.db.CreateSaleType(ctx, c.saleType))
	c.active = &database.Product{
		Name: "Iced coffee", Price: decimal.NewFromInt(10), Discount: decimal.NewFromInt(10), Status: true,
		ShopID: c.shop.ID, ProductTypeID: c.category.ID, SaleTypeID: c.saleType.ID, UserID: owner.ID,
	}
	c.hidden = &database.Product{
		Name: "Secret tea", Price: decimal.NewFromInt(4), Status: false,
		ShopID: c.shop.ID, ProductTypeID: c.category.ID, SaleTypeID: c.saleType.ID, UserID: owner.ID,
	}
	require.NoError(s.t, s.db.CreateProduct(ctx, c.active))
	require.NoError(s.t, s.db.CreateProduct(ctx, c.hidden))
	return c
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
