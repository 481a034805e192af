package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/anachak/anachak/internal/apiserver/handler"
	"github.com/anachak/anachak/internal/apiserver/middleware"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/pkg/version"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// crud registers the admin routes of one resource. DELETE stages a
// confirmation instead of deleting.
type crud struct {
	list, get, create, update gin.HandlerFunc
}

func (r crud) register(g *gin.RouterGroup, h *handler.Handler, resource string) {
	g.GET("/"+resource, r.list)
	g.GET("/"+resource+"/:id", r.get)
	g.POST("/"+resource, r.create)
	g.PUT("/"+resource+"/:id", r.update)
	g.DELETE("/"+resource+"/:id", h.StageResourceDeletion(resource))
}

func initRouter(_ context.Context, cfg *config.APIServerConfig, svc *services, lg *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(lg), middleware.RequestLogger(lg))
	if cfg.Tracing.Enabled {
		serviceName := cfg.Tracing.ServiceName
		if serviceName == "" {
			serviceName = "anachak-apiserver"
		}
		r.Use(otelgin.Middleware(serviceName))
	}
	if svc.metrics != nil {
		r.Use(svc.metrics.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(svc.metrics.Handler()))
	}
	if cfg.Server.CORS.Enabled {
		r.Use(middleware.CORS(cfg.Server.CORS))
	}
	r.Use(i18n.LanguageMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})
	if cfg.Storage.Type == "disk" && strings.HasPrefix(cfg.Storage.Disk.PublicURL, "/") {
		r.Static(cfg.Storage.Disk.PublicURL, cfg.Storage.Disk.Path)
	}

	h := svc.handler
	api := r.Group("/api")

	// public
	api.POST("/auth/login", h.Login)
	api.GET("/menu/:shopId", h.Menu)
	api.GET("/menu/products/:id", h.MenuProduct)

	authed := api.Group("", middleware.SessionAuth(svc.sessions, lg))
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", middleware.RequireIdentity(), h.Me)
	authed.GET("/dashboard", h.Dashboard)

	crud{h.ListShops, h.GetShop, h.CreateShop, h.UpdateShop}.register(authed, h, handler.ResourceShops)
	crud{h.ListProducts, h.GetProduct, h.CreateProduct, h.UpdateProduct}.register(authed, h, handler.ResourceProducts)
	crud{h.ListCategories, h.GetCategory, h.CreateCategory, h.UpdateCategory}.register(authed, h, handler.ResourceCategories)
	crud{h.ListSaleTypes, h.GetSaleType, h.CreateSaleType, h.UpdateSaleType}.register(authed, h, handler.ResourceSaleTypes)
	crud{h.ListSocialContacts, h.GetSocialContact, h.CreateSocialContact, h.UpdateSocialContact}.register(authed, h, handler.ResourceSocialContacts)

	authed.GET("/industries", h.ListIndustries)
	authed.GET("/industries/:id", h.GetIndustry)
	authed.DELETE("/industries/:id", h.StageResourceDeletion(handler.ResourceIndustries))

	admin := authed.Group("", middleware.RequireSuperAdmin())
	admin.POST("/industries", h.CreateIndustry)
	admin.PUT("/industries/:id", h.UpdateIndustry)
	admin.GET("/roles", h.ListRoles)
	crud{h.ListUsers, h.GetUser, h.CreateUser, h.UpdateUser}.register(admin, h, handler.ResourceUsers)
	admin.GET("/cache/stats", h.CacheStats)
	admin.POST("/cache/clear", h.ClearCache)
	admin.DELETE("/cache/shops/:id", h.InvalidateShopCache)

	deletions := authed.Group("/deletions")
	deletions.POST("", h.StageDeletion)
	deletions.GET("/:token", h.GetDeletion)
	deletions.POST("/:token/confirm", h.ConfirmDeletion)
	deletions.POST("/:token/close", h.CloseDeletion)
	deletions.DELETE("/:token", h.DismissDeletion)

	authed.GET("/media", h.ListMedia)
	authed.POST("/media", h.UploadMedia)

	return r
}
