package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparel-studio/internal/handler"
	"github.com/iliyamo/apparel-studio/internal/middleware"
)

// RegisterPublic registers the product and canvas-resource catalogues.
// Reads are anonymous and cached per group; writes need an admin token and
// invalidate the group through the handler.
func RegisterPublic(e *echo.Echo, p *handler.ProductHandler, m *handler.MediaHandler, opts Options) {
	admin := adminOnly(opts.Cfg.JWTSecret)

	catalogCache := middleware.NewRedisCache(opts.Cache, opts.Redis, handler.GroupCatalog)
	cat := e.Group("/api/catalog-products")
	cat.GET("", p.ListCatalog, catalogCache)
	cat.GET("/slug/:slug", p.GetCatalogBySlug, catalogCache)
	cat.GET("/:id", p.GetCatalog, catalogCache)
	cat.POST("", p.CreateCatalog, admin...)
	cat.PUT("/:id", p.UpdateCatalog, admin...)
	cat.DELETE("/:id", p.DeleteCatalog, admin...)

	customCache := middleware.NewRedisCache(opts.Cache, opts.Redis, handler.GroupCustomizable)
	cus := e.Group("/api/customizable-products")
	cus.GET("", p.ListCustomizable, customCache)
	cus.GET("/slug/:slug", p.GetCustomizableBySlug, customCache)
	cus.GET("/:id", p.GetCustomizable, customCache)
	cus.GET("/:id/price", p.PriceCustomizable, customCache)
	cus.POST("", p.CreateCustomizable, admin...)
	cus.PUT("/:id", p.UpdateCustomizable, admin...)
	cus.DELETE("/:id", p.DeleteCustomizable, admin...)

	res := e.Group("/api/canvas-resources")
	res.GET("", m.ListResources, middleware.NewRedisCache(opts.Cache, opts.Redis, handler.GroupResources))
	res.POST("", m.CreateResource, admin...)
	res.DELETE("/:id", m.DeleteResource, admin...)
}
