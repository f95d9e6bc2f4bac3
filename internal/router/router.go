// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/handler"
	"github.com/iliyamo/apparel-studio/internal/logger"
	"github.com/iliyamo/apparel-studio/internal/metrics"
	"github.com/iliyamo/apparel-studio/internal/middleware"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// Options carries the infrastructure shared by every route group.  A nil
// Redis client disables caching and rate limiting.
type Options struct {
	Cfg       config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	DB        *gorm.DB
}

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Designs  *handler.DesignHandler
	Cart     *handler.CartHandler
	Orders   *handler.OrderHandler
	Admin    *handler.AdminHandler
	Media    *handler.MediaHandler
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(opts Options, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.Cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, logger.HeaderRequestID},
		ExposeHeaders:    []string{logger.HeaderRequestID, "X-Cache", "Retry-After"},
	}))
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())

	RegisterRoutes(e, opts.DB)
	RegisterAuth(e, h.Auth, opts)
	RegisterPublic(e, h.Products, h.Media, opts)
	RegisterCustomer(e, h, opts.Cfg.JWTSecret)
	RegisterAdmin(e, h, opts.Cfg.JWTSecret)
	return e
}

// RegisterRoutes registers the probe and scrape endpoints.
func RegisterRoutes(e *echo.Echo, db *gorm.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers /auth.  Credential endpoints sit behind the token
// bucket; logout accepts either a session or a bare refresh token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opts Options) {
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	secret := opts.Cfg.JWTSecret

	g := e.Group("/auth")
	g.POST("/signup", a.Signup, limit)
	g.POST("/login", a.Login, limit)
	g.POST("/refresh", a.Refresh, limit)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(secret))
	g.GET("/me", a.Me, middleware.JWTAuth(secret))

	g.GET("/google", a.GoogleBegin)
	g.GET("/google/callback", a.GoogleCallback)
}

func adminOnly(secret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(secret), middleware.RequireRole(model.RoleAdmin)}
}
