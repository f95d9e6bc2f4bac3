package main

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/handler"
	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/middleware"
	"github.com/iliyamo/apparel-studio/internal/outbox"
	"github.com/iliyamo/apparel-studio/internal/queue"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/router"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// app holds every long-lived dependency built from the configuration.
type app struct {
	db         *gorm.DB
	rdb        *redis.Client
	host       imagehost.Host
	publisher  *queue.AMQPPublisher
	reconciler *outbox.Reconciler
	legacy     *service.LegacyService
}

func openDB() (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func newHost(ctx context.Context) (imagehost.Host, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("S3_BUCKET not set, using in-memory image host")
		return imagehost.NewMemory(cfg.Storage.BaseURL), nil
	}
	return imagehost.NewS3(ctx, cfg.Storage)
}

func newApp(ctx context.Context) (*app, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	host, err := newHost(ctx)
	if err != nil {
		return nil, fmt.Errorf("image host: %w", err)
	}

	a := &app{db: db, host: host, publisher: queue.NewAMQPPublisher(cfg.AMQPURL, log.Named("amqp"))}
	if rdb, err := config.NewRedisClient(ctx); err != nil {
		log.Warn("redis unavailable, cache and rate limit disabled")
	} else {
		a.rdb = rdb
	}
	a.reconciler = outbox.New(repository.NewImageDeletionRepo(db), host, cfg.Outbox, log.Named("outbox"))
	a.legacy = newLegacyService(db)
	return a, nil
}

func newLegacyService(db *gorm.DB) *service.LegacyService {
	return service.NewLegacyService(repository.NewUserRepo(db), repository.NewLegacyUserRepo(db))
}

func (a *app) close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// server builds the Echo instance with every handler wired.
func (a *app) server() *echo.Echo {
	db := a.db
	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogProductRepo(db)
	custom := repository.NewCustomizableProductRepo(db)
	designs := repository.NewDesignRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	legacyUsers := repository.NewLegacyUserRepo(db)

	images := service.NewImageService(a.host, repository.NewImageDeletionRepo(db), a.reconciler, log.Named("images"))
	lookup := service.NewProductLookup(catalog, custom, designs)
	auth := service.NewAuthService(users, repository.NewTokenRepo(db), service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, log.Named("auth"))

	cacheCfg := config.LoadCacheConfig()
	invalidate := func(ctx context.Context, group string) error {
		return middleware.InvalidateGroup(ctx, cacheCfg, a.rdb, group)
	}

	handler.SetupGoogle(cfg)
	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, auth),
		Products: handler.NewProductHandler(service.NewProductService(catalog, custom, images, log.Named("products")), invalidate),
		Designs:  handler.NewDesignHandler(service.NewDesignService(designs, custom)),
		Cart: handler.NewCartHandler(
			service.NewCartService(carts, lookup),
			service.NewFavoriteService(repository.NewFavoriteRepo(db), lookup),
		),
		Orders: handler.NewOrderHandler(
			service.NewOrderService(orders, carts, lookup, a.publisher, log.Named("orders")),
			service.NewPaymentService(repository.NewPaymentRepo(db), orders, users, legacyUsers, a.publisher, log.Named("payments")),
		),
		Admin: handler.NewAdminHandler(repository.NewLedgerRepo(db), repository.NewInventoryRepo(db), users, legacyUsers, a.legacy),
		Media: handler.NewMediaHandler(images, repository.NewCanvasResourceRepo(db), cfg.Storage.MaxBytes, invalidate),
	}
	return router.New(router.Options{
		Cfg:       cfg,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     a.rdb,
		DB:        db,
	}, h)
}
