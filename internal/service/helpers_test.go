package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/outbox"
	"github.com/iliyamo/apparel-studio/internal/queue"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

type harness struct {
	db     *gorm.DB
	host   *imagehost.Memory
	events *queue.Recorder
	outbox *repository.ImageDeletionRepo

	auth     *AuthService
	products *ProductService
	designs  *DesignService
	cart     *CartService
	favs     *FavoriteService
	orders   *OrderService
	payments *PaymentService
	legacy   *LegacyService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	h := &harness{db: db, host: imagehost.NewMemory("https://cdn.test"), events: &queue.Recorder{}}
	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogProductRepo(db)
	custom := repository.NewCustomizableProductRepo(db)
	designs := repository.NewDesignRepo(db)
	cart := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	legacy := repository.NewLegacyUserRepo(db)
	h.outbox = repository.NewImageDeletionRepo(db)

	rec := outbox.New(h.outbox, h.host, config.OutboxConfig{BatchSize: 10, MaxAttempts: 3, BaseBackoff: time.Minute, MaxBackoff: time.Hour}, nil)
	images := NewImageService(h.host, h.outbox, rec, nil)
	lookup := NewProductLookup(catalog, custom, designs)

	h.auth = NewAuthService(users, repository.NewTokenRepo(db), AuthConfig{
		JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4,
	}, nil)
	h.products = NewProductService(catalog, custom, images, nil)
	h.designs = NewDesignService(designs, custom)
	h.cart = NewCartService(cart, lookup)
	h.favs = NewFavoriteService(repository.NewFavoriteRepo(db), lookup)
	h.orders = NewOrderService(orders, cart, lookup, h.events, nil)
	h.payments = NewPaymentService(repository.NewPaymentRepo(db), orders, users, legacy, h.events, nil)
	h.legacy = NewLegacyService(users, legacy)
	return h
}

func (h *harness) user(t *testing.T, email, role string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, Role: role}
	require.NoError(t, h.auth.Users.Create(t.Context(), u))
	return u
}

func (h *harness) tee(t *testing.T, slug string) *model.CustomizableProduct {
	t.Helper()
	p := &model.CustomizableProduct{
		Name:             "Classic tee",
		Slug:             slug,
		BaseCost:         decimal.RequireFromString("5.00"),
		RetailPrice:      decimal.RequireFromString("15.00"),
		PrintCostPerSide: decimal.RequireFromString("3.50"),
		SizePrices:       datatypes.JSON(`{"S":"15.00","XL":"18.00"}`),
		SizeAvailability: datatypes.JSON(`{"S":true,"XL":true}`),
		IsActive:         true,
	}
	require.NoError(t, h.products.CreateCustomizable(t.Context(), p))
	return p
}

func (h *harness) hoodie(t *testing.T, slug, price string) *model.CatalogProduct {
	t.Helper()
	p := &model.CatalogProduct{
		Name:     "Hoodie",
		Slug:     slug,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
		Images:   []model.CatalogProductImage{{URL: "https://cdn.test/products/h.png", PublicID: "products/h.png"}},
	}
	require.NoError(t, h.products.CreateCatalog(t.Context(), p))
	return p
}
