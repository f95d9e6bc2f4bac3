package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/model"
)

func TestCartAddIncrementsExistingLine(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	u := seedUser(t, db, "a@example.com", model.RoleCustomer)
	repo := NewCartRepo(db)

	line := func(qty int, size string) *model.CartItem {
		return &model.CartItem{
			UserID: u.ID, ProductType: model.ProductTypeCatalog, ProductID: 3,
			Size: size, Quantity: qty, UnitPrice: decimal.RequireFromString("10.00"),
		}
	}
	a := line(2, "M")
	require.NoError(t, repo.Add(ctx, a))
	b := line(3, "M")
	require.NoError(t, repo.Add(ctx, b))
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 5, b.Quantity)

	require.NoError(t, repo.Add(ctx, line(1, "L")))
	items, err := repo.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	designed := func(design uint64, price string) *model.CartItem {
		return &model.CartItem{
			UserID: u.ID, ProductType: model.ProductTypeCustomizable, ProductID: 7,
			Size: "M", SavedDesignID: design, Quantity: 1, UnitPrice: decimal.RequireFromString(price),
		}
	}
	d1 := designed(1, "18.00")
	require.NoError(t, repo.Add(ctx, d1))
	d2 := designed(2, "21.00")
	require.NoError(t, repo.Add(ctx, d2))
	assert.NotEqual(t, d1.ID, d2.ID)
	assert.Equal(t, uint64(2), d2.SavedDesignID)
	assert.Equal(t, "21.00", d2.UnitPrice.StringFixed(2))
	assert.Equal(t, 1, d2.Quantity)

	again := designed(1, "18.00")
	require.NoError(t, repo.Add(ctx, again))
	assert.Equal(t, d1.ID, again.ID)
	assert.Equal(t, 2, again.Quantity)
	assert.Equal(t, "18.00", again.UnitPrice.StringFixed(2))

	items, err = repo.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Nil(t, items[0].DesignRef())
	require.NotNil(t, items[2].DesignRef())
	assert.Equal(t, uint64(1), *items[2].DesignRef())
}

func TestCartQuantityAndOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	u := seedUser(t, db, "a@example.com", model.RoleCustomer)
	other := seedUser(t, db, "b@example.com", model.RoleCustomer)
	repo := NewCartRepo(db)

	it := &model.CartItem{UserID: u.ID, ProductType: model.ProductTypeCatalog, ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(4)}
	require.NoError(t, repo.Add(ctx, it))

	_, err := repo.SetQuantity(ctx, it.ID, other.ID, 3)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := repo.SetQuantity(ctx, it.ID, u.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.True(t, got.LineTotal().Equal(decimal.NewFromInt(12)))

	got, err = repo.SetQuantity(ctx, it.ID, u.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, err = repo.Get(ctx, it.ID, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
