package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/model"
)

func TestInventoryStatusBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		stock int
		want  string
	}{
		{"below minimum", 9, model.StockLow},
		{"at minimum", 10, model.StockLow},
		{"above minimum", 11, model.StockIn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			ctx := t.Context()
			repo := NewInventoryRepo(db)

			// create path
			it := &model.InventoryItem{Name: "ink", Stock: tc.stock, MinLevel: 10}
			require.NoError(t, repo.Create(ctx, it))
			got, err := repo.Get(ctx, it.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)

			// update path, starting from the opposite state
			seed := &model.InventoryItem{Name: "thread", Stock: 100, MinLevel: 10}
			if tc.want == model.StockIn {
				seed.Stock = 0
			}
			require.NoError(t, repo.Create(ctx, seed))
			seed.Stock = tc.stock
			require.NoError(t, repo.Update(ctx, seed))
			got, err = repo.Get(ctx, seed.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)
		})
	}
}

func TestInventoryAdjust(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewInventoryRepo(db)

	it := &model.InventoryItem{Name: "blank tees", Stock: 12, MinLevel: 10}
	require.NoError(t, repo.Create(ctx, it))
	assert.Equal(t, model.StockIn, it.Status)

	got, err := repo.Adjust(ctx, it.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	assert.Equal(t, model.StockLow, got.Status)

	_, err = repo.Adjust(ctx, it.ID, -11)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err = repo.Adjust(ctx, it.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Stock)
	assert.Equal(t, model.StockIn, got.Status)

	low, err := repo.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = repo.Adjust(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
