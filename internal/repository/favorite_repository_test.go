package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/model"
)

func TestFavoriteToggleParity(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	u := seedUser(t, db, "a@example.com", model.RoleCustomer)
	repo := NewFavoriteRepo(db)

	for i := 1; i <= 5; i++ {
		on, err := repo.Toggle(ctx, &model.Favorite{UserID: u.ID, ProductType: model.ProductTypeCatalog, ProductID: 7})
		require.NoError(t, err)

		n, err := repo.Count(ctx, u.ID, model.ProductTypeCatalog, 7)
		require.NoError(t, err)
		if i%2 == 1 {
			assert.True(t, on, "toggle %d", i)
			assert.Equal(t, int64(1), n, "toggle %d", i)
		} else {
			assert.False(t, on, "toggle %d", i)
			assert.Equal(t, int64(0), n, "toggle %d", i)
		}
	}
}

func TestFavoriteScopedByProductType(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	u := seedUser(t, db, "a@example.com", model.RoleCustomer)
	repo := NewFavoriteRepo(db)

	_, err := repo.Toggle(ctx, &model.Favorite{UserID: u.ID, ProductType: model.ProductTypeCatalog, ProductID: 1})
	require.NoError(t, err)
	_, err = repo.Toggle(ctx, &model.Favorite{UserID: u.ID, ProductType: model.ProductTypeCustomizable, ProductID: 1})
	require.NoError(t, err)

	list, err := repo.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Remove(ctx, u.ID, model.ProductTypeCatalog, 1))
	assert.ErrorIs(t, repo.Remove(ctx, u.ID, model.ProductTypeCatalog, 1), ErrNotFound)
}
