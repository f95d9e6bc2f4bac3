package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

func TestCartAddDenormalizesAndMerges(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "c@example.com", model.RoleCustomer)
	p := h.hoodie(t, "hoodie", "40.00")

	ref := LineRef{ProductType: model.ProductTypeCatalog, ProductID: p.ID, Quantity: 2, Size: "M"}
	item, err := h.cart.Add(ctx, u.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", item.ProductName)
	assert.Equal(t, "https://cdn.test/products/h.png", item.ImageURL)

	ref.Quantity = 1
	item, err = h.cart.Add(ctx, u.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	cart, err := h.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "120.00", cart.Subtotal.StringFixed(2))
}

func TestCartAddWithSavedDesign(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	owner := h.user(t, "o@example.com", model.RoleCustomer)
	other := h.user(t, "x@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	d, err := h.designs.SaveToLibrary(ctx, owner.ID, DesignInput{
		ProductID: p.ID, Name: "Both sides", PrintOption: model.PrintFrontAndBack,
		FrontThumbnailURL: "https://cdn.test/previews/f.png",
	})
	require.NoError(t, err)

	ref := LineRef{ProductType: model.ProductTypeCustomizable, ProductID: p.ID, Size: "XL", SavedDesignID: &d.ID}
	_, err = h.cart.Add(ctx, other.ID, ref)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	item, err := h.cart.Add(ctx, owner.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, "21.50", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "https://cdn.test/previews/f.png", item.ImageURL)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartKeepsDesignsOnSeparateLines(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "o@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	front, err := h.designs.SaveToLibrary(ctx, u.ID, DesignInput{ProductID: p.ID, Name: "Front", PrintOption: model.PrintFront})
	require.NoError(t, err)
	both, err := h.designs.SaveToLibrary(ctx, u.ID, DesignInput{ProductID: p.ID, Name: "Both", PrintOption: model.PrintFrontAndBack})
	require.NoError(t, err)

	ref := func(id uint64) LineRef {
		return LineRef{ProductType: model.ProductTypeCustomizable, ProductID: p.ID, Size: "XL", SavedDesignID: &id}
	}
	a, err := h.cart.Add(ctx, u.ID, ref(front.ID))
	require.NoError(t, err)
	b, err := h.cart.Add(ctx, u.ID, ref(both.ID))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "18.00", a.UnitPrice.StringFixed(2))
	assert.Equal(t, "21.50", b.UnitPrice.StringFixed(2))

	cart, err := h.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "39.50", cart.Subtotal.StringFixed(2))
	assert.Equal(t, front.ID, cart.Items[0].SavedDesignID)
	assert.Equal(t, both.ID, cart.Items[1].SavedDesignID)
}

func TestCartAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "c@example.com", model.RoleCustomer)
	p := h.hoodie(t, "hoodie", "40.00")

	_, err := h.cart.Add(ctx, u.ID, LineRef{ProductType: "poster", ProductID: p.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = h.cart.Add(ctx, u.ID, LineRef{ProductType: model.ProductTypeCatalog, ProductID: p.ID, Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = h.cart.Add(ctx, u.ID, LineRef{ProductType: model.ProductTypeCatalog, ProductID: p.ID + 50})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFavoriteToggle(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "f@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	on, err := h.favs.Toggle(ctx, u.ID, model.ProductTypeCustomizable, p.ID)
	require.NoError(t, err)
	assert.True(t, on)
	list, err := h.favs.Favorites.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Classic tee", list[0].ProductName)

	on, err = h.favs.Toggle(ctx, u.ID, model.ProductTypeCustomizable, p.ID)
	require.NoError(t, err)
	assert.False(t, on)
}
