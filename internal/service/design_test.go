package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

func TestSaveCurrentValidates(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "d@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	cases := map[string]DesignInput{
		"missing product": {},
		"array canvas":    {ProductID: p.ID, FrontCanvas: datatypes.JSON(`[1]`)},
		"bad print":       {ProductID: p.ID, PrintOption: "sleeve"},
		"unknown size":    {ProductID: p.ID, SelectedSize: "XXS"},
	}
	for name, in := range cases {
		_, err := h.designs.SaveCurrent(ctx, u.ID, in)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	_, err := h.designs.SaveCurrent(ctx, u.ID, DesignInput{ProductID: p.ID + 99})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSaveCurrentOverwritesDraft(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "d@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	first, err := h.designs.SaveCurrent(ctx, u.ID, DesignInput{
		ProductID: p.ID, FrontCanvas: datatypes.JSON(`{"objects":[]}`), SelectedSize: "S",
	})
	require.NoError(t, err)
	second, err := h.designs.SaveCurrent(ctx, u.ID, DesignInput{
		ProductID: p.ID, FrontCanvas: datatypes.JSON(`{"objects":[{"type":"text"}]}`), SelectedSize: "XL",
		PrintOption: model.PrintFrontAndBack, BackCanvas: datatypes.JSON(`null`),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "XL", second.SelectedSize)

	var n int64
	require.NoError(t, h.db.Model(&model.CurrentDesign{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSaveToLibraryAlwaysInserts(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "d@example.com", model.RoleCustomer)
	p := h.tee(t, "tee")

	_, err := h.designs.SaveToLibrary(ctx, u.ID, DesignInput{ProductID: p.ID})
	assert.ErrorIs(t, err, ErrValidation)

	for i := 0; i < 2; i++ {
		_, err := h.designs.SaveToLibrary(ctx, u.ID, DesignInput{ProductID: p.ID, Name: "Logo tee"})
		require.NoError(t, err)
	}
	list, err := h.designs.Designs.ListSaved(ctx, u.ID, repository.SavedFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = h.designs.Rename(ctx, list[0].ID, u.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	renamed, err := h.designs.Rename(ctx, list[0].ID, u.ID, "Final")
	require.NoError(t, err)
	assert.Equal(t, "Final", renamed.Name)
}
