package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, Role: role}
	require.NoError(t, NewUserRepo(db).Create(t.Context(), u))
	return u
}

func seedCustomizable(t *testing.T, db *gorm.DB, slug string) *model.CustomizableProduct {
	t.Helper()
	p := &model.CustomizableProduct{
		Name:                slug,
		Slug:                slug,
		BaseCost:            decimal.RequireFromString("5.00"),
		RetailPrice:         decimal.RequireFromString("15.00"),
		PrintCostPerSide:    decimal.RequireFromString("3.00"),
		DifferentiationType: model.DifferentiationNone,
		IsActive:            true,
	}
	require.NoError(t, NewCustomizableProductRepo(db).Create(t.Context(), p))
	return p
}
