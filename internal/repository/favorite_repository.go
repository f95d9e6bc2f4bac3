package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/apparel-studio/internal/model"
)

type FavoriteRepo struct{ DB *gorm.DB }

func NewFavoriteRepo(db *gorm.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// Toggle removes the favorite when present and adds it otherwise.  The
// delete is conditional and the insert ignores conflicts, so concurrent
// toggles never produce duplicate rows.  It reports whether the product is
// favorited afterwards.
func (r *FavoriteRepo) Toggle(ctx context.Context, f *model.Favorite) (bool, error) {
	db := r.DB.WithContext(ctx)
	res := db.Where("user_id = ? AND product_type = ? AND product_id = ?", f.UserID, f.ProductType, f.ProductID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	f.ID = 0
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error; err != nil {
		return false, err
	}
	return true, nil
}

// List returns the user's favorites, newest first.
func (r *FavoriteRepo) List(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	var out []model.Favorite
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&out).Error
	return out, err
}

// Remove deletes one favorite.
func (r *FavoriteRepo) Remove(ctx context.Context, userID uint64, productType string, productID uint64) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_type = ? AND product_id = ?", userID, productType, productID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns how many favorite rows exist for a (user, product) pair.
func (r *FavoriteRepo) Count(ctx context.Context, userID uint64, productType string, productID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND product_type = ? AND product_id = ?", userID, productType, productID).
		Count(&n).Error
	return n, err
}
