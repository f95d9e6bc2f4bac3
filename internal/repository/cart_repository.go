package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

type CartRepo struct{ DB *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{DB: db} }

// List returns the user's cart lines, oldest first.
func (r *CartRepo) List(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	var out []model.CartItem
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

// Add inserts the line or, when the (user, product, size, color, design)
// key already exists, increments its quantity in the same statement.
func (r *CartRepo) Add(ctx context.Context, item *model.CartItem) error {
	item.ID = 0
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "product_type"}, {Name: "product_id"}, {Name: "size"}, {Name: "color"},
			{Name: "saved_design_id"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"unit_price": item.UnitPrice,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(item).Error
	if err != nil {
		return err
	}
	var stored model.CartItem
	err = db.Where("user_id = ? AND product_type = ? AND product_id = ? AND size = ? AND color = ? AND saved_design_id = ?",
		item.UserID, item.ProductType, item.ProductID, item.Size, item.Color, item.SavedDesignID).First(&stored).Error
	if err != nil {
		return err
	}
	*item = stored
	return nil
}

// Get loads a cart line owned by userID.
func (r *CartRepo) Get(ctx context.Context, id, userID uint64) (*model.CartItem, error) {
	var it model.CartItem
	if err := r.DB.WithContext(ctx).First(&it, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if it.UserID != userID {
		return nil, ErrForbidden
	}
	return &it, nil
}

// SetQuantity overwrites the quantity; a non-positive value removes the
// line and returns nil.
func (r *CartRepo) SetQuantity(ctx context.Context, id, userID uint64, qty int) (*model.CartItem, error) {
	if _, err := r.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, r.Delete(ctx, id, userID)
	}
	err := r.DB.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).Update("quantity", qty).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id, userID)
}

// Delete removes one owned line.
func (r *CartRepo) Delete(ctx context.Context, id, userID uint64) error {
	if _, err := r.Get(ctx, id, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.CartItem{}).Error
}

// Clear empties the user's cart.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
