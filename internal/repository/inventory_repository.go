package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// ErrInsufficientStock is returned when an adjustment would drive stock
// below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryRepo stores raw materials.  Status is recomputed by the model's
// BeforeSave hook, so every write goes through Create or Save.
type InventoryRepo struct{ DB *gorm.DB }

func NewInventoryRepo(db *gorm.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

func (r *InventoryRepo) List(ctx context.Context, category string) ([]model.InventoryItem, error) {
	q := r.DB.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []model.InventoryItem
	err := q.Order("name").Find(&out).Error
	return out, err
}

// LowStock lists items at or below their minimum level.
func (r *InventoryRepo) LowStock(ctx context.Context) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	err := r.DB.WithContext(ctx).Where("stock <= min_level").Order("name").Find(&out).Error
	return out, err
}

func (r *InventoryRepo) Get(ctx context.Context, id uint64) (*model.InventoryItem, error) {
	return getInventory(r.DB.WithContext(ctx), id)
}

func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	it.ID = 0
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update saves every field of it.
func (r *InventoryRepo) Update(ctx context.Context, it *model.InventoryItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := getInventory(tx, it.ID)
		if err != nil {
			return err
		}
		it.CreatedAt = cur.CreatedAt
		if err := tx.Save(it).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

// Adjust adds delta to stock.  The increment is a guarded UPDATE so
// concurrent adjustments never lose writes or go negative; the row is then
// re-saved to refresh its status.
func (r *InventoryRepo) Adjust(ctx context.Context, id uint64, delta int) (*model.InventoryItem, error) {
	var out *model.InventoryItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.InventoryItem{}).
			Where("id = ? AND stock + ? >= 0", id, delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := getInventory(tx, id); err != nil {
				return err
			}
			return ErrInsufficientStock
		}
		it, err := getInventory(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Save(it).Error; err != nil {
			return err
		}
		out = it
		return nil
	})
	return out, err
}

func (r *InventoryRepo) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.InventoryItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func getInventory(db *gorm.DB, id uint64) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := db.First(&it, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}
