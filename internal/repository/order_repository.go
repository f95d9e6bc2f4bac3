package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

type OrderRepo struct{ DB *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create stores o with its items.  When clearCart is set the owner's cart
// is emptied in the same transaction.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order, clearCart bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for i := range o.Items {
			it := &o.Items[i]
			it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(it.LineTotal)
		}
		o.Total = total
		if o.Status == "" {
			o.Status = model.OrderPending
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if clearCart {
			return tx.Where("user_id = ?", o.UserID).Delete(&model.CartItem{}).Error
		}
		return nil
	})
}

// Get loads an order with its items and payments.
func (r *OrderRepo) Get(ctx context.Context, id uint64) (*model.Order, error) {
	return getOrder(r.DB.WithContext(ctx), id)
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	var out []model.Order
	err := r.DB.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).
		Order("id DESC").Find(&out).Error
	return out, err
}

// ListAll returns every order, optionally filtered by status.
func (r *OrderRepo) ListAll(ctx context.Context, status string) ([]model.Order, error) {
	q := r.DB.WithContext(ctx).Preload("Items")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Order
	err := q.Order("id DESC").Find(&out).Error
	return out, err
}

// Transition moves an order from its current status to `to` when the
// transition table allows it.  The write is conditional on the status read,
// so a concurrent change yields ErrConflict.
func (r *OrderRepo) Transition(ctx context.Context, id uint64, to string) (*model.Order, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(o.Status, to) {
		return nil, ErrConflict
	}
	res := r.DB.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, o.Status).Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return r.Get(ctx, id)
}

// Cancel cancels an owned order that is still pending.
func (r *OrderRepo) Cancel(ctx context.Context, id, userID uint64) (*model.Order, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	res := r.DB.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderPending).Update("status", model.OrderCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return r.Get(ctx, id)
}

func getOrder(db *gorm.DB, id uint64) (*model.Order, error) {
	var o model.Order
	err := db.Preload("Items").Preload("Payments", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		First(&o, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
