package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// ErrInvalidPayment wraps amount and type violations.
var ErrInvalidPayment = errors.New("invalid payment")

// ErrPaymentPending is returned when the order already has a payment
// waiting for review.
var ErrPaymentPending = errors.New("order already has a pending payment")

type PaymentRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewPaymentRepo(db *gorm.DB) *PaymentRepo { return &PaymentRepo{DB: db, Now: time.Now} }

// Create records a payment claim for an order owned by p.UserID and moves
// the order to payment_review.  An order never carries more than one
// pending payment: the payments table is checked and the order status
// update is conditional, so two concurrent claims cannot both be accepted.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) (*model.Order, error) {
	var order *model.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := getOrder(tx, p.OrderID)
		if err != nil {
			return err
		}
		if o.UserID != p.UserID {
			return ErrForbidden
		}
		switch o.Status {
		case model.OrderPending, model.OrderPartiallyPaid:
		case model.OrderPaymentReview:
			return ErrPaymentPending
		default:
			return fmt.Errorf("%w: order is %s", ErrConflict, o.Status)
		}

		var open int64
		if err := tx.Model(&model.Payment{}).
			Where("order_id = ? AND status = ?", o.ID, model.PaymentPending).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrPaymentPending
		}

		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
		}
		paid, err := approvedSum(tx, o.ID)
		if err != nil {
			return err
		}
		outstanding := o.Total.Sub(paid)
		switch p.Type {
		case model.PaymentFull:
			if p.Amount.LessThan(outstanding) {
				return fmt.Errorf("%w: full payment must cover the outstanding balance %s", ErrInvalidPayment, outstanding.StringFixed(2))
			}
		case model.PaymentPartial:
		default:
			return fmt.Errorf("%w: type must be partial or full", ErrInvalidPayment)
		}

		res := tx.Model(&model.Order{}).
			Where("id = ? AND status IN ?", o.ID, []string{model.OrderPending, model.OrderPartiallyPaid}).
			Update("status", model.OrderPaymentReview)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentPending
		}

		p.ID = 0
		p.Status = model.PaymentPending
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		order, err = getOrder(tx, o.ID)
		return err
	})
	return order, err
}

// Get loads a payment.
func (r *PaymentRepo) Get(ctx context.Context, id uint64) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns payments, optionally filtered by status, newest first.
func (r *PaymentRepo) List(ctx context.Context, status string) ([]model.Payment, error) {
	q := r.DB.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Payment
	err := q.Order("id DESC").Find(&out).Error
	return out, err
}

// ListByOrder returns the payments recorded against an order.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Payment, error) {
	var out []model.Payment
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&out).Error
	return out, err
}

// Decision describes an admin verdict on a pending payment.
type Decision struct {
	PaymentID  uint64
	Approve    bool
	ReviewerID uint64
	Reason     string
	// RecordedBy is the legacy user id stamped on the income entry.
	RecordedBy *uint64
}

// Decide applies d atomically: the payment leaves pending through a
// conditional update, the order status follows, and an approval books one
// income ledger entry.  Deciding a payment twice returns ErrConflict.
// The order status only moves while the order is still in payment_review;
// an order that was cancelled or moved on keeps its status.
func (r *PaymentRepo) Decide(ctx context.Context, d Decision) (*model.Payment, *model.Order, error) {
	var (
		pay   model.Payment
		order *model.Order
	)
	now := r.Now().UTC()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status := model.PaymentRejected
		if d.Approve {
			status = model.PaymentApproved
		}
		updates := map[string]any{
			"status":      status,
			"reviewed_by": d.ReviewerID,
			"reviewed_at": now,
		}
		if !d.Approve {
			updates["rejection_reason"] = d.Reason
		}
		res := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", d.PaymentID, model.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.Payment{}).Where("id = ?", d.PaymentID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		if err := tx.First(&pay, d.PaymentID).Error; err != nil {
			return err
		}
		o, err := getOrder(tx, pay.OrderID)
		if err != nil {
			return err
		}
		paid, err := approvedSum(tx, o.ID)
		if err != nil {
			return err
		}

		next := model.OrderPending
		switch {
		case d.Approve && (pay.Type == model.PaymentFull || paid.GreaterThanOrEqual(o.Total)):
			next = model.OrderPaid
		case paid.IsPositive():
			next = model.OrderPartiallyPaid
		}
		if err := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", o.ID, model.OrderPaymentReview).
			Update("status", next).Error; err != nil {
			return err
		}

		if d.Approve {
			entry := model.LedgerEntry{
				Kind:        model.LedgerIncome,
				Amount:      pay.Amount,
				Description: fmt.Sprintf("payment #%d for order #%d (ref %s)", pay.ID, o.ID, pay.ReferenceNumber),
				PaymentID:   &pay.ID,
				OrderID:     &o.ID,
				RecordedBy:  d.RecordedBy,
				OccurredAt:  now,
			}
			if err := tx.Create(&entry).Error; err != nil {
				if database.IsDuplicate(err) {
					return ErrConflict
				}
				return err
			}
		}
		order, err = getOrder(tx, o.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &pay, order, nil
}

func approvedSum(tx *gorm.DB, orderID uint64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("order_id = ? AND status = ?", orderID, model.PaymentApproved).
		Row().Scan(&sum)
	return sum, err
}
