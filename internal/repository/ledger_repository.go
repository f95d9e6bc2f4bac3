package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/model"
)

type LedgerRepo struct{ DB *gorm.DB }

func NewLedgerRepo(db *gorm.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// List returns entries, optionally filtered by kind, most recent first.
func (r *LedgerRepo) List(ctx context.Context, kind string) ([]model.LedgerEntry, error) {
	q := r.DB.WithContext(ctx)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []model.LedgerEntry
	err := q.Order("occurred_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *LedgerRepo) Create(ctx context.Context, e *model.LedgerEntry) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

// Summary totals the book.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

func (r *LedgerRepo) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	var err error
	if s.Income, err = r.total(ctx, model.LedgerIncome); err != nil {
		return s, err
	}
	if s.Expense, err = r.total(ctx, model.LedgerExpense); err != nil {
		return s, err
	}
	s.Net = s.Income.Sub(s.Expense)
	return s, nil
}

func (r *LedgerRepo) total(ctx context.Context, kind string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.DB.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").Where("kind = ?", kind).
		Row().Scan(&sum)
	return sum, err
}
