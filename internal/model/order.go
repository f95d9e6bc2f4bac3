package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending       = "pending"
	OrderPaymentReview = "payment_review"
	OrderPartiallyPaid = "partially_paid"
	OrderPaid          = "paid"
	OrderProcessing    = "processing"
	OrderShipped       = "shipped"
	OrderCompleted     = "completed"
	OrderCancelled     = "cancelled"
)

// orderTransitions lists the statuses an admin may move an order to.
// payment_review is entered and left only through payment submission and
// review.
var orderTransitions = map[string][]string{
	OrderPending:       {OrderCancelled},
	OrderPaymentReview: {OrderCancelled},
	OrderPartiallyPaid: {OrderPaid, OrderProcessing, OrderCancelled},
	OrderPaid:          {OrderProcessing},
	OrderProcessing:    {OrderShipped},
	OrderShipped:       {OrderCompleted},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderPaymentReview, OrderPartiallyPaid, OrderPaid,
		OrderProcessing, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order aggregates the items a customer checked out with.
type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	UserID          uint64          `json:"user_id" gorm:"not null;index"`
	Status          string          `json:"status" gorm:"size:24;not null;index;default:pending"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:text"`
	ContactPhone    string          `json:"contact_phone" gorm:"size:32"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	Items           []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment       `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem snapshots a product line at checkout.
type OrderItem struct {
	ID            uint64          `json:"id" gorm:"primaryKey"`
	OrderID       uint64          `json:"order_id" gorm:"not null;index"`
	ProductType   string          `json:"product_type" gorm:"size:16;not null"`
	ProductID     uint64          `json:"product_id" gorm:"not null"`
	ProductName   string          `json:"product_name" gorm:"size:255"`
	Size          string          `json:"size,omitempty" gorm:"size:16"`
	Color         string          `json:"color,omitempty" gorm:"size:64"`
	SavedDesignID *uint64         `json:"saved_design_id,omitempty"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	LineTotal     decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
}

// Payment statuses and types.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"

	PaymentPartial = "partial"
	PaymentFull    = "full"
)

// Payment is a customer's claim that money was sent for an order.  It is
// trusted only after an admin approves it.
type Payment struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	OrderID         uint64          `json:"order_id" gorm:"not null;index"`
	UserID          uint64          `json:"user_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type            string          `json:"type" gorm:"size:16;not null"`
	Status          string          `json:"status" gorm:"size:16;not null;index;default:pending"`
	ReferenceNumber string          `json:"reference_number" gorm:"size:128"`
	ProofURL        string          `json:"proof_url,omitempty" gorm:"size:1024"`
	ReviewedBy      *uint64         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty" gorm:"size:512"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Ledger entry kinds.
const (
	LedgerIncome  = "income"
	LedgerExpense = "expense"
)

// LedgerEntry is one line of the income/expense book.  An approved payment
// produces at most one income entry.
type LedgerEntry struct {
	ID          uint64          `json:"id" gorm:"primaryKey"`
	Kind        string          `json:"kind" gorm:"size:16;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description string          `json:"description" gorm:"size:512"`
	PaymentID   *uint64         `json:"payment_id,omitempty" gorm:"uniqueIndex"`
	OrderID     *uint64         `json:"order_id,omitempty" gorm:"index"`
	RecordedBy  *uint64         `json:"recorded_by,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
}
