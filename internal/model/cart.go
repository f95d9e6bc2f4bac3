package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidProductType reports whether s names a product kind.
func ValidProductType(s string) bool {
	return s == ProductTypeCatalog || s == ProductTypeCustomizable
}

// CartItem is one line in a user's cart.  Display fields are copied from
// the product when the line is created.  SavedDesignID is 0 for a line
// without a saved design; the same product in two designs makes two lines.
type CartItem struct {
	ID            uint64          `json:"id" gorm:"primaryKey"`
	UserID        uint64          `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_items_line,priority:1"`
	ProductType   string          `json:"product_type" gorm:"size:16;not null;uniqueIndex:idx_cart_items_line,priority:2"`
	ProductID     uint64          `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_items_line,priority:3"`
	Size          string          `json:"size" gorm:"size:16;not null;default:'';uniqueIndex:idx_cart_items_line,priority:4"`
	Color         string          `json:"color" gorm:"size:64;not null;default:'';uniqueIndex:idx_cart_items_line,priority:5"`
	SavedDesignID uint64          `json:"saved_design_id,omitempty" gorm:"not null;default:0;uniqueIndex:idx_cart_items_line,priority:6"`
	Quantity      int             `json:"quantity" gorm:"not null;default:1"`
	ProductName   string          `json:"product_name" gorm:"size:255"`
	ImageURL      string          `json:"image_url" gorm:"size:1024"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LineTotal is UnitPrice times Quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// DesignRef returns the saved design id, or nil for a plain line.
func (c CartItem) DesignRef() *uint64 {
	if c.SavedDesignID == 0 {
		return nil
	}
	id := c.SavedDesignID
	return &id
}

// Favorite marks a product on a user's wishlist.
type Favorite struct {
	ID          uint64          `json:"id" gorm:"primaryKey"`
	UserID      uint64          `json:"user_id" gorm:"not null;uniqueIndex:idx_favorites_product,priority:1"`
	ProductType string          `json:"product_type" gorm:"size:16;not null;uniqueIndex:idx_favorites_product,priority:2"`
	ProductID   uint64          `json:"product_id" gorm:"not null;uniqueIndex:idx_favorites_product,priority:3"`
	ProductName string          `json:"product_name" gorm:"size:255"`
	ImageURL    string          `json:"image_url" gorm:"size:1024"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	CreatedAt   time.Time       `json:"created_at"`
}
