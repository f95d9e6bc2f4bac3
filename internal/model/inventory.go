package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory statuses.
const (
	StockIn  = "in_stock"
	StockLow = "low_stock"
)

// InventoryItem is a raw material tracked by the back office.
type InventoryItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Category  string          `json:"category" gorm:"size:100"`
	Unit      string          `json:"unit" gorm:"size:32"`
	Stock     int             `json:"stock" gorm:"not null;default:0"`
	MinLevel  int             `json:"min_level" gorm:"not null;default:0"`
	Status    string          `json:"status" gorm:"size:16;not null;index"`
	UnitCost  decimal.Decimal `json:"unit_cost" gorm:"type:decimal(10,2)"`
	Supplier  string          `json:"supplier,omitempty" gorm:"size:255"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockStatus derives the status for a stock level.
func StockStatus(stock, minLevel int) string {
	if stock <= minLevel {
		return StockLow
	}
	return StockIn
}

// BeforeSave keeps Status in step with Stock and MinLevel on every write
// that goes through Create or Save.
func (i *InventoryItem) BeforeSave(*gorm.DB) error {
	i.Status = StockStatus(i.Stock, i.MinLevel)
	return nil
}
