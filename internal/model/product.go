package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product kinds referenced by carts, favorites and orders.
const (
	ProductTypeCatalog      = "catalog"
	ProductTypeCustomizable = "customizable"
)

// Differentiation types for customizable products.
const (
	DifferentiationNone    = "none"
	DifferentiationColor   = "color"
	DifferentiationVariant = "variant"
)

// ValidDifferentiation reports whether s is a known differentiation type.
func ValidDifferentiation(s string) bool {
	switch s {
	case DifferentiationNone, DifferentiationColor, DifferentiationVariant:
		return true
	}
	return false
}

// CatalogProduct is a fixed, ready-made listing sold as-is.
type CatalogProduct struct {
	ID          uint64                `json:"id" gorm:"primaryKey"`
	Name        string                `json:"name" gorm:"size:255;not null"`
	Slug        string                `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description string                `json:"description" gorm:"type:text"`
	Category    string                `json:"category" gorm:"size:100;index"`
	Price       decimal.Decimal       `json:"price" gorm:"type:decimal(10,2);not null"`
	Sizes       datatypes.JSON        `json:"sizes,omitempty"`
	Colors      datatypes.JSON        `json:"colors,omitempty"`
	IsActive    bool                  `json:"is_active" gorm:"not null;default:true"`
	Images      []CatalogProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CatalogProductImage belongs to exactly one catalog product.
type CatalogProductImage struct {
	ID           uint64    `json:"id" gorm:"primaryKey"`
	ProductID    uint64    `json:"product_id" gorm:"index;not null"`
	URL          string    `json:"url" gorm:"size:1024;not null"`
	PublicID     string    `json:"public_id" gorm:"size:512"`
	AltText      string    `json:"alt_text,omitempty" gorm:"size:255"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// CustomizableProduct is a template garment personalized in the design
// tool.  SizePrices and SizeAvailability are size-keyed JSON objects kept
// opaque at the storage layer.
type CustomizableProduct struct {
	ID                  uint64                     `json:"id" gorm:"primaryKey"`
	Name                string                     `json:"name" gorm:"size:255;not null"`
	Slug                string                     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description         string                     `json:"description" gorm:"type:text"`
	Category            string                     `json:"category" gorm:"size:100;index"`
	BaseCost            decimal.Decimal            `json:"base_cost" gorm:"type:decimal(10,2);not null"`
	RetailPrice         decimal.Decimal            `json:"retail_price" gorm:"type:decimal(10,2);not null"`
	PrintCostPerSide    decimal.Decimal            `json:"print_cost_per_side" gorm:"type:decimal(10,2);not null"`
	DifferentiationType string                     `json:"differentiation_type" gorm:"size:16;not null;default:none"`
	Variants            datatypes.JSON             `json:"variants,omitempty"`
	SizePrices          datatypes.JSON             `json:"size_prices,omitempty"`
	SizeAvailability    datatypes.JSON             `json:"size_availability,omitempty"`
	IsActive            bool                       `json:"is_active" gorm:"not null;default:true"`
	Images              []CustomizableProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

// CustomizableProductImage is a mockup image; Color, Variant and Side tag
// which differentiation and garment face it shows.
type CustomizableProductImage struct {
	ID           uint64    `json:"id" gorm:"primaryKey"`
	ProductID    uint64    `json:"product_id" gorm:"index;not null"`
	URL          string    `json:"url" gorm:"size:1024;not null"`
	PublicID     string    `json:"public_id" gorm:"size:512"`
	Color        string    `json:"color,omitempty" gorm:"size:64"`
	Variant      string    `json:"variant,omitempty" gorm:"size:64"`
	Side         string    `json:"side,omitempty" gorm:"size:16"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanvasResource kinds.
const (
	ResourceGraphic = "graphic"
	ResourcePattern = "pattern"
)

// CanvasResource is a clip-art graphic or fill pattern offered in the
// design tool, stored on the image host.
type CanvasResource struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Kind      string    `json:"kind" gorm:"size:16;index;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Category  string    `json:"category,omitempty" gorm:"size:100"`
	URL       string    `json:"url" gorm:"size:1024;not null"`
	PublicID  string    `json:"public_id" gorm:"size:512;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}
