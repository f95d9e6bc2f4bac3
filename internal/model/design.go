package model

import (
	"time"

	"gorm.io/datatypes"
)

// Print options accepted for a design.
const (
	PrintFront        = "front"
	PrintBack         = "back"
	PrintFrontAndBack = "front_and_back"
)

// ValidPrintOption reports whether s is empty or a known print option.
func ValidPrintOption(s string) bool {
	switch s {
	case "", PrintFront, PrintBack, PrintFrontAndBack:
		return true
	}
	return false
}

// CurrentDesign is the single working draft a user keeps per customizable
// product.  The (user_id, product_id) pair is unique so saves overwrite in
// place; LastSavedAt orders the "last used" lookup.
type CurrentDesign struct {
	ID                uint64         `json:"id" gorm:"primaryKey"`
	UserID            uint64         `json:"user_id" gorm:"not null;uniqueIndex:idx_current_designs_user_product,priority:1;index:idx_current_designs_user_saved,priority:1"`
	ProductID         uint64         `json:"product_id" gorm:"not null;uniqueIndex:idx_current_designs_user_product,priority:2"`
	FrontCanvas       datatypes.JSON `json:"front_canvas"`
	BackCanvas        datatypes.JSON `json:"back_canvas"`
	SelectedSize      string         `json:"selected_size" gorm:"size:16"`
	PrintOption       string         `json:"print_option" gorm:"size:16"`
	SelectedColor     string         `json:"selected_color" gorm:"size:64"`
	FrontThumbnailURL string         `json:"front_thumbnail_url" gorm:"size:1024"`
	BackThumbnailURL  string         `json:"back_thumbnail_url" gorm:"size:1024"`
	LastSavedAt       time.Time      `json:"last_saved_at" gorm:"not null;index:idx_current_designs_user_saved,priority:2"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// SavedDesign is a named library snapshot.  Every save inserts a new row.
type SavedDesign struct {
	ID                uint64         `json:"id" gorm:"primaryKey"`
	UserID            uint64         `json:"user_id" gorm:"not null;index"`
	ProductID         uint64         `json:"product_id" gorm:"not null;index"`
	Name              string         `json:"name" gorm:"size:255;not null"`
	FrontCanvas       datatypes.JSON `json:"front_canvas"`
	BackCanvas        datatypes.JSON `json:"back_canvas"`
	SelectedSize      string         `json:"selected_size" gorm:"size:16"`
	PrintOption       string         `json:"print_option" gorm:"size:16"`
	SelectedColor     string         `json:"selected_color" gorm:"size:64"`
	FrontThumbnailURL string         `json:"front_thumbnail_url" gorm:"size:1024"`
	BackThumbnailURL  string         `json:"back_thumbnail_url" gorm:"size:1024"`
	IsFavorite        bool           `json:"is_favorite" gorm:"not null;default:false"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
