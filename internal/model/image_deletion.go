package model

import "time"

// Outbox statuses.
const (
	DeletionPending = "pending"
	DeletionDone    = "done"
	DeletionFailed  = "failed"
)

// ImageDeletion is a durable request to destroy an object on the image
// host.  Rows are written in the same transaction that drops the database
// reference and drained by the reconciler.
type ImageDeletion struct {
	ID            uint64    `json:"id" gorm:"primaryKey"`
	PublicID      string    `json:"public_id" gorm:"size:512;not null;index"`
	Reason        string    `json:"reason" gorm:"size:64"`
	Status        string    `json:"status" gorm:"size:16;not null;default:pending;index:idx_image_deletions_due,priority:1"`
	Attempts      int       `json:"attempts" gorm:"not null;default:0"`
	LastError     string    `json:"last_error,omitempty" gorm:"size:1024"`
	NextAttemptAt time.Time `json:"next_attempt_at" gorm:"not null;index:idx_image_deletions_due,priority:2"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &LegacyUser{},
		&CatalogProduct{}, &CatalogProductImage{},
		&CustomizableProduct{}, &CustomizableProductImage{},
		&CurrentDesign{}, &SavedDesign{},
		&CartItem{}, &Favorite{},
		&Order{}, &OrderItem{}, &Payment{}, &LedgerEntry{},
		&InventoryItem{}, &CanvasResource{}, &ImageDeletion{},
	}
}
