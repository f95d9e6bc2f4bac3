package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/model"
)

// ImageDeletionRepo is the outbox of pending image-host deletes.
type ImageDeletionRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewImageDeletionRepo(db *gorm.DB) *ImageDeletionRepo {
	return &ImageDeletionRepo{DB: db, Now: time.Now}
}

// Enqueue records deletes outside any other transaction.
func (r *ImageDeletionRepo) Enqueue(ctx context.Context, publicIDs []string, reason string) ([]model.ImageDeletion, error) {
	return enqueueDeletions(r.DB.WithContext(ctx), publicIDs, reason, r.Now())
}

// Due returns up to limit pending rows whose next attempt is at or before
// now, oldest first.
func (r *ImageDeletionRepo) Due(ctx context.Context, now time.Time, limit int) ([]model.ImageDeletion, error) {
	var rows []model.ImageDeletion
	err := r.DB.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", model.DeletionPending, now.UTC()).
		Order("next_attempt_at, id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkDone completes a row.
func (r *ImageDeletionRepo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ImageDeletion{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.DeletionDone, "last_error": ""}).Error
}

// MarkRetry records a failed attempt.  When failed is true the row leaves
// the pending set for good.
func (r *ImageDeletionRepo) MarkRetry(ctx context.Context, id uint64, attempts int, next time.Time, lastErr string, failed bool) error {
	status := model.DeletionPending
	if failed {
		status = model.DeletionFailed
	}
	if len(lastErr) > 1024 {
		lastErr = lastErr[:1024]
	}
	return r.DB.WithContext(ctx).Model(&model.ImageDeletion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": next.UTC(),
			"last_error":      lastErr,
		}).Error
}

// List returns outbox rows filtered by status, newest first.
func (r *ImageDeletionRepo) List(ctx context.Context, status string, limit int) ([]model.ImageDeletion, error) {
	q := r.DB.WithContext(ctx).Order("id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []model.ImageDeletion
	err := q.Find(&rows).Error
	return rows, err
}

// enqueueDeletions inserts one pending row per non-empty public id using
// db, which may be a transaction.
func enqueueDeletions(db *gorm.DB, publicIDs []string, reason string, now time.Time) ([]model.ImageDeletion, error) {
	rows := make([]model.ImageDeletion, 0, len(publicIDs))
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		rows = append(rows, model.ImageDeletion{
			PublicID:      id,
			Reason:        reason,
			Status:        model.DeletionPending,
			NextAttemptAt: now.UTC(),
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
