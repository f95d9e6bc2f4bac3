package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

type CanvasResourceRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCanvasResourceRepo(db *gorm.DB) *CanvasResourceRepo {
	return &CanvasResourceRepo{DB: db, Now: time.Now}
}

func (r *CanvasResourceRepo) List(ctx context.Context, kind string) ([]model.CanvasResource, error) {
	q := r.DB.WithContext(ctx)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []model.CanvasResource
	err := q.Order("category, name").Find(&out).Error
	return out, err
}

func (r *CanvasResourceRepo) Create(ctx context.Context, res *model.CanvasResource) error {
	res.ID = 0
	if err := r.DB.WithContext(ctx).Create(res).Error; err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes the record and queues its image for deletion in the same
// transaction.
func (r *CanvasResourceRepo) Delete(ctx context.Context, id uint64) ([]model.ImageDeletion, error) {
	var queued []model.ImageDeletion
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.CanvasResource
		if err := tx.First(&res, id).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&res).Error; err != nil {
			return err
		}
		var err error
		queued, err = enqueueDeletions(tx, []string{res.PublicID}, ReasonResourceDeleted, r.Now())
		return err
	})
	return queued, err
}
