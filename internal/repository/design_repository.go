package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// DesignRepo persists working drafts and library designs.
type DesignRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDesignRepo(db *gorm.DB) *DesignRepo { return &DesignRepo{DB: db, Now: time.Now} }

// draftColumns are overwritten when a draft for the same (user, product)
// already exists.
var draftColumns = []string{
	"front_canvas", "back_canvas", "selected_size", "print_option", "selected_color",
	"front_thumbnail_url", "back_thumbnail_url", "last_saved_at", "updated_at",
}

// UpsertCurrent writes the draft for (d.UserID, d.ProductID) in a single
// INSERT ... ON CONFLICT statement and reloads the stored row into d.
func (r *DesignRepo) UpsertCurrent(ctx context.Context, d *model.CurrentDesign) error {
	now := r.Now().UTC()
	d.ID = 0
	d.LastSavedAt = now
	d.CreatedAt = now
	d.UpdatedAt = now
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(draftColumns),
	}).Create(d).Error
	if err != nil {
		return err
	}
	// the id reported by an upsert differs per driver, so reload by key
	var stored model.CurrentDesign
	if err := db.Where("user_id = ? AND product_id = ?", d.UserID, d.ProductID).First(&stored).Error; err != nil {
		return err
	}
	*d = stored
	return nil
}

// GetCurrent loads the caller's draft for a product.
func (r *DesignRepo) GetCurrent(ctx context.Context, userID, productID uint64) (*model.CurrentDesign, error) {
	var d model.CurrentDesign
	err := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&d).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LastUsed returns the draft the user saved most recently.
func (r *DesignRepo) LastUsed(ctx context.Context, userID uint64) (*model.CurrentDesign, error) {
	var d model.CurrentDesign
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("last_saved_at DESC, id DESC").First(&d).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteCurrent discards a draft.
func (r *DesignRepo) DeleteCurrent(ctx context.Context, userID, productID uint64) error {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CurrentDesign{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSaved always inserts a new library row.
func (r *DesignRepo) CreateSaved(ctx context.Context, d *model.SavedDesign) error {
	d.ID = 0
	return r.DB.WithContext(ctx).Create(d).Error
}

// SavedFilter narrows library listings.
type SavedFilter struct {
	ProductID uint64
	Favorite  *bool
}

// ListSaved returns the user's library, newest first.
func (r *DesignRepo) ListSaved(ctx context.Context, userID uint64, f SavedFilter) ([]model.SavedDesign, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Favorite != nil {
		q = q.Where("is_favorite = ?", *f.Favorite)
	}
	var out []model.SavedDesign
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// GetSaved loads a library design owned by userID.
func (r *DesignRepo) GetSaved(ctx context.Context, id, userID uint64) (*model.SavedDesign, error) {
	var d model.SavedDesign
	if err := r.DB.WithContext(ctx).First(&d, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrForbidden
	}
	return &d, nil
}

// RenameSaved changes the display name of an owned design.
func (r *DesignRepo) RenameSaved(ctx context.Context, id, userID uint64, name string) (*model.SavedDesign, error) {
	return r.updateSaved(ctx, id, userID, map[string]any{"name": name})
}

// ToggleSavedFavorite flips is_favorite in one statement.
func (r *DesignRepo) ToggleSavedFavorite(ctx context.Context, id, userID uint64) (*model.SavedDesign, error) {
	return r.updateSaved(ctx, id, userID, map[string]any{"is_favorite": gorm.Expr("NOT is_favorite")})
}

// DeleteSaved removes an owned library design.
func (r *DesignRepo) DeleteSaved(ctx context.Context, id, userID uint64) error {
	if _, err := r.GetSaved(ctx, id, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.SavedDesign{}).Error
}

func (r *DesignRepo) updateSaved(ctx context.Context, id, userID uint64, updates map[string]any) (*model.SavedDesign, error) {
	if _, err := r.GetSaved(ctx, id, userID); err != nil {
		return nil, err
	}
	updates["updated_at"] = r.Now().UTC()
	err := r.DB.WithContext(ctx).Model(&model.SavedDesign{}).
		Where("id = ? AND user_id = ?", id, userID).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.GetSaved(ctx, id, userID)
}
