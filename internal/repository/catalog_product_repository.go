package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// ProductFilter narrows product listings.  Zero values disable a filter.
type ProductFilter struct {
	Category string
	Active   *bool
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	return q
}

func orderedImages(db *gorm.DB) *gorm.DB { return db.Order("display_order, id") }

// CatalogProductRepo stores ready-made products and their images.
type CatalogProductRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCatalogProductRepo(db *gorm.DB) *CatalogProductRepo {
	return &CatalogProductRepo{DB: db, Now: time.Now}
}

func (r *CatalogProductRepo) List(ctx context.Context, f ProductFilter) ([]model.CatalogProduct, error) {
	var out []model.CatalogProduct
	q := f.apply(r.DB.WithContext(ctx).Preload("Images", orderedImages))
	err := q.Order("id DESC").Find(&out).Error
	return out, err
}

func (r *CatalogProductRepo) GetByID(ctx context.Context, id uint64) (*model.CatalogProduct, error) {
	return r.first(r.DB.WithContext(ctx), "id = ?", id)
}

func (r *CatalogProductRepo) GetBySlug(ctx context.Context, slug string) (*model.CatalogProduct, error) {
	return r.first(r.DB.WithContext(ctx), "slug = ?", slug)
}

// Create inserts p together with its images.
func (r *CatalogProductRepo) Create(ctx context.Context, p *model.CatalogProduct) error {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update overwrites the scalar fields of p.  When images is non-nil the
// image set is replaced and the outbox rows queued for the public ids
// that dropped out are returned.
func (r *CatalogProductRepo) Update(ctx context.Context, p *model.CatalogProduct, images []model.CatalogProductImage) ([]model.ImageDeletion, error) {
	var superseded []model.ImageDeletion
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.first(tx, "id = ?", p.ID); err != nil {
			return err
		}
		if err := tx.Model(p).Select("*").Omit("id", "created_at", "Images").Updates(p).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		if images == nil {
			return nil
		}
		ids := make([]string, len(images))
		for i := range images {
			images[i].ID = 0
			images[i].ProductID = p.ID
			ids[i] = images[i].PublicID
		}
		var err error
		superseded, err = replaceImages(tx, p.ID, images, ids, r.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	fresh, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	*p = *fresh
	return superseded, nil
}

// Delete removes the product and its images in one transaction and returns
// the outbox rows queued for their public ids.
func (r *CatalogProductRepo) Delete(ctx context.Context, id uint64) ([]model.ImageDeletion, error) {
	var queued []model.ImageDeletion
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.first(tx, "id = ?", id); err != nil {
			return err
		}
		var err error
		if queued, err = dropImages[model.CatalogProductImage](tx, id, r.Now()); err != nil {
			return err
		}
		return tx.Delete(&model.CatalogProduct{}, id).Error
	})
	return queued, err
}

func (r *CatalogProductRepo) first(db *gorm.DB, query string, arg any) (*model.CatalogProduct, error) {
	var p model.CatalogProduct
	if err := db.Preload("Images", orderedImages).Where(query, arg).First(&p).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
