package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/model"
)

// Outbox reasons for product and resource images.
const (
	ReasonImageReplaced   = "image_replaced"
	ReasonProductDeleted  = "product_deleted"
	ReasonResourceDeleted = "resource_deleted"
	ReasonManual          = "manual"
)

// replaceImages swaps the image set of a product inside tx.  Existing rows
// are deleted, the new set is inserted and every public id present before
// but absent now is queued for deletion on the image host.  The queued
// outbox rows are returned.
func replaceImages[T any](tx *gorm.DB, productID uint64, images []T, newIDs []string, now time.Time) ([]model.ImageDeletion, error) {
	var oldIDs []string
	if err := tx.Model(new(T)).Where("product_id = ?", productID).Pluck("public_id", &oldIDs).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("product_id = ?", productID).Delete(new(T)).Error; err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := tx.Create(&images).Error; err != nil {
			return nil, err
		}
	}

	keep := make(map[string]struct{}, len(newIDs))
	for _, id := range newIDs {
		keep[id] = struct{}{}
	}
	var superseded []string
	for _, id := range oldIDs {
		if _, ok := keep[id]; !ok && id != "" {
			superseded = append(superseded, id)
		}
	}
	return enqueueDeletions(tx, superseded, ReasonImageReplaced, now)
}

// dropImages deletes every image row of a product inside tx and queues
// their public ids.
func dropImages[T any](tx *gorm.DB, productID uint64, now time.Time) ([]model.ImageDeletion, error) {
	var ids []string
	if err := tx.Model(new(T)).Where("product_id = ?", productID).Pluck("public_id", &ids).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("product_id = ?", productID).Delete(new(T)).Error; err != nil {
		return nil, err
	}
	return enqueueDeletions(tx, ids, ReasonProductDeleted, now)
}
