package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// LegacyUserRepo reads and provisions rows of the legacy users table.
type LegacyUserRepo struct{ DB *gorm.DB }

func NewLegacyUserRepo(db *gorm.DB) *LegacyUserRepo { return &LegacyUserRepo{DB: db} }

// ResolveRecorder picks the legacy id to stamp on ledger entries: the row
// matching email, else any row flagged admin, else nil.  It never writes.
func (r *LegacyUserRepo) ResolveRecorder(ctx context.Context, email string) (*uint64, error) {
	db := r.DB.WithContext(ctx)
	var lu model.LegacyUser
	err := db.Where("email = ?", NormalizeEmail(email)).First(&lu).Error
	if err == nil {
		return &lu.ID, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}
	err = db.Where("is_admin = ?", true).Order("id").First(&lu).Error
	if err == nil {
		return &lu.ID, nil
	}
	if database.IsNotFound(err) {
		return nil, nil
	}
	return nil, err
}

// Provision ensures an admin row exists for email.  Repeated calls return
// the same row.
func (r *LegacyUserRepo) Provision(ctx context.Context, email, name string) (*model.LegacyUser, error) {
	email = NormalizeEmail(email)
	db := r.DB.WithContext(ctx)
	row := model.LegacyUser{Email: email, Name: name, IsAdmin: true}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{"is_admin": true}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	var out model.LegacyUser
	if err := db.Where("email = ?", email).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
