package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// ErrTokenReused signals that a refresh token which was already rotated or
// revoked has been presented again.
var ErrTokenReused = errors.New("refresh token reused")

// ErrTokenInvalid covers unknown and expired refresh tokens.
var ErrTokenInvalid = errors.New("invalid refresh token")

// TokenRepo persists and rotates refresh tokens (only the hash is stored).
type TokenRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{DB: db, Now: time.Now} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) (*model.RefreshToken, error) {
	t := &model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp.UTC()}
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// Rotate exchanges the token identified by oldHash for a new one.  The old
// row is revoked with a conditional update so two concurrent refreshes
// cannot both succeed.  A token that is already revoked yields
// ErrTokenReused together with its owner's id.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (*model.RefreshToken, error) {
	var next *model.RefreshToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.RefreshToken
		if err := tx.Where("token_hash = ?", oldHash).First(&cur).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrTokenInvalid
			}
			return err
		}
		now := r.Now().UTC()
		if cur.RevokedAt != nil {
			next = &model.RefreshToken{UserID: cur.UserID}
			return ErrTokenReused
		}
		if !now.Before(cur.ExpiresAt) {
			return ErrTokenInvalid
		}

		res := tx.Model(&model.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", cur.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			next = &model.RefreshToken{UserID: cur.UserID}
			return ErrTokenReused
		}

		n := model.RefreshToken{UserID: cur.UserID, TokenHash: newHash, ExpiresAt: exp.UTC()}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.RefreshToken{}).Where("id = ?", cur.ID).
			Update("replaced_by_id", n.ID).Error; err != nil {
			return err
		}
		next = &n
		return nil
	})
	return next, err
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", r.Now().UTC()).Error
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.Now().UTC()).Error
}
