package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// Attempter makes one immediate pass over queued deletions.  The outbox
// reconciler satisfies it.
type Attempter interface {
	Attempt(ctx context.Context, rows []model.ImageDeletion) int
}

// ImageService fronts the image host.  Deletes that fail are parked in the
// outbox instead of being dropped.
type ImageService struct {
	Host    imagehost.Host
	Outbox  *repository.ImageDeletionRepo
	Cleaner Attempter
	Log     *zap.Logger
}

func NewImageService(host imagehost.Host, outbox *repository.ImageDeletionRepo, cleaner Attempter, log *zap.Logger) *ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{Host: host, Outbox: outbox, Cleaner: cleaner, Log: log}
}

// Upload validates folder and content type and stores the file.
func (s *ImageService) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (imagehost.Asset, error) {
	if !imagehost.ValidFolder(folder) {
		return imagehost.Asset{}, invalid("folder must be one of graphics, patterns, previews, products, designs")
	}
	if !imagehost.ValidContentType(contentType) {
		return imagehost.Asset{}, invalid("only image uploads are accepted")
	}
	return s.Host.Upload(ctx, folder, filename, contentType, body, size)
}

// Destroy deletes publicID now.  When the host fails the delete is queued
// and queued is true.
func (s *ImageService) Destroy(ctx context.Context, publicID string) (queued bool, err error) {
	if publicID == "" {
		return false, invalid("public_id is required")
	}
	if err := s.Host.Destroy(ctx, publicID); err != nil {
		s.Log.Warn("image destroy failed; queued for retry", zap.String("public_id", publicID), zap.Error(err))
		if _, qErr := s.Outbox.Enqueue(ctx, []string{publicID}, repository.ReasonManual); qErr != nil {
			return false, qErr
		}
		return true, nil
	}
	return false, nil
}

// DeleteFolder removes every object below folder.
func (s *ImageService) DeleteFolder(ctx context.Context, folder string) (int, error) {
	if !imagehost.ValidFolder(folder) {
		return 0, invalid("unknown folder %q", folder)
	}
	return s.Host.DeleteFolder(ctx, folder)
}

// Cleanup makes the best-effort immediate attempt for rows queued by a
// committed transaction.  Whatever fails stays in the outbox.
func (s *ImageService) Cleanup(ctx context.Context, rows []model.ImageDeletion) {
	if len(rows) == 0 || s.Cleaner == nil {
		return
	}
	s.Cleaner.Attempt(context.WithoutCancel(ctx), rows)
}
