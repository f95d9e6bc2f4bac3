// Package outbox drains the image_deletions table: every row is a delete
// that must eventually reach the image host even when the first attempt
// failed.
package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/metrics"
	"github.com/iliyamo/apparel-studio/internal/model"
)

// Store is the persistence the reconciler needs.
type Store interface {
	Due(ctx context.Context, now time.Time, limit int) ([]model.ImageDeletion, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkRetry(ctx context.Context, id uint64, attempts int, next time.Time, lastErr string, failed bool) error
}

// Reconciler retries pending deletions with exponential backoff.
type Reconciler struct {
	Store Store
	Host  imagehost.Host
	Cfg   config.OutboxConfig
	Log   *zap.Logger
	Now   func() time.Time
}

func New(store Store, host imagehost.Host, cfg config.OutboxConfig, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{Store: store, Host: host, Cfg: cfg, Log: log, Now: time.Now}
}

// Backoff returns the delay before the next attempt after `attempts`
// failures: base * 2^(attempts-1), capped at MaxBackoff.
func (r *Reconciler) Backoff(attempts int) time.Duration {
	d := r.Cfg.BaseBackoff
	if d <= 0 {
		d = time.Minute
	}
	for i := 1; i < attempts; i++ {
		d *= 2
		if r.Cfg.MaxBackoff > 0 && d >= r.Cfg.MaxBackoff {
			return r.Cfg.MaxBackoff
		}
	}
	if r.Cfg.MaxBackoff > 0 && d > r.Cfg.MaxBackoff {
		return r.Cfg.MaxBackoff
	}
	return d
}

// Attempt tries each row once.  Successes are marked done; failures are
// rescheduled, or marked failed once MaxAttempts is reached.  It returns
// how many rows were deleted on the host.
func (r *Reconciler) Attempt(ctx context.Context, rows []model.ImageDeletion) int {
	done := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return done
		}
		err := r.Host.Destroy(ctx, row.PublicID)
		if err == nil {
			if mErr := r.Store.MarkDone(ctx, row.ID); mErr != nil {
				r.Log.Error("outbox: mark done failed", zap.Uint64("id", row.ID), zap.Error(mErr))
				continue
			}
			metrics.RecordImageDeletion("done")
			done++
			continue
		}

		attempts := row.Attempts + 1
		failed := attempts >= r.Cfg.MaxAttempts
		next := r.Now().Add(r.Backoff(attempts))
		if mErr := r.Store.MarkRetry(ctx, row.ID, attempts, next, err.Error(), failed); mErr != nil {
			r.Log.Error("outbox: reschedule failed", zap.Uint64("id", row.ID), zap.Error(mErr))
			continue
		}
		outcome := "retry"
		if failed {
			outcome = "failed"
		}
		metrics.RecordImageDeletion(outcome)
		r.Log.Warn("image delete failed",
			zap.String("public_id", row.PublicID),
			zap.Int("attempts", attempts),
			zap.Bool("gave_up", failed),
			zap.Time("next_attempt_at", next),
			zap.Error(err))
	}
	return done
}

// RunOnce processes one batch of due rows.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	rows, err := r.Store.Due(ctx, r.Now(), r.Cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	return r.Attempt(ctx, rows), nil
}

// Run polls until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	interval := r.Cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	r.Log.Info("outbox reconciler started", zap.Duration("interval", interval))
	for {
		if n, err := r.RunOnce(ctx); err != nil {
			r.Log.Error("outbox: poll failed", zap.Error(err))
		} else if n > 0 {
			r.Log.Info("outbox: image deletions completed", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			r.Log.Info("outbox reconciler stopped")
			return
		case <-t.C:
		}
	}
}
