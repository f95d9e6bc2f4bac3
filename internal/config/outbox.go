package config

import "time"

// OutboxConfig tunes the reconciler that retries image-host deletions.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// LoadOutboxConfig reads OUTBOX_* variables.
func LoadOutboxConfig() OutboxConfig {
	oc := OutboxConfig{
		PollInterval: envDur("OUTBOX_POLL_INTERVAL", 30*time.Second),
		BatchSize:    envInt("OUTBOX_BATCH_SIZE", 50),
		MaxAttempts:  envInt("OUTBOX_MAX_ATTEMPTS", 8),
		BaseBackoff:  envDur("OUTBOX_BASE_BACKOFF", time.Minute),
		MaxBackoff:   envDur("OUTBOX_MAX_BACKOFF", 6*time.Hour),
	}
	if oc.BatchSize < 1 {
		oc.BatchSize = 1
	}
	if oc.MaxAttempts < 1 {
		oc.MaxAttempts = 1
	}
	return oc
}
