package session

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner silently returns abandoned sessions to idle on a schedule. A human
// can walk away from a multi-step flow indefinitely; without expiry those
// sessions would accumulate forever.
type Cleaner struct {
	manager  *Manager
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(manager *Manager, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		manager:  manager,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.manager == nil || c.ttl <= 0 || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if reason := ctx.Err(); reason != nil {
				c.log.Info("session cleaner stopped", slog.String("reason", reason.Error()))
			} else {
				c.log.Info("session cleaner stopped")
			}
			return
		case <-ticker.C:
			for _, userID := range c.manager.expireIdle(c.ttl) {
				c.log.Info("idle session expired", slog.Int64("user_id", userID))
			}
		}
	}
}
