// Package ratelimit bounds how often a user may trigger the bot's
// commands. Planner-backed commands carry tighter rules than ordinary
// chatter; see Rules.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded accompanies a denying Result when the key has exhausted
// its window budget.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryIn returns the whole seconds until the window frees up, at least 1,
// for "try again in N seconds" replies.
func (r *Result) RetryIn() int {
	if r == nil {
		return 1
	}

	seconds := int(time.Until(r.ResetAt).Seconds()) + 1
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Limiter answers whether one more event is allowed for the key within a
// sliding window of the given size.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
