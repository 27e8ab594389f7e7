package ratelimit

import (
	"errors"
	"time"

	"github.com/leonmmcoset/mtr-nav-bot/pkg/config"
)

// ErrNoRule indicates that no rate limit rule is configured for a command.
var ErrNoRule = errors.New("no rate limit rule for command")

// Rules encapsulates configured rate limits and helper methods.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting is turned on at all.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}
	return false
}

// GetCommandLimit returns the limit and window for a specific command.
// Commands without a configured rule fall back to the per-user limit.
func (r *Rules) GetCommandLimit(command string) (int, time.Duration, error) {
	switch command {
	case "path":
		return parseRule(r.config.Commands.Path)
	case "search":
		return parseRule(r.config.Commands.Search)
	case "station":
		return parseRule(r.config.Commands.Station)
	case "route":
		return parseRule(r.config.Commands.Route)
	default:
		return 0, 0, ErrNoRule
	}
}

// GetPerUserLimit returns the per-user rate limiting rule.
func (r *Rules) GetPerUserLimit() (int, time.Duration, error) {
	return parseRule(r.config.PerUser)
}

func parseRule(rule config.RateLimitRule) (int, time.Duration, error) {
	if rule.Limit <= 0 {
		return 0, 0, ErrNoRule
	}
	if rule.Window == "" {
		return rule.Limit, 0, errors.New("window duration is not set")
	}
	window, err := time.ParseDuration(rule.Window)
	if err != nil {
		return 0, 0, err
	}
	return rule.Limit, window, nil
}
