package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	tr      i18n.Translator
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, tr i18n.Translator, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		tr:      tr,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
// Expensive commands carry their own tighter rules; everything else shares
// the per-user budget.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		key := fmt.Sprintf("user:%d", userID)
		limit, window, err := m.perUpdateLimit(c)
		if err != nil {
			m.log.Error("failed to load rate limit rule", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if result != nil && !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
			return c.Send(fmt.Sprintf(m.tr.T("ratelimit.exceeded"), result.RetryIn()))
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) perUpdateLimit(c telebot.Context) (int, time.Duration, error) {
	if cmd := commandOf(c); cmd != "" {
		limit, window, err := m.rules.GetCommandLimit(cmd)
		if err == nil {
			return limit, window, nil
		}
		if !errors.Is(err, ratelimit.ErrNoRule) {
			return 0, 0, err
		}
	}

	return m.rules.GetPerUserLimit()
}

func commandOf(c telebot.Context) string {
	text := c.Text()
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	cmd := strings.TrimPrefix(text, "/")
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}
