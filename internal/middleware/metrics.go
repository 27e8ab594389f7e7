package middleware

import (
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(actionLabel(c), status, time.Since(start))

		return err
	}
}

// actionLabel keeps the metric cardinality bounded: commands report their
// bare name, callbacks their unique, and flow replies a fixed label.
func actionLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		data := cb.Data
		if len(data) > 0 && data[0] == '\f' {
			data = data[1:]
		}
		for i := 0; i < len(data); i++ {
			if data[i] == ':' {
				return "callback:" + data[:i]
			}
		}
		return "callback"
	}

	if cmd := commandOf(c); cmd != "" {
		return "/" + cmd
	}

	if c.Text() != "" {
		return "flow_reply"
	}

	return "unknown"
}
