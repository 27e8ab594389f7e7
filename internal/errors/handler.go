package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/leonmmcoset/mtr-nav-bot/pkg/logger"
)

const fallbackUserMessage = "发生错误，请稍后重试。"

// Handler converts errors reaching the handler boundary into a user-facing
// message plus a log entry, forwarding severe ones to Sentry when enabled.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle logs the error and returns the message to show the user and whether
// the failed operation may be retried. Errors without an AppError in their
// chain are treated as high severity with the generic message.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var appErr *AppError
	classified := errors.As(err, &appErr) && appErr != nil

	message := err.Error()
	severity := SeverityHigh
	retryable := false
	userMessage := fallbackUserMessage
	code := ""

	if classified {
		message = appErr.Message
		severity = appErr.Severity
		retryable = appErr.Retryable
		code = appErr.Code
		if appErr.UserMessage != "" {
			userMessage = appErr.UserMessage
		}
	}

	attrs := []slog.Attr{
		slog.String("message", message),
		slog.String("severity", string(severity)),
		slog.Bool("retryable", retryable),
	}
	if code != "" {
		attrs = append(attrs, slog.String("code", code))
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	h.log.LogAttrs(ctx, slog.LevelError, "update handling failed", attrs...)

	if h.sentryEnabled && (severity == SeverityCritical || severity == SeverityHigh) {
		reportToSentry(err, code, severity)
	}

	return userMessage, retryable
}

func reportToSentry(err error, code string, severity Severity) {
	sentry.WithScope(func(scope *sentry.Scope) {
		if code != "" {
			scope.SetTag("code", code)
		}
		if severity != "" {
			scope.SetTag("severity", string(severity))
		}

		sentry.CaptureException(err)
	})
}
