package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

// NewCancelHandler ends any open conversation session. Cancellation is
// accepted in every state and never touches persisted data.
func NewCancelHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("cancel handler invoked without sender context")
			return nil
		}

		userID := c.Sender().ID
		sessions.Clear(userID)
		log.Info("session cancelled", slog.Int64("user_id", userID))

		return c.Send(tr.T("cancel.done"))
	}
}
