package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
)

// NewHelpHandler returns the /start and /help handler.
func NewHelpHandler(tr i18n.Translator) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}
		return c.Send(tr.T("help.text"))
	}
}
