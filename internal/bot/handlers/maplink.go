package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

// NewSetMapLinkHandler returns the /setmap entry handler.
func NewSetMapLinkHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		sessions.Begin(userID, session.FlowSetMapLink, session.StateAwaitingMapLink)
		log.Info("set-map-link flow started", slog.Int64("user_id", userID))

		return c.Send(tr.T("maplink.prompt"))
	}
}

// NewMapLinkInputHandler consumes the new map link. Blank input aborts the
// flow without touching the saved link.
func NewMapLinkInputHandler(
	sessions *session.Manager,
	repo repository.ProfileRepository,
	tr i18n.Translator,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		sessions.Clear(userID)

		link := strings.TrimSpace(c.Text())
		if link == "" {
			return apperrors.NewFlowInputError(tr.T("maplink.empty"))
		}

		current, err := repo.GetSettings(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}
		current.MapLink = strings.TrimRight(link, "/")
		if err := repo.SaveSettings(userID, current); err != nil {
			return apperrors.NewStoreError(err)
		}

		log.Info("map link changed", slog.Int64("user_id", userID), slog.String("link", current.MapLink))

		return c.Send(fmt.Sprintf(tr.T("maplink.updated"), current.MapLink))
	}
}

// NewSeeMapHandler returns the /seemap handler showing the active map link.
func NewSeeMapHandler(repo repository.ProfileRepository, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		current, err := repo.GetSettings(c.Sender().ID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		link := current.MapLinkValue()
		linkType := tr.T("maplink.type_custom")
		hint := tr.T("maplink.hint_custom")
		if link == domain.DefaultMapLink {
			linkType = tr.T("maplink.type_default")
			hint = tr.T("maplink.hint_default")
		}

		var sb strings.Builder
		sb.WriteString(tr.T("maplink.view_header"))
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(tr.T("maplink.view_link"), link))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf(tr.T("maplink.view_type"), linkType))
		sb.WriteString("\n\n")
		sb.WriteString(hint)

		return c.Send(sb.String())
	}
}
