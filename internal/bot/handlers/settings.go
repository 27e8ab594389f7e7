package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/events"
	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/keyboard"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	settingscycle "github.com/leonmmcoset/mtr-nav-bot/internal/settings"
)

// NewSettingsHandler returns the /settings handler showing the inline panel.
func NewSettingsHandler(
	repo repository.ProfileRepository,
	kb *keyboard.Builder,
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
		current, err := repo.GetSettings(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		return c.Send(tr.T("settings.title"), kb.SettingsPanel(current))
	}
}

// NewSettingsCallback applies one panel button press: cycle or toggle the
// field, persist, and redraw the panel in place.
func NewSettingsCallback(
	repo repository.ProfileRepository,
	kb *keyboard.Builder,
	tr i18n.Translator,
	log *slog.Logger,
) func(c telebot.Context, field events.SettingsField) error {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context, field events.SettingsField) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		current, err := repo.GetSettings(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		switch field {
		case events.FieldDetail:
			current.Detail = settingscycle.Toggle(current.Detail)
		case events.FieldHighSpeed:
			current.HighSpeed = settingscycle.Toggle(current.HighSpeed)
		case events.FieldBoat:
			current.Boat = settingscycle.Toggle(current.Boat)
		case events.FieldWalkingWild:
			current.WalkingWild = settingscycle.Toggle(current.WalkingWild)
		case events.FieldOnlyLRT:
			current.OnlyLRT = settingscycle.Toggle(current.OnlyLRT)
		case events.FieldMaxHour:
			current.MaxHour = settingscycle.NextMaxHour(current.MaxHour)
		case events.FieldMinHour:
			next := settingscycle.NextMinHour(current.MinHourValue())
			current.MinHour = &next
		case events.FieldMaxTransfers:
			next := settingscycle.NextMaxTransfers(current.MaxTransfersValue())
			current.MaxTransfers = &next
		case events.FieldPreferFast:
			next := settingscycle.Toggle(current.PreferFastValue())
			current.PreferFast = &next
		case events.FieldPreferLessTransfer:
			next := settingscycle.Toggle(current.PreferLessTransferValue())
			current.PreferLessTransfer = &next
		case events.FieldTimezone:
			next := settingscycle.NextTimezone(current.TimezoneValue())
			current.Timezone = &next
		case events.FieldMapLink:
			link, changed := settingscycle.ResetMapLink(current.MapLinkValue())
			if !changed {
				// Already on the default: the button only works as a reset.
				return c.Respond(&telebot.CallbackResponse{Text: tr.T("maplink.use_setmap")})
			}
			current.MapLink = link
		case events.FieldReset:
			current = settingscycle.ResetAll()
		default:
			return apperrors.NewSessionError("unknown settings field")
		}

		if err := repo.SaveSettings(userID, current); err != nil {
			return apperrors.NewStoreError(err)
		}

		log.Info("setting changed",
			slog.Int64("user_id", userID),
			slog.String("field", string(field)),
		)

		if err := c.Edit(tr.T("settings.title"), kb.SettingsPanel(current)); err != nil {
			return err
		}
		return c.Respond(&telebot.CallbackResponse{})
	}
}
