package keyboard

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
)

// Uniques reused by the builder. They mirror the decoder in internal/bot/events;
// the two packages cannot import each other's constants without a cycle.
const (
	uniqueSettings    = "settings"
	uniqueHistory     = "history"
	uniqueDeleteRoute = "delroute"
)

// Builder creates the bot's inline keyboards.
type Builder struct {
	tr  i18n.Translator
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(tr i18n.Translator, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{tr: tr, log: log}
}

// SettingsPanel renders the settings panel reflecting the current values.
// Every button press cycles or toggles one field.
func (b *Builder) SettingsPanel(s *domain.Settings) *telebot.ReplyMarkup {
	mapLinkLabel := b.tr.T("maplink.type_custom")
	if s.MapLinkValue() == domain.DefaultMapLink {
		mapLinkLabel = b.tr.T("maplink.type_default")
	}

	kb := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.detail"), onOff(s.Detail)), Unique: uniqueSettings, Data: "detail"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.high_speed"), onOff(s.HighSpeed)), Unique: uniqueSettings, Data: "high_speed"},
		).
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.boat"), onOff(s.Boat)), Unique: uniqueSettings, Data: "boat"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.walking_wild"), onOff(s.WalkingWild)), Unique: uniqueSettings, Data: "walking_wild"},
		).
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.only_lrt"), onOff(s.OnlyLRT)), Unique: uniqueSettings, Data: "only_lrt"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.max_hour"), s.MaxHour), Unique: uniqueSettings, Data: "max_hour"},
		).
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.min_hour"), s.MinHourValue()), Unique: uniqueSettings, Data: "min_hour"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.max_transfers"), s.MaxTransfersValue()), Unique: uniqueSettings, Data: "max_transfers"},
		).
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.prefer_fast"), onOff(s.PreferFastValue())), Unique: uniqueSettings, Data: "prefer_fast"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.prefer_less_transfer"), onOff(s.PreferLessTransferValue())), Unique: uniqueSettings, Data: "prefer_less_transfer"},
		).
		AddRow(
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.timezone"), formatOffset(s.TimezoneValue())), Unique: uniqueSettings, Data: "timezone"},
			InlineButton{Text: fmt.Sprintf(b.tr.T("settings.map_link"), mapLinkLabel), Unique: uniqueSettings, Data: "map_link"},
		).
		AddRow(
			InlineButton{Text: b.tr.T("settings.reset"), Unique: uniqueSettings, Data: "reset"},
		)

	return b.mustBuild(kb)
}

// HistoryList renders one button per history entry, newest first. Tapping an
// entry re-runs the query.
func (b *Builder) HistoryList(history []domain.HistoryEntry) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for i, entry := range history {
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("%d. %s → %s", i+1, entry.Start, entry.End),
			Unique: uniqueHistory,
			Data:   fmt.Sprintf("%d", i),
		})
	}

	return b.mustBuild(kb)
}

// ShortcutDeleteList renders one delete button per shortcut.
func (b *Builder) ShortcutDeleteList(names []string, shortcuts map[string]domain.Shortcut) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, name := range names {
		shortcut := shortcuts[name]
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("/route %s - %s → %s", name, shortcut.Start, shortcut.End),
			Unique: uniqueDeleteRoute,
			Data:   name,
		})
	}

	return b.mustBuild(kb)
}

// mustBuild falls back to an empty markup when any callback payload would
// overflow the Telegram limit; user-chosen shortcut names can be
// arbitrarily long.
func (b *Builder) mustBuild(kb *InlineKeyboardBuilder) *telebot.ReplyMarkup {
	markup, err := kb.Build()
	if err != nil {
		b.log.Warn("failed to build inline keyboard", slog.Any("error", err))
		return &telebot.ReplyMarkup{}
	}
	return markup
}

func onOff(value bool) string {
	if value {
		return "✅"
	}
	return "❌"
}

func formatOffset(offset int) string {
	if offset >= 0 {
		return fmt.Sprintf("+%d", offset)
	}
	return fmt.Sprintf("%d", offset)
}
