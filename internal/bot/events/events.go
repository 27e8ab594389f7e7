// Package events decodes inline-callback payloads into a closed set of
// event kinds at the router boundary, so handler logic never pattern-matches
// raw callback strings.
package events

import (
	"fmt"
	"strconv"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/keyboard"
)

// Callback uniques, the first segment of every callback payload.
const (
	UniqueSettings    = "settings"
	UniqueHistory     = "history"
	UniqueDeleteRoute = "delroute"
)

// SettingsField identifies one button of the settings panel.
type SettingsField string

const (
	FieldDetail             SettingsField = "detail"
	FieldHighSpeed          SettingsField = "high_speed"
	FieldBoat               SettingsField = "boat"
	FieldWalkingWild        SettingsField = "walking_wild"
	FieldOnlyLRT            SettingsField = "only_lrt"
	FieldMaxHour            SettingsField = "max_hour"
	FieldMinHour            SettingsField = "min_hour"
	FieldMaxTransfers       SettingsField = "max_transfers"
	FieldPreferFast         SettingsField = "prefer_fast"
	FieldPreferLessTransfer SettingsField = "prefer_less_transfer"
	FieldTimezone           SettingsField = "timezone"
	FieldMapLink            SettingsField = "map_link"
	FieldReset              SettingsField = "reset"
)

var settingsFields = map[SettingsField]struct{}{
	FieldDetail:             {},
	FieldHighSpeed:          {},
	FieldBoat:               {},
	FieldWalkingWild:        {},
	FieldOnlyLRT:            {},
	FieldMaxHour:            {},
	FieldMinHour:            {},
	FieldMaxTransfers:       {},
	FieldPreferFast:         {},
	FieldPreferLessTransfer: {},
	FieldTimezone:           {},
	FieldMapLink:            {},
	FieldReset:              {},
}

// Event is the decoded form of one callback payload. Exactly one of the
// typed members is meaningful, selected by Kind.
type Event struct {
	Kind          Kind
	SettingsField SettingsField // KindSettings
	HistoryIndex  int           // KindHistory
	ShortcutName  string        // KindDeleteShortcut
}

// Kind enumerates the closed set of callback event kinds.
type Kind int

const (
	KindSettings Kind = iota
	KindHistory
	KindDeleteShortcut
)

// Decode parses raw callback data. Unknown uniques, unknown settings fields,
// and non-numeric history indices are all decode errors.
func Decode(data string) (Event, error) {
	unique, payload, err := keyboard.DecodeCallback(data)
	if err != nil {
		return Event{}, err
	}

	switch unique {
	case UniqueSettings:
		field := SettingsField(payload)
		if _, ok := settingsFields[field]; !ok {
			return Event{}, fmt.Errorf("unknown settings field %q", payload)
		}
		return Event{Kind: KindSettings, SettingsField: field}, nil

	case UniqueHistory:
		index, err := strconv.Atoi(payload)
		if err != nil || index < 0 {
			return Event{}, fmt.Errorf("invalid history index %q", payload)
		}
		return Event{Kind: KindHistory, HistoryIndex: index}, nil

	case UniqueDeleteRoute:
		if payload == "" {
			return Event{}, fmt.Errorf("empty shortcut name")
		}
		return Event{Kind: KindDeleteShortcut, ShortcutName: payload}, nil

	default:
		return Event{}, fmt.Errorf("unknown callback unique %q", unique)
	}
}
