// Package domain defines the durable per-user profile shapes shared by the
// repository and the bot handlers.
package domain

// DefaultMapLink is the map source used when the user has not configured one.
const DefaultMapLink = "http://leonmmcoset.jjxmm.win:8888"

// HistoryLimit caps the number of retained history entries per user.
const HistoryLimit = 10

// Settings holds the per-user route planning preferences.
type Settings struct {
	Detail             bool   `json:"detail"`
	HighSpeed          bool   `json:"high_speed"`
	Boat               bool   `json:"boat"`
	WalkingWild        bool   `json:"walking_wild"`
	OnlyLRT            bool   `json:"only_lrt"`
	MaxHour            int    `json:"max_hour"`
	MinHour            *int   `json:"min_hour,omitempty"`
	MaxTransfers       *int   `json:"max_transfers,omitempty"`
	PreferFast         *bool  `json:"prefer_fast,omitempty"`
	PreferLessTransfer *bool  `json:"prefer_less_transfer,omitempty"`
	Timezone           *int   `json:"timezone,omitempty"`
	MapLink            string `json:"map_link,omitempty"`
}

// DefaultSettings returns a fully populated settings record.
func DefaultSettings() *Settings {
	minHour := 0
	maxTransfers := 10
	preferFast := true
	preferLessTransfer := false
	timezone := 8

	return &Settings{
		Detail:             false,
		HighSpeed:          true,
		Boat:               true,
		WalkingWild:        false,
		OnlyLRT:            false,
		MaxHour:            3,
		MinHour:            &minHour,
		MaxTransfers:       &maxTransfers,
		PreferFast:         &preferFast,
		PreferLessTransfer: &preferLessTransfer,
		Timezone:           &timezone,
		MapLink:            DefaultMapLink,
	}
}

// MinHourValue returns the minimum trip duration, defaulting to 0.
func (s *Settings) MinHourValue() int {
	if s.MinHour == nil {
		return 0
	}
	return *s.MinHour
}

// MaxTransfersValue returns the transfer cap, defaulting to 10.
func (s *Settings) MaxTransfersValue() int {
	if s.MaxTransfers == nil {
		return 10
	}
	return *s.MaxTransfers
}

// PreferFastValue reports whether faster routes are preferred, defaulting to true.
func (s *Settings) PreferFastValue() bool {
	if s.PreferFast == nil {
		return true
	}
	return *s.PreferFast
}

// PreferLessTransferValue reports whether fewer transfers are preferred, defaulting to false.
func (s *Settings) PreferLessTransferValue() bool {
	if s.PreferLessTransfer == nil {
		return false
	}
	return *s.PreferLessTransfer
}

// TimezoneValue returns the UTC offset, defaulting to +8.
func (s *Settings) TimezoneValue() int {
	if s.Timezone == nil {
		return 8
	}
	return *s.Timezone
}

// MapLinkValue returns the configured map source, defaulting to DefaultMapLink.
func (s *Settings) MapLinkValue() string {
	if s.MapLink == "" {
		return DefaultMapLink
	}
	return s.MapLink
}

// HistoryEntry records one past route query, most recent first in the profile.
type HistoryEntry struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Time  string `json:"time"`
}

// Shortcut is a user-named saved station pair.
type Shortcut struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UserProfile is the durable record stored per Telegram user.
//
// All three sub-records are optional on disk: a freshly created profile has
// none of them, and older records may predate newer settings fields. The
// repository is responsible for back-filling defaults on read.
type UserProfile struct {
	Settings  *Settings           `json:"settings,omitempty"`
	History   []HistoryEntry      `json:"history,omitempty"`
	Shortcuts map[string]Shortcut `json:"routes,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's in-memory mirror.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}

	clone := &UserProfile{}

	if p.Settings != nil {
		s := *p.Settings
		s.MinHour = cloneInt(p.Settings.MinHour)
		s.MaxTransfers = cloneInt(p.Settings.MaxTransfers)
		s.PreferFast = cloneBool(p.Settings.PreferFast)
		s.PreferLessTransfer = cloneBool(p.Settings.PreferLessTransfer)
		s.Timezone = cloneInt(p.Settings.Timezone)
		clone.Settings = &s
	}

	if p.History != nil {
		clone.History = make([]HistoryEntry, len(p.History))
		copy(clone.History, p.History)
	}

	if p.Shortcuts != nil {
		clone.Shortcuts = make(map[string]Shortcut, len(p.Shortcuts))
		for name, shortcut := range p.Shortcuts {
			clone.Shortcuts[name] = shortcut
		}
	}

	return clone
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
