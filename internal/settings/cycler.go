// Package settings holds the pure transition functions behind the settings
// panel buttons. Every function takes the current value and returns the next
// one with wrap-around; persisting the result is the caller's job.
package settings

import "github.com/leonmmcoset/mtr-nav-bot/internal/domain"

// NextMaxHour advances the maximum trip duration, wrapping 12 back to 1.
// An hour budget of zero is never valid.
func NextMaxHour(current int) int {
	if current < 12 {
		return current + 1
	}
	return 1
}

// NextMinHour advances the minimum trip duration, wrapping 12 back to 0.
func NextMinHour(current int) int {
	if current < 12 {
		return current + 1
	}
	return 0
}

// NextMaxTransfers advances the transfer cap, wrapping 20 back to 0.
func NextMaxTransfers(current int) int {
	if current < 20 {
		return current + 1
	}
	return 0
}

// NextTimezone advances the UTC offset, wrapping +12 back to -12.
func NextTimezone(current int) int {
	if current < 12 {
		return current + 1
	}
	return -12
}

// Toggle flips a boolean setting.
func Toggle(current bool) bool {
	return !current
}

// ResetMapLink restores the default map link. It reports false without
// changing anything when the link is already the default: the explicit
// set-map-link flow is the only way to move off the default.
func ResetMapLink(current string) (string, bool) {
	if current == domain.DefaultMapLink {
		return current, false
	}
	return domain.DefaultMapLink, true
}

// ResetAll restores every field to its documented default.
func ResetAll() *domain.Settings {
	return domain.DefaultSettings()
}
