package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
)

func TestNextMaxHour(t *testing.T) {
	testCases := []struct {
		current int
		want    int
	}{
		{1, 2},
		{3, 4},
		{11, 12},
		{12, 1},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, NextMaxHour(tc.current), "NextMaxHour(%d)", tc.current)
	}
}

func TestNextMinHour(t *testing.T) {
	assert.Equal(t, 1, NextMinHour(0))
	assert.Equal(t, 12, NextMinHour(11))
	assert.Equal(t, 0, NextMinHour(12))
}

func TestNextMaxTransfers(t *testing.T) {
	assert.Equal(t, 11, NextMaxTransfers(10))
	assert.Equal(t, 20, NextMaxTransfers(19))
	assert.Equal(t, 0, NextMaxTransfers(20))
}

func TestNextTimezone(t *testing.T) {
	testCases := []struct {
		current int
		want    int
	}{
		{8, 9},
		{11, 12},
		{12, -12},
		{-12, -11},
		{-1, 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, NextTimezone(tc.current), "NextTimezone(%d)", tc.current)
	}
}

func TestResetMapLink(t *testing.T) {
	link, changed := ResetMapLink("http://example.com:9999")
	assert.True(t, changed)
	assert.Equal(t, domain.DefaultMapLink, link)

	link, changed = ResetMapLink(domain.DefaultMapLink)
	assert.False(t, changed, "the default link must not be resettable")
	assert.Equal(t, domain.DefaultMapLink, link)
}

func TestResetAll(t *testing.T) {
	s := ResetAll()

	assert.False(t, s.Detail)
	assert.True(t, s.HighSpeed)
	assert.True(t, s.Boat)
	assert.False(t, s.WalkingWild)
	assert.False(t, s.OnlyLRT)
	assert.Equal(t, 3, s.MaxHour)
	assert.Equal(t, 0, s.MinHourValue())
	assert.Equal(t, 10, s.MaxTransfersValue())
	assert.True(t, s.PreferFastValue())
	assert.False(t, s.PreferLessTransferValue())
	assert.Equal(t, 8, s.TimezoneValue())
	assert.Equal(t, domain.DefaultMapLink, s.MapLinkValue())
}
