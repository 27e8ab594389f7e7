package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRepo(t *testing.T) (*profileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_data.json")
	store := storage.New(path, testLogger())

	repo := NewProfileRepository(store, testLogger()).(*profileRepository)
	return repo, path
}

func TestGetSettings_FirstAccessCreatesDefaults(t *testing.T) {
	repo, path := testRepo(t)

	settings, err := repo.GetSettings(42)
	require.NoError(t, err)

	assert.False(t, settings.Detail)
	assert.True(t, settings.HighSpeed)
	assert.Equal(t, 3, settings.MaxHour)
	assert.Equal(t, 8, settings.TimezoneValue())
	assert.Equal(t, domain.DefaultMapLink, settings.MapLinkValue())

	// the defaults are written to disk on first access
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"timezone": 8`)
}

func TestGetSettings_BackfillsLegacyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")

	// A record written before timezone and the preference fields existed.
	legacy := `{
		"42": {
			"settings": {
				"detail": true,
				"high_speed": false,
				"boat": true,
				"walking_wild": false,
				"only_lrt": false,
				"max_hour": 5
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := storage.New(path, testLogger())
	repo := NewProfileRepository(store, testLogger())

	settings, err := repo.GetSettings(42)
	require.NoError(t, err)

	// explicit values survive
	assert.True(t, settings.Detail)
	assert.False(t, settings.HighSpeed)
	assert.Equal(t, 5, settings.MaxHour)

	// missing fields are back-filled with defaults
	assert.Equal(t, 8, settings.TimezoneValue())
	assert.Equal(t, 0, settings.MinHourValue())
	assert.Equal(t, 10, settings.MaxTransfersValue())
	assert.True(t, settings.PreferFastValue())
	assert.False(t, settings.PreferLessTransferValue())
	assert.Equal(t, domain.DefaultMapLink, settings.MapLinkValue())

	// and the repaired record is persisted
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]*domain.UserProfile
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotNil(t, doc["42"].Settings.Timezone)
	assert.Equal(t, 8, *doc["42"].Settings.Timezone)
}

func TestRecordHistory_DedupMovesToFront(t *testing.T) {
	repo, _ := testRepo(t)

	stamp := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return stamp }

	require.NoError(t, repo.RecordHistory(42, "A", "B"))
	require.NoError(t, repo.RecordHistory(42, "C", "D"))

	stamp = stamp.Add(time.Hour)
	require.NoError(t, repo.RecordHistory(42, "A", "B"))

	history, err := repo.GetHistory(42)
	require.NoError(t, err)
	require.Len(t, history, 2, "repeating a pair must not duplicate it")

	assert.Equal(t, "A", history[0].Start)
	assert.Equal(t, "B", history[0].End)
	assert.Equal(t, "2026-01-02 16:04:05", history[0].Time, "the moved entry carries the new timestamp")
	assert.Equal(t, "C", history[1].Start)
}

func TestRecordHistory_CapsAtLimit(t *testing.T) {
	repo, _ := testRepo(t)

	for i := 0; i < domain.HistoryLimit+3; i++ {
		require.NoError(t, repo.RecordHistory(42, fmt.Sprintf("S%d", i), fmt.Sprintf("E%d", i)))
	}

	history, err := repo.GetHistory(42)
	require.NoError(t, err)
	require.Len(t, history, domain.HistoryLimit)

	// newest first, oldest entries dropped
	assert.Equal(t, fmt.Sprintf("S%d", domain.HistoryLimit+2), history[0].Start)
	assert.Equal(t, "S3", history[domain.HistoryLimit-1].Start)
}

func TestRecordHistory_ConcurrentUsersBothDurable(t *testing.T) {
	repo, path := testRepo(t)

	var wg sync.WaitGroup
	for _, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, repo.RecordHistory(id, "Central", "North Bay"))
		}(userID)
	}
	wg.Wait()

	reloaded := storage.New(path, testLogger())
	for _, userID := range []int64{1, 2} {
		profile := reloaded.GetOrCreate(userID)
		assert.Len(t, profile.History, 1, "user %d history lost", userID)
	}
}

func TestDeleteShortcut(t *testing.T) {
	repo, _ := testRepo(t)

	require.NoError(t, repo.SaveShortcuts(42, map[string]domain.Shortcut{
		"home": {Start: "Central", End: "North Bay"},
		"work": {Start: "North Bay", End: "Airport"},
	}))

	require.NoError(t, repo.DeleteShortcut(42, "home"))

	shortcuts, err := repo.GetShortcuts(42)
	require.NoError(t, err)
	assert.NotContains(t, shortcuts, "home")
	assert.Contains(t, shortcuts, "work")
}

func TestDeleteShortcut_UnknownNameLeavesRecordUntouched(t *testing.T) {
	repo, _ := testRepo(t)

	require.NoError(t, repo.SaveShortcuts(42, map[string]domain.Shortcut{
		"home": {Start: "Central", End: "North Bay"},
	}))

	err := repo.DeleteShortcut(42, "nope")
	assert.ErrorIs(t, err, apperrors.ErrShortcutNotFound)

	shortcuts, getErr := repo.GetShortcuts(42)
	require.NoError(t, getErr)
	assert.Len(t, shortcuts, 1)
	assert.Contains(t, shortcuts, "home")
}
