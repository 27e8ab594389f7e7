package storage_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	"github.com/leonmmcoset/mtr-nav-bot/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) (*storage.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_data.json")
	return storage.New(path, testLogger()), path
}

func TestStore_PutSurvivesReload(t *testing.T) {
	store, path := testStore(t)

	profile := &domain.UserProfile{
		Settings: domain.DefaultSettings(),
		History: []domain.HistoryEntry{
			{Start: "Central", End: "North Bay", Time: "2026-01-02 15:04:05"},
		},
	}
	require.NoError(t, store.Put(42, profile))

	reloaded := storage.New(path, testLogger())
	got := reloaded.GetOrCreate(42)
	require.NotNil(t, got.Settings)
	assert.Equal(t, 8, got.Settings.TimezoneValue())
	require.Len(t, got.History, 1)
	assert.Equal(t, "Central", got.History[0].Start)
}

func TestStore_GetOrCreateReturnsCopy(t *testing.T) {
	store, _ := testStore(t)

	first := store.GetOrCreate(42)
	first.Shortcuts = map[string]domain.Shortcut{"home": {Start: "A", End: "B"}}

	second := store.GetOrCreate(42)
	assert.Nil(t, second.Shortcuts, "mutating a returned profile must not leak into the store")
}

func TestStore_UpdateDetachesInstalledObjects(t *testing.T) {
	store, _ := testStore(t)

	settings := domain.DefaultSettings()
	settings.MaxHour = 5
	require.NoError(t, store.Update(42, func(profile *domain.UserProfile) {
		profile.Settings = settings
	}))

	// A caller mutating its own object after the update must not leak
	// into the stored record.
	settings.MaxHour = 99

	got := store.GetOrCreate(42)
	require.NotNil(t, got.Settings)
	assert.Equal(t, 5, got.Settings.MaxHour)
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := storage.New(path, testLogger())
	assert.Equal(t, 0, store.Len())
}

func TestStore_PersistedDocumentIsValidJSON(t *testing.T) {
	store, path := testStore(t)

	require.NoError(t, store.Update(1, func(p *domain.UserProfile) {
		p.Settings = domain.DefaultSettings()
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]*domain.UserProfile
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "1")
	assert.Equal(t, domain.DefaultMapLink, doc["1"].Settings.MapLinkValue())
}

func TestStore_ConcurrentUpdatesBothDurable(t *testing.T) {
	store, path := testStore(t)

	var wg sync.WaitGroup
	for _, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := store.Update(id, func(p *domain.UserProfile) {
				p.History = append(p.History, domain.HistoryEntry{
					Start: "Central",
					End:   "North Bay",
					Time:  "2026-01-02 15:04:05",
				})
			})
			assert.NoError(t, err)
		}(userID)
	}
	wg.Wait()

	reloaded := storage.New(path, testLogger())
	for _, userID := range []int64{1, 2} {
		got := reloaded.GetOrCreate(userID)
		assert.Len(t, got.History, 1, "user %d history lost", userID)
	}
}
