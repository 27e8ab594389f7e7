// Package repository exposes typed operations over one user's profile,
// reading and writing through the storage document.
package repository

import (
	"log/slog"
	"time"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/storage"
)

// ProfileRepository defines the persistence operations used by the handlers.
type ProfileRepository interface {
	GetSettings(userID int64) (*domain.Settings, error)
	SaveSettings(userID int64, settings *domain.Settings) error
	GetHistory(userID int64) ([]domain.HistoryEntry, error)
	RecordHistory(userID int64, start, end string) error
	GetShortcuts(userID int64) (map[string]domain.Shortcut, error)
	SaveShortcuts(userID int64, shortcuts map[string]domain.Shortcut) error
	DeleteShortcut(userID int64, name string) error
}

type profileRepository struct {
	store *storage.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewProfileRepository creates a repository backed by the given store.
func NewProfileRepository(store *storage.Store, log *slog.Logger) ProfileRepository {
	if log == nil {
		log = slog.Default()
	}

	return &profileRepository{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// GetSettings returns the user's settings, creating defaults on first access
// and back-filling fields that older records predate. Repaired records are
// persisted immediately so the migration runs at most once per user.
func (r *profileRepository) GetSettings(userID int64) (*domain.Settings, error) {
	profile := r.store.GetOrCreate(userID)

	if profile.Settings == nil {
		profile.Settings = domain.DefaultSettings()
		return profile.Settings, r.persist(userID, profile)
	}

	if repairSettings(profile.Settings) {
		r.log.Info("back-filled missing settings fields", slog.Int64("user_id", userID))
		return profile.Settings, r.persist(userID, profile)
	}

	return profile.Settings, nil
}

// SaveSettings replaces the settings sub-record wholesale.
func (r *profileRepository) SaveSettings(userID int64, settings *domain.Settings) error {
	return r.store.Update(userID, func(profile *domain.UserProfile) {
		profile.Settings = settings
	})
}

// GetHistory returns the query history, persisting an empty sequence the
// first time a user is seen.
func (r *profileRepository) GetHistory(userID int64) ([]domain.HistoryEntry, error) {
	profile := r.store.GetOrCreate(userID)

	if profile.History == nil {
		profile.History = []domain.HistoryEntry{}
		return profile.History, r.persist(userID, profile)
	}

	return profile.History, nil
}

// RecordHistory upserts the (start, end) pair to the front of the history and
// truncates to the retention limit. An existing entry with the same pair is
// removed first, so the pair moves to the front instead of duplicating.
func (r *profileRepository) RecordHistory(userID int64, start, end string) error {
	return r.store.Update(userID, func(profile *domain.UserProfile) {
		history := profile.History

		for i, entry := range history {
			if entry.Start == start && entry.End == end {
				history = append(history[:i], history[i+1:]...)
				break
			}
		}

		entry := domain.HistoryEntry{
			Start: start,
			End:   end,
			Time:  r.now().Format("2006-01-02 15:04:05"),
		}
		history = append([]domain.HistoryEntry{entry}, history...)

		if len(history) > domain.HistoryLimit {
			history = history[:domain.HistoryLimit]
		}

		profile.History = history
	})
}

// GetShortcuts returns the named shortcut map, persisting an empty map on
// first access.
func (r *profileRepository) GetShortcuts(userID int64) (map[string]domain.Shortcut, error) {
	profile := r.store.GetOrCreate(userID)

	if profile.Shortcuts == nil {
		profile.Shortcuts = map[string]domain.Shortcut{}
		return profile.Shortcuts, r.persist(userID, profile)
	}

	return profile.Shortcuts, nil
}

// SaveShortcuts replaces the shortcut map wholesale.
func (r *profileRepository) SaveShortcuts(userID int64, shortcuts map[string]domain.Shortcut) error {
	return r.store.Update(userID, func(profile *domain.UserProfile) {
		profile.Shortcuts = shortcuts
	})
}

// DeleteShortcut removes the named shortcut. Deleting an unknown name returns
// ErrShortcutNotFound without touching the stored record.
func (r *profileRepository) DeleteShortcut(userID int64, name string) error {
	profile := r.store.GetOrCreate(userID)

	if _, ok := profile.Shortcuts[name]; !ok {
		return apperrors.ErrShortcutNotFound
	}

	return r.store.Update(userID, func(profile *domain.UserProfile) {
		delete(profile.Shortcuts, name)
	})
}

func (r *profileRepository) persist(userID int64, profile *domain.UserProfile) error {
	return r.store.Put(userID, profile)
}

// repairSettings back-fills fields introduced after the original settings
// schema and reports whether anything was missing.
func repairSettings(s *domain.Settings) bool {
	defaults := domain.DefaultSettings()
	repaired := false

	if s.MinHour == nil {
		s.MinHour = defaults.MinHour
		repaired = true
	}
	if s.MaxTransfers == nil {
		s.MaxTransfers = defaults.MaxTransfers
		repaired = true
	}
	if s.PreferFast == nil {
		s.PreferFast = defaults.PreferFast
		repaired = true
	}
	if s.PreferLessTransfer == nil {
		s.PreferLessTransfer = defaults.PreferLessTransfer
		repaired = true
	}
	if s.Timezone == nil {
		s.Timezone = defaults.Timezone
		repaired = true
	}
	if s.MapLink == "" {
		s.MapLink = defaults.MapLink
		repaired = true
	}

	return repaired
}
