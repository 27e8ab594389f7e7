// Package storage owns the single durable document holding every user profile.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/metrics"
)

// Store loads and persists the user-data document. The full document is
// rewritten on every Put, so all read-modify-write cycles must run under
// Update; reads are served from the in-memory mirror.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]*domain.UserProfile
	log  *slog.Logger
}

// New creates a Store bound to the given file path and loads the existing
// document. A missing, unreadable, or corrupt file is not fatal: the store
// starts from an empty document and logs the condition.
func New(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		path: path,
		data: make(map[string]*domain.UserProfile),
		log:  log,
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("user data file not found, starting empty", slog.String("path", s.path))
			return
		}
		s.log.Error("failed to read user data file, starting empty", slog.String("path", s.path), slog.Any("error", err))
		return
	}

	var data map[string]*domain.UserProfile
	if err := json.Unmarshal(raw, &data); err != nil {
		s.log.Error("user data file is corrupt, starting empty", slog.String("path", s.path), slog.Any("error", err))
		return
	}

	s.data = data
	s.log.Info("user data loaded", slog.String("path", s.path), slog.Int("users", len(data)))
}

// GetOrCreate returns a copy of the stored profile for the user, creating an
// empty in-memory record on first access. Defaults are not populated here;
// that is the repository's migration-on-read job.
func (s *Store) GetOrCreate(userID int64) *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(userID)
	profile, ok := s.data[key]
	if !ok {
		profile = &domain.UserProfile{}
		s.data[key] = profile
	}

	return profile.Clone()
}

// Put replaces the user's record and synchronously rewrites the document.
// A write failure is logged and returned, but the in-memory mirror keeps the
// new record so the process stays consistent with what the user was told.
func (s *Store) Put(userID int64, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[userKey(userID)] = profile.Clone()

	if err := s.persistLocked(); err != nil {
		s.log.Error("failed to persist user data", slog.Int64("user_id", userID), slog.Any("error", err))
		return err
	}

	return nil
}

// Update runs fn over the user's current record under the store-wide lock and
// persists the result. This is the serialization point for every mutation:
// two concurrent updates for different users never interleave at the byte
// level, so neither can drop the other's write.
func (s *Store) Update(userID int64, fn func(profile *domain.UserProfile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(userID)
	profile, ok := s.data[key]
	if !ok {
		profile = &domain.UserProfile{}
	}

	clone := profile.Clone()
	fn(clone)
	// Clone once more so the mirror never aliases objects fn installed;
	// callers keep ownership of whatever they passed in.
	s.data[key] = clone.Clone()

	if err := s.persistLocked(); err != nil {
		s.log.Error("failed to persist user data", slog.Int64("user_id", userID), slog.Any("error", err))
		return err
	}

	return nil
}

// persistLocked writes the whole document through a temp file and an atomic
// rename so a crash mid-write never leaves an unparsable document behind.
func (s *Store) persistLocked() error {
	start := time.Now()
	defer func() { metrics.ObserveStoreWrite(time.Since(start)) }()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal user data: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace user data file: %w", err)
	}

	return nil
}

// Len reports the number of known users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// HealthCheck verifies that the document can still be written.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func userKey(userID int64) string {
	return fmt.Sprintf("%d", userID)
}
