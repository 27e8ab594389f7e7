package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrInvalidTransition indicates that a requested step change is not allowed.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSessionNotFound indicates that the user has no open session.
	ErrSessionNotFound = errors.New("session not found")
)

var transitionRecorder = func(flow, from, to string) {}

// RegisterTransitionRecorder allows external packages to observe transitions.
func RegisterTransitionRecorder(recorder func(flow, from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Manager owns every open conversation session, one at most per user, and
// the per-user locks that keep same-user events strictly ordered.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
	log      *slog.Logger
	now      func() time.Time
}

// NewManager creates an empty session registry.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
		log:      log,
		now:      time.Now,
	}
}

// LockUser serializes handling for one user: the returned unlock function
// must be called when the handler finishes. Handlers for different users run
// concurrently; concurrent events for the same user queue here instead of
// racing on the session scratch.
func (m *Manager) LockUser(userID int64) func() {
	m.mu.Lock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get returns the user's open session, or ErrSessionNotFound.
func (m *Manager) Get(userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copySess := *sess
	return &copySess, nil
}

// Begin opens a new session for the flow's entry state. Any in-flight
// session for the user is discarded silently, matching the source behavior
// where a new flow command always wins.
func (m *Manager) Begin(userID int64, flow Flow, entry State) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[userID]; ok {
		m.log.Info("replacing in-flight session",
			slog.Int64("user_id", userID),
			slog.String("old_flow", string(old.Flow)),
			slog.String("new_flow", string(flow)),
		)
	}

	transitionRecorder(string(flow), string(StateIdle), string(entry))

	sess := &Session{
		UserID:    userID,
		Flow:      flow,
		State:     entry,
		UpdatedAt: m.now(),
	}
	m.sessions[userID] = sess

	copySess := *sess
	return &copySess
}

// Advance moves the user's session to the next state, optionally updating
// the scratch, after validating the transition.
func (m *Manager) Advance(userID int64, to State, update func(*Scratch)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}

	if !IsTransitionAllowed(sess.Flow, sess.State, to) {
		m.log.Warn("invalid session transition",
			slog.Int64("user_id", userID),
			slog.String("flow", string(sess.Flow)),
			slog.String("from", string(sess.State)),
			slog.String("to", string(to)),
		)
		return ErrInvalidTransition
	}

	transitionRecorder(string(sess.Flow), string(sess.State), string(to))

	if update != nil {
		update(&sess.Scratch)
	}
	sess.State = to
	sess.UpdatedAt = m.now()

	return nil
}

// Clear ends the user's session, returning them to idle. Clearing a user
// without a session is a no-op.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		transitionRecorder(string(sess.Flow), string(sess.State), string(StateIdle))
	}

	delete(m.sessions, userID)
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// expireIdle drops sessions untouched for longer than ttl and returns the
// affected user ids.
func (m *Manager) expireIdle(ttl time.Duration) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []int64
	cutoff := m.now().Add(-ttl)
	for userID, sess := range m.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			transitionRecorder(string(sess.Flow), string(sess.State), string(StateIdle))
			delete(m.sessions, userID)
			expired = append(expired, userID)
		}
	}

	return expired
}
