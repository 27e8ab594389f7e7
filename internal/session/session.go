// Package session tracks which step of which multi-turn flow each user is
// in. Sessions are transient and in-memory only; the durable profile lives
// in the storage document.
package session

import "time"

// Flow identifies a multi-turn conversation workflow.
type Flow string

const (
	// FlowQuery collects a start and end station and plans a route.
	FlowQuery Flow = "query"
	// FlowAddShortcut collects a name and a station pair to save.
	FlowAddShortcut Flow = "add_shortcut"
	// FlowDeleteShortcut waits for the user to pick a shortcut to delete.
	FlowDeleteShortcut Flow = "delete_shortcut"
	// FlowSetMapLink waits for a new map link.
	FlowSetMapLink Flow = "set_map_link"
)

// State is one step inside a flow.
type State string

const (
	// StateIdle means no flow is open; it is the initial and terminal state.
	StateIdle State = "idle"
	// StateAwaitingStartStation waits for the start station name.
	StateAwaitingStartStation State = "awaiting_start_station"
	// StateAwaitingEndStation waits for the end station name.
	StateAwaitingEndStation State = "awaiting_end_station"
	// StateAwaitingRouteName waits for the shortcut name.
	StateAwaitingRouteName State = "awaiting_route_name"
	// StateAwaitingDeleteSelection waits for a delete button press.
	StateAwaitingDeleteSelection State = "awaiting_delete_selection"
	// StateAwaitingMapLink waits for the new map link text.
	StateAwaitingMapLink State = "awaiting_map_link"
)

// Step is the dispatch key for a flow-specific state handler.
type Step struct {
	Flow  Flow
	State State
}

// Scratch holds the partially collected inputs of an open flow. It is
// discarded on completion or cancellation, never persisted.
type Scratch struct {
	Name  string
	Start string
}

// Session is the transient per-user conversation record.
type Session struct {
	UserID    int64
	Flow      Flow
	State     State
	Scratch   Scratch
	UpdatedAt time.Time
}

// Step returns the dispatch key for the session's current position.
func (s *Session) Step() Step {
	return Step{Flow: s.Flow, State: s.State}
}
