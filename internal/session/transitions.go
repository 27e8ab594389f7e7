package session

// validTransitions contains the permitted forward steps per flow. Returning
// to idle is always allowed from any state (cancellation and completion).
var validTransitions = map[Step][]State{
	{FlowQuery, StateIdle}:                 {StateAwaitingStartStation},
	{FlowQuery, StateAwaitingStartStation}: {StateAwaitingEndStation},
	{FlowQuery, StateAwaitingEndStation}:   {},

	{FlowAddShortcut, StateIdle}:                 {StateAwaitingRouteName},
	{FlowAddShortcut, StateAwaitingRouteName}:    {StateAwaitingStartStation},
	{FlowAddShortcut, StateAwaitingStartStation}: {StateAwaitingEndStation},
	{FlowAddShortcut, StateAwaitingEndStation}:   {},

	{FlowDeleteShortcut, StateIdle}:                    {StateAwaitingDeleteSelection},
	{FlowDeleteShortcut, StateAwaitingDeleteSelection}: {},

	{FlowSetMapLink, StateIdle}:            {StateAwaitingMapLink},
	{FlowSetMapLink, StateAwaitingMapLink}: {},
}

// IsTransitionAllowed reports whether the flow may move from one state to
// another.
func IsTransitionAllowed(flow Flow, from, to State) bool {
	if to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[Step{Flow: flow, State: from}]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
