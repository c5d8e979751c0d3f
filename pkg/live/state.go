package live

import "fmt"

// State is the lifecycle state of a managed connection.
type State string

// Event drives State transitions.
type Event string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
	StateError      State = "error"
)

const (
	EventDial      Event = "dial"
	EventConnected Event = "connected"
	EventDropped   Event = "dropped"
	EventFailed    Event = "failed"
	EventRetry     Event = "retry"
	EventClose     Event = "close"
)

// States lists every state in display order.
var States = []State{StateConnecting, StateOpen, StateClosed, StateError}

var transitions = map[State]map[Event]State{
	StateClosed: {
		EventDial:  StateConnecting,
		EventClose: StateClosed,
	},
	StateConnecting: {
		EventConnected: StateOpen,
		EventFailed:    StateError,
		EventClose:     StateClosed,
	},
	StateOpen: {
		EventDropped: StateError,
		EventClose:   StateClosed,
	},
	StateError: {
		EventRetry: StateConnecting,
		EventClose: StateClosed,
	},
}

// Transition returns the state reached from current on event. Invalid
// pairs leave the state unchanged and return an error.
func Transition(current State, event Event) (State, error) {
	edges, ok := transitions[current]
	if !ok {
		return current, fmt.Errorf("unknown state %q", current)
	}
	next, ok := edges[event]
	if !ok {
		return current, fmt.Errorf("invalid transition: state=%s event=%s", current, event)
	}
	return next, nil
}
