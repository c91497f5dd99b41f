package apiclient

import (
	"fmt"

	"github.com/jrsteele09/imvestor-client/internal/errors"
)

// State is a step in the life of a single Send call.
type State int

const (
	StateUnauthenticated State = iota // No access token held
	StateAuthenticated                // Access token attached
	StateDispatched                   // Request on the wire
	StateRefreshing                   // 401 received, exchanging the refresh token
	StateRetrying                     // Original request re-issued with the new token
	StateSucceeded
	StateFailed
	StateSessionExpired // Refresh failed, session cleared
)

var stateNames = map[State]string{
	StateUnauthenticated: "unauthenticated",
	StateAuthenticated:   "authenticated",
	StateDispatched:      "dispatched",
	StateRefreshing:      "refreshing",
	StateRetrying:        "retrying",
	StateSucceeded:       "succeeded",
	StateFailed:          "failed",
	StateSessionExpired:  "session_expired",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// transitions is the complete table of legal moves. A request is refreshed at
// most once: Retrying cannot lead back to Refreshing.
var transitions = map[State][]State{
	StateUnauthenticated: {StateAuthenticated, StateDispatched},
	StateAuthenticated:   {StateDispatched},
	StateDispatched:      {StateSucceeded, StateFailed, StateRefreshing},
	StateRefreshing:      {StateRetrying, StateSessionExpired},
	StateRetrying:        {StateSucceeded, StateFailed},
}

// CanTransition reports whether from -> to is in the transition table
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateObserver is notified of every transition a request makes.
type StateObserver func(from, to State)

// flow tracks one request through the state machine.
type flow struct {
	current  State
	observer StateObserver
}

func newFlow(observer StateObserver) *flow {
	return &flow{current: StateUnauthenticated, observer: observer}
}

func (f *flow) advance(to State) error {
	if !CanTransition(f.current, to) {
		return fmt.Errorf("%w: %s -> %s", errors.ErrIllegalTransition, f.current, to)
	}
	from := f.current
	f.current = to
	if f.observer != nil {
		f.observer(from, to)
	}
	return nil
}

// fail moves to StateFailed and hands err back unchanged
func (f *flow) fail(err error) error {
	if aerr := f.advance(StateFailed); aerr != nil {
		return aerr
	}
	return err
}
