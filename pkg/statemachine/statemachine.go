package statemachine

import (
	"context"
)

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Action executes side effects during a transition. Returning an error aborts it.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition should be allowed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Hook observes completed transitions. It runs after the state is updated and
// outside the machine lock, so it may read Current.
type Hook func(ctx context.Context, from, to State, event Event)

// Transition defines a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // all must pass
	Actions []Action // run in order before the state changes
}

// StateMachine defines the finite state machine operations.
type StateMachine interface {
	Current() State
	Fire(ctx context.Context, event Event, data any) error
	CanFire(ctx context.Context, event Event, data any) bool
	// Reset moves back to the initial state without running actions.
	Reset()
	// ResetTo moves to state without running actions. Used when the current
	// state is recovered from elsewhere, e.g. a persisted snapshot.
	ResetTo(state State) error
}

// StringState is a string-based State.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is a string-based Event.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }
