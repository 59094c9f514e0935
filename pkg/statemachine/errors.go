package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("statemachine: transition needs from, to and event")
	ErrInvalidEvent      = errors.New("statemachine: nil event")
	ErrInvalidState      = errors.New("statemachine: nil state")

	// ErrNoTransition matches a TransitionError for an unknown (state, event) pair.
	ErrNoTransition = errors.New("statemachine: no transition")
	// ErrGuardRejected matches a TransitionError where every candidate was vetoed.
	ErrGuardRejected = errors.New("statemachine: rejected by guards")
)

// TransitionError reports why Fire could not move out of From.
type TransitionError struct {
	From     string
	Event    string
	Rejected bool // a transition exists but its guards failed
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: %q on %q rejected by guards", e.Event, e.From)
	}
	return fmt.Sprintf("statemachine: no transition for %q in %q", e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrGuardRejected:
		return e.Rejected
	case ErrNoTransition:
		return !e.Rejected
	}
	return false
}
