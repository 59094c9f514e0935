// Package statemachine implements a small finite state machine with guards,
// actions and transition hooks.
//
// States and events are anything with a Name method; StringState and
// StringEvent cover the common case. Transitions are declared up front with
// functional options and looked up in O(1) by (state, event):
//
//	const (
//	    Idle       = statemachine.StringState("idle")
//	    Requesting = statemachine.StringState("requesting_code")
//	    Request    = statemachine.StringEvent("request")
//	)
//
//	m := statemachine.MustNew(Idle,
//	    statemachine.WithTransition(Idle, Requesting, Request),
//	)
//	_ = m.Fire(ctx, Request, nil)
//
// Guards veto transitions; when several transitions share a (state, event)
// pair the first one whose guards pass wins. Actions run before the state
// changes and abort the transition on error. Hooks run after the change,
// outside the lock, which makes them the right place for logging.
//
// Fire returns a *TransitionError when the event does not apply; match it
// with errors.Is against ErrNoTransition or ErrGuardRejected.
//
// Machine guards all access with a RWMutex, so Current and CanFire may be
// called from any goroutine while another fires events.
package statemachine
