package phoneauth

import (
	"context"

	"github.com/dmitrymomot/phoneauth/pkg/statemachine"
)

// Session states of the sign-in sequence.
var (
	SessionIdle           = statemachine.StringState("idle")
	SessionRequestingCode = statemachine.StringState("requesting_code")
	SessionCodeSent       = statemachine.StringState("code_sent")
	SessionVerifyingCode  = statemachine.StringState("verifying_code")
	SessionSignedIn       = statemachine.StringState("signed_in")
)

var (
	eventRequest       = statemachine.StringEvent("request")
	eventCodeSent      = statemachine.StringEvent("code_sent")
	eventRequestFailed = statemachine.StringEvent("request_failed")
	eventAutoVerified  = statemachine.StringEvent("auto_verified")
	eventSubmit        = statemachine.StringEvent("submit")
	eventSignedIn      = statemachine.StringEvent("signed_in")
	eventSignInFailed  = statemachine.StringEvent("sign_in_failed")
)

// hasVerificationID passes when the state carried as transition data is on
// the code entry screen.
func hasVerificationID(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	st, ok := data.(AuthUIState)
	return ok && st.Home.VerificationID != ""
}

func lacksVerificationID(ctx context.Context, from statemachine.State, ev statemachine.Event, data any) bool {
	return !hasVerificationID(ctx, from, ev, data)
}

// newSession builds the session machine. Timeouts are not transitions: a
// timed-out attempt stays in its state until it settles or is replaced.
func newSession(initial statemachine.State, hook statemachine.Hook) *statemachine.Machine {
	return statemachine.MustNew(initial,
		statemachine.WithTransitions(
			statemachine.Transition{From: SessionIdle, To: SessionRequestingCode, Event: eventRequest},
			statemachine.Transition{From: SessionRequestingCode, To: SessionRequestingCode, Event: eventRequest},
			statemachine.Transition{From: SessionCodeSent, To: SessionRequestingCode, Event: eventRequest},
			statemachine.Transition{From: SessionVerifyingCode, To: SessionRequestingCode, Event: eventRequest},

			statemachine.Transition{From: SessionRequestingCode, To: SessionCodeSent, Event: eventCodeSent},
			statemachine.Transition{From: SessionRequestingCode, To: SessionCodeSent, Event: eventRequestFailed,
				Guards: []statemachine.Guard{hasVerificationID}},
			statemachine.Transition{From: SessionRequestingCode, To: SessionIdle, Event: eventRequestFailed,
				Guards: []statemachine.Guard{lacksVerificationID}},
			statemachine.Transition{From: SessionRequestingCode, To: SessionVerifyingCode, Event: eventAutoVerified},

			statemachine.Transition{From: SessionCodeSent, To: SessionVerifyingCode, Event: eventSubmit},
			statemachine.Transition{From: SessionVerifyingCode, To: SessionVerifyingCode, Event: eventSubmit},
			statemachine.Transition{From: SessionRequestingCode, To: SessionVerifyingCode, Event: eventSubmit,
				Guards: []statemachine.Guard{hasVerificationID}},

			statemachine.Transition{From: SessionVerifyingCode, To: SessionSignedIn, Event: eventSignedIn},
			statemachine.Transition{From: SessionVerifyingCode, To: SessionCodeSent, Event: eventSignInFailed,
				Guards: []statemachine.Guard{hasVerificationID}},
			statemachine.Transition{From: SessionVerifyingCode, To: SessionIdle, Event: eventSignInFailed,
				Guards: []statemachine.Guard{lacksVerificationID}},
		),
		statemachine.WithHook(hook),
	)
}

// sessionStateFor maps a state with no attempt in flight to its session state.
func sessionStateFor(st AuthUIState) statemachine.State {
	switch st.ActivePhase() {
	case PhaseSignedIn:
		return SessionSignedIn
	case PhaseCodeEntry:
		return SessionCodeSent
	default:
		return SessionIdle
	}
}
