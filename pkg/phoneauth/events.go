package phoneauth

// Event is a single state change request handled by Store. The set of
// variants is closed.
type Event interface {
	Name() string
	event()
}

type (
	// RequestStarted marks a new code request. The current verification id is
	// kept so a resend stays on the code entry screen. A non-empty PhoneNumber
	// replaces the stored one.
	RequestStarted struct{ PhoneNumber string }

	// CodeReceived enters code entry with the provider's ids.
	CodeReceived struct {
		VerificationID string
		ResendToken    string
	}

	// AutoVerificationCompleted ends the request without entering code entry.
	AutoVerificationCompleted struct{}

	// RequestRejected ends the request with an exception message.
	RequestRejected struct{ Message string }

	// RequestTimedOut flags a running request as timed out. A resend from code
	// entry is not flagged: the flag belongs to the phone entry screen.
	RequestTimedOut struct{}

	// VerificationStarted marks a new sign-in attempt.
	VerificationStarted struct{}

	// VerificationRejected ends the sign-in attempt with an exception message.
	VerificationRejected struct{ Message string }

	// VerificationTimedOut flags a running sign-in attempt as timed out while
	// code entry is shown. A sign-in after automatic verification is not flagged.
	VerificationTimedOut struct{}

	SignedIn  struct{}
	SignedOut struct{}

	RequestExceptionCleared      struct{}
	VerificationExceptionCleared struct{}

	LandingScreenToggled struct{ Show bool }

	// AttemptAbandoned clears progress, exception and timeout of the request
	// (PhasePhoneEntry) or the verification (PhaseCodeEntry).
	AttemptAbandoned struct{ Phase Phase }
)

func (RequestStarted) Name() string               { return "request_started" }
func (CodeReceived) Name() string                 { return "code_received" }
func (AutoVerificationCompleted) Name() string    { return "auto_verification_completed" }
func (RequestRejected) Name() string              { return "request_rejected" }
func (RequestTimedOut) Name() string              { return "request_timed_out" }
func (VerificationStarted) Name() string          { return "verification_started" }
func (VerificationRejected) Name() string         { return "verification_rejected" }
func (VerificationTimedOut) Name() string         { return "verification_timed_out" }
func (SignedIn) Name() string                     { return "signed_in" }
func (SignedOut) Name() string                    { return "signed_out" }
func (RequestExceptionCleared) Name() string      { return "request_exception_cleared" }
func (VerificationExceptionCleared) Name() string { return "verification_exception_cleared" }
func (LandingScreenToggled) Name() string         { return "landing_screen_toggled" }
func (AttemptAbandoned) Name() string             { return "attempt_abandoned" }

func (RequestStarted) event()               {}
func (CodeReceived) event()                 {}
func (AutoVerificationCompleted) event()    {}
func (RequestRejected) event()              {}
func (RequestTimedOut) event()              {}
func (VerificationStarted) event()          {}
func (VerificationRejected) event()         {}
func (VerificationTimedOut) event()         {}
func (SignedIn) event()                     {}
func (SignedOut) event()                    {}
func (RequestExceptionCleared) event()      {}
func (VerificationExceptionCleared) event() {}
func (LandingScreenToggled) event()         {}
func (AttemptAbandoned) event()             {}

// Reduce returns the state after ev. It is pure and keeps every invariant
// checked by AuthUIState.Validate.
func Reduce(s AuthUIState, ev Event) AuthUIState {
	switch e := ev.(type) {
	case RequestStarted:
		if e.PhoneNumber != "" {
			s.Home.PhoneNumber = e.PhoneNumber
		}
		s.Request = RequestPhase{InProgress: true}
		s.Verification = VerificationPhase{}

	case CodeReceived:
		s.Home.VerificationID = e.VerificationID
		s.Home.ResendToken = e.ResendToken
		s.Request = RequestPhase{}
		s.Verification = VerificationPhase{}

	case AutoVerificationCompleted:
		s.Request = RequestPhase{}

	case RequestRejected:
		s.Request = RequestPhase{ExceptionMessage: e.Message}

	case RequestTimedOut:
		if s.Request.InProgress && s.ActivePhase() == PhasePhoneEntry {
			s.Request.IsTimeout = true
		}

	case VerificationStarted:
		s.Verification = VerificationPhase{InProgress: true}
		s.Request = RequestPhase{}

	case VerificationRejected:
		s.Verification = VerificationPhase{ExceptionMessage: e.Message}

	case VerificationTimedOut:
		if s.Verification.InProgress && s.ActivePhase() == PhaseCodeEntry {
			s.Verification.IsTimeout = true
		}

	case SignedIn:
		s.Home = HomePhase{
			UserSignedIn:            true,
			ShouldShowLandingScreen: s.Home.ShouldShowLandingScreen,
		}
		s.Request = RequestPhase{}
		s.Verification = VerificationPhase{}

	case SignedOut:
		s = AuthUIState{}

	case RequestExceptionCleared:
		s.Request.ExceptionMessage = ""

	case VerificationExceptionCleared:
		s.Verification.ExceptionMessage = ""

	case LandingScreenToggled:
		s.Home.ShouldShowLandingScreen = e.Show

	case AttemptAbandoned:
		switch e.Phase {
		case PhasePhoneEntry:
			s.Request = RequestPhase{}
		case PhaseCodeEntry:
			s.Verification = VerificationPhase{}
		}
	}
	return s
}
