package phoneauth

import (
	"errors"
	"fmt"
)

// Phase is the screen the sign-in flow is on.
type Phase string

const (
	PhasePhoneEntry Phase = "phone_entry"
	PhaseCodeEntry  Phase = "code_entry"
	PhaseSignedIn   Phase = "signed_in"
)

func (p Phase) String() string { return string(p) }

// HomePhase holds the data shared by all screens.
type HomePhase struct {
	// PhoneNumber is the number of the last code request, kept for resends.
	PhoneNumber             string `json:"phone_number,omitempty"`
	VerificationID          string `json:"verification_id,omitempty"`
	ResendToken             string `json:"resend_token,omitempty"`
	UserSignedIn            bool   `json:"user_signed_in"`
	ShouldShowLandingScreen bool   `json:"should_show_landing_screen"`
}

// RequestPhase tracks the code request.
type RequestPhase struct {
	InProgress       bool   `json:"in_progress"`
	ExceptionMessage string `json:"exception_message,omitempty"`
	IsTimeout        bool   `json:"is_timeout"`
}

// VerificationPhase tracks the code submission and sign-in.
type VerificationPhase struct {
	InProgress       bool   `json:"in_progress"`
	ExceptionMessage string `json:"exception_message,omitempty"`
	IsTimeout        bool   `json:"is_timeout"`
}

// AuthUIState is the observable, persisted state rendered by the UI.
// Values are immutable once published; change them through Store.
type AuthUIState struct {
	Home         HomePhase         `json:"home"`
	Request      RequestPhase      `json:"request"`
	Verification VerificationPhase `json:"verification"`
}

// DefaultState is the state of a fresh session.
func DefaultState(signedIn bool) AuthUIState {
	return AuthUIState{
		Home: HomePhase{
			UserSignedIn:            signedIn,
			ShouldShowLandingScreen: true,
		},
	}
}

// ActivePhase derives the visible screen from UserSignedIn, then VerificationID.
func (s AuthUIState) ActivePhase() Phase {
	switch {
	case s.Home.UserSignedIn:
		return PhaseSignedIn
	case s.Home.VerificationID != "":
		return PhaseCodeEntry
	default:
		return PhasePhoneEntry
	}
}

// InProgress reports whether a request or a verification is running.
func (s AuthUIState) InProgress() bool {
	return s.Request.InProgress || s.Verification.InProgress
}

// TimedOut reports whether the attempt kind identified by phase has timed out.
// PhasePhoneEntry stands for the code request and PhaseCodeEntry for the
// verification.
func (s AuthUIState) TimedOut(phase Phase) bool {
	switch phase {
	case PhasePhoneEntry:
		return s.Request.IsTimeout
	case PhaseCodeEntry:
		return s.Verification.IsTimeout
	default:
		return false
	}
}

// inFlightPhase names the attempt kind a retry should abandon.
func (s AuthUIState) inFlightPhase() Phase {
	switch {
	case s.Request.InProgress:
		return PhasePhoneEntry
	case s.Verification.InProgress:
		return PhaseCodeEntry
	default:
		return s.ActivePhase()
	}
}

// Validate reports every broken invariant, each wrapping ErrInvariantViolated.
func (s AuthUIState) Validate() error {
	var errs []error
	if s.Request.InProgress && s.Verification.InProgress {
		errs = append(errs, fmt.Errorf("%w: request and verification both in progress", ErrInvariantViolated))
	}
	if s.Request.ExceptionMessage != "" && s.Request.InProgress {
		errs = append(errs, fmt.Errorf("%w: request exception while in progress", ErrInvariantViolated))
	}
	if s.Verification.ExceptionMessage != "" && s.Verification.InProgress {
		errs = append(errs, fmt.Errorf("%w: verification exception while in progress", ErrInvariantViolated))
	}
	if s.Request.IsTimeout && !s.Request.InProgress {
		errs = append(errs, fmt.Errorf("%w: request timeout without request in progress", ErrInvariantViolated))
	}
	if s.Verification.IsTimeout && !s.Verification.InProgress {
		errs = append(errs, fmt.Errorf("%w: verification timeout without verification in progress", ErrInvariantViolated))
	}
	if s.Request.IsTimeout && s.ActivePhase() != PhasePhoneEntry {
		errs = append(errs, fmt.Errorf("%w: request timeout outside phone entry", ErrInvariantViolated))
	}
	if s.Verification.IsTimeout && s.ActivePhase() != PhaseCodeEntry {
		errs = append(errs, fmt.Errorf("%w: verification timeout outside code entry", ErrInvariantViolated))
	}
	return errors.Join(errs...)
}

// Restored adapts a persisted snapshot to a new process: no attempt survives a
// restart, so in-flight and timeout flags are dropped, and the signed-in flag
// follows the provider's session.
func (s AuthUIState) Restored(signedIn bool) AuthUIState {
	s.Request.InProgress = false
	s.Request.IsTimeout = false
	s.Verification.InProgress = false
	s.Verification.IsTimeout = false
	s.Home.UserSignedIn = signedIn
	if signedIn {
		s.Home.PhoneNumber = ""
		s.Home.VerificationID = ""
		s.Home.ResendToken = ""
		s.Request = RequestPhase{}
		s.Verification = VerificationPhase{}
	}
	return s
}
