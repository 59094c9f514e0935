package phoneauth

import (
	"context"
	"time"
)

// Provider is the external verification service. StartVerification returns
// promptly and reports exactly one VerificationEvent through deliver, from any
// goroutine, possibly before it returns. Errors passed to VerificationFailed
// and returned by SignIn should be *ProviderError so they can be classified.
type Provider interface {
	StartVerification(ctx context.Context, req VerificationRequest, deliver func(VerificationEvent))
	BuildCredential(verificationID, code string) Credential
	SignIn(ctx context.Context, cred Credential) (User, error)
	SignOut(ctx context.Context) error
	CurrentUser() *User
}

// VerificationRequest asks the provider to send a code to PhoneNumber.
type VerificationRequest struct {
	PhoneNumber string
	ResendToken string // empty on the first request
	// Timeout is a hint for the provider's own deadline. Local timeout
	// detection does not depend on it.
	Timeout time.Duration
}

// VerificationEvent is one outcome of StartVerification: CodeSent,
// AutoVerified or VerificationFailed.
type VerificationEvent interface {
	verificationEvent()
}

// CodeSent reports that a code is on its way.
type CodeSent struct {
	VerificationID string
	ResendToken    string
}

// AutoVerified reports that the provider verified the number without a code.
type AutoVerified struct {
	Credential Credential
}

// VerificationFailed reports that no code will be sent.
type VerificationFailed struct {
	Err error
}

func (CodeSent) verificationEvent()           {}
func (AutoVerified) verificationEvent()       {}
func (VerificationFailed) verificationEvent() {}

// Credential is the provider's proof of a verified number. Its fields are
// meaningful only to the provider that built it.
type Credential struct {
	Provider       string
	VerificationID string
	Code           string
}

// User is a signed-in account.
type User struct {
	ID          string
	PhoneNumber string
}
