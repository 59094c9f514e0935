package phoneauth

import (
	"errors"

	"github.com/dmitrymomot/phoneauth/pkg/messages"
	"github.com/dmitrymomot/phoneauth/pkg/uistate"
)

// Provider failure classes.
var (
	ErrInvalidCredential = errors.New("phoneauth: invalid credential")
	ErrQuotaExceeded     = errors.New("phoneauth: quota exceeded")
	ErrProvider          = errors.New("phoneauth: provider error")

	// ErrTimeout is declared locally when the provider does not answer in time.
	// It never becomes an exception message.
	ErrTimeout = errors.New("phoneauth: provider did not respond in time")
)

// Usage errors.
var (
	ErrEmptyPhoneNumber         = errors.New("phoneauth: phone number is empty")
	ErrMissingDialCode          = errors.New("phoneauth: country has no dial code")
	ErrInvalidCodeLength        = errors.New("phoneauth: verification code has wrong length")
	ErrNoVerificationInProgress = errors.New("phoneauth: no verification in progress")
	ErrInvalidPhase             = errors.New("phoneauth: operation not allowed in current phase")
	ErrStoreClosed              = errors.New("phoneauth: state store closed")
	ErrClosed                   = errors.New("phoneauth: flow closed")
	ErrInvariantViolated        = errors.New("phoneauth: state invariant violated")
	ErrInvalidConfig            = errors.New("phoneauth: invalid configuration")
	ErrNilProvider              = errors.New("phoneauth: provider is nil")

	// ErrNoSnapshot is returned by Persistence.Load when nothing was saved.
	ErrNoSnapshot = uistate.ErrNoSnapshot
)

// ProviderError is a classified provider failure. Kind is one of
// ErrInvalidCredential, ErrQuotaExceeded or ErrProvider.
type ProviderError struct {
	Kind    error
	Message string // provider supplied, may be shown to the user
	Err     error
}

// NewProviderError classifies err. A nil kind means ErrProvider.
func NewProviderError(kind error, message string, err error) *ProviderError {
	if kind == nil {
		kind = ErrProvider
	}
	return &ProviderError{Kind: kind, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ExceptionMessage returns the text a phase shows for a provider failure.
// Invalid credentials carry the provider's own message; quota and any other
// failure get the generic text from catalog.
func ExceptionMessage(err error, catalog *messages.Catalog) string {
	if catalog == nil {
		catalog = messages.Default()
	}
	if errors.Is(err, ErrInvalidCredential) {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Message != "" {
			return pe.Message
		}
		return catalog.Text(messages.KeyInvalidCredential)
	}
	return catalog.Text(messages.KeyGenericError)
}
