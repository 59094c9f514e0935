package phoneauth_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/phoneauth/pkg/messages"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
	"github.com/dmitrymomot/phoneauth/pkg/uistate"
)

func TestProviderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("HTTP 429")
	err := fmt.Errorf("send code: %w", phoneauth.NewProviderError(phoneauth.ErrQuotaExceeded, "slow down", cause))

	assert.ErrorIs(t, err, phoneauth.ErrQuotaExceeded)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, phoneauth.ErrInvalidCredential)
	assert.Equal(t, "send code: phoneauth: quota exceeded: slow down: HTTP 429", err.Error())

	var pe *phoneauth.ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "slow down", pe.Message)

	generic := phoneauth.NewProviderError(nil, "", nil)
	assert.ErrorIs(t, generic, phoneauth.ErrProvider)
	assert.Equal(t, "phoneauth: provider error", generic.Error())
}

func TestExceptionMessage(t *testing.T) {
	t.Parallel()
	en := messages.Default()
	vi, err := messages.Load("vi")
	assert.NoError(t, err)

	tests := []struct {
		name    string
		err     error
		catalog *messages.Catalog
		want    string
	}{
		{
			name: "provider message",
			err:  phoneauth.NewProviderError(phoneauth.ErrInvalidCredential, "The code is wrong", nil),
			want: "The code is wrong",
		},
		{
			name: "bare invalid credential",
			err:  phoneauth.ErrInvalidCredential,
			want: en.Text(messages.KeyInvalidCredential),
		},
		{
			name:    "localized fallback",
			err:     phoneauth.ErrInvalidCredential,
			catalog: vi,
			want:    vi.Text(messages.KeyInvalidCredential),
		},
		{
			name: "quota",
			err:  phoneauth.NewProviderError(phoneauth.ErrQuotaExceeded, "too many requests", nil),
			want: en.Text(messages.KeyGenericError),
		},
		{
			name: "anything else",
			err:  errors.New("connection reset"),
			want: en.Text(messages.KeyGenericError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, phoneauth.ExceptionMessage(tt.err, tt.catalog))
		})
	}
}

func TestErrNoSnapshot(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, phoneauth.ErrNoSnapshot, uistate.ErrNoSnapshot)
}
