package phoneauth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
)

func TestComposePhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		country  phoneauth.Country
		national string
		want     string
		wantErr  error
	}{
		{name: "trunk prefix", country: vietnam, national: "0901234567", want: "+84901234567"},
		{name: "separators", country: vietnam, national: "090 123-45.67", want: "+84901234567"},
		{name: "full width digits", country: vietnam, national: "０９０１２３４５６７", want: "+84901234567"},
		{name: "already international", country: vietnam, national: "+84 90 123 4567", want: "+84901234567"},
		{name: "dial code without plus", country: phoneauth.Country{Name: "USA", DialCode: "1"}, national: "(650) 555-1234", want: "+16505551234"},
		{name: "missing dial code", country: phoneauth.Country{Name: "Nowhere"}, national: "0901234567", wantErr: phoneauth.ErrMissingDialCode},
		{name: "empty", country: vietnam, national: "   ", wantErr: phoneauth.ErrEmptyPhoneNumber},
		{name: "only zeros", country: vietnam, national: "000", wantErr: phoneauth.ErrEmptyPhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := phoneauth.ComposePhoneNumber(tt.country, tt.national)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "123456", phoneauth.NormalizeCode(" 123 456 "))
	assert.Equal(t, "123456", phoneauth.NormalizeCode("１２３４５６"))
	assert.Equal(t, "12", phoneauth.NormalizeCode("1-a-2"))
	assert.Empty(t, phoneauth.NormalizeCode("abc"))
}
