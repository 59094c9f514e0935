package secrets_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/secrets"
)

func newSealer(t *testing.T, key []byte, purpose string) *secrets.Sealer {
	t.Helper()
	s, err := secrets.NewSealer(key, purpose)
	require.NoError(t, err)
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	t.Parallel()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	s := newSealer(t, key, "ui-state")

	plaintext := []byte(`{"home":{"verification_id":"vid-1"}}`)
	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, []byte("vid-1")))

	again, err := s.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces differ")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSealer_Rejects(t *testing.T) {
	t.Parallel()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	s := newSealer(t, key, "ui-state")

	sealed, err := s.Seal([]byte("payload"))
	require.NoError(t, err)

	t.Run("other purpose", func(t *testing.T) {
		t.Parallel()
		_, err := newSealer(t, key, "sessions").Open(sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("other key", func(t *testing.T) {
		t.Parallel()
		other, err := secrets.GenerateKey()
		require.NoError(t, err)
		_, err = newSealer(t, other, "ui-state").Open(sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		tampered := bytes.Clone(sealed)
		tampered[len(tampered)-1] ^= 0xff
		_, err := s.Open(tampered)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, err := s.Open(sealed[:8])
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	require.Len(t, key, secrets.KeySize)

	decoded, err := secrets.DecodeKey(secrets.EncodeKey(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = secrets.DecodeKey("not base64!")
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)
	_, err = secrets.DecodeKey(secrets.EncodeKey([]byte("short")))
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)
	_, err = secrets.NewSealer([]byte("short"), "x")
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)
}
