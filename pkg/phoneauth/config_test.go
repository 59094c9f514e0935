package phoneauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/config"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, phoneauth.DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*phoneauth.Config)
	}{
		{"zero timeout", func(c *phoneauth.Config) { c.Timeout = 0 }},
		{"negative provider timeout", func(c *phoneauth.Config) { c.ProviderTimeout = -time.Second }},
		{"zero code length", func(c *phoneauth.Config) { c.CodeLength = 0 }},
		{"unknown retry policy", func(c *phoneauth.Config) { c.RetryPolicy = "restart" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := phoneauth.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), phoneauth.ErrInvalidConfig)
		})
	}

	err := phoneauth.Config{}.Validate()
	assert.ErrorContains(t, err, "timeout must be positive")
	assert.ErrorContains(t, err, "code length must be positive")
}

// LoadConfig caches the first successful parse, so its cases run in order.
func TestLoadConfig(t *testing.T) {
	_, err := phoneauth.LoadConfig(config.WithEnvironment(map[string]string{
		"PHONEAUTH_TIMEOUT": "soon",
	}))
	require.ErrorIs(t, err, config.ErrParsingConfig)

	cfg, err := phoneauth.LoadConfig(config.WithEnvironment(map[string]string{
		"PHONEAUTH_TIMEOUT":      "45s",
		"PHONEAUTH_RETRY_POLICY": "clear_phase",
		"PHONEAUTH_LOCALE":       "vi",
	}))
	require.NoError(t, err)

	want := phoneauth.DefaultConfig()
	want.Timeout = 45 * time.Second
	want.RetryPolicy = phoneauth.RetryClearPhase
	want.Locale = "vi"
	assert.Equal(t, want, cfg)
}

func TestRetryPolicy_Valid(t *testing.T) {
	t.Parallel()
	assert.True(t, phoneauth.RetryReset.Valid())
	assert.True(t, phoneauth.RetryClearPhase.Valid())
	assert.False(t, phoneauth.RetryPolicy("").Valid())
}
