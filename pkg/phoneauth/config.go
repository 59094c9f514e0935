package phoneauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/phoneauth/pkg/config"
)

// EnvPrefix is prepended to every Config variable.
const EnvPrefix = "PHONEAUTH_"

// Config holds the sign-in flow settings.
type Config struct {
	// Timeout is how long an attempt may stay unanswered before the user is
	// offered an alternate sign-in.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// ProviderTimeout is passed to the provider as its own deadline hint.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`
	CodeLength      int           `env:"CODE_LENGTH" envDefault:"6"`
	PersistTimeout  time.Duration `env:"PERSIST_TIMEOUT" envDefault:"2s"`
	Locale          string        `env:"LOCALE" envDefault:"en"`
	RetryPolicy     RetryPolicy   `env:"RETRY_POLICY" envDefault:"reset"`
}

// DefaultConfig returns the values used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		ProviderTimeout: 60 * time.Second,
		CodeLength:      6,
		PersistTimeout:  2 * time.Second,
		Locale:          "en",
		RetryPolicy:     RetryReset,
	}
}

// LoadConfig reads PHONEAUTH_* variables.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	opts = append([]config.Option{config.WithPrefix(EnvPrefix)}, opts...)
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig))
	}
	if c.ProviderTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: provider timeout must not be negative", ErrInvalidConfig))
	}
	if c.CodeLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: code length must be positive", ErrInvalidConfig))
	}
	if !c.RetryPolicy.Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown retry policy %q", ErrInvalidConfig, c.RetryPolicy))
	}
	return errors.Join(errs...)
}
