// Package config loads typed configuration structs from environment variables.
//
// It is a thin layer over github.com/caarlos0/env/v11: struct fields are
// described with env and envDefault tags, and an optional prefix namespaces
// every variable. A .env file in the working directory is loaded once through
// github.com/joho/godotenv before the first Load; values already present in the
// process environment take precedence.
//
// Load caches the parsed value per type and prefix so every component of a
// process sees the same settings. Parse skips the cache, which is what tests and
// callers that build several independent instances want.
//
//	type Config struct {
//		Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
//		CodeLength int           `env:"CODE_LENGTH" envDefault:"6"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg, config.WithPrefix("PHONEAUTH_"))
//
// Errors are wrapped with errors.Join, so errors.Is(err, ErrParsingConfig)
// identifies malformed or missing required variables.
package config
