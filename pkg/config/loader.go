package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option tunes how a configuration struct is parsed.
type Option func(*options)

type options struct {
	prefix      string
	envFiles    []string
	environment map[string]string
}

// WithPrefix prepends prefix to every env tag, e.g. "APP_" turns TIMEOUT into APP_TIMEOUT.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvFiles loads the given dotenv files before parsing. Existing process
// variables win over file values. Missing files are ignored.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.envFiles = append(o.envFiles, paths...) }
}

// WithEnvironment parses from m instead of the process environment.
func WithEnvironment(m map[string]string) Option {
	return func(o *options) { o.environment = m }
}

type configCache struct {
	mu     sync.Mutex
	values map[string]any
	onces  map[string]*sync.Once
}

var (
	globalCache = &configCache{
		values: make(map[string]any),
		onces:  make(map[string]*sync.Once),
	}

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into v and caches the result per type and
// prefix, so later calls for the same pair return the first parsed value.
// The default .env file is loaded once if present.
//
//	type FlowConfig struct {
//		Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg FlowConfig
//	if err := config.Load(&cfg, config.WithPrefix("PHONEAUTH_")); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	o := collect(opts)
	key := getTypeName[T]() + "|" + o.prefix

	globalCache.mu.Lock()
	if cached, ok := globalCache.values[key]; ok {
		globalCache.mu.Unlock()
		*v = cached.(T)
		return nil
	}
	once, ok := globalCache.onces[key]
	if !ok {
		once = new(sync.Once)
		globalCache.onces[key] = once
	}
	globalCache.mu.Unlock()

	var err error
	once.Do(func() {
		var parsed T
		if err = parse(&parsed, o); err != nil {
			return
		}
		globalCache.mu.Lock()
		globalCache.values[key] = parsed
		globalCache.mu.Unlock()
	})
	if err != nil {
		// A failed parse must not poison the cache for later callers.
		globalCache.mu.Lock()
		delete(globalCache.onces, key)
		globalCache.mu.Unlock()
		return err
	}

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	cached, ok := globalCache.values[key]
	if !ok {
		return ErrConfigNotLoaded
	}
	*v = cached.(T)
	return nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse parses into v without touching the cache.
func Parse[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	return parse(v, collect(opts))
}

func parse[T any](v *T, o options) error {
	if len(o.envFiles) > 0 {
		if err := godotenv.Load(o.envFiles...); err != nil && !isNotExist(err) {
			return errors.Join(ErrEnvFile, err)
		}
	}
	if err := env.ParseWithOptions(v, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func getTypeName[T any]() string {
	t := reflect.TypeFor[T]()
	return t.PkgPath() + "." + t.String()
}
