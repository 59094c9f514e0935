package uistate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/redis"
	"github.com/dmitrymomot/phoneauth/pkg/secrets"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// EnvPrefix is prepended to every Config variable.
const EnvPrefix = "UISTATE_"

// Config selects and configures a backend. Redis connection settings are
// read separately into redis.Config.
type Config struct {
	Backend  string        `env:"BACKEND" envDefault:"memory"`
	FilePath string        `env:"FILE_PATH" envDefault:"phoneauth_state.json"`
	RedisKey string        `env:"REDIS_KEY" envDefault:"phoneauth:ui_state"`
	TTL      time.Duration `env:"TTL" envDefault:"10m"`
	// EncryptionKey is a base64 32-byte key. When set, file and redis
	// snapshots are sealed with it.
	EncryptionKey string `env:"ENCRYPTION_KEY"`
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	redis       redis.Config
	redisClient *redis.Storage
	logger      *slog.Logger
}

// WithRedisConfig sets how Open connects to Redis.
func WithRedisConfig(cfg redis.Config) OpenOption {
	return func(o *openOptions) { o.redis = cfg }
}

// WithRedisStorage makes Open reuse an existing connection. The caller keeps
// ownership and closes it.
func WithRedisStorage(s *redis.Storage) OpenOption {
	return func(o *openOptions) { o.redisClient = s }
}

// WithLogger sets the logger used while opening.
func WithLogger(l *slog.Logger) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open creates the backend named by cfg.Backend.
func Open[T any](ctx context.Context, cfg Config, opts ...OpenOption) (Backend[T], error) {
	o := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	codecOpts, err := sealerOptions(cfg)
	if err != nil {
		return nil, err
	}

	var b Backend[T]
	switch cfg.Backend {
	case BackendMemory, "":
		b = NewMemory[T]()
	case BackendFile:
		b, err = NewFile[T](cfg.FilePath, codecOpts...)
	case BackendRedis:
		b, err = openRedis[T](ctx, cfg, o, codecOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	o.logger.LogAttrs(ctx, slog.LevelInfo, "ui state backend opened",
		logger.Component("uistate"),
		logger.Backend(cfg.Backend),
		slog.Bool("encrypted", len(codecOpts) > 0),
	)
	return b, nil
}

func sealerOptions(cfg Config) ([]BackendOption, error) {
	if cfg.EncryptionKey == "" {
		return nil, nil
	}
	key, err := secrets.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ui state encryption key: %w", err)
	}
	sealer, err := secrets.NewSealer(key, SealPurpose)
	if err != nil {
		return nil, err
	}
	return []BackendOption{WithSealer(sealer)}, nil
}

func openRedis[T any](ctx context.Context, cfg Config, o *openOptions, codecOpts []BackendOption) (*Redis[T], error) {
	store := o.redisClient
	owns := false
	if store == nil {
		client, err := redis.Connect(ctx, o.redis)
		if err != nil {
			return nil, err
		}
		store = redis.NewStorage(client)
		owns = true
	}

	r, err := NewRedis[T](store, cfg.RedisKey, cfg.TTL, codecOpts...)
	if err != nil {
		if owns {
			_ = store.Close()
		}
		return nil, err
	}
	r.ownsStore = owns
	return r, nil
}
