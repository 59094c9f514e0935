package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Connect returns a client once the server answers PING. It makes up to
// cfg.RetryAttempts attempts, cfg.RetryInterval apart, all within
// cfg.ConnectTimeout.
//
// Errors: ErrEmptyConnectionURL, ErrFailedToParseRedisConnString, or
// ErrRedisNotReady joined with the last ping or context error.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var client *redis.Client
	err = retry.Do(ctx, backoff(cfg), func(ctx context.Context) error {
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return retry.RetryableError(err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrRedisNotReady, err)
	}
	return client, nil
}

func backoff(cfg Config) retry.Backoff {
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	attempts := max(cfg.RetryAttempts, 1)
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(interval))
}
