package ratelimiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
)

// RateLimiter checks requests against a per-key quota.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

// Bucket is a token bucket limiter backed by a Store.
type Bucket struct {
	store  Store
	config Config
	clock  clockwork.Clock
}

var _ RateLimiter = (*Bucket)(nil)

// Option configures a Bucket.
type Option func(*Bucket)

// WithClock sets the clock buckets are refilled by.
func WithClock(c clockwork.Clock) Option {
	return func(b *Bucket) {
		if c != nil {
			b.clock = c
		}
	}
}

// NewBucket validates cfg and creates a limiter.
func NewBucket(store Store, cfg Config, opts ...Option) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Bucket{store: store, config: cfg, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	return b.consume(ctx, key, n)
}

// Status reports the quota left for key without consuming it.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.consume(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

func (b *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	now := b.clock.Now()
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config, now)
	if err != nil {
		return nil, err
	}
	return &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		now:       now,
	}, nil
}

// Validate checks that every field is positive.
func (c Config) Validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity))
	}
	if c.RefillRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate))
	}
	if c.RefillInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval))
	}
	return errors.Join(errs...)
}
