package uistate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/phoneauth/pkg/redis"
)

// Redis stores the snapshot under one key with a TTL, so a snapshot outlives
// a short restart but not an abandoned session.
type Redis[T any] struct {
	store     *redis.Storage
	key       string
	ttl       time.Duration
	codec     codec
	ownsStore bool
}

// NewRedis creates a backend on store. A zero ttl keeps snapshots forever.
func NewRedis[T any](store *redis.Storage, key string, ttl time.Duration, opts ...BackendOption) (*Redis[T], error) {
	if key == "" {
		return nil, ErrMissingRedisKey
	}
	return &Redis[T]{store: store, key: key, ttl: ttl, codec: newCodec(opts)}, nil
}

func (r *Redis[T]) Load(ctx context.Context) (T, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, redis.ErrKeyNotFound) {
		var zero T
		return zero, ErrNoSnapshot
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get snapshot: %w", err)
	}
	return decode[T](r.codec, data)
}

func (r *Redis[T]) Save(ctx context.Context, v T) error {
	data, err := r.codec.encode(v)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data, r.ttl); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

func (r *Redis[T]) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close closes the client only when Open created it.
func (r *Redis[T]) Close() error {
	if r.ownsStore {
		return r.store.Close()
	}
	return nil
}
