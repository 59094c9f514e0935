package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a small key-value wrapper over a go-redis client.
type Storage struct {
	db redis.UniversalClient
}

// NewStorage wraps client.
func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{db: client}
}

// Get returns ErrKeyNotFound for a missing key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

// Set stores val under key. A zero ttl means no expiration.
func (s *Storage) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, key, val, ttl).Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Del(ctx, key).Err()
}

// TTL returns the remaining time to live of key, -1 for a key without
// expiration, or ErrKeyNotFound.
func (s *Storage) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.db.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if d == -2 {
		return 0, ErrKeyNotFound
	}
	return d, nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}
