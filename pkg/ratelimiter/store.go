package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state per key.
type Store interface {
	// ConsumeTokens refills the bucket up to now, then takes tokens from it.
	// A negative remaining count means the request must be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config, now time.Time) (remaining int, resetAt time.Time, err error)

	Reset(ctx context.Context, key string) error
}
