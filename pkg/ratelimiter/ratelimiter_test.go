package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/ratelimiter"
)

var perMinute = ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

func newBucket(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Bucket, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	b, err := ratelimiter.NewBucket(store, cfg, ratelimiter.WithClock(clock))
	require.NoError(t, err)
	return b, clock
}

func TestNewBucket_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
		msg  string
	}{
		{"zero capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}, "capacity must be positive"},
		{"zero refill rate", ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}, "refill rate must be positive"},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}, "refill interval must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), tt.cfg)
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, clock := newBucket(t, perMinute)

	for i := 2; i >= 0; i-- {
		res, err := b.Allow(ctx, "+84901234567")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, i, res.Remaining)
		assert.Zero(t, res.RetryAfter())
	}

	res, err := b.Allow(ctx, "+84901234567")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Minute, res.RetryAfter())

	other, err := b.Allow(ctx, "+84900000001")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "quotas are per key")

	clock.Advance(59 * time.Second)
	res, err = b.Allow(ctx, "+84901234567")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Second, res.RetryAfter())

	clock.Advance(time.Second)
	res, err = b.Allow(ctx, "+84901234567")
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "a denied request does not use up the refill")
	assert.Equal(t, 0, res.Remaining)
}

func TestBucket_RefillCapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, clock := newBucket(t, perMinute)

	_, err := b.AllowN(ctx, "k", 3)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	res, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, 3, res.Limit)
}

func TestBucket_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, _ := newBucket(t, perMinute)

	_, err := b.AllowN(ctx, "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	_, err = b.Allow(ctx, "")
	assert.ErrorIs(t, err, ratelimiter.ErrEmptyKey)
}

func TestBucket_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, _ := newBucket(t, perMinute)

	_, err := b.AllowN(ctx, "k", 3)
	require.NoError(t, err)
	require.NoError(t, b.Reset(ctx, "k"))

	res, err := b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
}

func TestBucket_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, _ := newBucket(t, ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := b.Allow(ctx, "shared")
			if err == nil && res.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithStoreClock(clock),
		ratelimiter.WithCleanupInterval(time.Minute),
		ratelimiter.WithIdleTimeout(10*time.Minute),
	)
	t.Cleanup(func() { _ = store.Close() })

	b, err := ratelimiter.NewBucket(store, perMinute, ratelimiter.WithClock(clock))
	require.NoError(t, err)
	_, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(11 * time.Minute)
	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
