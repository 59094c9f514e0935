package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process. Buckets idle for longer than the
// idle timeout are dropped by a cleanup loop.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	clock           clockwork.Clock
	cleanupInterval time.Duration
	idleTimeout     time.Duration
	stop            chan struct{}
	closeOnce       sync.Once
	wg              sync.WaitGroup
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle buckets are dropped. Zero disables
// the cleanup loop.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.cleanupInterval = d }
}

// WithIdleTimeout sets how long an untouched bucket is kept.
func WithIdleTimeout(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if d > 0 {
			ms.idleTimeout = d
		}
	}
}

// WithStoreClock sets the clock driving the cleanup loop.
func WithStoreClock(c clockwork.Clock) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if c != nil {
			ms.clock = c
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		clock:           clockwork.NewRealClock(),
		cleanupInterval: 5 * time.Minute,
		idleTimeout:     time.Hour,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.cleanupInterval > 0 {
		ms.wg.Add(1)
		go ms.cleanup()
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config, now time.Time) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Whole intervals only; the cap keeps the multiplication from overflowing.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	// A denied request does not dig the bucket deeper.
	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	b.lastAccess = now

	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Len returns the number of tracked keys.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.buckets)
}

func (ms *MemoryStore) cleanup() {
	defer ms.wg.Done()
	ticker := ms.clock.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			ms.removeIdle()
		case <-ms.stop:
			return
		}
	}
}

func (ms *MemoryStore) removeIdle() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.clock.Now()
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > ms.idleTimeout {
			delete(ms.buckets, key)
		}
	}
}

// Close stops the cleanup loop. Safe to call twice.
func (ms *MemoryStore) Close() error {
	ms.closeOnce.Do(func() { close(ms.stop) })
	ms.wg.Wait()
	return nil
}
