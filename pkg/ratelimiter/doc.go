// Package ratelimiter implements token bucket quotas keyed by string.
//
// The sign-in sandbox uses it to cap code requests per phone number the way
// real SMS providers do:
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	quota, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       3,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := quota.Allow(ctx, "+84901234567")
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// try again after res.RetryAfter()
//	}
//
// Buckets refill in whole intervals and never exceed Capacity. A denied
// request leaves the bucket unchanged. Time comes from a clockwork.Clock, so
// tests can drive refills with a fake clock.
package ratelimiter
