package ratelimiter

import "time"

// Config describes a token bucket: Capacity requests may be made at once and
// RefillRate tokens come back every RefillInterval.
type Config struct {
	Capacity       int           `env:"QUOTA_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"QUOTA_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"QUOTA_REFILL_INTERVAL" envDefault:"1m"`
}

// Result is the outcome of one quota check.
type Result struct {
	Limit     int
	Remaining int       // negative when the request was denied
	ResetAt   time.Time // next refill
	now       time.Time
}

// Allowed reports whether the request fits in the quota.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() || !r.ResetAt.After(r.now) {
		return 0
	}
	return r.ResetAt.Sub(r.now)
}
