package phoneauth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/notifications"
)

// RetryPolicy selects what a retry does after dropping the running attempt.
type RetryPolicy string

const (
	// RetryReset signs out and returns to phone entry.
	RetryReset RetryPolicy = "reset"
	// RetryClearPhase only clears the flags of the abandoned attempt.
	RetryClearPhase RetryPolicy = "clear_phase"
)

// Valid reports whether p is a known policy.
func (p RetryPolicy) Valid() bool {
	return p == RetryReset || p == RetryClearPhase
}

// RetryCoordinator abandons the running attempt and restarts the flow.
type RetryCoordinator struct {
	gateway    *Gateway
	store      *Store
	dispatcher *notifications.Dispatcher
	policy     RetryPolicy
	logger     *slog.Logger
}

// NewRetryCoordinator creates a coordinator. The policy comes from
// Config.RetryPolicy; dispatcher may be nil.
func NewRetryCoordinator(gateway *Gateway, store *Store, dispatcher *notifications.Dispatcher, opts ...Option) *RetryCoordinator {
	o := newOptions(opts)
	policy := o.config.RetryPolicy
	if !policy.Valid() {
		policy = RetryReset
	}
	return &RetryCoordinator{
		gateway:    gateway,
		store:      store,
		dispatcher: dispatcher,
		policy:     policy,
		logger:     o.logger.With(logger.Component("retry_coordinator")),
	}
}

// Policy returns the active policy.
func (r *RetryCoordinator) Policy() RetryPolicy {
	return r.policy
}

// Retry cancels the pending attempts so their late results are ignored,
// dismisses the visible notice and applies the policy.
func (r *RetryCoordinator) Retry(ctx context.Context) error {
	phase := r.store.Current().inFlightPhase()

	r.gateway.CancelAttempts()
	if r.dispatcher != nil {
		r.dispatcher.Dismiss()
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "retrying sign-in",
		slog.String("policy", string(r.policy)),
		logger.Phase(phase.String()),
	)

	switch r.policy {
	case RetryClearPhase:
		if err := r.store.OnAttemptAbandoned(phase); err != nil {
			return fmt.Errorf("clear %s: %w", phase, err)
		}
		return nil
	default:
		return r.gateway.SignOut(ctx)
	}
}
