package phoneauth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

// TimeoutWatcher races a timer against an attempt's completion.
type TimeoutWatcher struct {
	clock  clockwork.Clock
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewTimeoutWatcher creates a watcher on clock. Options used: WithLogger.
func NewTimeoutWatcher(clock clockwork.Clock, opts ...Option) *TimeoutWatcher {
	o := newOptions(opts)
	if clock == nil {
		clock = o.clock
	}
	return &TimeoutWatcher{
		clock:  clock,
		logger: o.logger.With(logger.Component("timeout_watcher")),
	}
}

// Watch calls onTimeout once if a is still pending after d. onTimeout runs
// inside the attempt's guard, so the attempt cannot settle or be cancelled
// meanwhile. If a settles or is cancelled first, the timer is stopped and
// onTimeout never runs. The provider call itself is left alone.
func (w *TimeoutWatcher) Watch(a *Attempt, d time.Duration, onTimeout func()) {
	fired := make(chan struct{})
	timer := w.clock.AfterFunc(d, func() {
		defer close(fired)
		if a.expire(onTimeout) {
			w.logger.LogAttrs(context.Background(), slog.LevelInfo, "attempt timed out",
				a.logAttr(),
				logger.Phase(a.Phase().String()),
				logger.Duration(d),
				logger.Error(ErrTimeout),
			)
		}
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-a.Done():
			timer.Stop()
		case <-fired:
		}
	}()
}

// Wait blocks until every watch has ended. Watches end when their attempt
// finishes or their timer fires.
func (w *TimeoutWatcher) Wait() {
	w.wg.Wait()
}
