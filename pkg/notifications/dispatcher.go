package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/phoneauth/pkg/async"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

// Dispatcher shows at most one notice at a time. A newer notice replaces the
// visible one; each Notify call resolves exactly once.
type Dispatcher struct {
	sink    Sink
	logger  *slog.Logger
	now     func() time.Time
	current *pending
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

type pending struct {
	notice Notice
	cancel context.CancelCauseFunc
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithNow overrides the clock used for Notice.CreatedAt.
func WithNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a dispatcher presenting notices on sink.
// A nil sink behaves like NoOpSink.
func NewDispatcher(sink Sink, opts ...DispatcherOption) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	d := &Dispatcher{
		sink:   sink,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify shows n and returns a future resolving to whether the user took the
// notice's action. A replaced notice resolves with ErrReplaced, a dismissed
// one with ErrDismissed.
func (d *Dispatcher) Notify(ctx context.Context, n Notice) *async.Future[bool] {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return async.Resolved(false, ErrDispatcherClosed)
	}
	if d.current != nil {
		d.logger.LogAttrs(ctx, slog.LevelDebug, "notice replaced",
			logger.NoticeID(d.current.notice.ID),
			slog.String("replaced_by", n.ID),
		)
		d.current.cancel(ErrReplaced)
	}

	showCtx, cancel := context.WithCancelCause(ctx)
	p := &pending{notice: n, cancel: cancel}
	d.current = p

	d.logger.LogAttrs(ctx, slog.LevelInfo, "notice shown",
		logger.NoticeID(n.ID),
		slog.String("tag", n.Tag),
		slog.Bool("has_action", n.HasAction()),
	)

	future := async.Async(showCtx, n, d.show)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		<-future.Done()
		cancel(nil)
		d.release(p)
	}()

	return future
}

func (d *Dispatcher) show(ctx context.Context, n Notice) (bool, error) {
	selected, err := d.sink.Show(ctx, n)
	if err == nil {
		return selected, nil
	}
	if ctx.Err() != nil {
		return false, context.Cause(ctx)
	}
	d.logger.LogAttrs(ctx, slog.LevelWarn, "notice sink failed",
		logger.NoticeID(n.ID),
		logger.Error(err),
	)
	return false, err
}

func (d *Dispatcher) release(p *pending) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == p {
		d.current = nil
	}
}

// Dismiss withdraws the visible notice, if any.
func (d *Dispatcher) Dismiss() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false
	}
	d.current.cancel(ErrDismissed)
	d.current = nil
	return true
}

// DismissTag withdraws the visible notice only if it carries tag.
func (d *Dispatcher) DismissTag(tag string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil || d.current.notice.Tag != tag {
		return false
	}
	d.current.cancel(ErrDismissed)
	d.current = nil
	return true
}

// Current returns the visible notice.
func (d *Dispatcher) Current() (Notice, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Notice{}, false
	}
	return d.current.notice, true
}

// Close dismisses the visible notice and waits for pending notices to resolve.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.current != nil {
		d.current.cancel(ErrDismissed)
		d.current = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

// IsWithdrawn reports whether err means the notice ended without a user decision.
func IsWithdrawn(err error) bool {
	return errors.Is(err, ErrDismissed) || errors.Is(err, ErrReplaced) || errors.Is(err, ErrDispatcherClosed)
}
