package notifications

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/phoneauth/pkg/async"
	"github.com/dmitrymomot/phoneauth/pkg/broadcast"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

// EventKind tells a presentation layer what to do with a notice.
type EventKind string

const (
	EventShown     EventKind = "shown"
	EventWithdrawn EventKind = "withdrawn"
)

// Event is published by BroadcastSink.
type Event struct {
	Kind   EventKind `json:"kind"`
	Notice Notice    `json:"notice"`
}

// BroadcastSink bridges notices to a presentation layer: it publishes Shown
// and Withdrawn events to subscribers and waits for Respond.
type BroadcastSink struct {
	events  *broadcast.MemoryBroadcaster[Event]
	waiting map[string]async.Resolver[bool]
	logger  *slog.Logger
	mu      sync.Mutex
}

// BroadcastSinkOption configures a BroadcastSink.
type BroadcastSinkOption func(*BroadcastSink)

// WithBroadcastSinkLogger sets the logger for the BroadcastSink.
func WithBroadcastSinkLogger(l *slog.Logger) BroadcastSinkOption {
	return func(s *BroadcastSink) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewBroadcastSink creates a sink whose subscribers buffer up to bufferSize events.
func NewBroadcastSink(bufferSize int, opts ...BroadcastSinkOption) *BroadcastSink {
	s := &BroadcastSink{
		events:  broadcast.NewMemoryBroadcaster[Event](bufferSize),
		waiting: make(map[string]async.Resolver[bool]),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe returns a stream of notice events for a presentation layer.
func (s *BroadcastSink) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	return s.events.Subscribe(ctx)
}

func (s *BroadcastSink) Show(ctx context.Context, n Notice) (bool, error) {
	outcome, resolve := async.NewPromise[bool]()

	s.mu.Lock()
	s.waiting[n.ID] = resolve
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiting, n.ID)
		s.mu.Unlock()
	}()

	if err := s.events.Broadcast(ctx, broadcast.Message[Event]{Data: Event{Kind: EventShown, Notice: n}}); err != nil {
		return false, err
	}

	selected, err := outcome.AwaitContext(ctx)
	if err != nil {
		if berr := s.events.Broadcast(context.WithoutCancel(ctx), broadcast.Message[Event]{
			Data: Event{Kind: EventWithdrawn, Notice: n},
		}); berr != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "withdraw event not delivered",
				logger.NoticeID(n.ID),
				logger.Error(berr),
			)
		}
		return false, err
	}
	return selected, nil
}

// Respond records the user's decision for the notice with the given id.
func (s *BroadcastSink) Respond(id string, actionSelected bool) error {
	s.mu.Lock()
	resolve, ok := s.waiting[id]
	s.mu.Unlock()

	if !ok || !resolve(actionSelected, nil) {
		return ErrUnknownNotice
	}
	return nil
}

// Close closes all subscriptions. Pending Show calls still end through their contexts.
func (s *BroadcastSink) Close() error {
	return s.events.Close()
}
