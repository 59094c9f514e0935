package broadcast

import (
	"context"
	"sync/atomic"
)

// Latest holds a current value and fans it out with replay-latest semantics:
// a new subscriber starts with the current value, and one that falls behind
// only ever sees the newest value.
//
// Publish is meant for a single writer. Load and Subscribe are safe from any
// goroutine.
type Latest[T any] struct {
	value atomic.Pointer[T]
	reg   registry[T]
}

func NewLatest[T any](initial T) *Latest[T] {
	l := &Latest[T]{}
	l.reg.init()
	l.value.Store(&initial)
	return l
}

func (l *Latest[T]) Load() T {
	return *l.value.Load()
}

// Publish stores v and replaces whatever each subscriber has not read yet.
// It is a no-op after Close.
func (l *Latest[T]) Publish(v T) {
	msg := Message[T]{Data: v}
	l.reg.visit(func(subs map[*subscriber[T]]struct{}) {
		l.value.Store(&v)
		for sub := range subs {
			sub.replace(msg)
		}
	})
}

// Subscribe returns a subscriber whose channel already holds the current value.
func (l *Latest[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := newSubscriber[T](1)
	l.reg.add(ctx, sub, func(s *subscriber[T]) {
		s.ch <- Message[T]{Data: *l.value.Load()}
	})
	return sub
}

// Close ends every subscription. Load keeps returning the last value.
func (l *Latest[T]) Close() error {
	l.reg.shutdown()
	return nil
}
