package broadcast

import (
	"context"
	"sync/atomic"
)

// MemoryBroadcaster is an in-process Broadcaster. A subscriber whose buffer
// is full misses the message; the others still get it.
type MemoryBroadcaster[T any] struct {
	reg     registry[T]
	buffer  int
	dropped atomic.Uint64
}

var _ Broadcaster[int] = (*MemoryBroadcaster[int])(nil)

// NewMemoryBroadcaster gives each subscriber room for bufferSize messages,
// at least one.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	b := &MemoryBroadcaster[T]{buffer: max(bufferSize, 1)}
	b.reg.init()
	return b
}

func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := newSubscriber[T](b.buffer)
	b.reg.add(ctx, sub, nil)
	return sub
}

func (b *MemoryBroadcaster[T]) Broadcast(_ context.Context, msg Message[T]) error {
	ok := b.reg.visit(func(subs map[*subscriber[T]]struct{}) {
		for sub := range subs {
			if !sub.send(msg) {
				b.dropped.Add(1)
			}
		}
	})
	if !ok {
		return ErrClosed
	}
	return nil
}

func (b *MemoryBroadcaster[T]) Subscribers() int { return b.reg.len() }

// Dropped counts deliveries skipped because a subscriber buffer was full.
func (b *MemoryBroadcaster[T]) Dropped() uint64 { return b.dropped.Load() }

func (b *MemoryBroadcaster[T]) Close() error {
	b.reg.shutdown()
	return nil
}
