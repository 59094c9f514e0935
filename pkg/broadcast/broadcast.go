package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster or a Latest value.
type Subscriber[T any] interface {
	// Receive returns the channel messages arrive on. The channel is closed
	// when the subscriber is closed.
	Receive(ctx context.Context) <-chan Message[T]

	// Close releases the subscription. It is idempotent.
	Close() error
}

// Broadcaster sends messages to every active subscriber without blocking on
// slow consumers.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx is done or Close is called.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to all subscribers that have buffer space.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close closes every subscriber. Later Subscribe calls return closed subscribers.
	Close() error
}

type subscriber[T any] struct {
	ch      chan Message[T]
	closed  bool
	mu      sync.Mutex
	onClose func(*subscriber[T])
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{ch: make(chan Message[T], bufferSize)}
}

func (s *subscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose(s)
	}
	return nil
}

// send delivers msg if there is buffer space.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// replace discards any undelivered message and buffers msg instead. The
// subscriber must have a buffer of one and a single sender.
func (s *subscriber[T]) replace(msg Message[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- msg
}

// registry tracks the live subscribers of a fan-out source. Subscribers are
// dropped when they close themselves, when their context ends, or on shutdown.
type registry[T any] struct {
	mu     sync.Mutex
	subs   map[*subscriber[T]]struct{}
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

func (r *registry[T]) init() {
	r.subs = make(map[*subscriber[T]]struct{})
	r.stop = make(chan struct{})
}

// add registers sub. prime, when set, runs under the lock before sub becomes
// visible to senders. After shutdown sub is returned closed.
func (r *registry[T]) add(ctx context.Context, sub *subscriber[T], prime func(*subscriber[T])) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		_ = sub.Close()
		return
	}
	if prime != nil {
		prime(sub)
	}
	sub.onClose = r.remove
	r.subs[sub] = struct{}{}

	if ctx.Done() == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-r.stop:
		}
	}()
}

// visit runs fn over the live subscribers under the lock. It reports false,
// without calling fn, once the registry is shut down.
func (r *registry[T]) visit(fn func(subs map[*subscriber[T]]struct{})) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	fn(r.subs)
	return true
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *registry[T]) remove(sub *subscriber[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, sub)
}

// shutdown closes every subscriber and waits for the context watchers.
func (r *registry[T]) shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.stop)
	subs := make([]*subscriber[T], 0, len(r.subs))
	for sub := range r.subs {
		subs = append(subs, sub)
	}
	clear(r.subs)
	r.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	r.wg.Wait()
}
