package uistate

import (
	"context"
	"sync"
)

// Memory keeps the snapshot in process memory. It only survives as long as
// the value itself, which makes it useful for tests and for sharing state
// between flows in one process.
type Memory[T any] struct {
	mu     sync.RWMutex
	value  T
	saved  bool
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

func (m *Memory[T]) Load(context.Context) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		var zero T
		return zero, ErrBackendClosed
	}
	if !m.saved {
		var zero T
		return zero, ErrNoSnapshot
	}
	return m.value, nil
}

func (m *Memory[T]) Save(_ context.Context, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrBackendClosed
	}
	m.value = v
	m.saved = true
	return nil
}

func (m *Memory[T]) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.saved = false
	return nil
}

func (m *Memory[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
