package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is a thread-safe in-memory state machine. Transitions are indexed
// as [fromState][event][]Transition; with several candidates the first whose
// guards pass wins.
type Machine struct {
	initial     State
	current     State
	transitions map[string]map[string][]Transition
	hooks       []Hook
	mu          sync.RWMutex
}

var _ StateMachine = (*Machine)(nil)

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Machine) addTransition(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}

	from, event := t.From.Name(), t.Event.Name()
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string][]Transition)
	}
	m.transitions[from][event] = append(m.transitions[from][event], t)
	return nil
}

// Fire applies event to the current state.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	from := m.current
	t, err := m.match(ctx, event, data)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, t.To, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.To
	hooks := m.hooks
	m.mu.Unlock()

	for _, h := range hooks {
		h(ctx, from, t.To, event)
	}
	return nil
}

func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.match(ctx, event, data)
	return err == nil
}

// match must be called with m.mu held.
func (m *Machine) match(ctx context.Context, event Event, data any) (*Transition, error) {
	stateName, eventName := m.current.Name(), event.Name()

	candidates := m.transitions[stateName][eventName]
	if len(candidates) == 0 {
		return nil, &TransitionError{From: stateName, Event: eventName}
	}

	for i := range candidates {
		if guardsPass(ctx, candidates[i], m.current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &TransitionError{From: stateName, Event: eventName, Rejected: true}
}

func guardsPass(ctx context.Context, t Transition, from State, event Event, data any) bool {
	for _, g := range t.Guards {
		if g != nil && !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}

func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine) ResetTo(state State) error {
	if state == nil {
		return ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = state
	return nil
}
