package statemachine

import (
	"fmt"
)

// Option configures a state machine during construction.
type Option func(*Machine) error

// TransitionOption configures a single transition.
type TransitionOption func(*Transition)

// New creates a state machine with the given initial state and options.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == nil {
		return nil, ErrInvalidState
	}

	m := &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[string]map[string][]Transition),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on error. Transition tables are static, so a
// failure here is a programming error.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		t := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		return m.addTransition(t)
	}
}

// WithTransitions adds several transitions at once.
func WithTransitions(transitions ...Transition) Option {
	return func(m *Machine) error {
		for i, t := range transitions {
			if err := m.addTransition(t); err != nil {
				return fmt.Errorf("transition[%d] %s->%s on %s: %w",
					i, nameOf(t.From), nameOf(t.To), nameOf(t.Event), err)
			}
		}
		return nil
	}
}

// WithHook registers a hook called after every successful Fire.
func WithHook(h Hook) Option {
	return func(m *Machine) error {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
		return nil
	}
}

// WithGuard adds guards to a transition. Nil guards are skipped.
func WithGuard(guards ...Guard) TransitionOption {
	return func(t *Transition) {
		for _, g := range guards {
			if g != nil {
				t.Guards = append(t.Guards, g)
			}
		}
	}
}

// WithAction adds actions to a transition. Nil actions are skipped.
func WithAction(actions ...Action) TransitionOption {
	return func(t *Transition) {
		for _, a := range actions {
			if a != nil {
				t.Actions = append(t.Actions, a)
			}
		}
	}
}

type named interface{ Name() string }

func nameOf(n named) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name()
}
