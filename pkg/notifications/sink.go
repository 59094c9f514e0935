package notifications

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

// Sink presents a notice and reports whether the user took its action.
// Show blocks until the user responds or ctx is done; in the latter case it
// must return promptly with ctx's error.
type Sink interface {
	Show(ctx context.Context, n Notice) (actionSelected bool, err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n Notice) (bool, error)

func (f SinkFunc) Show(ctx context.Context, n Notice) (bool, error) {
	return f(ctx, n)
}

// NoOpSink never shows anything and never reports an action.
type NoOpSink struct{}

func (NoOpSink) Show(context.Context, Notice) (bool, error) {
	return false, nil
}

// MultiSink shows a notice on several sinks at once. The first sink that
// reports the action wins and the others are withdrawn.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

// MultiSinkOption configures a MultiSink.
type MultiSinkOption func(*MultiSink)

// WithMultiSinkLogger sets the logger for the MultiSink.
func WithMultiSinkLogger(l *slog.Logger) MultiSinkOption {
	return func(m *MultiSink) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMultiSink creates a sink fanning out to sinks.
func NewMultiSink(sinks []Sink, opts ...MultiSinkOption) *MultiSink {
	m := &MultiSink{sinks: sinks, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type showResult struct {
	index    int
	selected bool
	err      error
}

func (m *MultiSink) Show(ctx context.Context, n Notice) (bool, error) {
	if len(m.sinks) == 0 {
		return false, nil
	}

	showCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan showResult, len(m.sinks))
	for i, s := range m.sinks {
		go func() {
			selected, err := s.Show(showCtx, n)
			results <- showResult{index: i, selected: selected, err: err}
		}()
	}

	for range m.sinks {
		r := <-results
		if r.err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// Best effort: one failing sink does not hide the notice elsewhere.
			m.logger.LogAttrs(ctx, slog.LevelWarn, "notice sink failed",
				logger.NoticeID(n.ID),
				slog.Int("sink_index", r.index),
				logger.Error(r.err),
			)
			continue
		}
		if r.selected {
			return true, nil
		}
	}
	return false, ctx.Err()
}
