package phoneauth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/phoneauth/pkg/broadcast"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

// ChangeHook observes an effective state change. It runs on the store's
// writer goroutine and must not call Dispatch.
type ChangeHook func(prev, next AuthUIState)

// Store is the single owner of AuthUIState. Events are applied one at a time
// by a writer goroutine; readers only ever see whole published values.
type Store struct {
	state          *broadcast.Latest[AuthUIState]
	events         chan dispatchRequest
	quit           chan struct{}
	done           chan struct{}
	persistence    Persistence
	persistTimeout time.Duration
	hooks          []ChangeHook
	logger         *slog.Logger
	closeOnce      sync.Once
}

type dispatchRequest struct {
	event Event
	reply chan AuthUIState
}

// NewStore starts a store holding initial. Options used: WithPersistence,
// WithChangeHook, WithLogger and Config.PersistTimeout from WithConfig.
func NewStore(initial AuthUIState, opts ...Option) *Store {
	o := newOptions(opts)
	s := &Store{
		state:          broadcast.NewLatest(initial),
		events:         make(chan dispatchRequest),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
		persistence:    o.persistence,
		persistTimeout: o.config.PersistTimeout,
		hooks:          o.changeHooks,
		logger:         o.logger.With(logger.Component("state_store")),
	}
	go s.run()
	return s
}

// Current returns the latest state.
func (s *Store) Current() AuthUIState {
	return s.state.Load()
}

// Subscribe emits the current state, then every newer one. A slow subscriber
// skips intermediate states and only sees the newest.
func (s *Store) Subscribe(ctx context.Context) broadcast.Subscriber[AuthUIState] {
	return s.state.Subscribe(ctx)
}

// Dispatch applies ev and returns the resulting state.
func (s *Store) Dispatch(ev Event) (AuthUIState, error) {
	req := dispatchRequest{event: ev, reply: make(chan AuthUIState, 1)}

	select {
	case s.events <- req:
	case <-s.quit:
		return s.Current(), ErrStoreClosed
	}

	select {
	case next := <-req.reply:
		return next, nil
	case <-s.done:
		return s.Current(), ErrStoreClosed
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case req := <-s.events:
			req.reply <- s.apply(req.event)
		}
	}
}

func (s *Store) apply(ev Event) AuthUIState {
	prev := s.state.Load()
	if ev == nil {
		return prev
	}

	next := Reduce(prev, ev)
	if next == prev {
		return prev
	}

	s.state.Publish(next)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "state changed",
		logger.Event(ev.Name()),
		logger.Phase(next.ActivePhase().String()),
		slog.Bool("request_in_progress", next.Request.InProgress),
		slog.Bool("verification_in_progress", next.Verification.InProgress),
	)

	s.persist(ev, next)
	for _, h := range s.hooks {
		h(prev, next)
	}
	return next
}

// persist saves st, or clears the snapshot after a sign-out so a restart
// begins from DefaultState.
func (s *Store) persist(ev Event, st AuthUIState) {
	if s.persistence == nil {
		return
	}
	ctx := context.Background()
	if s.persistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.persistTimeout)
		defer cancel()
	}
	// Best effort: the in-memory state stays authoritative.
	if _, signedOut := ev.(SignedOut); signedOut {
		if err := s.persistence.Clear(ctx); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to clear state snapshot", logger.Error(err))
		}
		return
	}
	if err := s.persistence.Save(ctx, st); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to persist state snapshot", logger.Error(err))
	}
}

// Close stops the writer and closes every subscription. Safe to call twice.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		_ = s.state.Close()
	})
	return nil
}

func (s *Store) dispatch(ev Event) error {
	_, err := s.Dispatch(ev)
	return err
}

func (s *Store) OnRequestStarted() error { return s.dispatch(RequestStarted{}) }

func (s *Store) OnCodeSent(verificationID, resendToken string) error {
	return s.dispatch(CodeReceived{VerificationID: verificationID, ResendToken: resendToken})
}

func (s *Store) OnVerificationCompletedAutomatically() error {
	return s.dispatch(AutoVerificationCompleted{})
}

func (s *Store) OnRequestException(message string) error {
	return s.dispatch(RequestRejected{Message: message})
}

func (s *Store) OnRequestTimeout() error { return s.dispatch(RequestTimedOut{}) }

func (s *Store) OnVerificationStarted() error { return s.dispatch(VerificationStarted{}) }

func (s *Store) OnVerificationException(message string) error {
	return s.dispatch(VerificationRejected{Message: message})
}

func (s *Store) OnVerificationTimeout() error { return s.dispatch(VerificationTimedOut{}) }

func (s *Store) OnSignInSuccess() error { return s.dispatch(SignedIn{}) }

func (s *Store) OnSignOut() error { return s.dispatch(SignedOut{}) }

func (s *Store) ClearRequestException() error { return s.dispatch(RequestExceptionCleared{}) }

func (s *Store) ClearVerificationException() error {
	return s.dispatch(VerificationExceptionCleared{})
}

func (s *Store) SetShouldShowLandingScreen(show bool) error {
	return s.dispatch(LandingScreenToggled{Show: show})
}

// OnAttemptAbandoned clears the request (PhasePhoneEntry) or verification
// (PhaseCodeEntry) flags after its attempt was dropped.
func (s *Store) OnAttemptAbandoned(phase Phase) error {
	return s.dispatch(AttemptAbandoned{Phase: phase})
}
