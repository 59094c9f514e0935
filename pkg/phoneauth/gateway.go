package phoneauth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/phoneauth/pkg/async"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/messages"
	"github.com/dmitrymomot/phoneauth/pkg/statemachine"
)

// TimeoutHandler is told about an attempt that just timed out, together with
// the state right after the timeout flag was set. It runs inside the
// attempt's guard and must not block.
type TimeoutHandler func(ctx context.Context, a *Attempt, state AuthUIState)

// Gateway drives the provider and turns its outcomes into Store events. Each
// outcome is applied only while its attempt is still the current one.
type Gateway struct {
	provider  Provider
	store     *Store
	watcher   *TimeoutWatcher
	session   *statemachine.Machine
	catalog   *messages.Catalog
	clock     clockwork.Clock
	cfg       Config
	logger    *slog.Logger
	onTimeout TimeoutHandler

	seq atomic.Uint64
	wg  sync.WaitGroup

	mu           sync.Mutex
	request      attemptSlot
	verification attemptSlot
	closed       bool
}

// NewGateway creates a gateway writing to store. Options used: WithConfig,
// WithClock, WithLogger, WithCatalog and WithTimeoutHandler.
func NewGateway(provider Provider, store *Store, opts ...Option) *Gateway {
	o := newOptions(opts)
	catalog := o.catalog
	if catalog == nil {
		catalog = messages.Default()
	}

	g := &Gateway{
		provider:     provider,
		store:        store,
		catalog:      catalog,
		clock:        o.clock,
		cfg:          o.config,
		logger:       o.logger.With(logger.Component("phone_auth_gateway")),
		onTimeout:    o.onTimeout,
		request:      attemptSlot{phase: PhasePhoneEntry},
		verification: attemptSlot{phase: PhaseCodeEntry},
	}
	g.watcher = NewTimeoutWatcher(o.clock, WithLogger(o.logger))
	g.session = newSession(sessionStateFor(store.Current()), g.logTransition)
	return g
}

// Session returns the current session state.
func (g *Gateway) Session() statemachine.State {
	return g.session.Current()
}

// StartVerification asks the provider for a code. Any running request or
// sign-in is cancelled first; its late results are ignored.
func (g *Gateway) StartVerification(ctx context.Context, phoneNumber, resendToken string) error {
	if strings.TrimSpace(phoneNumber) == "" {
		return ErrEmptyPhoneNumber
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if !g.session.CanFire(ctx, eventRequest, g.store.Current()) {
		g.mu.Unlock()
		return fmt.Errorf("%w: cannot request a code while %s", ErrInvalidPhase, g.session.Current().Name())
	}

	g.verification.cancel()
	a := g.request.begin(g.seq.Add(1), g.clock.Now())
	st, err := g.store.Dispatch(RequestStarted{PhoneNumber: phoneNumber})
	if err != nil {
		a.cancel()
		g.mu.Unlock()
		return err
	}
	g.fire(ctx, eventRequest, st)

	pctx := context.WithoutCancel(ctx)
	g.watcher.Watch(a, g.cfg.Timeout, g.timeoutEffect(pctx, a, RequestTimedOut{}))
	g.mu.Unlock()

	g.logger.LogAttrs(ctx, slog.LevelInfo, "verification requested",
		a.logAttr(),
		logger.Phone(phoneNumber),
		slog.Bool("resend", resendToken != ""),
	)

	req := VerificationRequest{
		PhoneNumber: phoneNumber,
		ResendToken: resendToken,
		Timeout:     g.cfg.ProviderTimeout,
	}
	g.provider.StartVerification(logger.ContextWith(pctx, a.logAttr()), req, func(ev VerificationEvent) {
		g.onVerificationEvent(pctx, a, ev)
	})
	return nil
}

func (g *Gateway) onVerificationEvent(ctx context.Context, a *Attempt, ev VerificationEvent) {
	var settled bool
	switch e := ev.(type) {
	case CodeSent:
		settled = a.settle(func() {
			g.apply(ctx, CodeReceived{VerificationID: e.VerificationID, ResendToken: e.ResendToken}, eventCodeSent)
		})
		if settled {
			g.logger.LogAttrs(ctx, slog.LevelInfo, "verification code sent", a.logAttr())
		}

	case AutoVerified:
		settled = a.settle(func() {
			g.apply(ctx, AutoVerificationCompleted{}, eventAutoVerified)
		})
		if settled {
			g.logger.LogAttrs(ctx, slog.LevelInfo, "phone number verified automatically", a.logAttr())
			g.signInAfterAutoVerify(ctx, a, e.Credential)
		}

	case VerificationFailed:
		msg := ExceptionMessage(e.Err, g.catalog)
		settled = a.settle(func() {
			g.apply(ctx, RequestRejected{Message: msg}, eventRequestFailed)
		})
		if settled {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "verification request failed", a.logAttr(), logger.Error(e.Err))
		}

	default:
		g.logger.LogAttrs(ctx, slog.LevelWarn, "unknown verification event", a.logAttr(),
			slog.String("type", fmt.Sprintf("%T", ev)))
		return
	}

	if !settled {
		g.logger.LogAttrs(ctx, slog.LevelDebug, "stale provider callback ignored",
			a.logAttr(),
			slog.Bool("timed_out", a.TimedOut()),
		)
	}
}

func (g *Gateway) signInAfterAutoVerify(ctx context.Context, req *Attempt, cred Credential) {
	g.mu.Lock()
	if g.closed || !g.request.holds(req) {
		g.mu.Unlock()
		return
	}
	a, err := g.beginVerificationLocked(ctx, nil)
	g.mu.Unlock()
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "failed to start sign-in", req.logAttr(), logger.Error(err))
		return
	}
	g.signIn(ctx, a, cred)
}

// SubmitCode signs in with the code the user typed.
func (g *Gateway) SubmitCode(ctx context.Context, verificationID, code string) error {
	if verificationID == "" {
		return ErrNoVerificationInProgress
	}
	if n := utf8.RuneCountInString(code); n != g.cfg.CodeLength {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidCodeLength, n, g.cfg.CodeLength)
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if !g.session.CanFire(ctx, eventSubmit, g.store.Current()) {
		g.mu.Unlock()
		return fmt.Errorf("%w: cannot submit a code while %s", ErrInvalidPhase, g.session.Current().Name())
	}
	pctx := context.WithoutCancel(ctx)
	a, err := g.beginVerificationLocked(pctx, eventSubmit)
	g.mu.Unlock()
	if err != nil {
		return err
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "verification code submitted", a.logAttr())
	g.signIn(pctx, a, g.provider.BuildCredential(verificationID, code))
	return nil
}

// beginVerificationLocked starts a sign-in attempt and reserves a WaitGroup
// slot for signIn. Callers hold g.mu.
func (g *Gateway) beginVerificationLocked(ctx context.Context, ev statemachine.Event) (*Attempt, error) {
	g.request.cancel()
	a := g.verification.begin(g.seq.Add(1), g.clock.Now())
	st, err := g.store.Dispatch(VerificationStarted{})
	if err != nil {
		a.cancel()
		return nil, err
	}
	if ev != nil {
		g.fire(ctx, ev, st)
	}
	g.watcher.Watch(a, g.cfg.Timeout, g.timeoutEffect(ctx, a, VerificationTimedOut{}))
	g.wg.Add(1)
	return a, nil
}

func (g *Gateway) signIn(ctx context.Context, a *Attempt, cred Credential) {
	result := async.Async(ctx, cred, g.provider.SignIn)
	go func() {
		defer g.wg.Done()
		select {
		case <-result.Done():
		case <-a.Done():
			return
		}
		user, err := result.Await()
		g.onSignInResult(ctx, a, user, err)
	}()
}

func (g *Gateway) onSignInResult(ctx context.Context, a *Attempt, user User, err error) {
	if err == nil {
		if a.settle(func() { g.apply(ctx, SignedIn{}, eventSignedIn) }) {
			g.logger.LogAttrs(ctx, slog.LevelInfo, "signed in", a.logAttr(), logger.UserID(user.ID))
			return
		}
	} else {
		msg := ExceptionMessage(err, g.catalog)
		if a.settle(func() { g.apply(ctx, VerificationRejected{Message: msg}, eventSignInFailed) }) {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "sign-in failed", a.logAttr(), logger.Error(err))
			return
		}
	}
	g.logger.LogAttrs(ctx, slog.LevelDebug, "stale sign-in result ignored",
		a.logAttr(),
		slog.Bool("timed_out", a.TimedOut()),
	)
}

func (g *Gateway) timeoutEffect(ctx context.Context, a *Attempt, ev Event) func() {
	return func() {
		st, err := g.store.Dispatch(ev)
		if err != nil {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record timeout", a.logAttr(), logger.Error(err))
			return
		}
		if g.onTimeout != nil {
			g.onTimeout(ctx, a, st)
		}
	}
}

// SignOut cancels every attempt, signs out of the provider and resets the state.
// A provider failure is logged; the local state is reset regardless.
func (g *Gateway) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.request.cancel()
	g.verification.cancel()

	if err := g.provider.SignOut(context.WithoutCancel(ctx)); err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "provider sign-out failed", logger.Error(err))
	}
	_, err := g.store.Dispatch(SignedOut{})
	if rerr := g.session.ResetTo(SessionIdle); rerr != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "failed to reset session", logger.Error(rerr))
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "signed out")
	return err
}

// CancelAttempts drops the running request and sign-in without touching the
// state. Their late results are ignored.
func (g *Gateway) CancelAttempts() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, slot := range []*attemptSlot{&g.request, &g.verification} {
		if a := slot.cancel(); a != nil {
			g.logger.LogAttrs(context.Background(), slog.LevelDebug, "attempt cancelled", a.logAttr())
		}
	}
	if err := g.session.ResetTo(sessionStateFor(g.store.Current())); err != nil {
		g.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to reset session", logger.Error(err))
	}
}

// Close cancels every attempt and waits for the gateway's goroutines.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.request.cancel()
	g.verification.cancel()
	g.mu.Unlock()

	g.wg.Wait()
	g.watcher.Wait()
	return nil
}

func (g *Gateway) apply(ctx context.Context, ev Event, transition statemachine.Event) {
	st, err := g.store.Dispatch(ev)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "failed to apply provider result",
			logger.Event(ev.Name()),
			logger.Error(err),
		)
		return
	}
	g.fire(ctx, transition, st)
}

func (g *Gateway) fire(ctx context.Context, ev statemachine.Event, st AuthUIState) {
	if err := g.session.Fire(ctx, ev, st); err != nil {
		g.logger.LogAttrs(ctx, slog.LevelDebug, "session transition skipped",
			logger.Event(ev.Name()),
			logger.Error(err),
		)
	}
}

func (g *Gateway) logTransition(ctx context.Context, from, to statemachine.State, ev statemachine.Event) {
	g.logger.LogAttrs(ctx, slog.LevelDebug, "session transition",
		logger.Transition(from.Name(), to.Name(), ev.Name()),
	)
}
