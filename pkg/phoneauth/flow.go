package phoneauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/phoneauth/pkg/async"
	"github.com/dmitrymomot/phoneauth/pkg/broadcast"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/messages"
	"github.com/dmitrymomot/phoneauth/pkg/notifications"
	"github.com/dmitrymomot/phoneauth/pkg/statemachine"
)

// Flow wires the store, gateway, notices and retries into one sign-in flow.
// It is what a presentation layer talks to.
type Flow struct {
	store          *Store
	gateway        *Gateway
	dispatcher     *notifications.Dispatcher
	retry          *RetryCoordinator
	catalog        *messages.Catalog
	logger         *slog.Logger
	userTimeout    TimeoutHandler
	ownsDispatcher bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// New creates a flow for provider. The initial state is restored through
// WithPersistence when a snapshot exists, with in-flight flags cleared and the
// signed-in flag taken from provider.CurrentUser.
func New(ctx context.Context, provider Provider, opts ...Option) (*Flow, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	o := newOptions(opts)
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	catalog := o.catalog
	if catalog == nil {
		c, err := messages.Load(o.config.Locale)
		if err != nil {
			return nil, fmt.Errorf("load messages for %q: %w", o.config.Locale, err)
		}
		catalog = c
	}

	f := &Flow{
		catalog:     catalog,
		logger:      o.logger.With(logger.Component("phone_auth_flow")),
		userTimeout: o.onTimeout,
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())

	f.dispatcher = o.dispatcher
	if f.dispatcher == nil {
		f.dispatcher = notifications.NewDispatcher(o.sink,
			notifications.WithLogger(o.logger),
			notifications.WithNow(o.clock.Now),
		)
		f.ownsDispatcher = true
	}

	initial := f.restore(ctx, o.persistence, provider)

	shared := append(opts[:len(opts):len(opts)],
		WithCatalog(catalog),
		WithChangeHook(f.dismissStaleNotice),
		WithTimeoutHandler(f.onTimeout),
	)
	f.store = NewStore(initial, shared...)
	f.gateway = NewGateway(provider, f.store, shared...)
	f.retry = NewRetryCoordinator(f.gateway, f.store, f.dispatcher, shared...)
	return f, nil
}

func (f *Flow) restore(ctx context.Context, p Persistence, provider Provider) AuthUIState {
	signedIn := provider.CurrentUser() != nil
	if p == nil {
		return DefaultState(signedIn)
	}

	snapshot, err := p.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			f.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load state snapshot", logger.Error(err))
		}
		return DefaultState(signedIn)
	}

	st := snapshot.Restored(signedIn)
	if err := st.Validate(); err != nil {
		f.logger.LogAttrs(ctx, slog.LevelWarn, "discarding invalid state snapshot", logger.Error(err))
		return DefaultState(signedIn)
	}
	f.logger.LogAttrs(ctx, slog.LevelInfo, "state restored", logger.Phase(st.ActivePhase().String()))
	return st
}

// State returns the current state.
func (f *Flow) State() AuthUIState {
	return f.store.Current()
}

// Subscribe streams the current state and every later one.
func (f *Flow) Subscribe(ctx context.Context) broadcast.Subscriber[AuthUIState] {
	return f.store.Subscribe(ctx)
}

// Session returns the state of the sign-in sequence.
func (f *Flow) Session() statemachine.State {
	return f.gateway.Session()
}

func (f *Flow) Catalog() *messages.Catalog {
	return f.catalog
}

// Notice returns the visible notice, if any.
func (f *Flow) Notice() (notifications.Notice, bool) {
	return f.dispatcher.Current()
}

// StartVerification requests a code for the national number in country.
func (f *Flow) StartVerification(ctx context.Context, country Country, national string) error {
	phone, err := ComposePhoneNumber(country, national)
	if err != nil {
		return err
	}
	return f.gateway.StartVerification(ctx, phone, "")
}

// ResendCode requests a new code for the number in use, reusing the resend
// token. The number is part of the state, so a resend works after a restore.
func (f *Flow) ResendCode(ctx context.Context) error {
	st := f.State()
	if st.Home.VerificationID == "" {
		return ErrNoVerificationInProgress
	}
	if st.Home.PhoneNumber == "" {
		return ErrEmptyPhoneNumber
	}
	return f.gateway.StartVerification(ctx, st.Home.PhoneNumber, st.Home.ResendToken)
}

// SubmitCode signs in with the typed code for the current verification.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	return f.gateway.SubmitCode(ctx, f.State().Home.VerificationID, NormalizeCode(code))
}

// EditPhoneNumber acknowledges the request error once the user edits the number.
func (f *Flow) EditPhoneNumber() error {
	return f.store.ClearRequestException()
}

// EditCode acknowledges the verification error once the user edits the code.
func (f *Flow) EditCode() error {
	return f.store.ClearVerificationException()
}

func (f *Flow) SetShouldShowLandingScreen(show bool) error {
	return f.store.SetShouldShowLandingScreen(show)
}

// SignOut signs out and returns to phone entry.
func (f *Flow) SignOut(ctx context.Context) error {
	f.dispatcher.Dismiss()
	return f.gateway.SignOut(ctx)
}

// Retry abandons the running attempt as if the user took a timeout notice's action.
func (f *Flow) Retry(ctx context.Context) error {
	return f.retry.Retry(ctx)
}

// onTimeout offers an alternate sign-in once an attempt timed out.
func (f *Flow) onTimeout(ctx context.Context, a *Attempt, st AuthUIState) {
	if st.TimedOut(a.Phase()) {
		key := messages.KeyRequestTimeout
		if a.Phase() == PhaseCodeEntry {
			key = messages.KeyVerificationTimeout
		}
		outcome := f.dispatcher.Notify(ctx, notifications.Notice{
			Tag:     a.Phase().String(),
			Type:    notifications.TypeWarning,
			Message: f.catalog.Text(key),
			Action:  &notifications.Action{Label: f.catalog.Text(messages.KeyAlternateSignIn)},
		})

		f.wg.Add(1)
		go f.awaitNotice(ctx, a, outcome)
	}

	if f.userTimeout != nil {
		f.userTimeout(ctx, a, st)
	}
}

func (f *Flow) awaitNotice(ctx context.Context, a *Attempt, outcome *async.Future[bool]) {
	defer f.wg.Done()

	selected, err := outcome.AwaitContext(f.ctx)
	if err != nil {
		if !notifications.IsWithdrawn(err) && !errors.Is(err, context.Canceled) {
			f.logger.LogAttrs(ctx, slog.LevelWarn, "timeout notice failed", a.logAttr(), logger.Error(err))
		}
		return
	}
	if !selected {
		return
	}
	if err := f.retry.Retry(ctx); err != nil {
		f.logger.LogAttrs(ctx, slog.LevelWarn, "retry after timeout failed", a.logAttr(), logger.Error(err))
	}
}

// dismissStaleNotice withdraws a notice raised on a screen the user has left,
// and a timeout notice whose attempt has ended: a late result clears the
// timeout flag without leaving the screen.
func (f *Flow) dismissStaleNotice(prev, next AuthUIState) {
	from, to := prev.ActivePhase(), next.ActivePhase()
	if from != to && f.dispatcher.DismissTag(from.String()) {
		f.logger.LogAttrs(context.Background(), slog.LevelDebug, "notice dismissed on phase change",
			logger.Transition(from.String(), to.String(), "phase_changed"),
		)
	}
	for _, phase := range []Phase{PhasePhoneEntry, PhaseCodeEntry} {
		if prev.TimedOut(phase) && !next.TimedOut(phase) && f.dispatcher.DismissTag(phase.String()) {
			f.logger.LogAttrs(context.Background(), slog.LevelDebug, "timeout notice dismissed",
				logger.Phase(phase.String()),
			)
		}
	}
}

// Close stops the flow. Running provider calls are not interrupted; their
// results are ignored.
func (f *Flow) Close() error {
	f.closeOnce.Do(func() {
		_ = f.gateway.Close()
		f.cancel()
		if f.ownsDispatcher {
			_ = f.dispatcher.Close()
		}
		f.wg.Wait()
		_ = f.store.Close()
	})
	return nil
}
