package phoneauth

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/phoneauth/pkg/messages"
	"github.com/dmitrymomot/phoneauth/pkg/notifications"
)

// Option configures Flow and the components it is built from. Each
// constructor reads the settings it needs and ignores the rest.
type Option func(*options)

type options struct {
	config      Config
	logger      *slog.Logger
	clock       clockwork.Clock
	catalog     *messages.Catalog
	persistence Persistence
	sink        notifications.Sink
	dispatcher  *notifications.Dispatcher
	changeHooks []ChangeHook
	onTimeout   TimeoutHandler
}

func newOptions(opts []Option) *options {
	o := &options{
		config: DefaultConfig(),
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used for timeouts. Tests pass a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithCatalog sets the text catalog. By default Flow loads Config.Locale.
func WithCatalog(c *messages.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithPersistence saves every state change and restores the last snapshot on start.
func WithPersistence(p Persistence) Option {
	return func(o *options) { o.persistence = p }
}

// WithSink sets where Flow shows notices. Ignored when WithDispatcher is used.
func WithSink(s notifications.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithDispatcher makes Flow use an existing dispatcher. Flow does not close it.
func WithDispatcher(d *notifications.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithChangeHook registers a hook called after every effective state change.
func WithChangeHook(h ChangeHook) Option {
	return func(o *options) {
		if h != nil {
			o.changeHooks = append(o.changeHooks, h)
		}
	}
}

// WithTimeoutHandler is called by Gateway after an attempt timed out.
func WithTimeoutHandler(h TimeoutHandler) Option {
	return func(o *options) { o.onTimeout = h }
}
