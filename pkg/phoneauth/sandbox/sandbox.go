package sandbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
	"github.com/dmitrymomot/phoneauth/pkg/ratelimiter"
)

// Name is stored in every credential this provider builds.
const Name = "sandbox"

// DefaultCode is the code sent to numbers without an explicit entry.
const DefaultCode = "123456"

// Behavior is how the sandbox answers a verification request for a number.
type Behavior int

const (
	// SendCode sends Number.Code and waits for it.
	SendCode Behavior = iota
	// AutoVerify verifies the number without a code.
	AutoVerify
	// RejectNumber fails with an invalid-credential error.
	RejectNumber
	// ExceedQuota fails with a quota error.
	ExceedQuota
	// Silent never answers, which lets the local timeout fire.
	Silent
)

func (b Behavior) String() string {
	switch b {
	case SendCode:
		return "send_code"
	case AutoVerify:
		return "auto_verify"
	case RejectNumber:
		return "reject_number"
	case ExceedQuota:
		return "exceed_quota"
	case Silent:
		return "silent"
	default:
		return "unknown"
	}
}

// Number is a fictional phone number with a scripted behavior.
type Number struct {
	Phone    string
	Code     string
	Behavior Behavior
}

type verification struct {
	phone string
	code  string
}

// Provider is an in-process phoneauth.Provider for development and tests.
// Unknown numbers behave like SendCode with DefaultCode.
type Provider struct {
	clock  clockwork.Clock
	delay  time.Duration
	quota  ratelimiter.RateLimiter
	logger *slog.Logger

	mu            sync.Mutex
	numbers       map[string]Number
	verifications map[string]verification
	lastCode      map[string]string
	user          *phoneauth.User

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ phoneauth.Provider = (*Provider)(nil)

// Option configures the sandbox.
type Option func(*Provider)

// WithNumber scripts the behavior of one number.
func WithNumber(n Number) Option {
	return func(p *Provider) {
		if n.Code == "" {
			n.Code = DefaultCode
		}
		p.numbers[n.Phone] = n
	}
}

// WithDelay delays every answer by d.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) { p.delay = d }
}

// WithClock sets the clock used for delays.
func WithClock(c clockwork.Clock) Option {
	return func(p *Provider) {
		if c != nil {
			p.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithQuota limits code requests per phone number. Requests over the quota
// fail with phoneauth.ErrQuotaExceeded.
func WithQuota(q ratelimiter.RateLimiter) Option {
	return func(p *Provider) { p.quota = q }
}

// WithSignedInUser starts the sandbox with an existing session.
func WithSignedInUser(u phoneauth.User) Option {
	return func(p *Provider) { p.user = &u }
}

// New creates a sandbox provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		clock:         clockwork.NewRealClock(),
		logger:        slog.Default(),
		numbers:       make(map[string]Number),
		verifications: make(map[string]verification),
		lastCode:      make(map[string]string),
		closed:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("sandbox_provider"))
	return p
}

func (p *Provider) StartVerification(ctx context.Context, req phoneauth.VerificationRequest, deliver func(phoneauth.VerificationEvent)) {
	if p.overQuota(ctx, req.PhoneNumber) {
		p.deliverLater(ctx, deliver, phoneauth.VerificationFailed{Err: phoneauth.NewProviderError(
			phoneauth.ErrQuotaExceeded, "Too many requests for this number. Try again later.", nil)})
		return
	}

	p.mu.Lock()
	n, ok := p.numbers[req.PhoneNumber]
	if !ok {
		n = Number{Phone: req.PhoneNumber, Code: DefaultCode, Behavior: SendCode}
	}

	var ev phoneauth.VerificationEvent
	switch n.Behavior {
	case SendCode:
		id := uuid.NewString()
		p.verifications[id] = verification{phone: n.Phone, code: n.Code}
		p.lastCode[n.Phone] = n.Code
		ev = phoneauth.CodeSent{VerificationID: id, ResendToken: uuid.NewString()}
	case AutoVerify:
		id := uuid.NewString()
		p.verifications[id] = verification{phone: n.Phone, code: n.Code}
		ev = phoneauth.AutoVerified{Credential: p.BuildCredential(id, n.Code)}
	case RejectNumber:
		ev = phoneauth.VerificationFailed{Err: phoneauth.NewProviderError(
			phoneauth.ErrInvalidCredential, "The phone number is not valid.", nil)}
	case ExceedQuota:
		ev = phoneauth.VerificationFailed{Err: phoneauth.NewProviderError(
			phoneauth.ErrQuotaExceeded, "Too many requests from this device.", nil)}
	}
	p.mu.Unlock()

	p.logger.LogAttrs(ctx, slog.LevelDebug, "verification requested",
		logger.Phone(req.PhoneNumber),
		slog.String("behavior", n.Behavior.String()),
		slog.Bool("resend", req.ResendToken != ""),
	)
	if ev == nil {
		return
	}
	p.deliverLater(ctx, deliver, ev)
}

func (p *Provider) deliverLater(ctx context.Context, deliver func(phoneauth.VerificationEvent), ev phoneauth.VerificationEvent) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if !p.wait(ctx) {
			return
		}
		deliver(ev)
	}()
}

func (p *Provider) overQuota(ctx context.Context, phone string) bool {
	if p.quota == nil {
		return false
	}
	res, err := p.quota.Allow(ctx, phone)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "quota check failed", logger.Phone(phone), logger.Error(err))
		return false
	}
	if !res.Allowed() {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "code request over quota",
			logger.Phone(phone),
			logger.Duration(res.RetryAfter()),
		)
		return true
	}
	return false
}

// wait sleeps for the configured delay. It reports false if the sandbox was
// closed first.
func (p *Provider) wait(ctx context.Context) bool {
	if p.delay <= 0 {
		select {
		case <-p.closed:
			return false
		default:
			return true
		}
	}
	select {
	case <-p.clock.After(p.delay):
		return true
	case <-p.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *Provider) BuildCredential(verificationID, code string) phoneauth.Credential {
	return phoneauth.Credential{Provider: Name, VerificationID: verificationID, Code: code}
}

func (p *Provider) SignIn(ctx context.Context, cred phoneauth.Credential) (phoneauth.User, error) {
	if !p.wait(ctx) {
		return phoneauth.User{}, phoneauth.NewProviderError(phoneauth.ErrProvider, "", ErrClosed)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.verifications[cred.VerificationID]
	if !ok || cred.Provider != Name {
		return phoneauth.User{}, phoneauth.NewProviderError(
			phoneauth.ErrInvalidCredential, "The verification session has expired.", nil)
	}
	if v.code != cred.Code {
		return phoneauth.User{}, phoneauth.NewProviderError(
			phoneauth.ErrInvalidCredential, "The verification code is not valid.", nil)
	}

	delete(p.verifications, cred.VerificationID)
	u := phoneauth.User{ID: uuid.NewString(), PhoneNumber: v.phone}
	p.user = &u
	return u, nil
}

func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	return nil
}

func (p *Provider) CurrentUser() *phoneauth.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// LastCode returns the last code sent to phone, standing in for an SMS inbox.
func (p *Provider) LastCode(phone string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	code, ok := p.lastCode[phone]
	return code, ok
}

// Close stops pending deliveries and waits for them.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	p.wg.Wait()
	return nil
}
