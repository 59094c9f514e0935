package phoneauth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/notifications"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
)

const waitFor = time.Second

var vietnam = phoneauth.Country{Name: "Vietnam", DialCode: "+84"}

// fakeProvider hands every request and sign-in to the test, which decides
// when and how they complete.
type fakeProvider struct {
	requests chan fakeRequest
	signIns  chan *fakeSignIn
	stop     chan struct{}

	mu       sync.Mutex
	user     *phoneauth.User
	signOuts int
}

type fakeRequest struct {
	req     phoneauth.VerificationRequest
	deliver func(phoneauth.VerificationEvent)
}

type signInResult struct {
	user phoneauth.User
	err  error
}

type fakeSignIn struct {
	cred   phoneauth.Credential
	result chan signInResult
}

func (s *fakeSignIn) succeed(id string) {
	s.result <- signInResult{user: phoneauth.User{ID: id}}
}

func (s *fakeSignIn) fail(err error) {
	s.result <- signInResult{err: err}
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		requests: make(chan fakeRequest, 16),
		signIns:  make(chan *fakeSignIn, 16),
		stop:     make(chan struct{}),
	}
	t.Cleanup(func() { close(p.stop) })
	return p
}

func (p *fakeProvider) StartVerification(_ context.Context, req phoneauth.VerificationRequest, deliver func(phoneauth.VerificationEvent)) {
	p.requests <- fakeRequest{req: req, deliver: deliver}
}

func (p *fakeProvider) BuildCredential(verificationID, code string) phoneauth.Credential {
	return phoneauth.Credential{Provider: "fake", VerificationID: verificationID, Code: code}
}

func (p *fakeProvider) SignIn(_ context.Context, cred phoneauth.Credential) (phoneauth.User, error) {
	call := &fakeSignIn{cred: cred, result: make(chan signInResult, 1)}
	p.signIns <- call
	select {
	case r := <-call.result:
		if r.err == nil {
			p.mu.Lock()
			p.user = &r.user
			p.mu.Unlock()
		}
		return r.user, r.err
	case <-p.stop:
		return phoneauth.User{}, context.Canceled
	}
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	p.signOuts++
	return nil
}

func (p *fakeProvider) CurrentUser() *phoneauth.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

func (p *fakeProvider) SignOuts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOuts
}

func (p *fakeProvider) nextRequest(t *testing.T) fakeRequest {
	t.Helper()
	select {
	case r := <-p.requests:
		return r
	case <-time.After(waitFor):
		t.Fatal("provider received no verification request")
		return fakeRequest{}
	}
}

func (p *fakeProvider) nextSignIn(t *testing.T) *fakeSignIn {
	t.Helper()
	select {
	case s := <-p.signIns:
		return s
	case <-time.After(waitFor):
		t.Fatal("provider received no sign-in")
		return nil
	}
}

// noticeSink records notices and waits for the test to answer them.
type noticeSink struct {
	shown     chan notifications.Notice
	withdrawn chan notifications.Notice
	decisions chan bool
}

func newNoticeSink() *noticeSink {
	return &noticeSink{
		shown:     make(chan notifications.Notice, 16),
		withdrawn: make(chan notifications.Notice, 16),
		decisions: make(chan bool, 1),
	}
}

func (s *noticeSink) Show(ctx context.Context, n notifications.Notice) (bool, error) {
	s.shown <- n
	select {
	case d := <-s.decisions:
		return d, nil
	case <-ctx.Done():
		s.withdrawn <- n
		return false, ctx.Err()
	}
}

func (s *noticeSink) nextShown(t *testing.T) notifications.Notice {
	t.Helper()
	select {
	case n := <-s.shown:
		return n
	case <-time.After(waitFor):
		t.Fatal("no notice shown")
		return notifications.Notice{}
	}
}

type testFlow struct {
	*phoneauth.Flow
	provider *fakeProvider
	clock    *clockwork.FakeClock
	sink     *noticeSink
}

func newTestFlow(t *testing.T, opts ...phoneauth.Option) *testFlow {
	t.Helper()
	provider := newFakeProvider(t)
	clock := clockwork.NewFakeClock()
	sink := newNoticeSink()

	base := []phoneauth.Option{
		phoneauth.WithLogger(logger.Discard()),
		phoneauth.WithClock(clock),
		phoneauth.WithSink(sink),
	}
	f, err := phoneauth.New(context.Background(), provider, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	return &testFlow{Flow: f, provider: provider, clock: clock, sink: sink}
}

// requestCode starts a verification for a Vietnamese number and returns the
// provider's view of it.
func (f *testFlow) requestCode(t *testing.T) fakeRequest {
	t.Helper()
	require.NoError(t, f.StartVerification(context.Background(), vietnam, "0901234567"))
	return f.provider.nextRequest(t)
}

// enterCodeEntry runs a request through to CodeSent.
func (f *testFlow) enterCodeEntry(t *testing.T, verificationID, resendToken string) {
	t.Helper()
	r := f.requestCode(t)
	r.deliver(phoneauth.CodeSent{VerificationID: verificationID, ResendToken: resendToken})
	require.Equal(t, verificationID, f.State().Home.VerificationID)
}

func (f *testFlow) eventually(t *testing.T, cond func(phoneauth.AuthUIState) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(f.State()) }, waitFor, 5*time.Millisecond, msg)
}

// mockPersistence is a testify mock of phoneauth.Persistence.
type mockPersistence struct {
	mock.Mock
}

func (m *mockPersistence) Load(ctx context.Context) (phoneauth.AuthUIState, error) {
	args := m.Called(ctx)
	return args.Get(0).(phoneauth.AuthUIState), args.Error(1)
}

func (m *mockPersistence) Save(ctx context.Context, st phoneauth.AuthUIState) error {
	return m.Called(ctx, st).Error(0)
}

func (m *mockPersistence) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
