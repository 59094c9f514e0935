package phoneauth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

type attemptStatus uint8

const (
	attemptPending attemptStatus = iota
	attemptSettled
	attemptCancelled
)

// Attempt is one code request or one sign-in. Its outcome is decided once:
// the first of settle or cancel wins, and a timeout may be declared once while
// it is still pending. Effects run inside the guard, so cancelling waits for
// a running effect to finish.
type Attempt struct {
	seq       uint64
	id        string
	phase     Phase
	startedAt time.Time
	done      chan struct{}

	mu       sync.Mutex
	status   attemptStatus
	timedOut bool
}

func newAttempt(seq uint64, phase Phase, now time.Time) *Attempt {
	return &Attempt{
		seq:       seq,
		id:        uuid.NewString(),
		phase:     phase,
		startedAt: now,
		done:      make(chan struct{}),
	}
}

// Seq is the monotonically increasing attempt number.
func (a *Attempt) Seq() uint64 { return a.seq }

// ID is a correlation id for logs.
func (a *Attempt) ID() string { return a.id }

// Phase is PhasePhoneEntry for code requests and PhaseCodeEntry for sign-ins.
func (a *Attempt) Phase() Phase { return a.phase }

func (a *Attempt) StartedAt() time.Time { return a.startedAt }

// Done is closed once the attempt is settled or cancelled.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Pending reports whether the attempt can still produce an effect.
func (a *Attempt) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status == attemptPending
}

func (a *Attempt) TimedOut() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timedOut
}

func (a *Attempt) Cancelled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status == attemptCancelled
}

// settle runs effect and marks the attempt settled if it is still pending.
// A timed-out attempt can still settle.
func (a *Attempt) settle(effect func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != attemptPending {
		return false
	}
	a.status = attemptSettled
	if effect != nil {
		effect()
	}
	close(a.done)
	return true
}

// expire runs effect if the attempt is pending and has not timed out yet.
func (a *Attempt) expire(effect func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != attemptPending || a.timedOut {
		return false
	}
	a.timedOut = true
	if effect != nil {
		effect()
	}
	return true
}

func (a *Attempt) cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != attemptPending {
		return false
	}
	a.status = attemptCancelled
	close(a.done)
	return true
}

func (a *Attempt) logAttr() slog.Attr {
	return logger.Attempt(a.seq, a.id)
}

// attemptSlot holds the current attempt of one kind. Callers serialize access.
type attemptSlot struct {
	phase   Phase
	current *Attempt
}

// begin cancels the current attempt before creating its successor, so two
// attempts of one kind are never pending together.
func (s *attemptSlot) begin(seq uint64, now time.Time) *Attempt {
	s.cancel()
	s.current = newAttempt(seq, s.phase, now)
	return s.current
}

func (s *attemptSlot) cancel() *Attempt {
	if s.current == nil {
		return nil
	}
	prev := s.current
	s.current = nil
	if !prev.cancel() {
		return nil
	}
	return prev
}

func (s *attemptSlot) holds(a *Attempt) bool {
	return s.current == a
}
