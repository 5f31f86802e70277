// Package scan drives the operator-facing scan loop on a gate device. The
// session owns no authority over ticket validity — that lives in the
// verifier and ultimately in the store's conditional update — but its
// discipline (one in-flight request, correct counter attribution) is what
// makes the redemption guarantee visible to the humans at the door.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ticket-gate/models"
)

// State of the session loop. Paused is an orthogonal flag, not a state:
// pausing mid-Processing lets the in-flight request finish.
type State int

const (
	Idle State = iota
	Scanning
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Processing:
		return "processing"
	}
	return "unknown"
}

var (
	// ErrCaptureDropped reports a capture that arrived while the session
	// was not accepting input. Dropped captures are discarded, not
	// queued: a single physical ticket must not be submitted twice in
	// the time it takes to get a response.
	ErrCaptureDropped = errors.New("capture dropped")

	ErrNotIdle = errors.New("session already started")
)

// Verifier submits one candidate string for verification. Bound to a
// fixed event, staff member and device at session creation.
type Verifier func(ctx context.Context, raw string) (*models.ScanOutcome, error)

// Counts are the running session tallies. Transient failures are not
// counted anywhere; the authoritative truth is each ticket's persisted
// status, these exist only for the operator display.
type Counts struct {
	Accepted  int `json:"accepted"`
	Duplicate int `json:"duplicate"`
	Invalid   int `json:"invalid"`
}

// Result is what the device renders after a capture resolves. Transient
// marks a retry-needed infrastructure failure rather than a decision
// about the ticket.
type Result struct {
	Outcome   *models.ScanOutcome `json:"outcome,omitempty"`
	Transient bool                `json:"transient,omitempty"`
	At        time.Time           `json:"at"`
}

// Session is a per-device scan loop: Idle -> Scanning -> Processing ->
// Scanning. Safe for concurrent captures (camera decode callbacks can
// fire in bursts); exactly one wins Processing, the rest are dropped.
type Session struct {
	verify     Verifier
	displayTTL time.Duration

	mu         sync.Mutex
	state      State
	paused     bool
	counts     Counts
	lastResult *Result
	resultSeq  uint64
}

func NewSession(verify Verifier, displayTTL time.Duration) *Session {
	return &Session{
		verify:     verify,
		displayTTL: displayTTL,
		state:      Idle,
	}
}

// Start moves Idle -> Scanning.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrNotIdle
	}
	s.state = Scanning
	s.paused = false
	return nil
}

// Stop returns the session to Idle from any state. Counters persist until
// the session object itself is discarded. An in-flight request is not
// interrupted; its result is still tallied when it lands, keeping the
// counters in sync with the store mutation that already happened.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.paused = false
}

// Pause suspends capture acceptance without leaving the loop.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		s.paused = true
	}
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Capture submits one candidate string. It returns ErrCaptureDropped when
// the session is idle, paused, or already processing a prior capture.
// Once the verifier call is in flight it is allowed to complete even if
// the operator stops the session: aborting client-side would not stop the
// store mutation and would desynchronize the counters from ground truth.
func (s *Session) Capture(ctx context.Context, raw string) (*Result, error) {
	s.mu.Lock()
	if s.state != Scanning || s.paused {
		s.mu.Unlock()
		return nil, ErrCaptureDropped
	}
	s.state = Processing
	s.mu.Unlock()

	outcome, err := s.verify(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Processing {
		s.state = Scanning
	}

	result := &Result{At: time.Now()}
	if err != nil {
		slog.Warn("scan not classified, retry needed", "error", err)
		result.Transient = true
	} else {
		result.Outcome = outcome
		switch outcome.Classification {
		case models.ScanAccepted:
			s.counts.Accepted++
		case models.ScanDuplicate:
			s.counts.Duplicate++
		case models.ScanInvalid:
			s.counts.Invalid++
		}
	}

	s.showResult(result)
	return result, nil
}

// showResult publishes the result for display and arms the auto-clear.
// Caller holds the lock.
func (s *Session) showResult(result *Result) {
	s.lastResult = result
	s.resultSeq++
	if s.displayTTL <= 0 {
		return
	}
	seq := s.resultSeq
	time.AfterFunc(s.displayTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.resultSeq == seq {
			s.lastResult = nil
		}
	})
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// LastResult returns the result currently on display, or nil after the
// auto-clear interval has elapsed.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}
