package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen short-circuits calls while the guarded dependency is
// considered down. Callers treat it like any other transient failure.
var ErrBreakerOpen = errors.New("circuit breaker is open")

var errTooManyProbes = errors.New("too many requests while circuit breaker is half open")

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateHalfOpen
	StateOpen
)

type breakerCounts struct {
	requests            uint32
	totalFailures       uint32
	consecutiveFailures uint32
}

// CircuitBreaker guards the ticket store so that a dead database fails
// scans fast as transient errors instead of stalling every lane on
// timeouts. Closed -> Open when the failure ratio trips, Open -> HalfOpen
// after the cool-down, HalfOpen -> Closed on a successful probe.
type CircuitBreaker struct {
	name         string
	minRequests  uint32
	interval     time.Duration
	cooldown     time.Duration
	failureRatio float64

	mutex      sync.Mutex
	state      BreakerState
	counts     breakerCounts
	generation uint64
	expiry     time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		minRequests:  10,
		interval:     30 * time.Second,
		cooldown:     15 * time.Second,
		failureRatio: 0.6,
		state:        StateClosed,
	}
}

// Execute runs req under the breaker. A context cancellation counts as a
// failure like any other error, since the usual cause is a store timeout.
func (cb *CircuitBreaker) Execute(ctx context.Context, req func() (any, error)) (any, error) {
	generation, err := cb.beforeRequest()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, false)
			panic(r)
		}
	}()

	result, err := req()
	cb.afterRequest(generation, err == nil)
	return result, err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	state, _ := cb.currentState(time.Now())
	return state
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state, generation := cb.currentState(time.Now())

	if state == StateOpen {
		return generation, ErrBreakerOpen
	}
	if state == StateHalfOpen && cb.counts.requests > 0 {
		// one probe at a time while half open
		return generation, errTooManyProbes
	}

	cb.counts.requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state, generation := cb.currentState(time.Now())
	if generation != before {
		return
	}

	if success {
		cb.counts.consecutiveFailures = 0
		if state == StateHalfOpen {
			cb.toState(StateClosed, time.Now())
		}
		return
	}

	cb.counts.totalFailures++
	cb.counts.consecutiveFailures++
	if state == StateHalfOpen || cb.readyToTrip() {
		cb.toState(StateOpen, time.Now())
	}
}

func (cb *CircuitBreaker) readyToTrip() bool {
	return cb.counts.requests >= cb.minRequests &&
		float64(cb.counts.totalFailures)/float64(cb.counts.requests) >= cb.failureRatio
}

func (cb *CircuitBreaker) currentState(now time.Time) (BreakerState, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.newGeneration(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.toState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) toState(state BreakerState, now time.Time) {
	cb.state = state
	cb.newGeneration(now)
}

func (cb *CircuitBreaker) newGeneration(now time.Time) {
	cb.generation++
	cb.counts = breakerCounts{}

	switch cb.state {
	case StateClosed:
		cb.expiry = now.Add(cb.interval)
	case StateOpen:
		cb.expiry = now.Add(cb.cooldown)
	default:
		cb.expiry = time.Time{}
	}
}
