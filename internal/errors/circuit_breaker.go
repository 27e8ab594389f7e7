package errors

import (
	"errors"
	"sync"
	"time"
)

const (
	ErrorThreshold      = 0.5
	MinRequests         = 10
	HalfOpenMaxRequests = 3
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// ErrCircuitOpen is returned while the breaker refuses calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

var errHalfOpenTooManyRequests = errors.New("too many requests in half-open")

// CircuitBreaker guards the planner sidecar: once the error rate crosses
// the threshold it fails fast for the cooldown period, then probes with a
// few half-open requests before closing again.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           State
	cooldown        time.Duration
	failures        int
	successes       int
	requests        int
	lastFailureTime time.Time
}

// NewCircuitBreaker creates a closed breaker with the given open-state
// cooldown before half-open probing starts.
func NewCircuitBreaker(cooldown time.Duration) *CircuitBreaker {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &CircuitBreaker{cooldown: cooldown}
}

// Call runs fn unless the breaker is refusing traffic, recording the
// outcome for the state machine.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if fn == nil {
		return nil
	}

	if err := cb.allow(); err != nil {
		return err
	}

	callErr := fn()
	cb.record(callErr)
	return callErr
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) < cb.cooldown {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.resetCounters()
	}

	if cb.state == StateHalfOpen && cb.requests >= HalfOpenMaxRequests {
		return errHalfOpenTooManyRequests
	}

	return nil
}

func (cb *CircuitBreaker) record(callErr error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.requests++

	if callErr != nil {
		cb.failures++
		if cb.state == StateHalfOpen {
			cb.trip()
			return
		}

		if cb.requests >= MinRequests && float64(cb.failures)/float64(cb.requests) >= ErrorThreshold {
			cb.trip()
		}
		return
	}

	cb.successes++
	if cb.state == StateHalfOpen && cb.successes >= HalfOpenMaxRequests {
		cb.state = StateClosed
		cb.resetCounters()
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.lastFailureTime = time.Now()
	cb.resetCounters()
}

func (cb *CircuitBreaker) resetCounters() {
	cb.failures = 0
	cb.successes = 0
	cb.requests = 0
}
