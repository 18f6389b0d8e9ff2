package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// CircuitState is the state of the feed circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every request through
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests until the cool-down has passed
	CircuitOpen
	// CircuitHalfOpen lets a single trial request through
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned while the breaker rejects requests
var ErrCircuitOpen = errors.New("market feed circuit breaker open")

// CircuitBreaker stops calling the feed after consecutive outages. Only errors that
// indicate the feed itself is failing count; see countsAsOutage.
type CircuitBreaker struct {
	mu          sync.Mutex
	maxFailures int
	cooldown    time.Duration
	clock       shared.Clock

	state       CircuitState
	failures    int
	openedAt    time.Time
	trialActive bool
	onChange    func(CircuitState)
}

// NewCircuitBreaker creates a closed breaker. If clock is nil, uses RealClock.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration, clock shared.Clock) *CircuitBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		clock:       clock,
		state:       CircuitClosed,
	}
}

// OnStateChange registers fn to be called with every new state, outside the breaker's lock
func (cb *CircuitBreaker) OnStateChange(fn func(CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onChange = fn
}

// Call runs fn unless the breaker is open. fn runs without the lock held so that
// retries and backoff sleeps do not block other callers.
func (cb *CircuitBreaker) Call(fn func() error) error {
	trial, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	cb.record(trial, err)
	return err
}

func (cb *CircuitBreaker) admit() (trial bool, err error) {
	cb.mu.Lock()
	var changed bool
	defer func() {
		notify := cb.onChange
		state := cb.state
		cb.mu.Unlock()
		if changed && notify != nil {
			notify(state)
		}
	}()

	switch cb.state {
	case CircuitOpen:
		if cb.clock.Now().Sub(cb.openedAt) < cb.cooldown {
			return false, ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
		changed = true
		fallthrough
	case CircuitHalfOpen:
		if cb.trialActive {
			return false, ErrCircuitOpen
		}
		cb.trialActive = true
		return true, nil
	default:
		return false, nil
	}
}

func (cb *CircuitBreaker) record(trial bool, err error) {
	cb.mu.Lock()
	before := cb.state
	if trial {
		cb.trialActive = false
	}

	switch {
	case countsAsOutage(err):
		cb.failures++
		if before == CircuitHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = CircuitOpen
			cb.openedAt = cb.clock.Now()
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// no verdict on the feed
	default:
		// The feed answered, even if with a client error
		cb.state = CircuitClosed
		cb.failures = 0
	}

	after := cb.state
	notify := cb.onChange
	cb.mu.Unlock()
	if after != before && notify != nil {
		notify(after)
	}
}

// countsAsOutage reports whether err means the feed is unavailable: transport errors
// and 429/5xx responses that exhausted their retries. Missing items, other client
// errors and cancellations do not count.
func countsAsOutage(err error) bool {
	if err == nil {
		return false
	}
	var retryable *retryableError
	return errors.As(err, &retryable)
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the consecutive outage count
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
