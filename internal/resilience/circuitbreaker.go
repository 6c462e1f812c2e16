// Package resilience provides opt-in hardening around backend calls:
// bounded retries with backoff, a circuit breaker and a client-side rate limiter.
// None of them are active unless the client is configured to use them.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the current state of a circuit breaker.
type CircuitState int

const (
	// StateClosed allows requests to pass through normally.
	StateClosed CircuitState = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen allows limited requests to test recovery.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig contains configuration for a circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes needed to close again.
	SuccessThreshold int
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenMaxRequests bounds concurrent probes while half-open.
	HalfOpenMaxRequests int
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

// CircuitBreaker stops calling a backend that keeps failing at the transport level.
type CircuitBreaker struct {
	mu            sync.Mutex
	name          string
	state         CircuitState
	failures      int
	successes     int
	probes        int
	openedAt      time.Time
	config        CircuitBreakerConfig
	now           func() time.Time
	onStateChange func(name string, from, to CircuitState)
}

// NewCircuitBreaker creates a closed circuit breaker.
// Non-positive config values are replaced by defaults.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = def.HalfOpenMaxRequests
	}
	return &CircuitBreaker{
		name:   name,
		state:  StateClosed,
		config: cfg,
		now:    time.Now,
	}
}

// OnStateChange sets a callback for state transitions. It runs synchronously, outside the lock.
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow returns ErrCircuitOpen when the call must not be attempted.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	var notify func()
	defer func() {
		cb.mu.Unlock()
		if notify != nil {
			notify()
		}
	}()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.OpenTimeout {
			return ErrCircuitOpen
		}
		notify = cb.transitionTo(StateHalfOpen)
		cb.probes = 1
		return nil
	case StateHalfOpen:
		if cb.probes < cb.config.HalfOpenMaxRequests {
			cb.probes++
			return nil
		}
		return ErrCircuitOpen
	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a call that reached the backend.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	var notify func()
	defer func() {
		cb.mu.Unlock()
		if notify != nil {
			notify()
		}
	}()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.probes > 0 {
			cb.probes--
		}
		if cb.successes >= cb.config.SuccessThreshold {
			notify = cb.transitionTo(StateClosed)
		}
	}
}

// RecordFailure records a call that never reached the backend.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	var notify func()
	defer func() {
		cb.mu.Unlock()
		if notify != nil {
			notify()
		}
	}()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			notify = cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		notify = cb.transitionTo(StateOpen)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Reset forces the breaker back to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	notify := cb.transitionTo(StateClosed)
	cb.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// transitionTo must be called with cb.mu held. It returns the pending callback, if any.
func (cb *CircuitBreaker) transitionTo(next CircuitState) func() {
	cb.failures = 0
	cb.successes = 0
	cb.probes = 0
	if next == StateOpen {
		cb.openedAt = cb.now()
	}
	if cb.state == next {
		return nil
	}

	prev := cb.state
	cb.state = next
	if cb.onStateChange == nil {
		return nil
	}
	fn, name := cb.onStateChange, cb.name
	return func() { fn(name, prev, next) }
}
