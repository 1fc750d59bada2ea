// Package resilience guards repository descriptor/metadata fetches from a
// single misbehaving or overloaded repository.Repository degrading an
// entire collection run: a per-repository circuit breaker (this file and
// http_breaker.go) and a per-repository token-bucket rate limiter
// (rate_limiter.go and per_source_limiter.go), both consulted by
// transport.Client before every request.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// CircuitState is where one repository's circuit currently sits.
type CircuitState int

const (
	StateClosed   CircuitState = iota // repository answering normally
	StateOpen                          // repository failing; reject its requests
	StateHalfOpen                      // probing whether the repository recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

var (
	// ErrCircuitOpen means a repository's circuit is open: the collector
	// should treat this as a descriptor/version-fetch failure for that
	// repository without spending a retry budget on it.
	ErrCircuitOpen = errors.New("resilience: repository circuit is open")
)

// CircuitBreakerConfig tunes how quickly a repository gets cut off after
// repeated descriptor-fetch failures, and how cautiously it's let back in.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failed fetches against one
	// repository before its circuit opens.
	MaxFailures uint

	// Timeout is how long the circuit stays open before a single probe
	// fetch is allowed through (half-open).
	Timeout time.Duration

	// MaxHalfOpenRequests caps concurrent probe fetches while half-open.
	MaxHalfOpenRequests uint
}

// DefaultCircuitBreakerConfig is tuned for a Maven repository: a handful of
// consecutive failures (network blip, a 502 during a deploy) shouldn't trip
// the breaker, but a repository that's genuinely down should stop absorbing
// the collector's retry budget quickly.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         5,                // open after 5 consecutive failed fetches
		Timeout:             30 * time.Second, // probe again after 30s
		MaxHalfOpenRequests: 1,                // one probe fetch at a time
	}
}

// CircuitBreaker is the three-state breaker protecting one repository's
// descriptor/metadata fetches (see HTTPCircuitBreaker for the per-repository
// registry transport.Client actually drives).
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu                sync.RWMutex
	state             CircuitState
	failures          uint
	lastFailureTime   time.Time
	halfOpenSuccesses uint
	halfOpenFailures  uint
	halfOpenActive    uint
}

// NewCircuitBreaker creates a breaker for one repository, closed (healthy).
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// State reports whether this repository is currently healthy, cut off, or
// being probed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// CanExecute reports whether a descriptor/metadata fetch against this
// repository may proceed, returning ErrCircuitOpen if the repository is
// currently cut off.
func (cb *CircuitBreaker) CanExecute() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		// repository healthy - allow all fetches
		return nil

	case StateOpen:
		// Check if the probe timeout has elapsed
		if time.Since(cb.lastFailureTime) >= cb.config.Timeout {
			// Transition to Half-Open
			cb.state = StateHalfOpen
			cb.halfOpenSuccesses = 0
			cb.halfOpenFailures = 0
			cb.halfOpenActive = 0
			// Fall through to HalfOpen case to increment counter
		} else {
			// Still cut off
			return ErrCircuitOpen
		}
		fallthrough

	case StateHalfOpen:
		// Allow a limited number of probe fetches to test recovery
		if cb.halfOpenActive >= cb.config.MaxHalfOpenRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenActive++
		return nil

	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a successful descriptor/metadata fetch against this
// repository.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		// Reset failure counter on success
		cb.failures = 0

	case StateHalfOpen:
		cb.halfOpenActive--
		cb.halfOpenSuccesses++

		// Transition back to Closed after successful test
		cb.state = StateClosed
		cb.failures = 0

	case StateOpen:
		// Should not happen, but reset if it does
		cb.state = StateClosed
		cb.failures = 0
	}
}

// RecordFailure records a failed descriptor/metadata fetch against this
// repository, opening the circuit once MaxFailures is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			// Transition to Open state
			cb.state = StateOpen
		}

	case StateHalfOpen:
		cb.halfOpenActive--
		cb.halfOpenFailures++
		// Any failure in half-open immediately opens circuit
		cb.state = StateOpen

	case StateOpen:
		// Already open, nothing to do
	}
}

// Reset forces this repository's circuit back to Closed, e.g. after an
// operator confirms the repository is back up.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenSuccesses = 0
	cb.halfOpenFailures = 0
	cb.halfOpenActive = 0
}

// Stats snapshots this repository's circuit breaker state, surfaced via
// HTTPCircuitBreaker.GetStats for diagnostics/telemetry.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return CircuitBreakerStats{
		State:             cb.state,
		Failures:          cb.failures,
		LastFailureTime:   cb.lastFailureTime,
		HalfOpenSuccesses: cb.halfOpenSuccesses,
		HalfOpenFailures:  cb.halfOpenFailures,
		HalfOpenActive:    cb.halfOpenActive,
	}
}

// CircuitBreakerStats is a point-in-time snapshot of one repository's
// circuit breaker.
type CircuitBreakerStats struct {
	State             CircuitState
	Failures          uint
	LastFailureTime   time.Time
	HalfOpenSuccesses uint
	HalfOpenFailures  uint
	HalfOpenActive    uint
}
