package resilience

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// HTTPCircuitBreaker is the registry transport.Client consults before every
// descriptor/metadata fetch: one CircuitBreaker per repository host, so a
// single unreachable Maven repository trips its own breaker without
// touching any other repository's.
type HTTPCircuitBreaker struct {
	config   CircuitBreakerConfig
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewHTTPCircuitBreaker creates a registry where every repository gets its
// own breaker built from config.
func NewHTTPCircuitBreaker(config CircuitBreakerConfig) *HTTPCircuitBreaker {
	return &HTTPCircuitBreaker{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// NewHTTPCircuitBreakerWithDefaults creates a registry with
// DefaultCircuitBreakerConfig.
func NewHTTPCircuitBreakerWithDefaults() *HTTPCircuitBreaker {
	return NewHTTPCircuitBreaker(DefaultCircuitBreakerConfig())
}

// getBreaker gets or lazily creates the breaker for one repository host.
func (hcb *HTTPCircuitBreaker) getBreaker(repositoryID string) *CircuitBreaker {
	// Fast path: read lock
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[repositoryID]
	hcb.mu.RUnlock()

	if exists {
		return breaker
	}

	// Slow path: write lock
	hcb.mu.Lock()
	defer hcb.mu.Unlock()

	// Double-check after acquiring write lock
	breaker, exists = hcb.breakers[repositoryID]
	if exists {
		return breaker
	}

	// Create new breaker
	breaker = NewCircuitBreaker(hcb.config)
	hcb.breakers[repositoryID] = breaker
	return breaker
}

// HTTPOperation performs one HTTP round trip against a repository.
type HTTPOperation func(ctx context.Context) (*http.Response, error)

// Execute runs op against repositoryID's breaker: rejected outright with
// ErrCircuitOpen while the repository's circuit is open, otherwise run and
// scored (a 5xx response counts as a failure the same as a transport error,
// since a repository returning "internal error" for a descriptor fetch is
// just as unhealthy as one that's unreachable).
func (hcb *HTTPCircuitBreaker) Execute(ctx context.Context, repositoryID string, op HTTPOperation) (*http.Response, error) {
	breaker := hcb.getBreaker(repositoryID)

	// Check if circuit allows execution
	if err := breaker.CanExecute(); err != nil {
		return nil, fmt.Errorf("repository %s: %w", repositoryID, err)
	}

	// Execute operation
	resp, err := op(ctx)

	// Record result
	if err != nil {
		// Network error or other failure
		breaker.RecordFailure()
		return nil, err
	}

	// Check HTTP status code
	if resp.StatusCode >= 500 {
		// Server error - record failure
		breaker.RecordFailure()
		return resp, nil
	}

	// Success
	breaker.RecordSuccess()
	return resp, nil
}

// Reset forces one repository's circuit back to Closed.
func (hcb *HTTPCircuitBreaker) Reset(repositoryID string) {
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[repositoryID]
	hcb.mu.RUnlock()

	if exists {
		breaker.Reset()
	}
}

// ResetAll forces every tracked repository's circuit back to Closed.
func (hcb *HTTPCircuitBreaker) ResetAll() {
	hcb.mu.RLock()
	defer hcb.mu.RUnlock()

	for _, breaker := range hcb.breakers {
		breaker.Reset()
	}
}

// GetState reports one repository's circuit state, Closed if it has never
// had a breaker created (i.e. never seen a fetch yet).
func (hcb *HTTPCircuitBreaker) GetState(repositoryID string) CircuitState {
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[repositoryID]
	hcb.mu.RUnlock()

	if !exists {
		return StateClosed // No breaker yet means closed
	}

	return breaker.State()
}

// GetStats snapshots one repository's circuit breaker for diagnostics.
func (hcb *HTTPCircuitBreaker) GetStats(repositoryID string) CircuitBreakerStats {
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[repositoryID]
	hcb.mu.RUnlock()

	if !exists {
		// Return default stats for non-existent breaker
		return CircuitBreakerStats{
			State: StateClosed,
		}
	}

	return breaker.Stats()
}

// GetAllStats snapshots every repository this registry has seen a fetch
// for, keyed by repository host.
func (hcb *HTTPCircuitBreaker) GetAllStats() map[string]CircuitBreakerStats {
	hcb.mu.RLock()
	defer hcb.mu.RUnlock()

	stats := make(map[string]CircuitBreakerStats, len(hcb.breakers))
	for repositoryID, breaker := range hcb.breakers {
		stats[repositoryID] = breaker.Stats()
	}

	return stats
}
