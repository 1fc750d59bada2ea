package resilience

import (
	"context"
	"sync"
)

// PerSourceLimiter is the registry transport.Client consults before every
// descriptor/metadata fetch: one TokenBucket per repository host, so a
// slow or strict repository mirror's budget doesn't throttle fetches
// against a different repository in the same collection session.
type PerSourceLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*TokenBucket
	config   TokenBucketConfig
}

// NewPerSourceLimiter creates a registry where every repository gets its
// own TokenBucket built from config.
func NewPerSourceLimiter(config TokenBucketConfig) *PerSourceLimiter {
	return &PerSourceLimiter{
		limiters: make(map[string]*TokenBucket),
		config:   config,
	}
}

// NewPerSourceLimiterWithDefaults creates a registry with
// DefaultTokenBucketConfig.
func NewPerSourceLimiterWithDefaults() *PerSourceLimiter {
	return NewPerSourceLimiter(DefaultTokenBucketConfig())
}

// getLimiter gets or lazily creates the bucket for one repository host.
func (psl *PerSourceLimiter) getLimiter(repositoryID string) *TokenBucket {
	psl.mu.RLock()
	limiter, exists := psl.limiters[repositoryID]
	psl.mu.RUnlock()

	if exists {
		return limiter
	}

	// Create new limiter
	psl.mu.Lock()
	defer psl.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = psl.limiters[repositoryID]
	if exists {
		return limiter
	}

	limiter = NewTokenBucket(psl.config)
	psl.limiters[repositoryID] = limiter
	return limiter
}

// Allow reports whether a fetch against repositoryID can proceed right now,
// without blocking.
func (psl *PerSourceLimiter) Allow(repositoryID string) bool {
	limiter := psl.getLimiter(repositoryID)
	return limiter.Allow()
}

// AllowN reports whether n fetches against repositoryID can proceed right
// now, without blocking.
func (psl *PerSourceLimiter) AllowN(repositoryID string, n int) bool {
	limiter := psl.getLimiter(repositoryID)
	return limiter.AllowN(n)
}

// Wait blocks until repositoryID has budget for one more fetch, or ctx is
// cancelled.
func (psl *PerSourceLimiter) Wait(ctx context.Context, repositoryID string) error {
	limiter := psl.getLimiter(repositoryID)
	return limiter.Wait(ctx)
}

// WaitN blocks until repositoryID has budget for n more fetches, or ctx is
// cancelled.
func (psl *PerSourceLimiter) WaitN(ctx context.Context, repositoryID string, n int) error {
	limiter := psl.getLimiter(repositoryID)
	return limiter.WaitN(ctx, n)
}

// GetStats snapshots one repository's rate limiter, nil if it has never
// seen a fetch.
func (psl *PerSourceLimiter) GetStats(repositoryID string) *TokenBucketStats {
	psl.mu.RLock()
	limiter, exists := psl.limiters[repositoryID]
	psl.mu.RUnlock()

	if !exists {
		return nil
	}

	stats := limiter.Stats()
	return &stats
}

// GetAllStats snapshots every repository this registry has seen a fetch
// for, keyed by repository host.
func (psl *PerSourceLimiter) GetAllStats() map[string]TokenBucketStats {
	psl.mu.RLock()
	defer psl.mu.RUnlock()

	stats := make(map[string]TokenBucketStats, len(psl.limiters))
	for repositoryID, limiter := range psl.limiters {
		stats[repositoryID] = limiter.Stats()
	}

	return stats
}
