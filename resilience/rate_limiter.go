package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRateLimitExceeded means a descriptor/metadata fetch would exceed
	// the per-repository request budget and should back off.
	ErrRateLimitExceeded = errors.New("resilience: repository request rate exceeded")
)

// TokenBucketConfig tunes how many descriptor/metadata fetches a single
// repository will tolerate per second before the collector should back off
// (politeness towards a shared public mirror, not a hard repository quota).
type TokenBucketConfig struct {
	// Capacity is the maximum burst of fetches allowed against one
	// repository before the bucket is drained.
	Capacity int

	// RefillRate is fetches allowed per second, sustained.
	RefillRate float64

	// InitialTokens is the number of tokens at startup (default: Capacity).
	InitialTokens int
}

// DefaultTokenBucketConfig allows a burst of 100 fetches against one
// repository, sustained at 50/s — generous enough that a single collection
// run's descriptor fan-out rarely waits, but bounded so a pathological
// dependency tree can't hammer a shared repository mirror.
func DefaultTokenBucketConfig() TokenBucketConfig {
	return TokenBucketConfig{
		Capacity:      100,
		RefillRate:    50.0,
		InitialTokens: 100,
	}
}

// TokenBucket rate-limits descriptor/metadata fetches against one
// repository using the standard token bucket algorithm.
type TokenBucket struct {
	mu sync.Mutex

	capacity     int
	refillRate   float64
	tokens       float64
	lastRefillAt time.Time
}

// NewTokenBucket creates a rate limiter for one repository's fetches.
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	initialTokens := config.InitialTokens
	if initialTokens == 0 {
		initialTokens = config.Capacity
	}
	if initialTokens > config.Capacity {
		initialTokens = config.Capacity
	}

	return &TokenBucket{
		capacity:     config.Capacity,
		refillRate:   config.RefillRate,
		tokens:       float64(initialTokens),
		lastRefillAt: time.Now(),
	}
}

// refill adds tokens based on elapsed time.
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefillAt).Seconds()
	tb.lastRefillAt = now

	// Add tokens based on refill rate and elapsed time
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}
}

// Allow reports whether one more fetch against this repository can proceed
// right now, without blocking.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}

	return false
}

// AllowN reports whether n fetches against this repository can proceed
// right now, without blocking.
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	needed := float64(n)
	if tb.tokens >= needed {
		tb.tokens -= needed
		return true
	}

	return false
}

// Wait blocks until this repository has budget for one more fetch, or ctx
// is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}

		// Calculate wait time until next token
		waitTime := tb.calculateWaitTime(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Retry after wait
		}
	}
}

// WaitN blocks until this repository has budget for n more fetches, or ctx
// is cancelled.
func (tb *TokenBucket) WaitN(ctx context.Context, n int) error {
	for {
		if tb.AllowN(n) {
			return nil
		}

		waitTime := tb.calculateWaitTime(n)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Retry after wait
		}
	}
}

// calculateWaitTime estimates how long until n more fetches' worth of
// tokens will have refilled.
func (tb *TokenBucket) calculateWaitTime(n int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	deficit := float64(n) - tb.tokens
	if deficit <= 0 {
		return 0
	}

	// Calculate time needed to accumulate deficit tokens
	seconds := deficit / tb.refillRate
	return time.Duration(seconds * float64(time.Second))
}

// Tokens reports how many fetches this repository currently has budget
// for.
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// Stats snapshots this repository's rate limiter state, surfaced via
// PerSourceLimiter.GetStats for diagnostics/telemetry.
func (tb *TokenBucket) Stats() TokenBucketStats {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	return TokenBucketStats{
		Capacity:   tb.capacity,
		RefillRate: tb.refillRate,
		Tokens:     tb.tokens,
	}
}

// TokenBucketStats is a point-in-time snapshot of one repository's token
// bucket.
type TokenBucketStats struct {
	Capacity   int
	RefillRate float64
	Tokens     float64
}
