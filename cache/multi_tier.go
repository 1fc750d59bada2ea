package cache

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/artifactgraph/depcollect/telemetry"
)

// MultiTierCache is the cache descriptor.HTTPReader consults before hitting a
// repository (version listings are not cached): memory (L1) in front of disk (L2), so a
// descriptor fetched once per process stays hot, while an L2 hit still survives
// across separate collector invocations. An L2 hit is promoted to L1.
type MultiTierCache struct {
	l1 *MemoryCache
	l2 *DiskCache
}

// NewMultiTierCache creates a multi-tier cache combining memory and disk layers.
func NewMultiTierCache(l1 *MemoryCache, l2 *DiskCache) *MultiTierCache {
	return &MultiTierCache{
		l1: l1,
		l2: l2,
	}
}

// Get looks up one repository payload (descriptor, version listing) by
// cacheKey, checking L1 first, then L2, promoting an L2 hit to L1. Returns
// early if ctx is already cancelled rather than paying for an L2 disk read
// whose result will be discarded.
func (mtc *MultiTierCache) Get(ctx context.Context, sourceURL string, cacheKey string, maxAge time.Duration) ([]byte, bool, error) {
	// Check L1 (memory cache)
	if data, ok := mtc.l1.Get(cacheKey); ok {
		telemetry.CacheHitsTotal.WithLabelValues("memory").Inc()
		return data, true, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// Check L2 (disk cache)
	reader, ok, err := mtc.l2.Get(sourceURL, cacheKey, maxAge)
	if err != nil {
		telemetry.CacheMissesTotal.WithLabelValues("disk").Inc()
		return nil, false, err
	}
	if !ok {
		telemetry.CacheMissesTotal.WithLabelValues("memory").Inc()
		telemetry.CacheMissesTotal.WithLabelValues("disk").Inc()
		return nil, false, nil
	}
	defer func() { _ = reader.Close() }()

	// Read data from disk
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, err
	}

	// L2 hit - record metric
	telemetry.CacheHitsTotal.WithLabelValues("disk").Inc()
	telemetry.CacheMissesTotal.WithLabelValues("memory").Inc()

	// Promote to L1
	mtc.l1.Set(cacheKey, data, maxAge)

	return data, true, nil
}

// Set stores one repository payload in both L1 and L2, keyed by cacheKey.
func (mtc *MultiTierCache) Set(ctx context.Context, sourceURL string, cacheKey string, data io.Reader, maxAge time.Duration, validate func(io.ReadSeeker) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Read data into memory
	dataBytes, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	// Write to L1 (memory)
	mtc.l1.Set(cacheKey, dataBytes, maxAge)

	// Write to L2 (disk) - use bytes.NewReader for validation
	return mtc.l2.Set(sourceURL, cacheKey, bytes.NewReader(dataBytes), validate)
}

// Clear evicts every cached descriptor and version listing from both tiers.
func (mtc *MultiTierCache) Clear() error {
	mtc.l1.Clear()
	return mtc.l2.Clear()
}
