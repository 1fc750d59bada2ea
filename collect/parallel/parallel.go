// Package parallel provides an optional refinement over collect.Collector:
// fanning a batch of independent CollectRequests (e.g. the modules of a
// multi-module build) across a bounded worker pool. A single CollectRequest's
// own traversal always stays single-threaded inside collect.Collector per
// spec.md §5 — this package never parallelizes within one collection, only
// across many.
//
// Grounded on core/resolver/parallel_resolver.go's ParallelResolver, adapted
// from PackageDependency/ResolutionResult pairs to CollectRequest/CollectResult
// pairs.
package parallel

import (
	"context"
	"fmt"
	"sync"

	"github.com/artifactgraph/depcollect/collect"
)

// Tracker optionally observes worker concurrency, e.g. for a gauge metric.
type Tracker interface {
	Enter()
	Exit()
}

// Resolver fans batches of collect.CollectRequest across a bounded pool of
// workers, each running its own independent collect.Collector.Collect call.
type Resolver struct {
	collector  *collect.Collector
	maxWorkers int
	semaphore  chan struct{}
	tracker    Tracker
}

// NewResolver returns a Resolver backed by collector, capping concurrent
// Collect calls at maxWorkers. maxWorkers <= 0 defaults to 10.
func NewResolver(collector *collect.Collector, maxWorkers int) *Resolver {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	return &Resolver{
		collector:  collector,
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// WithTracker attaches an optional concurrency tracker and returns r.
func (r *Resolver) WithTracker(tracker Tracker) *Resolver {
	r.tracker = tracker
	return r
}

// batchItem pairs a request with the session it should run under, since each
// of a batch's roots may carry its own policy (FailOnDescriptorError, ignored
// scopes).
type batchItem struct {
	Session *collect.Session
	Request collect.CollectRequest
}

// Item is a public alias of batchItem's shape, used by callers building a batch.
type Item = batchItem

// NewItem pairs a session with a request for use in CollectBatch.
func NewItem(session *collect.Session, req collect.CollectRequest) Item {
	return Item{Session: session, Request: req}
}

// CollectBatch runs every item's Collect call concurrently, bounded by the
// Resolver's worker pool, and returns one CollectResult per item in the same
// order the items were given. A single item's hard error (context
// cancellation, or a FailOnDescriptorError escalation) does not abort the
// other items in flight — it is reported alongside that item's result via
// the returned error slice.
func (r *Resolver) CollectBatch(ctx context.Context, items []Item) ([]*collect.CollectResult, []error) {
	results := make([]*collect.CollectResult, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(index int, it Item) {
			defer wg.Done()

			select {
			case r.semaphore <- struct{}{}:
				defer func() { <-r.semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}

			if r.tracker != nil {
				r.tracker.Enter()
				defer r.tracker.Exit()
			}

			result, err := r.collector.Collect(ctx, it.Session, it.Request)
			results[index] = result
			errs[index] = err
		}(i, item)
	}
	wg.Wait()

	return results, errs
}

// CollectBatchOrFirstError behaves like CollectBatch but collapses the error
// slice into a single error, wrapping the index of the first item that
// failed — convenient for callers that want all-or-nothing semantics across
// a batch.
func (r *Resolver) CollectBatchOrFirstError(ctx context.Context, items []Item) ([]*collect.CollectResult, error) {
	results, errs := r.CollectBatch(ctx, items)
	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return results, nil
}

// CollectInBatches splits items into chunks of batchSize and runs each chunk
// through CollectBatchOrFirstError sequentially, bounding peak concurrency to
// batchSize regardless of the Resolver's own worker cap. batchSize <= 0
// defaults to the Resolver's maxWorkers.
func (r *Resolver) CollectInBatches(ctx context.Context, items []Item, batchSize int) ([]*collect.CollectResult, error) {
	if batchSize <= 0 {
		batchSize = r.maxWorkers
	}

	all := make([]*collect.CollectResult, 0, len(items))
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		chunkResults, err := r.CollectBatchOrFirstError(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch starting at item %d: %w", i, err)
		}
		all = append(all, chunkResults...)
	}
	return all, nil
}
