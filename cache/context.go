package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const cacheContextKey contextKey = "depcollect.cache.context"

// RepositoryCacheContext carries per-call cache control settings for
// reads against a repository. Within this module only MaxAge is acted on
// (by descriptor.HTTPReader); NoCache, DirectFetch, RefreshMemoryCache and
// SessionID are carried and cloned but no reader or transport consults them.
type RepositoryCacheContext struct {
	// MaxAge is the maximum age for cached entries (default: 30 minutes).
	MaxAge time.Duration

	// NoCache flags a request to bypass the disk cache tier.
	NoCache bool

	// DirectFetch flags a request to skip cache writes (read-only mode).
	DirectFetch bool

	// RefreshMemoryCache flags a request to reload the in-memory cache.
	RefreshMemoryCache bool

	// SessionID is a unique identifier for the call. It is not sent on
	// outbound requests.
	SessionID string
}

// NewRepositoryCacheContext creates a cache context with defaults.
func NewRepositoryCacheContext() *RepositoryCacheContext {
	return &RepositoryCacheContext{
		MaxAge:    30 * time.Minute,
		SessionID: uuid.New().String(),
	}
}

// Clone creates a copy of the cache context.
func (c *RepositoryCacheContext) Clone() *RepositoryCacheContext {
	return &RepositoryCacheContext{
		MaxAge:             c.MaxAge,
		NoCache:            c.NoCache,
		DirectFetch:        c.DirectFetch,
		RefreshMemoryCache: c.RefreshMemoryCache,
		SessionID:          c.SessionID,
	}
}

// WithCacheContext attaches cacheCtx to ctx so readers can look it up with
// FromContext without threading RepositoryCacheContext through every
// function signature.
func WithCacheContext(ctx context.Context, cacheCtx *RepositoryCacheContext) context.Context {
	if cacheCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, cacheContextKey, cacheCtx)
}

// FromContext retrieves the cache context from ctx, or nil if unset.
func FromContext(ctx context.Context) *RepositoryCacheContext {
	if ctx == nil {
		return nil
	}
	if cacheCtx, ok := ctx.Value(cacheContextKey).(*RepositoryCacheContext); ok {
		return cacheCtx
	}
	return nil
}
