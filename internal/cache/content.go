package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanistone/stonecms/internal/model"
)

// ContentCache caches serialized content-section collections per
// (page, language) filter. Every successful content write invalidates the
// whole namespace: the collection is small and a full refetch is cheaper
// than tracking which filters a row belongs to.
type ContentCache struct {
	backend Cache
	ttl     time.Duration
}

// NewContentCache wraps a cache backend for content collections.
func NewContentCache(backend Cache, ttl time.Duration) *ContentCache {
	return &ContentCache{backend: backend, ttl: ttl}
}

// filterKey builds the backend key for one listing filter.
func filterKey(page, language string) string {
	return fmt.Sprintf("content:%s:%s", page, language)
}

// Get returns the cached collection for a filter, or (nil, false) on miss.
func (c *ContentCache) Get(ctx context.Context, page, language string) ([]model.ContentSection, bool) {
	raw, err := c.backend.Get(ctx, filterKey(page, language))
	if err != nil {
		if err != ErrCacheMiss {
			slog.Warn("content cache read failed", "error", err)
		}
		return nil, false
	}

	var sections []model.ContentSection
	if err := json.Unmarshal(raw, &sections); err != nil {
		slog.Warn("content cache entry corrupt, dropping", "error", err)
		_ = c.backend.Delete(ctx, filterKey(page, language))
		return nil, false
	}
	return sections, true
}

// Set stores the collection for a filter. Failures are logged, not fatal:
// the cache is never authoritative.
func (c *ContentCache) Set(ctx context.Context, page, language string, sections []model.ContentSection) {
	raw, err := json.Marshal(sections)
	if err != nil {
		slog.Warn("content cache serialize failed", "error", err)
		return
	}
	if err := c.backend.Set(ctx, filterKey(page, language), raw, c.ttl); err != nil {
		slog.Warn("content cache write failed", "error", err)
	}
}

// Invalidate drops every cached collection. Called after each successful
// content create or update.
func (c *ContentCache) Invalidate(ctx context.Context) {
	if err := c.backend.Clear(ctx); err != nil {
		slog.Warn("content cache invalidation failed", "error", err)
	}
}

// Close releases the backend.
func (c *ContentCache) Close() error {
	return c.backend.Close()
}
