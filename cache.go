package spacetraveling

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/content"
)

// CatalogCache is an in-memory cache of the published first page and the
// full post catalog, with TTL. Preview requests bypass it.
type CatalogCache struct {
	mu        sync.RWMutex
	firstPage content.PostPage
	catalog   []content.PostSummary
	fetched   time.Time
	ttl       time.Duration
	src       ContentSource
}

// NewCatalogCache creates a CatalogCache backed by src.
func NewCatalogCache(src ContentSource, ttl time.Duration) *CatalogCache {
	return &CatalogCache{src: src, ttl: ttl}
}

func (c *CatalogCache) valid() bool {
	return c.catalog != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.firstPage = content.PostPage{}
	c.catalog = nil
	c.mu.Unlock()
}

func (c *CatalogCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	page, err := c.src.QueryPosts(ctx, "")
	if err != nil {
		return err
	}
	catalog, err := c.src.Catalog(ctx, "")
	if err != nil {
		return err
	}
	if catalog == nil {
		catalog = []content.PostSummary{}
	}
	c.firstPage = page
	c.catalog = catalog
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached page and catalog after ensuring the cache
// is fresh. It tries a read lock first; only takes a write lock if a reload
// is needed.
func (c *CatalogCache) ensureLoaded(ctx context.Context) (content.PostPage, []content.PostSummary, error) {
	c.mu.RLock()
	if c.valid() {
		page, catalog := c.firstPage, c.catalog
		c.mu.RUnlock()
		return page, catalog, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return content.PostPage{}, nil, err
	}
	return c.firstPage, c.catalog, nil
}

// FirstPage returns the first page of published posts.
func (c *CatalogCache) FirstPage(ctx context.Context) (content.PostPage, error) {
	page, _, err := c.ensureLoaded(ctx)
	return page, err
}

// Catalog returns every published post in list order.
func (c *CatalogCache) Catalog(ctx context.Context) ([]content.PostSummary, error) {
	_, catalog, err := c.ensureLoaded(ctx)
	return catalog, err
}
