// Package domcache caches page text snapshots keyed by URL with a TTL, so
// repeated semantic reads within one run don't hammer the page. A cache is
// constructed per run by the orchestrating caller; there is no package state.
package domcache

import (
	"context"
	"sync"
	"time"

	"github.com/devicelab-dev/webpilot/pkg/browser"
)

// DefaultTTL is used when a cache is built with a non-positive TTL.
const DefaultTTL = 5 * time.Second

type entry struct {
	text    string
	fetched time.Time
}

// Cache holds recent page text snapshots.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// PageText returns the page's visible body text, from cache when the entry
// for the current URL is still fresh.
func (c *Cache) PageText(ctx context.Context, page browser.Page) (string, error) {
	key := page.URL()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetched) < c.ttl {
		c.mu.Unlock()
		return e.text, nil
	}
	c.mu.Unlock()

	text, err := page.InnerText(ctx, "body")
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = entry{text: text, fetched: c.now()}
	c.mu.Unlock()
	return text, nil
}

// Invalidate drops the entry for url, if any. Called after actions that
// mutate the page.
func (c *Cache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry{}
}
