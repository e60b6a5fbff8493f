package adapter

import (
	"context"
	"log"
	"strings"
	"time"
)

// ResponseCache persists raw network bodies
type ResponseCache interface {
	GetInteractions(ctx context.Context, queryKey string, species int, maxAge time.Duration) ([]byte, bool, error)
	PutInteractions(ctx context.Context, queryKey string, species int, body []byte) error
}

// CachedSource serves network queries from a persistent cache before
// falling through to the wrapped source. Only usable bodies are stored.
type CachedSource struct {
	inner    InteractionSource
	cache    ResponseCache
	species  int
	ttl      time.Duration
	observer Observer
}

// NewCachedSource wraps a source with a response cache
func NewCachedSource(inner InteractionSource, cache ResponseCache, species int, ttl time.Duration, observer Observer) *CachedSource {
	if observer == nil {
		observer = nopObserver{}
	}
	return &CachedSource{
		inner:    inner,
		cache:    cache,
		species:  species,
		ttl:      ttl,
		observer: observer,
	}
}

// Name implements InteractionSource
func (c *CachedSource) Name() string {
	return c.inner.Name() + "+cache"
}

// QueryKey is the cache key for a batch of identifiers
func QueryKey(identifiers []string) string {
	return strings.Join(identifiers, "\r")
}

// Network implements InteractionSource
func (c *CachedSource) Network(ctx context.Context, identifiers []string) ([]byte, error) {
	key := QueryKey(identifiers)
	body, ok, err := c.cache.GetInteractions(ctx, key, c.species, c.ttl)
	if err != nil {
		log.Printf("cache: lookup %v failed: %v", identifiers, err)
	}
	if ok {
		c.observer.ObserveCache(true)
		return body, nil
	}
	c.observer.ObserveCache(false)

	body, err = c.inner.Network(ctx, identifiers)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) > 0 && !IsErrorBody(body) {
		if err := c.cache.PutInteractions(ctx, key, c.species, body); err != nil {
			log.Printf("cache: store %v failed: %v", identifiers, err)
		}
	}
	return body, nil
}

// Link implements InteractionSource. Links are not cached.
func (c *CachedSource) Link(ctx context.Context, identifiers []string) (string, error) {
	return c.inner.Link(ctx, identifiers)
}
