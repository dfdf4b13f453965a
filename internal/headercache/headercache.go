// Package headercache implements a bounded, thread-safe,
// content-addressed cache keyed by the exact base64url-encoded header
// bytes. Rather than hand-roll an LRU, it wraps
// github.com/jellydator/ttlcache/v3 configured with a fixed capacity and
// no expiry: headers are immutable once parsed, so there is nothing to
// go stale, only a bound on how many distinct headers to remember.
package headercache

import (
	"github.com/jellydator/ttlcache/v3"
)

// DefaultCapacity bounds how many distinct headers a cache remembers
// by default. Real deployments see a handful of distinct headers per
// issuer, so a small bound is enough.
const DefaultCapacity = 32

// Cache[V] is a bounded, thread-safe, content-addressed cache from the
// raw base64url header segment to a cached value of type V (in practice,
// a parsed header that has already passed the owning policy's
// critical-header checks, assembled by the jwt package).
type Cache[V any] struct {
	inner *ttlcache.Cache[string, V]
}

// New creates a Cache bounded to capacity entries. A capacity <= 0 uses
// DefaultCapacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := ttlcache.New[string, V](
		ttlcache.WithCapacity[string, V](uint64(capacity)),
		ttlcache.WithDisableTouchOnHit[string, V](),
	)
	return &Cache[V]{inner: c}
}

// Get returns the cached value for key and whether it was present.
func (c *Cache[V]) Get(key string) (V, bool) {
	item := c.inner.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value under key, evicting the least-recently-set entry if
// the cache is at capacity. Get does not refresh an entry's position.
func (c *Cache[V]) Set(key string, value V) {
	c.inner.Set(key, value, ttlcache.NoTTL)
}

// Len returns the number of entries currently cached.
func (c *Cache[V]) Len() int {
	return c.inner.Len()
}

// Reset drops every cached entry. Callers must invalidate the cache
// whenever the configuration its values were computed against changes.
func (c *Cache[V]) Reset() {
	c.inner.DeleteAll()
}
