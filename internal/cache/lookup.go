// internal/cache/lookup.go
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// nullSentinel marks a confirmed-absent result so repeated not-found
// lookups stay off the store for the TTL window.
const nullSentinel = "NULL"

// Lookup is a bounded TTL+LRU cache for hot read-path lookups. It caches
// negative results explicitly and can be disabled entirely, in which case
// both reads and writes pass through.
type Lookup struct {
	entries *lru.LRU[string, interface{}]
	enabled bool
}

// NewLookup creates a lookup cache holding at most maxEntries entries,
// each living for ttl. A ttl of zero (or below) means entries never
// expire and only leave by capacity eviction. When enabled is false the
// cache is a no-op.
func NewLookup(maxEntries int, ttl time.Duration, enabled bool) *Lookup {
	if ttl < 0 {
		ttl = 0
	}
	return &Lookup{
		entries: lru.NewLRU[string, interface{}](maxEntries, nil, ttl),
		enabled: enabled,
	}
}

// Get returns the cached value for key. ok reports whether the key was
// present and live. A cached negative entry yields ok=true with a nil
// value, so callers can distinguish "confirmed absent" from "not cached".
func (c *Lookup) Get(key string) (value interface{}, ok bool) {
	if !c.enabled {
		return nil, false
	}
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if entry == nullSentinel {
		return nil, true
	}
	return entry, true
}

// Set stores value under key. A nil value records a negative result.
func (c *Lookup) Set(key string, value interface{}) {
	if !c.enabled {
		return
	}
	if value == nil {
		c.entries.Add(key, nullSentinel)
		return
	}
	c.entries.Add(key, value)
}

// Len returns the number of live entries
func (c *Lookup) Len() int {
	if !c.enabled {
		return 0
	}
	return c.entries.Len()
}
