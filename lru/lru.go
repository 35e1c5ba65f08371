// Package lru provides a bounded in-memory cache with least-recently-used
// eviction, used to memoize search and download results.
package lru

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Default bounds.
const (
	DefaultMaxEntries    = 50
	DefaultMaxEntryBytes = 10 << 20
)

var _ adamsdoc.Cache[string] = (*Cache[string])(nil)

// Option configures a Cache.
type Option func(*config)

type config struct {
	maxEntries     int
	maxEntryBytes  int64
	maxMemoryBytes int64
	now            func() time.Time
}

// WithMaxEntries sets the maximum number of entries.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		c.maxEntries = n
	}
}

// WithMaxEntryBytes sets the largest serialized value accepted by Set.
func WithMaxEntryBytes(n int64) Option {
	return func(c *config) {
		c.maxEntryBytes = n
	}
}

// WithMaxMemoryBytes sets a budget for the estimated size of all entries.
// Zero disables the budget.
func WithMaxMemoryBytes(n int64) Option {
	return func(c *config) {
		c.maxMemoryBytes = n
	}
}

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

type entry[V any] struct {
	key        string
	value      V
	size       int64
	created    time.Time
	lastAccess time.Time
	accesses   int
}

// Cache is a concurrency-safe LRU cache. Entry size is estimated as the
// length of the value's JSON encoding.
type Cache[V any] struct {
	cfg config

	mu     sync.Mutex
	ll     *list.List // front is most recently used
	items  map[string]*list.Element
	memory int64
	hits   int
	misses int
}

// New creates a Cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{
		maxEntries:    DefaultMaxEntries,
		maxEntryBytes: DefaultMaxEntryBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxEntries < 1 {
		cfg.maxEntries = 1
	}
	return &Cache[V]{
		cfg:   cfg,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

// Get returns the value for key and marks it as recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	e := el.Value.(*entry[V])
	e.lastAccess = c.cfg.now()
	e.accesses++
	c.ll.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Set stores v under key. Values whose encoding exceeds the per-entry limit,
// or cannot be encoded, are rejected and Set returns false.
func (c *Cache[V]) Set(key string, v V) bool {
	size, ok := c.sizeOf(v)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.now()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		c.memory += size - e.size
		e.value = v
		e.size = size
		e.created = now
		e.lastAccess = now
		e.accesses++
		c.ll.MoveToFront(el)
		c.shrink()
		return true
	}

	for c.ll.Len() >= c.cfg.maxEntries {
		c.evictOldest()
	}

	el := c.ll.PushFront(&entry[V]{
		key:        key,
		value:      v,
		size:       size,
		created:    now,
		lastAccess: now,
		accesses:   1,
	})
	c.items[key] = el
	c.memory += size
	c.shrink()
	return true
}

// Delete removes key from the cache and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.remove(el)
	return true
}

// Keys returns the keys from most to least recently used.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[V]).key)
	}
	return keys
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear removes all entries and resets hit statistics.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.memory = 0
	c.hits = 0
	c.misses = 0
}

// RemoveOlderThan removes entries created more than age ago and returns
// how many were removed.
func (c *Cache[V]) RemoveOlderThan(age time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.cfg.now().Add(-age)
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry[V]).created.Before(cutoff) {
			c.remove(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Stats reports cache usage.
func (c *Cache[V]) Stats() adamsdoc.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := adamsdoc.CacheStats{
		Entries:     c.ll.Len(),
		MaxEntries:  c.cfg.maxEntries,
		MemoryBytes: c.memory,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}

	maxAccesses := 0
	for el := c.ll.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		if stats.OldestEntry.IsZero() || e.created.Before(stats.OldestEntry) {
			stats.OldestEntry = e.created
		}
		if e.accesses > maxAccesses {
			maxAccesses = e.accesses
			stats.MostAccessed = e.key
		}
	}
	return stats
}

func (c *Cache[V]) sizeOf(v V) (int64, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, false
	}
	size := int64(len(data))
	if c.cfg.maxEntryBytes > 0 && size > c.cfg.maxEntryBytes {
		return size, false
	}
	return size, true
}

// shrink evicts least recently used entries while over the memory budget,
// always keeping the most recent entry. Caller must hold mu.
func (c *Cache[V]) shrink() {
	if c.cfg.maxMemoryBytes <= 0 {
		return
	}
	for c.memory > c.cfg.maxMemoryBytes && c.ll.Len() > 1 {
		c.evictOldest()
	}
}

func (c *Cache[V]) evictOldest() {
	if el := c.ll.Back(); el != nil {
		c.remove(el)
	}
}

func (c *Cache[V]) remove(el *list.Element) {
	e := c.ll.Remove(el).(*entry[V])
	delete(c.items, e.key)
	c.memory -= e.size
}
