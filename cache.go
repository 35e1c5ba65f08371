package adamsdoc

import "time"

// Cache is a bounded in-memory key/value store used to memoize responses.
type Cache[V any] interface {
	// Get returns the value stored under key.
	Get(key string) (V, bool)

	// Set stores v under key. It returns false if the value was rejected,
	// for example because it exceeds the per-entry size limit.
	Set(key string, v V) bool

	// Stats reports usage of the cache.
	Stats() CacheStats
}

// CacheStats describes the state of a Cache.
type CacheStats struct {
	Entries      int       `json:"entries"`
	MaxEntries   int       `json:"maxEntries"`
	HitRate      float64   `json:"hitRate"`
	MemoryBytes  int64     `json:"memoryBytes"`
	OldestEntry  time.Time `json:"oldestEntry"`
	MostAccessed string    `json:"mostAccessed,omitempty"`
}
