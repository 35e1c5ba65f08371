package slog

import (
	"log/slog"

	"github.com/fwojciec/adamsdoc"
)

// Ensure LoggingCache implements adamsdoc.Cache.
var _ adamsdoc.Cache[string] = (*LoggingCache[string])(nil)

// LoggingCache wraps a Cache, logging lookups at debug level and rejected
// values at warn level.
type LoggingCache[V any] struct {
	next   adamsdoc.Cache[V]
	name   string
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache. name identifies the cache in logs.
func NewLoggingCache[V any](next adamsdoc.Cache[V], name string, logger *slog.Logger) *LoggingCache[V] {
	return &LoggingCache[V]{next: next, name: name, logger: logger}
}

// Get delegates to the wrapped cache and logs hit or miss.
func (c *LoggingCache[V]) Get(key string) (V, bool) {
	v, ok := c.next.Get(key)
	c.logger.Debug("cache get", "cache", c.name, "key", key, "hit", ok)
	return v, ok
}

// Set delegates to the wrapped cache and logs rejected values.
func (c *LoggingCache[V]) Set(key string, v V) bool {
	ok := c.next.Set(key, v)
	if !ok {
		c.logger.Warn("cache rejected value", "cache", c.name, "key", key)
	}
	return ok
}

// Stats delegates to the wrapped cache.
func (c *LoggingCache[V]) Stats() adamsdoc.CacheStats {
	return c.next.Stats()
}
