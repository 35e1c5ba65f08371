package mock

import "github.com/fwojciec/adamsdoc"

var _ adamsdoc.Cache[string] = (*Cache[string])(nil)

// Cache is a mock implementation of adamsdoc.Cache.
type Cache[V any] struct {
	GetFn   func(key string) (V, bool)
	SetFn   func(key string, v V) bool
	StatsFn func() adamsdoc.CacheStats
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.GetFn(key)
}

func (c *Cache[V]) Set(key string, v V) bool {
	return c.SetFn(key, v)
}

func (c *Cache[V]) Stats() adamsdoc.CacheStats {
	return c.StatsFn()
}
