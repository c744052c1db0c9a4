package playerjs

import (
	"github.com/patrickmn/go-cache"
)

// Cache keeps analyzed player scripts keyed by player URL.
type Cache interface {
	Get(key string) (*Bundle, bool)
	Set(key string, bundle *Bundle)
}

type memoryCache struct {
	items *cache.Cache
}

// NewMemoryCache returns a process-lifetime cache; entries never expire.
func NewMemoryCache() Cache {
	return &memoryCache{
		items: cache.New(cache.NoExpiration, 0),
	}
}

func (c *memoryCache) Get(key string) (*Bundle, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.(*Bundle)
	return b, ok
}

func (c *memoryCache) Set(key string, bundle *Bundle) {
	c.items.Set(key, bundle, cache.DefaultExpiration)
}
