package urlwasher

import (
	"net/url"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the number of washed URLs a Washer remembers.
const DefaultCacheSize = 1024

// cache maps dirty URLs to washed URLs. Entries never expire; the least
// recently used one is evicted when the cache is full. The lock is only held
// for a single get or put.
type cache struct {
	mx  sync.Mutex
	lru *lru.Cache
}

func newCache(size int) *cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &cache{lru: lru.New(size)}
}

func (c *cache) get(dirty string) (*url.URL, bool) {
	c.mx.Lock()
	v, ok := c.lru.Get(dirty)
	c.mx.Unlock()
	if !ok {
		return nil, false
	}
	return copyURL(v.(*url.URL)), true
}

func (c *cache) put(dirty string, washed *url.URL) {
	c.mx.Lock()
	c.lru.Add(dirty, copyURL(washed))
	c.mx.Unlock()
}

func (c *cache) len() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.lru.Len()
}
