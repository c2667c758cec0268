// Package cache memoizes generator results for seeded requests.
package cache

import (
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
)

// Key identifies one generator call. Every input of the generator is part of
// the key, so two different calls never share an entry.
type Key struct {
	Kind       string
	Seed       int64
	Year       int
	Policy     string
	Hemisphere string
	Rows       int
	Cols       int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:seed=%d:year=%d:policy=%s:hemi=%s:%dx%d",
		k.Kind, k.Seed, k.Year, k.Policy, k.Hemisphere, k.Rows, k.Cols)
}

// Stats is a snapshot of cache activity
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// ResultCache is a thread-safe LRU cache owned by its caller
type ResultCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   uint64
	misses uint64
}

// New creates a cache holding at most maxEntries results.
// A non-positive size disables caching.
func New(maxEntries int) *ResultCache {
	c := &ResultCache{}
	if maxEntries > 0 {
		c.lru = lru.New(maxEntries)
	}
	return c
}

// Get returns the cached value for key
func (c *ResultCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		c.misses++
		return nil, false
	}

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return v, true
}

// Add stores value under key, evicting the least recently used entry when full
func (c *ResultCache) Add(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Clear drops every entry and returns how many were removed
func (c *ResultCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return 0
	}
	n := c.lru.Len()
	c.lru.Clear()
	return n
}

// Stats returns current entry count and hit/miss totals
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits, Misses: c.misses}
	if c.lru != nil {
		s.Entries = c.lru.Len()
	}
	return s
}
