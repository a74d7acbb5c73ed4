package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a size-bounded cache whose entries also expire after a TTL.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	sliding bool
	now     func() time.Time
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// LRUOption configures an LRUCache.
type LRUOption func(*lruOptions)

type lruOptions struct {
	sliding bool
	now     func() time.Time
}

// WithSlidingExpiration renews an entry's TTL every time it is read.
func WithSlidingExpiration() LRUOption {
	return func(o *lruOptions) { o.sliding = true }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LRUOption {
	return func(o *lruOptions) { o.now = now }
}

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T any](maxSize int, ttl time.Duration, opts ...LRUOption) *LRUCache[T] {
	o := lruOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		sliding: o.sliding,
		now:     o.now,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves a value from the cache
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	now := c.now()
	if now.After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}
	if c.sliding {
		item.expiresAt = now.Add(c.ttl)
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

// Set stores a value in the cache, evicting the least recently used entry
// when full.
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

var _ Cache[int] = (*LRUCache[int])(nil)
