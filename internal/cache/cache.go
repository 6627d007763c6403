package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache is a size-bounded in-memory key-value store with per-entry TTL and
// least-recently-used eviction. It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	ll         *list.List
	items      map[string]*list.Element
	size       int64
	maxSize    int64
	defaultTTL time.Duration
	now        func() time.Time
}

type entry struct {
	key     string
	value   string
	size    int64
	expires time.Time
}

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Entries   int
	SizeBytes int64
	MaxBytes  int64
}

// New creates a cache bounded to maxSizeMB megabytes with the given default
// TTL for entries that do not specify one.
func New(maxSizeMB int, defaultTTL time.Duration) *Cache {
	return &Cache{
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value for key if present and unexpired, marking it most
// recently used.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	ent := el.Value.(*entry)
	if c.now().After(ent.expires) {
		c.removeElement(el)
		return "", false
	}
	c.ll.MoveToFront(el)
	return ent.value, true
}

// Set stores value under key. A non-positive ttl selects the default. It
// returns false only when the value alone exceeds the whole cache budget.
func (c *Cache) Set(key, value string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	size := int64(len(key) + len(value))
	if size > c.maxSize {
		log.Warn().Str("key", key).Int64("size", size).Msg("entry too large for cache")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	for c.size+size > c.maxSize && c.ll.Len() > 0 {
		c.removeElement(c.ll.Back())
	}

	ent := &entry{key: key, value: value, size: size, expires: c.now().Add(ttl)}
	c.items[key] = c.ll.PushFront(ent)
	c.size += size
	return true
}

// Delete removes key if present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.size = 0
}

// Stats reports current usage after dropping expired entries.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expires) {
			c.removeElement(el)
		}
		el = prev
	}
	return Stats{Entries: c.ll.Len(), SizeBytes: c.size, MaxBytes: c.maxSize}
}

func (c *Cache) removeElement(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
	c.size -= ent.size
}
