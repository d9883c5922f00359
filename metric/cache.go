package metric

import (
	"container/list"
	"hash/fnv"
	"sync"
)

const (
	// DefaultCapacity is the default number of distinct parameter values
	// tracked per (resource, parameter index) pair.
	DefaultCapacity = 4000
	// MaxCapacity caps the configurable capacity of a single value cache.
	MaxCapacity = 20000

	shardCount = 16
)

// EvictFunc is called with the evicted key when a full cache admits a new
// value. It runs while the owning shard is locked and must not re-enter the
// cache.
type EvictFunc func(key string)

// ValueCache is a bounded cache mapping parameter values to their rolling
// counters. It is sharded so concurrent access to different values rarely
// contends; within a shard, the least recently used entry is evicted when a
// new value arrives at capacity.
type ValueCache struct {
	shards [shardCount]cacheShard
}

type cacheShard struct {
	mu      sync.Mutex
	cap     int
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	onEvict EvictFunc
}

type cacheEntry struct {
	key     string
	counter *RollingCounter
}

// NewValueCache creates a cache holding at most capacity counters in total.
// onEvict may be nil.
func NewValueCache(capacity int, onEvict EvictFunc) *ValueCache {
	if capacity <= 0 || capacity > MaxCapacity {
		capacity = DefaultCapacity
	}
	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}

	c := &ValueCache{}
	for i := range c.shards {
		s := &c.shards[i]
		s.cap = perShard
		s.entries = make(map[string]*list.Element)
		s.order = list.New()
		s.onEvict = onEvict
	}
	return c
}

// GetOrCreate returns the counter for key, creating one via create if the
// key is unseen. At most one counter ever exists per key: racing callers all
// observe whichever creation commits first.
func (c *ValueCache) GetOrCreate(key string, create func() *RollingCounter) *RollingCounter {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*cacheEntry).counter
	}

	if s.order.Len() >= s.cap {
		oldest := s.order.Back()
		if oldest != nil {
			evicted := s.order.Remove(oldest).(*cacheEntry)
			delete(s.entries, evicted.key)
			if s.onEvict != nil {
				s.onEvict(evicted.key)
			}
		}
	}

	entry := &cacheEntry{key: key, counter: create()}
	s.entries[key] = s.order.PushFront(entry)
	return entry.counter
}

// Get returns the counter for key without creating one.
func (c *ValueCache) Get(key string) (*RollingCounter, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*cacheEntry).counter, true
}

// Len returns the number of tracked values across all shards.
func (c *ValueCache) Len() int {
	var n int
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += s.order.Len()
		s.mu.Unlock()
	}
	return n
}

// Clear drops every tracked value.
func (c *ValueCache) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[string]*list.Element)
		s.order.Init()
		s.mu.Unlock()
	}
}

func (c *ValueCache) shard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &c.shards[h.Sum32()%shardCount]
}
