package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"shipment-risk-service/internal/domain"
)

const (
	// DefaultTTL is how long a cached assessment stays valid.
	DefaultTTL = time.Hour

	// DefaultMaxEntries bounds the cache; least-recently-used entries
	// are evicted past this size.
	DefaultMaxEntries = 1024
)

type memoryEntry struct {
	key        uint64
	assessment domain.EnhancedAssessment
	insertedAt time.Time
}

// MemoryAssessmentCache is a mutex-guarded TTL cache with an LRU size
// bound. Expired entries are dropped lazily on read; there is no
// background sweeper and no explicit delete path.
//
// Safe for concurrent use. Duplicate concurrent computation for the
// same key is tolerated: a racing Put overwrites with an equivalent
// value.
type MemoryAssessmentCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[uint64]*list.Element
	order      *list.List

	// now is swapped in tests to step through expiry boundaries.
	now func() time.Time
}

func NewMemoryAssessmentCache(ttl time.Duration, maxEntries int) *MemoryAssessmentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &MemoryAssessmentCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[uint64]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get returns the cached assessment for key, treating entries at or
// past their TTL as absent.
func (c *MemoryAssessmentCache) Get(ctx context.Context, key uint64) (domain.EnhancedAssessment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return domain.EnhancedAssessment{}, false
	}

	entry := elem.Value.(*memoryEntry)
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return domain.EnhancedAssessment{}, false
	}

	c.order.MoveToFront(elem)
	return entry.assessment, true
}

// Put stores an assessment, refreshing the TTL window and evicting the
// least-recently-used entry when the cache is full.
func (c *MemoryAssessmentCache) Put(ctx context.Context, key uint64, assessment domain.EnhancedAssessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.assessment = assessment
		entry.insertedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&memoryEntry{
		key:        key,
		assessment: assessment,
		insertedAt: c.now(),
	})
	c.entries[key] = elem

	for len(c.entries) > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
	}
}

// Len reports the current entry count (expired entries included until
// they are read).
func (c *MemoryAssessmentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
