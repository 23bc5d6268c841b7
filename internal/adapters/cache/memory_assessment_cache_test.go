package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"shipment-risk-service/internal/domain"
)

func assessment(score int) domain.EnhancedAssessment {
	return domain.EnhancedAssessment{
		Score:           score,
		ConfidenceLevel: 85,
	}
}

func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemoryAssessmentCache(time.Hour, 8)
	ctx := context.Background()

	if _, ok := c.Get(ctx, 1); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Put(ctx, 1, assessment(29))

	got, ok := c.Get(ctx, 1)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if got.Score != 29 {
		t.Fatalf("score = %d, want 29", got.Score)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryAssessmentCache(time.Hour, 8)

	base := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	current := base
	c.now = func() time.Time { return current }

	ctx := context.Background()
	c.Put(ctx, 1, assessment(29))

	current = base.Add(time.Hour - time.Second)
	if _, ok := c.Get(ctx, 1); !ok {
		t.Fatal("entry expired before its TTL")
	}

	current = base.Add(time.Hour)
	if _, ok := c.Get(ctx, 1); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped, len = %d", c.Len())
	}

	// A fresh Put restarts the window.
	c.Put(ctx, 1, assessment(31))
	current = base.Add(90 * time.Minute)
	if got, ok := c.Get(ctx, 1); !ok || got.Score != 31 {
		t.Fatalf("re-put entry missing: ok=%t got=%+v", ok, got)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c := NewMemoryAssessmentCache(time.Hour, 3)
	ctx := context.Background()

	c.Put(ctx, 1, assessment(1))
	c.Put(ctx, 2, assessment(2))
	c.Put(ctx, 3, assessment(3))

	// Touch key 1 so key 2 becomes the eviction candidate.
	if _, ok := c.Get(ctx, 1); !ok {
		t.Fatal("key 1 missing")
	}

	c.Put(ctx, 4, assessment(4))

	if _, ok := c.Get(ctx, 2); ok {
		t.Fatal("least-recently-used key 2 not evicted")
	}
	for _, key := range []uint64{1, 3, 4} {
		if _, ok := c.Get(ctx, key); !ok {
			t.Fatalf("key %d evicted unexpectedly", key)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryAssessmentCache(time.Hour, 3)
	ctx := context.Background()

	c.Put(ctx, 1, assessment(10))
	c.Put(ctx, 1, assessment(20))

	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1 after overwrite", c.Len())
	}
	if got, _ := c.Get(ctx, 1); got.Score != 20 {
		t.Fatalf("score = %d, want 20", got.Score)
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryAssessmentCache(time.Hour, 64)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := uint64(j % 32)
				c.Put(ctx, key, assessment(worker))
				c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 32 {
		t.Fatalf("len = %d, want at most 32 distinct keys", c.Len())
	}
	for key := uint64(0); key < 32; key++ {
		if _, ok := c.Get(ctx, key); !ok {
			t.Fatalf("key %d missing after concurrent writes", key)
		}
	}
}

func TestMemoryCacheDefaultBounds(t *testing.T) {
	c := NewMemoryAssessmentCache(0, 0)
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want default %v", c.ttl, DefaultTTL)
	}
	if c.maxEntries != DefaultMaxEntries {
		t.Fatalf("maxEntries = %d, want default %d", c.maxEntries, DefaultMaxEntries)
	}
}
