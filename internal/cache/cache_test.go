// v1
// internal/cache/cache_test.go
package cache

import (
	"testing"
	"time"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit()  { o.hits++ }
func (o *countingObserver) CacheMiss() { o.misses++ }

func TestCacheHitAndExpiry(t *testing.T) {
	obs := &countingObserver{}
	c := New[string](20*time.Millisecond, obs)

	if _, ok := c.Get("k"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit with v, got %q ok=%v", got, ok)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expiry")
	}

	if obs.hits != 1 || obs.misses != 2 {
		t.Fatalf("unexpected observer counts: hits=%d misses=%d", obs.hits, obs.misses)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New[int](time.Minute, nil)
	c.Set("k", 7)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after invalidate")
	}
}
