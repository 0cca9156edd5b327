package app

import (
	"sync"
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	cache := NewTTLCache[int](time.Minute)

	cache.Set("a", 1)
	got, ok := cache.Get("a")
	if !ok || got != 1 {
		t.Errorf("expected (1, true), got (%d, %v)", got, ok)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestTTLCache_Overwrite(t *testing.T) {
	cache := NewTTLCache[string](time.Minute)

	cache.Set("k", "first")
	cache.Set("k", "second")

	got, ok := cache.Get("k")
	if !ok || got != "second" {
		t.Errorf("expected overwritten value, got (%q, %v)", got, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	cache := NewTTLCache[int](time.Hour)
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("a", 1)

	// Still valid just before expiry.
	current = current.Add(time.Hour)
	if _, ok := cache.Get("a"); !ok {
		t.Error("expected entry to still be valid at the TTL boundary")
	}

	// Past expiry: lazily evicted on Get.
	current = current.Add(time.Second)
	if _, ok := cache.Get("a"); ok {
		t.Error("expected expired entry to be a miss")
	}
	if cache.Len() != 0 {
		t.Errorf("expected eviction on expired Get, have %d entries", cache.Len())
	}
}

func TestTTLCache_Prune(t *testing.T) {
	cache := NewTTLCache[int](time.Minute)
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("old", 1)
	current = current.Add(30 * time.Second)
	cache.Set("fresh", 2)
	current = current.Add(45 * time.Second)

	pruned := cache.Prune()
	if pruned != 1 {
		t.Errorf("expected 1 pruned entry, got %d", pruned)
	}
	if _, ok := cache.Get("fresh"); !ok {
		t.Error("fresh entry should survive pruning")
	}
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	cache := NewTTLCache[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set("shared", n)
				cache.Get("shared")
			}
		}(i)
	}
	wg.Wait()

	if _, ok := cache.Get("shared"); !ok {
		t.Error("expected value after concurrent writes")
	}
}
