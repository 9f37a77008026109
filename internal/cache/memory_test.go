// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "event:1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "event:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	// Returned slices are copies
	val[0] = 'X'
	again, _ := cache.Get(ctx, "event:1")
	if string(again) != "value1" {
		t.Errorf("cached value mutated through returned slice: %s", again)
	}

	if err := cache.Delete(ctx, "event:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "event:1"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: 20 * time.Millisecond})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 0)
	time.Sleep(40 * time.Millisecond)

	if _, err := cache.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestMemoryCache_EvictsSoonestExpiring(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxEntries: 2})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "event:long", []byte("1"), time.Hour)
	_ = cache.Set(ctx, "event:short", []byte("2"), time.Minute)
	_ = cache.Set(ctx, "event:new", []byte("3"), 0)

	if n := cache.Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
	if _, err := cache.Get(ctx, "event:short"); err != ErrCacheMiss {
		t.Errorf("soonest-expiring entry survived: %v", err)
	}
	for _, k := range []string{"event:long", "event:new"} {
		if _, err := cache.Get(ctx, k); err != nil {
			t.Errorf("Get(%s): %v", k, err)
		}
	}
	if ev := cache.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}

	// Overwriting a stored key never evicts.
	_ = cache.Set(ctx, "event:new", []byte("4"), 0)
	if ev := cache.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions after overwrite = %d, want 1", ev)
	}
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	if err := cache.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after Delete = %d", n)
	}

	_ = cache.Close()
	_ = cache.Close() // idempotent
	if err := cache.Set(ctx, "a", []byte("1"), 0); err != ErrCacheClosed {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
	if _, err := cache.Get(ctx, "a"); err != ErrCacheClosed {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = cache.Set(ctx, "shared", []byte("x"), 0)
				_, _ = cache.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()
}
