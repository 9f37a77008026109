// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedEvent struct {
	ID    string
	Title string
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[cachedEvent](mem, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*cachedEvent, error) {
		calls++
		return &cachedEvent{ID: "e1", Title: "Beach cleanup"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := tc.GetOrSet(ctx, "event:e1", load)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got.Title != "Beach cleanup" {
			t.Errorf("Title = %q", got.Title)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	_ = tc.Delete(ctx, "event:e1")
	if _, ok := tc.Get(ctx, "event:e1"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[cachedEvent](mem, time.Minute)

	boom := errors.New("boom")
	_, err := tc.GetOrSet(context.Background(), "k", func() (*cachedEvent, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok := tc.Get(context.Background(), "k"); ok {
		t.Error("failed loads must not be cached")
	}
}
