package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kanistone/stonecms/internal/model"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q", got)
	}

	// Mutating the returned slice must not affect the stored copy.
	got[0] = 'X'
	again, _ := c.Get(ctx, "k")
	if string(again) != "value" {
		t.Error("stored value was mutated through the returned slice")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestMemoryCacheClearAndClose(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "a"); err != ErrCacheMiss {
		t.Error("Clear did not remove entries")
	}

	_ = c.Close()
	if err := c.Set(ctx, "a", []byte("1"), 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed after Close, got %v", err)
	}
	// Double close must be safe.
	_ = c.Close()
}

func TestContentCacheRoundTrip(t *testing.T) {
	cc := NewContentCache(NewMemoryCache(time.Minute), time.Minute)
	defer func() { _ = cc.Close() }()
	ctx := context.Background()

	if _, ok := cc.Get(ctx, "home", "en"); ok {
		t.Error("expected miss on empty cache")
	}

	sections := []model.ContentSection{
		{ID: 1, PageName: "home", SectionKey: "hero_title", Language: "en", Content: "Premium Natural Stone Cladding"},
	}
	cc.Set(ctx, "home", "en", sections)

	got, ok := cc.Get(ctx, "home", "en")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 1 || got[0].Content != "Premium Natural Stone Cladding" {
		t.Errorf("unexpected cached collection: %+v", got)
	}

	// A different filter is a separate entry.
	if _, ok := cc.Get(ctx, "home", "fa"); ok {
		t.Error("fa filter should miss")
	}

	cc.Invalidate(ctx)
	if _, ok := cc.Get(ctx, "home", "en"); ok {
		t.Error("expected miss after Invalidate")
	}
}
