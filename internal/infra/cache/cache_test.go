package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/rzyfront/vendix-core/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.NewInMemory[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.NewInMemory[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.NewInMemory[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.NewInMemory[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemorySettings_RoundTrip(t *testing.T) {
	c := cache.NewMemorySettings(5 * time.Minute)
	ctx := context.Background()

	c.Set(ctx, "settings:1:2", []byte(`{"name":"Tienda"}`))

	val, ok := c.Get(ctx, "settings:1:2")
	if !ok {
		t.Fatal("expected cached settings")
	}
	if string(val) != `{"name":"Tienda"}` {
		t.Errorf("unexpected payload: %s", val)
	}

	c.Delete(ctx, "settings:1:2")
	if _, ok := c.Get(ctx, "settings:1:2"); ok {
		t.Fatal("expected key to be deleted")
	}
}
