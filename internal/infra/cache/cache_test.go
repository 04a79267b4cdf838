package cache_test

import (
	"testing"
	"time"

	"github.com/missionmarket/mission-market-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("feed", "missions")
	val, ok := c.Get("feed")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "missions" {
		t.Errorf("expected 'missions', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("feed", "missions")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("feed")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("feed", "missions")
	c.Delete("feed")

	_, ok := c.Get("feed")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_Flush(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("feed:available", "a")
	c.Set("feed:accepted", "b")
	c.Flush()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after flush, got %d entries", c.Len())
	}
}
