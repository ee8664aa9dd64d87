package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSetDelete(t *testing.T) {
	c := New[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Set("a", "one")
	if got, ok := c.Get("a"); !ok || got != "one" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("value survived Delete")
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expiry eviction, want 0", c.Len())
	}
}

func TestSizeBoundEvictsOldest(t *testing.T) {
	c := New[int](3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry missing")
	}
}

func TestRecentUseAvoidsEviction(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch so b becomes the eviction candidate
	c.Set("c", 3)
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived")
	}
}
