package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	// Touch "0" so "1" becomes the eviction candidate.
	c.Get("0")
	c.Set("3", 3)

	if _, ok := c.Get("1"); ok {
		t.Fatal("expected key 1 to be evicted")
	}
	for _, key := range []string{"0", "2", "3"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("key %s should survive eviction", key)
		}
	}
}

func TestExpiredEntriesNotServed(t *testing.T) {
	c := NewLRUCache[string](10, -time.Second)
	c.Set("a", "stale")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry served")
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d after expired read, want 0", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[string](10, -time.Second)
	c.Set("a", "x")
	c.Set("b", "y")

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d after cleanup, want 0", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRUCache[string](10, -time.Second)
	c.Set("a", "x")

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(time.Second)
	for c.Size() != 0 {
		select {
		case <-deadline:
			t.Fatal("manager never swept the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestUpdateExistingKey(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "one")
	c.Set("a", "two")

	if v, _ := c.Get("a"); v != "two" {
		t.Fatalf("Get(a) = %q, want updated value", v)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}
}
