package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("empty cache returned a hit")
	}
	c.Set("k", "v")
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", 42)
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired before its TTL")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a", "missing")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("unrelated entry dropped")
	}

	c.InvalidateAll()
	if _, ok := c.Get("b"); ok {
		t.Error("InvalidateAll left an entry")
	}
}
