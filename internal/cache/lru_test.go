package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUCache(t *testing.T) {
	t.Run("get after set", func(t *testing.T) {
		c, _ := newTestCache(2, time.Minute)
		c.Set("a", "1")
		if v, ok := c.Get("a"); !ok || v != "1" {
			t.Errorf("Get(a) = %q, %v", v, ok)
		}
	})

	t.Run("expires after ttl", func(t *testing.T) {
		c, clk := newTestCache(2, time.Minute)
		c.Set("a", "1")
		clk.t = clk.t.Add(2 * time.Minute)
		if _, ok := c.Get("a"); ok {
			t.Error("expected expired entry to miss")
		}
		if c.Size() != 0 {
			t.Errorf("Size() = %d, want 0", c.Size())
		}
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		c, clk := newTestCache(2, 0)
		c.Set("a", "1")
		clk.t = clk.t.Add(24 * time.Hour)
		if _, ok := c.Get("a"); !ok {
			t.Error("expected entry to survive")
		}
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c, _ := newTestCache(2, time.Minute)
		c.Set("a", "1")
		c.Set("b", "2")
		c.Get("a")
		c.Set("c", "3")
		if _, ok := c.Get("b"); ok {
			t.Error("b should have been evicted")
		}
		if _, ok := c.Get("a"); !ok {
			t.Error("a should still be cached")
		}
	})

	t.Run("delete", func(t *testing.T) {
		c, _ := newTestCache(2, time.Minute)
		c.Set("a", "1")
		c.Delete("a")
		if _, ok := c.Get("a"); ok {
			t.Error("deleted key still present")
		}
	})
}

func TestManagerSweep(t *testing.T) {
	c, clk := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clk.t = clk.t.Add(30 * time.Second)
	c.Set("c", "3")
	clk.t = clk.t.Add(45 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}
