package cache

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected a=1, got %q %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", "3")

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 expired, got %d", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c to survive")
	}
}

func TestGetOrLoad(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)
	calls := 0
	load := func() (string, error) {
		calls++
		return "v", nil
	}
	for i := 0; i < 3; i++ {
		if v, err := c.GetOrLoad("k", load); err != nil || v != "v" {
			t.Fatalf("GetOrLoad = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("x", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Get("x"); ok {
		t.Fatal("errors must not be cached")
	}
}

func TestManagerCleanAll(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	clock.t = clock.t.Add(time.Hour)

	m := NewManager()
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
