package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestCache(t *testing.T, cfg Config) *Cache[string] {
	t.Helper()
	c := New[string](context.Background(), cfg, nil)
	t.Cleanup(c.Close)
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_ReplaceExisting(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Set("a", "one")
	c.Set("a", "two")

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "two", got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Bound(t *testing.T) {
	cfg := Config{MaxEntries: 10, AutoCleanup: false}
	c := newTestCache(t, cfg)

	// Every insertion past the limit must keep the live count within bounds.
	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "v")
		assert.LessOrEqual(t, c.Len(), cfg.MaxEntries)
	}
}

func TestCache_LRUPreference(t *testing.T) {
	cfg := Config{MaxEntries: 4, AutoCleanup: false}
	c := newTestCache(t, cfg)

	c.Set("old", "v")
	c.Set("b", "v")
	c.Set("c", "v")
	c.Set("recent", "v")

	// Touch everything except "old" so it holds the lowest access rank.
	c.Get("b")
	c.Get("c")
	c.Get("recent")

	// Cache is at capacity; this insert forces an eviction.
	c.Set("new", "v")

	_, ok := c.Get("old")
	assert.False(t, ok, "least-recently-used entry should have been evicted")
	_, ok = c.Get("recent")
	assert.True(t, ok, "recently accessed entry should survive eviction")
}

func TestCache_Expiry(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 10, AutoCleanup: false})

	c.Set("k", "v", 50*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "expired entry should miss on Get")
	assert.False(t, c.Has("k"), "expired entry should miss on Has")
	assert.Equal(t, 0, c.Len(), "lazy expiry should have removed the entry")
}

func TestCache_NoTTL(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 10, AutoCleanup: false})

	c.Set("k", "v", 0)
	time.Sleep(10 * time.Millisecond)
	assert.True(t, c.Has("k"), "entry without TTL should not expire")
}

func TestCache_HasDoesNotBumpRank(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 2, AutoCleanup: false})

	c.Set("a", "v")
	c.Set("b", "v")
	c.Has("a")     // must not refresh "a"
	c.Set("c", "v") // evicts the LRU entry

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.False(t, okA, "Has must not protect an entry from eviction")
	assert.True(t, okB)
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Set("a", "v")
	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"), "second delete should report nothing removed")
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Cleanup(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 10, AutoCleanup: false})

	c.Set("short", "v", 10*time.Millisecond)
	c.Set("long", "v", time.Hour)
	c.Set("forever", "v", 0)
	time.Sleep(20 * time.Millisecond)

	removed := c.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, c.Len())
}

func TestCache_ClearIsIdempotent(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Set("a", "v")
	c.Set("b", "v")
	c.Clear()

	assert.Equal(t, 0, c.Stats().Size)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_Stats(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 10, AutoCleanup: false})

	c.Set("first", "v")
	c.Set("second", "v")
	c.Get("first") // make "first" the most recently used

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
	assert.Equal(t, "second", stats.OldestKey)
	assert.Equal(t, "first", stats.NewestKey)
	assert.Greater(t, stats.ApproxMemoryBytes, int64(0))
}

func TestCache_BackgroundSweep(t *testing.T) {
	c := New[string](context.Background(), Config{
		MaxEntries:      10,
		CleanupInterval: 20 * time.Millisecond,
		AutoCleanup:     true,
	}, nil)
	defer c.Close()

	c.Set("k", "v", 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 10*time.Millisecond, "sweeper should remove the expired entry")
}

func TestCache_CloseStopsSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New[int](context.Background(), Config{
		MaxEntries:      10,
		CleanupInterval: 10 * time.Millisecond,
		AutoCleanup:     true,
	}, nil)
	c.Set("k", 1)
	c.Close()
	c.Close() // idempotent
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(t, Config{MaxEntries: 50, AutoCleanup: false})

	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-%d", w, i%20)
				c.Set(key, "v")
				c.Get(key)
				c.Has(key)
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}
	assert.LessOrEqual(t, c.Len(), 50)
}
