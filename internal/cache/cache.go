package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Cache configuration constants
const (
	DefaultMaxEntries      = 500
	DefaultTTL             = 1 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute

	// evictionFraction is the share of entries removed when the cache is full
	evictionFraction = 0.10

	// Per-entry bookkeeping overhead used for memory estimation
	entryOverheadBytes = 112

	// Fallback estimate when a value cannot be serialized
	fallbackValueBytes = 256
)

// Config defines cache configuration options
type Config struct {
	MaxEntries      int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	AutoCleanup     bool
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxEntries:      DefaultMaxEntries,
		DefaultTTL:      DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
		AutoCleanup:     true,
	}
}

type entry[T any] struct {
	data      T
	storedAt  time.Time
	expiresAt time.Time // zero means no expiry
	access    uint64
}

func (e *entry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && e.expiresAt.Before(now)
}

// Stats reports the observable state of a cache instance. Memory is an
// estimate (key length + serialized value length + fixed overhead), good
// enough for reporting but not for enforcement.
type Stats struct {
	Size              int    `json:"size"`
	MaxSize           int    `json:"maxSize"`
	OldestKey         string `json:"oldestKey,omitempty"`
	NewestKey         string `json:"newestKey,omitempty"`
	ApproxMemoryBytes int64  `json:"approxMemoryBytes"`
}

// Cache is a bounded key/value store with per-entry TTL and LRU eviction.
// All operations are safe for concurrent use; the background sweeper takes
// the same mutex as foreground operations.
type Cache[T any] struct {
	mu        sync.Mutex
	entries   map[string]*entry[T]
	accessSeq uint64

	cfg    Config
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a cache and, if configured, starts its background sweeper.
// Close must be called to stop the sweeper.
func New[T any](parent context.Context, cfg Config, logger *log.Logger) *Cache[T] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	c := &Cache[T]{
		entries: make(map[string]*entry[T]),
		cfg:     cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if cfg.AutoCleanup {
		c.wg.Add(1)
		go c.run()
	}
	return c
}

// Set inserts or replaces the value for key. An optional ttl overrides the
// configured default; a non-positive ttl stores the entry without expiry.
// When the cache is at capacity the least-recently-used 10% of entries
// (at least one) are evicted before the new entry is admitted.
func (c *Cache[T]) Set(key string, value T, ttl ...time.Duration) {
	effective := c.cfg.DefaultTTL
	if len(ttl) > 0 {
		effective = ttl[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
		c.evictLocked()
	}

	now := time.Now()
	e := &entry[T]{
		data:     value,
		storedAt: now,
		access:   c.nextAccessLocked(),
	}
	if effective > 0 {
		e.expiresAt = now.Add(effective)
	}
	c.entries[key] = e
}

// Get returns the live value for key. Expired entries are removed on
// access and reported as a miss; a live hit refreshes the key's LRU rank.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(time.Now()) {
		delete(c.entries, key)
		return zero, false
	}
	e.access = c.nextAccessLocked()
	return e.data, true
}

// Has reports whether key holds a live entry without refreshing its LRU
// rank. Expired entries are removed, same as Get.
func (c *Cache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if e.expired(time.Now()) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Delete removes key unconditionally and reports whether an entry was
// removed.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	return ok
}

// Cleanup sweeps all expired entries and returns how many were removed.
// It runs automatically on the configured interval and may also be
// invoked on demand.
func (c *Cache[T]) Cleanup() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries and resets the access counter.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry[T])
	c.accessSeq = 0
}

// Len returns the current entry count, expired entries included until the
// next sweep.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache state. Serialization failures
// during memory estimation are substituted with a fixed estimate, never
// propagated.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:    len(c.entries),
		MaxSize: c.cfg.MaxEntries,
	}

	var oldest, newest uint64
	first := true
	for key, e := range c.entries {
		if first || e.access < oldest {
			oldest = e.access
			stats.OldestKey = key
		}
		if first || e.access > newest {
			newest = e.access
			stats.NewestKey = key
		}
		first = false

		stats.ApproxMemoryBytes += int64(len(key)) + entryOverheadBytes + c.estimateValue(e.data)
	}
	return stats
}

// Close stops the background sweeper and waits for it to exit. The cache
// remains usable afterward; only automatic cleanup stops.
func (c *Cache[T]) Close() {
	c.once.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
}

func (c *Cache[T]) estimateValue(v T) int64 {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Debug("cache memory estimation failed, using fixed estimate", "error", err)
		return fallbackValueBytes
	}
	return int64(len(data))
}

func (c *Cache[T]) nextAccessLocked() uint64 {
	c.accessSeq++
	return c.accessSeq
}

// evictLocked removes the least-recently-used 10% of entries (minimum 1).
// Ties in access rank fall to map iteration order; callers must not rely
// on a specific tie winner.
func (c *Cache[T]) evictLocked() {
	count := int(float64(c.cfg.MaxEntries) * evictionFraction)
	if count < 1 {
		count = 1
	}

	for i := 0; i < count && len(c.entries) > 0; i++ {
		var victim string
		var victimAccess uint64
		first := true
		for key, e := range c.entries {
			if first || e.access < victimAccess {
				victim = key
				victimAccess = e.access
				first = false
			}
		}
		delete(c.entries, victim)
	}
}

func (c *Cache[T]) run() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Cleanup(); removed > 0 {
				c.logger.Debug("cache sweep removed expired entries", "count", removed)
			}
		}
	}
}
