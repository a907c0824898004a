package cache

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultCapacity bounds the entry count when Config.Capacity is unset.
const DefaultCapacity = 1024

// entryOverhead is the fixed per-entry bookkeeping cost, in bytes, added
// to the serialized-size estimate of each stored value.
const entryOverhead = 96

// Config configures a Cache.
type Config struct {
	// Capacity is the maximum number of stored entries. Values <= 0 fall
	// back to DefaultCapacity.
	Capacity int
	// Logger receives debug-level eviction and invalidation events.
	// Defaults to a discarding logger when nil.
	Logger *slog.Logger
}

// Cache is a process-local query result cache with TTL expiry and
// LRU eviction. All methods are safe for concurrent use; compute
// callbacks passed to Cached run outside the cache lock.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int

	tick uint64 // access recency clock, advanced under mu
	seq  uint64 // insertion order, advanced under mu
	gen  uint64 // bumped on Clear; guards against resurrecting entries
	mem  int64  // estimated bytes across all stored entries

	hits      uint64
	misses    uint64
	evictions uint64
	total     uint64

	logger *slog.Logger
	now    func() time.Time // overridable in tests
}

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
	hitCount  uint64
	tags      []string
	size      int64
	lastTick  uint64
	seq       uint64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// New constructs a Cache from the provided config.
func New(cfg Config) *Cache {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Query identifies one cacheable computation.
type Query struct {
	// Text is the query text; it is normalized before fingerprinting, so
	// formatting and comments do not affect the key.
	Text string
	// Params are the ordered bind parameters. Order matters: the same
	// values in a different order produce a different key.
	Params []any
	// TTL is how long a stored result stays live. Zero or negative
	// disables caching for the call: compute always runs and the call is
	// counted as a miss.
	TTL time.Duration
	// Tags group the entry for bulk invalidation via InvalidateTag.
	Tags []string
}

// Cached returns the cached result for q, or invokes compute on a miss
// and stores the result under q's fingerprint.
//
// A compute failure propagates to the caller and nothing is stored; the
// call still counts as a miss. Two calls racing on the same key before
// either completes may both invoke compute (no single-flight
// de-duplication); the last writer wins.
func Cached[T any](ctx context.Context, c *Cache, q Query, compute func(context.Context) (T, error)) (T, error) {
	if q.TTL <= 0 {
		c.recordBypass()
		return compute(ctx)
	}

	key := Key(q.Text, q.Params)
	v, gen, ok := c.lookup(key)
	if ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		// Same fingerprint stored with a different type; recompute and
		// overwrite.
	}

	result, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(key, result, q.TTL, q.Tags, gen)
	return result, nil
}

// lookup returns the live value for key, counting the call as a hit or
// a miss. The returned generation lets store detect an intervening
// Clear.
func (c *Cache) lookup(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	e, ok := c.entries[key]
	if ok && !e.expired(c.now()) {
		c.hits++
		e.hitCount++
		c.tick++
		e.lastTick = c.tick
		return e.value, c.gen, true
	}
	if ok {
		// Lazy expiry: drop the stale entry on the spot.
		c.removeLocked(key, e)
	}
	c.misses++
	return nil, c.gen, false
}

// recordBypass counts an uncacheable call (TTL <= 0) as a miss.
func (c *Cache) recordBypass() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.misses++
}

// store inserts the computed value unless a Clear ran since the lookup.
func (c *Cache) store(key string, value any, ttl time.Duration, tags []string, gen uint64) {
	size := estimateSize(key, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// The cache was cleared while compute was in flight; the caller
		// gets the result but the cleared cache is not repopulated.
		return
	}
	if old, ok := c.entries[key]; ok {
		c.removeLocked(key, old)
	}
	c.seq++
	c.tick++
	c.entries[key] = &entry{
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
		tags:      tags,
		size:      size,
		lastTick:  c.tick,
		seq:       c.seq,
	}
	c.mem += size
	c.evictLocked()
}

// Invalidate removes the entry stored under key. It reports whether an
// entry was removed; a missing key is a no-op.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(key, e)
	return true
}

// InvalidateQuery removes the entry for the given query text and
// parameters, if present.
func (c *Cache) InvalidateQuery(text string, params []any) bool {
	return c.Invalidate(Key(text, params))
}

// InvalidateTag removes every entry carrying tag and returns the number
// removed.
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		for _, t := range e.tags {
			if t == tag {
				c.removeLocked(key, e)
				removed++
				break
			}
		}
	}
	if removed > 0 {
		c.logger.Debug("cache tag invalidated", "tag", tag, "removed", removed)
	}
	return removed
}

// Clear removes all entries and resets all counters. Results computed
// before Clear are returned to their callers but not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.mem = 0
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.total = 0
	c.gen++
}

// Sweep purges expired entries and returns the number removed. Expiry
// removal does not count as an eviction.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			c.removeLocked(key, e)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a point-in-time snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
		TotalQueries: c.total,
		Entries:      len(c.entries),
		MemoryBytes:  c.mem,
	}
}

func (c *Cache) removeLocked(key string, e *entry) {
	delete(c.entries, key)
	c.mem -= e.size
}

// evictLocked enforces the capacity bound, preferring already-expired
// entries, then least-recently-used, with insertion order breaking ties.
func (c *Cache) evictLocked() {
	now := c.now()
	for len(c.entries) > c.capacity {
		key, victim := c.victimLocked(now)
		if victim == nil {
			return
		}
		c.removeLocked(key, victim)
		c.evictions++
		c.logger.Debug("cache entry evicted", "key", key, "hits", victim.hitCount)
	}
}

func (c *Cache) victimLocked(now time.Time) (string, *entry) {
	var victimKey string
	var victim *entry
	var victimExpired bool
	for key, e := range c.entries {
		expired := e.expired(now)
		if victim == nil || evictBefore(e, expired, victim, victimExpired) {
			victimKey, victim, victimExpired = key, e, expired
		}
	}
	return victimKey, victim
}

// evictBefore reports whether a is a better eviction candidate than b.
func evictBefore(a *entry, aExpired bool, b *entry, bExpired bool) bool {
	if aExpired != bExpired {
		return aExpired
	}
	if a.lastTick != b.lastTick {
		return a.lastTick < b.lastTick
	}
	return a.seq < b.seq
}

// estimateSize approximates the in-memory cost of an entry from its
// JSON-serialized size. The estimate is used only for the stats
// endpoint, never for hard memory limits.
func estimateSize(key string, value any) int64 {
	size := int64(len(key)) + entryOverhead
	if encoded, err := json.Marshal(value); err == nil {
		size += int64(len(encoded))
	}
	return size
}
