// Package rotcache provides an in-memory cache of ITRF→GCRF rotations
// with a rolling window.
//
// The cache maintains rotations for [now, now+horizon] at a fixed step.
// A background worker computes new rotations at the leading edge and
// evicts expired entries from the trailing edge. When the EOP dataset
// changes, the cache is rebuilt without interrupting reads.
package rotcache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
	"github.com/star/frames/internal/metrics"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

// Config holds cache configuration loaded from environment variables.
type Config struct {
	Step    time.Duration // rotation interval (default: 5s)
	Horizon time.Duration // how far ahead to cache (default: 600s)
	Buffer  time.Duration // keep entries this long past expiration (default: 60s)
}

// entry wraps a computed rotation with generation metadata.
type entry struct {
	rot         rotation.Rotation
	generatedAt time.Time
}

// RotationCache is an in-memory cache of ITRF→GCRF rotations with a
// rolling window. Safe for concurrent use by multiple goroutines.
type RotationCache struct {
	mu      sync.RWMutex
	entries map[time.Time]*entry

	config Config
	store  *eop.Store
	logger *slog.Logger

	// Track the current EOP dataset for change detection.
	currentFetchedAt time.Time

	// Counters (lock-free).
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	rebuilding atomic.Bool
}

// New creates a rotation cache backed by the given EOP store.
func New(config Config, store *eop.Store, logger *slog.Logger) *RotationCache {
	logger.Info("rotation cache initialized",
		"step_seconds", config.Step.Seconds(),
		"horizon_seconds", config.Horizon.Seconds(),
		"buffer_seconds", config.Buffer.Seconds(),
	)

	return &RotationCache{
		entries: make(map[time.Time]*entry),
		config:  config,
		store:   store,
		logger:  logger,
	}
}

// RoundToStep rounds a timestamp down to the nearest step boundary.
// This normalizes timestamps so cache lookups hit consistently.
func (c *RotationCache) RoundToStep(t time.Time) time.Time {
	return t.UTC().Truncate(c.config.Step)
}

// Get returns the ITRF→GCRF rotation for the given timestamp, or nil
// when not cached. The timestamp is rounded to the step boundary.
func (c *RotationCache) Get(t time.Time) rotation.Rotation {
	key := c.RoundToStep(t)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
		metrics.RecordRotationCacheHit()
		return e.rot
	}

	c.misses.Add(1)
	metrics.RecordRotationCacheMiss()
	return nil
}

// GetOrCompute returns the cached rotation for the timestamp, falling
// back to resolving it directly on a miss. The fallback is not stored;
// the background worker owns the window contents.
func (c *RotationCache) GetOrCompute(t time.Time) (rotation.Rotation, error) {
	if rot := c.Get(t); rot != nil {
		return rot, nil
	}
	return c.compute(c.RoundToStep(t))
}

// compute resolves the ITRF→GCRF rotation at the given instant using
// the store's current table (nil table means zero corrections).
func (c *RotationCache) compute(t time.Time) (rotation.Rotation, error) {
	var data eop.Data
	if ds := c.store.Get(); ds != nil {
		data = ds.Data
	}
	return frames.ECEFToECI(rotation.KindDCM, frames.ITRF, frames.GCRF, timeutil.JulianDate(t), data)
}

// put stores a rotation. Caller must not hold mu.
func (c *RotationCache) put(key time.Time, rot rotation.Rotation) {
	e := &entry{rot: rot, generatedAt: time.Now()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// evictExpired removes entries older than now - buffer.
func (c *RotationCache) evictExpired() int {
	cutoff := time.Now().Add(-c.config.Buffer)
	var removed int

	c.mu.Lock()
	for ts := range c.entries {
		if ts.Before(cutoff) {
			delete(c.entries, ts)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.evictions.Add(int64(removed))
		c.logger.Debug("rotation cache eviction", "entries_removed", removed)
	}

	return removed
}

// replaceAll atomically replaces all cache entries (used during EOP
// cutover).
func (c *RotationCache) replaceAll(newEntries map[time.Time]*entry) {
	c.mu.Lock()
	c.entries = newEntries
	c.mu.Unlock()
}

// Stats holds cache statistics for the stats endpoint.
type Stats struct {
	Entries         int       `json:"entries"`
	OldestTimestamp time.Time `json:"oldest_timestamp"`
	NewestTimestamp time.Time `json:"newest_timestamp"`
	Hits            int64     `json:"hits"`
	Misses          int64     `json:"misses"`
	Evictions       int64     `json:"evictions"`
	Rebuilding      bool      `json:"rebuilding"`
}

// Stats returns current cache statistics.
func (c *RotationCache) Stats() Stats {
	c.mu.RLock()
	count := len(c.entries)

	var oldest, newest time.Time
	for ts := range c.entries {
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
		if newest.IsZero() || ts.After(newest) {
			newest = ts
		}
	}
	c.mu.RUnlock()

	return Stats{
		Entries:         count,
		OldestTimestamp: oldest,
		NewestTimestamp: newest,
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Evictions:       c.evictions.Load(),
		Rebuilding:      c.rebuilding.Load(),
	}
}
