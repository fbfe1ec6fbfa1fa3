package rotcache

import (
	"context"
	"time"
)

// Start begins the background cache maintenance loop. It performs an
// initial warmup (filling the full [now, now+horizon] window), then
// continuously:
//   - Computes new rotations at the leading edge
//   - Evicts expired entries from the trailing edge
//   - Detects EOP dataset changes and triggers a rebuild
//
// Blocks until ctx is cancelled. The loop does not wait for an EOP
// table: rotations computed without one carry zero corrections and are
// replaced by the rebuild when a table arrives.
func (c *RotationCache) Start(ctx context.Context) {
	c.warmup(ctx)

	ticker := time.NewTicker(c.config.Step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("rotation cache worker stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// eopChanged checks if the EOP dataset has been updated since the cache
// was last built.
func (c *RotationCache) eopChanged() bool {
	ds := c.store.Get()
	if ds == nil {
		return false
	}
	return !ds.FetchedAt.Equal(c.currentFetchedAt)
}

// warmup fills the cache with rotations for [now, now+horizon].
func (c *RotationCache) warmup(ctx context.Context) {
	if ds := c.store.Get(); ds != nil {
		c.currentFetchedAt = ds.FetchedAt
	}

	now := c.RoundToStep(time.Now())
	numFrames := int(c.config.Horizon/c.config.Step) + 1

	c.logger.Info("rotation cache warmup starting",
		"frames", numFrames,
		"from", now.UTC().Format(time.RFC3339),
		"to", now.Add(c.config.Horizon).UTC().Format(time.RFC3339),
	)

	start := time.Now()
	generated := 0

	for i := 0; i < numFrames; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		key := now.Add(time.Duration(i) * c.config.Step)
		rot, err := c.compute(key)
		if err != nil {
			c.logger.Warn("warmup rotation failed", "timestamp", key, "error", err)
			continue
		}

		c.put(key, rot)
		generated++
	}

	c.logger.Info("rotation cache warmup complete",
		"generated", generated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// tick runs one iteration of the maintenance loop.
func (c *RotationCache) tick(ctx context.Context) {
	// Check for an EOP dataset change.
	if c.eopChanged() {
		c.rebuild(ctx)
		return
	}

	// Compute the leading edge rotation.
	c.generateLeadingEdge()

	// Evict expired entries.
	c.evictExpired()
}

// generateLeadingEdge computes the rotation at the leading edge of the
// window.
func (c *RotationCache) generateLeadingEdge() {
	key := c.RoundToStep(time.Now().Add(c.config.Horizon))

	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return
	}

	rot, err := c.compute(key)
	if err != nil {
		c.logger.Warn("leading edge rotation failed",
			"timestamp", key.UTC().Format(time.RFC3339),
			"error", err,
		)
		return
	}

	c.put(key, rot)
	c.logger.Debug("leading edge rotation generated",
		"timestamp", key.UTC().Format(time.RFC3339),
	)
}

// rebuild recomputes the entire window against the new EOP dataset.
//
// Strategy:
//  1. Set the rebuilding flag (old entries continue serving reads)
//  2. Build a new entries map in the background
//  3. Atomic swap: replace old entries with new
//  4. Clear the rebuilding flag
//
// Reads against the old window continue uninterrupted during the
// rebuild.
func (c *RotationCache) rebuild(ctx context.Context) {
	ds := c.store.Get()
	if ds == nil {
		return
	}

	c.logger.Info("EOP cutover starting",
		"old_dataset_fetched_at", c.currentFetchedAt.UTC().Format(time.RFC3339),
		"new_dataset_fetched_at", ds.FetchedAt.UTC().Format(time.RFC3339),
	)

	c.rebuilding.Store(true)
	defer c.rebuilding.Store(false)

	start := time.Now()
	now := c.RoundToStep(time.Now())
	numFrames := int(c.config.Horizon/c.config.Step) + 1

	newEntries := make(map[time.Time]*entry, numFrames)
	generated := 0

	for i := 0; i < numFrames; i++ {
		select {
		case <-ctx.Done():
			c.logger.Warn("cutover cancelled by context")
			return
		default:
		}

		key := now.Add(time.Duration(i) * c.config.Step)
		rot, err := c.compute(key)
		if err != nil {
			c.logger.Warn("cutover rotation failed",
				"timestamp", key.UTC().Format(time.RFC3339),
				"error", err,
			)
			continue
		}

		newEntries[key] = &entry{rot: rot, generatedAt: time.Now()}
		generated++
	}

	// Atomic swap.
	c.replaceAll(newEntries)
	c.currentFetchedAt = ds.FetchedAt

	c.logger.Info("EOP cutover complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"entries_replaced", generated,
	)
}
