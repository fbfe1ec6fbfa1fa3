package rotcache

import (
	"context"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/rotation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testEOPStore() *eop.Store {
	store := eop.NewStore()
	store.Set(&eop.Dataset{
		Source:    "test",
		FetchedAt: time.Now(),
		Records:   1,
		Data: eop.NewIAU1980([]eop.Record{
			{MJD: 60370, XP: 0.05, YP: 0.35, DUT1: 0.01, LOD: 0.001, DPsi: -50, DEps: -5},
		}),
	})
	return store
}

func testConfig() Config {
	return Config{
		Step:    5 * time.Second,
		Horizon: 30 * time.Second,
		Buffer:  10 * time.Second,
	}
}

// TestPutGet tests basic cache operations: put, get, stats.
func TestPutGet(t *testing.T) {
	store := testEOPStore()
	c := New(testConfig(), store, testLogger())

	target := time.Now().UTC().Truncate(5 * time.Second)
	rot, err := c.compute(target)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	c.put(target, rot)

	got := c.Get(target)
	if got == nil {
		t.Fatal("expected cache hit, got nil")
	}

	stats := c.Stats()
	if stats.Entries != 1 {
		t.Errorf("entries: got %d, want 1", stats.Entries)
	}
	if stats.Hits < 1 {
		t.Errorf("hits: got %d, want >= 1", stats.Hits)
	}
}

// TestRoundToStep verifies timestamp rounding.
func TestRoundToStep(t *testing.T) {
	c := New(testConfig(), testEOPStore(), testLogger())

	tests := []struct {
		input    time.Time
		expected time.Time
	}{
		{
			input:    time.Date(2026, 2, 6, 12, 0, 3, 0, time.UTC),
			expected: time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		},
		{
			input:    time.Date(2026, 2, 6, 12, 0, 7, 0, time.UTC),
			expected: time.Date(2026, 2, 6, 12, 0, 5, 0, time.UTC),
		},
		{
			input:    time.Date(2026, 2, 6, 12, 0, 10, 0, time.UTC),
			expected: time.Date(2026, 2, 6, 12, 0, 10, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		got := c.RoundToStep(tt.input)
		if !got.Equal(tt.expected) {
			t.Errorf("RoundToStep(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestCacheMiss verifies that a miss returns nil and increments the
// miss counter.
func TestCacheMiss(t *testing.T) {
	c := New(testConfig(), testEOPStore(), testLogger())

	got := c.Get(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC))
	if got != nil {
		t.Fatal("expected nil for cache miss")
	}

	stats := c.Stats()
	if stats.Misses < 1 {
		t.Errorf("misses: got %d, want >= 1", stats.Misses)
	}
}

// TestGetOrComputeMatchesCached verifies the fallback path computes the
// same rotation the worker would have cached.
func TestGetOrComputeMatchesCached(t *testing.T) {
	c := New(testConfig(), testEOPStore(), testLogger())

	target := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fallback, err := c.GetOrCompute(target)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	rot, err := c.compute(target)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	c.put(target, rot)

	cached, err := c.GetOrCompute(target)
	if err != nil {
		t.Fatalf("GetOrCompute after put failed: %v", err)
	}

	v := rotation.Vec3{X: 7000, Y: 100, Z: 500}
	if d := fallback.Apply(v).Sub(cached.Apply(v)).Norm(); d > 1e-12 {
		t.Errorf("fallback and cached rotations differ by %g km", d)
	}
}

// TestEvictExpired verifies that expired entries are removed.
func TestEvictExpired(t *testing.T) {
	cfg := testConfig()
	cfg.Buffer = 0 // No buffer, evict immediately if in the past.
	c := New(cfg, testEOPStore(), testLogger())

	pastTime := time.Now().UTC().Add(-2 * time.Minute).Truncate(5 * time.Second)
	futureTime := time.Now().UTC().Add(1 * time.Minute).Truncate(5 * time.Second)

	for _, ts := range []time.Time{pastTime, futureTime} {
		rot, err := c.compute(ts)
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		c.put(ts, rot)
	}

	if c.Stats().Entries != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Stats().Entries)
	}

	removed := c.evictExpired()
	if removed != 1 {
		t.Errorf("expected 1 eviction, got %d", removed)
	}

	if c.Get(pastTime) != nil {
		t.Error("expected past entry to be evicted")
	}
	if c.Get(futureTime) == nil {
		t.Error("expected future entry to remain")
	}
}

// TestWarmup verifies warmup fills the window.
func TestWarmup(t *testing.T) {
	cfg := testConfig()
	cfg.Horizon = 15 * time.Second // 4 rotations: 0, 5, 10, 15.
	c := New(cfg, testEOPStore(), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.warmup(ctx)

	stats := c.Stats()
	expectedFrames := int(cfg.Horizon/cfg.Step) + 1
	if stats.Entries < expectedFrames {
		t.Errorf("warmup generated %d entries, expected >= %d", stats.Entries, expectedFrames)
	}
}

// TestEOPCutover verifies graceful EOP dataset cutover.
func TestEOPCutover(t *testing.T) {
	store := testEOPStore()
	cfg := testConfig()
	cfg.Horizon = 10 * time.Second // 3 rotations: 0, 5, 10.
	c := New(cfg, store, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.warmup(ctx)
	if c.Stats().Entries == 0 {
		t.Fatal("no entries after warmup")
	}

	// A warmed entry with the original table.
	now := c.RoundToStep(time.Now())
	before := c.Get(now)
	if before == nil {
		t.Fatal("expected warmed entry at now")
	}

	// Simulate an EOP refetch with different polar motion.
	store.Set(&eop.Dataset{
		Source:    "updated",
		FetchedAt: time.Now().Add(1 * time.Second),
		Records:   1,
		Data: eop.NewIAU1980([]eop.Record{
			{MJD: 60370, XP: 0.25, YP: 0.15, DUT1: 0.3, LOD: 0.001, DPsi: -50, DEps: -5},
		}),
	})

	if !c.eopChanged() {
		t.Fatal("expected eopChanged() to return true after dataset update")
	}

	c.rebuild(ctx)

	if c.rebuilding.Load() {
		t.Error("rebuilding flag should be false after cutover")
	}
	if c.Stats().Entries == 0 {
		t.Fatal("no entries after cutover")
	}
	if c.eopChanged() {
		t.Error("expected eopChanged() to return false after cutover")
	}

	// The rebuilt rotation reflects the new table.
	after := c.Get(now)
	if after == nil {
		t.Fatal("expected rebuilt entry at now")
	}
	v := rotation.Vec3{X: 7000, Y: 100, Z: 500}
	if d := before.Apply(v).Sub(after.Apply(v)).Norm(); d < 1e-9 {
		t.Errorf("expected rebuilt rotation to differ, delta %g km", d)
	}
}

// TestConcurrentAccess verifies the cache is safe for concurrent reads
// while the worker runs.
func TestConcurrentAccess(t *testing.T) {
	c := New(testConfig(), testEOPStore(), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go c.Start(ctx)

	time.Sleep(time.Second)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.Get(time.Now())
				c.Stats()
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-ctx.Done():
			t.Fatal("timeout waiting for concurrent reads")
		}
	}
}

// TestRotationIsOrthonormal sanity-checks a cached rotation.
func TestRotationIsOrthonormal(t *testing.T) {
	c := New(testConfig(), testEOPStore(), testLogger())

	rot, err := c.GetOrCompute(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	v := rotation.Vec3{X: 7000, Y: 100, Z: 500}
	if d := math.Abs(rot.Apply(v).Norm() - v.Norm()); d > 1e-9 {
		t.Errorf("rotation changed vector norm by %g", d)
	}
}
