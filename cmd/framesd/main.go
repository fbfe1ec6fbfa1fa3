package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/internal/api"
	"github.com/star/frames/internal/auth"
	"github.com/star/frames/internal/bulk"
	"github.com/star/frames/internal/metrics"
	"github.com/star/frames/internal/rotcache"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("FRAMES_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	eopCfg := loadEOPConfig(logger)
	store := eop.NewStore()
	diskCache := eop.NewCache(eopCfg.CacheDir, eopCfg.MaxFiles)
	fetcher := eop.NewFetcher(eopCfg.SourceURL)

	// Attempt to load cached EOP data on startup.
	data, ts, err := diskCache.LoadLatest()
	if err != nil {
		logger.Info("no EOP cache found, starting without EOP data", "error", err)
	} else {
		records, err := eop.Parse(bytes.NewReader(data), logger)
		if err != nil {
			logger.Warn("failed to parse cached EOP data", "error", err)
		} else if len(records) > 0 {
			store.Set(buildDataset("cache", ts, records, eopCfg.Variant))
			metrics.SetEOPRecords(len(records))
			logger.Info("loaded EOP data from cache", "records", len(records), "cached_at", ts.Format(time.RFC3339))
		}
	}

	refresh := func(ctx context.Context) (*eop.Dataset, error) {
		return refreshEOP(ctx, logger, store, fetcher, diskCache, eopCfg.Variant)
	}

	workers := loadWorkerCount(logger)
	pool := bulk.NewWorkerPool(workers, logger)

	cacheCfg := loadCacheConfig(logger)
	rotCache := rotcache.New(cacheCfg, store, logger)

	trustProxy := false
	if v := os.Getenv("FRAMES_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid FRAMES_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			trustProxy = b
		}
	}

	srv := api.NewServer(addr, authCfg, api.Deps{
		Logger:     logger,
		Store:      store,
		Pool:       pool,
		Cache:      rotCache,
		Refresh:    refresh,
		TrustProxy: trustProxy,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the rotation cache background worker.
	go rotCache.Start(ctx)

	// Periodic EOP refetch plus the age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		nextFetch := time.Now()
		if store.Get() != nil {
			nextFetch = nextFetch.Add(eopCfg.RefetchInterval)
		}
		for {
			select {
			case <-ticker.C:
				age := store.AgeSeconds()
				metrics.SetEOPAge(age)
				if eopCfg.EnableFetch && !time.Now().Before(nextFetch) {
					nextFetch = time.Now().Add(eopCfg.RefetchInterval)
					if _, err := refresh(ctx); err != nil {
						logger.Warn("periodic EOP fetch failed", "error", err)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "eop_fetch_enabled", eopCfg.EnableFetch)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildDataset wraps parsed records in the configured table variant.
func buildDataset(source string, fetchedAt time.Time, records []eop.Record, variant eop.Variant) *eop.Dataset {
	var data eop.Data
	if variant == eop.VariantIAU2000A {
		data = eop.NewIAU2000A(records)
	} else {
		data = eop.NewIAU1980(records)
	}
	return &eop.Dataset{
		Source:    source,
		FetchedAt: fetchedAt,
		Records:   len(records),
		Data:      data,
	}
}

// refreshEOP fetches, parses, caches and stores a fresh EOP table.
// The store's fetch mutex serializes concurrent refreshes (manual
// endpoint vs periodic loop).
func refreshEOP(ctx context.Context, logger *slog.Logger, store *eop.Store, fetcher *eop.Fetcher, diskCache *eop.Cache, variant eop.Variant) (*eop.Dataset, error) {
	store.Lock()
	defer store.Unlock()

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordEOPFetch("error")
		return nil, fmt.Errorf("fetch EOP: %w", err)
	}

	records, err := eop.Parse(bytes.NewReader(raw), logger)
	if err != nil {
		metrics.RecordEOPFetch("error")
		return nil, fmt.Errorf("parse EOP: %w", err)
	}
	if len(records) == 0 {
		metrics.RecordEOPFetch("error")
		return nil, errors.New("EOP source returned no records")
	}

	now := time.Now()
	if err := diskCache.Write(raw, now); err != nil {
		logger.Warn("failed to write EOP cache", "error", err)
	}

	ds := buildDataset(fetcher.SourceURL(), now, records, variant)
	store.Set(ds)
	metrics.RecordEOPFetch("success")
	metrics.SetEOPRecords(len(records))
	logger.Info("EOP table refreshed", "records", len(records), "source", ds.Source)
	return ds, nil
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("FRAMES_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("FRAMES_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("FRAMES_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("FRAMES_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadWorkerCount(logger *slog.Logger) int {
	workers := runtime.NumCPU()

	if v := os.Getenv("FRAMES_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMES_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = n
		}
	}

	logger.Info("worker config", "workers", workers)
	return workers
}

func loadCacheConfig(logger *slog.Logger) rotcache.Config {
	cfg := rotcache.Config{
		Step:    5 * time.Second,
		Horizon: 600 * time.Second,
		Buffer:  60 * time.Second,
	}

	if v := os.Getenv("FRAMES_CACHE_STEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMES_CACHE_STEP value, using default", "value", v, "default", 5)
		} else {
			cfg.Step = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("FRAMES_CACHE_HORIZON"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMES_CACHE_HORIZON value, using default", "value", v, "default", 600)
		} else {
			cfg.Horizon = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("FRAMES_CACHE_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMES_CACHE_BUFFER value, using default", "value", v, "default", 60)
		} else {
			cfg.Buffer = time.Duration(n) * time.Second
		}
	}

	logger.Info("cache config",
		"step_seconds", cfg.Step.Seconds(),
		"horizon_seconds", cfg.Horizon.Seconds(),
		"buffer_seconds", cfg.Buffer.Seconds(),
	)

	return cfg
}

// EOPConfig controls EOP acquisition.
type EOPConfig struct {
	EnableFetch     bool
	SourceURL       string
	CacheDir        string
	MaxFiles        int
	Variant         eop.Variant
	RefetchInterval time.Duration
}

func loadEOPConfig(logger *slog.Logger) EOPConfig {
	cfg := EOPConfig{
		EnableFetch:     true,
		CacheDir:        "/tmp/frames/eop",
		MaxFiles:        5,
		Variant:         eop.VariantIAU1980,
		RefetchInterval: 24 * time.Hour,
	}

	if v := os.Getenv("FRAMES_ENABLE_EOP_FETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid FRAMES_ENABLE_EOP_FETCH value, defaulting to false", "value", v)
			cfg.EnableFetch = false
		} else {
			cfg.EnableFetch = enabled
		}
	}

	if v := os.Getenv("FRAMES_EOP_SOURCE_URL"); v != "" {
		cfg.SourceURL = v
	}

	if v := os.Getenv("FRAMES_EOP_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if v := os.Getenv("FRAMES_EOP_VARIANT"); v != "" {
		switch v {
		case "iau1980", "IAU1980":
			cfg.Variant = eop.VariantIAU1980
		case "iau2000a", "IAU2000A":
			cfg.Variant = eop.VariantIAU2000A
		default:
			logger.Warn("invalid FRAMES_EOP_VARIANT value, using IAU1980", "value", v)
		}
	}

	if v := os.Getenv("FRAMES_EOP_REFETCH_INTERVAL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 1 {
			logger.Warn("invalid FRAMES_EOP_REFETCH_INTERVAL value, defaulting to 86400", "value", v)
		} else {
			cfg.RefetchInterval = time.Duration(seconds) * time.Second
		}
	}

	logger.Info("EOP config",
		"source_url", cfg.SourceURL,
		"cache_dir", cfg.CacheDir,
		"variant", cfg.Variant.String(),
		"refetch_interval_seconds", cfg.RefetchInterval.Seconds(),
	)

	return cfg
}
