package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/internal/auth"
	"github.com/star/frames/internal/bulk"
	"github.com/star/frames/internal/health"
	"github.com/star/frames/internal/httputil"
	"github.com/star/frames/internal/metrics"
	"github.com/star/frames/internal/rotcache"
)

// Deps holds the server's dependencies.
type Deps struct {
	Logger *slog.Logger
	Store  *eop.Store
	Pool   *bulk.WorkerPool
	Cache  *rotcache.RotationCache

	// Refresh fetches, parses and stores a fresh EOP table. Nil
	// disables POST /api/v1/eop/fetch.
	Refresh func(ctx context.Context) (*eop.Dataset, error)

	// TrustProxy enables X-Forwarded-For / X-Real-IP in request logs.
	TrustProxy bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, authCfg auth.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool {
		return deps.Store.Get() != nil
	}))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/eop/metadata", eopMetadataHandler(deps.Store))
	mux.HandleFunc("POST /api/v1/eop/fetch", eopFetchHandler(deps.Logger, deps.Refresh))
	mux.HandleFunc("POST /api/v1/transform", transformHandler(deps.Logger, deps.Store))
	mux.HandleFunc("POST /api/v1/transform/batch", transformBatchHandler(deps.Logger, deps.Store, deps.Pool))
	mux.HandleFunc("POST /api/v1/transform/orbit", transformOrbitHandler(deps.Logger, deps.Store))
	mux.HandleFunc("GET /api/v1/cache/stats", cacheStatsHandler(deps.Cache))

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(deps.Logger, deps.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
