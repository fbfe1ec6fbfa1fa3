package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/internal/auth"
	"github.com/star/frames/internal/bulk"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testStore() *eop.Store {
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

func testServer(store *eop.Store, authCfg auth.Config) *Server {
	return NewServer("127.0.0.1:0", authCfg, Deps{
		Logger: testLogger(),
		Store:  store,
		Pool:   bulk.NewWorkerPool(2, testLogger()),
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.HTTPServer().Handler.ServeHTTP(w, req)
	return w
}

// TestTransformSingle verifies a round-trip through the single-state
// endpoint preserves the vector norm.
func TestTransformSingle(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})

	req := transformRequest{
		Origin:      "ITRF",
		Destination: "GCRF",
		Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		State: stateJSON{
			R: [3]float64{7000, 100, 500},
			V: [3]float64{0, 7.5, 0.1},
		},
	}
	w := doJSON(t, srv, "POST", "/api/v1/transform", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp transformResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Frame != "GCRF" {
		t.Errorf("frame = %q, want GCRF", resp.Frame)
	}
	if resp.Theory != "FK5" {
		t.Errorf("theory = %q, want FK5", resp.Theory)
	}

	inNorm := math.Sqrt(7000*7000 + 100*100 + 500*500)
	outNorm := math.Sqrt(resp.State.R[0]*resp.State.R[0] +
		resp.State.R[1]*resp.State.R[1] +
		resp.State.R[2]*resp.State.R[2])
	if math.Abs(inNorm-outNorm) > 1e-6 {
		t.Errorf("position norm changed: %g -> %g", inNorm, outNorm)
	}
}

// TestTransformTheoryMismatch verifies a cross-theory pair is rejected
// with 400.
func TestTransformTheoryMismatch(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})

	req := transformRequest{
		Origin:      "TOD",
		Destination: "CIRS",
		Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		State:       stateJSON{R: [3]float64{7000, 0, 0}},
	}
	w := doJSON(t, srv, "POST", "/api/v1/transform", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] == nil {
		t.Error("expected error field in response")
	}
}

// TestTransformUnknownFrame verifies an unknown frame name is rejected.
func TestTransformUnknownFrame(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})

	req := transformRequest{
		Origin:      "ECEF",
		Destination: "GCRF",
		Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	w := doJSON(t, srv, "POST", "/api/v1/transform", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// TestBatchCPUBudget verifies that requests exceeding the max states
// budget are rejected with 400 instead of consuming unbounded CPU.
func TestBatchCPUBudget(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})

	mkStates := func(n int) []stateJSON {
		states := make([]stateJSON, n)
		for i := range states {
			states[i] = stateJSON{R: [3]float64{7000, float64(i), 0}}
		}
		return states
	}

	tests := []struct {
		name       string
		count      int
		wantStatus int
	}{
		{"within budget", 10, http.StatusOK},
		{"budget exceeded", maxBatchStates + 1, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := batchRequest{
				Origin:      "ITRF",
				Destination: "TEME",
				Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				States:      mkStates(tt.count),
			}
			w := doJSON(t, srv, "POST", "/api/v1/transform/batch", req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusBadRequest {
				var resp map[string]any
				json.NewDecoder(w.Body).Decode(&resp)
				if resp["error"] == nil {
					t.Error("expected error field in response")
				}
				if resp["max_states"] == nil {
					t.Error("expected max_states field in response")
				}
				return
			}

			var resp batchResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.States) != tt.count {
				t.Errorf("got %d states, want %d", len(resp.States), tt.count)
			}
		})
	}
}

// TestOrbitEndpoint verifies element transformation keeps shape
// invariants.
func TestOrbitEndpoint(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})

	req := orbitRequest{
		Origin:      "GCRF",
		Destination: "TEME",
		Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Elements: elementsJSON{
			SMA:         7130.982,
			Ecc:         0.001111,
			Inc:         98.405 * math.Pi / 180,
			RAAN:        227.336 * math.Pi / 180,
			ArgPerigee:  math.Pi / 2,
			TrueAnomaly: 320 * math.Pi / 180,
		},
	}
	w := doJSON(t, srv, "POST", "/api/v1/transform/orbit", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp orbitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if math.Abs(resp.Elements.SMA-req.Elements.SMA) > 1e-6 {
		t.Errorf("SMA changed: %g -> %g", req.Elements.SMA, resp.Elements.SMA)
	}
	if math.Abs(resp.Elements.Ecc-req.Elements.Ecc) > 1e-9 {
		t.Errorf("Ecc changed: %g -> %g", req.Elements.Ecc, resp.Elements.Ecc)
	}
}

// TestEOPMetadata verifies 404 without a table and 200 with one.
func TestEOPMetadata(t *testing.T) {
	empty := testServer(eop.NewStore(), auth.Config{})
	w := doJSON(t, empty, "GET", "/api/v1/eop/metadata", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	srv := testServer(testStore(), auth.Config{})
	w = doJSON(t, srv, "GET", "/api/v1/eop/metadata", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var meta eopMetadata
	if err := json.NewDecoder(w.Body).Decode(&meta); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if meta.Variant != "IAU1980" {
		t.Errorf("variant = %q, want IAU1980", meta.Variant)
	}
	if meta.Records != 1 {
		t.Errorf("records = %d, want 1", meta.Records)
	}
}

// TestReadyz verifies readiness follows EOP availability.
func TestReadyz(t *testing.T) {
	store := eop.NewStore()
	srv := testServer(store, auth.Config{})

	w := doJSON(t, srv, "GET", "/readyz", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 before EOP load", w.Code)
	}

	store.Set(testStore().Get())
	w = doJSON(t, srv, "GET", "/readyz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after EOP load", w.Code)
	}
}

// TestAuthProtectsFetch verifies the mutating fetch endpoint requires a
// token while transforms stay public.
func TestAuthProtectsFetch(t *testing.T) {
	store := testStore()
	refreshed := false
	srv := NewServer("127.0.0.1:0", auth.Config{Enabled: true, Token: "secret"}, Deps{
		Logger: testLogger(),
		Store:  store,
		Pool:   bulk.NewWorkerPool(2, testLogger()),
		Refresh: func(ctx context.Context) (*eop.Dataset, error) {
			refreshed = true
			return store.Get(), nil
		},
	})

	w := doJSON(t, srv, "POST", "/api/v1/eop/fetch", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", w.Code)
	}
	if refreshed {
		t.Fatal("refresh ran without authorization")
	}

	var buf bytes.Buffer
	req := httptest.NewRequest("POST", "/api/v1/eop/fetch", &buf)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.HTTPServer().Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with token, body %s", rec.Code, rec.Body.String())
	}
	if !refreshed {
		t.Fatal("refresh did not run")
	}

	// Transforms stay public under auth.
	treq := transformRequest{
		Origin:      "ITRF",
		Destination: "TEME",
		Epoch:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		State:       stateJSON{R: [3]float64{7000, 0, 0}},
	}
	w = doJSON(t, srv, "POST", "/api/v1/transform", treq)
	if w.Code != http.StatusOK {
		t.Fatalf("transform status = %d, want 200 without token", w.Code)
	}
}

// TestCacheStatsDisabled verifies the stats endpoint reports 404 when
// the rotation cache is not wired.
func TestCacheStatsDisabled(t *testing.T) {
	srv := testServer(testStore(), auth.Config{})
	w := doJSON(t, srv, "GET", "/api/v1/cache/stats", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
