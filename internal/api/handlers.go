package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/star/frames/eop"
	"github.com/star/frames/frames"
	"github.com/star/frames/internal/bulk"
	"github.com/star/frames/internal/metrics"
	"github.com/star/frames/internal/rotcache"
	"github.com/star/frames/orbit"
	"github.com/star/frames/rotation"
	"github.com/star/frames/timeutil"
)

// maxBatchStates bounds the CPU a single batch request can consume.
const maxBatchStates = 10000

type stateJSON struct {
	R [3]float64 `json:"r_km"`
	V [3]float64 `json:"v_km_s"`
	A [3]float64 `json:"a_km_s2"`
}

func toVec(a [3]float64) rotation.Vec3 {
	return rotation.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func fromVec(v rotation.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func toStateVector(jd float64, f frames.Frame, s stateJSON) frames.StateVector {
	return frames.StateVector{
		EpochJD: jd,
		Frame:   f,
		R:       toVec(s.R),
		V:       toVec(s.V),
		A:       toVec(s.A),
	}
}

func fromStateVector(sv frames.StateVector) stateJSON {
	return stateJSON{R: fromVec(sv.R), V: fromVec(sv.V), A: fromVec(sv.A)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorReason maps a transform failure onto a low-cardinality metric
// label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, frames.ErrTheoryMismatch):
		return "theory_mismatch"
	case errors.Is(err, frames.ErrEOPMismatch):
		return "eop_mismatch"
	case errors.Is(err, orbit.ErrInvalidEccentricity):
		return "invalid_eccentricity"
	default:
		return "bad_request"
	}
}

// currentData returns the loaded EOP table, or nil for the explicit
// zero-correction approximation.
func currentData(store *eop.Store) eop.Data {
	if ds := store.Get(); ds != nil {
		return ds.Data
	}
	return nil
}

type transformRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Epoch       time.Time `json:"epoch"`
	State       stateJSON `json:"state"`
}

type transformResponse struct {
	Frame  string    `json:"frame"`
	Epoch  time.Time `json:"epoch"`
	Theory string    `json:"theory"`
	State  stateJSON `json:"state"`
}

// parsePair validates the frame names and reports the bound theory.
func parsePair(origin, destination string, data eop.Data) (frames.Frame, frames.Frame, frames.Theory, error) {
	o, err := frames.ParseFrame(origin)
	if err != nil {
		return 0, 0, 0, err
	}
	d, err := frames.ParseFrame(destination)
	if err != nil {
		return 0, 0, 0, err
	}
	th, err := frames.ResolveTheory(o, d, data)
	if err != nil {
		return 0, 0, 0, err
	}
	return o, d, th, nil
}

func transformHandler(logger *slog.Logger, store *eop.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Epoch.IsZero() {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "epoch is required")
			return
		}

		data := currentData(store)
		o, d, th, err := parsePair(req.Origin, req.Destination, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		jd := timeutil.JulianDate(req.Epoch)
		out, err := frames.Transport(toStateVector(jd, o, req.State), d, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		metrics.RecordTransform(o.String(), d.String(), th.String())
		writeJSON(w, http.StatusOK, transformResponse{
			Frame:  d.String(),
			Epoch:  req.Epoch,
			Theory: th.String(),
			State:  fromStateVector(out),
		})
	}
}

type batchRequest struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Epoch       time.Time   `json:"epoch"`
	States      []stateJSON `json:"states"`
}

type batchResponse struct {
	Frame  string      `json:"frame"`
	Epoch  time.Time   `json:"epoch"`
	Theory string      `json:"theory"`
	States []stateJSON `json:"states"`
}

func transformBatchHandler(logger *slog.Logger, store *eop.Store, pool *bulk.WorkerPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Epoch.IsZero() {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "epoch is required")
			return
		}
		if len(req.States) > maxBatchStates {
			metrics.RecordTransformError("budget_exceeded")
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      "batch too large",
				"max_states": maxBatchStates,
			})
			return
		}

		data := currentData(store)
		o, d, th, err := parsePair(req.Origin, req.Destination, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		jd := timeutil.JulianDate(req.Epoch)
		states := make([]frames.StateVector, len(req.States))
		for i, s := range req.States {
			states[i] = toStateVector(jd, o, s)
		}

		out, err := pool.TransportBatch(r.Context(), o, d, jd, states, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := batchResponse{
			Frame:  d.String(),
			Epoch:  req.Epoch,
			Theory: th.String(),
			States: make([]stateJSON, len(out)),
		}
		for i, sv := range out {
			resp.States[i] = fromStateVector(sv)
		}

		metrics.RecordTransform(o.String(), d.String(), th.String())
		logger.Debug("batch transform",
			"origin", o.String(),
			"destination", d.String(),
			"states", len(out),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}

type elementsJSON struct {
	SMA         float64 `json:"sma_km"`
	Ecc         float64 `json:"ecc"`
	Inc         float64 `json:"inc_rad"`
	RAAN        float64 `json:"raan_rad"`
	ArgPerigee  float64 `json:"argp_rad"`
	TrueAnomaly float64 `json:"nu_rad"`
}

type orbitRequest struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Epoch       time.Time    `json:"epoch"`
	Elements    elementsJSON `json:"elements"`
}

type orbitResponse struct {
	Frame    string       `json:"frame"`
	Epoch    time.Time    `json:"epoch"`
	Theory   string       `json:"theory"`
	Elements elementsJSON `json:"elements"`
}

func transformOrbitHandler(logger *slog.Logger, store *eop.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orbitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Epoch.IsZero() {
			metrics.RecordTransformError("bad_request")
			writeError(w, http.StatusBadRequest, "epoch is required")
			return
		}

		data := currentData(store)
		o, d, th, err := parsePair(req.Origin, req.Destination, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		el := orbit.Elements{
			EpochJD:     timeutil.JulianDate(req.Epoch),
			Frame:       o,
			SMA:         req.Elements.SMA,
			Ecc:         req.Elements.Ecc,
			Inc:         req.Elements.Inc,
			RAAN:        req.Elements.RAAN,
			ArgPerigee:  req.Elements.ArgPerigee,
			TrueAnomaly: req.Elements.TrueAnomaly,
		}
		out, err := orbit.ChangeFrame(el, d, data)
		if err != nil {
			metrics.RecordTransformError(errorReason(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		metrics.RecordTransform(o.String(), d.String(), th.String())
		writeJSON(w, http.StatusOK, orbitResponse{
			Frame:  d.String(),
			Epoch:  req.Epoch,
			Theory: th.String(),
			Elements: elementsJSON{
				SMA:         out.SMA,
				Ecc:         out.Ecc,
				Inc:         out.Inc,
				RAAN:        out.RAAN,
				ArgPerigee:  out.ArgPerigee,
				TrueAnomaly: out.TrueAnomaly,
			},
		})
	}
}

type eopMetadata struct {
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	Records    int       `json:"records"`
	Variant    string    `json:"variant"`
	SpanMinMJD float64   `json:"span_min_mjd"`
	SpanMaxMJD float64   `json:"span_max_mjd"`
	AgeSeconds float64   `json:"age_seconds"`
}

func eopMetadataHandler(store *eop.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := store.Get()
		if ds == nil {
			writeError(w, http.StatusNotFound, "no EOP table loaded")
			return
		}
		minMJD, maxMJD := ds.Data.Span()
		writeJSON(w, http.StatusOK, eopMetadata{
			Source:     ds.Source,
			FetchedAt:  ds.FetchedAt,
			Records:    ds.Records,
			Variant:    ds.Data.Variant().String(),
			SpanMinMJD: minMJD,
			SpanMaxMJD: maxMJD,
			AgeSeconds: store.AgeSeconds(),
		})
	}
}

func eopFetchHandler(logger *slog.Logger, refresh func(ctx context.Context) (*eop.Dataset, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if refresh == nil {
			writeError(w, http.StatusNotImplemented, "EOP refresh is not configured")
			return
		}

		ds, err := refresh(r.Context())
		if err != nil {
			logger.Error("manual EOP fetch failed", "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		logger.Info("manual EOP fetch complete", "records", ds.Records)
		minMJD, maxMJD := ds.Data.Span()
		writeJSON(w, http.StatusOK, eopMetadata{
			Source:     ds.Source,
			FetchedAt:  ds.FetchedAt,
			Records:    ds.Records,
			Variant:    ds.Data.Variant().String(),
			SpanMinMJD: minMJD,
			SpanMaxMJD: maxMJD,
		})
	}
}

func cacheStatsHandler(cache *rotcache.RotationCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			writeError(w, http.StatusNotFound, "rotation cache disabled")
			return
		}
		writeJSON(w, http.StatusOK, cache.Stats())
	}
}
