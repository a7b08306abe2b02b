package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/samber/lo"

	"github.com/azybler/roadpath/pkg/routing"
	"github.com/azybler/roadpath/pkg/shortestpath"
)

const (
	maxRouteBody = 4 << 10
	maxBatchBody = 256 << 10

	// DefaultMaxBatch caps the number of routes in one batch request.
	DefaultMaxBatch = 100
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router   routing.Router
	stats    func() StatsResponse
	maxBatch int
}

// NewHandlers creates handlers with the given router. stats may be nil.
func NewHandlers(router routing.Router, stats func() StatsResponse, maxBatch int) *Handlers {
	if stats == nil {
		stats = func() StatsResponse { return StatsResponse{} }
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &Handlers{
		router:   router,
		stats:    stats,
		maxBatch: maxBatch,
	}
}

// EngineStats adapts the engine counters to the stats endpoint.
func EngineStats(e *routing.Engine) func() StatsResponse {
	return func() StatsResponse {
		s := e.Stats()
		return StatsResponse{
			NumNodes:     s.Nodes,
			NumArcs:      s.Arcs,
			IndexedNodes: s.Indexed,
			Queries:      s.Queries,
			Found:        s.Found,
			NoRoute:      s.NoRoute,
			Failed:       s.Failed,
			Settled:      s.Settled,
		}
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRouteBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}
	if field, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_coordinates", Field: field})
		return
	}

	result, err := h.router.Route(r.Context(), toRoutingRequest(req))
	if err != nil {
		status, resp := errorFor(err)
		writeError(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, toRouteResponse(result))
}

// HandleRoutes handles POST /api/v1/routes. Each route succeeds or fails
// on its own; the response is 200 unless the batch itself is malformed.
func (h *Handlers) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}

	var batch BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody)).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}
	if len(batch.Routes) == 0 || len(batch.Routes) > h.maxBatch {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_batch_size", Field: "routes"})
		return
	}

	items := make([]BatchItem, len(batch.Routes))
	var valid []int
	for i, req := range batch.Routes {
		if field, ok := validateRequest(req); !ok {
			items[i].Error = &ErrorResponse{Error: "invalid_coordinates", Field: field}
			continue
		}
		valid = append(valid, i)
	}

	reqs := lo.Map(valid, func(i int, _ int) routing.Request { return toRoutingRequest(batch.Routes[i]) })
	results, errs := h.router.RouteMany(r.Context(), reqs)
	for k, i := range valid {
		if errs[k] != nil {
			_, resp := errorFor(errs[k])
			items[i].Error = &resp
			continue
		}
		resp := toRouteResponse(results[k])
		items[i].Route = &resp
	}
	writeJSON(w, http.StatusOK, BatchResponse{Routes: items})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats())
}

// HandleAlgorithms handles GET /api/v1/algorithms.
func (h *Handlers) HandleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AlgorithmsResponse{
		Algorithms: shortestpath.AlgorithmNames(),
		Inspectors: shortestpath.InspectorNames(),
	})
}

// errorFor maps routing errors to a status and error body.
func errorFor(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "point_too_far_from_road"}
	case errors.Is(err, routing.ErrNoRoute):
		return http.StatusNotFound, ErrorResponse{Error: "no_route_found"}
	case errors.Is(err, routing.ErrInvalidRequest):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Detail: err.Error()}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "request_timeout"}
	}
	log.WithError(err).Error("route failed")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_error"}
}

func toRoutingRequest(req RouteRequest) routing.Request {
	return routing.Request{
		Start:        routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		End:          routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
		Algorithm:    req.Algorithm,
		Inspector:    req.Inspector,
		MaxRange:     req.MaxRange,
		InitialRange: req.InitialRange,
	}
}

func toRouteResponse(result *routing.RouteResult) RouteResponse {
	return RouteResponse{
		Algorithm:           result.Algorithm,
		Inspector:           result.Inspector,
		Mode:                result.Mode,
		Cost:                result.Cost,
		TotalDistanceMeters: result.TotalDistanceMeters,
		DurationSeconds:     result.DurationSeconds,
		Segments: lo.Map(result.Segments, func(seg routing.Segment, _ int) SegmentJSON {
			return SegmentJSON{
				RoadType:       seg.RoadType,
				DistanceMeters: seg.DistanceMeters,
				Geometry: lo.Map(seg.Geometry, func(ll routing.LatLng, _ int) LatLngJSON {
					return LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
				}),
			}
		}),
		Search: SearchJSON{
			Labels:    result.Stats.Labels,
			Settled:   result.Stats.Settled,
			Pruned:    result.Stats.Pruned,
			ElapsedMs: float64(result.Stats.Elapsed.Microseconds()) / 1000,
		},
	}
}

// validateRequest returns the name of the first bad coordinate.
func validateRequest(req RouteRequest) (string, bool) {
	if err := validateCoord(req.Start); err != nil {
		return "start", false
	}
	if err := validateCoord(req.End); err != nil {
		return "end", false
	}
	return "", true
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("write response")
	}
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}
