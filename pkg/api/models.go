package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start     LatLngJSON `json:"start"`
	End       LatLngJSON `json:"end"`
	Algorithm string     `json:"algorithm,omitempty"`
	Inspector string     `json:"inspector,omitempty"`
	// Battery capacity and starting charge, in the inspector's unit.
	MaxRange     float64 `json:"max_range,omitempty"`
	InitialRange float64 `json:"initial_range,omitempty"`
}

// BatchRequest is the JSON body for POST /api/v1/routes.
type BatchRequest struct {
	Routes []RouteRequest `json:"routes"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Algorithm           string        `json:"algorithm"`
	Inspector           string        `json:"inspector"`
	Mode                string        `json:"mode"`
	Cost                float64       `json:"cost"`
	TotalDistanceMeters float64       `json:"total_distance_meters"`
	DurationSeconds     float64       `json:"duration_seconds"`
	Segments            []SegmentJSON `json:"segments"`
	Search              SearchJSON    `json:"search"`
}

// SegmentJSON represents a run of one road type in the response.
type SegmentJSON struct {
	RoadType       string       `json:"road_type"`
	DistanceMeters float64      `json:"distance_meters"`
	Geometry       []LatLngJSON `json:"geometry"`
}

// SearchJSON reports the work done by the search.
type SearchJSON struct {
	Labels    int     `json:"labels"`
	Settled   int     `json:"settled"`
	Pruned    int     `json:"pruned,omitempty"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// BatchItem is one entry of a batch response: either a route or an error.
type BatchItem struct {
	Route *RouteResponse `json:"route,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is the JSON response for POST /api/v1/routes.
type BatchResponse struct {
	Routes []BatchItem `json:"routes"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes     uint32 `json:"num_nodes"`
	NumArcs      uint32 `json:"num_arcs"`
	IndexedNodes int    `json:"indexed_nodes"`
	Queries      int64  `json:"queries"`
	Found        int64  `json:"found"`
	NoRoute      int64  `json:"no_route"`
	Failed       int64  `json:"failed"`
	Settled      int64  `json:"settled"`
}

// AlgorithmsResponse is the JSON response for GET /api/v1/algorithms.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
	Inspectors []string `json:"inspectors"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
