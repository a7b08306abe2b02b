package routing

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/azybler/roadpath/pkg/graph"
	"github.com/azybler/roadpath/pkg/shortestpath"
)

var (
	// ErrNoRoute is returned when no route exists between the two points.
	ErrNoRoute = errors.New("no route found")
	// ErrInvalidRequest is returned for requests naming an unknown
	// algorithm or inspector, or carrying unusable battery settings.
	ErrInvalidRequest = errors.New("invalid route request")
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

func toLatLng(p orb.Point) LatLng { return LatLng{Lat: p.Lat(), Lng: p.Lon()} }

// Request is one route query. Empty fields take the engine defaults.
type Request struct {
	Start, End LatLng
	Algorithm  string
	Inspector  string
	// Battery only, in the inspector's cost unit.
	MaxRange     float64
	InitialRange float64
}

// Segment is a run of consecutive arcs of the same road type.
type Segment struct {
	RoadType       string
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Algorithm           string
	Inspector           string
	Mode                string
	Cost                float64 // meters or seconds, depending on Mode
	TotalDistanceMeters float64
	DurationSeconds     float64 // at each arc's speed limit
	Nodes               []uint32
	Segments            []Segment
	Stats               shortestpath.Stats
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, req Request) (*RouteResult, error)
	RouteMany(ctx context.Context, reqs []Request) ([]*RouteResult, []error)
}

// Options configures an Engine.
type Options struct {
	MaxSnapDistance   float64 // meters; 0 selects DefaultMaxSnapDistance
	DefaultAlgorithm  string
	DefaultInspector  string
	MaxRange          float64 // battery capacity; 0 selects shortestpath.DefaultMaxRange
	RechargeRoadTypes []graph.RoadType
	// Parallelism bounds RouteMany; 0 selects runtime.NumCPU().
	Parallelism int
	// TraceSearches attaches a LogObserver to every query.
	TraceSearches bool
}

// EngineStats are cumulative counters since the engine was created.
type EngineStats struct {
	Queries int64
	Found   int64
	NoRoute int64
	Failed  int64
	Settled int64
	Nodes   uint32
	Arcs    uint32
	Indexed int // nodes in the snapping index
}

// Engine implements Router over a road graph.
type Engine struct {
	g       *graph.Graph
	snapper *Snapper
	opts    Options

	queries, found, noRoute, failed, settled atomic.Int64
}

var _ Router = (*Engine)(nil)

// NewEngine creates a routing engine over g.
func NewEngine(g *graph.Graph, opts Options) *Engine {
	if opts.DefaultAlgorithm == "" {
		opts.DefaultAlgorithm = shortestpath.AlgorithmDijkstra.String()
	}
	if opts.DefaultInspector == "" {
		opts.DefaultInspector = shortestpath.DefaultInspector
	}
	if opts.MaxRange <= 0 {
		opts.MaxRange = shortestpath.DefaultMaxRange
	}
	if len(opts.RechargeRoadTypes) == 0 {
		opts.RechargeRoadTypes = []graph.RoadType{graph.RoadMotorway}
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	e := &Engine{
		g:       g,
		snapper: NewSnapper(g, opts.MaxSnapDistance),
		opts:    opts,
	}
	log.WithFields(logrus.Fields{
		"nodes":   g.NumNodes,
		"arcs":    g.NumEdges,
		"indexed": e.snapper.Len(),
	}).Info("routing engine ready")
	return e
}

// Graph returns the graph the engine routes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Stats returns the engine counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Queries: e.queries.Load(),
		Found:   e.found.Load(),
		NoRoute: e.noRoute.Load(),
		Failed:  e.failed.Load(),
		Settled: e.settled.Load(),
		Nodes:   e.g.NumNodes,
		Arcs:    e.g.NumEdges,
		Indexed: e.snapper.Len(),
	}
}

// Route computes the cheapest path between two points.
func (e *Engine) Route(ctx context.Context, req Request) (*RouteResult, error) {
	e.queries.Add(1)
	res, err := e.route(ctx, req)
	switch {
	case err == nil:
		e.found.Add(1)
	case errors.Is(err, ErrNoRoute):
		e.noRoute.Add(1)
	default:
		e.failed.Add(1)
	}
	return res, err
}

func (e *Engine) route(ctx context.Context, req Request) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alg, inspName, inspector, batteryOpts, err := e.resolve(req)
	if err != nil {
		return nil, err
	}

	// Step 1: Snap points to nearest nodes.
	startSnap, err := e.snapper.Snap(req.Start.Lat, req.Start.Lng)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	endSnap, err := e.snapper.Snap(req.End.Lat, req.End.Lng)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	q := &shortestpath.Query{
		Network:     e.g,
		Origin:      startSnap.Node,
		Destination: endSnap.Node,
		Inspector:   inspector,
	}
	if e.opts.TraceSearches {
		q.Observers = append(q.Observers, shortestpath.LogObserver{Entry: log.WithField("algorithm", alg.String())})
	}

	// Step 2: Run the driver. It polls ctx and stops once ctx is done.
	q.Stop = ctx.Err
	sol, err := shortestpath.Run(alg, q, batteryOpts...)
	if err != nil {
		if errors.Is(err, shortestpath.ErrInvalidQuery) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, err
	}
	e.settled.Add(int64(sol.Stats.Settled))
	if !sol.IsFeasible() {
		return nil, ErrNoRoute
	}

	// Step 3: Build geometry and totals from the arc sequence.
	path := sol.Path
	return &RouteResult{
		Algorithm:           alg.String(),
		Inspector:           inspName,
		Mode:                inspector.Mode().String(),
		Cost:                sol.Cost,
		TotalDistanceMeters: path.Length(),
		DurationSeconds:     path.MinimumTravelTime(),
		Nodes:               path.Nodes(),
		Segments:            e.buildSegments(path),
		Stats:               sol.Stats,
	}, nil
}

// resolve turns the request's names into a driver, an inspector and
// battery options, filling in engine defaults.
func (e *Engine) resolve(req Request) (shortestpath.Algorithm, string, shortestpath.ArcInspector, []shortestpath.BatteryOption, error) {
	algName := lo.Ternary(req.Algorithm == "", e.opts.DefaultAlgorithm, req.Algorithm)
	alg, err := shortestpath.ParseAlgorithm(algName)
	if err != nil {
		return 0, "", nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	inspName := lo.Ternary(req.Inspector == "", e.opts.DefaultInspector, req.Inspector)
	inspector, err := shortestpath.InspectorByName(inspName)
	if err != nil {
		return 0, "", nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if alg != shortestpath.AlgorithmBattery {
		return alg, inspName, inspector, nil, nil
	}
	if req.MaxRange < 0 || req.InitialRange < 0 {
		return 0, "", nil, nil, fmt.Errorf("%w: negative battery range", ErrInvalidRequest)
	}
	opts := []shortestpath.BatteryOption{
		shortestpath.WithMaxRange(lo.Ternary(req.MaxRange > 0, req.MaxRange, e.opts.MaxRange)),
		shortestpath.WithRechargeRoadTypes(e.opts.RechargeRoadTypes...),
	}
	if req.InitialRange > 0 {
		opts = append(opts, shortestpath.WithInitialRange(req.InitialRange))
	}
	return alg, inspName, inspector, opts, nil
}

// buildSegments converts the path's arcs into lat/lng runs, one per
// stretch of constant road type, including intermediate shape points.
func (e *Engine) buildSegments(path *shortestpath.Path) []Segment {
	g := e.g
	if path.IsEmpty() {
		pos := toLatLng(g.Position(path.Origin))
		return []Segment{{RoadType: graph.RoadUnknown.String(), Geometry: []LatLng{pos}}}
	}

	var segs []Segment
	for i, a := range path.Arcs {
		if i == 0 || a.RoadType != path.Arcs[i-1].RoadType {
			segs = append(segs, Segment{
				RoadType: a.RoadType.String(),
				Geometry: []LatLng{toLatLng(g.Position(a.From))},
			})
		}
		seg := &segs[len(segs)-1]
		seg.DistanceMeters += a.Length
		seg.Geometry = append(seg.Geometry, lo.Map(g.ArcGeometry(a.ID), func(p orb.Point, _ int) LatLng {
			return toLatLng(p)
		})...)
		seg.Geometry = append(seg.Geometry, toLatLng(g.Position(a.To)))
	}
	return segs
}

// RouteMany answers every request in parallel. The result and error slices
// are index-aligned with reqs; one failed request does not stop the others.
func (e *Engine) RouteMany(ctx context.Context, reqs []Request) ([]*RouteResult, []error) {
	results := make([]*RouteResult, len(reqs))
	errs := make([]error, len(reqs))

	started := time.Now()
	var g errgroup.Group
	g.SetLimit(e.opts.Parallelism)
	for i := range reqs {
		g.Go(func() error {
			results[i], errs[i] = e.Route(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(logrus.Fields{
		"requests": len(reqs),
		"failed":   lo.CountBy(errs, func(err error) bool { return err != nil }),
		"elapsed":  time.Since(started),
	}).Debug("batch routed")
	return results, errs
}
