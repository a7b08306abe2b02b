package routing

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/azybler/roadpath/pkg/geo"
	"github.com/azybler/roadpath/pkg/graph"
)

// DefaultMaxSnapDistance is the farthest, in meters, a query point may lie
// from the node it snaps to.
const DefaultMaxSnapDistance = 500.0

// First search radius in meters; doubled until the limit is reached.
const initialSnapRadius = 50.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult is a query point matched to a graph node.
type SnapResult struct {
	Node  uint32
	Point orb.Point // position of Node
	Dist  float64   // meters from the query point to Node
}

// Snapper provides nearest-node lookup over an R-tree of every node that
// has at least one arc.
type Snapper struct {
	tree    rtree.RTreeG[uint32]
	g       *graph.Graph
	maxDist float64
}

// NewSnapper indexes the nodes of g. A maxDist <= 0 selects
// DefaultMaxSnapDistance.
func NewSnapper(g *graph.Graph, maxDist float64) *Snapper {
	if maxDist <= 0 {
		maxDist = DefaultMaxSnapDistance
	}
	s := &Snapper{g: g, maxDist: maxDist}

	// Nodes with only incoming arcs are still valid destinations.
	linked := make([]bool, g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		if start < end {
			linked[u] = true
		}
		for e := start; e < end; e++ {
			linked[g.Head[e]] = true
		}
	}
	for u, ok := range linked {
		if !ok {
			continue
		}
		pt := [2]float64{g.NodeLon[u], g.NodeLat[u]}
		s.tree.Insert(pt, pt, uint32(u))
	}
	return s
}

// Len returns the number of indexed nodes.
func (s *Snapper) Len() int { return s.tree.Len() }

// MaxDistance returns the snapping limit in meters.
func (s *Snapper) MaxDistance() float64 { return s.maxDist }

// Snap finds the node nearest to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return SnapResult{}, ErrPointTooFar
	}
	p := geo.Point(lat, lng)

	for radius := math.Min(initialSnapRadius, s.maxDist); ; radius = math.Min(radius*2, s.maxDist) {
		best, found := s.nearestWithin(p, radius)
		if found {
			return best, nil
		}
		if radius >= s.maxDist {
			return SnapResult{}, ErrPointTooFar
		}
	}
}

// nearestWithin scans the box around p and keeps the closest node whose
// true distance does not exceed radius. Nodes in the box corners are
// farther than radius and are left for a wider pass.
func (s *Snapper) nearestWithin(p orb.Point, radius float64) (SnapResult, bool) {
	box := geo.BoundAround(p, radius)
	best := SnapResult{Dist: math.Inf(1)}
	found := false

	s.tree.Search(
		[2]float64{box.Min.Lon(), box.Min.Lat()},
		[2]float64{box.Max.Lon(), box.Max.Lat()},
		func(min, _ [2]float64, node uint32) bool {
			pt := orb.Point{min[0], min[1]}
			d := geo.Distance(p, pt)
			if d <= radius && (d < best.Dist || (d == best.Dist && node < best.Node)) {
				best = SnapResult{Node: node, Point: pt, Dist: d}
				found = true
			}
			return true
		},
	)
	return best, found
}
