package graph

import (
	"iter"
	"sort"

	"github.com/paulmach/orb"
)

// Graph represents a directed road network in CSR (Compressed Sparse Row)
// format. Edge index e is the stable identity of an arc.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32   // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32   // len: NumEdges; target node for each edge
	Length   []float64  // len: NumEdges; length in meters
	MaxSpeed []float64  // len: NumEdges; speed limit in km/h
	RoadType []RoadType // len: NumEdges
	Access   []Access   // len: NumEdges
	NodeLat  []float64  // len: NumNodes
	NodeLon  []float64  // len: NumNodes

	// Edge geometry: intermediate shape nodes for rendering.
	// GeoFirstOut[i]..GeoFirstOut[i+1] indexes into GeoShapeLat/Lon for edge i.
	GeoFirstOut []uint32  // len: NumEdges + 1
	GeoShapeLat []float64 // flattened intermediate lat coords
	GeoShapeLon []float64 // flattened intermediate lon coords

	topSpeed float64
}

// Arc is a read-only view of one directed edge.
type Arc struct {
	ID       uint32
	From     uint32
	To       uint32
	Length   float64 // meters
	MaxSpeed float64 // km/h
	RoadType RoadType
	Access   Access
}

// Speed returns the arc's speed limit in km/h, or the road type default
// when the arc carries none.
func (a Arc) Speed() float64 {
	if a.MaxSpeed > 0 {
		return a.MaxSpeed
	}
	return a.RoadType.DefaultSpeed()
}

// MinimumTravelTime returns the time in seconds needed to drive the arc at
// its speed limit.
func (a Arc) MinimumTravelTime() float64 {
	return a.TravelTime(a.Speed())
}

// TravelTime returns the time in seconds needed to traverse the arc at
// speedKmh.
func (a Arc) TravelTime(speedKmh float64) float64 {
	return a.Length / (speedKmh / 3.6)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() uint32 { return g.NumNodes }

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Successors yields the arcs leaving u.
func (g *Graph) Successors(u uint32) iter.Seq[Arc] {
	return func(yield func(Arc) bool) {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if !yield(g.arc(u, e)) {
				return
			}
		}
	}
}

// Arc returns the arc with the given edge index.
func (g *Graph) Arc(e uint32) Arc {
	// The tail is the last node whose first edge is <= e.
	u := sort.Search(int(g.NumNodes), func(i int) bool {
		return g.FirstOut[i+1] > e
	})
	return g.arc(uint32(u), e)
}

func (g *Graph) arc(u, e uint32) Arc {
	a := Arc{
		ID:     e,
		From:   u,
		To:     g.Head[e],
		Length: g.Length[e],
	}
	if g.MaxSpeed != nil {
		a.MaxSpeed = g.MaxSpeed[e]
	}
	if g.RoadType != nil {
		a.RoadType = g.RoadType[e]
	}
	if g.Access != nil {
		a.Access = g.Access[e]
	} else {
		a.Access = AccessAll
	}
	return a
}

// Position returns the coordinates of node u.
func (g *Graph) Position(u uint32) orb.Point {
	return orb.Point{g.NodeLon[u], g.NodeLat[u]}
}

// MaximumSpeed returns the highest speed limit of any arc in km/h.
func (g *Graph) MaximumSpeed() float64 {
	return g.topSpeed
}

// ArcGeometry returns the intermediate shape points of edge e, excluding
// the end nodes.
func (g *Graph) ArcGeometry(e uint32) []orb.Point {
	if g.GeoFirstOut == nil || e+1 >= uint32(len(g.GeoFirstOut)) {
		return nil
	}
	start, end := g.GeoFirstOut[e], g.GeoFirstOut[e+1]
	if start == end {
		return nil
	}
	pts := make([]orb.Point, 0, end-start)
	for k := start; k < end; k++ {
		pts = append(pts, orb.Point{g.GeoShapeLon[k], g.GeoShapeLat[k]})
	}
	return pts
}

// index computes derived fields after the CSR arrays are populated.
func (g *Graph) index() {
	g.topSpeed = 0
	for e, s := range g.MaxSpeed {
		if s <= 0 && e < len(g.RoadType) {
			s = g.RoadType[e].DefaultSpeed()
		}
		if s > g.topSpeed {
			g.topSpeed = s
		}
	}
}
