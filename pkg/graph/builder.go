package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	osmparser "github.com/azybler/roadpath/pkg/osm"
)

// ErrInvalidArc is returned by Builder.Build when an arc references an
// unknown node or carries an unusable length.
var ErrInvalidArc = errors.New("graph: invalid arc")

// RoadInfo describes the road an arc belongs to. Zero MaxSpeed and zero
// Access fall back to the road type defaults.
type RoadInfo struct {
	RoadType RoadType
	MaxSpeed float64 // km/h
	Access   Access
	Shape    []orb.Point // intermediate geometry, excluding end nodes
}

type pendingArc struct {
	from, to uint32
	length   float64
	info     RoadInfo
}

// Builder assembles a Graph node by node. Arc IDs are assigned by Build in
// CSR order: arcs are grouped by tail node, keeping insertion order within
// a node.
type Builder struct {
	lat, lon []float64
	arcs     []pendingArc
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddNode adds a node and returns its index.
func (b *Builder) AddNode(lat, lon float64) uint32 {
	b.lat = append(b.lat, lat)
	b.lon = append(b.lon, lon)
	return uint32(len(b.lat) - 1)
}

// AddArc adds a directed arc of the given length in meters.
func (b *Builder) AddArc(from, to uint32, length float64, info RoadInfo) {
	b.arcs = append(b.arcs, pendingArc{from: from, to: to, length: length, info: info})
}

// AddRoad adds arcs in both directions. The reverse arc gets the shape
// reversed.
func (b *Builder) AddRoad(u, v uint32, length float64, info RoadInfo) {
	b.AddArc(u, v, length, info)
	rev := info
	if len(info.Shape) > 0 {
		rev.Shape = make([]orb.Point, len(info.Shape))
		for i, p := range info.Shape {
			rev.Shape[len(info.Shape)-1-i] = p
		}
	}
	b.AddArc(v, u, length, rev)
}

func (b *Builder) NumNodes() uint32 { return uint32(len(b.lat)) }

func (b *Builder) NumArcs() int { return len(b.arcs) }

// Build validates the collected arcs and produces the CSR graph.
func (b *Builder) Build() (*Graph, error) {
	numNodes := uint32(len(b.lat))
	for i, a := range b.arcs {
		if a.from >= numNodes || a.to >= numNodes {
			return nil, fmt.Errorf("%w: arc %d (%d->%d) references node outside [0,%d)", ErrInvalidArc, i, a.from, a.to, numNodes)
		}
		if a.length < 0 || math.IsNaN(a.length) || math.IsInf(a.length, 0) {
			return nil, fmt.Errorf("%w: arc %d has length %v", ErrInvalidArc, i, a.length)
		}
		if a.info.MaxSpeed < 0 || math.IsNaN(a.info.MaxSpeed) {
			return nil, fmt.Errorf("%w: arc %d has speed %v", ErrInvalidArc, i, a.info.MaxSpeed)
		}
	}

	arcs := make([]pendingArc, len(b.arcs))
	copy(arcs, b.arcs)
	sort.SliceStable(arcs, func(i, j int) bool {
		return arcs[i].from < arcs[j].from
	})

	numEdges := uint32(len(arcs))
	g := &Graph{
		NumNodes:    numNodes,
		NumEdges:    numEdges,
		FirstOut:    make([]uint32, numNodes+1),
		Head:        make([]uint32, numEdges),
		Length:      make([]float64, numEdges),
		MaxSpeed:    make([]float64, numEdges),
		RoadType:    make([]RoadType, numEdges),
		Access:      make([]Access, numEdges),
		NodeLat:     append([]float64(nil), b.lat...),
		NodeLon:     append([]float64(nil), b.lon...),
		GeoFirstOut: make([]uint32, numEdges+1),
	}

	for i, a := range arcs {
		g.Head[i] = a.to
		g.Length[i] = a.length
		g.RoadType[i] = a.info.RoadType
		g.MaxSpeed[i] = a.info.MaxSpeed
		if g.MaxSpeed[i] == 0 {
			g.MaxSpeed[i] = a.info.RoadType.DefaultSpeed()
		}
		g.Access[i] = a.info.Access
		if g.Access[i] == AccessNone {
			g.Access[i] = a.info.RoadType.DefaultAccess()
		}
		g.GeoFirstOut[i] = uint32(len(g.GeoShapeLat))
		for _, p := range a.info.Shape {
			g.GeoShapeLat = append(g.GeoShapeLat, p.Lat())
			g.GeoShapeLon = append(g.GeoShapeLon, p.Lon())
		}
		g.FirstOut[a.from+1]++
	}
	g.GeoFirstOut[numEdges] = uint32(len(g.GeoShapeLat))

	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		g.FirstOut[i] += g.FirstOut[i-1]
	}

	g.index()
	return g, nil
}

// Build creates a CSR Graph from parsed OSM edges.
func Build(result *osmparser.ParseResult) (*Graph, error) {
	edges := result.Edges
	b := NewBuilder()
	if len(edges) == 0 {
		return b.Build()
	}

	// Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := b.AddNode(result.NodeLat[id], result.NodeLon[id])
		nodeSet[id] = idx
		return idx
	}

	var unknown int
	for i := range edges {
		e := &edges[i]
		from := addNode(e.FromNodeID)
		to := addNode(e.ToNodeID)

		rt, ok := ParseRoadType(e.Highway)
		if !ok {
			unknown++
		}
		info := RoadInfo{
			RoadType: rt,
			MaxSpeed: e.MaxSpeed,
			Access:   edgeAccess(e),
		}
		for k := range e.ShapeLats {
			info.Shape = append(info.Shape, orb.Point{e.ShapeLons[k], e.ShapeLats[k]})
		}
		b.AddArc(from, to, e.Length, info)
	}
	if unknown > 0 {
		log.WithField("arcs", unknown).Warn("arcs with unrecognised highway type")
	}

	return b.Build()
}

func edgeAccess(e *osmparser.RawEdge) Access {
	var a Access
	if e.Car {
		a |= AccessCar
	}
	if e.Foot {
		a |= AccessFoot
	}
	if e.Bicycle {
		a |= AccessBicycle
	}
	return a
}
