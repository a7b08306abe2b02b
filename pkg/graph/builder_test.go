package graph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	osmparser "github.com/azybler/roadpath/pkg/osm"
)

func residential(from, to osm.NodeID, length float64) osmparser.RawEdge {
	return osmparser.RawEdge{
		FromNodeID: from,
		ToNodeID:   to,
		Length:     length,
		Highway:    "residential",
		Car:        true,
		Foot:       true,
		Bicycle:    true,
	}
}

func TestBuildSimpleGraph(t *testing.T) {
	// Triangle: 100 -> 200 -> 300 -> 100
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			residential(100, 200, 1),
			residential(200, 300, 2),
			residential(300, 100, 3),
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g, err := Build(result)
	require.NoError(t, err)
	require.EqualValues(t, 3, g.NumNodes)
	require.EqualValues(t, 3, g.NumEdges)

	for i := uint32(0); i < g.NumNodes; i++ {
		start, end := g.EdgesFrom(i)
		assert.EqualValues(t, 1, end-start, "node %d", i)
	}

	var total float64
	for _, l := range g.Length {
		total += l
	}
	assert.Equal(t, 6.0, total)

	// Node indices follow first appearance.
	assert.Equal(t, orb.Point{103.0, 1.0}, g.Position(0))
	assert.Equal(t, orb.Point{103.0, 1.1}, g.Position(1))
}

func TestBuildEmptyGraph(t *testing.T) {
	result := &osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	}

	g, err := Build(result)
	require.NoError(t, err)
	assert.Zero(t, g.NumNodes)
	assert.Zero(t, g.NumEdges)
	assert.Equal(t, []uint32{0}, g.FirstOut)
}

func TestBuildAttributes(t *testing.T) {
	motorway := osmparser.RawEdge{FromNodeID: 1, ToNodeID: 2, Length: 500, Highway: "motorway", Car: true}
	tagged := osmparser.RawEdge{FromNodeID: 2, ToNodeID: 1, Length: 500, Highway: "primary", MaxSpeed: 80, Car: true, Foot: true}
	odd := osmparser.RawEdge{FromNodeID: 2, ToNodeID: 3, Length: 10, Highway: "bridleway", Foot: true}
	result := &osmparser.ParseResult{
		Edges:   []osmparser.RawEdge{motorway, tagged, odd},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1, 3: 1.2},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1, 3: 103.2},
	}

	g, err := Build(result)
	require.NoError(t, err)

	a := g.Arc(0)
	assert.Equal(t, RoadMotorway, a.RoadType)
	assert.Equal(t, 110.0, a.MaxSpeed, "default motorway speed")
	assert.Equal(t, AccessCar, a.Access)

	b := g.Arc(1)
	assert.Equal(t, RoadPrimary, b.RoadType)
	assert.Equal(t, 80.0, b.MaxSpeed)
	assert.Equal(t, AccessCar|AccessFoot, b.Access)

	c := g.Arc(2)
	assert.Equal(t, RoadUnknown, c.RoadType)
	assert.Equal(t, AccessFoot, c.Access)

	assert.Equal(t, 110.0, g.MaximumSpeed())
}

func TestBuildCSRInvariants(t *testing.T) {
	// Star graph: center -> A, center -> B, center -> C
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			residential(10, 20, 100),
			residential(10, 30, 200),
			residential(10, 40, 300),
			residential(20, 10, 100),
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 1.3},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 103.3},
	}

	g, err := Build(result)
	require.NoError(t, err)
	require.EqualValues(t, 4, g.NumNodes)
	require.EqualValues(t, 4, g.NumEdges)

	assert.NoError(t, validateCSR(g.FirstOut, g.Head, g.NumNodes))
}

func TestBuilderAssignsIDsInTailOrder(t *testing.T) {
	b := NewBuilder()
	n0 := b.AddNode(0, 0)
	n1 := b.AddNode(0, 0.01)
	n2 := b.AddNode(0.01, 0)
	b.AddArc(n2, n0, 3, RoadInfo{})
	b.AddArc(n0, n1, 1, RoadInfo{})
	b.AddArc(n0, n2, 2, RoadInfo{})
	b.AddArc(n1, n2, 4, RoadInfo{})
	assert.Equal(t, 4, b.NumArcs())
	assert.EqualValues(t, 3, b.NumNodes())

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 2, 3, 4}, g.FirstOut)
	assert.Equal(t, []float64{1, 2, 4, 3}, g.Length)
	for e := uint32(0); e < g.NumEdges; e++ {
		assert.Equal(t, e, g.Arc(e).ID)
	}
	assert.Equal(t, n2, g.Arc(3).From)
	assert.Equal(t, n0, g.Arc(3).To)
}

func TestBuilderAddRoad(t *testing.T) {
	b := NewBuilder()
	u := b.AddNode(0, 0)
	v := b.AddNode(0, 0.02)
	shape := []orb.Point{{0.005, 0}, {0.015, 0}}
	b.AddRoad(u, v, 2200, RoadInfo{RoadType: RoadSecondary, Shape: shape})

	g, err := b.Build()
	require.NoError(t, err)
	require.EqualValues(t, 2, g.NumEdges)

	fwd, bwd := g.Arc(0), g.Arc(1)
	assert.Equal(t, u, fwd.From)
	assert.Equal(t, v, bwd.From)
	assert.Equal(t, fwd.Length, bwd.Length)
	assert.Equal(t, shape, g.ArcGeometry(0))
	assert.Equal(t, []orb.Point{{0.015, 0}, {0.005, 0}}, g.ArcGeometry(1))
}

func TestBuilderRejectsInvalidArcs(t *testing.T) {
	tests := []struct {
		name   string
		from   uint32
		to     uint32
		length float64
		speed  float64
	}{
		{name: "unknown tail", from: 5, to: 0, length: 1},
		{name: "unknown head", from: 0, to: 2, length: 1},
		{name: "negative length", from: 0, to: 1, length: -1},
		{name: "negative speed", from: 0, to: 1, length: 1, speed: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.AddNode(0, 0)
			b.AddNode(0, 1)
			b.AddArc(tt.from, tt.to, tt.length, RoadInfo{MaxSpeed: tt.speed})
			_, err := b.Build()
			assert.ErrorIs(t, err, ErrInvalidArc)
		})
	}
}
