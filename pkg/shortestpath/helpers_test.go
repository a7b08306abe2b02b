package shortestpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/roadpath/pkg/graph"
)

type testArc struct {
	from, to uint32
	length   float64
	road     graph.RoadType
}

func link(from, to uint32, length float64) testArc {
	return testArc{from: from, to: to, length: length, road: graph.RoadUnclassified}
}

func motorway(from, to uint32, length float64) testArc {
	return testArc{from: from, to: to, length: length, road: graph.RoadMotorway}
}

func residential(from, to uint32, length float64) testArc {
	return testArc{from: from, to: to, length: length, road: graph.RoadResidential}
}

// network builds a graph of n nodes placed at the same point, so straight
// line estimates are zero.
func network(t *testing.T, n int, arcs ...testArc) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for range n {
		b.AddNode(0, 0)
	}
	for _, a := range arcs {
		b.AddArc(a.from, a.to, a.length, graph.RoadInfo{RoadType: a.road, Access: graph.AccessAll})
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func inspector(t *testing.T, name string) ArcInspector {
	t.Helper()
	i, err := InspectorByName(name)
	require.NoError(t, err)
	return i
}

func lengthQuery(t *testing.T, g Network, origin, dest uint32) *Query {
	return &Query{
		Network:     g,
		Origin:      origin,
		Destination: dest,
		Inspector:   inspector(t, "all-length"),
	}
}

type driver struct {
	name string
	run  func(q *Query) (*Solution, error)
}

// settleDrivers returns the drivers that agree with Dijkstra on any
// query: A* with a zero or admissible estimate, and Battery with an
// unlimited range.
func settleDrivers() []driver {
	return []driver{
		{"dijkstra", Dijkstra},
		{"astar", AStar},
		{"battery-unlimited", func(q *Query) (*Solution, error) {
			return Battery(q, WithMaxRange(math.Inf(1)))
		}},
	}
}

// costInspector prices arcs with a fixed function.
type costInspector struct {
	cost func(graph.Arc) float64
}

func (c costInspector) IsAllowed(graph.Arc) bool { return true }
func (c costInspector) Cost(a graph.Arc) float64 { return c.cost(a) }
func (c costInspector) Mode() Mode               { return ModeLength }
func (c costInspector) MaximumSpeed() float64    { return 0 }

// recordingObserver keeps every event in order.
type recordingObserver struct {
	events []string
	nodes  []uint32
}

func (r *recordingObserver) add(ev string, node uint32) {
	r.events = append(r.events, ev)
	r.nodes = append(r.nodes, node)
}

func (r *recordingObserver) OriginProcessed(n uint32)    { r.add("origin", n) }
func (r *recordingObserver) NodeReached(n uint32)        { r.add("reached", n) }
func (r *recordingObserver) NodeMarked(n uint32)         { r.add("marked", n) }
func (r *recordingObserver) DestinationReached(n uint32) { r.add("destination", n) }
