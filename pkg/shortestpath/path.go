package shortestpath

import (
	"slices"

	"github.com/samber/lo"

	"github.com/azybler/roadpath/pkg/graph"
)

// Path is an ordered sequence of arcs from Origin. An empty path means the
// origin is the destination.
type Path struct {
	Origin uint32
	Arcs   []graph.Arc
}

// reconstruct walks the predecessor chain of dest back to the origin.
func reconstruct(dest *label) *Path {
	var arcs []graph.Arc
	l := dest
	for ; l.prev != nil; l = l.prev {
		arcs = append(arcs, l.arc)
	}
	slices.Reverse(arcs)
	return &Path{Origin: l.node, Arcs: arcs}
}

func (p *Path) IsEmpty() bool { return len(p.Arcs) == 0 }

// Destination returns the last node of the path.
func (p *Path) Destination() uint32 {
	if len(p.Arcs) == 0 {
		return p.Origin
	}
	return p.Arcs[len(p.Arcs)-1].To
}

// Nodes returns the visited nodes including both ends.
func (p *Path) Nodes() []uint32 {
	nodes := make([]uint32, 0, len(p.Arcs)+1)
	nodes = append(nodes, p.Origin)
	for _, a := range p.Arcs {
		nodes = append(nodes, a.To)
	}
	return nodes
}

// Length returns the total length in meters.
func (p *Path) Length() float64 {
	return lo.SumBy(p.Arcs, func(a graph.Arc) float64 { return a.Length })
}

// Cost sums fn over the arcs.
func (p *Path) Cost(fn func(graph.Arc) float64) float64 {
	return lo.SumBy(p.Arcs, fn)
}

// TravelTime returns seconds needed to drive the path at speedKmh.
func (p *Path) TravelTime(speedKmh float64) float64 {
	return p.Cost(func(a graph.Arc) float64 { return a.TravelTime(speedKmh) })
}

// MinimumTravelTime returns seconds needed to drive every arc at its speed
// limit.
func (p *Path) MinimumTravelTime() float64 {
	return p.Cost(graph.Arc.MinimumTravelTime)
}

// IsValid reports whether the arcs are contiguous and start at Origin.
func (p *Path) IsValid() bool {
	at := p.Origin
	for _, a := range p.Arcs {
		if a.From != at {
			return false
		}
		at = a.To
	}
	return true
}
