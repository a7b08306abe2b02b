package shortestpath

import (
	"github.com/azybler/roadpath/pkg/geo"
)

// AStar finds the same optimum as Dijkstra but orders the queue by cost
// plus the straight-line distance to the destination. In ModeTime the
// distance is divided by the maximum speed so the estimate stays a lower
// bound on travel time.
//
// The result is optimal only if no arc is cheaper than the estimate
// across it, which holds when arc lengths are at least the great-circle
// distance between their ends.
func AStar(q *Query) (*Solution, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return settleSearch(q, AlgorithmAStar, byCostAndEstimate, q.heuristic())
}

// heuristic returns the per-node lower bound on the remaining cost.
func (q *Query) heuristic() func(node uint32) float64 {
	target := q.Network.Position(q.Destination)
	dist := func(node uint32) float64 {
		return geo.Distance(q.Network.Position(node), target)
	}

	if q.Inspector.Mode() != ModeTime {
		return dist
	}
	speed := q.maximumSpeed()
	if speed <= 0 {
		// No speed bound known: fall back to a zero estimate.
		return func(uint32) float64 { return 0 }
	}
	mps := speed / 3.6
	return func(node uint32) float64 {
		return dist(node) / mps
	}
}
