package shortestpath

import (
	"math"

	"github.com/azybler/roadpath/pkg/graph"
)

// label is the search state of one node, or of one (node, range) pair in
// the battery search. prev is nil only for the origin label.
type label struct {
	node      uint32
	cost      float64
	estimate  float64 // A* lower bound to the destination, fixed at creation
	rangeLeft float64 // battery search only
	arc       graph.Arc
	prev      *label
	marked    bool
	seq       uint64 // discovery order, the final tie-breaker
}

func newLabel(node uint32, seq uint64) *label {
	return &label{node: node, cost: math.Inf(1), seq: seq}
}

func byCost(a, b *label) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.seq < b.seq
}

// byCostAndEstimate prefers the label closer to the destination when the
// totals tie.
func byCostAndEstimate(a, b *label) bool {
	ta, tb := a.cost+a.estimate, b.cost+b.estimate
	if ta != tb {
		return ta < tb
	}
	if a.estimate != b.estimate {
		return a.estimate < b.estimate
	}
	return a.seq < b.seq
}

func byCostThenRange(a, b *label) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	if a.rangeLeft != b.rangeLeft {
		return a.rangeLeft > b.rangeLeft
	}
	return a.seq < b.seq
}

// dominates reports whether a is at least as good as b in both cost and
// remaining range.
func (a *label) dominates(b *label) bool {
	return a.cost <= b.cost && a.rangeLeft >= b.rangeLeft
}
