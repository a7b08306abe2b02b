package shortestpath

import (
	"errors"
	"time"

	"github.com/azybler/roadpath/pkg/pqueue"
)

// Dijkstra finds the cheapest path under q.Inspector. Each node holds one
// label that is settled when first extracted from the queue.
func Dijkstra(q *Query) (*Solution, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return settleSearch(q, AlgorithmDijkstra, byCost, nil)
}

// settleSearch is the single-label search shared by Dijkstra and A*.
// estimate, when set, is evaluated once per label at creation.
func settleSearch(q *Query, alg Algorithm, less func(a, b *label) bool, estimate func(node uint32) float64) (*Solution, error) {
	started := time.Now()
	obs := observerFor(q.Observers)
	labels := make([]*label, q.Network.NodeCount())
	queue := pqueue.New(less)
	var stats Stats

	create := func(node uint32) *label {
		l := newLabel(node, uint64(stats.Labels))
		if estimate != nil {
			l.estimate = estimate(node)
		}
		labels[node] = l
		stats.Labels++
		return l
	}

	origin := create(q.Origin)
	origin.cost = 0
	queue.Insert(origin)
	obs.OriginProcessed(q.Origin)

	for !queue.IsEmpty() {
		if err := q.stopped(stats.Settled); err != nil {
			return nil, err
		}
		cur, err := queue.DeleteMin()
		if err != nil {
			return nil, err
		}
		cur.marked = true
		stats.Settled++
		obs.NodeMarked(cur.node)

		if cur.node == q.Destination {
			obs.DestinationReached(cur.node)
			return optimal(alg, cur, stats, started), nil
		}

		for a := range q.Network.Successors(cur.node) {
			if !q.Inspector.IsAllowed(a) {
				continue
			}
			next := labels[a.To]
			if next != nil && next.marked {
				continue
			}
			c, err := q.arcCost(a)
			if err != nil {
				return nil, err
			}
			if next == nil {
				next = create(a.To)
			}

			candidate := cur.cost + c
			if candidate >= next.cost {
				continue
			}
			// Not queued yet on first discovery.
			if err := queue.Remove(next); err != nil && !errors.Is(err, pqueue.ErrElementNotFound) {
				return nil, err
			}
			next.cost = candidate
			next.arc = a
			next.prev = cur
			queue.Insert(next)
			stats.Reached++
			obs.NodeReached(a.To)
		}
	}

	return infeasible(alg, stats, started), nil
}
