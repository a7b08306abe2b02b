package shortestpath

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/azybler/roadpath/pkg/graph"
	"github.com/azybler/roadpath/pkg/pqueue"
)

// DefaultMaxRange is the battery capacity used when none is configured,
// in the inspector's cost unit.
const DefaultMaxRange = 200000

type batteryConfig struct {
	maxRange     float64
	initialRange float64
	initialSet   bool
	recharge     func(graph.Arc) bool
}

// BatteryOption configures Battery.
type BatteryOption func(*batteryConfig)

// WithMaxRange sets the range restored by a recharge.
func WithMaxRange(r float64) BatteryOption {
	return func(c *batteryConfig) { c.maxRange = r }
}

// WithInitialRange sets the range available at the origin. It defaults to
// the maximum range and may exceed it.
func WithInitialRange(r float64) BatteryOption {
	return func(c *batteryConfig) {
		c.initialRange = r
		c.initialSet = true
	}
}

// WithRecharge sets the predicate selecting arcs that recharge the
// battery once traversed.
func WithRecharge(pred func(graph.Arc) bool) BatteryOption {
	return func(c *batteryConfig) { c.recharge = pred }
}

// WithRechargeRoadTypes recharges on arcs of the given road types.
func WithRechargeRoadTypes(types ...graph.RoadType) BatteryOption {
	return WithRecharge(RechargeOnRoadTypes(types...))
}

// RechargeOnRoadTypes returns a recharge predicate matching road types.
func RechargeOnRoadTypes(types ...graph.RoadType) func(graph.Arc) bool {
	return func(a graph.Arc) bool {
		return lo.Contains(types, a.RoadType)
	}
}

func newBatteryConfig(opts []BatteryOption) (*batteryConfig, error) {
	c := &batteryConfig{
		maxRange: DefaultMaxRange,
		recharge: RechargeOnRoadTypes(graph.RoadMotorway),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.initialSet {
		c.initialRange = c.maxRange
	}
	if c.maxRange <= 0 || math.IsNaN(c.maxRange) {
		return nil, fmt.Errorf("%w: max range %v", ErrInvalidQuery, c.maxRange)
	}
	if c.initialRange < 0 || math.IsNaN(c.initialRange) {
		return nil, fmt.Errorf("%w: initial range %v", ErrInvalidQuery, c.initialRange)
	}
	if c.recharge == nil {
		return nil, fmt.Errorf("%w: nil recharge predicate", ErrInvalidQuery)
	}
	return c, nil
}

// Battery finds the cheapest path for a vehicle whose range drops by the
// cost of every arc it drives. An arc costing more than the remaining
// range cannot be taken. Traversing a recharge arc restores the maximum
// range.
//
// Each node keeps every label not dominated in both cost and remaining
// range, so a dearer path that arrives with more charge is still explored.
func Battery(q *Query, opts ...BatteryOption) (*Solution, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	cfg, err := newBatteryConfig(opts)
	if err != nil {
		return nil, err
	}
	return newBatterySearch(q, cfg).run()
}

type batterySearch struct {
	q     *Query
	cfg   *batteryConfig
	obs   Observer
	sets  map[uint32][]*label // live Pareto labels per node
	queue *pqueue.BinaryHeap[*label]
	stats Stats
}

func newBatterySearch(q *Query, cfg *batteryConfig) *batterySearch {
	return &batterySearch{
		q:     q,
		cfg:   cfg,
		obs:   observerFor(q.Observers),
		sets:  make(map[uint32][]*label),
		queue: pqueue.New(byCostThenRange),
	}
}

func (s *batterySearch) run() (*Solution, error) {
	started := time.Now()

	origin := newLabel(s.q.Origin, 0)
	origin.cost = 0
	origin.rangeLeft = s.cfg.initialRange
	s.stats.Labels++
	s.sets[s.q.Origin] = []*label{origin}
	s.queue.Insert(origin)
	s.obs.OriginProcessed(s.q.Origin)

	for !s.queue.IsEmpty() {
		if err := s.q.stopped(s.stats.Settled); err != nil {
			return nil, err
		}
		cur, err := s.queue.DeleteMin()
		if err != nil {
			return nil, err
		}
		cur.marked = true
		s.stats.Settled++
		s.obs.NodeMarked(cur.node)

		if cur.node == s.q.Destination {
			s.obs.DestinationReached(cur.node)
			return optimal(AlgorithmBattery, cur, s.stats, started), nil
		}

		for a := range s.q.Network.Successors(cur.node) {
			if !s.q.Inspector.IsAllowed(a) {
				continue
			}
			c, err := s.q.arcCost(a)
			if err != nil {
				return nil, err
			}
			rangeLeft := cur.rangeLeft - c
			if rangeLeft < 0 {
				continue
			}
			if s.cfg.recharge(a) {
				rangeLeft = s.cfg.maxRange
			}

			next := &label{
				node:      a.To,
				cost:      cur.cost + c,
				rangeLeft: rangeLeft,
				arc:       a,
				prev:      cur,
			}
			if err := s.offer(next); err != nil {
				return nil, err
			}
		}
	}

	return infeasible(AlgorithmBattery, s.stats, started), nil
}

// offer adds next to its node's Pareto set unless an existing label
// dominates it, dropping the labels next dominates.
func (s *batterySearch) offer(next *label) error {
	existing := s.sets[next.node]
	if lo.SomeBy(existing, func(l *label) bool { return l.dominates(next) }) {
		return nil
	}

	kept := existing[:0]
	for _, l := range existing {
		if !next.dominates(l) {
			kept = append(kept, l)
			continue
		}
		// Already extracted labels are no longer queued.
		if err := s.queue.Remove(l); err != nil && !errors.Is(err, pqueue.ErrElementNotFound) {
			return err
		}
		s.stats.Pruned++
	}

	next.seq = uint64(s.stats.Labels)
	s.stats.Labels++
	s.sets[next.node] = append(kept, next)
	s.queue.Insert(next)
	s.stats.Reached++
	s.obs.NodeReached(next.node)
	return nil
}
