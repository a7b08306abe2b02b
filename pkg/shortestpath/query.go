package shortestpath

import (
	"errors"
	"fmt"
	"iter"

	"github.com/paulmach/orb"

	"github.com/azybler/roadpath/pkg/graph"
)

var (
	// ErrInvalidQuery is returned when a query is missing its network or
	// inspector, or names a node the network does not have.
	ErrInvalidQuery = errors.New("shortestpath: invalid query")
	// ErrNegativeCost is returned when the inspector prices an arc below zero.
	ErrNegativeCost = errors.New("shortestpath: negative arc cost")
)

// Network is the read-only view of the road graph the drivers search.
// *graph.Graph implements it.
type Network interface {
	NodeCount() uint32
	Successors(u uint32) iter.Seq[graph.Arc]
	Position(u uint32) orb.Point
	// MaximumSpeed is the highest speed limit on the network in km/h.
	MaximumSpeed() float64
}

var _ Network = (*graph.Graph)(nil)

// Query describes one origin-destination search.
type Query struct {
	Network     Network
	Origin      uint32
	Destination uint32
	Inspector   ArcInspector
	Observers   []Observer

	// Stop, when set, is polled every stopCheckInterval settled labels. A
	// non-nil error aborts the search and is returned as is.
	Stop func() error
}

const stopCheckInterval = 256

// stopped polls q.Stop on every stopCheckInterval-th settle.
func (q *Query) stopped(settled int) error {
	if q.Stop == nil || settled%stopCheckInterval != 0 {
		return nil
	}
	return q.Stop()
}

func (q *Query) validate() error {
	if q == nil {
		return fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}
	if q.Network == nil {
		return fmt.Errorf("%w: nil network", ErrInvalidQuery)
	}
	if q.Inspector == nil {
		return fmt.Errorf("%w: nil arc inspector", ErrInvalidQuery)
	}
	n := q.Network.NodeCount()
	if q.Origin >= n {
		return fmt.Errorf("%w: origin %d not in network of %d nodes", ErrInvalidQuery, q.Origin, n)
	}
	if q.Destination >= n {
		return fmt.Errorf("%w: destination %d not in network of %d nodes", ErrInvalidQuery, q.Destination, n)
	}
	return nil
}

// maximumSpeed returns the speed in km/h used to turn distances into time
// bounds: the inspector's own limit if it has one, else the network's.
func (q *Query) maximumSpeed() float64 {
	if s := q.Inspector.MaximumSpeed(); s > 0 {
		return s
	}
	return q.Network.MaximumSpeed()
}

// arcCost prices a, rejecting negative costs.
func (q *Query) arcCost(a graph.Arc) (float64, error) {
	c := q.Inspector.Cost(a)
	if c < 0 {
		return 0, fmt.Errorf("%w: arc %d (%d->%d) costs %v", ErrNegativeCost, a.ID, a.From, a.To, c)
	}
	return c, nil
}
