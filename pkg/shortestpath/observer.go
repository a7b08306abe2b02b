package shortestpath

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Observer is notified as a search progresses. Observers must not modify
// the network; they cannot change the outcome of a search.
type Observer interface {
	// OriginProcessed fires once the origin label is queued.
	OriginProcessed(node uint32)
	// NodeReached fires when a node gets a new or cheaper label.
	NodeReached(node uint32)
	// NodeMarked fires when a label is extracted from the queue.
	NodeMarked(node uint32)
	// DestinationReached fires when the destination is extracted.
	DestinationReached(node uint32)
}

// NoopObserver ignores every event. Embed it to implement only some hooks.
type NoopObserver struct{}

func (NoopObserver) OriginProcessed(uint32)    {}
func (NoopObserver) NodeReached(uint32)        {}
func (NoopObserver) NodeMarked(uint32)         {}
func (NoopObserver) DestinationReached(uint32) {}

// MultiObserver fans events out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) OriginProcessed(node uint32) {
	for _, o := range m {
		o.OriginProcessed(node)
	}
}

func (m MultiObserver) NodeReached(node uint32) {
	for _, o := range m {
		o.NodeReached(node)
	}
}

func (m MultiObserver) NodeMarked(node uint32) {
	for _, o := range m {
		o.NodeMarked(node)
	}
}

func (m MultiObserver) DestinationReached(node uint32) {
	for _, o := range m {
		o.DestinationReached(node)
	}
}

// StatsObserver counts events. It is safe to share between concurrent
// searches.
type StatsObserver struct {
	reached atomic.Int64
	marked  atomic.Int64
	done    atomic.Int64
}

func (s *StatsObserver) OriginProcessed(uint32)    {}
func (s *StatsObserver) NodeReached(uint32)        { s.reached.Add(1) }
func (s *StatsObserver) NodeMarked(uint32)         { s.marked.Add(1) }
func (s *StatsObserver) DestinationReached(uint32) { s.done.Add(1) }

// Reached returns how many reach events were seen.
func (s *StatsObserver) Reached() int64 { return s.reached.Load() }

// Marked returns how many mark events were seen.
func (s *StatsObserver) Marked() int64 { return s.marked.Load() }

// Completed returns how many searches reached their destination.
func (s *StatsObserver) Completed() int64 { return s.done.Load() }

// LogObserver writes search events at debug level.
type LogObserver struct {
	Entry *logrus.Entry
}

func (l LogObserver) entry() *logrus.Entry {
	if l.Entry != nil {
		return l.Entry
	}
	return log
}

func (l LogObserver) OriginProcessed(node uint32) {
	l.entry().WithField("node", node).Debug("origin processed")
}

func (l LogObserver) NodeReached(node uint32) {
	l.entry().WithField("node", node).Trace("node reached")
}

func (l LogObserver) NodeMarked(node uint32) {
	l.entry().WithField("node", node).Trace("node marked")
}

func (l LogObserver) DestinationReached(node uint32) {
	l.entry().WithField("node", node).Debug("destination reached")
}

func observerFor(obs []Observer) Observer {
	switch len(obs) {
	case 0:
		return NoopObserver{}
	case 1:
		return obs[0]
	default:
		return MultiObserver(obs)
	}
}
