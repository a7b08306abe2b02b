package shortestpath

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the outcome of a search.
type Status uint8

const (
	StatusInfeasible Status = iota
	StatusOptimal
)

func (s Status) String() string {
	switch s {
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusOptimal:
		return "OPTIMAL"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Stats describes the work a search did.
type Stats struct {
	Labels  int // labels created
	Reached int // label improvements pushed to the queue
	Settled int // labels extracted from the queue
	Pruned  int // battery labels dropped as dominated
	Elapsed time.Duration
}

// Solution is the result of a search. Path is nil unless Status is
// StatusOptimal.
type Solution struct {
	Status    Status
	Path      *Path
	Cost      float64 // in the inspector's unit
	Algorithm Algorithm
	Stats     Stats
}

func (s *Solution) IsFeasible() bool { return s.Status == StatusOptimal }

func (s *Solution) String() string {
	if s.Status != StatusOptimal {
		return fmt.Sprintf("%s %s", s.Algorithm, s.Status)
	}
	return fmt.Sprintf("%s %s cost=%g arcs=%d", s.Algorithm, s.Status, s.Cost, len(s.Path.Arcs))
}

func optimal(alg Algorithm, dest *label, stats Stats, started time.Time) *Solution {
	stats.Elapsed = time.Since(started)
	sol := &Solution{
		Status:    StatusOptimal,
		Path:      reconstruct(dest),
		Cost:      dest.cost,
		Algorithm: alg,
		Stats:     stats,
	}
	sol.logDone()
	return sol
}

func infeasible(alg Algorithm, stats Stats, started time.Time) *Solution {
	stats.Elapsed = time.Since(started)
	sol := &Solution{Status: StatusInfeasible, Algorithm: alg, Stats: stats}
	sol.logDone()
	return sol
}

func (s *Solution) logDone() {
	log.WithFields(logrus.Fields{
		"algorithm": s.Algorithm.String(),
		"status":    s.Status.String(),
		"cost":      s.Cost,
		"settled":   s.Stats.Settled,
		"elapsed":   s.Stats.Elapsed,
	}).Debug("search finished")
}
