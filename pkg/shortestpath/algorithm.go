package shortestpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm and Run.
var ErrUnknownAlgorithm = errors.New("shortestpath: unknown algorithm")

// Algorithm selects a search driver.
type Algorithm uint8

const (
	AlgorithmDijkstra Algorithm = iota
	AlgorithmAStar
	AlgorithmBattery
)

var algorithmNames = map[Algorithm]string{
	AlgorithmDijkstra: "dijkstra",
	AlgorithmAStar:    "astar",
	AlgorithmBattery:  "battery",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// AlgorithmNames returns the names of every driver in dispatch order.
func AlgorithmNames() []string {
	return []string{AlgorithmDijkstra.String(), AlgorithmAStar.String(), AlgorithmBattery.String()}
}

// ParseAlgorithm accepts the names returned by String, case-insensitively,
// plus "a*".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra":
		return AlgorithmDijkstra, nil
	case "astar", "a*":
		return AlgorithmAStar, nil
	case "battery":
		return AlgorithmBattery, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Run dispatches q to the driver for alg. Battery options are ignored by
// the other drivers.
func Run(alg Algorithm, q *Query, opts ...BatteryOption) (*Solution, error) {
	switch alg {
	case AlgorithmDijkstra:
		return Dijkstra(q)
	case AlgorithmAStar:
		return AStar(q)
	case AlgorithmBattery:
		return Battery(q, opts...)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
}
