package shortestpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"dijkstra", AlgorithmDijkstra},
		{"Dijkstra", AlgorithmDijkstra},
		{"astar", AlgorithmAStar},
		{" A* ", AlgorithmAStar},
		{"BATTERY", AlgorithmBattery},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseAlgorithm("bellman-ford")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	assert.Equal(t, []string{"dijkstra", "astar", "battery"}, AlgorithmNames())
	for _, name := range AlgorithmNames() {
		got, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.Equal(t, name, got.String())
	}
	assert.Equal(t, "Algorithm(9)", Algorithm(9).String())
}

func TestRunDispatches(t *testing.T) {
	g := network(t, 3, link(0, 1, 10), link(1, 2, 5))
	q := lengthQuery(t, g, 0, 2)

	for _, a := range []Algorithm{AlgorithmDijkstra, AlgorithmAStar, AlgorithmBattery} {
		sol, err := Run(a, q)
		require.NoError(t, err)
		assert.Equal(t, a, sol.Algorithm)
		assert.Equal(t, 15.0, sol.Cost)
	}

	// Battery options reach the battery driver only.
	sol, err := Run(AlgorithmBattery, q, WithMaxRange(12))
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	sol, err = Run(AlgorithmDijkstra, q, WithMaxRange(12))
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)

	_, err = Run(Algorithm(42), q)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
