package routing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/roadpath/pkg/graph"
)

func TestSnapExactNode(t *testing.T) {
	s := NewSnapper(testGraph(t), 0)

	for i := range testLons {
		res, err := s.Snap(testLat, testLons[i])
		require.NoError(t, err)
		assert.EqualValues(t, i, res.Node)
		assert.Zero(t, res.Dist)
		assert.Equal(t, testLons[i], res.Point.Lon())
	}
}

func TestSnapNearest(t *testing.T) {
	s := NewSnapper(testGraph(t), 0)

	tests := []struct {
		name     string
		lat, lng float64
		want     uint32
	}{
		{"just north of 2", testLat + 0.0003, 103.8021, 2},
		{"between 0 and 1, nearer 1", testLat, 103.8006, 1},
		// Beyond the first search radius.
		{"200m north of 0", testLat + 0.0018, 103.800, 0},
		{"west feeder", testLat - 0.0001, 103.7989, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Snap(tt.lat, tt.lng)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Node)
			assert.Positive(t, res.Dist)
			assert.LessOrEqual(t, res.Dist, DefaultMaxSnapDistance)
		})
	}
}

func TestSnapTooFar(t *testing.T) {
	s := NewSnapper(testGraph(t), 0)

	_, err := s.Snap(1.31, 103.8)
	assert.ErrorIs(t, err, ErrPointTooFar)

	// Node 5 has no arcs and is not indexed.
	_, err = s.Snap(2.0, 103.8)
	assert.ErrorIs(t, err, ErrPointTooFar)
	assert.Equal(t, 5, s.Len())

	_, err = s.Snap(math.NaN(), 103.8)
	assert.ErrorIs(t, err, ErrPointTooFar)
}

func TestSnapCustomLimit(t *testing.T) {
	s := NewSnapper(testGraph(t), 10)
	assert.Equal(t, 10.0, s.MaxDistance())

	_, err := s.Snap(testLat+0.0003, 103.802)
	assert.ErrorIs(t, err, ErrPointTooFar)

	res, err := s.Snap(testLat+0.00005, 103.802)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Node)
}

func TestSnapEmptyGraph(t *testing.T) {
	g, err := graph.NewBuilder().Build()
	require.NoError(t, err)

	s := NewSnapper(g, 0)
	assert.Zero(t, s.Len())
	_, err = s.Snap(0, 0)
	assert.ErrorIs(t, err, ErrPointTooFar)
}
