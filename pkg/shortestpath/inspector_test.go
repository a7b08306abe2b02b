package shortestpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/roadpath/pkg/graph"
)

func TestInspectorCatalogue(t *testing.T) {
	names := InspectorNames()
	assert.Equal(t, []string{"all-length", "car-length", "car-time", "foot-time", "all-time"}, names)
	assert.Len(t, Inspectors(), len(names))
	assert.Contains(t, names, DefaultInspector)

	for _, name := range names {
		i, err := InspectorByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, i.(interface{ String() string }).String())
	}

	_, err := InspectorByName("bike-time")
	assert.ErrorIs(t, err, ErrUnknownInspector)
}

func TestInspectorFilters(t *testing.T) {
	footway := graph.Arc{Length: 100, MaxSpeed: 5, Access: graph.AccessFoot}
	motorway := graph.Arc{Length: 100, MaxSpeed: 110, Access: graph.AccessCar}
	street := graph.Arc{Length: 100, MaxSpeed: 30, Access: graph.AccessAll}
	closed := graph.Arc{Length: 100, Access: graph.AccessNone}

	tests := []struct {
		name    string
		allowed []graph.Arc
		denied  []graph.Arc
	}{
		{"all-length", []graph.Arc{footway, motorway, street, closed}, nil},
		{"all-time", []graph.Arc{footway, motorway, street, closed}, nil},
		{"car-length", []graph.Arc{motorway, street}, []graph.Arc{footway, closed}},
		{"car-time", []graph.Arc{motorway, street}, []graph.Arc{footway, closed}},
		{"foot-time", []graph.Arc{footway, street}, []graph.Arc{motorway, closed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := inspector(t, tt.name)
			for _, a := range tt.allowed {
				assert.True(t, i.IsAllowed(a), "%+v", a)
			}
			for _, a := range tt.denied {
				assert.False(t, i.IsAllowed(a), "%+v", a)
			}
		})
	}
}

func TestInspectorCosts(t *testing.T) {
	street := graph.Arc{Length: 1000, MaxSpeed: 36}
	steps := graph.Arc{Length: 30, MaxSpeed: 3}

	length := inspector(t, "car-length")
	assert.Equal(t, ModeLength, length.Mode())
	assert.Equal(t, 1000.0, length.Cost(street))

	car := inspector(t, "car-time")
	assert.Equal(t, ModeTime, car.Mode())
	assert.Zero(t, car.MaximumSpeed())
	assert.InDelta(t, 100, car.Cost(street), 1e-9)

	foot := inspector(t, "foot-time")
	assert.Equal(t, 5.0, foot.MaximumSpeed())
	assert.InDelta(t, 1000/(5/3.6), foot.Cost(street), 1e-9, "capped at walking speed")
	assert.InDelta(t, 36, foot.Cost(steps), 1e-9, "slower than walking speed")

	// Arcs without a speed limit are priced at their road type's default.
	assert.InDelta(t, 1000/(5/3.6), foot.Cost(graph.Arc{Length: 1000}), 1e-9)
	assert.InDelta(t, 120, car.Cost(graph.Arc{Length: 1000}), 1e-9)
	assert.InDelta(t, 36, car.Cost(graph.Arc{Length: 1100, RoadType: graph.RoadMotorway}), 1e-9)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "LENGTH", ModeLength.String())
	assert.Equal(t, "TIME", ModeTime.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
