package shortestpath

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/azybler/roadpath/pkg/graph"
)

// ErrUnknownInspector is returned by InspectorByName.
var ErrUnknownInspector = errors.New("shortestpath: unknown arc inspector")

// Mode selects what a cost measures.
type Mode uint8

const (
	// ModeLength costs are meters.
	ModeLength Mode = iota
	// ModeTime costs are seconds.
	ModeTime
)

func (m Mode) String() string {
	switch m {
	case ModeLength:
		return "LENGTH"
	case ModeTime:
		return "TIME"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ArcInspector decides which arcs a search may use and what they cost.
type ArcInspector interface {
	IsAllowed(a graph.Arc) bool
	Cost(a graph.Arc) float64
	Mode() Mode
	// MaximumSpeed is the top speed in km/h the inspector allows, or 0 to
	// use the network's.
	MaximumSpeed() float64
}

// accessInspector admits arcs open to a set of transport modes.
type accessInspector struct {
	name     string
	access   graph.Access // AccessNone admits every arc
	mode     Mode
	maxSpeed float64 // km/h, caps arc speed in ModeTime when positive
}

func (i *accessInspector) IsAllowed(a graph.Arc) bool {
	return i.access == graph.AccessNone || a.Access&i.access != 0
}

func (i *accessInspector) Cost(a graph.Arc) float64 {
	if i.mode == ModeLength {
		return a.Length
	}
	speed := a.Speed()
	if i.maxSpeed > 0 && speed > i.maxSpeed {
		speed = i.maxSpeed
	}
	return a.TravelTime(speed)
}

func (i *accessInspector) Mode() Mode { return i.mode }

func (i *accessInspector) MaximumSpeed() float64 { return i.maxSpeed }

func (i *accessInspector) String() string { return i.name }

const walkingSpeed = 5.0 // km/h

var builtinInspectors = []*accessInspector{
	{name: "all-length", mode: ModeLength},
	{name: "car-length", access: graph.AccessCar, mode: ModeLength},
	{name: "car-time", access: graph.AccessCar, mode: ModeTime},
	{name: "foot-time", access: graph.AccessFoot, mode: ModeTime, maxSpeed: walkingSpeed},
	{name: "all-time", mode: ModeTime},
}

// DefaultInspector is used when a caller does not name one.
const DefaultInspector = "all-length"

// Inspectors returns the built-in inspectors in a stable order.
func Inspectors() []ArcInspector {
	return lo.Map(builtinInspectors, func(i *accessInspector, _ int) ArcInspector { return i })
}

// InspectorNames returns the names accepted by InspectorByName.
func InspectorNames() []string {
	return lo.Map(builtinInspectors, func(i *accessInspector, _ int) string { return i.name })
}

// InspectorByName looks up a built-in inspector.
func InspectorByName(name string) (ArcInspector, error) {
	i, ok := lo.Find(builtinInspectors, func(i *accessInspector) bool { return i.name == name })
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInspector, name)
	}
	return i, nil
}
