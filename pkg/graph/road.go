package graph

import "fmt"

// RoadType classifies an arc by the OSM highway tag of its way.
type RoadType uint8

const (
	RoadUnknown RoadType = iota
	RoadMotorway
	RoadMotorwayLink
	RoadTrunk
	RoadTrunkLink
	RoadPrimary
	RoadPrimaryLink
	RoadSecondary
	RoadSecondaryLink
	RoadTertiary
	RoadTertiaryLink
	RoadUnclassified
	RoadResidential
	RoadLivingStreet
	RoadService
	RoadTrack
	RoadPedestrian
	RoadFootway
	RoadPath
	RoadSteps
	RoadCycleway

	numRoadTypes
)

var roadTypeNames = [numRoadTypes]string{
	RoadUnknown:       "unknown",
	RoadMotorway:      "motorway",
	RoadMotorwayLink:  "motorway_link",
	RoadTrunk:         "trunk",
	RoadTrunkLink:     "trunk_link",
	RoadPrimary:       "primary",
	RoadPrimaryLink:   "primary_link",
	RoadSecondary:     "secondary",
	RoadSecondaryLink: "secondary_link",
	RoadTertiary:      "tertiary",
	RoadTertiaryLink:  "tertiary_link",
	RoadUnclassified:  "unclassified",
	RoadResidential:   "residential",
	RoadLivingStreet:  "living_street",
	RoadService:       "service",
	RoadTrack:         "track",
	RoadPedestrian:    "pedestrian",
	RoadFootway:       "footway",
	RoadPath:          "path",
	RoadSteps:         "steps",
	RoadCycleway:      "cycleway",
}

// Default speeds in km/h, used when a way carries no maxspeed tag.
var roadTypeSpeeds = [numRoadTypes]float64{
	RoadUnknown:       30,
	RoadMotorway:      110,
	RoadMotorwayLink:  60,
	RoadTrunk:         90,
	RoadTrunkLink:     50,
	RoadPrimary:       70,
	RoadPrimaryLink:   40,
	RoadSecondary:     60,
	RoadSecondaryLink: 40,
	RoadTertiary:      50,
	RoadTertiaryLink:  30,
	RoadUnclassified:  40,
	RoadResidential:   30,
	RoadLivingStreet:  10,
	RoadService:       20,
	RoadTrack:         15,
	RoadPedestrian:    5,
	RoadFootway:       5,
	RoadPath:          5,
	RoadSteps:         3,
	RoadCycleway:      18,
}

var roadTypeAccess = [numRoadTypes]Access{
	RoadUnknown:       AccessAll,
	RoadMotorway:      AccessCar,
	RoadMotorwayLink:  AccessCar,
	RoadTrunk:         AccessCar | AccessBicycle,
	RoadTrunkLink:     AccessCar | AccessBicycle,
	RoadPrimary:       AccessAll,
	RoadPrimaryLink:   AccessAll,
	RoadSecondary:     AccessAll,
	RoadSecondaryLink: AccessAll,
	RoadTertiary:      AccessAll,
	RoadTertiaryLink:  AccessAll,
	RoadUnclassified:  AccessAll,
	RoadResidential:   AccessAll,
	RoadLivingStreet:  AccessAll,
	RoadService:       AccessAll,
	RoadTrack:         AccessFoot | AccessBicycle,
	RoadPedestrian:    AccessFoot,
	RoadFootway:       AccessFoot,
	RoadPath:          AccessFoot | AccessBicycle,
	RoadSteps:         AccessFoot,
	RoadCycleway:      AccessBicycle,
}

func (t RoadType) String() string {
	if t >= numRoadTypes {
		return fmt.Sprintf("RoadType(%d)", uint8(t))
	}
	return roadTypeNames[t]
}

// DefaultSpeed returns the assumed speed limit in km/h for the road type.
func (t RoadType) DefaultSpeed() float64 {
	if t >= numRoadTypes {
		return roadTypeSpeeds[RoadUnknown]
	}
	return roadTypeSpeeds[t]
}

// DefaultAccess returns the transport modes allowed on the road type when
// no access tags say otherwise.
func (t RoadType) DefaultAccess() Access {
	if t >= numRoadTypes {
		return AccessAll
	}
	return roadTypeAccess[t]
}

// ParseRoadType maps an OSM highway value to a RoadType. The second result
// is false for values that are not routable roads.
func ParseRoadType(highway string) (RoadType, bool) {
	for t := RoadMotorway; t < numRoadTypes; t++ {
		if roadTypeNames[t] == highway {
			return t, true
		}
	}
	return RoadUnknown, false
}

// Access is a bitmask of the transport modes allowed on an arc.
type Access uint8

const (
	AccessCar Access = 1 << iota
	AccessFoot
	AccessBicycle

	AccessNone Access = 0
	AccessAll         = AccessCar | AccessFoot | AccessBicycle
)

// Has reports whether every mode in m is allowed.
func (a Access) Has(m Access) bool { return a&m == m }

func (a Access) String() string {
	if a == AccessNone {
		return "none"
	}
	s := ""
	for _, m := range []struct {
		bit  Access
		name string
	}{{AccessCar, "car"}, {AccessFoot, "foot"}, {AccessBicycle, "bicycle"}} {
		if a&m.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += m.name
		}
	}
	return s
}
