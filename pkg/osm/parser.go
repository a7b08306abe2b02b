package osm

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/sirupsen/logrus"

	"github.com/azybler/roadpath/pkg/geo"
)

var log = logrus.WithField("module", "osm")

const mphToKmh = 1.609344

// RawEdge represents a directed edge parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Length     float64 // meters
	Highway    string  // OSM highway tag value
	MaxSpeed   float64 // km/h from the maxspeed tag, 0 if absent or unparsable
	Car        bool
	Foot       bool
	Bicycle    bool
	ShapeLats  []float64 // intermediate shape node latitudes (excluding from/to)
	ShapeLons  []float64 // intermediate shape node longitudes (excluding from/to)
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// routableHighways lists highway tag values kept in the network.
var routableHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
	"track":          true,
	"pedestrian":     true,
	"footway":        true,
	"path":           true,
	"steps":          true,
	"cycleway":       true,
}

var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

var noFootHighways = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"cycleway":      true,
}

var noBicycleHighways = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"pedestrian":    true,
	"footway":       true,
	"steps":         true,
}

func denied(v string) bool {
	return v == "no" || v == "private"
}

func allowed(v string) bool {
	return v == "yes" || v == "designated" || v == "permissive" || v == "destination"
}

// wayAccess returns which transport modes may use the way. A way that no
// mode may use is not routable.
func wayAccess(tags osm.Tags) (car, foot, bicycle bool) {
	hw := tags.Find("highway")
	if !routableHighways[hw] {
		return false, false, false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false, false, false
	}

	car = carHighways[hw]
	foot = !noFootHighways[hw]
	bicycle = !noBicycleHighways[hw]

	if denied(tags.Find("access")) {
		car, foot, bicycle = false, false, false
	}

	if v := tags.Find("motor_vehicle"); denied(v) {
		car = false
	} else if allowed(v) {
		car = true
	}
	if v := tags.Find("motorcar"); denied(v) {
		car = false
	}
	if v := tags.Find("foot"); denied(v) {
		foot = false
	} else if allowed(v) {
		foot = true
	}
	if v := tags.Find("bicycle"); denied(v) {
		bicycle = false
	} else if allowed(v) {
		bicycle = true
	}
	return car, foot, bicycle
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	car, _, _ := wayAccess(tags)
	return car
}

// directionFlags returns (forward, backward) for vehicles based on highway
// type and oneway tags. Pedestrians ignore these flags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent, skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// parseMaxSpeed converts a maxspeed tag value to km/h. Values such as
// "none", "signals" or country zone codes are reported as not ok.
func parseMaxSpeed(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	factor := 1.0
	switch {
	case strings.HasSuffix(v, "mph"):
		factor = mphToKmh
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
	case strings.HasSuffix(v, "km/h"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
	case strings.HasSuffix(v, "kmh"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "kmh"))
	}
	// "50;30" style lists: take the first value.
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Highway  string
	MaxSpeed float64
	Forward  bool
	Backward bool
	Car      bool
	Foot     bool
	Bicycle  bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, filter edges to this bounding box
}

// scanWay turns a way into wayInfo. ok is false when the way contributes
// no arcs.
func scanWay(w *osm.Way) (wayInfo, bool) {
	car, foot, bicycle := wayAccess(w.Tags)
	if !car && !foot && !bicycle {
		return wayInfo{}, false
	}
	if len(w.Nodes) < 2 {
		return wayInfo{}, false
	}

	fwd, bwd := directionFlags(w.Tags)
	if !fwd && !bwd && !foot {
		return wayInfo{}, false
	}

	info := wayInfo{
		NodeIDs:  make([]osm.NodeID, len(w.Nodes)),
		Highway:  w.Tags.Find("highway"),
		Forward:  fwd,
		Backward: bwd,
		Car:      car,
		Foot:     foot,
		Bicycle:  bicycle,
	}
	if speed, ok := parseMaxSpeed(w.Tags.Find("maxspeed")); ok {
		info.MaxSpeed = speed
	}
	for i, wn := range w.Nodes {
		info.NodeIDs[i] = wn.ID
	}
	return info, true
}

// edgesFor emits the directed edges of one way segment. Vehicles follow
// the oneway flags, pedestrians may walk both directions.
func (w *wayInfo) edgesFor(from, to osm.NodeID, length float64) []RawEdge {
	var out []RawEdge
	base := RawEdge{Length: length, Highway: w.Highway, MaxSpeed: w.MaxSpeed}

	fwd := base
	fwd.FromNodeID, fwd.ToNodeID = from, to
	fwd.Car, fwd.Bicycle = w.Car && w.Forward, w.Bicycle && w.Forward
	fwd.Foot = w.Foot
	if fwd.Car || fwd.Bicycle || fwd.Foot {
		out = append(out, fwd)
	}

	bwd := base
	bwd.FromNodeID, bwd.ToNodeID = to, from
	bwd.Car, bwd.Bicycle = w.Car && w.Backward, w.Bicycle && w.Backward
	bwd.Foot = w.Foot
	if bwd.Car || bwd.Bicycle || bwd.Foot {
		out = append(out, bwd)
	}
	return out
}

// Parse reads an OSM PBF file and returns directed edges for routing.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()
	// Pass 1: Scan ways to collect referenced node IDs and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		info, ok := scanWay(w)
		if !ok {
			continue
		}
		for _, id := range info.NodeIDs {
			referencedNodes[id] = struct{}{}
		}
		ways = append(ways, info)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.WithFields(logrus.Fields{
		"ways":  len(ways),
		"nodes": len(referencedNodes),
	}).Info("pass 1 complete")

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.WithField("coordinates", len(nodeLat)).Info("pass 2 complete")

	edges, skipped, filtered := buildEdges(ways, nodeLat, nodeLon, opt)
	if skipped > 0 {
		log.WithField("edges", skipped).Warn("skipped edges with missing node coordinates")
	}
	if useBBox && filtered > 0 {
		log.WithField("edges", filtered).Info("filtered edges outside bounding box")
	}
	log.WithField("edges", len(edges)).Info("built directed edges")

	return &ParseResult{
		Edges:   edges,
		NodeLat: nodeLat,
		NodeLon: nodeLon,
	}, nil
}

func buildEdges(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, opt ParseOptions) (edges []RawEdge, skipped, filtered int) {
	useBBox := !opt.BBox.IsZero()
	for i := range ways {
		w := &ways[i]
		for j := 0; j < len(w.NodeIDs)-1; j++ {
			fromID := w.NodeIDs[j]
			toID := w.NodeIDs[j+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skipped++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				filtered++
				continue
			}

			length := geo.Haversine(fromLat, fromLon, toLat, toLon)
			edges = append(edges, w.edgesFor(fromID, toID, length)...)
		}
	}
	return edges, skipped, filtered
}
