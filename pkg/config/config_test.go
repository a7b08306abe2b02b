package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/roadpath/pkg/graph"
	osmparser "github.com/azybler/roadpath/pkg/osm"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	opts, err := c.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, []graph.RoadType{graph.RoadMotorway}, opts.RechargeRoadTypes)
	assert.Equal(t, "dijkstra", opts.DefaultAlgorithm)

	box, err := c.BBox()
	require.NoError(t, err)
	assert.True(t, box.IsZero())
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
graph:
  input: singapore.osm.pbf
  path: sg.bin
  bbox: [1.15, 103.6, 1.48, 104.1]
server:
  addr: ":9090"
  request_timeout: 2s
  cors_origin: "*"
routing:
  default_algorithm: astar
  default_inspector: car-time
battery:
  max_range: 50000
  recharge_road_types: [motorway, trunk, motorway]
log:
  level: debug
`)
	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "singapore.osm.pbf", c.Graph.Input)
	assert.Equal(t, "sg.bin", c.Graph.Path)
	assert.True(t, c.Graph.LargestComponent, "untouched keys keep their defaults")

	box, err := c.BBox()
	require.NoError(t, err)
	assert.Equal(t, osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}, box)

	srv := c.ServerConfig()
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 2*time.Second, srv.RequestTimeout)
	assert.Equal(t, Default().Server.ReadTimeout, srv.ReadTimeout)
	assert.Equal(t, "*", srv.CORSOrigin)

	opts, err := c.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, "astar", opts.DefaultAlgorithm)
	assert.Equal(t, "car-time", opts.DefaultInspector)
	assert.Equal(t, 50000.0, opts.MaxRange)
	assert.Equal(t, []graph.RoadType{graph.RoadMotorway, graph.RoadTrunk}, opts.RechargeRoadTypes)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "server:\n  port: 80\n"},
		{"unknown algorithm", "routing:\n  default_algorithm: floyd\n"},
		{"unknown inspector", "routing:\n  default_inspector: boat\n"},
		{"unknown road type", "battery:\n  recharge_road_types: [highway]\n"},
		{"zero range", "battery:\n  max_range: 0\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"short bbox", "graph:\n  bbox: [1, 2, 3]\n"},
		{"inverted bbox", "graph:\n  bbox: [2, 103, 1, 104]\n"},
		{"empty path", "graph:\n  path: \"\"\n"},
		{"not yaml", "graph: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	c := Default()
	c.Routing.MaxSnapDistance = 0
	c.Battery.MaxRange = -1

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "max_snap_distance")
	assert.Contains(t, err.Error(), "max_range")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadpath.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph:\n  path: x.bin\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x.bin", c.Graph.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyLogging(t *testing.T) {
	prev := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(prev) })

	c := Default()
	c.Log.Level = "warn"
	require.NoError(t, c.ApplyLogging())
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
}
