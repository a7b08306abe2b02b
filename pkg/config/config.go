// Package config loads the YAML settings shared by the preprocess and
// server commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/azybler/roadpath/pkg/api"
	"github.com/azybler/roadpath/pkg/graph"
	osmparser "github.com/azybler/roadpath/pkg/osm"
	"github.com/azybler/roadpath/pkg/routing"
	"github.com/azybler/roadpath/pkg/shortestpath"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Graph configures the import and the binary graph file.
type Graph struct {
	Input            string    `yaml:"input,omitempty"`             // .osm.pbf source
	Path             string    `yaml:"path"`                        // binary graph file
	BBox             []float64 `yaml:"bbox,omitempty"`              // minLat, minLng, maxLat, maxLng
	LargestComponent bool      `yaml:"largest_component,omitempty"` // drop nodes outside the largest component
}

// Server configures the HTTP listener.
type Server struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	MaxBatch       int           `yaml:"max_batch"`
	CORSOrigin     string        `yaml:"cors_origin,omitempty"`
}

// Routing configures query defaults.
type Routing struct {
	MaxSnapDistance  float64 `yaml:"max_snap_distance"` // meters
	DefaultAlgorithm string  `yaml:"default_algorithm"`
	DefaultInspector string  `yaml:"default_inspector"`
	Parallelism      int     `yaml:"parallelism,omitempty"` // 0 = one per CPU
	Trace            bool    `yaml:"trace,omitempty"`       // log every search event at debug level
}

// Battery configures the battery-constrained driver.
type Battery struct {
	MaxRange          float64  `yaml:"max_range"`
	RechargeRoadTypes []string `yaml:"recharge_road_types"`
}

// Log configures logrus.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Config is the root of the YAML file.
type Config struct {
	Graph   Graph   `yaml:"graph"`
	Server  Server  `yaml:"server"`
	Routing Routing `yaml:"routing"`
	Battery Battery `yaml:"battery"`
	Log     Log     `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	srv := api.DefaultConfig(":8080")
	return &Config{
		Graph: Graph{
			Path:             "graph.bin",
			LargestComponent: true,
		},
		Server: Server{
			Addr:           srv.Addr,
			ReadTimeout:    srv.ReadTimeout,
			WriteTimeout:   srv.WriteTimeout,
			RequestTimeout: srv.RequestTimeout,
			MaxConcurrent:  srv.MaxConcurrent,
			MaxBatch:       srv.MaxBatch,
		},
		Routing: Routing{
			MaxSnapDistance:  routing.DefaultMaxSnapDistance,
			DefaultAlgorithm: shortestpath.AlgorithmDijkstra.String(),
			DefaultInspector: shortestpath.DefaultInspector,
		},
		Battery: Battery{
			MaxRange:          shortestpath.DefaultMaxRange,
			RechargeRoadTypes: []string{graph.RoadMotorway.String()},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Graph.Path != "", "graph.path is empty")
	if len(c.Graph.BBox) > 0 {
		_, err := c.BBox()
		check(err == nil, "graph.bbox: %v", err)
	}

	check(c.Server.Addr != "", "server.addr is empty")
	check(c.Server.ReadTimeout >= 0 && c.Server.WriteTimeout >= 0 && c.Server.RequestTimeout >= 0,
		"server timeouts must not be negative")
	check(c.Server.MaxConcurrent >= 0, "server.max_concurrent %d", c.Server.MaxConcurrent)
	check(c.Server.MaxBatch >= 0, "server.max_batch %d", c.Server.MaxBatch)

	check(c.Routing.MaxSnapDistance > 0, "routing.max_snap_distance %v", c.Routing.MaxSnapDistance)
	_, err := shortestpath.ParseAlgorithm(c.Routing.DefaultAlgorithm)
	check(err == nil, "routing.default_algorithm: %v", err)
	_, err = shortestpath.InspectorByName(c.Routing.DefaultInspector)
	check(err == nil, "routing.default_inspector: %v", err)
	check(c.Routing.Parallelism >= 0, "routing.parallelism %d", c.Routing.Parallelism)

	check(c.Battery.MaxRange > 0, "battery.max_range %v", c.Battery.MaxRange)
	_, err = c.RechargeRoadTypes()
	check(err == nil, "battery.recharge_road_types: %v", err)

	_, err = logrus.ParseLevel(c.Log.Level)
	check(err == nil, "log.level: %v", err)

	return errors.Join(errs...)
}

// BBox returns the import filter, or the zero box when none is set.
func (c *Config) BBox() (osmparser.BBox, error) {
	b := c.Graph.BBox
	if len(b) == 0 {
		return osmparser.BBox{}, nil
	}
	if len(b) != 4 {
		return osmparser.BBox{}, fmt.Errorf("want 4 values (minLat, minLng, maxLat, maxLng), got %d", len(b))
	}
	box := osmparser.BBox{MinLat: b[0], MinLng: b[1], MaxLat: b[2], MaxLng: b[3]}
	if box.MinLat >= box.MaxLat || box.MinLng >= box.MaxLng {
		return osmparser.BBox{}, fmt.Errorf("empty box %v", b)
	}
	if box.MinLat < -90 || box.MaxLat > 90 || box.MinLng < -180 || box.MaxLng > 180 {
		return osmparser.BBox{}, fmt.Errorf("box %v outside the globe", b)
	}
	return box, nil
}

// RechargeRoadTypes parses the battery recharge road types.
func (c *Config) RechargeRoadTypes() ([]graph.RoadType, error) {
	types := make([]graph.RoadType, 0, len(c.Battery.RechargeRoadTypes))
	for _, name := range c.Battery.RechargeRoadTypes {
		t, ok := graph.ParseRoadType(name)
		if !ok {
			return nil, fmt.Errorf("unknown road type %q", name)
		}
		types = append(types, t)
	}
	return lo.Uniq(types), nil
}

// EngineOptions converts the routing and battery sections.
func (c *Config) EngineOptions() (routing.Options, error) {
	types, err := c.RechargeRoadTypes()
	if err != nil {
		return routing.Options{}, err
	}
	return routing.Options{
		MaxSnapDistance:   c.Routing.MaxSnapDistance,
		DefaultAlgorithm:  c.Routing.DefaultAlgorithm,
		DefaultInspector:  c.Routing.DefaultInspector,
		MaxRange:          c.Battery.MaxRange,
		RechargeRoadTypes: types,
		Parallelism:       c.Routing.Parallelism,
		TraceSearches:     c.Routing.Trace,
	}, nil
}

// ServerConfig converts the server section.
func (c *Config) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Addr:           c.Server.Addr,
		ReadTimeout:    c.Server.ReadTimeout,
		WriteTimeout:   c.Server.WriteTimeout,
		RequestTimeout: c.Server.RequestTimeout,
		MaxConcurrent:  c.Server.MaxConcurrent,
		MaxBatch:       c.Server.MaxBatch,
		CORSOrigin:     c.Server.CORSOrigin,
	}
}

// ApplyLogging sets the global logrus level and formatter.
func (c *Config) ApplyLogging() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	if c.Log.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
