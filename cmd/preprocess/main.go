package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/azybler/roadpath/pkg/config"
	"github.com/azybler/roadpath/pkg/graph"
	osmparser "github.com/azybler/roadpath/pkg/osm"
)

var log = logrus.WithField("module", "preprocess")

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	input := flag.String("input", "", "Path to .osm.pbf file (overrides graph.input)")
	output := flag.String("output", "", "Output binary graph file path (overrides graph.path)")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	keepAll := flag.Bool("keep-all", false, "Keep every component instead of only the largest")
	logLevel := flag.String("log.level", "", "Log level (overrides log.level)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *input != "" {
		cfg.Graph.Input = *input
	}
	if *output != "" {
		cfg.Graph.Path = *output
	}
	if *keepAll {
		cfg.Graph.LargestComponent = false
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	switch {
	case *kl:
		cfg.Graph.BBox = []float64{2.75, 101.2, 3.5, 102.0}
	case *singapore:
		cfg.Graph.BBox = []float64{1.15, 103.6, 1.48, 104.1}
	case *bbox != "":
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			log.Fatalf("invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		cfg.Graph.BBox = []float64{minLat, minLng, maxLat, maxLng}
	}

	if cfg.Graph.Input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--config roadpath.yaml] [--output graph.bin] [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := cfg.ApplyLogging(); err != nil {
		log.Fatalf("log level: %v", err)
	}

	var opts osmparser.ParseOptions
	box, err := cfg.BBox()
	if err != nil {
		log.Fatalf("bbox: %v", err)
	}
	opts.BBox = box
	if !box.IsZero() {
		log.WithFields(logrus.Fields{
			"min_lat": box.MinLat, "max_lat": box.MaxLat,
			"min_lng": box.MinLng, "max_lng": box.MaxLng,
		}).Info("using bounding box filter")
	}

	start := time.Now()

	// Step 1: Parse OSM data.
	f, err := os.Open(cfg.Graph.Input)
	if err != nil {
		log.Fatalf("open input file: %v", err)
	}
	defer f.Close()

	log.WithField("input", cfg.Graph.Input).Info("parsing OSM data")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("parse OSM data: %v", err)
	}

	// Step 2: Build graph.
	g, err := graph.Build(parseResult)
	if err != nil {
		log.Fatalf("build graph: %v", err)
	}
	log.WithFields(logrus.Fields{"nodes": g.NumNodes, "arcs": g.NumEdges}).Info("graph built")

	// Step 3: Extract largest connected component.
	if cfg.Graph.LargestComponent && g.NumNodes > 0 {
		componentNodes := graph.LargestComponent(g)
		log.WithFields(logrus.Fields{
			"nodes": len(componentNodes),
			"share": fmt.Sprintf("%.1f%%", float64(len(componentNodes))/float64(g.NumNodes)*100),
		}).Info("largest component")
		g = graph.FilterToComponent(g, componentNodes)
	}

	// Step 4: Serialize to binary.
	if err := graph.WriteBinary(cfg.Graph.Path, g); err != nil {
		log.Fatalf("write binary: %v", err)
	}

	fields := logrus.Fields{
		"output":  cfg.Graph.Path,
		"elapsed": time.Since(start).Round(time.Second),
	}
	if info, err := os.Stat(cfg.Graph.Path); err == nil {
		fields["size_mb"] = fmt.Sprintf("%.1f", float64(info.Size())/(1024*1024))
	}
	log.WithFields(fields).Info("done")
}
