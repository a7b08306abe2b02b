// Command route answers one query offline with every driver and prints
// the results side by side.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/azybler/roadpath/pkg/config"
	"github.com/azybler/roadpath/pkg/graph"
	"github.com/azybler/roadpath/pkg/routing"
	"github.com/azybler/roadpath/pkg/shortestpath"
)

var log = logrus.WithField("module", "route")

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	graphPath := flag.String("graph", "", "Path to preprocessed graph binary (overrides graph.path)")
	from := flag.String("from", "", "Start as lat,lng")
	to := flag.String("to", "", "End as lat,lng")
	algorithms := flag.String("algorithms", strings.Join(shortestpath.AlgorithmNames(), ","), "Comma-separated drivers to compare")
	inspector := flag.String("inspector", "", "Arc inspector ("+strings.Join(shortestpath.InspectorNames(), ", ")+")")
	maxRange := flag.Float64("max-range", 0, "Battery capacity in the inspector's unit (0 = config default)")
	trace := flag.Bool("trace", false, "Log every search event")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *graphPath != "" {
		cfg.Graph.Path = *graphPath
	}
	if *trace {
		cfg.Routing.Trace = true
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := cfg.ApplyLogging(); err != nil {
		log.Fatalf("log level: %v", err)
	}

	start, err := parseLatLng(*from)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: route --from lat,lng --to lat,lng [--graph graph.bin] [--algorithms dijkstra,astar,battery] [--inspector car-time]")
		os.Exit(1)
	}
	end, err := parseLatLng(*to)
	if err != nil {
		log.Fatalf("--to: %v", err)
	}

	g, err := graph.ReadBinary(cfg.Graph.Path)
	if err != nil {
		log.Fatalf("load graph: %v", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatalf("routing options: %v", err)
	}
	engine := routing.NewEngine(g, opts)

	names := lo.Compact(lo.Map(strings.Split(*algorithms, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	reqs := lo.Map(names, func(alg string, _ int) routing.Request {
		return routing.Request{Start: start, End: end, Algorithm: alg, Inspector: *inspector, MaxRange: *maxRange}
	})
	results, errs := engine.RouteMany(context.Background(), reqs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tSTATUS\tCOST\tDISTANCE(m)\tDURATION(s)\tARCS\tSETTLED\tELAPSED")
	for i, name := range names {
		if errs[i] != nil {
			fmt.Fprintf(tw, "%s\t%v\t\t\t\t\t\t\n", name, errs[i])
			continue
		}
		r := results[i]
		fmt.Fprintf(tw, "%s\tOK\t%.1f\t%.1f\t%.1f\t%d\t%d\t%s\n",
			r.Algorithm, r.Cost, r.TotalDistanceMeters, r.DurationSeconds,
			len(r.Nodes)-1, r.Stats.Settled, r.Stats.Elapsed)
	}
	if err := tw.Flush(); err != nil {
		log.Fatalf("write output: %v", err)
	}
}

func parseLatLng(s string) (routing.LatLng, error) {
	var ll routing.LatLng
	if _, err := fmt.Sscanf(s, "%f,%f", &ll.Lat, &ll.Lng); err != nil {
		return routing.LatLng{}, fmt.Errorf("want lat,lng, got %q: %w", s, err)
	}
	return ll, nil
}
