package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/azybler/roadpath/pkg/api"
	"github.com/azybler/roadpath/pkg/config"
	"github.com/azybler/roadpath/pkg/graph"
	"github.com/azybler/roadpath/pkg/routing"
)

var log = logrus.WithField("module", "server")

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	graphPath := flag.String("graph", "", "Path to preprocessed graph binary (overrides graph.path)")
	port := flag.Int("port", 0, "HTTP port (overrides server.addr)")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	logLevel := flag.String("log.level", "", "Log level (overrides log.level)")
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
	if *port != 0 {
		cfg.Server.Addr = fmt.Sprintf(":%d", *port)
	}
	if *corsOrigin != "" {
		cfg.Server.CORSOrigin = *corsOrigin
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := cfg.ApplyLogging(); err != nil {
		log.Fatalf("log level: %v", err)
	}

	start := time.Now()

	// Load graph.
	log.WithField("path", cfg.Graph.Path).Info("loading graph")
	g, err := graph.ReadBinary(cfg.Graph.Path)
	if err != nil {
		log.Fatalf("load graph: %v", err)
	}

	// Build routing engine; this also builds the snapping index.
	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatalf("routing options: %v", err)
	}
	engine := routing.NewEngine(g, opts)
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("ready")

	srvCfg := cfg.ServerConfig()
	handlers := api.NewHandlers(engine, api.EngineStats(engine), srvCfg.MaxBatch)
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
