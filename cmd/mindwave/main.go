// Mindwave serves the behavioral stress dashboard: landmark producers
// connect over websocket, each connection is scored by its own pipeline,
// and viewers watch throttled metrics live.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-mindwave/internal/config"
	"github.com/teslashibe/go-mindwave/internal/log"
	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/ingest"
	"github.com/teslashibe/go-mindwave/pkg/session"
	"github.com/teslashibe/go-mindwave/pkg/web"
)

func main() {
	cfg := parseFlags()
	if err := cfg.Validate(); err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	srv := web.NewServer(web.Config{
		Port:        cfg.Port,
		StaticDir:   cfg.StaticDir,
		BroadcastHz: cfg.BroadcastHz,
		AccessLog:   cfg.AccessLog,
	}, log.With("component", "web"))

	// mirror session and ingest logs into the dashboard feed
	log.Attach(srv.LogHandler(log.ParseLevel("info")))

	sessCfg := session.DefaultConfig()
	sessCfg.LowLight.Interval = cfg.LowLightInterval
	sessCfg.LowLight.Threshold = cfg.LowLightThreshold
	sessCfg.Logger = log.With("component", "session")

	sessions := session.NewHub(sessCfg)
	defer sessions.Close()
	srv.Mount(sessions)

	if cfg.ZMQEndpoint != "" {
		samples, err := ingest.Stream(ctx, cfg.ZMQEndpoint, cfg.ZMQSession, log.With("component", "ingest"))
		switch {
		case errors.Is(err, ingest.ErrZMQDisabled):
			log.Warn("ignoring MINDWAVE_ZMQ_ENDPOINT", "error", err)
		case err != nil:
			return err
		default:
			log.Info("sidecar ingest connected", "endpoint", cfg.ZMQEndpoint, "session_id", cfg.ZMQSession)
			go ingest.Run(ctx, samples, affect.DefaultConfig(), srv.PublishMetrics, log.With("component", "ingest"))
		}
	}

	return srv.Run(ctx)
}

// parseFlags loads the environment and applies command line overrides.
func parseFlags() *config.Config {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP port")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	debug := flag.Bool("debug", false, "Shorthand for -log-level debug with access logging")
	static := flag.String("static", cfg.StaticDir, "Directory of dashboard static files (empty to disable)")
	hz := flag.Float64("broadcast-hz", cfg.BroadcastHz, "Per-session metric updates pushed to viewers per second")
	zmq := flag.String("zmq", cfg.ZMQEndpoint, "ZeroMQ PULL endpoint of a landmark sidecar (requires -tags zmq)")
	flag.Parse()

	cfg.Port, cfg.LogLevel, cfg.StaticDir, cfg.BroadcastHz, cfg.ZMQEndpoint = *port, *logLevel, *static, *hz, *zmq
	if *debug {
		cfg.LogLevel, cfg.AccessLog = "debug", true
	}

	log.Init(cfg.LogLevel)
	return cfg
}
