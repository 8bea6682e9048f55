package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"objrepo/config"
	"objrepo/pkg/observability"
	"objrepo/pkg/server"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	nodeID     = flag.String("node-id", "", "Node ID, overrides node.id")
	bizAddr    = flag.String("biz-addr", "", "Business endpoint address, overrides server.biz_addr")
	hbAddr     = flag.String("hb-addr", "", "Liveness endpoint address, overrides server.hb_addr")
	ttlSeconds = flag.Int("ttl", 0, "Object TTL in seconds, overrides registry.ttl_seconds")
	logLevel   = flag.String("log-level", "", "Log level, overrides logging.level")
)

// overrides holds command line values that replace loaded settings when set.
type overrides struct {
	nodeID     string
	bizAddr    string
	hbAddr     string
	ttlSeconds int
	logLevel   string
}

// resolveConfig loads the configuration and applies overrides. Defaults are
// only used when no file was given and none was found on the search path;
// any other load or validation failure is returned.
func resolveConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if o.nodeID != "" {
		cfg.Node.ID = o.nodeID
	}
	if o.bizAddr != "" {
		cfg.Server.BizAddr = o.bizAddr
	}
	if o.hbAddr != "" {
		cfg.Server.HBAddr = o.hbAddr
	}
	if o.ttlSeconds > 0 {
		cfg.Registry.TTLSeconds = o.ttlSeconds
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration after flag overrides: %w", err)
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	cfg, err := resolveConfig(*configPath, overrides{
		nodeID:     *nodeID,
		bizAddr:    *bizAddr,
		hbAddr:     *hbAddr,
		ttlSeconds: *ttlSeconds,
		logLevel:   *logLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("failed to load configuration")
	}

	logger, closer, err := observability.InitLogger("objrepo", observability.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer closer.Close()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create server")
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logger.Info().
		Str("node", cfg.Node.ID).
		Int("peers", len(cfg.Peers)).
		Int("ttl_seconds", cfg.Registry.TTLSeconds).
		Msg("starting objrepo")
	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}

	logger.Info().Msg("objrepo stopped")
}
