package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	"mercator-hq/flowmaker/pkg/diagram/retention"
	"mercator-hq/flowmaker/pkg/server"
	"mercator-hq/flowmaker/pkg/telemetry/health"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
	"mercator-hq/flowmaker/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	noStorage     bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the Flowmaker HTTP API.

The server compiles sources on POST /v1/render, resolves share links,
stores diagrams per activity and exposes health, version and Prometheus
metrics endpoints. Diagrams older than retention.days or beyond
retention.max_records are pruned on retention.prune_schedule.

Examples:
  # Start with defaults (127.0.0.1:8080, SQLite at data/diagrams.db)
  flowmaker serve

  # Start with custom config
  flowmaker serve --config /etc/flowmaker/config.yaml

  # Override listen address
  flowmaker serve --listen 0.0.0.0:8080

  # Validate config without starting server
  flowmaker serve --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override server.listen_address")
	serveCmd.Flags().BoolVar(&serveFlags.noStorage, "no-storage", false, "serve rendering only, without diagram storage")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := state.cfg
	logger := state.logger

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
		return nil
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer := tracing.Noop()
	if cfg.Telemetry.Tracing.Enabled {
		t, err := tracing.New(&cfg.Telemetry.Tracing, Version)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
		}
		tracer = t
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer),
		server.WithHealth(checker, health.NewVersionInfo(Version, GitCommit, BuildDate)),
	}

	if !serveFlags.noStorage {
		manager, err := openManager(collector)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("failed to open storage: %w", err))
		}
		defer func() {
			if err := manager.Store().Close(); err != nil {
				logger.Warn("failed to close storage", "error", err)
			}
		}()
		opts = append(opts, server.WithDiagrams(manager))

		pruner := retention.NewPruner(manager.Store(), cfg.Retention, retention.WithMetrics(collector))
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else if next := scheduler.NextRun(); next != nil {
			logger.Debug("retention scheduler started", "next_pruning", next)
		}
		defer scheduler.Stop()
	}

	srv := server.NewServer(cfg, newRenderer(collector, tracer), opts...)

	logger.Info("flowmaker starting",
		"version", Version,
		"listen_address", cfg.Server.ListenAddress,
		"storage", storageLabel(),
		"metrics", cfg.Telemetry.Metrics.Enabled,
		"tracing", tracer.Enabled(),
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func storageLabel() string {
	if serveFlags.noStorage {
		return "disabled"
	}
	return state.cfg.Storage.Backend
}
