package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/diagram/storage"
	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
	"mercator-hq/flowmaker/pkg/telemetry/tracing"
)

// app is the state shared by subcommands once config is loaded.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

var state app

// loadApp loads configuration, applies logging flag overrides and installs
// the process logger.
func loadApp(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[skipConfigAnnotation]; ok {
		return nil
	}

	cfg, err := config.ReloadConfig(cfgFile)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			return err
		}
		return cli.NewConfigError("config", err.Error())
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	state = app{cfg: cfg, logger: logger}
	return nil
}

// formatter returns the formatter selected by --output.
func formatter() (cli.Formatter, error) {
	format, err := cli.ParseFormat(outputFmt)
	if err != nil {
		return nil, err
	}
	return cli.NewFormatter(format), nil
}

// newRenderer builds the render service. Collector and tracer may be nil.
func newRenderer(c *metrics.Collector, t *tracing.Tracer) *render.Service {
	opts := []render.Option{render.WithLogger(state.logger)}
	if c != nil {
		opts = append(opts, render.WithMetrics(c))
	}
	if t != nil {
		opts = append(opts, render.WithTracer(t))
	}
	return render.NewService(state.cfg.Render, opts...)
}

// openStore opens the configured diagram storage. The parent directory of a
// SQLite database is created when missing.
func openStore() (diagram.Storage, error) {
	cfg := state.cfg.Storage
	if cfg.Backend == storage.BackendSQLite {
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
	}
	return storage.New(cfg)
}

// openManager opens storage and wraps it in a diagram manager.
func openManager(c *metrics.Collector) (*diagram.Manager, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	opts := []diagram.ManagerOption{diagram.WithLogger(state.logger)}
	if c != nil {
		opts = append(opts, diagram.WithMetrics(c))
	}
	return diagram.NewManager(store, newRenderer(c, nil), opts...), nil
}

// readSource reads a source file, or stdin when path is empty or "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		r = f
	}

	limit := state.cfg.Server.MaxSourceBytes
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("source exceeds %d bytes", limit)
	}
	return string(data), nil
}
