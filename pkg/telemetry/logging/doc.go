// Package logging provides structured logging on top of log/slog.
//
// # Overview
//
//   - JSON, text and console output formats
//   - Context-aware logging with request, diagram, activity and mode fields
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "diagram rendered", "mode", "flowchart")
package logging
