// Package telemetry groups the observability packages used by Flowmaker.
//
// # Components
//
//   - logging: log/slog wrapper that lifts request, diagram and activity ids
//     from the context
//   - metrics: Prometheus collectors for compiles, storage, HTTP and the
//     file watcher
//   - tracing: OpenTelemetry tracing with an OTLP gRPC exporter
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//
//	svc := render.NewService(cfg.Render,
//		render.WithLogger(logger),
//		render.WithMetrics(collector),
//		render.WithTracer(tracer),
//	)
//
// A nil *metrics.Collector and a tracing.Noop tracer are valid everywhere,
// so commands that only compile can skip both.
package telemetry
