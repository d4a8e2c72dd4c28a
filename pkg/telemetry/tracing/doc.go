// Package tracing provides OpenTelemetry tracing for flowmaker.
//
// Spans are exported over OTLP gRPC. The render service opens one span per
// compilation with a child span for each compiler stage; HTTP handlers get a
// server span through HTTPMiddleware. When tracing is disabled every span is
// a noop.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "render")
//	defer span.End()
//
// # Sampling
//
// Samplers are "always", "never" and "ratio", each wrapped in ParentBased.
package tracing
