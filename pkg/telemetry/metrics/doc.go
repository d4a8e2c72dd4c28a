// Package metrics provides Prometheus metrics for flowmaker.
//
// # Metrics Categories
//
//   - Compiler: compilations by mode and status, durations, stage timings,
//     error types and graph sizes
//   - Storage: diagram store operations, stored diagram count and retention
//     pruning
//   - HTTP: requests by route, method and status code, in-flight requests
//   - Watch: file-watcher rebuilds
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCompile("flowchart", "success", "", time.Millisecond, 6, 5)
//	mux.Handle("/metrics", collector.Handler())
//
// Every recording method is a no-op when metrics are disabled or the
// collector is nil, so components can hold an optional *Collector.
//
// # Cardinality
//
// HTTP route labels pass through a CardinalityLimiter. Once the limit is
// reached new routes are recorded as "other".
package metrics
