// Package server provides the flowmaker HTTP server.
//
// The server exposes the compiler and the diagram store over HTTP and
// manages the listener lifecycle: start, graceful shutdown and readiness.
//
// # Basic Usage
//
//	renderer := render.NewService(cfg.Render, render.WithMetrics(collector))
//	manager := diagram.NewManager(store, renderer)
//
//	srv := server.NewServer(cfg, renderer,
//	    server.WithDiagrams(manager),
//	    server.WithMetrics(collector),
//	    server.WithHealth(checker, health.NewVersionInfo(version, commit, buildTime)),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start returns after ctx is cancelled or Stop is called and in-flight
// requests have drained, bounded by server.shutdown_timeout.
//
// # Routes
//
//   - POST /v1/render - Compile a source
//   - GET /v1/config - Rendering engine init config
//   - GET /v1/share - Decode and compile a share link
//   - PUT, GET /v1/activities/{activity}/diagram - Save or fetch an activity's diagram
//   - GET /v1/diagrams - List saved diagrams
//   - GET, DELETE /v1/diagrams/{id} - Fetch or delete a diagram
//   - GET /health, /ready, /version - Probes and build info (paths configurable)
//   - GET /metrics - Prometheus exposition (path configurable)
//
// # Middleware Chain
//
// Every request passes through, outermost first:
//  1. Recovery: turns panics into a 500 error envelope
//  2. RequestID: assigns X-Request-ID and stores it for logging
//  3. Logging: one access log line per request
//
// API routes additionally get a server span and per-route metrics labelled
// with the route pattern.
package server
