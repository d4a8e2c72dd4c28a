// Package middleware provides the HTTP middleware of the flowmaker server:
// request ids, access logging, panic recovery and per-route metrics.
//
// Middleware compose with Chain, outermost first:
//
//	h = middleware.Chain(mux,
//	    middleware.Recovery(logger),
//	    middleware.RequestID,
//	    middleware.Logging(logger),
//	)
//
// Request ids are generated with github.com/google/uuid unless the client
// sends an X-Request-ID header, and are stored with logging.WithRequestID
// so every log line written while serving the request carries them.
package middleware
