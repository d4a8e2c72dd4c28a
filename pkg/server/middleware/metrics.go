package middleware

import (
	"net/http"
	"time"

	"mercator-hq/flowmaker/pkg/telemetry/metrics"
)

// Metrics records request count, latency and in-flight requests for one
// route. The route is the registered pattern, never the raw path, so label
// cardinality stays bounded.
func Metrics(c *metrics.Collector, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.HTTPInFlight(1)
			defer c.HTTPInFlight(-1)

			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			c.RecordHTTPRequest(route, r.Method, rw.statusCode, time.Since(start))
		})
	}
}
