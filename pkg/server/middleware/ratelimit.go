package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"

	"mercator-hq/flowmaker/pkg/ratelimit"
	"mercator-hq/flowmaker/pkg/server/types"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
)

// RateLimit rejects requests with 429 when the client IP is over its rate
// or every compile slot is taken. A nil limiter passes everything through.
func RateLimit(l *ratelimit.Limiter, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)

			if res := l.Allow(client); !res.Allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded", "client", client, "reason", res.Reason)
				writeTooManyRequests(w, res)
				return
			}

			res := l.Acquire()
			if !res.Allowed {
				logger.WarnContext(r.Context(), "compile slots exhausted", "limit", res.Limit)
				writeTooManyRequests(w, res)
				return
			}
			defer l.Release()

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, res ratelimit.CheckResult) {
	seconds := int(math.Ceil(res.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(types.NewErrorResponse(types.ErrorTypeRateLimited, res.Reason))
}
