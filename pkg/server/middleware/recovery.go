package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"mercator-hq/flowmaker/pkg/server/types"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
)

// Recovery turns a handler panic into a 500 error envelope. The panic and
// its stack are logged; clients see a generic message.
func Recovery(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(types.NewServerError("An internal error occurred."))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
