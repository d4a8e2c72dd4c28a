package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// DiagramIDKey is the context key for saved diagram IDs.
	DiagramIDKey contextKey = "diagram_id"

	// ActivityIDKey is the context key for the activity a diagram belongs to.
	ActivityIDKey contextKey = "activity_id"

	// ModeKey is the context key for the diagram mode being rendered.
	ModeKey contextKey = "mode"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithDiagramID adds a diagram ID to the context.
func WithDiagramID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DiagramIDKey, id)
}

// GetDiagramID retrieves the diagram ID from the context.
func GetDiagramID(ctx context.Context) string {
	return stringValue(ctx, DiagramIDKey)
}

// WithActivityID adds an activity ID to the context.
func WithActivityID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ActivityIDKey, id)
}

// GetActivityID retrieves the activity ID from the context.
func GetActivityID(ctx context.Context) string {
	return stringValue(ctx, ActivityIDKey)
}

// WithMode adds a diagram mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, ModeKey, mode)
}

// GetMode retrieves the diagram mode from the context.
func GetMode(ctx context.Context) string {
	return stringValue(ctx, ModeKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range []contextKey{RequestIDKey, DiagramIDKey, ActivityIDKey, ModeKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}
