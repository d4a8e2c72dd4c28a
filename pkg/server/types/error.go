package types

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	// Type categorizes the error. Compile failures carry the compiler's
	// error type, e.g. "unexpected_token".
	Type string `json:"type"`

	// Message is shown to the author verbatim.
	Message string `json:"message"`

	// Line is the 0-based source line of a compile error.
	Line *int `json:"line,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a malformed request (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates a missing diagram (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeRequestTooLarge indicates a source over the size limit (413).
	ErrorTypeRequestTooLarge = "request_too_large"

	// ErrorTypeRateLimited indicates a client over its compile rate (429).
	ErrorTypeRateLimited = "rate_limit_exceeded"

	// ErrorTypeServerError indicates an internal failure (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeServiceUnavailable indicates the storage is closed (503).
	ErrorTypeServiceUnavailable = "service_unavailable"
)

// NewErrorResponse creates an error envelope.
func NewErrorResponse(errType, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Type: errType, Message: message}}
}

// NewCompileErrorResponse creates the envelope for a compile failure. A
// negative line is omitted.
func NewCompileErrorResponse(errType, message string, line int) *ErrorResponse {
	resp := NewErrorResponse(errType, message)
	if line >= 0 {
		resp.Error.Line = &line
	}
	return resp
}

// NewInvalidRequestError creates a 400 envelope.
func NewInvalidRequestError(message string) *ErrorResponse {
	return NewErrorResponse(ErrorTypeInvalidRequest, message)
}

// NewNotFoundError creates a 404 envelope.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(ErrorTypeNotFound, message)
}

// NewServerError creates a 500 envelope.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(ErrorTypeServerError, message)
}
