package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mercator-hq/flowmaker/pkg/diagram"
	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/server/types"
)

// errSourceTooLarge is returned when a request's source exceeds the limit.
var errSourceTooLarge = errors.New("source exceeds the maximum size")

// requestError is a client error detected while decoding a request.
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// errorResponse maps err onto an HTTP status and error envelope. Compile
// errors answer 422 with the compiler's error type and line.
func errorResponse(err error) (int, *types.ErrorResponse) {
	var perr *pseudoerrors.Error
	if errors.As(err, &perr) {
		return http.StatusUnprocessableEntity, types.NewCompileErrorResponse(string(perr.Type), perr.Message, perr.Line)
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, types.NewInvalidRequestError(reqErr.message)
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errSourceTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorTypeRequestTooLarge, errSourceTooLarge.Error())
	case errors.Is(err, diagram.ErrNotFound):
		return http.StatusNotFound, types.NewNotFoundError("diagram not found")
	case errors.Is(err, diagram.ErrClosed):
		return http.StatusServiceUnavailable, types.NewErrorResponse(types.ErrorTypeServiceUnavailable, "diagram storage is unavailable")
	}

	return http.StatusInternalServerError, types.NewServerError("An internal error occurred.")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
