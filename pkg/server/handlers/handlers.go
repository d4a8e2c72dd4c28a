package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
)

// Renderer compiles diagram sources.
type Renderer interface {
	Render(ctx context.Context, mode, source string) (*render.Result, error)
	ResolveMode(mode string) string
	InitConfig() render.InitConfig
}

// API serves the /v1 endpoints.
type API struct {
	cfg      config.ServerConfig
	renderer Renderer
	manager  *diagram.Manager
	logger   *logging.Logger
}

// New creates the API handlers. A nil manager disables the diagram
// endpoints; they answer 503.
func New(cfg config.ServerConfig, renderer Renderer, manager *diagram.Manager, logger *logging.Logger) *API {
	if logger == nil {
		logger = logging.Default()
	}
	return &API{
		cfg:      cfg,
		renderer: renderer,
		manager:  manager,
		logger:   logger.With("component", "api"),
	}
}

// fail writes the error envelope for err. Server errors are logged.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, resp := errorResponse(err)
	if code >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed", "error", err)
	}
	writeJSON(w, code, resp)
}

// decode reads a JSON body into v. The body may hold the source JSON-escaped,
// so it is capped at twice the source limit; the source itself is checked
// by checkSource.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, 2*a.cfg.MaxSourceBytes+1024)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &requestError{message: "request body is empty"}
		}
		return &requestError{message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

func (a *API) checkSource(source string) error {
	if int64(len(source)) > a.cfg.MaxSourceBytes {
		return errSourceTooLarge
	}
	return nil
}

func (a *API) shareURL(mode, source string) string {
	u, err := diagram.ShareURLForMode(a.cfg.ShareBaseURL, mode, source)
	if err != nil {
		return ""
	}
	return u
}
