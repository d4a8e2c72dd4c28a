package types

import (
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/render"
)

// RenderRequest is the body of POST /v1/render. An empty mode selects the
// configured default.
type RenderRequest struct {
	Mode   string `json:"mode,omitempty"`
	Source string `json:"source"`
}

// RenderResponse is a rendered diagram with a link that reopens its source
// in the editor.
type RenderResponse struct {
	*render.Result
	ShareURL string `json:"share_url,omitempty"`
}

// ConfigResponse is served on GET /v1/config.
type ConfigResponse struct {
	Init        render.InitConfig `json:"init"`
	DefaultMode string            `json:"default_mode"`
	Modes       []string          `json:"modes"`
}

// ShareResponse is a decoded share link and its rendering.
type ShareResponse struct {
	Source string `json:"source"`
	*render.Result
}

// SaveDiagramRequest is the body of PUT /v1/activities/{activity}/diagram.
type SaveDiagramRequest struct {
	Mode   string `json:"mode,omitempty"`
	Source string `json:"source"`
}

// DiagramResponse is a stored diagram with its share link.
type DiagramResponse struct {
	*diagram.Diagram
	ShareURL string `json:"share_url,omitempty"`
}

// ListDiagramsResponse is a page of stored diagrams.
type ListDiagramsResponse struct {
	Diagrams []*diagram.Diagram `json:"diagrams"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}
