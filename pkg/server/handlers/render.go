package handlers

import (
	"net/http"

	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/server/types"
)

// Render handles POST /v1/render.
func (a *API) Render(w http.ResponseWriter, r *http.Request) {
	var req types.RenderRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.checkSource(req.Source); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.renderer.Render(r.Context(), req.Mode, req.Source)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.RenderResponse{
		Result:   res,
		ShareURL: a.shareURL(res.Mode, req.Source),
	})
}

// Config handles GET /v1/config.
func (a *API) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ConfigResponse{
		Init:        a.renderer.InitConfig(),
		DefaultMode: a.renderer.ResolveMode(""),
		Modes:       []string{render.ModeFlowchart, render.ModeTreeDiagram},
	})
}

// Share handles GET /v1/share?diagram=<encoded>[&mode=<mode>]. It decodes a
// share link value and renders it.
func (a *API) Share(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value := q.Get(diagram.ShareParam)
	if value == "" {
		a.fail(w, r, &requestError{message: "missing query parameter: " + diagram.ShareParam})
		return
	}

	source, err := diagram.DecodeShare(value)
	if err != nil {
		a.fail(w, r, &requestError{message: err.Error()})
		return
	}
	if err := a.checkSource(source); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.renderer.Render(r.Context(), q.Get("mode"), source)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ShareResponse{Source: source, Result: res})
}
