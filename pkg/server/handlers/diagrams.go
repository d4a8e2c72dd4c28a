package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/server/types"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SaveActivityDiagram handles PUT /v1/activities/{activity}/diagram. The
// source must compile; the stored diagram replaces any previous one for the
// activity.
func (a *API) SaveActivityDiagram(w http.ResponseWriter, r *http.Request) {
	if !a.storageReady(w, r) {
		return
	}

	activity := r.PathValue("activity")
	ctx := logging.WithActivityID(r.Context(), activity)

	var req types.SaveDiagramRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.checkSource(req.Source); err != nil {
		a.fail(w, r, err)
		return
	}

	d, err := a.manager.Save(ctx, &diagram.Diagram{
		ActivityID: activity,
		Mode:       req.Mode,
		Source:     req.Source,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a.diagramResponse(d))
}

// GetActivityDiagram handles GET /v1/activities/{activity}/diagram.
func (a *API) GetActivityDiagram(w http.ResponseWriter, r *http.Request) {
	if !a.storageReady(w, r) {
		return
	}

	d, err := a.manager.GetByActivity(r.Context(), r.PathValue("activity"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.diagramResponse(d))
}

// GetDiagram handles GET /v1/diagrams/{id}.
func (a *API) GetDiagram(w http.ResponseWriter, r *http.Request) {
	if !a.storageReady(w, r) {
		return
	}

	d, err := a.manager.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.diagramResponse(d))
}

// DeleteDiagram handles DELETE /v1/diagrams/{id}.
func (a *API) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if !a.storageReady(w, r) {
		return
	}

	if err := a.manager.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDiagrams handles GET /v1/diagrams. Query parameters: activity, mode,
// updated_after, updated_before (RFC 3339), limit, offset, sort (asc|desc).
func (a *API) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	if !a.storageReady(w, r) {
		return
	}

	q, err := parseListQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	diagrams, err := a.manager.List(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	countQuery := *q
	countQuery.Limit, countQuery.Offset = 0, 0
	total, err := a.manager.Store().Count(r.Context(), &countQuery)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if diagrams == nil {
		diagrams = []*diagram.Diagram{}
	}
	writeJSON(w, http.StatusOK, types.ListDiagramsResponse{
		Diagrams: diagrams,
		Total:    total,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
}

func (a *API) storageReady(w http.ResponseWriter, r *http.Request) bool {
	if a.manager == nil {
		a.fail(w, r, diagram.ErrClosed)
		return false
	}
	return true
}

func (a *API) diagramResponse(d *diagram.Diagram) types.DiagramResponse {
	return types.DiagramResponse{
		Diagram:  d,
		ShareURL: a.shareURL(d.Mode, d.Source),
	}
}

func parseListQuery(r *http.Request) (*diagram.Query, error) {
	values := r.URL.Query()
	q := &diagram.Query{
		ActivityID: values.Get("activity"),
		Mode:       values.Get("mode"),
		Limit:      defaultListLimit,
	}

	var err error
	if v := values.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 1 || q.Limit > maxListLimit {
			return nil, &requestError{message: "limit must be between 1 and " + strconv.Itoa(maxListLimit)}
		}
	}
	if v := values.Get("offset"); v != "" {
		if q.Offset, err = strconv.Atoi(v); err != nil || q.Offset < 0 {
			return nil, &requestError{message: "offset must be a non-negative integer"}
		}
	}

	switch v := values.Get("sort"); v {
	case "", diagram.SortNewest:
		q.SortOrder = diagram.SortNewest
	case diagram.SortOldest:
		q.SortOrder = diagram.SortOldest
	default:
		return nil, &requestError{message: "sort must be 'asc' or 'desc'"}
	}

	if q.UpdatedAfter, err = parseTime(values.Get("updated_after")); err != nil {
		return nil, err
	}
	if q.UpdatedBefore, err = parseTime(values.Get("updated_before")); err != nil {
		return nil, err
	}
	return q, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.Join(&requestError{message: "invalid timestamp " + strconv.Quote(v) + ": want RFC 3339"}, err)
	}
	return t, nil
}
