package diagram

import (
	"context"
	"errors"
	"time"

	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
)

// Renderer compiles diagram sources.
type Renderer interface {
	Render(ctx context.Context, mode, source string) (*render.Result, error)
}

// Manager saves diagrams after compiling them and records storage metrics.
type Manager struct {
	store    Storage
	renderer Renderer
	metrics  *metrics.Collector
	logger   *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMetrics records storage operations on c.
func WithMetrics(c *metrics.Collector) ManagerOption {
	return func(m *Manager) { m.metrics = c }
}

// WithLogger logs through l.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager over store.
func NewManager(store Storage, renderer Renderer, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, renderer: renderer}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	m.logger = m.logger.With("component", "diagram.manager", "backend", store.Backend())
	return m
}

// Store returns the underlying storage.
func (m *Manager) Store() Storage {
	return m.store
}

// Save compiles d.Source in d.Mode and stores the result. A source that
// does not compile is rejected with a *CompileError and nothing is stored.
func (m *Manager) Save(ctx context.Context, d *Diagram) (*Diagram, error) {
	ctx = logging.WithActivityID(ctx, d.ActivityID)

	res, err := m.renderer.Render(ctx, d.Mode, d.Source)
	if err != nil {
		return nil, &CompileError{Mode: d.Mode, Cause: err}
	}
	d.Mode = res.Mode
	d.Graph = res.Graph

	start := time.Now()
	err = m.store.Save(ctx, d)
	m.observe("save", start, err)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to save diagram", "error", err)
		return nil, err
	}

	m.logger.InfoContext(logging.WithDiagramID(ctx, d.ID), "diagram saved", "mode", d.Mode)
	m.refreshCount(ctx)
	return d, nil
}

// Get returns the diagram with id.
func (m *Manager) Get(ctx context.Context, id string) (*Diagram, error) {
	start := time.Now()
	d, err := m.store.Get(ctx, id)
	m.observe("get", start, err)
	return d, err
}

// GetByActivity returns the diagram saved for an activity.
func (m *Manager) GetByActivity(ctx context.Context, activityID string) (*Diagram, error) {
	start := time.Now()
	d, err := m.store.GetByActivity(ctx, activityID)
	m.observe("get_by_activity", start, err)
	return d, err
}

// List returns diagrams matching q.
func (m *Manager) List(ctx context.Context, q *Query) ([]*Diagram, error) {
	start := time.Now()
	ds, err := m.store.List(ctx, q)
	m.observe("list", start, err)
	return ds, err
}

// Delete removes the diagram with id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.store.Delete(ctx, id)
	m.observe("delete", start, err)
	if err != nil {
		return err
	}

	m.logger.InfoContext(logging.WithDiagramID(ctx, id), "diagram deleted")
	m.refreshCount(ctx)
	return nil
}

func (m *Manager) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	m.metrics.RecordStorageOp(m.store.Backend(), op, err, time.Since(start))
}

func (m *Manager) refreshCount(ctx context.Context) {
	n, err := m.store.Count(ctx, &Query{})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to count diagrams", "error", err)
		return
	}
	m.metrics.SetDiagramCount(m.store.Backend(), n)
}
