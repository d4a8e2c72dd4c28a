package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
)

// Pruner enforces retention on stored diagrams.
type Pruner struct {
	storage diagram.Storage
	config  config.RetentionConfig
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithMetrics records pruned diagrams on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pruner) { p.metrics = c }
}

// WithClock sets the clock used to compute the age cutoff.
func WithClock(now func() time.Time) Option {
	return func(p *Pruner) { p.now = now }
}

// NewPruner creates a pruner over storage.
func NewPruner(storage diagram.Storage, cfg config.RetentionConfig, opts ...Option) *Pruner {
	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "diagram.retention"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the retention settings.
func (p *Pruner) Config() config.RetentionConfig {
	return p.config
}

// Prune removes diagrams not updated within Days, then the least recently
// updated diagrams beyond MaxRecords. A zero setting disables its phase.
// It returns the number of diagrams removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		cutoff := p.now().Add(-time.Duration(p.config.Days) * 24 * time.Hour)
		deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return total, p.wrap(err)
		}
		total += deleted
		p.metrics.RecordPruned("age", deleted)
		p.logger.Info("pruned diagrams by age",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.storage.DeleteOldest(ctx, p.config.MaxRecords)
		if err != nil {
			return total, p.wrap(err)
		}
		total += deleted
		p.metrics.RecordPruned("count", deleted)
		p.logger.Info("pruned diagrams by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if total == 0 {
		p.logger.Debug("no diagrams pruned")
		return 0, nil
	}

	if n, err := p.storage.Count(ctx, &diagram.Query{}); err == nil {
		p.metrics.SetDiagramCount(p.storage.Backend(), n)
	}
	return total, nil
}

func (p *Pruner) wrap(err error) error {
	return &diagram.RetentionError{
		RetentionDays: p.config.Days,
		MaxRecords:    p.config.MaxRecords,
		Cause:         err,
	}
}
