package metrics

import (
	"time"

	"mercator-hq/flowmaker/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const storageSubsystem = "storage"

// StorageMetrics tracks the diagram store and retention.
type StorageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	diagrams          *prometheus.GaugeVec
	prunedTotal       *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: storageSubsystem,
				Name:      "operations_total",
				Help:      "Total number of diagram storage operations",
			},
			[]string{"backend", "operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: storageSubsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of diagram storage operations in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"backend", "operation"},
		),
		diagrams: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: storageSubsystem,
				Name:      "diagrams",
				Help:      "Number of stored diagrams",
			},
			[]string{"backend"},
		),
		prunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: storageSubsystem,
				Name:      "pruned_total",
				Help:      "Total number of diagrams removed by retention",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.diagrams,
		sm.prunedTotal,
	)

	return sm
}

// RecordOperation counts a storage operation and observes its duration.
func (sm *StorageMetrics) RecordOperation(backend, operation, status string, duration time.Duration) {
	sm.operationsTotal.WithLabelValues(backend, operation, status).Inc()
	sm.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetDiagrams sets the stored diagram gauge.
func (sm *StorageMetrics) SetDiagrams(backend string, count int64) {
	sm.diagrams.WithLabelValues(backend).Set(float64(count))
}

// RecordPruned adds count to the pruned counter.
func (sm *StorageMetrics) RecordPruned(reason string, count int64) {
	if count <= 0 {
		return
	}
	sm.prunedTotal.WithLabelValues(reason).Add(float64(count))
}
