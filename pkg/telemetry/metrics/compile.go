package metrics

import (
	"time"

	"mercator-hq/flowmaker/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const compileSubsystem = "compiler"

// CompileMetrics tracks compilations.
//
// Metrics:
//   - flowmaker_compiler_compiles_total{mode,status}
//   - flowmaker_compiler_compile_duration_seconds{mode}
//   - flowmaker_compiler_stage_duration_seconds{stage}
//   - flowmaker_compiler_errors_total{mode,type}
//   - flowmaker_compiler_graph_nodes{mode}
//   - flowmaker_compiler_graph_edges{mode}
type CompileMetrics struct {
	compilesTotal   *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	stageDuration   *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	graphNodes      *prometheus.HistogramVec
	graphEdges      *prometheus.HistogramVec
}

var graphSizeBuckets = []float64{2, 5, 10, 25, 50, 100, 250, 1000}

// NewCompileMetrics creates and registers compile metrics.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "compiles_total",
				Help:      "Total number of diagram compilations",
			},
			[]string{"mode", "status"},
		),
		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "compile_duration_seconds",
				Help:      "Duration of diagram compilations in seconds",
				Buckets:   cfg.CompileDurationBuckets,
			},
			[]string{"mode"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual compiler stages in seconds",
				Buckets:   cfg.CompileDurationBuckets,
			},
			[]string{"stage"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "errors_total",
				Help:      "Total number of compile errors by type",
			},
			[]string{"mode", "type"},
		),
		graphNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "graph_nodes",
				Help:      "Number of nodes in emitted graphs",
				Buckets:   graphSizeBuckets,
			},
			[]string{"mode"},
		),
		graphEdges: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: compileSubsystem,
				Name:      "graph_edges",
				Help:      "Number of edges in emitted graphs",
				Buckets:   graphSizeBuckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		cm.compilesTotal,
		cm.compileDuration,
		cm.stageDuration,
		cm.errorsTotal,
		cm.graphNodes,
		cm.graphEdges,
	)

	return cm
}

// RecordCompile counts a compilation and observes its duration.
func (cm *CompileMetrics) RecordCompile(mode, status string, duration time.Duration) {
	cm.compilesTotal.WithLabelValues(mode, status).Inc()
	cm.compileDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordStage observes a stage duration.
func (cm *CompileMetrics) RecordStage(stage string, duration time.Duration) {
	cm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordError counts a compile error.
func (cm *CompileMetrics) RecordError(mode, errType string) {
	cm.errorsTotal.WithLabelValues(mode, errType).Inc()
}

// RecordGraph observes the size of an emitted graph.
func (cm *CompileMetrics) RecordGraph(mode string, nodes, edges int) {
	cm.graphNodes.WithLabelValues(mode).Observe(float64(nodes))
	cm.graphEdges.WithLabelValues(mode).Observe(float64(edges))
}
