package metrics

import (
	"net/http"
	"sync"
	"time"

	"mercator-hq/flowmaker/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OtherLabel replaces label values once the cardinality limit is reached.
const OtherLabel = "other"

// Collector owns every flowmaker metric and the registry they are
// registered with. A nil *Collector is valid and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	compileMetrics *CompileMetrics
	storageMetrics *StorageMetrics
	httpMetrics    *HTTPMetrics
	watchMetrics   *WatchMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics. If registry is
// nil a fresh registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.CompileDurationBuckets) == 0 {
		cfg.CompileDurationBuckets = config.DefaultCompileDurationBuckets
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.compileMetrics = NewCompileMetrics(cfg, registry)
	c.storageMetrics = NewStorageMetrics(cfg, registry)
	c.httpMetrics = NewHTTPMetrics(cfg, registry)
	c.watchMetrics = NewWatchMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordCompile records one compilation.
//
// Parameters:
//   - mode: "flowchart" or "tree_diagram"
//   - status: "success" or "error"
//   - errType: compiler error type, empty on success
//   - duration: wall time of the whole pipeline
//   - nodes, edges: size of the emitted graph
func (c *Collector) RecordCompile(mode, status, errType string, duration time.Duration, nodes, edges int) {
	if !c.enabled() {
		return
	}

	c.compileMetrics.RecordCompile(mode, status, duration)
	if errType != "" {
		c.compileMetrics.RecordError(mode, errType)
		return
	}
	c.compileMetrics.RecordGraph(mode, nodes, edges)
}

// RecordStage records the duration of a single compiler stage
// ("tokenize", "normalize", "build", "linearize").
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.compileMetrics.RecordStage(stage, duration)
}

// RecordStorageOp records a storage operation against a backend.
func (c *Collector) RecordStorageOp(backend, operation string, err error, duration time.Duration) {
	if !c.enabled() {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	c.storageMetrics.RecordOperation(backend, operation, status, duration)
}

// SetDiagramCount sets the number of stored diagrams.
func (c *Collector) SetDiagramCount(backend string, count int64) {
	if !c.enabled() {
		return
	}

	c.storageMetrics.SetDiagrams(backend, count)
}

// RecordPruned records diagrams removed by retention.
//
// Parameters:
//   - reason: "age" or "count"
//   - count: number of diagrams removed
func (c *Collector) RecordPruned(reason string, count int64) {
	if !c.enabled() {
		return
	}

	c.storageMetrics.RecordPruned(reason, count)
}

// RecordHTTPRequest records a served HTTP request. Route values beyond the
// cardinality limit are folded into OtherLabel.
func (c *Collector) RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("http:" + route) {
		route = OtherLabel
	}
	c.httpMetrics.RecordRequest(route, method, code, duration)
}

// HTTPInFlight adjusts the in-flight request gauge by delta.
func (c *Collector) HTTPInFlight(delta float64) {
	if !c.enabled() {
		return
	}

	c.httpMetrics.inFlight.Add(delta)
}

// RecordWatchRebuild records a watcher rebuild with result "written",
// "error" or "skipped".
func (c *Collector) RecordWatchRebuild(result string) {
	if !c.enabled() {
		return
	}

	c.watchMetrics.RecordRebuild(result)
}

// Handler serves the collector's registry in the Prometheus exposition
// format. It is mounted at MetricsConfig.Path.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already tracked or still fits under the
// limit. A new label set is tracked when allowed.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
