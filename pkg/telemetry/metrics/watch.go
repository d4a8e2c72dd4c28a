package metrics

import (
	"mercator-hq/flowmaker/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WatchMetrics tracks file-watcher rebuilds.
type WatchMetrics struct {
	rebuildsTotal *prometheus.CounterVec
}

// NewWatchMetrics creates and registers watcher metrics.
func NewWatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WatchMetrics {
	wm := &WatchMetrics{
		rebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "watch",
				Name:      "rebuilds_total",
				Help:      "Total number of watcher rebuilds by result",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(wm.rebuildsTotal)
	return wm
}

// RecordRebuild counts a rebuild.
func (wm *WatchMetrics) RecordRebuild(result string) {
	wm.rebuildsTotal.WithLabelValues(result).Inc()
}
