package metrics

import (
	"strconv"
	"time"

	"mercator-hq/flowmaker/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const httpSubsystem = "http"

// HTTPMetrics tracks the HTTP API.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route", "method"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: httpSubsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}

	registry.MustRegister(hm.requestsTotal, hm.requestDuration, hm.inFlight)

	return hm
}

// RecordRequest counts a request and observes its duration.
func (hm *HTTPMetrics) RecordRequest(route, method string, code int, duration time.Duration) {
	hm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	hm.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
