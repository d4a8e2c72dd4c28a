package config

import "time"

// Config is the root configuration structure for flowmaker.
// It contains all configuration sections for the HTTP service, the
// compiler front end, diagram storage, the file watcher and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and request limits.
	Server ServerConfig `yaml:"server"`

	// Render contains compiler and renderer configuration.
	Render RenderConfig `yaml:"render"`

	// Storage contains configuration for saved diagrams.
	Storage StorageConfig `yaml:"storage"`

	// Retention contains pruning configuration for saved diagrams.
	Retention RetentionConfig `yaml:"retention"`

	// Watch contains configuration for the source file watcher.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxSourceBytes limits the size of a pseudocode source accepted by the
	// render and save endpoints.
	// Default: 262144 (256KB)
	MaxSourceBytes int64 `yaml:"max_source_bytes"`

	// ShareBaseURL is the editor URL that share links point to.
	// Default: "http://localhost:3000/"
	ShareBaseURL string `yaml:"share_base_url"`

	// RateLimit limits the endpoints that compile sources.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig limits compiling requests. Zero values disable a limit.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained compile rate allowed per client IP.
	// Default: 0 (unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the number of compiles a client may make at once.
	// Default: twice RequestsPerSecond, at least 1
	Burst int `yaml:"burst"`

	// MaxConcurrentCompiles caps compiles in flight across all clients.
	// Default: 0 (unlimited)
	MaxConcurrentCompiles int `yaml:"max_concurrent_compiles"`
}

// Enabled reports whether any limit is set.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0 || c.MaxConcurrentCompiles > 0
}

// RenderConfig contains compiler and renderer configuration.
type RenderConfig struct {
	// DefaultMode is the diagram mode used when a request names none.
	// Options: "flowchart", "tree_diagram"
	// Default: "flowchart"
	DefaultMode string `yaml:"default_mode"`

	// StartOnLoad is passed to the rendering engine's init call.
	// Default: false
	StartOnLoad bool `yaml:"start_on_load"`

	// SecurityLevel is passed to the rendering engine's init call.
	// Options: "strict", "loose", "antiscript", "sandbox"
	// Default: "strict"
	SecurityLevel string `yaml:"security_level"`

	// ContextLines is the number of source lines shown on either side of an
	// error line in diagnostics.
	// Default: 2
	ContextLines int `yaml:"context_lines"`
}

// StorageConfig contains configuration for saved diagrams.
type StorageConfig struct {
	// Backend specifies the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/diagrams.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains pruning configuration for saved diagrams.
type RetentionConfig struct {
	// Days is the number of days to keep a diagram after its last update.
	// 0 means keep diagrams forever.
	// Default: 0
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of diagrams to keep; the oldest are
	// deleted first. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// WatchConfig contains configuration for the source file watcher.
type WatchConfig struct {
	// Extensions lists the source file extensions that are recompiled.
	// Default: [".pseudo", ".txt"]
	Extensions []string `yaml:"extensions"`

	// OutputExtension is the extension of generated graph files.
	// Default: ".mmd"
	OutputExtension string `yaml:"output_extension"`

	// OutputDir is the directory for generated files. Empty writes next to
	// the source file.
	OutputDir string `yaml:"output_dir"`

	// Debounce is the quiet period after the last change before a file is
	// recompiled.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "flowmaker"
	Namespace string `yaml:"namespace"`

	// CompileDurationBuckets defines histogram buckets for compile duration (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5]
	CompileDurationBuckets []float64 `yaml:"compile_duration_buckets"`

	// RequestDurationBuckets defines histogram buckets for HTTP request duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "flowmaker"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
