package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxSourceBytes  = int64(256 * 1024)
	DefaultShareBaseURL    = "http://localhost:3000/"

	// Render defaults
	DefaultRenderMode          = "flowchart"
	DefaultRenderStartOnLoad   = false
	DefaultRenderSecurityLevel = "strict"
	DefaultRenderContextLines  = 2

	// Storage defaults
	DefaultStorageBackend      = "sqlite"
	DefaultSQLitePath          = "data/diagrams.db"
	DefaultSQLiteDriver        = "sqlite3"
	DefaultSQLiteMaxOpenConns  = 10
	DefaultSQLiteMaxIdleConns  = 5
	DefaultSQLiteWALMode       = true
	DefaultSQLiteBusyTimeout   = 5 * time.Second
	DefaultRetentionDays       = 0
	DefaultRetentionMaxRecords = int64(0)
	DefaultRetentionSchedule   = "0 3 * * *"

	// Watch defaults
	DefaultWatchOutputExtension = ".mmd"
	DefaultWatchDebounce        = 100 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "flowmaker"
	DefaultTracingEnabled      = false
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "flowmaker"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultLivenessPath        = "/health"
	DefaultReadinessPath       = "/ready"
	DefaultVersionPath         = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// Default slice values. Slices cannot be constants.
var (
	DefaultWatchExtensions        = []string{".pseudo", ".txt"}
	DefaultCompileDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}
	DefaultRequestDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// NewDefaultConfig returns a configuration with every field set to its
// default. Boolean fields whose default is true are set here; LoadConfig
// decodes YAML on top of this value so an explicit false survives.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Render.StartOnLoad = DefaultRenderStartOnLoad
	cfg.Storage.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxSourceBytes == 0 {
		cfg.Server.MaxSourceBytes = DefaultMaxSourceBytes
	}
	if cfg.Server.ShareBaseURL == "" {
		cfg.Server.ShareBaseURL = DefaultShareBaseURL
	}

	// Render defaults
	if cfg.Render.DefaultMode == "" {
		cfg.Render.DefaultMode = DefaultRenderMode
	}
	if cfg.Render.SecurityLevel == "" {
		cfg.Render.SecurityLevel = DefaultRenderSecurityLevel
	}
	if cfg.Render.ContextLines == 0 {
		cfg.Render.ContextLines = DefaultRenderContextLines
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Storage.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Retention defaults
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultRetentionSchedule
	}

	// Watch defaults
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}
	if cfg.Watch.OutputExtension == "" {
		cfg.Watch.OutputExtension = DefaultWatchOutputExtension
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	applyTelemetryDefaults(cfg)
}

func applyTelemetryDefaults(cfg *Config) {
	t := &cfg.Telemetry

	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.CompileDurationBuckets) == 0 {
		t.Metrics.CompileDurationBuckets = append([]float64(nil), DefaultCompileDurationBuckets...)
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.VersionPath == "" {
		t.Health.VersionPath = DefaultVersionPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
