package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			modify: func(cfg *Config) {},
		},
		{
			name:      "empty listen address",
			modify:    func(cfg *Config) { cfg.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "negative read timeout",
			modify:    func(cfg *Config) { cfg.Server.ReadTimeout = -1 },
			wantField: "server.read_timeout",
		},
		{
			name:      "zero max source bytes",
			modify:    func(cfg *Config) { cfg.Server.MaxSourceBytes = 0 },
			wantField: "server.max_source_bytes",
		},
		{
			name:      "relative share url",
			modify:    func(cfg *Config) { cfg.Server.ShareBaseURL = "/editor" },
			wantField: "server.share_base_url",
		},
		{
			name:      "negative rate limit",
			modify:    func(cfg *Config) { cfg.Server.RateLimit.RequestsPerSecond = -1 },
			wantField: "server.rate_limit.requests_per_second",
		},
		{
			name:      "negative concurrent compiles",
			modify:    func(cfg *Config) { cfg.Server.RateLimit.MaxConcurrentCompiles = -2 },
			wantField: "server.rate_limit.max_concurrent_compiles",
		},
		{
			name:      "unknown render mode",
			modify:    func(cfg *Config) { cfg.Render.DefaultMode = "sequence" },
			wantField: "render.default_mode",
		},
		{
			name:      "unknown security level",
			modify:    func(cfg *Config) { cfg.Render.SecurityLevel = "none" },
			wantField: "render.security_level",
		},
		{
			name:      "unknown backend",
			modify:    func(cfg *Config) { cfg.Storage.Backend = "postgres" },
			wantField: "storage.backend",
		},
		{
			name: "memory backend ignores sqlite settings",
			modify: func(cfg *Config) {
				cfg.Storage.Backend = "memory"
				cfg.Storage.SQLite.Driver = "bogus"
			},
		},
		{
			name:      "idle above open conns",
			modify:    func(cfg *Config) { cfg.Storage.SQLite.MaxIdleConns = 20 },
			wantField: "storage.sqlite.max_idle_conns",
		},
		{
			name:      "negative retention days",
			modify:    func(cfg *Config) { cfg.Retention.Days = -1 },
			wantField: "retention.days",
		},
		{
			name:      "extension without dot",
			modify:    func(cfg *Config) { cfg.Watch.Extensions = []string{"txt"} },
			wantField: "watch.extensions[0]",
		},
		{
			name:      "extension equals output",
			modify:    func(cfg *Config) { cfg.Watch.Extensions = []string{".mmd"} },
			wantField: "watch.extensions[0]",
		},
		{
			name:      "invalid log level",
			modify:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "tracing without endpoint",
			modify:    func(cfg *Config) { cfg.Telemetry.Tracing.Enabled = true },
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name:      "sample ratio out of range",
			modify:    func(cfg *Config) { cfg.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:      "health path without slash",
			modify:    func(cfg *Config) { cfg.Telemetry.Health.ReadinessPath = "ready" },
			wantField: "telemetry.health.readiness_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected single error message: %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("unexpected multi error message: %q", got)
	}
}
