package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"mercator-hq/flowmaker/pkg/config"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "default timeout", timeout: 0, want: 5 * time.Second},
		{name: "custom timeout", timeout: 2 * time.Second, want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.want {
				t.Errorf("timeout = %v, want %v", checker.checkTimeout, tt.want)
			}
			if len(checker.ListChecks()) != 0 {
				t.Error("expected no checks")
			}
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("b", func(ctx context.Context) error { return nil })
	checker.RegisterPinger("a", pingerFunc(func(ctx context.Context) error { return nil }))

	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ListChecks() = %v", got)
	}

	checker.UnregisterCheck("a")
	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"storage": func(ctx context.Context) error { return nil },
				"config":  func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"storage": func(ctx context.Context) error { return errors.New("database is locked") },
				"config":  func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy {
		t.Fatalf("status = %q, want %q", result.Status, StatusUnhealthy)
	}
	if result.Message != ErrCheckTimeout.Error() {
		t.Errorf("message = %q, want %q", result.Message, ErrCheckTimeout.Error())
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	failing := false
	checker.RegisterCheck("storage", func(ctx context.Context) error {
		if failing {
			return errors.New("closed")
		}
		return nil
	})

	mux := http.NewServeMux()
	cfg := config.HealthConfig{
		Enabled:       true,
		LivenessPath:  "/health",
		ReadinessPath: "/ready",
		VersionPath:   "/version",
	}
	Register(mux, cfg, checker, NewVersionInfo("1.2.3", "abc", "today"))

	tests := []struct {
		name     string
		method   string
		path     string
		failing  bool
		wantCode int
	}{
		{name: "liveness", method: http.MethodGet, path: "/health", wantCode: http.StatusOK},
		{name: "readiness ok", method: http.MethodGet, path: "/ready", wantCode: http.StatusOK},
		{name: "readiness failing", method: http.MethodGet, path: "/ready", failing: true, wantCode: http.StatusServiceUnavailable},
		{name: "version", method: http.MethodGet, path: "/version", wantCode: http.StatusOK},
		{name: "head", method: http.MethodHead, path: "/health", wantCode: http.StatusOK},
		{name: "post rejected", method: http.MethodPost, path: "/health", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing = tt.failing
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Error("HEAD response should have no body")
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(NewVersionInfo("1.2.3", "abc", "today")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc" || info.GoVersion == "" {
		t.Errorf("unexpected version info: %+v", info)
	}
}

func TestRegister_Disabled(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, config.HealthConfig{Enabled: false, LivenessPath: "/health"}, New(0), VersionInfo{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}
