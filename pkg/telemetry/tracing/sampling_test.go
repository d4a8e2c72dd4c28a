package tracing

import (
	"strings"
	"testing"
)

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
		wantDesc string
	}{
		{name: "always", strategy: SamplerAlways, wantDesc: "AlwaysOnSampler"},
		{name: "never", strategy: SamplerNever, wantDesc: "AlwaysOffSampler"},
		{name: "ratio", strategy: SamplerRatio, ratio: 0.25, wantDesc: "TraceIDRatioBased{0.25}"},
		{name: "empty means ratio", strategy: "", ratio: 0.5, wantDesc: "TraceIDRatioBased{0.5}"},
		{name: "ratio too high", strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{name: "ratio negative", strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{name: "unknown", strategy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			desc := sampler.Description()
			if !strings.HasPrefix(desc, "ParentBased") || !strings.Contains(desc, tt.wantDesc) {
				t.Errorf("Description() = %q, want ParentBased wrapping %q", desc, tt.wantDesc)
			}
		})
	}
}
