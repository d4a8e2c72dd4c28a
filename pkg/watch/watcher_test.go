package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const readGraph = "flowchart TD\nid0[\"Start\"]\nid0-->id1\nid1[\"read n\"]\nid1--->id2\nid2[\"End\"]\n"

func testWatchConfig() config.WatchConfig {
	return config.WatchConfig{
		Extensions:      []string{".pseudo", ".txt"},
		OutputExtension: ".mmd",
		Debounce:        30 * time.Millisecond,
	}
}

func newTestWatcher(t *testing.T, cfg config.WatchConfig, opts ...Option) *Watcher {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "error", Format: "json", Writer: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	renderer := render.NewService(config.RenderConfig{DefaultMode: render.ModeFlowchart, ContextLines: 1}, render.WithLogger(logger))

	w, err := New(cfg, renderer, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		outputDir string
		source    string
		want      string
	}{
		{name: "beside source", source: "/docs/loop.pseudo", want: "/docs/loop.mmd"},
		{name: "output dir", outputDir: "/out", source: "/docs/loop.txt", want: "/out/loop.mmd"},
		{name: "dotted name", source: "/docs/a.b.pseudo", want: "/docs/a.b.mmd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testWatchConfig()
			cfg.OutputDir = tt.outputDir
			w := newTestWatcher(t, cfg)
			if got := w.OutputPath(tt.source); got != filepath.FromSlash(tt.want) {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "read.pseudo")
	out := filepath.Join(dir, "read.mmd")

	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, nil)
	w := newTestWatcher(t, testWatchConfig(), WithMetrics(collector))

	writeFile(t, src, "read n")
	res := w.Build(context.Background(), src)
	if res.Err != nil {
		t.Fatalf("Build() error = %v", res.Err)
	}
	if res.Output != out || res.Mode != render.ModeFlowchart {
		t.Errorf("result = %+v", res)
	}
	if got := readFile(t, out); got != readGraph {
		t.Errorf("output = %q, want %q", got, readGraph)
	}

	t.Run("compile error keeps previous output", func(t *testing.T) {
		writeFile(t, src, "read n\nsay \"hi")
		res := w.Build(context.Background(), src)
		if res.Err == nil {
			t.Fatal("Build() should fail")
		}
		if res.Line() != 1 {
			t.Errorf("Line() = %d, want 1", res.Line())
		}
		if got := readFile(t, out); got != readGraph {
			t.Errorf("output changed to %q", got)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		res := w.Build(context.Background(), filepath.Join(dir, "missing.pseudo"))
		if res.Err == nil || res.Line() != -1 {
			t.Errorf("result = %+v", res)
		}
	})

	const want = `
# HELP test_watch_rebuilds_total Total number of watcher rebuilds by result
# TYPE test_watch_rebuilds_total counter
test_watch_rebuilds_total{result="error"} 2
test_watch_rebuilds_total{result="success"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want), "test_watch_rebuilds_total"); err != nil {
		t.Error(err)
	}
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pseudo"), "read n")
	writeFile(t, filepath.Join(dir, "notes.md"), "read n")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "read n")
	if err := os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, ".hidden", "c.pseudo"), "read n")

	w := newTestWatcher(t, testWatchConfig())
	results := w.BuildAll(context.Background(), dir)

	if len(results) != 2 {
		t.Fatalf("built %d files, want 2: %+v", len(results), results)
	}
	for _, p := range []string{"a.mmd", filepath.Join("sub", "b.mmd")} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("missing output %s", p)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.mmd")); !os.IsNotExist(err) {
		t.Error("non-source file was built")
	}
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "flow.pseudo")
	out := filepath.Join(dir, "flow.mmd")
	writeFile(t, src, "read m")

	built := make(chan BuildResult, 16)
	w := newTestWatcher(t, testWatchConfig(), OnBuild(func(r BuildResult) { built <- r }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	// Initial build.
	select {
	case r := <-built:
		if r.Err != nil {
			t.Fatalf("initial build error = %v", r.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial build")
	}

	writeFile(t, src, "read n")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case r := <-built:
			if r.Err == nil && readFile(t, out) == readGraph {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Watch() error = %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("output was not rebuilt after change")
		}
	}
}

func TestWatch_DoubleStart(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, testWatchConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, dir) }()

	time.Sleep(50 * time.Millisecond)
	if err := w.Watch(ctx, dir); err == nil {
		t.Error("second Watch() should fail")
	}
}

func TestWatch_MissingPath(t *testing.T) {
	w := newTestWatcher(t, testWatchConfig())
	if err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Watch() on a missing path should fail")
	}
}

func TestDebouncer_Trigger(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var a, b atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger("a", func() { a.Add(1) })
		d.Trigger("b", func() { b.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if a.Load() != 1 || b.Load() != 1 {
		t.Errorf("callbacks = %d/%d, want 1/1", a.Load(), b.Load())
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Stop()
	d.Trigger("a", func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("callback called %d times after Stop(), want 0", calls.Load())
	}
}

func TestDebouncer_Concurrent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Trigger("same", func() { calls.Add(1) })
		}()
	}
	wg.Wait()
	time.Sleep(80 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("callback called %d times, want 1", calls.Load())
	}
}
