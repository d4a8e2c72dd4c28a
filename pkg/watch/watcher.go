package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/flowmaker/pkg/config"
	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/render"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
)

// Rebuild results recorded in metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Renderer compiles diagram sources.
type Renderer interface {
	Render(ctx context.Context, mode, source string) (*render.Result, error)
}

// BuildResult describes one rebuild of a source file.
type BuildResult struct {
	Source string
	Output string
	Mode   string

	// Err is the compile or I/O failure. On failure Output is left as it
	// was before the rebuild.
	Err error
}

// Line returns the 0-based source line of a compile error, or -1.
func (r BuildResult) Line() int {
	var perr *pseudoerrors.Error
	if errors.As(r.Err, &perr) {
		return perr.Line
	}
	return -1
}

// Watcher recompiles source files when they change and writes the graph
// next to them (or into the configured output directory).
type Watcher struct {
	cfg      config.WatchConfig
	renderer Renderer
	mode     string
	metrics  *metrics.Collector
	logger   *logging.Logger
	onBuild  func(BuildResult)

	fsw      *fsnotify.Watcher
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithMode compiles in mode instead of the renderer's default.
func WithMode(mode string) Option {
	return func(w *Watcher) { w.mode = mode }
}

// WithMetrics records rebuilds on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Watcher) { w.metrics = c }
}

// WithLogger logs through l.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// OnBuild calls fn after every build, successful or not.
func OnBuild(fn func(BuildResult)) Option {
	return func(w *Watcher) { w.onBuild = fn }
}

// New creates a watcher.
func New(cfg config.WatchConfig, renderer Renderer, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		renderer: renderer,
		fsw:      fsw,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.Default()
	}
	w.logger = w.logger.With("component", "watch")
	return w, nil
}

// Watch builds every source under path once, then rebuilds sources as they
// change. path is a single file or a directory, watched recursively. Watch
// blocks until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	if info.IsDir() {
		err = w.addDirectory(path)
	} else {
		// Watch the parent so editors that replace the file on save are seen.
		err = w.fsw.Add(filepath.Dir(path))
	}
	if err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	w.BuildAll(ctx, path)

	w.logger.Info("file watcher started",
		"path", path,
		"debounce_ms", w.cfg.Debounce.Milliseconds(),
		"extensions", strings.Join(w.cfg.Extensions, ","),
	)

	single := ""
	if !info.IsDir() {
		single = filepath.Clean(path)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if single != "" && filepath.Clean(event.Name) != single {
				continue
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectory(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.shouldProcessEvent(event) {
		return
	}

	w.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())

	name := event.Name
	w.debounce.Trigger(name, func() {
		if _, err := os.Stat(name); err != nil {
			// Removed or renamed away; the last output stays.
			return
		}
		w.Build(ctx, name)
	})
}

// Stop stops a running Watch and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	w.debounce.Stop()

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// BuildAll builds every source file under path and returns the results in
// walk order.
func (w *Watcher) BuildAll(ctx context.Context, path string) []BuildResult {
	var results []BuildResult
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != path && isHidden(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.isSource(p) {
			results = append(results, w.Build(ctx, p))
		}
		return nil
	})
	return results
}

// Build compiles one source file and writes its graph. On a compile error
// the previous output file is left untouched and the error is logged with
// its line.
func (w *Watcher) Build(ctx context.Context, source string) BuildResult {
	result := BuildResult{Source: source, Output: w.OutputPath(source)}
	defer func() {
		status := ResultSuccess
		if result.Err != nil {
			status = ResultError
		}
		w.metrics.RecordWatchRebuild(status)
		if w.onBuild != nil {
			w.onBuild(result)
		}
	}()

	data, err := os.ReadFile(source)
	if err != nil {
		result.Err = fmt.Errorf("failed to read source: %w", err)
		w.logger.Error("failed to read source", "path", source, "error", err)
		return result
	}

	res, err := w.renderer.Render(ctx, w.mode, string(data))
	if err != nil {
		result.Err = err
		w.logger.Warn("compile failed, keeping previous output",
			"path", source,
			"line", result.Line(),
			"error", err.Error(),
		)
		return result
	}
	result.Mode = res.Mode

	if err := writeFileAtomic(result.Output, []byte(res.Graph)); err != nil {
		result.Err = err
		w.logger.Error("failed to write output", "path", result.Output, "error", err)
		return result
	}

	w.logger.Info("diagram rebuilt",
		"path", source,
		"output", result.Output,
		"mode", res.Mode,
		"nodes", res.Nodes,
	)
	return result
}

// OutputPath returns where the graph for source is written:
// <name><output_extension> in the output directory, or beside source.
func (w *Watcher) OutputPath(source string) string {
	dir := w.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+w.cfg.OutputExtension)
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(p) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", p, err)
		}
		w.logger.Debug("watching directory", "path", p)
		return nil
	})
}

// shouldProcessEvent reports whether event changes a source file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return w.isSource(event.Name)
}

func (w *Watcher) isSource(path string) bool {
	if isHidden(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range w.cfg.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// writeFileAtomic replaces path with data via a temp file and rename, so a
// reader never sees a partial graph.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
