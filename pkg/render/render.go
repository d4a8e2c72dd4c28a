package render

import (
	"context"
	"errors"
	"time"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/hierarchy"
	"mercator-hq/flowmaker/pkg/pseudo/ast"
	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/pseudo/graph"
	"mercator-hq/flowmaker/pkg/pseudo/parser"
	"mercator-hq/flowmaker/pkg/pseudo/token"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
	"mercator-hq/flowmaker/pkg/telemetry/tracing"
)

// Rendering modes.
const (
	ModeFlowchart   = "flowchart"
	ModeTreeDiagram = "tree_diagram"
)

// Compiler stage names used for spans and stage metrics.
const (
	StageTokenize  = "tokenize"
	StageNormalize = "normalize"
	StageBuild     = "build"
	StageLinearize = "linearize"
	StageHierarchy = "hierarchy"
)

// InitConfig is the rendering engine configuration handed to clients.
type InitConfig struct {
	StartOnLoad   bool   `json:"startOnLoad"`
	SecurityLevel string `json:"securityLevel"`
}

// NewInitConfig builds the client init config from the render section.
func NewInitConfig(cfg config.RenderConfig) InitConfig {
	return InitConfig{
		StartOnLoad:   cfg.StartOnLoad,
		SecurityLevel: cfg.SecurityLevel,
	}
}

// Result is a rendered diagram.
type Result struct {
	Mode       string     `json:"mode"`
	Graph      string     `json:"graph"`
	Nodes      int        `json:"graph_nodes"`
	Edges      int        `json:"graph_edges"`
	Stats      *ast.Stats `json:"stats,omitempty"`
	DurationMS float64    `json:"duration_ms"`
}

// Service compiles diagram sources. It is safe for concurrent use; each call
// is an independent compilation.
type Service struct {
	cfg     config.RenderConfig
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records compilations on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithTracer opens spans on t.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger logs through l.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a render service.
func NewService(cfg config.RenderConfig, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	s.logger = s.logger.With("component", "render")
	return s
}

// InitConfig returns the client init config.
func (s *Service) InitConfig() InitConfig {
	return NewInitConfig(s.cfg)
}

// ResolveMode maps a requested mode onto a supported one. An empty mode
// selects the configured default; any mode other than flowchart renders as
// a tree diagram.
func (s *Service) ResolveMode(mode string) string {
	if mode == "" {
		mode = s.cfg.DefaultMode
	}
	if mode == ModeFlowchart {
		return ModeFlowchart
	}
	return ModeTreeDiagram
}

// Render compiles source in the given mode. Compiler failures are returned
// as *pseudoerrors.Error carrying the surrounding source lines.
func (s *Service) Render(ctx context.Context, mode, source string) (*Result, error) {
	mode = s.ResolveMode(mode)
	ctx = logging.WithMode(ctx, mode)

	ctx, span := s.tracer.Start(ctx, "render")
	defer span.End()

	start := time.Now()
	var (
		res *Result
		err error
	)
	switch mode {
	case ModeFlowchart:
		res, err = s.flowchart(ctx, source)
	default:
		res, err = s.tree(ctx, source)
	}
	elapsed := time.Since(start)

	if err != nil {
		var perr *pseudoerrors.Error
		errType := "internal"
		if errors.As(err, &perr) {
			pseudoerrors.WithContext(perr, source, s.cfg.ContextLines)
			errType = string(perr.Type)
		}
		s.metrics.RecordCompile(mode, "error", errType, elapsed, 0, 0)
		tracing.SetCompileError(span, err)
		s.logger.DebugContext(ctx, "compile failed",
			"error_type", errType,
			"error", err.Error(),
		)
		return nil, err
	}

	res.Mode = mode
	res.DurationMS = float64(elapsed.Microseconds()) / 1000
	s.metrics.RecordCompile(mode, "success", "", elapsed, res.Nodes, res.Edges)
	tracing.SetCompileAttributes(span, mode, len(source), res.Nodes, res.Edges)
	tracing.SetError(span, nil)
	return res, nil
}

func (s *Service) flowchart(ctx context.Context, source string) (*Result, error) {
	var (
		tokens []token.Token
		tree   ast.Tree
		out    *graph.Result
	)

	err := s.stage(ctx, StageTokenize, func() (err error) {
		tokens, err = token.Tokenize(source)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = s.stage(ctx, StageNormalize, func() (err error) {
		tokens, err = parser.Normalize(tokens)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = s.stage(ctx, StageBuild, func() (err error) {
		tree, err = parser.Build(tokens)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = s.stage(ctx, StageLinearize, func() (err error) {
		out, err = graph.LinearizeResult(tree)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := ast.Summarize(tree)
	return &Result{
		Graph: out.Text,
		Nodes: out.Nodes,
		Edges: out.Edges,
		Stats: &stats,
	}, nil
}

func (s *Service) tree(ctx context.Context, source string) (*Result, error) {
	var nodes []*hierarchy.Node
	_ = s.stage(ctx, StageHierarchy, func() error {
		nodes = hierarchy.Parse(source)
		return nil
	})

	res := &Result{Graph: hierarchy.Format(nodes)}
	ids := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
		if n.Parent != nil {
			res.Edges++
		}
	}
	res.Nodes = len(ids)
	return res, nil
}

// stage runs fn inside a child span and records its duration.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	_, span := s.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn()
	s.metrics.RecordStage(name, time.Since(start))
	if err != nil {
		tracing.SetError(span, err)
	}
	return err
}
