package tracing

import (
	"errors"

	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys attached to flowmaker spans.
const (
	AttrMode        = "flowmaker.mode"
	AttrStage       = "flowmaker.stage"
	AttrSourceBytes = "flowmaker.source.bytes"
	AttrGraphNodes  = "flowmaker.graph.nodes"
	AttrGraphEdges  = "flowmaker.graph.edges"
	AttrErrorType   = "flowmaker.error.type"
	AttrErrorLine   = "flowmaker.error.line"
	AttrDiagramID   = "flowmaker.diagram.id"
	AttrActivityID  = "flowmaker.activity.id"
	AttrRequestID   = "flowmaker.request.id"
	AttrBackend     = "flowmaker.storage.backend"
)

// SetCompileAttributes records the input size and the emitted graph size.
func SetCompileAttributes(span trace.Span, mode string, sourceBytes, nodes, edges int) {
	span.SetAttributes(
		attribute.String(AttrMode, mode),
		attribute.Int(AttrSourceBytes, sourceBytes),
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
	)
}

// SetDiagramAttributes records the diagram identity.
func SetDiagramAttributes(span trace.Span, diagramID, activityID string) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if diagramID != "" {
		attrs = append(attrs, attribute.String(AttrDiagramID, diagramID))
	}
	if activityID != "" {
		attrs = append(attrs, attribute.String(AttrActivityID, activityID))
	}
	span.SetAttributes(attrs...)
}

// SetCompileError records err and, for compiler errors, its type and line.
func SetCompileError(span trace.Span, err error) {
	var perr *pseudoerrors.Error
	if errors.As(err, &perr) {
		span.SetAttributes(
			attribute.String(AttrErrorType, string(perr.Type)),
			attribute.Int(AttrErrorLine, perr.Line),
		)
	}
	SetError(span, err)
}
