// Package render is the entry point for turning diagram sources into graph
// text. It dispatches on the rendering mode: "flowchart" compiles
// pseudocode, any other mode renders an indentation hierarchy. Each
// compilation is traced stage by stage and recorded in the metrics
// collector.
package render
