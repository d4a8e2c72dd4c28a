package pseudo

import (
	"os"

	"mercator-hq/flowmaker/pkg/pseudo/ast"
	"mercator-hq/flowmaker/pkg/pseudo/graph"
	"mercator-hq/flowmaker/pkg/pseudo/parser"
)

// Output is a compiled program: the flowchart text plus the shape of the
// tree and graph it came from.
type Output struct {
	Graph string    `json:"graph"`
	Stats ast.Stats `json:"stats"`
	Nodes int       `json:"graph_nodes"`
	Edges int       `json:"graph_edges"`
}

// Compile converts pseudocode into flowchart text. It returns the first
// error encountered; there is no partial output.
func Compile(source string) (string, error) {
	out, err := CompileOutput(source)
	if err != nil {
		return "", err
	}
	return out.Graph, nil
}

// CompileOutput is Compile with tree and graph statistics.
func CompileOutput(source string) (*Output, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	res, err := graph.LinearizeResult(tree)
	if err != nil {
		return nil, err
	}

	return &Output{
		Graph: res.Text,
		Stats: ast.Summarize(tree),
		Nodes: res.Nodes,
		Edges: res.Edges,
	}, nil
}

// CompileFile reads and compiles the pseudocode file at path.
func CompileFile(path string) (*Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return CompileOutput(string(data))
}
