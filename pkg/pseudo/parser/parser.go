package parser

import (
	"mercator-hq/flowmaker/pkg/pseudo/ast"
	"mercator-hq/flowmaker/pkg/pseudo/token"
)

// Parse tokenizes, normalizes and builds the tree for a pseudocode program.
func Parse(source string) (ast.Tree, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(tokens)
	if err != nil {
		return nil, err
	}

	return Build(normalized)
}
