package parser

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/flowmaker/pkg/pseudo/ast"
	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/pseudo/token"
)

// describe renders a tree compactly: statements as id:text, conditions and
// loops as id:text{...} with an optional |{...} else part.
func describe(nodes []*ast.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n.Type {
		case ast.NodeTypeStatement:
			parts = append(parts, fmt.Sprintf("%s:%s", n.ID, n.Text))
		case ast.NodeTypeCondition:
			s := fmt.Sprintf("%s:if %s{%s}", n.ID, n.Text, describe(n.Then))
			if n.HasElse() {
				s += fmt.Sprintf("|{%s}", describe(n.Else))
			}
			parts = append(parts, s)
		case ast.NodeTypeLoop:
			parts = append(parts, fmt.Sprintf("%s:while %s{%s}", n.ID, n.Text, describe(n.Body)))
		}
	}
	return strings.Join(parts, " ")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "empty program",
			source: "",
			want:   "id0:Start id1:End",
		},
		{
			name:   "straight line",
			source: "a\nb",
			want:   "id0:Start id1:a id2:b id3:End",
		},
		{
			name:   "if else",
			source: "if (c) {\nx\n} else {\ny\n}\nz",
			want:   "id0:Start id1:if c{id2:x}|{id3:y} id4:z id5:End",
		},
		{
			name:   "ids follow consumption order",
			source: "x\nif (c) {\ny\n}\nz",
			want:   "id0:Start id1:x id2:if c{id3:y} id4:z id5:End",
		},
		{
			name:   "while",
			source: "while (n > 0) {\nn = n - 1\n}",
			want:   "id0:Start id1:while n > 0{id2:n = n - 1} id3:End",
		},
		{
			name:   "else if becomes nested condition",
			source: "if (a) {\nx\n} else if (b) {\ny\n} else {\nz\n}",
			want:   "id0:Start id1:if a{id2:x}|{id3:if b{id4:y}|{id5:z}} id6:End",
		},
		{
			name:   "empty then block",
			source: "if (a) {\n}",
			want:   "id0:Start id1:if a{} id2:End",
		},
		{
			name:   "sequential control blocks",
			source: "if (a) {\nb\n}\nwhile (c) {\nd\n}\nif (e) {\nf\n}",
			want:   "id0:Start id1:if a{id2:b} id3:while c{id4:d} id5:if e{id6:f} id7:End",
		},
		{
			name:   "nested blocks",
			source: "while (a) {\nif (b) {\nc\n}\nwhile (d) {\ne\n}\n}",
			want:   "id0:Start id1:while a{id2:if b{id3:c} id4:while d{id5:e}} id6:End",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.source)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := describe(tree); got != tt.want {
				t.Errorf("Parse() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParse_SentinelsAndBlocks(t *testing.T) {
	tree, err := Parse("if (a) {\nb\n}")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(tree) != 3 {
		t.Fatalf("len(tree) = %d, want 3", len(tree))
	}
	if tree[0].Text != token.StartValue || tree[0].IsEnd {
		t.Errorf("first node = %+v, want Start", tree[0])
	}
	if !tree[2].IsEnd || tree[2].Text != token.EndValue {
		t.Errorf("last node = %+v, want End", tree[2])
	}

	cond := tree[1]
	if cond.Then == nil {
		t.Error("Then is nil, want opened block")
	}
	if cond.HasElse() {
		t.Error("HasElse() = true for source without else")
	}
}

func TestParse_IDsMonotonic(t *testing.T) {
	source := "a\nif (b) {\nc\n} else if (d) {\nwhile (e) {\nf\n}\n} else {\ng\n}\nh"
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	next := 0
	err = ast.Walk(tree, func(n *ast.Node, depth int) error {
		if want := fmt.Sprintf("id%d", next); n.ID != want {
			return fmt.Errorf("node %q has id %s, want %s", n.Text, n.ID, want)
		}
		next++
		return nil
	})
	if err != nil {
		t.Error(err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantErr     error
		wantLine    int
		wantMsg     string
		wantSuggest string
	}{
		{
			name:     "missing parenthesis",
			source:   "if x",
			wantErr:  pseudoErrors.ErrUnexpectedToken,
			wantLine: 0,
			wantMsg:  `Unexpected text "x" on line 0. Expecting: (.`,
		},
		{
			name:     "else after statement",
			source:   "a\nelse {\n}",
			wantErr:  pseudoErrors.ErrUnexpectedToken,
			wantLine: 1,
			wantMsg:  `Unexpected keyword "else" on line 1. Expecting: }, statement, if, while.`,
		},
		{
			name:     "else after loop",
			source:   "while (x) {\ny\n} else {\nz\n}",
			wantErr:  pseudoErrors.ErrElseWithoutIf,
			wantLine: 2,
		},
		{
			name:     "second else",
			source:   "if (x) {\n} else {\n} else {\n}",
			wantErr:  pseudoErrors.ErrElseWithoutIf,
			wantLine: 2,
		},
		{
			name:        "capitalized keyword",
			source:      "If (x) {\n}",
			wantErr:     pseudoErrors.ErrUnexpectedToken,
			wantLine:    0,
			wantSuggest: "Did you mean 'if'? Keywords are lower-case",
		},
		{
			name:     "block without header",
			source:   "a\n{\nb\n}",
			wantErr:  pseudoErrors.ErrUnexpectedToken,
			wantLine: 1,
		},
		{
			name:     "quote",
			source:   "say \"hi\"",
			wantErr:  pseudoErrors.ErrIllegalQuoteCharacter,
			wantLine: 0,
		},
		{
			name:     "unbalanced",
			source:   "if (x) {\na",
			wantErr:  pseudoErrors.ErrMismatchedClosingBrace,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.source)
			if err == nil {
				t.Fatalf("Parse() = %s, want error", describe(tree))
			}
			if tree != nil {
				t.Errorf("Parse() returned a partial tree on error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}

			var perr *pseudoErrors.Error
			if !errors.As(err, &perr) {
				t.Fatalf("error is %T, want *errors.Error", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", perr.Line, tt.wantLine)
			}
			if tt.wantMsg != "" && perr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", perr.Message, tt.wantMsg)
			}
			if tt.wantSuggest != "" && perr.Suggestion != tt.wantSuggest {
				t.Errorf("Suggestion = %q, want %q", perr.Suggestion, tt.wantSuggest)
			}
		})
	}
}

func TestBuild_UnexpectedTokenCarriesExpectedSet(t *testing.T) {
	_, err := Parse("while (x)\ny")
	var perr *pseudoErrors.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *errors.Error", err)
	}
	if perr.TokenKind != string(token.KindText) || perr.TokenValue != "y" {
		t.Errorf("token = %s %q, want text \"y\"", perr.TokenKind, perr.TokenValue)
	}
	if !reflect.DeepEqual(perr.Expected, []string{"{"}) {
		t.Errorf("Expected = %v, want [{]", perr.Expected)
	}
}

func TestBuild_ElseIfLookahead(t *testing.T) {
	// Build without Normalize still refuses an "else if".
	tokens := []token.Token{
		token.Start(),
		{Kind: token.KindKeyword, Value: token.If, Line: 0},
		token.Grouping(token.LParen, 0),
		{Kind: token.KindText, Value: "a", Line: 0},
		token.Grouping(token.RParen, 0),
		token.Grouping(token.LBrace, 0),
		token.Grouping(token.RBrace, 1),
		{Kind: token.KindKeyword, Value: token.Else, Line: 1},
		{Kind: token.KindKeyword, Value: token.If, Line: 1},
		token.Grouping(token.LParen, 1),
		{Kind: token.KindText, Value: "b", Line: 1},
		token.Grouping(token.RParen, 1),
		token.Grouping(token.LBrace, 1),
		token.Grouping(token.RBrace, 2),
		token.End(2),
	}

	_, err := Build(tokens)
	var perr *pseudoErrors.Error
	if !errors.As(err, &perr) || perr.Type != pseudoErrors.ErrorTypeUnexpectedToken {
		t.Fatalf("Build() error = %v, want unexpected token", err)
	}
	if perr.TokenValue != token.If || perr.Line != 1 {
		t.Errorf("token = %q line %d, want \"if\" line 1", perr.TokenValue, perr.Line)
	}
}

func TestBuild_StrayClosingBrace(t *testing.T) {
	tokens := []token.Token{token.Start(), token.Grouping(token.RBrace, 0), token.End(0)}

	_, err := Build(tokens)
	if !errors.Is(err, pseudoErrors.ErrMismatchedOpeningBrace) {
		t.Errorf("Build() error = %v, want MismatchedOpeningBrace", err)
	}
}
