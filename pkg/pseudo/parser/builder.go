package parser

import (
	"fmt"
	"strings"

	"mercator-hq/flowmaker/pkg/pseudo/ast"
	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/pseudo/token"
)

// categoryStatement is the expected-set entry matching any text, start or
// end token. All other entries are literal keyword or grouping values.
const categoryStatement = "statement"

var (
	expectStatement  = []string{categoryStatement}
	expectOpenParen  = []string{token.LParen}
	expectCloseParen = []string{token.RParen}
	expectOpenBrace  = []string{token.LBrace}
	expectBlockStart = []string{categoryStatement, token.If, token.RBrace, token.While}
	expectBlockEnd   = []string{token.Else, categoryStatement, token.RBrace, token.If, token.While}
	expectNext       = []string{token.RBrace, categoryStatement, token.If, token.While}
)

// builderState records which construct the builder is in the middle of.
type builderState int

const (
	stateRoot  builderState = iota
	stateIf                 // after 'if', until its '{'
	stateElse               // after 'else', until its '{'
	stateWhile              // after 'while', until its '{'
	stateThen               // inside an if or else block
	stateLoop               // inside a loop body
)

// builder turns a normalized token sequence into a tree. Nodes are appended
// to the active sequence; opening a block pushes the active sequence onto the
// parent stack and makes the block's child slice active.
type builder struct {
	active   *[]*ast.Node
	parents  []*[]*ast.Node
	state    builderState
	nextID   int
	expected []string
}

// Build constructs the control-flow tree from a normalized token sequence.
// The sequence must come from Normalize; Build does not insert sentinels.
func Build(tokens []token.Token) (ast.Tree, error) {
	seq := []*ast.Node{}
	b := &builder{
		active:   &seq,
		expected: expectStatement,
	}

	for i, tok := range tokens {
		if !b.expects(tok) {
			return nil, b.unexpected(tokens, i)
		}

		var err error
		switch {
		case tok.IsStatement():
			b.consumeText(tok)
		case tok.Kind == token.KindKeyword:
			err = b.consumeKeyword(tokens, i)
		case tok.Kind == token.KindGrouping:
			err = b.consumeGrouping(tok)
		}
		if err != nil {
			return nil, err
		}
	}

	return ast.Tree(seq), nil
}

func (b *builder) expects(tok token.Token) bool {
	category := tok.Value
	if tok.IsStatement() {
		category = categoryStatement
	}
	for _, e := range b.expected {
		if e == category {
			return true
		}
	}
	return false
}

func (b *builder) unexpected(tokens []token.Token, i int) error {
	tok := tokens[i]
	expected := append([]string(nil), b.expected...)
	err := pseudoErrors.NewUnexpectedToken(string(tok.Kind), tok.Value, tok.Line, expected)

	// "If (x)" tokenizes as text followed by '('; point at the keyword.
	if tok.Is(token.KindGrouping, token.LParen) && i > 0 && tokens[i-1].Kind == token.KindText {
		err.Suggestion = pseudoErrors.SuggestKeyword(lastWord(tokens[i-1].Value))
	}
	if err.Suggestion == "" {
		err.Suggestion = pseudoErrors.SuggestExpected(expected)
	}
	return err
}

func (b *builder) consumeText(tok token.Token) {
	id := b.mintID()

	if b.state == stateIf || b.state == stateWhile {
		header := b.last()
		header.ID = id
		header.Text = tok.Value
		header.Line = tok.Line
		b.expected = expectCloseParen
		return
	}

	b.append(ast.NewStatement(id, tok.Value, tok.Line, tok.Kind == token.KindEnd))
	b.expected = expectNext
}

func (b *builder) consumeKeyword(tokens []token.Token, i int) error {
	tok := tokens[i]

	switch tok.Value {
	case token.If:
		b.append(ast.NewCondition())
		b.state = stateIf
		b.expected = expectOpenParen

	case token.While:
		b.append(ast.NewLoop())
		b.state = stateWhile
		b.expected = expectOpenParen

	case token.Else:
		prev := b.last()
		if prev == nil || !prev.IsCondition() || prev.HasElse() {
			return pseudoErrors.NewElseWithoutIf(tok.Line)
		}
		b.state = stateElse
		b.expected = expectOpenBrace

		// Normalize rewrites every "else if"; reaching one here means the
		// input skipped normalization.
		if i+1 < len(tokens) && tokens[i+1].Is(token.KindKeyword, token.If) {
			return b.unexpected(tokens, i+1)
		}

	default:
		return pseudoErrors.NewUnexpectedToken(string(tok.Kind), tok.Value, tok.Line, b.expected)
	}

	return nil
}

func (b *builder) consumeGrouping(tok token.Token) error {
	switch tok.Value {
	case token.LParen:
		b.expected = expectStatement

	case token.RParen:
		b.expected = expectOpenBrace

	case token.LBrace:
		owner := b.last()
		if owner == nil {
			return pseudoErrors.NewUnexpectedToken(string(tok.Kind), tok.Value, tok.Line, b.expected)
		}

		var child *[]*ast.Node
		switch b.state {
		case stateIf:
			owner.Then = []*ast.Node{}
			child = &owner.Then
			b.state = stateThen
		case stateElse:
			owner.Else = []*ast.Node{}
			child = &owner.Else
			b.state = stateThen
		case stateWhile:
			owner.Body = []*ast.Node{}
			child = &owner.Body
			b.state = stateLoop
		default:
			return pseudoErrors.NewUnexpectedToken(string(tok.Kind), tok.Value, tok.Line, b.expected)
		}

		b.parents = append(b.parents, b.active)
		b.active = child
		b.expected = expectBlockStart

	case token.RBrace:
		if len(b.parents) == 0 {
			return pseudoErrors.NewMismatchedOpeningBrace(tok.Line)
		}
		b.active = b.parents[len(b.parents)-1]
		b.parents = b.parents[:len(b.parents)-1]
		b.state = stateRoot
		if len(b.parents) > 0 {
			b.state = stateThen
		}
		b.expected = expectBlockEnd
	}

	return nil
}

func (b *builder) mintID() string {
	id := fmt.Sprintf("id%d", b.nextID)
	b.nextID++
	return id
}

func (b *builder) append(n *ast.Node) {
	*b.active = append(*b.active, n)
}

func (b *builder) last() *ast.Node {
	seq := *b.active
	if len(seq) == 0 {
		return nil
	}
	return seq[len(seq)-1]
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
