package token

import "fmt"

// Kind is the lexical category of a token.
type Kind string

const (
	KindKeyword  Kind = "keyword"  // if, else, while
	KindText     Kind = "text"     // statement or condition text
	KindGrouping Kind = "grouping" // ( ) { }
	KindStart    Kind = "start"    // synthetic program start
	KindEnd      Kind = "end"      // synthetic program end
)

// Keyword and grouping values.
const (
	If    = "if"
	Else  = "else"
	While = "while"

	LParen = "("
	RParen = ")"
	LBrace = "{"
	RBrace = "}"

	StartValue = "Start"
	EndValue   = "End"
)

// Token is an atomic lexical unit with its category, literal value and
// 0-based source line.
type Token struct {
	Kind  Kind
	Value string
	Line  int
}

// String returns a debug representation, e.g. keyword("if")@3.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Value, t.Line)
}

// Is reports whether the token has the given kind and value.
func (t Token) Is(kind Kind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// IsStatement reports whether the token is consumed as statement text
// (plain text or one of the sentinels).
func (t Token) IsStatement() bool {
	return t.Kind == KindText || t.Kind == KindStart || t.Kind == KindEnd
}

// Start returns the synthetic start sentinel.
func Start() Token {
	return Token{Kind: KindStart, Value: StartValue, Line: 0}
}

// End returns the synthetic end sentinel placed on line.
func End(line int) Token {
	return Token{Kind: KindEnd, Value: EndValue, Line: line}
}

// Grouping returns a synthetic grouping token.
func Grouping(value string, line int) Token {
	return Token{Kind: KindGrouping, Value: value, Line: line}
}
