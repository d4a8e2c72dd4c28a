package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a compilation failure.
type ErrorType string

const (
	ErrorTypeIllegalQuote           ErrorType = "illegal_quote_character"  // '"' anywhere in the source
	ErrorTypeMismatchedOpeningBrace ErrorType = "mismatched_opening_brace" // '}' without a matching '{'
	ErrorTypeMismatchedClosingBrace ErrorType = "mismatched_closing_brace" // '{' never closed
	ErrorTypeUnexpectedToken        ErrorType = "unexpected_token"         // grammar violation
	ErrorTypeElseWithoutIf          ErrorType = "else_without_if"          // 'else' not following an if block
	ErrorTypeEmptyLoop              ErrorType = "empty_loop"               // while loop with an empty body
	ErrorTypeMalformedTraversal     ErrorType = "malformed_traversal"      // tree frame without a node sequence
)

// Sentinel errors for use with errors.Is. Matching compares the ErrorType only.
var (
	ErrIllegalQuoteCharacter  = &Error{Type: ErrorTypeIllegalQuote}
	ErrMismatchedOpeningBrace = &Error{Type: ErrorTypeMismatchedOpeningBrace}
	ErrMismatchedClosingBrace = &Error{Type: ErrorTypeMismatchedClosingBrace}
	ErrUnexpectedToken        = &Error{Type: ErrorTypeUnexpectedToken}
	ErrElseWithoutIf          = &Error{Type: ErrorTypeElseWithoutIf}
	ErrEmptyLoop              = &Error{Type: ErrorTypeEmptyLoop}
	ErrMalformedTraversal     = &Error{Type: ErrorTypeMalformedTraversal}
)

// Error is a line-annotated compilation error. Compilation stops at the first
// Error; there is no partial output.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Message shown to the author verbatim
	Line    int       // Source line (0-based, as counted by the tokenizer); -1 if unknown

	// Populated for ErrorTypeUnexpectedToken.
	TokenKind  string
	TokenValue string
	Expected   []string

	Context    string // Surrounding source lines (optional)
	Suggestion string // Suggested fix (optional)
}

// Error implements the error interface. It returns the author-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// HasLine returns true if the error carries a source line.
func (e *Error) HasLine() bool {
	return e.Line >= 0
}

// Detail returns a multi-line rendering with type, location, context and suggestion.
func (e *Error) Detail() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.HasLine() {
		sb.WriteString(fmt.Sprintf("  --> line %d\n", e.Line))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// NewIllegalQuote creates the error for a '"' found on line.
func NewIllegalQuote(line int) *Error {
	return &Error{
		Type:       ErrorTypeIllegalQuote,
		Message:    fmt.Sprintf("Illegal quote character: \" on line %d.", line),
		Line:       line,
		Suggestion: "Remove the quote; labels in the generated graph are quote-delimited",
	}
}

// NewMismatchedOpeningBrace creates the error for an unmatched '}' seen on line.
func NewMismatchedOpeningBrace(line int) *Error {
	return &Error{
		Type:       ErrorTypeMismatchedOpeningBrace,
		Message:    fmt.Sprintf("Mismatched opening \"{\" on line %d", line),
		Line:       line,
		Suggestion: "Check that every '}' closes a block opened with '{'",
	}
}

// NewMismatchedClosingBrace creates the error for a block still open at line.
func NewMismatchedClosingBrace(line int) *Error {
	return &Error{
		Type:       ErrorTypeMismatchedClosingBrace,
		Message:    fmt.Sprintf("Mismatched closing \"}\" on line %d", line),
		Line:       line,
		Suggestion: "Add the missing '}' to close the block",
	}
}

// NewUnexpectedToken creates a grammar error for a token outside the expected set.
func NewUnexpectedToken(kind, value string, line int, expected []string) *Error {
	return &Error{
		Type:       ErrorTypeUnexpectedToken,
		Message:    fmt.Sprintf("Unexpected %s \"%s\" on line %d. Expecting: %s.", kind, value, line, strings.Join(expected, ", ")),
		Line:       line,
		TokenKind:  kind,
		TokenValue: value,
		Expected:   expected,
	}
}

// NewElseWithoutIf creates the error for an 'else' that does not follow an if block.
func NewElseWithoutIf(line int) *Error {
	return &Error{
		Type:       ErrorTypeElseWithoutIf,
		Message:    fmt.Sprintf("\"else\" without \"if\" on line %d.", line),
		Line:       line,
		Suggestion: "An else block must directly follow the closing '}' of an if block",
	}
}

// NewEmptyLoop creates the error for a while loop with no statements.
func NewEmptyLoop(line int) *Error {
	return &Error{
		Type:       ErrorTypeEmptyLoop,
		Message:    "Error: Empty loop.",
		Line:       line,
		Suggestion: "Add at least one statement to the loop body",
	}
}

// NewMalformedTraversal creates the error for a traversal frame without a node sequence.
func NewMalformedTraversal() *Error {
	return &Error{
		Type:    ErrorTypeMalformedTraversal,
		Message: "Error: no condition or statement.",
		Line:    -1,
	}
}
