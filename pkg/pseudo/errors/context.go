package errors

import (
	"fmt"
	"strings"
)

// ExtractContext extracts the lines surrounding line (0-based) from source
// for error display. The offending line is marked with "->".
func ExtractContext(source string, line int, contextLines int) string {
	if line < 0 || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line >= len(lines) {
		return ""
	}

	startLine := line - contextLines
	endLine := line + contextLines

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == line {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, maxLineNumWidth, i, strings.TrimRight(lines[i], "\r")))
	}

	return sb.String()
}

// WithContext fills err.Context from source and returns err.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err.HasLine() {
		err.Context = ExtractContext(source, err.Line, contextLines)
	}
	return err
}

// AddContextToError adds two lines of context on either side of the error line.
func AddContextToError(err *Error, source string) *Error {
	return WithContext(err, source, 2)
}
