// Package errors provides the error taxonomy of the pseudocode compiler.
//
// Every failure is an *Error carrying a type, the author-facing message and
// the 0-based source line it was detected on. Compilation is fail-fast: the
// first error aborts the pipeline and no graph is produced.
//
// # Error Types
//
// ErrorTypeIllegalQuote: a '"' appeared in the source
//
// ErrorTypeMismatchedOpeningBrace: a '}' has no matching '{'
//
// ErrorTypeMismatchedClosingBrace: a '{' is never closed
//
// ErrorTypeUnexpectedToken: the token is not allowed at this point of the grammar
//
// ErrorTypeElseWithoutIf: an 'else' does not follow an if block
//
// ErrorTypeEmptyLoop: a while loop has no statements
//
// ErrorTypeMalformedTraversal: internal invariant violation during graph emission
//
// # Matching
//
// Use errors.Is with the sentinels:
//
//	if errors.Is(err, pseudoErrors.ErrEmptyLoop) {
//	    // ...
//	}
//
// # Display
//
// Error() returns the message to show the author verbatim. Detail() adds the
// location, surrounding source and a suggestion:
//
//	[unexpected_token] Unexpected grouping "(" on line 2. Expecting: }, statement, if, while.
//	  --> line 2
//	  |
//	   1 | Start the engine
//	-> 2 | whle (running) {
//	  |
//	  = suggestion: Did you mean 'while'?
package errors
