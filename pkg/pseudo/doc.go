// Package pseudo compiles a small pseudocode language into flowchart text.
//
// The language has statements, if/else if/else conditions and while loops.
// Blocks are delimited with braces and headers with parentheses; any other
// text is a statement, one per line:
//
//	read input
//	if (input is empty) {
//	    print usage
//	} else {
//	    while (lines remain) {
//	        process line
//	    }
//	}
//
// Compilation runs in four stages, each in its own package: token.Tokenize,
// parser.Normalize, parser.Build and graph.Linearize. Errors from any stage
// are *errors.Error values carrying the 0-based source line.
//
//	out, err := pseudo.Compile(source)
package pseudo
