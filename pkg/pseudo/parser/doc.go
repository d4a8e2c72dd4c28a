// Package parser turns pseudocode tokens into a control-flow tree.
//
// Parsing happens in two passes. Normalize adds the Start and End sentinels
// and rewrites "else if" chains into explicitly nested blocks, so the grammar
// only has to know about if, else and while. Build then runs a small state
// machine over the normalized tokens. At every step the builder holds the set
// of token categories it accepts next; anything else is reported as an
// unexpected token with that set attached.
//
// Basic usage:
//
//	tree, err := parser.Parse(source)
//	if err != nil {
//	    var perr *errors.Error
//	    if stderrors.As(err, &perr) {
//	        fmt.Println(perr.Line, perr.Message)
//	    }
//	    return err
//	}
package parser
