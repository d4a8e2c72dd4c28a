package parser

import (
	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/pseudo/token"
)

// Normalize brackets the token sequence with the Start and End sentinels and
// rewrites every implicit "else if" into an explicit nested block:
//
//	else if (b) { x } else { y }   =>   else { if (b) { x } else { y } }
//
// A whole chain of else-if/else blocks is absorbed into the inserted block.
// After normalization an else keyword is never directly followed by if, and
// the '{' and '}' counts are equal.
func Normalize(input []token.Token) ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(input)+8)
	tokens = append(tokens, token.Start())
	tokens = append(tokens, input...)
	tokens = append(tokens, token.End(tokens[len(tokens)-1].Line))

	for i := 1; i < len(tokens); i++ {
		if !isElseIf(tokens[i-1], tokens[i]) {
			continue
		}

		ifToken := tokens[i]
		tokens = insertAt(tokens, i, token.Grouping(token.LBrace, ifToken.Line))

		pos, depth := findElseIfEnd(tokens, i+1)
		switch {
		case depth < 0:
			return nil, pseudoErrors.NewMismatchedOpeningBrace(ifToken.Line)
		case depth > 0:
			return nil, pseudoErrors.NewMismatchedClosingBrace(tokens[pos-1].Line)
		}

		tokens = insertAt(tokens, pos, token.Grouping(token.RBrace, tokens[pos-1].Line))
	}

	if err := checkBalance(tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

func isElseIf(prev, tok token.Token) bool {
	return prev.Is(token.KindKeyword, token.Else) && tok.Is(token.KindKeyword, token.If)
}

// findElseIfEnd scans from the if token of an else-if and returns the
// position where the synthetic '}' belongs together with the brace depth at
// that point. The position is the brace that returns the depth to zero
// unless the next token is another else, in which case that else block is
// absorbed too. If the tokens run out, the position is len(tokens).
func findElseIfEnd(tokens []token.Token, from int) (int, int) {
	depth := 0
	opened := false
	pos := from

	for pos < len(tokens) {
		switch tok := tokens[pos]; {
		case tok.Is(token.KindGrouping, token.LBrace):
			depth++
			opened = true
		case tok.Is(token.KindGrouping, token.RBrace):
			depth--
		}

		if depth == 0 && opened {
			if pos+1 < len(tokens) && tokens[pos+1].Is(token.KindKeyword, token.Else) {
				opened = false
				pos++
				continue
			}
			return pos, depth
		}

		pos++
	}

	return pos, depth
}

// checkBalance verifies that braces nest properly across the whole sequence.
func checkBalance(tokens []token.Token) error {
	depth := 0
	for _, tok := range tokens {
		switch {
		case tok.Is(token.KindGrouping, token.LBrace):
			depth++
		case tok.Is(token.KindGrouping, token.RBrace):
			depth--
			if depth < 0 {
				return pseudoErrors.NewMismatchedOpeningBrace(tok.Line)
			}
		}
	}

	if depth > 0 {
		return pseudoErrors.NewMismatchedClosingBrace(tokens[len(tokens)-1].Line)
	}
	return nil
}

func insertAt(tokens []token.Token, i int, tok token.Token) []token.Token {
	tokens = append(tokens, token.Token{})
	copy(tokens[i+1:], tokens[i:])
	tokens[i] = tok
	return tokens
}
