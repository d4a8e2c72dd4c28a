package token

import (
	"strings"

	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
)

// Tokenize converts source text into its ordered token sequence.
//
// Letters accumulate into a pending buffer. A bracket or newline ends the
// buffer; every other character is appended verbatim so punctuation stays
// part of the statement text. Before any non-letter is handled, a buffer
// holding exactly a keyword is emitted as that keyword. A '"' fails with
// IllegalQuoteCharacter.
func Tokenize(source string) ([]Token, error) {
	t := &tokenizer{}

	for _, ch := range source {
		switch {
		case ch == '"':
			return nil, pseudoErrors.NewIllegalQuote(t.line)

		case isLetter(ch):
			t.buf.WriteRune(ch)

		default:
			if isKeyword(strings.TrimSpace(t.buf.String())) {
				t.flush(KindKeyword)
			}

			switch {
			case isBracket(ch):
				t.flush(KindText)
				t.buf.WriteRune(ch)
				t.flush(KindGrouping)
			case ch == '\n':
				t.flush(KindText)
				t.line++
			default:
				t.buf.WriteRune(ch)
			}
		}
	}

	t.flush(KindText)

	return t.tokens, nil
}

type tokenizer struct {
	buf    strings.Builder
	line   int
	tokens []Token
}

// flush emits the trimmed pending buffer as a token of kind. A
// whitespace-only buffer is not emitted and stays pending.
func (t *tokenizer) flush(kind Kind) {
	value := strings.TrimSpace(t.buf.String())
	if value == "" {
		return
	}
	t.tokens = append(t.tokens, Token{Kind: kind, Value: value, Line: t.line})
	t.buf.Reset()
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isBracket(ch rune) bool {
	return ch == '(' || ch == ')' || ch == '{' || ch == '}'
}

func isKeyword(s string) bool {
	return s == If || s == Else || s == While
}
