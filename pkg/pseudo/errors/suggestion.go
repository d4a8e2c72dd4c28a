package errors

import (
	"fmt"
	"strings"
)

// Keywords are the control keywords of the pseudocode language.
var Keywords = []string{"if", "else", "while"}

// SuggestKeyword suggests a keyword when word looks like a misspelled or
// miscased one. It returns "" when nothing is close enough.
func SuggestKeyword(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)
	for _, kw := range Keywords {
		if lower == kw && word != kw {
			return fmt.Sprintf("Did you mean '%s'? Keywords are lower-case", kw)
		}
	}

	minDistance := 1000
	var bestMatch string
	for _, kw := range Keywords {
		dist := levenshteinDistance(lower, kw)
		if dist < minDistance {
			minDistance = dist
			bestMatch = kw
		}
	}

	// Keywords are short; more than one edit is rarely a typo.
	if minDistance == 1 || (minDistance == 2 && len(bestMatch) > 3) {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// SuggestExpected describes the expected token set for an unexpected-token error.
func SuggestExpected(expected []string) string {
	if len(expected) == 0 {
		return ""
	}
	quoted := make([]string, len(expected))
	for i, e := range expected {
		if e == "statement" {
			quoted[i] = "a statement"
			continue
		}
		quoted[i] = fmt.Sprintf("'%s'", e)
	}
	if len(quoted) == 1 {
		return fmt.Sprintf("Insert %s here", quoted[0])
	}
	return fmt.Sprintf("Expected one of %s", strings.Join(quoted, ", "))
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
