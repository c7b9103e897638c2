// Package textutil provides the word-level text helpers shared by relevance
// search and fuzzy matching.
package textutil

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it into word tokens, dropping
// punctuation-only fragments.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ContainsEither reports whether a is a substring of b or b is a substring
// of a. The symmetry is deliberate: "comput" should match "computer" and
// vice versa, trading precision for recall.
func ContainsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}
