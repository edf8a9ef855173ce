// Package similarity implements the document similarity engine: text
// normalization, content fingerprinting, the scorer family and match ranking.
package similarity

import (
	"strings"
	"unicode"
)

// Normalize lowercases the text, replaces every non letter/digit rune with a
// space, collapses whitespace runs and trims the ends. Pure function; empty
// or whitespace-only input yields "".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits text into normalized words, keeping only words longer than
// minWordLen runes. minWordLen <= 0 keeps every word. Different scorers use
// different cutoffs, so the threshold is an argument, not a package constant.
func Tokenize(s string, minWordLen int) []string {
	fields := strings.Fields(Normalize(s))
	if minWordLen <= 0 {
		return fields
	}
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		if len([]rune(w)) > minWordLen {
			out = append(out, w)
		}
	}
	return out
}

// tokenSet builds the set of distinct words from already-normalized text.
func tokenSet(normalized string, minWordLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if minWordLen > 0 && len([]rune(w)) <= minWordLen {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
