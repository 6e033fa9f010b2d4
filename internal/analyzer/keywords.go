package analyzer

import (
	"strings"
	"unicode"
)

// text is a lower-cased view of some input with its word tokens.
type text struct {
	lower  string
	words  []string
	tokens map[string]bool
}

func newText(s string) text {
	lower := strings.ToLower(s)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		tokens[w] = true
	}
	return text{lower: lower, words: words, tokens: tokens}
}

// has reports whether term occurs in t. Phrases (anything that is not a
// single word) match as substrings. Single words match whole tokens, or a
// token prefix when the term is at least four letters long, so "crash"
// matches "crashing" but "ai" does not match "email".
func (t text) has(term string) bool {
	if !isWord(term) {
		return strings.Contains(t.lower, term)
	}
	if t.tokens[term] {
		return true
	}
	if len(term) < 4 {
		return false
	}
	for _, w := range t.words {
		if strings.HasPrefix(w, term) {
			return true
		}
	}
	return false
}

// firstOf returns the first term of terms present in t.
func (t text) firstOf(terms []string) (string, bool) {
	for _, term := range terms {
		if t.has(term) {
			return term, true
		}
	}
	return "", false
}

// keywords returns the distinct significant words of t in order of first
// appearance.
func (t text) keywords(stop map[string]bool) []string {
	seen := make(map[string]bool, len(t.words))
	var out []string
	for _, w := range t.words {
		if len(w) < 3 || stop[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func overlaps(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}
