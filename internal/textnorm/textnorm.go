// Package textnorm folds user text into the plain lower-case ASCII form the
// pattern catalog and the product lookups work on.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and removes diacritics (á→a, ü→u, ñ→n) while keeping
// every other character, so digits, signs and punctuation survive for the
// regex captures.
func Fold(s string) string {
	s = strings.ToLower(s)
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Normalize folds s and then drops every character outside [a-z0-9 ].
// Whitespace of any kind becomes a single-width space. Normalize is
// idempotent.
func Normalize(raw string) string {
	folded := Fold(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}
