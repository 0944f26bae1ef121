// Package naming produces the normalized family-name keys that group font
// files into families. Normalization is pure and total: it never fails and
// always returns a usable grouping key.
package naming

import (
	"strings"
	"unicode"
)

// Unknown is the grouping key for inputs that normalize to nothing.
const Unknown = "unknown"

// RulesetVersion identifies the normalization and grouping ruleset. Clients
// compare it against the server's advertised version; a mismatch means the
// provisional preview may group differently than the server will.
const RulesetVersion = "2"

// Normalize lowercases the raw family name, strips trademark glyphs and
// punctuation, collapses runs of whitespace and dashes into single spaces,
// and trims the result. Empty input normalizes to Unknown.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	space := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			space = true
		default:
			// trademark glyphs, punctuation, symbols: dropped entirely
		}
	}

	key := b.String()
	if key == "" {
		return Unknown
	}
	return key
}
