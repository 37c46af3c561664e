// Package sanitize maps arbitrary names to TeX-safe identifiers.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fallback is returned when nothing of the input survives sanitization.
const Fallback = "anon"

// Name returns s reduced to ASCII letters, digits and underscores.
// Accented letters are folded to their base letter, so "café" becomes "cafe"
// rather than "caf", and a combining mark vanishes instead of splitting the
// name. Every other run of disallowed characters becomes a single underscore,
// and leading or trailing underscores are trimmed.
func Name(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining marks left over from decomposition
			continue
		case isAlnum(r):
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
