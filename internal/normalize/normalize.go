// Package normalize provides utilities for cleaning and comparing catalog text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Text cleans a user-supplied title or name for storage: NFC-normalizes,
// drops control characters and null bytes, trims and collapses runs of
// whitespace to a single space.
// "  The   Left Hand\tof Darkness " -> "The Left Hand of Darkness".
func Text(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// NameKey returns the lookup key for an author name. Two names with the same
// key are the same author: comparison ignores case (full Unicode folding),
// compatibility forms and whitespace differences.
// "ursula k. le guin" and "Ursula K.  Le Guin" share a key, as do
// "STRAßE" and "strasse".
func NameKey(name string) string {
	name = norm.NFKC.String(Text(name))
	// cases.Caser holds state and is not safe for concurrent use.
	return cases.Fold().String(name)
}

// sanitizeString removes null bytes from strings.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

// Field trims and sanitizes a raw imported field value without collapsing
// interior whitespace. Used for values that are validated rather than stored,
// such as genre names and year strings.
func Field(s string) string {
	return strings.TrimSpace(sanitizeString(s))
}
