// Package classify guesses the semantic type of cross-reference anchors,
// section headings and footnotes from their text and identifiers.
//
// Every table in this package is an immutable package-level value; the
// classifiers are pure and safe for concurrent use.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceRegex = regexp.MustCompile(`\s+`)

// Fold lowercases s, strips combining marks and collapses whitespace, so
// "Introducción" and "INTRODUCCION" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(folded)
	return strings.TrimSpace(spaceRegex.ReplaceAllString(folded, " "))
}

// trimPunct drops trailing punctuation from a heading.
func trimPunct(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, " .:;,-–—"))
}
