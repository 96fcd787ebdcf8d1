package classify

import (
	"regexp"
	"strings"
)

// numberingPatterns match a leading enumeration label, most specific first.
var numberingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\(?(\d+(?:\.\d+)*)[.)]?\s+`),
	regexp.MustCompile(`^(?i)\s*\(?([ivxlcdm]+)[.)]\s+`),
	regexp.MustCompile(`^(?i)\s*\(?([a-z])[.)]\s+`),
	regexp.MustCompile(`^\s*([*†‡§¶#]+)\s*`),
}

// StripNumbering removes a leading enumeration ("1.", "2.3", "IV.", "a)",
// "*") from s and returns the rest together with the label found.
func StripNumbering(s string) (rest, label string) {
	for _, re := range numberingPatterns {
		if m := re.FindStringSubmatchIndex(s); m != nil {
			return strings.TrimSpace(s[m[1]:]), s[m[2]:m[3]]
		}
	}
	return strings.TrimSpace(s), ""
}

// labelNumberPatterns match the number part of a label such as "Figure 1",
// most specific first.
var labelNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\[(\d+[a-z]?)\]`),
	regexp.MustCompile(`^\((\d+[a-z]?)\)`),
	regexp.MustCompile(`^(\d+(?:\.\d+)*[a-z]?)\b`),
	regexp.MustCompile(`^([ivxlcdm]+)\b`),
	regexp.MustCompile(`^([a-z])\b`),
	regexp.MustCompile(`^([*†‡§¶#])`),
}

// labelNumber returns the number at the start of s (already folded).
func labelNumber(s string) string {
	s = strings.TrimSpace(s)
	for _, re := range labelNumberPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}
