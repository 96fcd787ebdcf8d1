package classify

import (
	"regexp"
	"sort"
	"strings"
)

// Match is the result of classifying a heading or a note against a
// vocabulary.
type Match struct {
	// Types holds one value, or several for compound headings
	// ("Materials and Methods" → materials, methods).
	Types []string

	// Uncertain is set when only some parts of a compound classified.
	// Callers should not apply an uncertain type.
	Uncertain bool

	// Label is the leading enumeration stripped from the text.
	Label string
}

// Type joins Types with "|", the form used in sec-type attributes.
func (m Match) Type() string {
	return strings.Join(m.Types, "|")
}

// Matched reports whether any type was found.
func (m Match) Matched() bool {
	return len(m.Types) > 0
}

// Vocabulary classifies short phrases into a closed set of values.
type Vocabulary struct {
	terms     map[string]string
	phrases   []string
	compounds map[string][]string
	prefix    bool
}

type vocabularyEntry struct {
	value string
	words []string
}

func newVocabulary(entries []vocabularyEntry, compounds map[string][]string, prefix bool) *Vocabulary {
	v := &Vocabulary{
		terms:     make(map[string]string),
		compounds: compounds,
		prefix:    prefix,
	}
	for _, e := range entries {
		for _, w := range e.words {
			v.terms[w] = e.value
			v.phrases = append(v.phrases, w)
		}
	}
	for phrase := range compounds {
		v.phrases = append(v.phrases, phrase)
	}
	// longest phrase first for prefix matching
	sort.Slice(v.phrases, func(i, j int) bool {
		if len(v.phrases[i]) != len(v.phrases[j]) {
			return len(v.phrases[i]) > len(v.phrases[j])
		}
		return v.phrases[i] < v.phrases[j]
	})
	return v
}

var connectorRegex = regexp.MustCompile(`\s*(?:,|;|/|&|\band\b|\be\b|\by\b|\bet\b|\bund\b|\ben\b)\s*`)

// Classify strips a leading enumeration from text and looks it up: the
// compound-phrase table first, then single terms, then each part of the
// text split on connectors ("and", "e", "y", "&", commas).
func (v *Vocabulary) Classify(text string) Match {
	rest, label := StripNumbering(text)
	key := trimPunct(Fold(rest))
	m := Match{Label: label}
	if key == "" {
		return m
	}

	if values, ok := v.compounds[key]; ok {
		m.Types = append([]string(nil), values...)
		return m
	}
	if value, ok := v.terms[key]; ok {
		m.Types = []string{value}
		return m
	}

	parts := connectorRegex.Split(key, -1)
	if len(parts) > 1 {
		matched := 0
		for _, p := range parts {
			p = trimPunct(p)
			if p == "" {
				continue
			}
			value, ok := v.terms[p]
			if !ok {
				continue
			}
			matched++
			if !contains(m.Types, value) {
				m.Types = append(m.Types, value)
			}
		}
		if matched > 0 {
			m.Uncertain = matched < countNonEmpty(parts)
			return m
		}
	}

	if v.prefix {
		for _, phrase := range v.phrases {
			if !hasWordPrefix(key, phrase) {
				continue
			}
			if values, ok := v.compounds[phrase]; ok {
				m.Types = append([]string(nil), values...)
			} else {
				m.Types = []string{v.terms[phrase]}
			}
			return m
		}
	}
	return m
}

func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return true
	}
	next := s[len(prefix)]
	return !(next >= 'a' && next <= 'z' || next >= '0' && next <= '9')
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func countNonEmpty(parts []string) int {
	n := 0
	for _, p := range parts {
		if trimPunct(p) != "" {
			n++
		}
	}
	return n
}
