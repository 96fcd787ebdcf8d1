package classify

import "strings"

var footnoteVocabulary = newVocabulary([]vocabularyEntry{
	{"conflict", []string{"conflict of interest", "conflicts of interest", "conflict of interests", "competing interests", "conflito de interesses", "conflitos de interesse", "conflicto de intereses", "conflictos de interes"}},
	{"financial-disclosure", []string{"funding", "financial support", "financial disclosure", "financiamento", "financiacion", "financiamiento", "apoio financeiro", "fuente de financiamiento", "fonte de financiamento"}},
	{"supported-by", []string{"supported by", "apoio", "apoyo"}},
	{"con", []string{"author contributions", "authors contributions", "contribuicao dos autores", "contribuciones de los autores", "contribution"}},
	{"corresp", []string{"correspondence", "correspondencia", "corresponding author", "autor correspondente", "autor para correspondencia"}},
	{"abbr", []string{"abbreviations", "abreviaturas", "abreviacoes", "siglas"}},
	{"presented-at", []string{"presented at", "apresentado em", "presentado en", "trabalho apresentado", "trabajo presentado"}},
	{"deceased", []string{"deceased", "falecido", "fallecido", "in memoriam"}},
	{"equal", []string{"contributed equally", "these authors contributed equally"}},
	{"current-aff", []string{"present address", "current address", "endereco atual", "direccion actual"}},
}, map[string][]string{
	"conflict of interest and funding":       {"conflict", "financial-disclosure"},
	"conflicto de intereses y financiacion":  {"conflict", "financial-disclosure"},
	"conflito de interesses e financiamento": {"conflict", "financial-disclosure"},
}, true)

// Footnote classifies a footnote into an fn-type value. Only the lead-in
// before the first colon is compared; the body of a note is free text.
func Footnote(text string) Match {
	rest, label := StripNumbering(text)
	if lead, _, ok := strings.Cut(rest, ":"); ok && strings.TrimSpace(lead) != "" {
		rest = lead
	}
	m := footnoteVocabulary.Classify(rest)
	if m.Label == "" {
		m.Label = label
	}
	return m
}
