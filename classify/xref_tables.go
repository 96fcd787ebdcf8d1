package classify

import (
	"regexp"
	"strings"
)

// Reference types.
const (
	RefFig     = "fig"
	RefTable   = "table"
	RefFn      = "fn"
	RefBibr    = "bibr"
	RefFormula = "disp-formula"
	RefApp     = "app"
	RefSuppl   = "supplementary-material"
	RefSec     = "sec"
	RefBox     = "boxed-text"
	RefAff     = "aff"
	RefCorresp = "corresp"
)

// ElementNames maps a reference type to the element it points at.
var ElementNames = map[string]string{
	RefFig:     "fig",
	RefTable:   "table-wrap",
	RefFn:      "fn",
	RefBibr:    "ref",
	RefFormula: "disp-formula",
	RefApp:     "app",
	RefSuppl:   "supplementary-material",
	RefSec:     "sec",
	RefBox:     "boxed-text",
	RefAff:     "aff",
	RefCorresp: "corresp",
}

// IDPrefixes maps a reference type to the prefix of the canonical ids the
// pipeline assigns ("f1", "t2", "B3").
var IDPrefixes = map[string]string{
	RefFig:     "f",
	RefTable:   "t",
	RefFn:      "fn",
	RefBibr:    "B",
	RefFormula: "e",
	RefApp:     "app",
	RefSuppl:   "suppl",
	RefSec:     "sec",
	RefBox:     "box",
	RefAff:     "aff",
	RefCorresp: "c",
}

type idRule struct {
	re      *regexp.Regexp
	refType string
}

// idRules is ordered from specific to general: "tfn1" must be read as a
// footnote before the "t" prefix claims it as a table.
var idRules = compileIDRules([][2]string{
	{"corresp", RefCorresp},
	{"suppl", RefSuppl},
	{"graf", RefFig},
	{"anx", RefApp},
	{"app", RefApp},
	{"aff", RefAff},
	{"tfn", RefFn},
	{"tab", RefTable},
	{"tbl", RefTable},
	{"fig", RefFig},
	{"box", RefBox},
	{"bib", RefBibr},
	{"ref", RefBibr},
	{"sec", RefSec},
	{"fn", RefFn},
	{"nt", RefFn},
	{"gf", RefFig},
	{"eq", RefFormula},
	{"bx", RefBox},
	{"sm", RefSuppl},
	{"f", RefFig},
	{"t", RefTable},
	{"e", RefFormula},
	{"n", RefFn},
	{"b", RefBibr},
	{"r", RefBibr},
})

func compileIDRules(pairs [][2]string) []idRule {
	out := make([]idRule, len(pairs))
	for i, p := range pairs {
		out[i] = idRule{
			re:      regexp.MustCompile(`^(?i)` + regexp.QuoteMeta(p[0]) + `[-_.]?(\d+[a-z]?)$`),
			refType: p[1],
		}
	}
	return out
}

type textRule struct {
	re      *regexp.Regexp
	refType string
}

// textGroups lists the words that introduce a label, per reference type.
// Words are written folded (lowercase, no accents).
var textGroups = []struct {
	refType string
	words   []string
}{
	{RefSuppl, []string{"supplementary material", "supplemental material", "material suplementar", "material suplementario", "supplementary", "supplemental", "suplemento"}},
	{RefFig, []string{"figures", "figure", "figuras", "figura", "figs", "fig", "graficos", "grafico", "graficas", "grafica", "graphs", "graph", "abbildung", "abb", "ilustracao", "ilustracion", "imagem", "imagen", "laminas", "lamina", "photo", "foto", "chart", "mapa", "map", "esquema", "scheme"}},
	{RefTable, []string{"tables", "table", "tablas", "tabla", "tabelas", "tabela", "tabelle", "tableau", "quadros", "quadro", "cuadros", "cuadro", "tab"}},
	{RefFormula, []string{"equations", "equation", "ecuaciones", "ecuacion", "equacoes", "equacao", "formulas", "formula", "formule", "eqs", "eq"}},
	{RefApp, []string{"appendix", "appendices", "apendices", "apendice", "anexos", "anexo", "annexe", "annex", "anhang"}},
	{RefFn, []string{"footnotes", "footnote", "notes", "note", "notas", "nota"}},
	{RefBibr, []string{"references", "reference", "referencias", "referencia", "bibliography", "refs", "ref"}},
	{RefSec, []string{"sections", "section", "secciones", "seccion", "secoes", "secao", "capitulos", "capitulo", "chapter", "item"}},
	{RefBox, []string{"boxes", "box", "caixa", "recuadro"}},
}

var textRules = compileTextRules()

func compileTextRules() []textRule {
	out := make([]textRule, len(textGroups))
	for i, g := range textGroups {
		alts := make([]string, len(g.words))
		for j, w := range g.words {
			alts[j] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
		}
		out[i] = textRule{
			re:      regexp.MustCompile(`(?:^|\W)(?:` + strings.Join(alts, "|") + `)\.?(?:\s+|$|\b)(.*)$`),
			refType: g.refType,
		}
	}
	return out
}
