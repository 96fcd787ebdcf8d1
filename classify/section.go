package classify

var sectionVocabulary = newVocabulary([]vocabularyEntry{
	{"intro", []string{"introduction", "introduccion", "introducao", "einleitung", "background", "antecedentes"}},
	{"materials", []string{"materials", "material", "materiales", "materiais"}},
	{"methods", []string{"methods", "method", "methodology", "metodos", "metodo", "metodologia", "methodes", "procedures", "procedimientos", "procedimentos"}},
	{"results", []string{"results", "resultados", "resultats", "ergebnisse", "findings"}},
	{"discussion", []string{"discussion", "discusion", "discussao", "diskussion"}},
	{"conclusions", []string{"conclusions", "conclusion", "conclusiones", "conclusoes", "conclusao", "comentarios finales"}},
	{"cases", []string{"case report", "case reports", "relato de caso", "relato do caso", "reporte de caso", "caso clinico", "casos clinicos"}},
	{"subjects", []string{"subjects", "patients", "participants", "pacientes", "sujetos", "sujeitos", "casuistica", "participantes"}},
	{"supplementary-material", []string{"supplementary material", "supplementary materials", "material suplementar", "material suplementario"}},
}, map[string][]string{
	"materials and methods":      {"materials", "methods"},
	"material and methods":       {"materials", "methods"},
	"material and method":        {"materials", "methods"},
	"materiales y metodos":       {"materials", "methods"},
	"material y metodos":         {"materials", "methods"},
	"materiais e metodos":        {"materials", "methods"},
	"material e metodos":         {"materials", "methods"},
	"results and discussion":     {"results", "discussion"},
	"resultados y discusion":     {"results", "discussion"},
	"resultados e discussao":     {"results", "discussion"},
	"discussion and conclusions": {"discussion", "conclusions"},
	"discusion y conclusiones":   {"discussion", "conclusions"},
	"discussao e conclusoes":     {"discussion", "conclusions"},
	"patients and methods":       {"subjects", "methods"},
	"subjects and methods":       {"subjects", "methods"},
	"pacientes y metodos":        {"subjects", "methods"},
	"pacientes e metodos":        {"subjects", "methods"},
	"casuistica e metodos":       {"subjects", "methods"},
	"casuistica e metodo":        {"subjects", "methods"},
	"final considerations":       {"conclusions"},
	"consideracoes finais":       {"conclusions"},
	"consideraciones finales":    {"conclusions"},
	"concluding remarks":         {"conclusions"},
}, false)

// Section classifies a section heading into a sec-type value.
func Section(heading string) Match {
	return sectionVocabulary.Classify(heading)
}
