package pipeline

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/classify"
)

var (
	integerRegex      = regexp.MustCompile(`^[0-9]+$`)
	leadingLabelRegex = regexp.MustCompile(`^\s*[\[(]?([0-9]+)[\])]?(?:[.\-:]|\s|$)`)
)

// promote decides what numbered superscripts point at: "bibr" when every
// number is a reference label, else "fn" when every number is a footnote
// label, else nothing.
func promote(numbers []string, refLabels, fnLabels map[string]bool) string {
	if len(numbers) == 0 {
		return ""
	}
	switch {
	case subset(numbers, refLabels):
		return classify.RefBibr
	case subset(numbers, fnLabels):
		return classify.RefFn
	}
	return ""
}

func subset(items []string, set map[string]bool) bool {
	if len(set) == 0 {
		return false
	}
	for _, it := range items {
		if !set[it] {
			return false
		}
	}
	return true
}

// promoteSuperscripts links bare numbered superscripts to the references or
// footnotes they cite.
func promoteSuperscripts(d *Document) error {
	ids := newIDAllocator(d.Article)
	for _, scope := range d.Scopes() {
		promoteScopeSuperscripts(scope, ids)
	}
	return nil
}

func promoteScopeSuperscripts(scope Scope, ids *idAllocator) {
	body := scope.Body()
	if body == nil {
		return
	}

	var sups []*xmlquery.Node
	var numbers []string
	for _, s := range xmlquery.QuerySelectorAll(body, bareSupsExpr) {
		if !scope.Contains(s) {
			continue
		}
		n := strings.TrimSpace(text(s))
		if !integerRegex.MatchString(n) {
			continue
		}
		sups = append(sups, s)
		numbers = append(numbers, trimZeros(n))
	}
	if len(sups) == 0 {
		return
	}

	refs := referenceLabels(scope)
	notes := footnoteLabels(scope)

	switch promote(numbers, keys(refs), keys(notes)) {
	case classify.RefBibr:
		for i, s := range sups {
			linkSuperscript(s, classify.RefBibr, refs[numbers[i]])
		}
	case classify.RefFn:
		rids := materializeFootnotes(scope, ids, notes, numbers)
		for i, s := range sups {
			linkSuperscript(s, classify.RefFn, rids[numbers[i]])
		}
	}
}

func linkSuperscript(sup *xmlquery.Node, refType, rid string) {
	x := newElement("xref", "ref-type", refType, "rid", rid)
	moveChildren(sup, x)
	appendChild(sup, x)
}

func keys[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func trimZeros(n string) string {
	t := strings.TrimLeft(n, "0")
	if t == "" {
		return "0"
	}
	return t
}

// referenceLabels maps the number of each reference to its id. The number
// comes from the label child, else from the leading digits of the citation.
func referenceLabels(scope Scope) map[string]string {
	labels := map[string]string{}
	for _, ref := range scope.Elements("ref") {
		id := attr(ref, "id")
		if id == "" {
			continue
		}
		src := ""
		if l := firstChildElement(ref, "label"); l != nil {
			src = text(l)
		} else if c := firstChildElement(ref, "mixed-citation"); c != nil {
			src = text(c)
		}
		if m := leadingLabelRegex.FindStringSubmatch(src); m != nil {
			if _, ok := labels[trimZeros(m[1])]; !ok {
				labels[trimZeros(m[1])] = id
			}
		}
	}
	return labels
}

// footnote is something a numbered superscript can point at: an fn element
// or a back paragraph starting with its number.
type footnote struct {
	fn   *xmlquery.Node
	para *xmlquery.Node
}

func footnoteLabels(scope Scope) map[string]footnote {
	notes := map[string]footnote{}
	for _, fn := range scope.Elements("fn") {
		if l := firstChildElement(fn, "label"); l != nil {
			n := strings.TrimSpace(text(l))
			if m := leadingLabelRegex.FindStringSubmatch(n); m != nil {
				notes[trimZeros(m[1])] = footnote{fn: fn}
			}
		}
	}

	back := firstChildElement(scope.Root, "back")
	if back == nil {
		return notes
	}
	for _, p := range descendants(back, "p") {
		if !scope.Contains(p) || hasAncestor(p, "ref-list", "fn", "fn-group") {
			continue
		}
		n := paragraphLabel(p)
		if n == "" {
			continue
		}
		if _, ok := notes[n]; !ok {
			notes[n] = footnote{para: p}
		}
	}
	return notes
}

// paragraphLabel returns the number a paragraph starts with, either as a
// superscript or as text.
func paragraphLabel(p *xmlquery.Node) string {
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isBlankText(c), c.Type == xmlquery.CommentNode:
			continue
		case isElement(c, "sup"):
			n := strings.TrimSpace(text(c))
			if integerRegex.MatchString(n) {
				return trimZeros(n)
			}
			return ""
		case isText(c):
			if m := leadingLabelRegex.FindStringSubmatch(c.Data); m != nil {
				return trimZeros(m[1])
			}
			return ""
		default:
			return ""
		}
	}
	return ""
}

// materializeFootnotes turns the back paragraphs labelled with a cited
// number into fn elements in the back fn-group and returns the id of every
// cited footnote by label.
func materializeFootnotes(scope Scope, ids *idAllocator, notes map[string]footnote, cited []string) map[string]string {
	rids := make(map[string]string, len(cited))
	var group *xmlquery.Node
	for _, label := range sortedLabels(notes) {
		if !slices.Contains(cited, label) {
			continue
		}
		note := notes[label]
		if note.fn != nil {
			id := attr(note.fn, "id")
			if id == "" {
				id = ids.numbered(classify.IDPrefixes[classify.RefFn], label, scope.Suffix)
				setAttr(note.fn, "id", id)
			}
			rids[label] = id
			continue
		}

		if group == nil {
			group = fnGroup(scope)
		}
		id := ids.numbered(classify.IDPrefixes[classify.RefFn], label, scope.Suffix)
		fn := newElement("fn", "id", id)
		l := newElement("label")
		appendChild(l, newText(label))
		appendChild(fn, l)
		dropLeadingLabel(note.para)
		p := newElement("p")
		moveChildren(note.para, p)
		appendChild(fn, p)
		remove(note.para)
		appendChild(group, fn)
		rids[label] = id
	}
	return rids
}

func sortedLabels(notes map[string]footnote) []string {
	labels := make([]string, 0, len(notes))
	for l := range notes {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, _ := strconv.Atoi(labels[i])
		b, _ := strconv.Atoi(labels[j])
		return a < b
	})
	return labels
}

func fnGroup(scope Scope) *xmlquery.Node {
	back := scope.Back()
	if g := firstChildElement(back, "fn-group"); g != nil {
		return g
	}
	g := newElement("fn-group")
	appendChild(back, g)
	return g
}

func dropLeadingLabel(p *xmlquery.Node) {
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isBlankText(c), c.Type == xmlquery.CommentNode:
			continue
		case isElement(c, "sup"):
			remove(c)
		case isText(c):
			if loc := leadingLabelRegex.FindStringSubmatchIndex(c.Data); loc != nil {
				c.Data = strings.TrimLeft(c.Data[loc[1]:], " \t\n")
			}
		}
		return
	}
}
