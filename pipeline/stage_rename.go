package pipeline

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/classify"
	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// keptElements are left alone by the rename pass. Anything not listed and
// not renamed is unwrapped.
var keptElements = map[string]bool{
	"article": true, "sub-article": true, "body": true, "back": true,
	"ref-list": true, "ref": true, "mixed-citation": true,
	"p": true, "br": true, "a": true, "font": true, sanitize.FixTag: true,
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
	"td": true, "th": true, "col": true, "colgroup": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var tableAttrs = map[string][]string{
	"table":    {"border", "cellpadding", "cellspacing", "width", "frame", "rules"},
	"td":       {"colspan", "rowspan", "align", "valign"},
	"th":       {"colspan", "rowspan", "align", "valign"},
	"tr":       {"align", "valign"},
	"col":      {"span", "width", "align"},
	"colgroup": {"span", "width", "align"},
}

// renamed maps plain HTML elements to their target names.
var renamed = map[string]string{
	"blockquote": "disp-quote",
	"pre":        "preformat",
	"tt":         "monospace",
	"code":       "monospace",
	"kbd":        "monospace",
	"li":         "list-item",
	"dt":         "list-item",
	"dd":         "list-item",
}

var listTypes = map[string]string{
	"ul": "bullet",
	"ol": "order",
	"dl": "simple",
}

// renameElements moves the tree from HTML to the target vocabulary and
// rebuilds paragraphs and sections.
func renameElements(d *Document) error {
	for _, n := range descendants(d.Article) {
		renameElement(n)
	}
	for _, n := range reverse(descendants(d.Article, inlineElements...)) {
		distributeInline(n)
	}
	for _, c := range descendants(d.Article, "body", "back", "list-item", "disp-quote") {
		reflow(c)
	}
	for _, c := range descendants(d.Article, "body", "back") {
		sectionize(c)
	}
	for _, h := range descendants(d.Article, headingTags...) {
		demoteHeading(h)
	}
	return nil
}

func renameElement(n *xmlquery.Node) {
	if n.Parent == nil {
		return
	}
	name := n.Data

	if to, ok := renamed[name]; ok {
		retag(n, to, false)
		return
	}
	if lt, ok := listTypes[name]; ok {
		list := retag(n, "list", false)
		setAttr(list, "list-type", lt)
		wrapStrayListContent(list)
		return
	}

	switch name {
	case "span":
		if el := styleElement(attr(n, "style")); el != "" {
			retag(n, el, false)
			return
		}
		unwrap(n)
	case "img":
		src := strings.TrimSpace(attr(n, "src"))
		if src == "" {
			remove(n)
			return
		}
		g := retag(n, "graphic", false)
		setAttr(g, "xlink:href", src)
	case "hr":
		remove(n)
	case "table":
		wrapTable(n)
	case "caption":
		// handled with its table
	case "p":
		if isElement(n.Parent, "td", "th") {
			joinCellParagraph(n)
			return
		}
		keepOnly(n, "id")
	case "font":
		keepOnly(n, "size", "style")
	case "a":
		keepOnly(n, "href", "name", "id", "specific-use")
	default:
		if attrs, ok := tableAttrs[name]; ok {
			keepOnly(n, attrs...)
			return
		}
		if !keptElements[name] {
			unwrap(n)
		}
	}
}

// styleElement maps the style carried by a neutral span to an element name.
func styleElement(style string) string {
	s := strings.ToLower(strings.Join(strings.Fields(style), ""))
	switch {
	case s == "bold" || strings.Contains(s, "font-weight:bold") || strings.Contains(s, "font-weight:700"):
		return "bold"
	case s == "italic" || strings.Contains(s, "font-style:italic"):
		return "italic"
	case s == "underline" || strings.Contains(s, "text-decoration:underline"):
		return "underline"
	case s == "sup" || strings.Contains(s, "vertical-align:super"):
		return "sup"
	case s == "sub" || strings.Contains(s, "vertical-align:sub"):
		return "sub"
	}
	return ""
}

func keepOnly(n *xmlquery.Node, names ...string) {
	var kept []xmlquery.Attr
	for _, a := range n.Attr {
		for _, name := range names {
			if a.Name.Space == "" && a.Name.Local == name {
				kept = append(kept, a)
				break
			}
		}
	}
	n.Attr = kept
}

func wrapStrayListContent(list *xmlquery.Node) {
	var run []*xmlquery.Node
	flush := func() {
		if hasContentNodes(run) {
			wrapNodes(run, newElement("list-item"))
		}
		run = nil
	}
	for _, c := range children(list) {
		if isElement(c, "li", "dt", "dd", "list-item") {
			flush()
			continue
		}
		run = append(run, c)
	}
	flush()
}

// wrapTable wraps a table in a table-wrap and moves its caption there.
func wrapTable(table *xmlquery.Node) {
	keepOnly(table, tableAttrs["table"]...)
	wrap := newElement("table-wrap")
	insertBefore(table, wrap)

	if c := firstChildElement(table, "caption"); c != nil {
		caption := newElement("caption")
		title := newElement("title")
		moveChildren(c, title)
		appendChild(caption, title)
		remove(c)
		if hasText(title) {
			appendChild(wrap, caption)
		}
	}
	appendChild(wrap, table)
}

// joinCellParagraph unwraps a paragraph in a table cell, separating it from
// the content before it with a break.
func joinCellParagraph(p *xmlquery.Node) {
	for s := p.PrevSibling; s != nil; s = s.PrevSibling {
		if isElement(s) || (isText(s) && strings.TrimSpace(s.Data) != "") {
			insertBefore(p, newElement("break"))
			break
		}
	}
	unwrap(p)
}

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

func headingLevel(n *xmlquery.Node) int {
	if !isElement(n, headingTags...) {
		return 0
	}
	return int(n.Data[1] - '0')
}

// sectionize turns the headings directly under container into nested
// sections. Content after a heading moves into its section.
func sectionize(container *xmlquery.Node) {
	type open struct {
		level int
		sec   *xmlquery.Node
	}
	var stack []open

	for _, c := range children(container) {
		level := headingLevel(c)
		if level == 0 {
			if len(stack) > 0 {
				appendChild(stack[len(stack)-1].sec, c)
			}
			continue
		}

		sec := newSection(c)
		remove(c)
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := container
		if len(stack) > 0 {
			parent = stack[len(stack)-1].sec
		}
		appendChild(parent, sec)
		stack = append(stack, open{level, sec})
	}
}

// newSection builds a sec titled with the content of heading. The section
// type is set only when the title classifies without doubt.
func newSection(heading *xmlquery.Node) *xmlquery.Node {
	sec := newElement("sec")
	title := newElement("title")
	moveChildren(heading, title)
	appendChild(sec, title)
	if m := classify.Section(text(title)); m.Matched() && !m.Uncertain {
		setAttr(sec, "sec-type", m.Type())
	}
	return sec
}

// demoteHeading turns a heading that cannot open a section into bold text.
func demoteHeading(h *xmlquery.Node) {
	b := retag(h, "bold", false)
	if isElement(b.Parent, "body", "back", "sec", "list-item", "disp-quote") {
		p := newElement("p")
		insertBefore(b, p)
		appendChild(p, b)
	}
}

func reverse(nodes []*xmlquery.Node) []*xmlquery.Node {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}
