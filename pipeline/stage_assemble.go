package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/asset"
	"github.com/lehigh-university-libraries/legacyjats/classify"
)

// containerParents are the elements whose children are the top-level
// blocks new figures, tables and files are placed next to.
var containerParents = []string{"body", "back", "sec", "list-item", "disp-quote", "fn", "app"}

// assembler builds the figures, tables, footnotes and file references of
// one scope.
type assembler struct {
	scope Scope
	ids   *idAllocator
	reg   *asset.Registry

	// targets maps a placeholder id to the element it stands for.
	targets map[string]string

	// pending holds the elements to insert after each container, in the
	// order containers were seen.
	pending    map[*xmlquery.Node][]*xmlquery.Node
	containers []*xmlquery.Node
}

// assembleAssets resolves links to image and document files and completes
// the figure, table and footnote placeholders left by xref resolution.
func assembleAssets(d *Document) error {
	ids := newIDAllocator(d.Article)
	for _, scope := range d.Scopes() {
		a := &assembler{
			scope:   scope,
			ids:     ids,
			targets: map[string]string{},
			pending: map[*xmlquery.Node][]*xmlquery.Node{},
		}
		a.reg = asset.NewRegistry(func(id string) bool { return ids.taken(id + scope.Suffix) })
		a.assetLinks()
		a.insertPending()
		a.placeholders()
	}
	return nil
}

// container returns the top-level block holding n.
func container(n *xmlquery.Node) *xmlquery.Node {
	for c := n; c.Parent != nil; c = c.Parent {
		if isElement(c.Parent, containerParents...) {
			return c
		}
	}
	return nil
}

func (a *assembler) assetLinks() {
	for _, x := range a.scope.Elements("xref") {
		path := attr(x, attrPath)
		if path == "" || x.Parent == nil {
			continue
		}
		kind := asset.Kind{
			AssetType:   attr(x, attrAssetType),
			MimeType:    attr(x, attrMimeType),
			MimeSubtype: attr(x, attrMimeSubtype),
		}
		c := container(x)
		if c == nil {
			c = x
		}
		if kind.IsImage() {
			a.imageLink(x, c, path, kind)
		} else {
			a.fileLink(x, c, path, kind)
		}
	}
}

// labelText joins the text of the links to path inside c, so a label split
// over several links ("Table", "1") reads whole.
func labelText(c *xmlquery.Node, path string) string {
	key := asset.NormalizePath(path)
	var parts []string
	for _, x := range descendants(c, "xref") {
		if asset.NormalizePath(attr(x, attrPath)) == key {
			if t := strings.TrimSpace(text(x)); t != "" {
				parts = append(parts, t)
			}
		}
	}
	if isElement(c, "xref") && len(parts) == 0 {
		parts = append(parts, strings.TrimSpace(text(c)))
	}
	return strings.Join(parts, " ")
}

func (a *assembler) imageLink(x, c *xmlquery.Node, path string, kind asset.Kind) {
	ph, created := a.reg.Placeholder(path, kind)
	if created {
		ph.RID += a.scope.Suffix
		a.ids.reserve(ph.RID)

		label := labelText(c, path)
		cls, _ := classify.ByText(label)
		refType := classify.RefFig
		if cls.RefType == classify.RefTable {
			refType = classify.RefTable
		}

		if existing := a.findByPath(path); existing != nil {
			if id := attr(existing, "id"); id != "" {
				ph.RID = id
			} else {
				setAttr(existing, "id", ph.RID)
			}
			refType = classify.RefFig
			if isElement(existing, "table-wrap") {
				refType = classify.RefTable
			}
		} else {
			if refType == classify.RefTable {
				ph.RID = a.ids.numbered(classify.IDPrefixes[classify.RefTable], cls.Number, a.scope.Suffix)
			}
			el := newElement(classify.ElementNames[refType], "id", ph.RID)
			if cls.Classified() {
				setAttr(el, attrLabel, cls.Label)
				appendChild(el, labelElement(cls.Label))
			}
			appendChild(el, newElement("graphic", "xlink:href", path))
			a.queue(c, el)
		}
		a.targets[ph.RID] = refType
	}

	setAttr(x, "ref-type", a.targets[ph.RID])
	setAttr(x, "rid", ph.RID)
	removeAttr(x, attrPath)
}

func (a *assembler) fileLink(x, c *xmlquery.Node, path string, kind asset.Kind) {
	ph, created := a.reg.Placeholder(path, kind)
	if created {
		ph.RID += a.scope.Suffix
		a.ids.reserve(ph.RID)

		name := kind.AssetType
		if name != asset.TypeMedia {
			name = asset.TypeSupplementary
		}
		el := newElement(name,
			"id", ph.RID,
			"xlink:href", path,
			"mimetype", kind.MimeType,
			"mime-subtype", kind.MimeSubtype)
		if label := strings.TrimSpace(text(x)); label != "" {
			appendChild(el, labelElement(label))
		}
		a.queue(c, el)
	}

	setAttr(x, "ref-type", classify.RefSuppl)
	setAttr(x, "rid", ph.RID)
	removeAttr(x, attrPath)
}

// findByPath returns the figure or table in scope whose graphic shows path.
func (a *assembler) findByPath(path string) *xmlquery.Node {
	key := asset.NormalizePath(path)
	for _, g := range a.scope.Elements("graphic") {
		if asset.NormalizePath(attr(g, "xlink:href")) != key {
			continue
		}
		if owner := ancestor(g, "fig", "table-wrap"); owner != nil {
			return owner
		}
	}
	return nil
}

func (a *assembler) queue(c, el *xmlquery.Node) {
	if _, ok := a.pending[c]; !ok {
		a.containers = append(a.containers, c)
	}
	a.pending[c] = append(a.pending[c], el)
}

var idNumberRegex = regexp.MustCompile(`([0-9]+)`)

func idNumber(id string) int {
	m := idNumberRegex.FindString(id)
	n, _ := strconv.Atoi(m)
	return n
}

// insertPending places the new elements after their containers. Each is
// inserted right after the container in descending id order, which leaves
// them in ascending order. The first one may take its caption from the
// container.
func (a *assembler) insertPending() {
	for _, c := range a.containers {
		els := a.pending[c]
		if c.Parent == nil || len(els) == 0 {
			continue
		}
		sort.SliceStable(els, func(i, j int) bool {
			return idNumber(attr(els[i], "id")) > idNumber(attr(els[j], "id"))
		})
		for _, el := range els {
			insertAfter(c, el)
		}
		if first := els[len(els)-1]; isElement(first, "fig", "table-wrap") {
			splitCaption(first)
		}
	}
}

func labelElement(s string) *xmlquery.Node {
	l := newElement("label")
	appendChild(l, newText(s))
	return l
}

// placeholders completes the fig, table-wrap and fn elements standing in
// for legacy named anchors.
func (a *assembler) placeholders() {
	for _, ph := range a.scope.Elements("fig", "table-wrap", "fn") {
		if ph.Parent == nil || attr(ph, attrPlaceholder) == "" {
			continue
		}
		removeAttr(ph, attrPlaceholder)
		if isElement(ph, "fn") {
			a.footnote(ph)
			continue
		}
		a.float(ph)
	}
}

// float completes a figure or table placeholder with the graphic or table
// found after it and moves it out of its paragraph.
func (a *assembler) float(ph *xmlquery.Node) {
	label := attr(ph, attrLabel)
	liftOut(ph)

	var found *xmlquery.Node
	if isElement(ph, "fig") {
		found = searchForward(ph, func(n *xmlquery.Node) bool {
			return isElement(n, "graphic") && !hasAncestor(n, "fig", "table-wrap", "supplementary-material")
		})
	} else {
		found = searchForward(ph, func(n *xmlquery.Node) bool {
			switch {
			case isElement(n, "table-wrap"):
				return attr(n, "id") == ""
			case isElement(n, "table"):
				w := ancestor(n, "table-wrap")
				return w == nil || attr(w, "id") == ""
			}
			return false
		})
	}

	if label != "" {
		appendChild(ph, labelElement(label))
	}
	switch {
	case found == nil:
		insertAfter(ph, uncertain(fmt.Sprintf("no %s content found for %s", ph.Data, attr(ph, "id"))))
	case isElement(found, "table-wrap"):
		moveChildren(found, ph)
		remove(found)
	case isElement(found, "table"):
		if w := ancestor(found, "table-wrap"); w != nil {
			moveChildren(w, ph)
			remove(w)
		} else {
			appendChild(ph, found)
		}
	default:
		appendChild(ph, found)
	}
	splitCaption(ph)
}

// liftOut moves an element out of the paragraph holding it. A paragraph
// left without content is replaced.
func liftOut(n *xmlquery.Node) {
	c := container(n)
	if c == nil || c == n {
		return
	}
	if isElement(c, "p") && !hasContentNodes(without(children(c), n)) {
		replaceNode(c, n)
		return
	}
	insertAfter(c, n)
}

// searchForward looks for a match among the nodes following n, climbing up
// to the top-level block. It stops at the next section.
func searchForward(n *xmlquery.Node, match func(*xmlquery.Node) bool) *xmlquery.Node {
	for p := n; p != nil && p.Parent != nil; p = p.Parent {
		for s := p.NextSibling; s != nil; s = s.NextSibling {
			if isElement(s, "sec") {
				return nil
			}
			if match(s) {
				return s
			}
			for _, d := range descendants(s) {
				if match(d) {
					return d
				}
			}
		}
		if isElement(p.Parent, containerParents...) {
			return nil
		}
	}
	return nil
}

// splitCaption takes the caption of a figure or table from the paragraph
// before it when that paragraph starts with the label. A bare label
// paragraph followed by another paragraph gives label and title. Anything
// else keeps the label alone. Paragraphs holding links are running text and
// are never consumed; when one starts with the label the figure keeps its
// bare label and is flagged.
func splitCaption(el *xmlquery.Node) {
	label := attr(el, attrLabel)
	if label == "" || firstChildElement(el, "caption") != nil {
		return
	}
	prev := prevElement(el)
	if !isElement(prev, "p") {
		return
	}

	if rest, ok := afterLabel(text(prev), label); ok {
		switch {
		case hasLinks(prev):
			if rest != "" {
				insertAfter(el, uncertain(fmt.Sprintf("caption of %s not separated from the text citing it", attr(el, "id"))))
			}
		case rest != "":
			setCaption(el, newText(rest))
			remove(prev)
		default:
			remove(prev)
		}
		return
	}

	before := prevElement(prev)
	if isElement(before, "p") && !hasLinks(prev) && !hasLinks(before) {
		if rest, ok := afterLabel(text(before), label); ok && rest == "" {
			title := newElement("title")
			moveChildren(prev, title)
			setCaptionTitle(el, title)
			remove(prev)
			remove(before)
		}
	}
}

// hasLinks reports whether p holds a cross-reference.
func hasLinks(p *xmlquery.Node) bool {
	return len(descendants(p, "xref")) > 0
}

var captionSeparators = " \t\n.:-–—"

// afterLabel reports whether s starts with label and returns the rest.
func afterLabel(s, label string) (string, bool) {
	s = strings.TrimSpace(s)
	fl, fs := classify.Fold(label), classify.Fold(s)
	if fl == "" || !strings.HasPrefix(fs, fl) {
		return "", false
	}
	words := len(strings.Fields(label))
	fields := strings.Fields(s)
	if len(fields) < words {
		return "", true
	}
	rest := strings.Join(fields[words:], " ")
	return strings.TrimLeft(rest, captionSeparators), true
}

func setCaption(el, content *xmlquery.Node) {
	title := newElement("title")
	appendChild(title, content)
	setCaptionTitle(el, title)
}

func setCaptionTitle(el, title *xmlquery.Node) {
	caption := newElement("caption")
	appendChild(caption, title)
	if l := firstChildElement(el, "label"); l != nil {
		insertAfter(l, caption)
		return
	}
	prependChild(el, caption)
}

// footnote turns the paragraph holding a footnote anchor into an fn in the
// back fn-group.
func (a *assembler) footnote(ph *xmlquery.Node) {
	label := attr(ph, attrLabel)
	fn := newElement("fn", "id", attr(ph, "id"))

	p := ancestor(ph, "p")
	remove(ph)
	if p != nil && label == "" {
		label = paragraphLabel(p)
	}
	if p != nil && paragraphLabel(p) == label {
		dropLeadingLabel(p)
	}
	if label != "" {
		appendChild(fn, labelElement(label))
	}

	if p == nil || !hasContentNodes(children(p)) {
		appendChild(fn, uncertain("footnote text not found"))
	} else {
		body := newElement("p")
		moveChildren(p, body)
		appendChild(fn, body)
		remove(p)
		if m := classify.Footnote(text(body)); m.Matched() && !m.Uncertain {
			setAttr(fn, "fn-type", m.Type())
		}
	}
	appendChild(fnGroup(a.scope), fn)
}
