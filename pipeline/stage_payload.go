package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/helpers"
	"github.com/lehigh-university-libraries/legacyjats/paragraph"
	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// Payload sections.
const (
	sectionBefore     = "before"
	sectionReferences = "references"
	sectionAfter      = "after"
)

// wrapPayloads stores every block of raw markup, unparsed, in a payload
// element of the seed tree.
func wrapPayloads(d *Document) error {
	add := func(section, lang string, p paragraph.Paragraph) {
		n := newElement("payload", "section", section)
		if lang != "" {
			setAttr(n, "lang", lang)
		}
		if p.Index != "" {
			setAttr(n, "index", p.Index)
		}
		if p.ReferenceIndex != "" {
			setAttr(n, "reference-index", p.ReferenceIndex)
		}
		if p.Text != "" {
			appendChild(n, newText(sanitize.ValidText(p.Text)))
		}
		appendChild(d.Article, n)
	}

	part := d.Source.Partition
	for _, p := range part.Before {
		add(sectionBefore, "", p)
	}
	for _, p := range part.References {
		add(sectionReferences, "", p)
	}
	for _, p := range part.After {
		add(sectionAfter, "", p)
	}

	for _, lang := range translationLangs(d.Source.Translations) {
		t := d.Source.Translations[lang]
		if strings.TrimSpace(t.Before) != "" {
			add(sectionBefore, lang, paragraph.Paragraph{Text: t.Before})
		}
		if strings.TrimSpace(t.After) != "" {
			add(sectionAfter, lang, paragraph.Paragraph{Text: t.After})
		}
	}
	return nil
}

func translationLangs(m map[string]Translation) []string {
	langs := make([]string, 0, len(m))
	for lang := range m {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

type placement struct {
	root, body, back *xmlquery.Node
}

func newPlacement(root *xmlquery.Node) *placement {
	return &placement{root: root, body: newElement("body"), back: newElement("back")}
}

// placePayloads parses each payload and moves its content to its place:
// body, back, the reference list or a translated sub-article.
func placePayloads(d *Document) error {
	payloads := elementChildren(d.Article, "payload")
	for _, p := range payloads {
		remove(p)
	}

	setAttr(d.Article, "xmlns:xlink", XLinkNamespace)
	if d.Source.Lang != "" {
		setAttr(d.Article, "xml:lang", d.Source.Lang)
	}

	main := newPlacement(d.Article)
	subs := map[string]*placement{}
	var subOrder []*placement

	refs := newRefBuilder()
	for _, p := range payloads {
		content := d.parseMarkup(text(p))
		lang := attr(p, "lang")
		section := attr(p, "section")

		if lang != "" {
			sp, ok := subs[lang]
			if !ok {
				sub := newElement("sub-article",
					"article-type", "translation",
					"id", "s"+strconv.Itoa(len(subOrder)+1),
					"xml:lang", lang)
				sp = newPlacement(sub)
				subs[lang] = sp
				subOrder = append(subOrder, sp)
			}
			if section == sectionAfter {
				moveChildren(content, sp.back)
			} else {
				moveChildren(content, sp.body)
			}
			continue
		}

		switch section {
		case sectionReferences:
			refs.add(main.back, attr(p, "reference-index"), content)
		case sectionAfter:
			moveChildren(content, main.back)
		default:
			moveChildren(content, main.body)
		}
	}

	appendChild(d.Article, main.body)
	appendChild(d.Article, main.back)
	for _, sp := range subOrder {
		appendChild(sp.root, sp.body)
		appendChild(sp.root, sp.back)
		appendChild(d.Article, sp.root)
	}
	return nil
}

// parseMarkup repairs a block of legacy markup and returns the root element
// holding its content.
func (d *Document) parseMarkup(markup string) *xmlquery.Node {
	root, degraded := sanitize.Tree(markup, d.Options.Sanitize)
	if degraded {
		d.Log.Debug("markup reduced to plain text", "markup", helpers.TruncateText(markup, 80))
	}
	return root
}

// refBuilder materializes one ref per reference index.
type refBuilder struct {
	list    *xmlquery.Node
	byIndex map[string]*xmlquery.Node
	last    *xmlquery.Node
}

func newRefBuilder() *refBuilder {
	return &refBuilder{byIndex: map[string]*xmlquery.Node{}}
}

func (b *refBuilder) add(back *xmlquery.Node, index string, content *xmlquery.Node) {
	if b.list == nil {
		b.list = newElement("ref-list")
		appendChild(back, b.list)
	}

	citation := newElement("mixed-citation")
	for _, c := range children(content) {
		if isElement(c, "p") {
			moveChildren(c, citation)
			continue
		}
		appendChild(citation, c)
	}
	empty := isEmptyElement(citation)

	switch {
	case index == "" && empty:
	case index == "" && b.last != nil:
		// A paragraph without index inside the reference span continues
		// the previous reference.
		appendChild(b.last, uncertain("paragraph without reference index"))
		appendChild(b.last, citation)
	case index == "":
		p := newElement("p")
		moveChildren(citation, p)
		appendChild(back, uncertain("paragraph without reference index"))
		appendChild(back, p)
	default:
		ref, ok := b.byIndex[index]
		if !ok {
			ref = newElement("ref", "id", "B"+index)
			b.byIndex[index] = ref
			appendChild(b.list, ref)
		}
		if !empty {
			appendChild(ref, citation)
		}
		b.last = ref
	}
}
