package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

var floats = []string{"fig", "table-wrap", "supplementary-material", "disp-formula"}

// inlineGraphics marks graphics that sit in running text as inline.
func inlineGraphics(d *Document) error {
	for _, g := range descendants(d.Article, "graphic") {
		if hasAncestor(g, floats...) {
			continue
		}
		if hasAncestor(g, "title", "label") {
			retag(g, "inline-graphic", true)
			continue
		}
		block := ancestor(g, "p", "td", "th", "list-item", "mixed-citation")
		if block != nil && strings.TrimSpace(text(block)) != "" {
			retag(g, "inline-graphic", true)
		}
	}
	return nil
}

var formulaIDRegex = regexp.MustCompile(`^e([0-9]+)(.*)$`)

// displayFormulas wraps a graphic standing alone in a paragraph in a
// display formula. Ids continue after the highest formula id in use.
func displayFormulas(d *Document) error {
	for _, scope := range d.Scopes() {
		next := maxFormulaNumber(scope) + 1
		for _, p := range scope.Elements("p") {
			if hasAncestor(p, "fig", "table-wrap") {
				continue
			}
			g := loneGraphic(p)
			if g == nil {
				continue
			}
			f := newElement("disp-formula", "id", "e"+strconv.Itoa(next)+scope.Suffix)
			next++
			insertBefore(g, f)
			appendChild(f, g)
		}
	}
	return nil
}

func maxFormulaNumber(scope Scope) int {
	highest := 0
	for _, n := range scope.Elements() {
		m := formulaIDRegex.FindStringSubmatch(attr(n, "id"))
		if m == nil || m[2] != scope.Suffix {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > highest {
			highest = v
		}
	}
	return highest
}

// loneGraphic returns the graphic that is the only content of p.
func loneGraphic(p *xmlquery.Node) *xmlquery.Node {
	var g *xmlquery.Node
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isBlankText(c), c.Type == xmlquery.CommentNode:
			continue
		case isElement(c, "graphic") && g == nil && !hasText(c):
			g = c
		default:
			return nil
		}
	}
	return g
}
