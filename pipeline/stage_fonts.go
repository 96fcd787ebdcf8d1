package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

const baseFontSize = 3

// cssFontSizes are the pixel sizes of the legacy font scale 1 to 7.
var cssFontSizes = []float64{10, 13, 16, 18, 24, 32, 48}

var cssSizeRegex = regexp.MustCompile(`(?i)font-size\s*:\s*([0-9]+(?:\.[0-9]+)?)\s*(pt|px|em)\b`)

// fontSize returns the size of a font element on the legacy 1 to 7 scale.
func fontSize(f *xmlquery.Node) int {
	if s := strings.TrimSpace(attr(f, "size")); s != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(s, "+")); err == nil {
			if s[0] == '+' || s[0] == '-' {
				return baseFontSize + n
			}
			return n
		}
	}
	m := cssSizeRegex.FindStringSubmatch(attr(f, "style"))
	if m == nil {
		return baseFontSize
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return baseFontSize
	}
	px := v
	switch strings.ToLower(m[2]) {
	case "pt":
		px = v * 4 / 3
	case "em":
		px = v * 16
	}
	size := 1
	for i, limit := range cssFontSizes {
		if px >= limit {
			size = i + 1
		}
	}
	return size
}

// headingFont returns the font that makes up the whole paragraph, looking
// through single styled wrappers.
func headingFont(p *xmlquery.Node) *xmlquery.Node {
	n := p
	for {
		var only *xmlquery.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case isBlankText(c), c.Type == xmlquery.CommentNode:
				continue
			case only != nil:
				return nil
			}
			only = c
		}
		switch {
		case isElement(only, "font"):
			return only
		case isElement(only, styledElements...):
			n = only
		default:
			return nil
		}
	}
}

func isFontHeading(p *xmlquery.Node, threshold int) bool {
	if !isElement(p, "p") || !isElement(p.Parent, "body", "back", "sec") {
		return false
	}
	f := headingFont(p)
	return f != nil && hasText(f) && fontSize(f) >= threshold
}

// promoteFontHeadings turns paragraphs written entirely in an oversized
// font into section titles. The section takes the following siblings up to
// the next section or heading.
func promoteFontHeadings(d *Document) error {
	threshold := d.Options.FontHeadingSize
	for _, p := range descendants(d.Article, "p") {
		if p.Parent == nil || !isFontHeading(p, threshold) {
			continue
		}
		sec := newSection(p)
		replaceNode(p, sec)
		for s := sec.NextSibling; s != nil; {
			if isElement(s, "sec") || isFontHeading(s, threshold) {
				break
			}
			next := s.NextSibling
			appendChild(sec, s)
			s = next
		}
	}
	for _, f := range descendants(d.Article, "font") {
		unwrap(f)
	}
	return nil
}
