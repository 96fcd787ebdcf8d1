package pipeline

import (
	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// blockElements end a run of inline content.
var blockElements = map[string]bool{
	"p": true, "sec": true, "title": true, "list": true, "list-item": true,
	"table-wrap": true, "table": true, "disp-quote": true, "preformat": true,
	"ref-list": true, "ref": true, "fig": true, "fn-group": true, "fn": true,
	"supplementary-material": true, "disp-formula": true, "sub-article": true,
	"body": true, "back": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// inlineElements may wrap block content in legacy markup.
var inlineElements = []string{"bold", "italic", "underline", "sup", "sub", "monospace", "font", "a"}

var styledElements = []string{"bold", "italic", "underline"}

func isBlock(n *xmlquery.Node) bool {
	return n != nil && n.Type == xmlquery.ElementNode && blockElements[n.Data]
}

// hasContentNodes reports whether nodes hold an element or non-blank text.
func hasContentNodes(nodes []*xmlquery.Node) bool {
	for _, n := range nodes {
		if n.Type == xmlquery.ElementNode || (isText(n) && !isBlankText(n)) {
			return true
		}
	}
	return false
}

// distributeInline pushes an inline element that wraps blocks down into
// them: <b>x<p>y</p></b> becomes <b>x</b><p><b>y</b></p>. A named anchor is
// kept as an empty target instead of being copied.
func distributeInline(n *xmlquery.Node) {
	if n.Parent == nil || !hasBlockChild(n) {
		return
	}
	if isElement(n, "a") {
		if name := attr(n, "name"); name != "" {
			insertBefore(n, newElement("a", "name", name))
		}
		unwrap(n)
		return
	}

	clone := func() *xmlquery.Node {
		c := newElement(n.Data)
		c.Attr = append(c.Attr, n.Attr...)
		return c
	}

	var run []*xmlquery.Node
	flush := func() {
		if hasContentNodes(run) {
			wrapNodes(run, clone())
		}
		run = nil
	}
	for _, c := range children(n) {
		if !isBlock(c) {
			run = append(run, c)
			continue
		}
		flush()
		if isElement(c, "p", "title", "h1", "h2", "h3", "h4", "h5", "h6") && hasContentNodes(children(c)) {
			inner := clone()
			moveChildren(c, inner)
			appendChild(c, inner)
		}
	}
	flush()
	unwrap(n)
}

func hasBlockChild(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

// reflow rebuilds the paragraphs of a block container: inline runs are
// split at paragraph boundaries and wrapped in p, and paragraphs holding
// boundaries or blocks are split.
func reflow(container *xmlquery.Node) {
	if container.Parent == nil {
		return
	}
	nodes := children(container)
	for _, n := range nodes {
		detach(n)
	}
	for _, n := range layout(nodes) {
		appendChild(container, n)
	}
}

// layout turns a sibling sequence into blocks. Two consecutive breaks or a
// fix-tag marker end a paragraph; a single trailing break is dropped; a
// styled element alone after the last break of a paragraph becomes a
// paragraph of its own.
func layout(nodes []*xmlquery.Node) []*xmlquery.Node {
	var out, seg []*xmlquery.Node
	var lastBreak *xmlquery.Node

	flush := func() {
		for _, s := range splitStyledTail(trimSegment(seg)) {
			if !hasContentNodes(s) {
				out = append(out, s...)
				continue
			}
			p := newElement("p")
			for _, n := range s {
				appendChild(p, n)
			}
			out = append(out, p)
		}
		seg, lastBreak = nil, nil
	}

	for _, n := range nodes {
		switch {
		case isElement(n, sanitize.FixTag):
			detach(n)
			flush()
		case isElement(n, "br"):
			if lastBreak == nil {
				lastBreak = n
				seg = append(seg, n)
				continue
			}
			seg = without(seg, lastBreak)
			detach(lastBreak)
			detach(n)
			flush()
		case isBlankText(n) || n.Type == xmlquery.CommentNode:
			seg = append(seg, n)
		case isElement(n, "p"):
			flush()
			id := attr(n, "id")
			blocks := layout(children(n))
			detach(n)
			if id != "" {
				for _, b := range blocks {
					if isElement(b, "p") {
						setAttr(b, "id", id)
						break
					}
				}
			}
			out = append(out, blocks...)
		case isBlock(n):
			flush()
			out = append(out, n)
		default:
			seg = append(seg, n)
			lastBreak = nil
		}
	}
	flush()
	return out
}

// trimSegment drops breaks and blank text at both ends of a segment.
func trimSegment(seg []*xmlquery.Node) []*xmlquery.Node {
	trim := func(n *xmlquery.Node) bool {
		if isBlankText(n) || isElement(n, "br") {
			detach(n)
			return true
		}
		return false
	}
	for len(seg) > 0 && trim(seg[0]) {
		seg = seg[1:]
	}
	for len(seg) > 0 && trim(seg[len(seg)-1]) {
		seg = seg[:len(seg)-1]
	}
	return seg
}

func splitStyledTail(seg []*xmlquery.Node) [][]*xmlquery.Node {
	last := -1
	for i, n := range seg {
		if isElement(n, "br") {
			last = i
		}
	}
	if last <= 0 {
		return [][]*xmlquery.Node{seg}
	}

	head, tail := seg[:last], seg[last+1:]
	var significant []*xmlquery.Node
	for _, n := range tail {
		if !isBlankText(n) {
			significant = append(significant, n)
		}
	}
	if len(significant) != 1 || !isElement(significant[0], styledElements...) || !hasContentNodes(head) {
		return [][]*xmlquery.Node{seg}
	}
	detach(seg[last])
	return [][]*xmlquery.Node{trimSegment(head), trimSegment(tail)}
}

func without(nodes []*xmlquery.Node, n *xmlquery.Node) []*xmlquery.Node {
	out := nodes[:0:0]
	for _, m := range nodes {
		if m != n {
			out = append(out, m)
		}
	}
	return out
}
