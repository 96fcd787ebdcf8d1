package pipeline

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/helpers"
)

type node = xmlquery.Node

// newElement builds a detached element. attrs are key/value pairs.
func newElement(name string, attrs ...string) *node {
	n := &node{Type: xmlquery.ElementNode, Data: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.SetAttr(attrs[i], attrs[i+1])
	}
	return n
}

func newText(s string) *node {
	return &node{Type: xmlquery.TextNode, Data: s}
}

func newComment(s string) *node {
	return &node{Type: xmlquery.CommentNode, Data: " " + helpers.CommentText(s, 200) + " "}
}

// uncertain builds the comment that flags structure for human review.
func uncertain(format string) *node {
	return newComment(uncertainPrefix + " " + format)
}

func isElement(n *node, names ...string) bool {
	if n == nil || n.Type != xmlquery.ElementNode {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

func isText(n *node) bool {
	return n != nil && (n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode)
}

// isBlankText reports whether n is a text node holding only whitespace.
func isBlankText(n *node) bool {
	return isText(n) && strings.TrimSpace(n.Data) == ""
}

// children snapshots the child list so callers may mutate the tree while
// iterating.
func children(n *node) []*node {
	var out []*node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func elementChildren(n *node, names ...string) []*node {
	var out []*node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, names...) {
			out = append(out, c)
		}
	}
	return out
}

func firstChildElement(n *node, names ...string) *node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, names...) {
			return c
		}
	}
	return nil
}

// descendants returns the elements below n in document order.
func descendants(n *node, names ...string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(p *node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			if isElement(c, names...) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func ancestor(n *node, names ...string) *node {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, names...) {
			return p
		}
	}
	return nil
}

func hasAncestor(n *node, names ...string) bool {
	return ancestor(n, names...) != nil
}

func text(n *node) string {
	return n.InnerText()
}

func hasText(n *node) bool {
	return strings.TrimSpace(n.InnerText()) != ""
}

func detach(n *node) {
	if n.Parent != nil {
		xmlquery.RemoveFromTree(n)
	}
}

func appendChild(parent, n *node) {
	detach(n)
	xmlquery.AddChild(parent, n)
}

func prependChild(parent, n *node) {
	detach(n)
	if parent.FirstChild == nil {
		xmlquery.AddChild(parent, n)
		return
	}
	first := parent.FirstChild
	n.Parent = parent
	n.PrevSibling = nil
	n.NextSibling = first
	first.PrevSibling = n
	parent.FirstChild = n
}

func insertAfter(ref, n *node) {
	detach(n)
	xmlquery.AddImmediateSibling(ref, n)
}

func insertBefore(ref, n *node) {
	if ref.PrevSibling != nil {
		insertAfter(ref.PrevSibling, n)
		return
	}
	prependChild(ref.Parent, n)
}

func replaceNode(old, n *node) {
	insertBefore(old, n)
	xmlquery.RemoveFromTree(old)
}

func remove(n *node) {
	detach(n)
}

func moveChildren(from, to *node) {
	for _, c := range children(from) {
		appendChild(to, c)
	}
}

// unwrap replaces n with its children.
func unwrap(n *node) {
	for _, c := range children(n) {
		insertBefore(n, c)
	}
	remove(n)
}

// retag builds a new element named name, moves n's children into it and
// replaces n. Attributes are copied when keepAttrs is set.
func retag(n *node, name string, keepAttrs bool) *node {
	m := newElement(name)
	if keepAttrs {
		m.Attr = append(m.Attr, n.Attr...)
	}
	moveChildren(n, m)
	replaceNode(n, m)
	return m
}

// wrapNodes moves nodes (siblings, in order) into wrapper, which takes the
// place of the first one.
func wrapNodes(nodes []*node, wrapper *node) *node {
	if len(nodes) == 0 {
		return wrapper
	}
	insertBefore(nodes[0], wrapper)
	for _, n := range nodes {
		appendChild(wrapper, n)
	}
	return wrapper
}

func prevElement(n *node) *node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == xmlquery.ElementNode {
			return s
		}
		if isText(s) && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

func nextElement(n *node) *node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == xmlquery.ElementNode {
			return s
		}
		if isText(s) && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

func attr(n *node, key string) string {
	return n.SelectAttr(key)
}

func setAttr(n *node, key, value string) {
	n.SetAttr(key, value)
}

func removeAttr(n *node, key string) {
	n.RemoveAttr(key)
}

// isEmptyElement reports whether n has no element children and no text.
func isEmptyElement(n *node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == xmlquery.ElementNode:
			return false
		case isText(c) && strings.TrimSpace(c.Data) != "":
			return false
		}
	}
	return true
}
