package pipeline

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/sanitize"
)

// droppable elements are removed when they hold nothing. Comments inside
// them are kept.
var droppable = map[string]bool{
	"p": true, "sec": true, "list": true, "list-item": true, "disp-quote": true,
	"bold": true, "italic": true, "underline": true, "sup": true, "sub": true,
	"monospace": true, "preformat": true, "caption": true, "title": true,
	"label": true, "fn-group": true, "ref-list": true, "mixed-citation": true,
	"email": true,
}

// cleanup removes what earlier stages left behind and settles the final
// section layout.
func cleanup(d *Document) error {
	for _, n := range descendants(d.Article) {
		stripDataAttrs(n)
		switch {
		case isElement(n, sanitize.FixTag):
			remove(n)
		case isElement(n, "a", "font", "span"):
			unwrap(n)
		case isElement(n, "br"):
			foldBreak(n)
		}
	}

	for _, scope := range d.Scopes() {
		hoistReferenceTitle(scope)
		if body := scope.Body(); body != nil {
			wrapStrayBlocks(body)
		}
	}

	for _, n := range reverse(descendants(d.Article)) {
		if droppable[n.Data] && n.Parent != nil && isEmptyElement(n) {
			unwrap(n)
		}
	}
	return nil
}

func stripDataAttrs(n *xmlquery.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Name.Space == "" && strings.HasPrefix(a.Name.Local, "data-") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// foldBreak keeps a line break where the vocabulary allows one and turns it
// into a space elsewhere.
func foldBreak(br *xmlquery.Node) {
	if hasAncestor(br, "title", "td", "th") {
		replaceNode(br, newElement("break"))
		return
	}
	replaceNode(br, newText(" "))
}

// hoistReferenceTitle moves a title-only section closing the body into the
// reference list as its title.
func hoistReferenceTitle(scope Scope) {
	body := scope.Body()
	back := firstChildElement(scope.Root, "back")
	if body == nil || back == nil {
		return
	}
	refList := firstChildElement(back, "ref-list")
	if refList == nil || firstChildElement(refList, "title") != nil {
		return
	}

	var last *xmlquery.Node
	for c := body.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == xmlquery.ElementNode {
			last = c
			break
		}
		if isText(c) && strings.TrimSpace(c.Data) != "" {
			return
		}
	}
	if !isElement(last, "sec") {
		return
	}
	els := elementChildren(last)
	if len(els) != 1 || !isElement(els[0], "title") || strings.TrimSpace(text(last)) != strings.TrimSpace(text(els[0])) {
		return
	}
	prependChild(refList, els[0])
	remove(last)
}

// wrapStrayBlocks puts content that follows the first section of the body
// outside any section into an untitled section.
func wrapStrayBlocks(body *xmlquery.Node) {
	seenSec := false
	var run []*xmlquery.Node
	flush := func() {
		if hasContentNodes(run) {
			wrapNodes(run, newElement("sec"))
		}
		run = nil
	}
	for _, c := range children(body) {
		switch {
		case isElement(c, "sec"):
			flush()
			seenSec = true
		case seenSec:
			run = append(run, c)
		}
	}
	flush()
}
