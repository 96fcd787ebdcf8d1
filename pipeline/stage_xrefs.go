package pipeline

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/classify"
)

// Attributes carried between stages. They are removed at cleanup.
const (
	attrPlaceholder = "data-placeholder"
	attrLabel       = "data-label"
	attrPath        = "data-path"
	attrAssetType   = "data-asset-type"
	attrMimeType    = "data-mimetype"
	attrMimeSubtype = "data-mime-subtype"
)

// resolveXrefs types the internal links found by anchor classification and
// gives their targets stable ids.
func resolveXrefs(d *Document) error {
	ids := newIDAllocator(d.Article)
	for _, scope := range d.Scopes() {
		resolveScopeXrefs(scope, ids)
	}
	return nil
}

func resolveScopeXrefs(scope Scope, ids *idAllocator) {
	targets := map[string]*xmlquery.Node{}
	var withID []*xmlquery.Node
	for _, n := range scope.Elements() {
		if isElement(n, "a") {
			if name := strings.TrimSpace(attr(n, "name")); name != "" {
				if _, ok := targets[name]; !ok {
					targets[name] = n
				}
			}
		}
		if attr(n, "id") != "" && !isElement(n, "xref") {
			withID = append(withID, n)
		}
	}
	for _, n := range withID {
		if _, ok := targets[attr(n, "id")]; !ok {
			targets[attr(n, "id")] = n
		}
	}

	var order []string
	groups := map[string][]*xmlquery.Node{}
	for _, x := range scope.Elements("xref") {
		if attr(x, "ref-type") != "" || attr(x, attrPath) != "" {
			continue
		}
		rid := attr(x, "rid")
		if _, ok := groups[rid]; !ok {
			order = append(order, rid)
		}
		groups[rid] = append(groups[rid], x)
	}

	for _, rid := range order {
		xs := groups[rid]
		cls := classifyGroup(xs, rid)
		target := targets[rid]

		id := ""
		if cls.Classified() && target != nil {
			id = placeTarget(scope, ids, target, cls)
		}
		if id == "" {
			for _, x := range xs {
				insertBefore(x, uncertain(fmt.Sprintf("unresolved link to #%s", rid)))
				unwrap(x)
			}
			continue
		}

		for _, x := range xs {
			setAttr(x, "ref-type", cls.RefType)
			setAttr(x, "rid", id)
			if own := classify.Xref(text(x), rid); own.Inconsistent() {
				insertAfter(x, uncertain(fmt.Sprintf("link text reads as %s but target %s as %s", own.TextRefType, rid, own.RefType)))
			}
		}
	}
}

// classifyGroup classifies the links sharing a target with the first text
// that classifies.
func classifyGroup(xs []*xmlquery.Node, rid string) classify.XrefResult {
	for _, x := range xs {
		if r := classify.Xref(text(x), rid); r.Classified() {
			return r
		}
	}
	return classify.Xref("", rid)
}

// placeTarget gives the element a link points at its canonical id and
// returns it. Figures, tables and footnotes get a placeholder that assembly
// completes later.
func placeTarget(scope Scope, ids *idAllocator, target *xmlquery.Node, cls classify.XrefResult) string {
	prefix := classify.IDPrefixes[cls.RefType]

	switch cls.RefType {
	case classify.RefFig, classify.RefTable, classify.RefFn:
		id := ids.numbered(prefix, cls.Number, scope.Suffix)
		ph := newElement(cls.ElementName, "id", id, attrPlaceholder, cls.RefType)
		switch {
		case cls.Label != "":
			setAttr(ph, attrLabel, cls.Label)
		case cls.RefType == classify.RefFn && cls.Number != "":
			setAttr(ph, attrLabel, cls.Number)
		}
		insertBefore(target, ph)
		releaseTarget(target)
		return id

	case classify.RefBibr:
		if isElement(target, "ref") {
			return attr(target, "id")
		}
		if ref := ancestor(target, "ref"); ref != nil && attr(ref, "id") != "" {
			releaseTarget(target)
			return attr(ref, "id")
		}
		if cls.Number != "" {
			for _, ref := range scope.Elements("ref") {
				if attr(ref, "id") == "B"+cls.Number {
					releaseTarget(target)
					return attr(ref, "id")
				}
			}
		}

	case classify.RefSec:
		if sec := enclosingOrNextSection(scope, target); sec != nil {
			releaseTarget(target)
			if id := attr(sec, "id"); id != "" {
				return id
			}
			id := ids.numbered(prefix, cls.Number, scope.Suffix)
			setAttr(sec, "id", id)
			return id
		}
	}

	block := target
	if isElement(target, "a") || !isBlock(target) {
		block = ancestor(target, "p", "sec", "list-item", "disp-quote", "fn", "ref", "table-wrap", "fig")
		if block == nil || !scope.Contains(block) {
			block = nextElement(target)
		}
	}
	if block == nil {
		return ""
	}
	releaseTarget(target)
	if id := attr(block, "id"); id != "" {
		return id
	}
	id := ids.numbered(prefix, cls.Number, scope.Suffix)
	setAttr(block, "id", id)
	return id
}

// releaseTarget removes the legacy anchor once its id lives elsewhere.
func releaseTarget(target *xmlquery.Node) {
	if target.Parent == nil {
		return
	}
	if isElement(target, "a") {
		unwrap(target)
		return
	}
	removeAttr(target, "id")
}

func enclosingOrNextSection(scope Scope, n *xmlquery.Node) *xmlquery.Node {
	if sec := ancestor(n, "sec"); sec != nil && scope.Contains(sec) {
		return sec
	}
	for p := n; p != nil && p != scope.Root; p = p.Parent {
		for s := p.NextSibling; s != nil; s = s.NextSibling {
			if isElement(s, "sec") {
				return s
			}
		}
	}
	return nil
}
