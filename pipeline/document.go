package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/xmlquery"
)

// XLinkNamespace is declared on the article so graphic and link targets can
// use xlink:href.
const XLinkNamespace = "http://www.w3.org/1999/xlink"

var errNoArticle = errors.New("no article element")

// Document is the tree a stage works on.
type Document struct {
	Article *xmlquery.Node
	Source  *Source
	Options *Options
	Log     *slog.Logger
}

func parseDocument(xml string, src *Source, opts *Options, log *slog.Logger) (*Document, error) {
	root, err := xmlquery.Parse(strings.NewReader(xml))
	if err != nil {
		return nil, fmt.Errorf("parse previous tree: %w", err)
	}
	article := firstChildElement(root, "article")
	if article == nil {
		return nil, errNoArticle
	}
	return &Document{Article: article, Source: src, Options: opts, Log: log}, nil
}

// String serializes the article.
func (d *Document) String() string {
	return d.Article.OutputXML(true)
}

// Scope is a part of the document with its own ids and numbering: the main
// article or one translated sub-article.
type Scope struct {
	Root *xmlquery.Node

	// Suffix is appended to ids generated inside the scope so they stay
	// unique across translations ("-s1").
	Suffix string

	Lang string
}

// Body returns the body of the scope, or nil.
func (s Scope) Body() *xmlquery.Node {
	return firstChildElement(s.Root, "body")
}

// Back returns the back matter of the scope, creating it when missing.
func (s Scope) Back() *xmlquery.Node {
	if back := firstChildElement(s.Root, "back"); back != nil {
		return back
	}
	back := newElement("back")
	if body := s.Body(); body != nil {
		insertAfter(body, back)
	} else {
		prependChild(s.Root, back)
	}
	return back
}

// Contains reports whether n belongs to this scope and not to a nested
// sub-article.
func (s Scope) Contains(n *xmlquery.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if isElement(p, "article", "sub-article") {
			return p == s.Root
		}
	}
	return false
}

// Elements returns the elements named names inside the scope, in document
// order.
func (s Scope) Elements(names ...string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for _, n := range descendants(s.Root, names...) {
		if s.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// ID appends the scope suffix to id.
func (s Scope) ID(id string) string {
	return id + s.Suffix
}

// Scopes returns the main article followed by each sub-article.
func (d *Document) Scopes() []Scope {
	scopes := []Scope{{Root: d.Article, Lang: attr(d.Article, "xml:lang")}}
	for _, sub := range xmlquery.QuerySelectorAll(d.Article, subArticlesExpr) {
		scopes = append(scopes, Scope{
			Root:   sub,
			Suffix: "-" + attr(sub, "id"),
			Lang:   attr(sub, "xml:lang"),
		})
	}
	return scopes
}
