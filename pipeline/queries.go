package pipeline

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	subArticlesExpr = xpath.MustCompile("sub-article")

	// bareSupsExpr selects superscripts holding only text that no link
	// covers yet.
	bareSupsExpr = xpath.MustCompile(".//sup[not(*)][not(ancestor::xref)]")

	uncertainExpr = xpath.MustCompile("//comment()[starts-with(normalize-space(.), 'uncertain:')]")
)

const uncertainPrefix = "uncertain:"

// Select evaluates an XPath expression against the final tree.
func (r *Result) Select(expr string) ([]*xmlquery.Node, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	doc, err := xmlquery.Parse(strings.NewReader(r.Final()))
	if err != nil {
		return nil, fmt.Errorf("parse final tree: %w", err)
	}
	return xmlquery.QuerySelectorAll(doc, e), nil
}

// Uncertain returns the messages of the review comments left in the final
// tree, in document order.
func (r *Result) Uncertain() ([]string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(r.Final()))
	if err != nil {
		return nil, fmt.Errorf("parse final tree: %w", err)
	}
	var msgs []string
	for _, c := range xmlquery.QuerySelectorAll(doc, uncertainExpr) {
		msg := strings.TrimPrefix(strings.TrimSpace(c.Data), uncertainPrefix)
		msgs = append(msgs, strings.TrimSpace(msg))
	}
	return msgs, nil
}
