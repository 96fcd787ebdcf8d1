// Package sanitize repairs malformed legacy HTML fragments so they parse as
// XML.
//
// Repairs are ordered text transforms (see Rules). Sanitize is idempotent:
// running it on its own output returns the same bytes. When a fragment still
// cannot be parsed, Tree falls back to its plain text.
package sanitize

import (
	"html"
	"log/slog"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/helpers"
)

// DefaultThreshold is the similarity above which a repair is accepted.
const DefaultThreshold = 0.7

// Options configures the sanitizer.
type Options struct {
	// BalanceTags are the structural elements whose unmatched tags become
	// fix-tag markers. Defaults to "p".
	BalanceTags []string

	// Threshold is the minimum similarity between original and repaired
	// text for the repair to be kept.
	Threshold float64
}

// DefaultOptions returns the default sanitizer configuration.
func DefaultOptions() *Options {
	return &Options{
		BalanceTags: []string{"p"},
		Threshold:   DefaultThreshold,
	}
}

func (o *Options) orDefault() *Options {
	if o == nil {
		return DefaultOptions()
	}
	return o
}

func (o *Options) balanceSet() map[string]bool {
	o = o.orDefault()
	set := make(map[string]bool, len(o.BalanceTags))
	for _, t := range o.BalanceTags {
		set[strings.ToLower(t)] = true
	}
	return set
}

func (o *Options) threshold() float64 {
	o = o.orDefault()
	if o.Threshold <= 0 || o.Threshold > 1 {
		return DefaultThreshold
	}
	return o.Threshold
}

// Sanitize applies every repair rule in order.
func Sanitize(markup string, opts *Options) string {
	opts = opts.orDefault()
	for _, r := range rules {
		markup = r.Apply(markup, opts)
	}
	return markup
}

// Repair sanitizes markup and checks the result against the original text.
// When the repair changed too much of the text, the escaped plain text of
// the original is returned instead and degraded is true.
func Repair(markup string, opts *Options) (repaired string, degraded bool) {
	sanitized := Sanitize(markup, opts)
	if _, ok := Choose(markup, sanitized, opts.threshold()); ok {
		return sanitized, false
	}
	return PlainRoot(markup), true
}

// PlainRoot returns the plain text of markup, escaped and wrapped in the
// root element.
func PlainRoot(markup string) string {
	text := html.EscapeString(helpers.PlainText(markup))
	return "<" + RootTag + ">" + text + "</" + RootTag + ">"
}

// Tree repairs markup and parses it. It never fails: markup that still does
// not parse is reduced to plain text and degraded is true. The returned
// node is the root element.
func Tree(markup string, opts *Options) (root *xmlquery.Node, degraded bool) {
	repaired, degraded := Repair(markup, opts)
	doc, err := xmlquery.Parse(strings.NewReader(repaired))
	if err == nil {
		if root := RootElement(doc); root != nil {
			return root, degraded
		}
	}

	slog.Debug("markup does not parse, keeping plain text", "err", err, "markup", helpers.TruncateText(markup, 120))
	doc, err = xmlquery.Parse(strings.NewReader(PlainRoot(markup)))
	if err != nil {
		doc = &xmlquery.Node{Type: xmlquery.DocumentNode}
		xmlquery.AddChild(doc, &xmlquery.Node{Type: xmlquery.ElementNode, Data: RootTag})
	}
	return RootElement(doc), true
}

// RootElement returns the first element child of a document node.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == xmlquery.ElementNode {
		return doc
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
