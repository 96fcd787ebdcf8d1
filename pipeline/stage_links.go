package pipeline

import (
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lehigh-university-libraries/legacyjats/asset"
)

var (
	schemeRegex   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)
	hostnameRegex = regexp.MustCompile(`^(?i)(?:www\.)?[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}(?::[0-9]+)?(?:/|$)`)
	emailRegex    = regexp.MustCompile(`^[^@\s/]+@[^@\s/]+\.[^@\s/]+$`)
)

const embedUse = "embed"

func hasScheme(href string) bool {
	return schemeRegex.MatchString(href)
}

// isLocalPage reports whether href points at another page of the same
// journal site.
func isLocalPage(href, acronym string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if _, ok := asset.Lookup(href); ok {
		return false
	}
	if !hasScheme(href) {
		switch asset.Extension(href) {
		case "htm", "html":
			return true
		}
	}
	if acronym == "" {
		return false
	}
	return strings.Contains(strings.ToLower(href), "/"+strings.ToLower(acronym)+"/")
}

// markLocalLinks flags links to other pages of the journal so they can be
// embedded later.
func markLocalLinks(d *Document) error {
	for _, a := range descendants(d.Article, "a") {
		href := strings.TrimSpace(attr(a, "href"))
		if isLocalPage(href, d.Source.Acronym) {
			setAttr(a, "specific-use", embedUse)
		}
	}
	return nil
}

// isLocalAsset reports whether href is a file shipped with the document.
func isLocalAsset(href, acronym string) (asset.Kind, bool) {
	kind, ok := asset.Lookup(href)
	if !ok {
		return kind, false
	}
	if !hasScheme(href) {
		return kind, true
	}
	return kind, acronym != "" && strings.Contains(strings.ToLower(href), "/"+strings.ToLower(acronym)+"/")
}

// classifyAnchors turns each HTML anchor into an email, an internal xref,
// an asset xref or an external link. Anchors that only name a target are
// left for xref resolution.
func classifyAnchors(d *Document) error {
	for _, a := range descendants(d.Article, "a") {
		classifyAnchor(d, a)
	}
	return nil
}

func classifyAnchor(d *Document, a *xmlquery.Node) {
	href := strings.TrimSpace(attr(a, "href"))
	lower := strings.ToLower(href)

	if href == "" {
		if attr(a, "name") == "" && attr(a, "id") == "" {
			unwrap(a)
		}
		return
	}
	keepTarget(a)

	switch {
	case strings.HasPrefix(lower, "mailto:") || (!hasScheme(href) && strings.Contains(href, "@")):
		addr := href
		if strings.HasPrefix(lower, "mailto:") {
			addr = strings.TrimSpace(href[len("mailto:"):])
		}
		if isEmailAddress(text(a)) {
			retag(a, "email", false)
			return
		}
		el := retag(a, "ext-link", false)
		setAttr(el, "ext-link-type", "email")
		setAttr(el, "xlink:href", addr)

	case strings.HasPrefix(href, "#"):
		frag := strings.TrimSpace(href[1:])
		if frag == "" {
			unwrap(a)
			return
		}
		el := retag(a, "xref", false)
		setAttr(el, "rid", frag)

	default:
		if kind, ok := isLocalAsset(href, d.Source.Acronym); ok {
			el := retag(a, "xref", false)
			setAttr(el, "data-path", href)
			setAttr(el, "data-asset-type", kind.AssetType)
			setAttr(el, "data-mimetype", kind.MimeType)
			setAttr(el, "data-mime-subtype", kind.MimeSubtype)
			return
		}

		embed := attr(a, "specific-use") == embedUse
		el := retag(a, "ext-link", false)
		setAttr(el, "ext-link-type", "uri")
		if embed {
			setAttr(el, "specific-use", embedUse)
		}
		if !embed && !hasScheme(href) && hostnameRegex.MatchString(href) {
			href = "http://" + href
		}
		setAttr(el, "xlink:href", href)
	}
}

// keepTarget leaves an empty named anchor in place of the name an anchor
// with a link carried, so links pointing at it still resolve.
func keepTarget(a *xmlquery.Node) {
	name := attr(a, "name")
	if name == "" {
		name = attr(a, "id")
	}
	if name == "" {
		return
	}
	insertBefore(a, newElement("a", "name", name))
}

func isEmailAddress(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}
