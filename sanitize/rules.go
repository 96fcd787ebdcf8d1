package sanitize

import (
	"html"
	"regexp"
	"slices"
	"strings"
)

// Rule is one text-level repair. Rules run in order and each assumes the
// previous ones already ran.
type Rule struct {
	Name  string
	Apply func(s string, opts *Options) string
}

var rules = []Rule{
	{Name: "strip-blocks", Apply: stripBlocks},
	{Name: "repair-characters", Apply: repairCharacters},
	{Name: "normalize-tags", Apply: normalizeTags},
	{Name: "style-tags", Apply: styleTags},
	{Name: "void-elements", Apply: voidElements},
	{Name: "balance", Apply: balance},
	{Name: "strip-namespaces", Apply: stripNamespaces},
	{Name: "wrap-root", Apply: wrapRoot},
}

// Rules returns the ordered repair rules.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

var (
	conditionalCommentRegex = regexp.MustCompile(`(?is)<!--\[if.*?<!\[endif\]\s*-->`)
	downlevelRevealedRegex  = regexp.MustCompile(`(?i)<!\[(?:if[^\]]*|endif)\]>`)
	commentRegex            = regexp.MustCompile(`(?s)<!--.*?-->`)
	cdataRegex              = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	doctypeRegex            = regexp.MustCompile(`(?i)<!doctype[^>]*>`)
	processingRegex         = regexp.MustCompile(`<\?[^>]*>`)
	documentTagRegex        = regexp.MustCompile(`(?i)</?(?:html|body)\b[^>]*>`)

	metadataBlockRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<xml\b[^>]*>.*?</xml\s*>`),
		regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`),
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`),
		regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head\s*>`),
	}
)

// stripBlocks removes conditional comments, metadata blocks that may span
// many lines, doctype and processing instructions, and unwraps html/body.
func stripBlocks(s string, _ *Options) string {
	s = conditionalCommentRegex.ReplaceAllString(s, "")
	s = downlevelRevealedRegex.ReplaceAllString(s, "")
	s = commentRegex.ReplaceAllString(s, "")
	s = cdataRegex.ReplaceAllStringFunc(s, func(m string) string {
		return html.EscapeString(cdataRegex.FindStringSubmatch(m)[1])
	})
	for _, re := range metadataBlockRegexes {
		s = re.ReplaceAllString(s, "")
	}
	s = doctypeRegex.ReplaceAllString(s, "")
	s = processingRegex.ReplaceAllString(s, "")
	return documentTagRegex.ReplaceAllString(s, "")
}

var (
	entityRegex    = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
	xmlEntityRegex = regexp.MustCompile(`^&(?:#[0-9]+|#[xX][0-9a-fA-F]+|lt|gt|amp|quot|apos);`)

	predefinedEntities = map[string]bool{"lt": true, "gt": true, "amp": true, "quot": true, "apos": true}

	// markupEscapes keeps decoded characters from turning into markup.
	markupEscapes = map[string]string{
		"<": "&lt;", ">": "&gt;", "&": "&amp;", `"`: "&quot;", "'": "&apos;",
	}
)

// repairCharacters drops characters XML cannot carry, decodes named HTML
// entities and escapes ampersands and angle brackets that do not start
// markup.
func repairCharacters(s string, _ *Options) string {
	s = ValidText(s)
	s = entityRegex.ReplaceAllStringFunc(s, decodeEntity)
	s = escapeAmpersands(s)
	return escapeStrayLess(s)
}

// ValidText drops the bytes and characters XML cannot carry.
func ValidText(s string) string {
	return strings.Map(dropIllegal, strings.ToValidUTF8(s, ""))
}

func dropIllegal(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r >= 0x20 && r <= 0xD7FF:
		return r
	case r >= 0xE000 && r <= 0xFFFD:
		return r
	case r >= 0x10000 && r <= 0x10FFFF:
		return r
	}
	return -1
}

func decodeEntity(m string) string {
	if predefinedEntities[m[1:len(m)-1]] {
		return m
	}
	decoded := html.UnescapeString(m)
	if decoded == m {
		return m
	}
	if esc, ok := markupEscapes[decoded]; ok {
		return esc
	}
	return strings.Map(dropIllegal, decoded)
}

func escapeAmpersands(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && !xmlEntityRegex.MatchString(s[i:]) {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func escapeStrayLess(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if _, n, ok := parseTag(s[i:]); ok {
			b.WriteString(s[i : i+n])
			i += n
			continue
		}
		b.WriteString("&lt;")
		i++
	}
	return b.String()
}

var xmlNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_.\-]*(?::[a-z_][a-z0-9_.\-]*)?$`)

// normalizeTags lowercases names, quotes values, and drops duplicate,
// value-less and xmlns attributes.
func normalizeTags(s string, _ *Options) string {
	return rewriteTags(s, func(t *tag) string {
		t.name = strings.ToLower(t.name)
		if t.closing {
			t.attrs = nil
			t.selfClosing = false
			return t.String()
		}

		seen := make(map[string]bool, len(t.attrs))
		kept := t.attrs[:0]
		for _, a := range t.attrs {
			a.name = strings.ToLower(a.name)
			if !a.hasValue || seen[a.name] || !xmlNameRegex.MatchString(a.name) ||
				a.name == "xmlns" || strings.HasPrefix(a.name, "xmlns:") {
				continue
			}
			seen[a.name] = true
			kept = append(kept, a)
		}
		t.attrs = kept
		return t.String()
	})
}

// StyleTags maps the legacy inline style elements to the style value they
// carry on the neutral span.
var StyleTags = map[string]string{
	"b":      "bold",
	"strong": "bold",
	"i":      "italic",
	"em":     "italic",
	"u":      "underline",
	"sup":    "sup",
	"sub":    "sub",
}

func styleTags(s string, _ *Options) string {
	return rewriteTags(s, func(t *tag) string {
		style, ok := StyleTags[t.name]
		if !ok {
			return t.String()
		}
		switch {
		case t.selfClosing:
			return ""
		case t.closing:
			return "</span>"
		}
		return (&tag{name: "span", attrs: []attr{{name: "style", value: style, hasValue: true}}}).String()
	})
}

var voidTags = map[string]bool{
	"area": true, "base": true, "basefont": true, "br": true, "col": true,
	"embed": true, "frame": true, "hr": true, "img": true, "input": true,
	"isindex": true, "keygen": true, "link": true, "meta": true, "param": true,
	"source": true, "spacer": true, "track": true, "wbr": true,
}

// voidElements self-closes void elements and drops their end tags.
func voidElements(s string, _ *Options) string {
	return rewriteTags(s, func(t *tag) string {
		if !voidTags[t.name] {
			return t.String()
		}
		if t.closing {
			return ""
		}
		t.selfClosing = true
		return t.String()
	})
}

// FixTag is the self-closing marker left where a structural tag could not
// be matched.
const FixTag = "fix-tag"

func fixTag(name, flag string) string {
	return (&tag{name: FixTag, selfClosing: true, attrs: []attr{
		{name: "name", value: name, hasValue: true},
		{name: "flag", value: flag, hasValue: true},
	}}).String()
}

// inlineTags are reopened after an enclosing element closes over them.
var inlineTags = map[string]bool{
	"span": true, "a": true, "font": true, "small": true, "big": true,
	"tt": true, "code": true, "strike": true, "s": true, "abbr": true,
	"acronym": true, "cite": true, "q": true, "label": true,
}

// metadataTags are dropped when their block was not terminated, keeping
// whatever text followed the open tag.
var metadataTags = map[string]bool{"xml": true, "style": true, "script": true, "head": true}

// implicitSiblings lists, for elements whose end tag HTML lets authors
// omit, the open elements that a new one closes and the containers that
// stop the search.
var implicitSiblings = map[string]struct {
	closes, stops []string
}{
	"li": {closes: []string{"li"}, stops: []string{"ul", "ol", "menu", "dir"}},
	"dt": {closes: []string{"dt", "dd"}, stops: []string{"dl"}},
	"dd": {closes: []string{"dt", "dd"}, stops: []string{"dl"}},
	"td": {closes: []string{"td", "th"}, stops: []string{"tr", "table"}},
	"th": {closes: []string{"td", "th"}, stops: []string{"tr", "table"}},
	"tr": {closes: []string{"tr"}, stops: []string{"table", "thead", "tbody", "tfoot"}},
}

type openElement struct {
	tag *tag
	out int
}

// balance makes the fragment well nested. Unmatched structural tags from
// the allow-list become fix-tag markers and unterminated metadata tags are
// dropped. Other elements are closed where an enclosing element closes
// (inline ones are reopened after it) and their unmatched end tags are
// dropped. A list item, definition or table cell closes an open sibling of
// its kind.
func balance(s string, opts *Options) string {
	allow := opts.balanceSet()
	var out []string
	var stack []openElement

	push := func(t *tag) {
		stack = append(stack, openElement{tag: t, out: len(out)})
		out = append(out, t.String())
	}

	// unwind closes every element above pos and returns the inline ones
	// to reopen.
	unwind := func(pos int) []*tag {
		var reopen []*tag
		for i := len(stack) - 1; i > pos; i-- {
			e := stack[i]
			switch {
			case allow[e.tag.name]:
				out[e.out] = fixTag(e.tag.name, "open")
			case metadataTags[e.tag.name]:
				out[e.out] = ""
			default:
				out = append(out, "</"+e.tag.name+">")
				if inlineTags[e.tag.name] {
					reopen = append(reopen, e.tag)
				}
			}
		}
		return reopen
	}

	for _, tok := range tokenize(s) {
		t := tok.tag
		switch {
		case t == nil:
			out = append(out, tok.text)
		case t.selfClosing:
			out = append(out, t.String())
		case !t.closing:
			if pos := openSibling(stack, t.name); pos >= 0 {
				unwind(pos)
				out = append(out, "</"+stack[pos].tag.name+">")
				stack = stack[:pos]
			}
			push(t)
		default:
			pos := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].tag.name == t.name {
					pos = i
					break
				}
			}
			if pos < 0 {
				if allow[t.name] {
					out = append(out, fixTag(t.name, "close"))
				}
				continue
			}

			reopen := unwind(pos)
			out = append(out, t.String())
			stack = stack[:pos]
			for i := len(reopen) - 1; i >= 0; i-- {
				push(reopen[i])
			}
		}
	}

	unwind(-1)
	return strings.Join(out, "")
}

// openSibling returns the stack position of an open element that name
// implicitly closes, or -1.
func openSibling(stack []openElement, name string) int {
	rule, ok := implicitSiblings[name]
	if !ok {
		return -1
	}
	for i := len(stack) - 1; i >= 0; i-- {
		open := stack[i].tag.name
		if slices.Contains(rule.closes, open) {
			return i
		}
		if slices.Contains(rule.stops, open) {
			return -1
		}
	}
	return -1
}

// keptPrefixes are the attribute prefixes the output vocabulary uses.
var keptPrefixes = map[string]bool{"xml": true, "xlink": true}

// stripNamespaces unwraps prefixed elements and drops prefixed attributes.
// Attribute values are consumed whole by the lexer, so a colon inside a
// URL never looks like a prefix.
func stripNamespaces(s string, _ *Options) string {
	if !strings.Contains(s, ":") {
		return s
	}
	return rewriteTags(s, func(t *tag) string {
		if strings.Contains(t.name, ":") {
			return ""
		}
		kept := t.attrs[:0]
		for _, a := range t.attrs {
			if prefix, _, ok := strings.Cut(a.name, ":"); ok && !keptPrefixes[prefix] {
				continue
			}
			kept = append(kept, a)
		}
		t.attrs = kept
		return t.String()
	})
}

// RootTag wraps every sanitized fragment.
const RootTag = "root"

func wrapRoot(s string, _ *Options) string {
	if hasSingleRoot(s) {
		return s
	}
	return "<" + RootTag + ">" + s + "</" + RootTag + ">"
}

// hasSingleRoot reports whether s is exactly one root element.
func hasSingleRoot(s string) bool {
	open, closing := "<"+RootTag+">", "</"+RootTag+">"
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) {
		return false
	}
	toks := tokenize(s)
	depth := 0
	for i, tok := range toks {
		if tok.tag == nil || tok.tag.name != RootTag || tok.tag.selfClosing {
			continue
		}
		if tok.tag.closing {
			depth--
		} else {
			depth++
		}
		if depth == 0 {
			return i == len(toks)-1
		}
	}
	return false
}
