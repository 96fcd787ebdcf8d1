package sanitize

import (
	"regexp"
	"strings"
)

var (
	// tagRegex matches one start, end or self-closing tag at the start of
	// the input. Attribute values are matched as whole units, so markup
	// characters inside them never end the tag.
	tagRegex = regexp.MustCompile(`^<(/?)([A-Za-z][A-Za-z0-9_:.\-]*)((?:\s*[^\s=/<>"']+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s<>"']+))?)*)\s*(/?)\s*>`)

	attrRegex = regexp.MustCompile(`([^\s=/<>"']+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s<>"']+))?`)
)

type attr struct {
	name     string
	value    string
	hasValue bool
}

type tag struct {
	name        string
	closing     bool
	selfClosing bool
	attrs       []attr
}

// parseTag reads the tag at the start of s and returns it with its length.
func parseTag(s string) (*tag, int, bool) {
	m := tagRegex.FindStringSubmatchIndex(s)
	if m == nil {
		return nil, 0, false
	}

	t := &tag{
		closing:     m[3] > m[2],
		name:        s[m[4]:m[5]],
		selfClosing: m[9] > m[8],
	}
	for _, am := range attrRegex.FindAllStringSubmatch(s[m[6]:m[7]], -1) {
		a := attr{name: am[1]}
		if am[2] != "" {
			a.hasValue = true
			a.value = unquote(am[2])
		}
		t.attrs = append(t.attrs, a)
	}
	return t, m[1], true
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func (t *tag) attr(name string) (string, bool) {
	for _, a := range t.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// String renders the tag in canonical form: double-quoted values, one space
// between attributes, no space before "/>".
func (t *tag) String() string {
	var b strings.Builder
	b.WriteByte('<')
	if t.closing {
		b.WriteByte('/')
		b.WriteString(t.name)
		b.WriteByte('>')
		return b.String()
	}
	b.WriteString(t.name)
	for _, a := range t.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		if a.hasValue {
			b.WriteString(`="`)
			b.WriteString(attrValueEscaper.Replace(a.value))
			b.WriteByte('"')
		}
	}
	if t.selfClosing {
		b.WriteByte('/')
	}
	b.WriteByte('>')
	return b.String()
}

var attrValueEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;")

// token is either a run of text or a tag.
type token struct {
	text string
	tag  *tag
}

func tokenize(s string) []token {
	var toks []token
	start := 0
	for i := 0; i < len(s); {
		if s[i] != '<' {
			i++
			continue
		}
		t, n, ok := parseTag(s[i:])
		if !ok {
			i++
			continue
		}
		if i > start {
			toks = append(toks, token{text: s[start:i]})
		}
		toks = append(toks, token{tag: t})
		i += n
		start = i
	}
	if start < len(s) {
		toks = append(toks, token{text: s[start:]})
	}
	return toks
}

// rewriteTags replaces every tag in s with fn's result. Text is copied
// unchanged.
func rewriteTags(s string, fn func(t *tag) string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range tokenize(s) {
		if tok.tag == nil {
			b.WriteString(tok.text)
			continue
		}
		b.WriteString(fn(tok.tag))
	}
	return b.String()
}
