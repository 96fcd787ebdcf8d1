package record

import "strings"

const (
	// Marker separates subfields inside field content.
	Marker = '^'

	escapedMarker = `\^`

	// escapePlaceholder stands in for an escaped marker while content is
	// split. U+FFFF is a noncharacter and never appears in record exports.
	escapePlaceholder = "\uffff"
)

// ParseSubfields splits field content into ordered subfields.
//
//	"^stext"        → {s: "text"}
//	"value"         → {_: "value"}
//	"a\^b^stext"    → {_: "a^b", s: "text"}
//	"^aFoo^Bbar"    → {a: "Foo^Bbar"}
//
// Codes outside [a-z0-9_] are not rejected: the marker and the chunk are
// merged back into the previous subfield's value.
func ParseSubfields(content string) Subfields {
	masked := strings.ReplaceAll(content, escapedMarker, escapePlaceholder)
	if !strings.ContainsRune(masked, Marker) {
		return Subfields{{Code: BareCode, Value: unmask(masked)}}
	}

	chunks := strings.Split(masked, string(Marker))
	var out Subfields
	if chunks[0] != "" {
		out = out.set(BareCode, chunks[0])
	}

	for _, chunk := range chunks[1:] {
		if chunk == "" {
			appendToLast(&out, string(Marker))
			continue
		}
		code := chunk[:1]
		if !validCode(code[0]) {
			appendToLast(&out, string(Marker)+chunk)
			continue
		}
		out = out.set(code, chunk[1:])
	}

	for i := range out {
		out[i].Value = unmask(out[i].Value)
	}
	return out
}

// appendToLast merges text into the most recent subfield, creating a bare
// subfield when there is none yet.
func appendToLast(out *Subfields, text string) {
	if len(*out) == 0 {
		*out = append(*out, Subfield{Code: BareCode, Value: text})
		return
	}
	last := &(*out)[len(*out)-1]
	last.Value += text
}

func validCode(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

func unmask(s string) string {
	return strings.ReplaceAll(s, escapePlaceholder, string(Marker))
}
