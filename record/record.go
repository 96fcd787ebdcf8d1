// Package record parses legacy tag/subfield bibliographic records.
//
// A record export is a sequence of lines. A start marker line opens a new
// record and every following field line belongs to it:
//
//	!ID 0000001
//	!v706!p
//	!v704!<p>Some <b>text</b></p>
//	!v010!^sSmith^nJohn
//
// Field content is split into subfields on the '^' marker. The first
// character after a marker is the subfield code; content before the first
// marker is stored under the implicit code "_".
package record

import "strings"

// BareCode is the subfield code used for content that precedes any marker.
const BareCode = "_"

// DefaultRecTypeTag is the tag holding the record type.
const DefaultRecTypeTag = "706"

// Subfield is a single code/value pair of a field occurrence.
type Subfield struct {
	Code  string
	Value string
}

// Subfields is an ordered code → value map. Setting an existing code keeps
// its position and replaces its value.
type Subfields []Subfield

// Get returns the value stored under code.
func (s Subfields) Get(code string) (string, bool) {
	for _, sf := range s {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under code, or "" when absent.
func (s Subfields) Value(code string) string {
	v, _ := s.Get(code)
	return v
}

// Codes returns the subfield codes in order.
func (s Subfields) Codes() []string {
	codes := make([]string, len(s))
	for i, sf := range s {
		codes[i] = sf.Code
	}
	return codes
}

// Map returns the subfields as a plain map.
func (s Subfields) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, sf := range s {
		m[sf.Code] = sf.Value
	}
	return m
}

func (s Subfields) set(code, value string) Subfields {
	for i := range s {
		if s[i].Code == code {
			s[i].Value = value
			return s
		}
	}
	return append(s, Subfield{Code: code, Value: value})
}

// Field is one occurrence of a repeatable tagged field.
type Field struct {
	Tag       string
	Subfields Subfields
}

// Value returns the bare value of the field (code "_").
func (f Field) Value() string {
	return f.Subfields.Value(BareCode)
}

// Record is an immutable collection of field occurrences keyed by tag.
type Record struct {
	id     string
	fields map[string][]Field
	tags   []string
}

// New builds a record from field occurrences, preserving their order.
func New(fields ...Field) *Record {
	r := &Record{fields: make(map[string][]Field)}
	for _, f := range fields {
		r.add(f)
	}
	return r
}

func (r *Record) add(f Field) {
	f.Tag = normalizeTag(f.Tag)
	if _, ok := r.fields[f.Tag]; !ok {
		r.tags = append(r.tags, f.Tag)
	}
	sf := make(Subfields, len(f.Subfields))
	copy(sf, f.Subfields)
	r.fields[f.Tag] = append(r.fields[f.Tag], Field{Tag: f.Tag, Subfields: sf})
}

// ID returns the identifier carried by the record's start marker.
func (r *Record) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Tags returns the tags present in the record in order of first appearance.
func (r *Record) Tags() []string {
	if r == nil {
		return nil
	}
	tags := make([]string, len(r.tags))
	copy(tags, r.tags)
	return tags
}

// Fields returns a copy of all occurrences of tag.
func (r *Record) Fields(tag string) []Field {
	if r == nil {
		return nil
	}
	src := r.fields[normalizeTag(tag)]
	out := make([]Field, len(src))
	for i, f := range src {
		sf := make(Subfields, len(f.Subfields))
		copy(sf, f.Subfields)
		out[i] = Field{Tag: f.Tag, Subfields: sf}
	}
	return out
}

// First returns the first occurrence of tag.
func (r *Record) First(tag string) (Field, bool) {
	if r == nil {
		return Field{}, false
	}
	occ := r.fields[normalizeTag(tag)]
	if len(occ) == 0 {
		return Field{}, false
	}
	return r.Fields(tag)[0], true
}

// Value returns the bare value of the first occurrence of tag.
func (r *Record) Value(tag string) string {
	f, ok := r.First(tag)
	if !ok {
		return ""
	}
	return f.Value()
}

// Subfield returns the value of code in the first occurrence of tag.
func (r *Record) Subfield(tag, code string) string {
	f, ok := r.First(tag)
	if !ok {
		return ""
	}
	return f.Subfields.Value(code)
}

// Values returns the bare value of every occurrence of tag.
func (r *Record) Values(tag string) []string {
	occ := r.Fields(tag)
	values := make([]string, 0, len(occ))
	for _, f := range occ {
		values = append(values, f.Value())
	}
	return values
}

// RecType returns the record type stored under DefaultRecTypeTag.
func (r *Record) RecType() string {
	return r.RecTypeAt(DefaultRecTypeTag)
}

// RecTypeAt returns the record type stored under tag.
func (r *Record) RecTypeAt(tag string) string {
	return strings.TrimSpace(r.Value(tag))
}

// Len returns the number of field occurrences in the record.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, occ := range r.fields {
		n += len(occ)
	}
	return n
}

// normalizeTag accepts "v010", "010" and "10" as the same tag.
func normalizeTag(tag string) string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "v")
	trimmed := strings.TrimLeft(tag, "0")
	if trimmed == "" && tag != "" {
		return "0"
	}
	return trimmed
}
