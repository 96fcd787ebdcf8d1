// Package paragraph reads paragraph records and partitions them around the
// bibliographic reference list.
package paragraph

import (
	"strings"

	"github.com/lehigh-university-libraries/legacyjats/record"
)

// Fields names the record tags a paragraph is read from.
type Fields struct {
	// RecTypeTag holds the record type ("706").
	RecTypeTag string `yaml:"rec_type_tag" json:"rec_type_tag"`

	// RecType is the record type of paragraph records ("p"). Empty accepts
	// every record.
	RecType string `yaml:"rec_type" json:"rec_type"`

	Text           string `yaml:"text" json:"text"`
	Index          string `yaml:"index" json:"index"`
	ReferenceIndex string `yaml:"reference_index" json:"reference_index"`
	Part           string `yaml:"part" json:"part"`
}

// DefaultFields returns the tags used by the legacy paragraph database.
func DefaultFields() Fields {
	return Fields{
		RecTypeTag:     record.DefaultRecTypeTag,
		RecType:        "p",
		Text:           "704",
		Index:          "121",
		ReferenceIndex: "888",
		Part:           "709",
	}
}

// Paragraph is the paragraph view of a record.
type Paragraph struct {
	Text           string
	Index          string
	ReferenceIndex string
	Part           string

	// Record is the source record, nil for paragraphs built in memory.
	Record *record.Record
}

// IsReference reports whether the paragraph belongs to the reference list.
func (p Paragraph) IsReference() bool {
	return strings.TrimSpace(p.ReferenceIndex) != ""
}

// FromRecord reads a paragraph out of r.
func FromRecord(r *record.Record, f Fields) Paragraph {
	return Paragraph{
		Text:           r.Value(f.Text),
		Index:          strings.TrimSpace(r.Value(f.Index)),
		ReferenceIndex: strings.TrimSpace(r.Value(f.ReferenceIndex)),
		Part:           strings.TrimSpace(r.Value(f.Part)),
		Record:         r,
	}
}

// FromRecords selects the paragraph records and reads them in input order.
func FromRecords(records []*record.Record, f Fields) []Paragraph {
	paragraphs := make([]Paragraph, 0, len(records))
	for _, r := range records {
		if f.RecType != "" && r.RecTypeAt(f.RecTypeTag) != f.RecType {
			continue
		}
		paragraphs = append(paragraphs, FromRecord(r, f))
	}
	return paragraphs
}
