package paragraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lehigh-university-libraries/legacyjats/record"
)

func paragraphs(refIndexes ...string) []Paragraph {
	out := make([]Paragraph, len(refIndexes))
	for i, ri := range refIndexes {
		out[i] = Paragraph{Text: string(rune('a' + i)), ReferenceIndex: ri}
	}
	return out
}

func texts(ps []Paragraph) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name           string
		refs           []string
		wantBefore     []string
		wantReferences []string
		wantAfter      []string
		wantFirst      int
		wantLast       int
		wantOK         bool
	}{
		{
			name:   "empty input",
			refs:   nil,
			wantOK: false,
		},
		{
			name:       "no references",
			refs:       []string{"", "", ""},
			wantBefore: []string{"a", "b", "c"},
			wantOK:     false,
		},
		{
			name:           "references in the middle",
			refs:           []string{"", "1", "2", ""},
			wantBefore:     []string{"a"},
			wantReferences: []string{"b", "c"},
			wantAfter:      []string{"d"},
			wantFirst:      1,
			wantLast:       2,
			wantOK:         true,
		},
		{
			name:           "interleaved non-reference paragraph is kept in place",
			refs:           []string{"", "1", "", "2", "", ""},
			wantBefore:     []string{"a"},
			wantReferences: []string{"b", "c", "d"},
			wantAfter:      []string{"e", "f"},
			wantFirst:      1,
			wantLast:       3,
			wantOK:         true,
		},
		{
			name:           "only references",
			refs:           []string{"1", "2"},
			wantReferences: []string{"a", "b"},
			wantFirst:      0,
			wantLast:       1,
			wantOK:         true,
		},
		{
			name:           "whitespace index is not a reference",
			refs:           []string{" ", "3"},
			wantBefore:     []string{"a"},
			wantReferences: []string{"b"},
			wantFirst:      1,
			wantLast:       1,
			wantOK:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := paragraphs(tt.refs...)
			got := Segment(input)

			opt := cmpopts.EquateEmpty()
			if diff := cmp.Diff(tt.wantBefore, texts(got.Before), opt); diff != "" {
				t.Errorf("Before mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantReferences, texts(got.References), opt); diff != "" {
				t.Errorf("References mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantAfter, texts(got.After), opt); diff != "" {
				t.Errorf("After mismatch (-want +got):\n%s", diff)
			}

			first, ok := got.FirstReference()
			if ok != tt.wantOK {
				t.Fatalf("FirstReference ok = %v, want %v", ok, tt.wantOK)
			}
			last, _ := got.LastReference()
			if ok && (first != tt.wantFirst || last != tt.wantLast) {
				t.Errorf("reference bounds = [%d, %d], want [%d, %d]", first, last, tt.wantFirst, tt.wantLast)
			}

			if diff := cmp.Diff(texts(input), texts(got.All()), opt); diff != "" {
				t.Errorf("partition does not reproduce the input (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSegmentDoesNotAlias(t *testing.T) {
	input := paragraphs("", "1", "")
	got := Segment(input)

	got.Before = append(got.Before, Paragraph{Text: "x"})
	if got.References[0].Text != "b" {
		t.Errorf("appending to Before overwrote References: %q", got.References[0].Text)
	}
}

func TestFromRecords(t *testing.T) {
	records := record.ParseString(`!ID 1
!v706!p
!v704!<p>Intro</p>
!v121!1
!ID 2
!v706!h
!v704!not a paragraph
!ID 3
!v706!p
!v704!1. Smith J. Title. 2020.
!v888! 1
`)

	got := FromRecords(records, DefaultFields())
	if len(got) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(got))
	}
	if got[0].Text != "<p>Intro</p>" || got[0].Index != "1" || got[0].IsReference() {
		t.Errorf("first paragraph: %+v", got[0])
	}
	if got[1].ReferenceIndex != "1" || !got[1].IsReference() {
		t.Errorf("second paragraph reference index: %q", got[1].ReferenceIndex)
	}
	if got[1].Record.ID() != "3" {
		t.Errorf("second paragraph record: %q", got[1].Record.ID())
	}
}
