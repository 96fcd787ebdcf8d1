package paragraph

// Partition splits a paragraph sequence around the reference list.
// Before, References and After concatenated in this order reproduce the
// original sequence exactly once.
type Partition struct {
	Before     []Paragraph
	References []Paragraph
	After      []Paragraph

	first, last int
}

// FirstReference returns the position of the first paragraph with a
// reference index. ok is false when there is none.
func (p Partition) FirstReference() (pos int, ok bool) {
	if p.first < 0 || len(p.References) == 0 {
		return 0, false
	}
	return p.first, true
}

// LastReference returns the position of the last paragraph with a
// reference index. ok is false when there is none.
func (p Partition) LastReference() (pos int, ok bool) {
	if p.last < 0 || len(p.References) == 0 {
		return 0, false
	}
	return p.last, true
}

// Len returns the number of paragraphs across all three parts.
func (p Partition) Len() int {
	return len(p.Before) + len(p.References) + len(p.After)
}

// All returns the paragraphs in their original order.
func (p Partition) All() []Paragraph {
	all := make([]Paragraph, 0, p.Len())
	all = append(all, p.Before...)
	all = append(all, p.References...)
	return append(all, p.After...)
}

// Segment partitions paragraphs with a single forward scan.
//
// The References span runs from the first to the last paragraph with a
// reference index, inclusive. Paragraphs without an index inside that span
// stay where they are. Without any reference the whole sequence is Before.
func Segment(paragraphs []Paragraph) Partition {
	first, last := -1, -1
	for i, p := range paragraphs {
		if !p.IsReference() {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}

	if first < 0 {
		return Partition{Before: paragraphs, first: -1, last: -1}
	}

	return Partition{
		Before:     paragraphs[:first:first],
		References: paragraphs[first : last+1 : last+1],
		After:      paragraphs[last+1:],
		first:      first,
		last:       last,
	}
}
