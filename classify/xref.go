package classify

import "strings"

// Source tells which input an xref classification came from.
type Source int

const (
	SourceNone Source = iota
	SourceText
	SourceID
	SourceBoth
)

func (s Source) String() string {
	switch s {
	case SourceText:
		return "text"
	case SourceID:
		return "id"
	case SourceBoth:
		return "both"
	default:
		return "none"
	}
}

// XrefResult is the classification of a cross-reference anchor. It is
// recomputed whenever needed and never stored in the document.
type XrefResult struct {
	RefType     string
	ElementName string

	// RID is the identifier the anchor points at, as given.
	RID string

	// Label is the anchor text when it classified ("Figure 1").
	Label string

	// Number is the label number ("1", "2a", "iv").
	Number string

	Source Source

	// Consistent is set only when both text and id classified: true when
	// they agree on the reference type.
	Consistent *bool

	// TextRefType is the type read from the text when it differs from the
	// id's.
	TextRefType string
}

// Classified reports whether a reference type was found.
func (r XrefResult) Classified() bool {
	return r.RefType != ""
}

// Inconsistent reports whether text and id disagree.
func (r XrefResult) Inconsistent() bool {
	return r.Consistent != nil && !*r.Consistent
}

// ByID classifies an anchor identifier ("f1", "tab2", "B12").
func ByID(id string) (XrefResult, bool) {
	id = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), "#"))
	if id == "" {
		return XrefResult{}, false
	}
	for _, rule := range idRules {
		if m := rule.re.FindStringSubmatch(id); m != nil {
			return XrefResult{
				RefType:     rule.refType,
				ElementName: ElementNames[rule.refType],
				RID:         id,
				Number:      strings.ToLower(m[1]),
				Source:      SourceID,
			}, true
		}
	}
	return XrefResult{}, false
}

// ByText classifies anchor text ("Figure 1", "Tabla 2", "Fig. 3a").
func ByText(text string) (XrefResult, bool) {
	folded := Fold(text)
	if folded == "" {
		return XrefResult{}, false
	}
	for _, rule := range textRules {
		if m := rule.re.FindStringSubmatch(folded); m != nil {
			return XrefResult{
				RefType:     rule.refType,
				ElementName: ElementNames[rule.refType],
				Label:       strings.TrimSpace(text),
				Number:      labelNumber(m[1]),
				Source:      SourceText,
			}, true
		}
	}
	return XrefResult{}, false
}

// Xref classifies an anchor from its text and the id it points at. When
// both classify, the id decides the type and Consistent records whether
// the text agreed.
func Xref(text, id string) XrefResult {
	byID, idOK := ByID(id)
	byText, textOK := ByText(text)

	switch {
	case idOK && textOK:
		r := byID
		r.Source = SourceBoth
		r.Label = byText.Label
		if byText.Number != "" {
			r.Number = byText.Number
		}
		consistent := byID.RefType == byText.RefType && byID.ElementName == byText.ElementName
		r.Consistent = &consistent
		if !consistent {
			r.TextRefType = byText.RefType
		}
		return r
	case idOK:
		return byID
	case textOK:
		byText.RID = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), "#"))
		return byText
	}
	return XrefResult{RID: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), "#"))}
}
