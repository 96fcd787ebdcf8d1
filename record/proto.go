package record

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct renders the record as a protobuf Struct:
//
//	{"id": "0000001", "fields": {"704": [{"_": "<p>..."}], "10": [{"s": "Smith"}]}}
func (r *Record) Struct() (*structpb.Struct, error) {
	fields := make(map[string]any, len(r.tags))
	for _, tag := range r.tags {
		occ := r.fields[tag]
		list := make([]any, 0, len(occ))
		for _, f := range occ {
			sf := make(map[string]any, len(f.Subfields))
			for _, s := range f.Subfields {
				sf[s.Code] = s.Value
			}
			list = append(list, sf)
		}
		fields[tag] = list
	}

	s, err := structpb.NewStruct(map[string]any{
		"id":     r.id,
		"fields": fields,
	})
	if err != nil {
		return nil, fmt.Errorf("building struct for record %q: %w", r.id, err)
	}
	return s, nil
}

// MarshalJSON renders records as an indented JSON array using protojson.
func MarshalJSON(records []*Record) ([]byte, error) {
	list := make([]any, 0, len(records))
	for _, r := range records {
		s, err := r.Struct()
		if err != nil {
			return nil, err
		}
		list = append(list, s.AsMap())
	}

	v, err := structpb.NewList(list)
	if err != nil {
		return nil, fmt.Errorf("building record list: %w", err)
	}

	opts := protojson.MarshalOptions{Multiline: true, Indent: "  "}
	data, err := opts.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling records: %w", err)
	}
	return data, nil
}
