package pipeline

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Report describes the run for diagnostics: every stage that produced a
// snapshot and every stage that failed.
func (r *Result) Report() (*structpb.Struct, error) {
	snapshots := make([]any, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		snapshots = append(snapshots, map[string]any{
			"stage":       s.Stage,
			"name":        s.Name,
			"state":       s.State.String(),
			"duration_ms": float64(s.Duration.Microseconds()) / 1000,
			"bytes":       len(s.XML),
		})
	}

	errs := make([]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, map[string]any{
			"stage":   e.Stage,
			"name":    e.Name,
			"kind":    e.Kind,
			"message": e.Message,
		})
	}

	s, err := structpb.NewStruct(map[string]any{
		"run_id":    r.RunID,
		"state":     r.State.String(),
		"degraded":  r.Degraded(),
		"snapshots": snapshots,
		"errors":    errs,
	})
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return s, nil
}

// ReportJSON renders the report as indented JSON.
func (r *Result) ReportJSON() ([]byte, error) {
	s, err := r.Report()
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}
