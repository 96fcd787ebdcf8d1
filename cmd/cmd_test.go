package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/legacyjats/classify"
	"github.com/lehigh-university-libraries/legacyjats/pipeline"
)

func TestParseTranslation(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		wantLang   string
		wantBefore string
		wantAfter  string
		wantErr    bool
	}{
		{name: "before and after", spec: "en=en_b.html,en_a.html", wantLang: "en", wantBefore: "en_b.html", wantAfter: "en_a.html"},
		{name: "before only", spec: "es=es_b.html", wantLang: "es", wantBefore: "es_b.html"},
		{name: "spaces trimmed", spec: " en = b.html , a.html ", wantLang: "en", wantBefore: "b.html", wantAfter: "a.html"},
		{name: "no equals", spec: "en_b.html", wantErr: true},
		{name: "no lang", spec: "=b.html", wantErr: true},
		{name: "no files", spec: "en=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, before, after, err := parseTranslation(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := []string{lang, before, after}
			want := []string{tt.wantLang, tt.wantBefore, tt.wantAfter}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("parseTranslation(%q) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"article.id":             "article.xml",
		"/data/bjmbr/v1n2a03.id": "v1n2a03.xml",
		"noext":                  "noext.xml",
	}
	for in, want := range tests {
		if got := outputName(in); got != want {
			t.Errorf("outputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatXML(t *testing.T) {
	const doc = `<article><body><p>x</p></body></article>`

	got, err := formatXML(doc, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := xmlHeader + doc + "\n"; got != want {
		t.Errorf("formatXML() = %q, want %q", got, want)
	}

	got, err = formatXML(doc, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, xmlHeader+"<article>") {
		t.Errorf("indented output should start with the declaration and root: %q", got)
	}
	if !strings.Contains(got, "<p>x</p>") {
		t.Errorf("indented output lost content: %q", got)
	}
	if !strings.HasSuffix(got, "</article>\n") || strings.HasSuffix(got, "\n\n") {
		t.Errorf("indented output should end with one newline: %q", got)
	}
}

func TestUncertainGroup(t *testing.T) {
	tests := map[string]string{
		"no fig content found for f3":                   "no fig content found for #",
		"link text reads as fig but target t1 as table": "link text reads as fig but target # as table",
		"footnote text not found":                       "footnote text not found",
		"  paragraph   without reference index ":        "paragraph without reference index",
	}
	for in, want := range tests {
		if got := uncertainGroup(in); got != want {
			t.Errorf("uncertainGroup(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuditReportAdd(t *testing.T) {
	res := &pipeline.Result{
		RunID: "run-1",
		Snapshots: []pipeline.Snapshot{{
			Stage: 1,
			Name:  "payload",
			XML: `<article><body><p>a<!-- uncertain: no fig content found for f1 --></p>` +
				`<p>b<!-- uncertain: no fig content found for f2 --><!-- uncertain: unresolved link to #t9 --></p></body></article>`,
		}},
		Errors: []*pipeline.StageError{
			{Stage: 2, Name: "xrefs", Kind: "panic"},
		},
	}

	report := newAuditReport()
	if err := report.add("a.id", res); err != nil {
		t.Fatal(err)
	}
	if err := report.add("b.id", &pipeline.Result{RunID: "run-2"}); err != nil {
		t.Fatal(err)
	}
	report.finish()

	if report.TotalArticles != 2 || report.DegradedArticles != 1 {
		t.Errorf("got %d articles, %d degraded", report.TotalArticles, report.DegradedArticles)
	}
	if report.UnresolvedLinks != 1 {
		t.Errorf("UnresolvedLinks = %d, want 1", report.UnresolvedLinks)
	}
	wantUncertain := map[string]int{"no fig content found for #": 2, "unresolved link to #": 1}
	if diff := cmp.Diff(wantUncertain, report.Uncertain); diff != "" {
		t.Errorf("Uncertain mismatch (-want +got):\n%s", diff)
	}
	wantFailures := []StageFailure{{Stage: "xrefs", Count: 1, Kinds: map[string]int{"panic": 1}}}
	if diff := cmp.Diff(wantFailures, report.StageFailures); diff != "" {
		t.Errorf("StageFailures mismatch (-want +got):\n%s", diff)
	}
	if got := report.Articles[0]; got.Uncertain != 3 || got.Failed != 1 || got.Unresolved != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}

	text := formatAuditReport(report)
	for _, want := range []string{"Articles converted: 2", "xrefs: 1 (panic x1)", "2  no fig content found for #"} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}
}

func TestPrintMatch(t *testing.T) {
	tests := []struct {
		name string
		m    classify.Match
		want string
	}{
		{name: "unclassified", want: "unclassified\n"},
		{
			name: "compound",
			m:    classify.Match{Types: []string{"materials", "methods"}, Label: "2."},
			want: "sec-type: materials|methods\nlabel: 2.\n",
		},
		{
			name: "uncertain",
			m:    classify.Match{Types: []string{"intro"}, Uncertain: true},
			want: "sec-type: intro\nuncertain: only part of the text classified\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printMatch(&buf, "sec-type", tt.m); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("printMatch() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
