package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/legacyjats/paragraph"
)

func TestRegistryLoadsEmbeddedProfiles(t *testing.T) {
	r, err := NewProfileRegistry()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"default", "scielo", "scielo-legacy"}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}

	p, ok := r.Get("scielo")
	if !ok {
		t.Fatal("scielo profile missing")
	}
	if diff := cmp.Diff(paragraph.DefaultFields(), p.Fields); diff != "" {
		t.Errorf("scielo fields differ from the defaults (-want +got):\n%s", diff)
	}
	if p.VersionedName() != "scielo@1.0" {
		t.Errorf("VersionedName() = %q", p.VersionedName())
	}

	legacy, _ := r.Get("scielo-legacy")
	opts := legacy.SanitizeOptions()
	if diff := cmp.Diff([]string{"p", "div", "blockquote"}, opts.BalanceTags); diff != "" {
		t.Errorf("balance tags (-want +got):\n%s", diff)
	}
	if opts.Threshold != 0.6 {
		t.Errorf("threshold = %v", opts.Threshold)
	}
}

func TestLoadProfileFromStringFillsDefaults(t *testing.T) {
	p, err := LoadProfileFromString(`
name: journal
fields:
  text: "10"
options:
  acronym: bjmbr
  font_heading_size: 6
`)
	if err != nil {
		t.Fatal(err)
	}

	want := paragraph.DefaultFields()
	want.Text = "10"
	if diff := cmp.Diff(want, p.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if p.Options.Acronym != "bjmbr" || p.Options.FontHeadingSize != 6 {
		t.Errorf("options not applied: %+v", p.Options)
	}
	if p.Options.SimilarityThreshold != Default().Options.SimilarityThreshold {
		t.Errorf("threshold should come from the defaults, got %v", p.Options.SimilarityThreshold)
	}

	po := p.PipelineOptions(nil)
	if po.FontHeadingSize != 6 || po.Sanitize == nil {
		t.Errorf("pipeline options: %+v", po)
	}
}

func TestLoadProfileRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold", "options:\n  similarity_threshold: 2\n"},
		{"font size", "options:\n  font_heading_size: 9\n"},
		{"syntax", "fields: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfileFromString(tt.yaml); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.yaml"), []byte("options:\n  lang: es\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("fields: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewProfileRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.LoadFromDirectory(dir); err != nil {
		t.Fatal(err)
	}

	p, ok := r.Get("local")
	if !ok {
		t.Fatal("profile named after its file should be registered")
	}
	if p.Options.Lang != "es" {
		t.Errorf("lang = %q", p.Options.Lang)
	}
	if _, ok := r.Get("broken"); ok {
		t.Error("broken profile should be skipped")
	}
}

func TestMergeProfiles(t *testing.T) {
	base := Default()
	custom := &Profile{
		Name:   "custom",
		Fields: paragraph.Fields{ReferenceIndex: "30"},
		Options: ProfileOptions{
			BalanceTags: []string{"div"},
		},
	}
	merged := MergeProfiles(base, custom)

	if merged.Name != "custom" || merged.Description != base.Description {
		t.Errorf("name/description: %q %q", merged.Name, merged.Description)
	}
	if merged.Fields.ReferenceIndex != "30" || merged.Fields.Text != base.Fields.Text {
		t.Errorf("fields: %+v", merged.Fields)
	}
	if diff := cmp.Diff([]string{"div"}, merged.Options.BalanceTags); diff != "" {
		t.Errorf("balance tags (-want +got):\n%s", diff)
	}
	if merged.Options.FontHeadingSize != base.Options.FontHeadingSize {
		t.Errorf("font heading size = %d", merged.Options.FontHeadingSize)
	}
}

func TestUserProfiles(t *testing.T) {
	SetConfigDir(t.TempDir())
	t.Cleanup(func() { SetConfigDir("") })

	p := Default()
	p.Name = "My Journal"
	p.Options.Acronym = "mj"
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}

	r, err := NewProfileRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.LoadUserProfiles(); err != nil {
		t.Fatal(err)
	}
	got, ok := r.Get("My Journal")
	if !ok {
		t.Fatalf("saved profile not loaded, have %v", r.List())
	}
	if got.Options.Acronym != "mj" {
		t.Errorf("acronym = %q", got.Options.Acronym)
	}

	if err := DeleteProfile("My Journal"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteProfile("My Journal"); err == nil {
		t.Error("deleting twice should fail")
	}
	if _, err := ProfilePath("../x"); err == nil {
		t.Error("path separators should be rejected")
	}
}
