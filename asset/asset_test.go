package asset

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		path      string
		ok        bool
		assetType string
		mimeType  string
		subtype   string
	}{
		{"/img/revistas/abc/v1n1/a01fig1.gif", true, TypeGraphic, "image", "gif"},
		{"fig1.JPG", true, TypeGraphic, "image", "jpeg"},
		{"tabela.pdf?download=1", true, TypeSupplementary, "application", "pdf"},
		{"data.xls#sheet1", true, TypeSupplementary, "application", "vnd.ms-excel"},
		{"clip.mp4", true, TypeMedia, "video", "mp4"},
		{"a01tab1.htm", false, "", "", ""},
		{"page.html", false, "", "", ""},
		{"no-extension", false, "", "", ""},
	}

	for _, tt := range tests {
		k, ok := Lookup(tt.path)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if k.AssetType != tt.assetType || k.MimeType != tt.mimeType || k.MimeSubtype != tt.subtype {
			t.Errorf("Lookup(%q) = %+v", tt.path, k)
		}
	}
}

func TestRegistryOnePlaceholderPerPath(t *testing.T) {
	r := NewRegistry(nil)
	gif, _ := Lookup("fig1.gif")
	pdf, _ := Lookup("annex.pdf")

	first, created := r.Placeholder("img/fig1.gif", gif)
	if !created || first.RID != "f1" {
		t.Fatalf("first placeholder: %+v created=%v", first, created)
	}

	again, created := r.Placeholder("./IMG/fig1.gif", gif)
	if created || again != first {
		t.Errorf("same path should reuse the placeholder, got %+v created=%v", again, created)
	}

	doc, _ := r.Placeholder("annex.pdf", pdf)
	if doc.RID != "suppl1" {
		t.Errorf("supplementary id: got %q", doc.RID)
	}

	r.Reserve("f", 4)
	next, _ := r.Placeholder("fig2.gif", gif)
	if next.RID != "f5" {
		t.Errorf("reserved ids should be skipped, got %q", next.RID)
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if all := r.All(); all[0] != first || all[2] != next {
		t.Error("All() should keep creation order")
	}
}

func TestRegistrySkipsTakenIDs(t *testing.T) {
	taken := map[string]bool{"f1": true, "f2": true}
	r := NewRegistry(func(id string) bool { return taken[id] })
	gif, _ := Lookup("fig.gif")

	p, _ := r.Placeholder("fig.gif", gif)
	if p.RID != "f3" {
		t.Errorf("RID = %q, want f3", p.RID)
	}
}
