package pipeline

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/legacyjats/paragraph"
)

// applyStages runs fns over an article whose body holds body and returns the
// serialized body content.
func applyStages(t *testing.T, body string, fns ...func(*Document) error) string {
	t.Helper()
	xml := `<article xmlns:xlink="` + XLinkNamespace + `"><body>` + body + `</body></article>`
	d, err := parseDocument(xml, &Source{Acronym: "abc"}, (*Options)(nil).orDefault(), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	for _, fn := range fns {
		if err := fn(d); err != nil {
			t.Fatal(err)
		}
	}
	var b strings.Builder
	for c := firstChildElement(d.Article, "body").FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(c.OutputXML(true))
	}
	return b.String()
}

func TestRenameElements(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "double break ends a paragraph",
			body: "a<br/><br/>b<br/>",
			want: "<p>a</p><p>b</p>",
		},
		{
			name: "styled tail becomes its own paragraph",
			body: `Intro<br/><span style="bold">Methods</span><br/><br/>text`,
			want: "<p>Intro</p><p><bold>Methods</bold></p><p>text</p>",
		},
		{
			name: "fix-tag markers split paragraphs",
			body: "<fix-tag></fix-tag>a<fix-tag></fix-tag>b",
			want: "<p>a</p><p>b</p>",
		},
		{
			name: "lists",
			body: "<ul><li>one</li><li>two</li></ul>",
			want: `<list list-type="bullet"><list-item><p>one</p></list-item><list-item><p>two</p></list-item></list>`,
		},
		{
			name: "inline wrapping a block is distributed",
			body: `<span style="bold">x<p>y</p></span>`,
			want: "<p><bold>x</bold></p><p><bold>y</bold></p>",
		},
		{
			name: "table with caption and cell paragraphs",
			body: `<table border="1" class="grid"><caption>Cap</caption><tr><td><p>a</p><p>b</p></td></tr></table>`,
			want: `<table-wrap><caption><title>Cap</title></caption><table border="1"><tr><td>a<break></break>b</td></tr></table></table-wrap>`,
		},
		{
			name: "headings nest into sections",
			body: "<h1>Introduction</h1><p>x</p><h2>Sub</h2><p>y</p><h1>Methods</h1><p>z</p>",
			want: `<sec sec-type="intro"><title>Introduction</title><p>x</p><sec><title>Sub</title><p>y</p></sec></sec>` +
				`<sec sec-type="methods"><title>Methods</title><p>z</p></sec>`,
		},
		{
			name: "heading inside a list is demoted",
			body: "<ul><li><h3>Note</h3>text</li></ul>",
			want: `<list list-type="bullet"><list-item><p><bold>Note</bold></p><p>text</p></list-item></list>`,
		},
		{
			name: "images and rules",
			body: `<p><img src="a.gif"/><img src=""/><hr/></p>`,
			want: `<p><graphic xlink:href="a.gif"></graphic></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyStages(t, tt.body, renameElements); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestClassifyAnchors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"email text", `<a href="mailto:x@y.org">x@y.org</a>`, `<email>x@y.org</email>`},
		{"email link", `<a href="mailto:x@y.org">write to us</a>`, `<ext-link ext-link-type="email" xlink:href="x@y.org">write to us</ext-link>`},
		{"fragment", `<a href="#f1">Figure 1</a>`, `<xref rid="f1">Figure 1</xref>`},
		{"empty fragment", `<a href="#">top</a>`, `top`},
		{"bare hostname", `<a href="www.scielo.br">site</a>`, `<ext-link ext-link-type="uri" xlink:href="http://www.scielo.br">site</ext-link>`},
		{"absolute url", `<a href="http://example.org/x">x</a>`, `<ext-link ext-link-type="uri" xlink:href="http://example.org/x">x</ext-link>`},
		{"no href", `<a>plain</a>`, `plain`},
		{"named target", `<a name="n1"></a>`, `<a name="n1"></a>`},
		{"named link keeps its target", `<a name="top" href="http://example.org">x</a>`, `<a name="top"></a><ext-link ext-link-type="uri" xlink:href="http://example.org">x</ext-link>`},
		{
			"local asset",
			`<a href="/img/revistas/abc/v1/fig1.gif">Figure 1</a>`,
			`<xref data-path="/img/revistas/abc/v1/fig1.gif" data-asset-type="graphic" data-mimetype="image" data-mime-subtype="gif">Figure 1</xref>`,
		},
		{"local page", `<a href="v1n2a03.htm">next</a>`, `<ext-link ext-link-type="uri" specific-use="embed" xlink:href="v1n2a03.htm">next</ext-link>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyStages(t, "<p>"+tt.in+"</p>", markLocalLinks, classifyAnchors)
			if want := "<p>" + tt.want + "</p>"; got != want {
				t.Errorf("got  %s\nwant %s", got, want)
			}
		})
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		attrs []string
		want  int
	}{
		{nil, 3},
		{[]string{"size", "+2"}, 5},
		{[]string{"size", "-1"}, 2},
		{[]string{"size", "6"}, 6},
		{[]string{"style", "font-size: 18pt"}, 5},
		{[]string{"style", "font-size:12px"}, 1},
		{[]string{"style", "FONT-SIZE: 1.5em"}, 5},
		{[]string{"size", "big"}, 3},
	}
	for _, tt := range tests {
		if got := fontSize(newElement("font", tt.attrs...)); got != tt.want {
			t.Errorf("fontSize(%v) = %d, want %d", tt.attrs, got, tt.want)
		}
	}
}

func TestFontHeadingsOpenSections(t *testing.T) {
	res := Run(before(
		`<p><font size="+2">Introduction</font></p>`,
		"<p>text</p>",
		`<p><font size="+2"><b>Methods</b></font></p>`,
		"<p>more</p>",
		`<p><font size="+1">Small print</font></p>`,
	), nil)
	doc := parseFinal(t, res)

	secs := xmlquery.Find(doc, "//body/sec")
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2:\n%s", len(secs), res.Final())
	}
	for i, want := range []string{"intro", "methods"} {
		if got := secs[i].SelectAttr("sec-type"); got != want {
			t.Errorf("section %d sec-type = %q, want %q", i, got, want)
		}
	}
	if n := len(xmlquery.Find(secs[1], "p")); n != 2 {
		t.Errorf("second section holds %d paragraphs, want 2", n)
	}
	if xmlquery.FindOne(doc, "//font") != nil {
		t.Error("font elements should be gone")
	}
}

func TestFigurePlaceholderTakesGraphicAndCaption(t *testing.T) {
	res := Run(before(
		`<p>See <a href="#f1">Figure 1</a>.</p>`,
		`<p><a name="f1"></a>Figure 1. Caption</p>`,
		`<p><img src="fig1.gif"></p>`,
	), nil)
	doc := parseFinal(t, res)

	x := xmlquery.FindOne(doc, "//xref")
	if x == nil || x.SelectAttr("ref-type") != "fig" || x.SelectAttr("rid") != "f1" {
		t.Fatalf("xref not resolved:\n%s", res.Final())
	}
	fig := xmlquery.FindOne(doc, "//body/fig[@id='f1']")
	if fig == nil {
		t.Fatalf("figure missing:\n%s", res.Final())
	}
	if l := xmlquery.FindOne(fig, "label"); l == nil || l.InnerText() != "Figure 1" {
		t.Error("label missing")
	}
	if c := xmlquery.FindOne(fig, "caption/title"); c == nil || c.InnerText() != "Caption" {
		t.Error("caption missing")
	}
	g := xmlquery.FindOne(fig, "graphic")
	if g == nil || attr(g, "xlink:href") != "fig1.gif" {
		t.Error("graphic missing")
	}
	if n := len(xmlquery.Find(doc, "//body/p")); n != 1 {
		t.Errorf("got %d paragraphs, want only the citing one:\n%s", n, res.Final())
	}
	if strings.Contains(res.Final(), "data-") {
		t.Error("data attributes should be stripped")
	}
}

func TestAssemblyCaptions(t *testing.T) {
	tests := []struct {
		name  string
		src   *Source
		check func(t *testing.T, doc *xmlquery.Node, msgs []string)
	}{
		{
			name: "placeholder without content is flagged",
			src: before(
				`<p>See <a href="#f1">Figure 1</a></p>`,
				`<p><a name="f1"></a>Figure 1</p>`,
			),
			check: func(t *testing.T, doc *xmlquery.Node, msgs []string) {
				if xmlquery.FindOne(doc, "//body/fig[@id='f1']") == nil {
					t.Error("figure missing")
				}
				if diff := cmp.Diff([]string{"no fig content found for f1"}, msgs); diff != "" {
					t.Errorf("Uncertain() mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "label split over two links",
			src:  before(`<p><a href="t3.gif">Table</a> <a href="t3.gif">3</a></p>`),
			check: func(t *testing.T, doc *xmlquery.Node, msgs []string) {
				tw := xmlquery.FindOne(doc, "//body/table-wrap[@id='t3']")
				if tw == nil {
					t.Fatal("table-wrap t3 missing")
				}
				if l := xmlquery.FindOne(tw, "label"); l == nil || l.InnerText() != "Table 3" {
					t.Errorf("label: got %v", l)
				}
				for _, x := range xmlquery.Find(doc, "//p/xref") {
					if x.SelectAttr("ref-type") != "table" || x.SelectAttr("rid") != "t3" {
						t.Errorf("unexpected xref %s", x.OutputXML(true))
					}
				}
				if n := len(xmlquery.Find(doc, "//p/xref")); n != 2 {
					t.Errorf("got %d xrefs, want 2", n)
				}
			},
		},
		{
			name: "label paragraph then title paragraph",
			src: before(
				`<p>See <a href="#f1">Figure 1</a></p>`,
				`<p>Figure 1</p>`,
				`<p><a name="f1"></a>Growth curves</p>`,
				`<p><img src="fig1.gif"></p>`,
			),
			check: func(t *testing.T, doc *xmlquery.Node, msgs []string) {
				fig := xmlquery.FindOne(doc, "//body/fig[@id='f1']")
				if fig == nil {
					t.Fatal("figure missing")
				}
				if c := xmlquery.FindOne(fig, "caption/title"); c == nil || c.InnerText() != "Growth curves" {
					t.Errorf("caption title: got %v", c)
				}
				if n := len(xmlquery.Find(doc, "//body/p")); n != 1 {
					t.Errorf("got %d paragraphs, want only the citing one", n)
				}
				if len(msgs) != 0 {
					t.Errorf("unexpected review comments: %v", msgs)
				}
			},
		},
		{
			name: "citing paragraph is not a caption",
			src:  before(`<p><a href="fig1.gif">Figure 1</a> shows that growth doubles.</p>`),
			check: func(t *testing.T, doc *xmlquery.Node, msgs []string) {
				fig := xmlquery.FindOne(doc, "//body/fig")
				if fig == nil {
					t.Fatal("figure missing")
				}
				if xmlquery.FindOne(fig, "caption") != nil {
					t.Error("figure should keep its bare label")
				}
				p := xmlquery.FindOne(doc, "//body/p[xref]")
				if p == nil || !strings.Contains(p.InnerText(), "growth doubles") {
					t.Fatal("citing paragraph lost")
				}
				if x := xmlquery.FindOne(p, "xref"); x.SelectAttr("rid") != fig.SelectAttr("id") {
					t.Errorf("xref points at %q, figure id is %q", x.SelectAttr("rid"), fig.SelectAttr("id"))
				}
				want := []string{"caption of " + fig.SelectAttr("id") + " not separated from the text citing it"}
				if diff := cmp.Diff(want, msgs); diff != "" {
					t.Errorf("Uncertain() mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "paragraph citing two figures is kept",
			src:  before(`<p><a href="a.gif">Figure 2</a> and <a href="b.gif">Figure 1</a> grow.</p>`),
			check: func(t *testing.T, doc *xmlquery.Node, msgs []string) {
				if n := len(xmlquery.Find(doc, "//body/fig")); n != 2 {
					t.Errorf("got %d figures, want 2", n)
				}
				if n := len(xmlquery.Find(doc, "//body/p/xref")); n != 2 {
					t.Errorf("got %d xrefs in the paragraph, want 2", n)
				}
				if xmlquery.FindOne(doc, "//caption") != nil {
					t.Error("no figure should take a caption")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(tt.src, nil)
			doc := parseFinal(t, res)
			msgs, err := res.Uncertain()
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, doc, msgs)
			if t.Failed() {
				t.Log(res.Final())
			}
		})
	}
}

func TestInconsistentXrefIsFlagged(t *testing.T) {
	res := Run(before(
		`<p>See <a href="#t1">Figure 1</a></p>`,
		`<p><a name="t1"></a>Table 1</p>`,
		`<table><tr><td>x</td></tr></table>`,
	), nil)
	doc := parseFinal(t, res)

	if x := xmlquery.FindOne(doc, "//xref"); x == nil || x.SelectAttr("ref-type") != "table" {
		t.Errorf("xref should follow the target id:\n%s", res.Final())
	}
	if !strings.Contains(res.Final(), "<!-- uncertain: link text reads as fig but target t1 as table -->") {
		t.Errorf("missing review comment:\n%s", res.Final())
	}
	if xmlquery.FindOne(doc, "//table-wrap[@id='t1']/table") == nil {
		t.Errorf("table not moved into its wrapper:\n%s", res.Final())
	}

	msgs, err := res.Uncertain()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"link text reads as fig but target t1 as table"}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("Uncertain() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnresolvedXrefIsUnwrapped(t *testing.T) {
	res := Run(before(`<p>See <a href="#f9">Figure 9</a></p>`), nil)
	doc := parseFinal(t, res)

	if xmlquery.FindOne(doc, "//xref") != nil {
		t.Error("xref without target should be unwrapped")
	}
	if !strings.Contains(res.Final(), "<!-- uncertain: unresolved link to #f9 -->") {
		t.Errorf("missing comment:\n%s", res.Final())
	}
}

func TestImageLinksBecomeFigures(t *testing.T) {
	res := Run(before(`<p>See <a href="fig2.gif">Figure 2</a> and <a href="fig1.gif">Figure 1</a></p>`), nil)
	doc := parseFinal(t, res)

	figs := xmlquery.Find(doc, "//body/fig")
	if len(figs) != 2 {
		t.Fatalf("got %d figures, want 2:\n%s", len(figs), res.Final())
	}
	want := [][2]string{{"f1", "Figure 2"}, {"f2", "Figure 1"}}
	for i, f := range figs {
		l := xmlquery.FindOne(f, "label")
		if f.SelectAttr("id") != want[i][0] || l == nil || l.InnerText() != want[i][1] {
			t.Errorf("figure %d: %s", i, f.OutputXML(true))
		}
	}
	xrefs := xmlquery.Find(doc, "//p/xref")
	if len(xrefs) != 2 || xrefs[0].SelectAttr("rid") != "f1" || xrefs[1].SelectAttr("rid") != "f2" {
		t.Errorf("xrefs not linked:\n%s", res.Final())
	}
}

func TestFileLinksShareOneElement(t *testing.T) {
	res := Run(before(`<p><a href="annex.pdf">Annex</a> and <a href="annex.pdf">again</a></p>`), nil)
	doc := parseFinal(t, res)

	s := xmlquery.Find(doc, "//supplementary-material")
	if len(s) != 1 {
		t.Fatalf("got %d supplementary elements, want 1:\n%s", len(s), res.Final())
	}
	if s[0].SelectAttr("id") != "suppl1" || s[0].SelectAttr("mime-subtype") != "pdf" {
		t.Errorf("unexpected element %s", s[0].OutputXML(true))
	}
	for _, x := range xmlquery.Find(doc, "//xref") {
		if x.SelectAttr("ref-type") != "supplementary-material" || x.SelectAttr("rid") != "suppl1" {
			t.Errorf("unexpected xref %s", x.OutputXML(true))
		}
	}
}

func TestGraphicsInlineAndDisplay(t *testing.T) {
	res := Run(before(
		`<p><img src="eq1.gif"></p>`,
		`<p>text <img src="x.gif"> more</p>`,
		`<p><img src="eq2.gif"></p>`,
	), nil)
	doc := parseFinal(t, res)

	formulas := xmlquery.Find(doc, "//p/disp-formula")
	if len(formulas) != 2 {
		t.Fatalf("got %d formulas, want 2:\n%s", len(formulas), res.Final())
	}
	for i, id := range []string{"e1", "e2"} {
		if formulas[i].SelectAttr("id") != id || xmlquery.FindOne(formulas[i], "graphic") == nil {
			t.Errorf("formula %d: %s", i, formulas[i].OutputXML(true))
		}
	}
	if xmlquery.FindOne(doc, "//p/inline-graphic") == nil {
		t.Errorf("graphic in running text should be inline:\n%s", res.Final())
	}
}

func TestReferenceHeadingMovesIntoList(t *testing.T) {
	src := &Source{Partition: paragraph.Segment([]paragraph.Paragraph{
		{Text: "<p>Text</p>"},
		{Text: "<h2>References</h2>"},
		{Text: "1. Smith J. Title. 2020.", ReferenceIndex: "1"},
	})}
	res := Run(src, nil)
	doc := parseFinal(t, res)

	if l := xmlquery.FindOne(doc, "//back/ref-list/title"); l == nil || l.InnerText() != "References" {
		t.Errorf("reference list title missing:\n%s", res.Final())
	}
	if xmlquery.FindOne(doc, "//body/sec") != nil {
		t.Errorf("heading section should be gone:\n%s", res.Final())
	}
}

func TestStateString(t *testing.T) {
	if got := StateXrefsResolved.String(); got != "XREFS_RESOLVED" {
		t.Errorf("got %q", got)
	}
	if got := State(99).String(); got != "UNKNOWN" {
		t.Errorf("got %q", got)
	}
}

func TestIDAllocator(t *testing.T) {
	root := newElement("article")
	appendChild(root, newElement("p", "id", "t1"))
	ids := newIDAllocator(root)

	if got := ids.numbered("t", "1", ""); got != "t2" {
		t.Errorf("taken number: got %q", got)
	}
	if got := ids.numbered("t", "4a", ""); got != "t4a" {
		t.Errorf("free number: got %q", got)
	}
	if got := ids.numbered("t", "IV", "-s1"); got != "t1-s1" {
		t.Errorf("non-numeric: got %q", got)
	}
}
