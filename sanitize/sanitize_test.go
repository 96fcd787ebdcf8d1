package sanitize

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
)

func applyRule(t *testing.T, name, input string) string {
	t.Helper()
	for _, r := range Rules() {
		if r.Name == name {
			return r.Apply(input, DefaultOptions())
		}
	}
	t.Fatalf("no rule named %q", name)
	return ""
}

func TestRules(t *testing.T) {
	tests := []struct {
		rule     string
		input    string
		expected string
	}{
		// strip-blocks
		{"strip-blocks", `<!--[if gte mso 9]><xml><o:x/></xml><![endif]--><p>a</p>`, `<p>a</p>`},
		{"strip-blocks", "<html><head><title>T</title>\n</head><body><p>x</p></body></html>", `<p>x</p>`},
		{"strip-blocks", "<style>\np { color: red }\n</style>b", `b`},
		{"strip-blocks", `<!DOCTYPE html><?xml:namespace prefix = o />a<!-- note -->b`, `ab`},
		{"strip-blocks", `<![CDATA[a<b]]>`, `a&lt;b`},

		// repair-characters
		{"repair-characters", "a&nbsp;b", "a\u00a0b"},
		{"repair-characters", "AT&T", "AT&amp;T"},
		{"repair-characters", "1 < 2", "1 &lt; 2"},
		{"repair-characters", "&lt;kept&gt; &amp; &#233;", "&lt;kept&gt; &amp; é"},
		{"repair-characters", "x\x01y", "xy"},
		{"repair-characters", "&#60;", "&lt;"},
		{"repair-characters", "&foo;", "&amp;foo;"},
		{"repair-characters", `<a href="x?a=1&b=2">`, `<a href="x?a=1&amp;b=2">`},

		// normalize-tags
		{"normalize-tags", `<P ALIGN=center>x</P >`, `<p align="center">x</p>`},
		{"normalize-tags", `<td nowrap width='5' WIDTH="6">`, `<td width="5">`},
		{"normalize-tags", `<div xmlns="http://www.w3.org/1999/xhtml" class="a">`, `<div class="a">`},
		{"normalize-tags", `<BR>`, `<br>`},
		{"normalize-tags", `<p title='say "hi"'>`, `<p title="say &quot;hi&quot;">`},

		// style-tags
		{"style-tags", `<strong>a</strong><sup>1</sup>`, `<span style="bold">a</span><span style="sup">1</span>`},
		{"style-tags", `<i>x</i><u>y</u><sub>2</sub><b/>`, `<span style="italic">x</span><span style="underline">y</span><span style="sub">2</span>`},

		// void-elements
		{"void-elements", `a<br>b</br><img src="x.gif">`, `a<br/>b<img src="x.gif"/>`},

		// balance
		{"balance", `<p>a`, `<fix-tag name="p" flag="open"/>a`},
		{"balance", `a</p>`, `a<fix-tag name="p" flag="close"/>`},
		{"balance", `<p>a<p>b</p>`, `<fix-tag name="p" flag="open"/>a<p>b</p>`},
		{"balance", `<div>x</span></div>`, `<div>x</div>`},
		{"balance", `<div><span>x</div>`, `<div><span>x</span></div><span></span>`},
		{"balance", `<table><tr><td>a<td>b</table>`, `<table><tr><td>a</td><td>b</td></tr></table>`},
		{"balance", `<ul><li>a<li>b</ul>`, `<ul><li>a</li><li>b</li></ul>`},
		{"balance", `<ul><li>a<ol><li>b</ol><li>c</ul>`, `<ul><li>a<ol><li>b</li></ol></li><li>c</li></ul>`},
		{"balance", `<dl><dt>t<dd>d<dt>u</dl>`, `<dl><dt>t</dt><dd>d</dd><dt>u</dt></dl>`},
		{"balance", `<table><tr><th>h<tr><td><b>x<td>y</table>`, `<table><tr><th>h</th></tr><tr><td><b>x</b></td><td>y</td></tr></table>`},
		{"balance", `<head><title>T</title>x`, `<title>T</title>x`},
		{"balance", `<div><script>a</div>b`, `<div>a</div>b`},

		// strip-namespaces
		{"strip-namespaces", `<o:p></o:p>x<st1:place w:st="on">Rio</st1:place>`, `xRio`},
		{
			"strip-namespaces",
			`<a href="http://x.org/a:b" v:shape="1" xml:lang="en" xlink:title="t">`,
			`<a href="http://x.org/a:b" xml:lang="en" xlink:title="t">`,
		},

		// wrap-root
		{"wrap-root", `a`, `<root>a</root>`},
		{"wrap-root", `<root>a</root>`, `<root>a</root>`},
		{"wrap-root", `<root>a</root><root>b</root>`, `<root><root>a</root><root>b</root></root>`},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			result := applyRule(t, tt.rule, tt.input)
			if result != tt.expected {
				t.Errorf("%s(%q)\n got: %q\nwant: %q", tt.rule, tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`<p>Hello <b>World</b></p>`, `<root><p>Hello <span style="bold">World</span></p></root>`},
		{`<P>Hello <B>World</B>`, `<root><fix-tag name="p" flag="open"/>Hello <span style="bold">World</span></root>`},
		{``, `<root></root>`},
		{`<o:p></o:p>AT&T&nbsp;<br>`, "<root>AT&amp;T\u00a0<br/></root>"},
		{`<head><title>T</title><p>body text</p>`, `<root><title>T</title><p>body text</p></root>`},
		{`<xml><o:X>`, `<root></root>`},
	}

	for _, tt := range tests {
		result := Sanitize(tt.input, nil)
		if result != tt.expected {
			t.Errorf("Sanitize(%q)\n got: %q\nwant: %q", tt.input, result, tt.expected)
		}
	}
}

var messyInputs = []string{
	`<p>Hello <b>World</b></p>`,
	`<P ALIGN=center><B><I>x</B></I>`,
	`<o:p></o:p>AT&T &nbsp; 1 < 2<br>`,
	`<!--[if gte mso 9]><xml>junk</xml><![endif]--><table><tr><td>a<td>b</table>`,
	`<html><body><P>one<P>two</body></html>`,
	`<a href=http://example.org/x.htm name=top>link</a></p>`,
	`<font size=+2 face="Arial">Title</font><br><br>Text &copy; 2001`,
	`<img src='fig1.gif' border=0 alt="Figure 1">`,
	"<p>\x0bcontrol</p><sup>1,2</sup>",
	`</b></i>dangling <<< >>> &&`,
	`<head><title>T</title><p>body text</p>`,
	`<script>alert(1)`,
	`<style>p{}<p>text</p>`,
	`<xml><o:X>`,
	`<ul><li>a<li>b</ul><table><tr><td>x<td>y</table>`,
	`<p><head>kept</p>`,
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, input := range messyInputs {
		once := Sanitize(input, nil)
		twice := Sanitize(once, nil)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestSanitizedMarkupParses(t *testing.T) {
	for _, input := range messyInputs {
		out := Sanitize(input, nil)
		if _, err := xmlquery.Parse(strings.NewReader(out)); err != nil {
			t.Errorf("Sanitize(%q) = %q does not parse: %v", input, out, err)
		}
	}
}

func TestBalanceTagsOption(t *testing.T) {
	opts := &Options{BalanceTags: []string{"p", "div"}}
	got := Sanitize(`<div>a`, opts)
	want := `<root><fix-tag name="div" flag="open"/>a</root>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = Sanitize(`<div>a`, nil)
	want = `<root><div>a</div></root>`
	if got != want {
		t.Errorf("default options: got %q, want %q", got, want)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"<p>a b c</p>", "a   b c", 1},
		{"a b c d", "a b x y", 0.5},
		{"", "<root></root>", 1},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.expected {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		repaired  string
		threshold float64
		wantOK    bool
	}{
		{"identical text keeps the repair", "<P>a b", "<p>a b</p>", 0.7, true},
		{"identical text wins even at threshold 1", "a b", "<root>a b</root>", 1, true},
		{"above threshold keeps the repair", "a b c d e f g h i j", "a b c d e f g h i x", 0.7, true},
		{"below threshold keeps the original", "a b c d", "a b x y", 0.7, false},
		{"ratio equal to threshold keeps the original", "a b c d", "a b x y", 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chosen, ok := Choose(tt.original, tt.repaired, tt.threshold)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			want := tt.original
			if tt.wantOK {
				want = tt.repaired
			}
			if chosen != want {
				t.Errorf("chosen = %q, want %q", chosen, want)
			}
		})
	}
}

func TestTree(t *testing.T) {
	root, degraded := Tree(`<p>Hello <b>World</b></p>`, nil)
	if degraded {
		t.Error("well-formed input should not degrade")
	}
	if root.Data != RootTag {
		t.Fatalf("root element = %q", root.Data)
	}
	got := root.OutputXML(true)
	want := `<root><p>Hello <span style="bold">World</span></p></root>`
	if got != want {
		t.Errorf("OutputXML = %q, want %q", got, want)
	}
}

func TestTreeFallsBackToPlainText(t *testing.T) {
	root, degraded := Tree(`<xml>a b c d e f</xml>ok`, nil)
	if !degraded {
		t.Error("expected degraded result")
	}
	if root == nil || root.Data != RootTag {
		t.Fatalf("unexpected root: %v", root)
	}
	if got := root.InnerText(); got != "ok" {
		t.Errorf("InnerText = %q, want %q", got, "ok")
	}
}

func TestPlainRoot(t *testing.T) {
	got := PlainRoot(`<p>a < b & c</p>`)
	want := `<root>a &lt; b &amp; c</root>`
	if got != want {
		t.Errorf("PlainRoot = %q, want %q", got, want)
	}
}
