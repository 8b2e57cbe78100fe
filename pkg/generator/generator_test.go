package generator

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/extractor"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var defaultOptions = Options{PreserveUtilityClasses: true, IncludeInlineStyles: true}

type fixture struct {
	snapshot *html.Node
	ext      *extractor.Extraction
}

func extract(t *testing.T, markup, sel string) fixture {
	t.Helper()
	doc, err := dom.ParseString(markup, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Query(sel)
	if err != nil || root == nil {
		t.Fatalf("Query(%q) = %v, %v", sel, root, err)
	}
	snap, err := root.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	ext, err := extractor.New(nil).Extract(root)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{snapshot: snap, ext: ext}
}

func computed(t *testing.T, f fixture) []css.Declarations {
	t.Helper()
	out := make([]css.Declarations, 0, len(f.ext.Nodes))
	for _, n := range f.ext.Nodes {
		c, err := n.ComputedStyle()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, css.Relevant(c))
	}
	return out
}

const scenario = `<html><body><div class="flex p-4 myCard" style="color: red">Hello</div></body></html>`

func TestScenarioArtifacts(t *testing.T) {
	f := extract(t, scenario, "div")
	opts := defaultOptions
	opts.Computed = computed(t, f)

	artifacts, err := GenerateAll(f.snapshot, f.ext.Model, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != len(Formats) {
		t.Fatalf("artifacts = %d, want %d", len(artifacts), len(Formats))
	}
	for format, a := range artifacts {
		if a.Format != format {
			t.Errorf("artifact under %s has format %s", format, a.Format)
		}
	}

	cssText := artifacts[CSS].Primary
	block := regexp.MustCompile(`(?s)div\.myCard \{[^}]*color: red;[^}]*\}`)
	if !block.MatchString(cssText) {
		t.Errorf("css artifact lacks the merged div.myCard block:\n%s", cssText)
	}
	if !strings.Contains(cssText, "/* Tailwind Classes Used */\n/*\n  flex\n  p-4\n*/") {
		t.Errorf("css artifact lacks the utility comment:\n%s", cssText)
	}

	page := artifacts[HTMLCSS]
	if page.Fragment != `<div class="flex p-4 myCard" style="color: red">Hello</div>` {
		t.Errorf("html fragment = %q", page.Fragment)
	}
	if !strings.Contains(page.Primary, `<script src="https://cdn.tailwindcss.com"></script>`) {
		t.Errorf("document lacks the tailwind script:\n%s", page.Primary)
	}
	if !strings.HasPrefix(page.Primary, "<!DOCTYPE html>\n") {
		t.Errorf("document has no doctype")
	}

	wantComponent := `import React from 'react';
import './ExtractedComponent.css';

const ExtractedComponent = () => {
  return (
    <div className="flex p-4 myCard" style={{ color: "red" }}>Hello</div>
  );
};

export default ExtractedComponent;
`
	if got := artifacts[Component].Primary; got != wantComponent {
		t.Errorf("component =\n%s\nwant\n%s", got, wantComponent)
	}

	tw := artifacts[UtilityComponent]
	if tw.Fragment != `<div className="flex p-4">Hello</div>` {
		t.Errorf("tailwind fragment = %q", tw.Fragment)
	}
	if strings.Contains(tw.Primary, ".css'") {
		t.Errorf("tailwind component imports css")
	}
	if !strings.Contains(tw.Auxiliary, `"safelist": [`) {
		t.Errorf("tailwind config = %s", tw.Auxiliary)
	}

	inline := artifacts[Standalone]
	if inline.Fragment != `<div style="display: block; color: red">Hello</div>` {
		t.Errorf("standalone fragment = %q", inline.Fragment)
	}
	if strings.Contains(inline.Primary, "<style>") || strings.Contains(inline.Primary, "tailwindcss") {
		t.Errorf("standalone document has external styling:\n%s", inline.Primary)
	}
}

func TestOptionsStripUtilityAndInline(t *testing.T) {
	f := extract(t, scenario, "div")
	a, err := Generate(f.snapshot, f.ext.Model, Options{}, HTMLCSS)
	if err != nil {
		t.Fatal(err)
	}
	if a.Fragment != `<div class="myCard">Hello</div>` {
		t.Errorf("fragment = %q", a.Fragment)
	}
	if strings.Contains(a.Primary, "tailwindcss") {
		t.Error("script tag kept without utility classes")
	}
	if strings.Contains(a.Auxiliary, "color: red") {
		t.Errorf("inline styles merged although disabled: %s", a.Auxiliary)
	}
}

const card = `<html><head><style>
.card { border-radius: 8px; background-color: rgb(255, 255, 255); }
.card__title { font-size: 20px; }
@media (max-width: 600px) { .card { padding: 4px; } }
</style></head><body>
<article class="card shadow-md p-6 hover:shadow-lg">
  <!-- heading -->
  <h2 class="card__title text-lg font-bold">Title</h2>
  <label for="email" class="block text-sm">Email</label>
  <input id="email" type="email" class="border rounded px-2" style="margin-top: 4px">
  <br>
  <p>Body <b>bold</b></p>
  <span class="badge">x</span><span class="badge">y</span>
</article>
</body></html>`

func TestUtilityComponentClassesAreUtilitySubset(t *testing.T) {
	f := extract(t, card, "article")
	a, err := Generate(f.snapshot, f.ext.Model, defaultOptions, UtilityComponent)
	if err != nil {
		t.Fatal(err)
	}

	attrs := regexp.MustCompile(`className="([^"]*)"`).FindAllStringSubmatch(a.Fragment, -1)
	if len(attrs) == 0 {
		t.Fatalf("no className in %s", a.Fragment)
	}
	for _, m := range attrs {
		for _, c := range strings.Fields(m[1]) {
			if !f.ext.Model.UtilityClasses.Has(c) {
				t.Errorf("class %q is not a recorded utility class", c)
			}
		}
	}
	if strings.Contains(a.Fragment, "badge") || strings.Contains(a.Fragment, "style=") {
		t.Errorf("custom class or style left in %s", a.Fragment)
	}
	if !strings.Contains(a.Fragment, "<span>x</span>") {
		t.Errorf("empty class attribute not dropped: %s", a.Fragment)
	}
}

func TestComponentJSX(t *testing.T) {
	f := extract(t, card, "article")
	a, err := Generate(f.snapshot, f.ext.Model, Options{PreserveUtilityClasses: true, IncludeInlineStyles: true, ComponentName: "Card"}, Component)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<label htmlFor="email" className="block text-sm">Email</label>`,
		`style={{ marginTop: "4px" }} />`,
		`<br />`,
		"import './Card.css';",
		"const Card = () => {",
	} {
		if !strings.Contains(a.Primary, want) {
			t.Errorf("component lacks %q:\n%s", want, a.Primary)
		}
	}
	if strings.Contains(a.Primary, "heading") {
		t.Errorf("comment kept: %s", a.Primary)
	}
	if strings.Contains(a.Primary, " class=") || strings.Contains(a.Primary, " for=") {
		t.Errorf("html attribute names left: %s", a.Primary)
	}
}

func TestJSXBooleanAttributes(t *testing.T) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(
		`<form novalidate><input type="checkbox" checked disabled="disabled" readonly>`+
			`<select multiple><option selected value="">a</option></select><details open></details></form>`), body)
	if err != nil {
		t.Fatal(err)
	}
	want := `<form noValidate><input type="checkbox" checked disabled readOnly />` +
		`<select multiple><option selected value="">a</option></select><details open></details></form>`
	if got := renderJSX(nodes[0]); got != want {
		t.Errorf("renderJSX:\n got %s\nwant %s", got, want)
	}
}

func TestHTMLCSSRoundTrip(t *testing.T) {
	f := extract(t, card, "article")
	a, err := Generate(f.snapshot, f.ext.Model, defaultOptions, HTMLCSS)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := html.Parse(strings.NewReader(a.Primary))
	if err != nil {
		t.Fatal(err)
	}
	var body, style *html.Node
	eachElement(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Body:
			body = n
		case atom.Style:
			style = n
		}
	})
	if body == nil || style == nil {
		t.Fatalf("document lacks body or style:\n%s", a.Primary)
	}

	var root *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			root = c
			break
		}
	}
	if got, want := structure(root), structure(f.snapshot); got != want {
		t.Errorf("structure after round trip:\n%s\nwant\n%s", got, want)
	}

	sheet, err := css.ParseStylesheet(style.FirstChild.Data)
	if err != nil {
		t.Fatal(err)
	}
	want := f.ext.Model.MergedRules()
	var nonEmpty []css.Rule
	for _, r := range want {
		if r.Declarations.Len() > 0 {
			nonEmpty = append(nonEmpty, r)
		}
	}
	if len(sheet.Rules) != len(nonEmpty) {
		t.Fatalf("rules = %d, want %d", len(sheet.Rules), len(nonEmpty))
	}
	for i, r := range sheet.Rules {
		if r.Selector != nonEmpty[i].Selector || r.Declarations.String() != nonEmpty[i].Declarations.String() {
			t.Errorf("rule %d = %s { %s }, want %s { %s }", i, r.Selector, r.Declarations, nonEmpty[i].Selector, nonEmpty[i].Declarations)
		}
	}
	if len(sheet.Media) != 1 || sheet.Media[0].Query != "(max-width: 600px)" {
		t.Errorf("media = %+v", sheet.Media)
	}
}

// structure lists tag names and class attributes in pre-order.
func structure(n *html.Node) string {
	var sb strings.Builder
	eachElement(n, func(e *html.Node) {
		class, _ := getAttr(e, "class")
		sb.WriteString(e.Data + "[" + class + "] ")
	})
	return sb.String()
}

func TestFormatHTML(t *testing.T) {
	in := `<div class="a"><p>Hi</p><br/><img src="x"/><!-- c --><ul><li>one</li><li><a href="#">two</a></li></ul><span>t</span></div>`
	want := `<div class="a">
  <p>Hi</p>
  <br/>
  <img src="x"/>
  <!-- c -->
  <ul>
    <li>one</li>
    <li>
      <a href="#">two</a>
    </li>
  </ul>
  <span>t</span>
</div>`
	if got := FormatHTML(in); got != want {
		t.Errorf("FormatHTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatHTMLIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		`<div><p>a</p></div>`,
		"<div>\n   <span>x</span>\n\n</div>",
		`<section><input type="text"><br><hr/></section>`,
		`<p>unclosed<div><b>x</b>`,
		`</div></div><p>stray closes</p>`,
		`<div className="x" style={{ width: "1px" }}><Foo bar={a > b} /></div>`,
		`<div title="a > b"><span>1</span>text<em>2</em></div>`,
		"<div\n  class=\"multi-line\">x</div>",
	}
	for _, in := range inputs {
		once := FormatHTML(in)
		if twice := FormatHTML(once); twice != once {
			t.Errorf("not idempotent for %q:\nonce:\n%s\ntwice:\n%s", in, once, twice)
		}
	}
}

func TestStyleObject(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"color: red", `{{ color: "red" }}`},
		{"background-color: #fff; margin: 0 auto", `{{ backgroundColor: "#fff", margin: "0 auto" }}`},
		{`--brand: blue; font-family: "Inter"`, `{{ "--brand": "blue", fontFamily: "\"Inter\"" }}`},
	}
	for _, tt := range tests {
		if got := StyleObject(tt.in); got != tt.want {
			t.Errorf("StyleObject(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTailwindConfig(t *testing.T) {
	got, err := TailwindConfig([]string{"flex", "p-4"})
	if err != nil {
		t.Fatal(err)
	}
	want := `module.exports = {
  "content": [
    "./src/**/*.{js,jsx,ts,tsx}"
  ],
  "theme": {
    "extend": {}
  },
  "plugins": [],
  "safelist": [
    "flex",
    "p-4"
  ]
};
`
	if got != want {
		t.Errorf("TailwindConfig() =\n%s\nwant\n%s", got, want)
	}

	empty, _ := TailwindConfig(nil)
	if strings.Contains(empty, "safelist") {
		t.Errorf("empty safelist rendered: %s", empty)
	}
}

func TestFilenames(t *testing.T) {
	at := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	tests := map[Format]string{
		HTMLCSS:          "component-2024-03-09.html",
		Component:        "Component-2024-03-09.jsx",
		UtilityComponent: "TailwindComponent-2024-03-09.jsx",
		Standalone:       "component-inline-2024-03-09.html",
		CSS:              "styles-2024-03-09.css",
	}
	for f, want := range tests {
		if got := Filename(f, at); got != want {
			t.Errorf("Filename(%s) = %q, want %q", f, got, want)
		}
		if !strings.HasSuffix(want, Extension(f)) {
			t.Errorf("Extension(%s) = %q", f, Extension(f))
		}
	}

	if got := SanitizeFilename("  My Card -- (v2)!  "); got != "my_card_v2" {
		t.Errorf("SanitizeFilename() = %q", got)
	}

	aux := map[Format]string{
		HTMLCSS:          "Card.css",
		Component:        "Card.css",
		UtilityComponent: "tailwind.config.js",
		Standalone:       "",
		CSS:              "",
	}
	for f, want := range aux {
		if got := AuxiliaryFilename(f, "Card"); got != want {
			t.Errorf("AuxiliaryFilename(%s) = %q, want %q", f, got, want)
		}
	}
	if got := AuxiliaryFilename(Component, ""); got != DefaultComponentName+".css" {
		t.Errorf("AuxiliaryFilename() default = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%s) = %s, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat(pdf) succeeded")
	}
}
