package extractor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"golang.org/x/net/html"
)

func parse(t *testing.T, markup string) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.ParseString(markup, dom.ParseOptions{URL: "https://example.com/"})
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func query(t *testing.T, doc *dom.HTMLDocument, sel string) *dom.Element {
	t.Helper()
	el, err := doc.Query(sel)
	if err != nil || el == nil {
		t.Fatalf("Query(%q) = %v, %v", sel, el, err)
	}
	return el
}

func TestExtractScenario(t *testing.T) {
	doc := parse(t, `<html><body><div class="flex p-4 myCard" style="color: red">Hello</div></body></html>`)

	ext, err := New(nil).Extract(query(t, doc, "div"))
	if err != nil {
		t.Fatal(err)
	}
	m := ext.Model

	if got := m.UtilityClasses.Items(); !reflect.DeepEqual(got, []string{"flex", "p-4"}) {
		t.Errorf("UtilityClasses = %v", got)
	}
	if len(m.CustomRules) != 1 || m.CustomRules[0].Selector != "div.myCard" {
		t.Fatalf("CustomRules = %+v", m.CustomRules)
	}
	if m.CustomRules[0].Declarations.Has("color") {
		t.Errorf("computed color recorded next to the inline one: %s", m.CustomRules[0].Declarations)
	}
	if got := m.InlineStyles["div.myCard"].String(); got != "color: red" {
		t.Errorf("InlineStyles = %q", got)
	}
	if len(m.InlineStyles) != 1 {
		t.Errorf("InlineStyles has %d keys", len(m.InlineStyles))
	}

	merged := m.CustomCSS(true)
	if !strings.Contains(merged, "div.myCard {") || !strings.Contains(merged, "color: red;") {
		t.Errorf("merged css = %s", merged)
	}
	if strings.Contains(m.CustomCSS(false), "color") {
		t.Errorf("unmerged css has inline color: %s", m.CustomCSS(false))
	}
}

func TestExtractSubtree(t *testing.T) {
	doc := parse(t, `<html><head>
<link rel="stylesheet" href="https://cdn.other.net/x.css">
<style>
.card { border-radius: 8px; }
.card__title { font-size: 20px; }
@media (max-width: 600px) {
  .card { padding: 4px; }
  .unrelated { color: blue; }
}
@media print {
  .unrelated { color: black; }
}
@media (min-width: 1024px) {
  .missing { padding: 6px; }
  .card__title { font-size: 28px; }
}
</style></head>
<body>
<article id="post" class="card shadow-md">
  <h2 class="card__title text-lg">Title</h2>
  <p class="mt-2">Body</p>
  <span>plain</span>
</article>
</body></html>`)

	var warnings []string
	ext, err := New(loggerFunc(func(f string, a ...any) { warnings = append(warnings, fmt.Sprintf(f, a...)) })).Extract(query(t, doc, "article"))
	if err != nil {
		t.Fatal(err)
	}
	m := ext.Model

	if len(ext.Nodes) != 4 {
		t.Errorf("Nodes = %d, want 4", len(ext.Nodes))
	}
	if got := m.UtilityClasses.Items(); !reflect.DeepEqual(got, []string{"shadow-md", "text-lg", "mt-2"}) {
		t.Errorf("UtilityClasses = %v", got)
	}

	var selectors []string
	for _, r := range m.CustomRules {
		selectors = append(selectors, r.Selector)
	}
	if !reflect.DeepEqual(selectors, []string{"article#post", "h2.card__title"}) {
		t.Errorf("rule selectors = %v", selectors)
	}
	if v, _ := m.CustomRules[0].Declarations.Get("border-radius"); v != "8px" {
		t.Errorf("article border-radius = %q", v)
	}
	if len(ext.Keys) != 2 {
		t.Errorf("keys assigned to %d nodes, want 2", len(ext.Keys))
	}

	blocks := m.MediaRules.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("media blocks = %+v", blocks)
	}
	if blocks[0].Query != "(max-width: 600px)" || len(blocks[0].Rules) != 1 || blocks[0].Rules[0].Selector != ".card" {
		t.Errorf("first media block = %+v", blocks[0])
	}
	if blocks[1].Query != "(min-width: 1024px)" || len(blocks[1].Rules) != 1 || blocks[1].Rules[0].Selector != ".card__title" {
		t.Errorf("second media block = %+v", blocks[1])
	}

	if len(ext.Skipped) != 1 || !errors.Is(ext.Skipped[0], dom.ErrInaccessible) {
		t.Errorf("Skipped = %v", ext.Skipped)
	}
	if !IsPartial(ext.Skipped[0]) {
		t.Error("IsPartial() = false")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "cdn.other.net") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestExtractCollisionGroup(t *testing.T) {
	// identical custom class lists share one key.
	doc := parse(t, `<html><head><style>
li:first-child { color: blue; }
li:last-child { letter-spacing: 2px; color: green; }
</style></head><body><ul>
<li class="item">a</li>
<li class="item" style="font-size: 10px">b</li>
</ul></body></html>`)

	ext, err := New(nil).Extract(query(t, doc, "ul"))
	if err != nil {
		t.Fatal(err)
	}
	m := ext.Model
	if len(m.CustomRules) != 1 {
		t.Fatalf("CustomRules = %+v", m.CustomRules)
	}
	decls := m.CustomRules[0].Declarations
	if v, _ := decls.Get("color"); v != "blue" {
		t.Errorf("first node value should win, color = %q", v)
	}
	if v, _ := decls.Get("letter-spacing"); v != "2px" {
		t.Errorf("missing values are added, letter-spacing = %q", v)
	}
	if got := m.InlineStyles["li.item"].String(); got != "font-size: 10px" {
		t.Errorf("InlineStyles = %q", got)
	}
}

func TestExtractDetached(t *testing.T) {
	doc := parse(t, `<html><body><div class="box"><p>x</p></div></body></html>`)
	div := query(t, doc, "div")
	div.Detach()

	_, err := New(nil).Extract(div)
	if !errors.Is(err, dom.ErrDetached) {
		t.Fatalf("err = %v, want ErrDetached", err)
	}
}

func TestDefaultSuppression(t *testing.T) {
	n := &fakeNode{
		tag:     "span",
		classes: []string{"badge"},
		computed: css.NewDeclarations(
			css.Declaration{Property: "display", Value: "inline"},
			css.Declaration{Property: "margin", Value: "0px"},
			css.Declaration{Property: "opacity", Value: "0.5"},
		),
	}

	ext, err := New(nil).Extract(n)
	if err != nil {
		t.Fatal(err)
	}
	got := ext.Model.CustomRules[0].Declarations
	if got.Has("display") || got.Has("margin") {
		t.Errorf("defaults kept: %s", got)
	}
	if v, _ := got.Get("opacity"); v != "0.5" {
		t.Errorf("opacity = %q, want 0.5", v)
	}
}

func TestInheritedResetKept(t *testing.T) {
	doc := parse(t, `<html><head><style>
.wrap { white-space: nowrap; line-height: 2 }
.inner { white-space: normal; line-height: normal }
</style></head><body><div class="wrap"><p class="inner">text</p></div></body></html>`)

	ext, err := New(nil).Extract(query(t, doc, "div"))
	if err != nil {
		t.Fatal(err)
	}
	var inner css.Declarations
	for _, r := range ext.Model.CustomRules {
		if r.Selector == "p.inner" {
			inner = r.Declarations
		}
	}
	for _, p := range []string{"white-space", "line-height"} {
		if v, _ := inner.Get(p); v != "normal" {
			t.Errorf("p.inner %s = %q, want normal (rules: %+v)", p, v, ext.Model.CustomRules)
		}
	}
}

func TestMergedRulesInlineOnly(t *testing.T) {
	m := &StyleModel{
		CustomRules: []css.Rule{{Selector: "a.x", Declarations: css.NewDeclarations(css.Declaration{Property: "color", Value: "blue"})}},
		InlineStyles: map[string]css.Declarations{
			"a.x":   css.NewDeclarations(css.Declaration{Property: "color", Value: "red"}),
			"b#top": css.NewDeclarations(css.Declaration{Property: "margin", Value: "1px"}),
		},
	}
	rules := m.MergedRules()
	if len(rules) != 2 {
		t.Fatalf("rules = %+v", rules)
	}
	if v, _ := rules[0].Declarations.Get("color"); v != "red" {
		t.Errorf("inline should win, got %q", v)
	}
	if rules[1].Selector != "b#top" {
		t.Errorf("inline-only rule = %q", rules[1].Selector)
	}
	if v, _ := m.CustomRules[0].Declarations.Get("color"); v != "blue" {
		t.Errorf("MergedRules mutated the model")
	}
}

type loggerFunc func(format string, args ...any)

func (f loggerFunc) Warnf(format string, args ...any) { f(format, args...) }

// fakeNode is a detached-from-html node with a fixed computed style.
type fakeNode struct {
	tag      string
	id       string
	classes  []string
	style    string
	attrs    []html.Attribute
	computed css.Declarations
	children []dom.Node
}

func (n *fakeNode) TagName() string { return n.tag }

func (n *fakeNode) ID() string { return n.id }

func (n *fakeNode) ClassList() []string { return n.classes }

func (n *fakeNode) StyleText() string { return n.style }

func (n *fakeNode) Attributes() []html.Attribute { return n.attrs }

func (n *fakeNode) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (n *fakeNode) SetAttr(name, value string) error {
	n.attrs = append(n.attrs, html.Attribute{Key: name, Val: value})
	return nil
}

func (n *fakeNode) Parent() (dom.Node, error) { return nil, nil }

func (n *fakeNode) Children() ([]dom.Node, error) { return n.children, nil }

func (n *fakeNode) ComputedStyle() (css.Declarations, error) { return n.computed.Clone(), nil }

func (n *fakeNode) Matches(string) (bool, error) { return false, nil }

func (n *fakeNode) Snapshot() (*html.Node, error) {
	return &html.Node{Type: html.ElementNode, Data: n.tag}, nil
}

func (n *fakeNode) Attached() (bool, error) { return true, nil }

func (n *fakeNode) Document() dom.Document { return nil }
