package markupextractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/picker"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) Infof(f string, a ...any)  { l.lines = append(l.lines, "INFO "+fmt.Sprintf(f, a...)) }
func (l *testLogger) Warnf(f string, a ...any)  { l.lines = append(l.lines, "WARN "+fmt.Sprintf(f, a...)) }
func (l *testLogger) Errorf(f string, a ...any) { l.lines = append(l.lines, "ERROR "+fmt.Sprintf(f, a...)) }

func mustQuery(t *testing.T, markup, sel string) *dom.Element {
	t.Helper()
	doc, err := dom.ParseString(markup, dom.ParseOptions{URL: "https://example.com/page"})
	if err != nil {
		t.Fatal(err)
	}
	el, err := doc.Query(sel)
	if err != nil {
		t.Fatal(err)
	}
	return el
}

func TestExtract(t *testing.T) {
	root := mustQuery(t, `<html><head><title>Landing</title></head><body>
<div class="flex p-4 myCard" style="color: red">Hello</div></body></html>`, "div")

	log := &testLogger{}
	opts := DefaultOptions()
	opts.Logger = log

	result, err := Extract(root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := result.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	want := ElementSummary{
		TagName: "div",
		Classes: []string{"flex", "p-4", "myCard"},
		Attributes: []Attribute{
			{Name: "class", Value: "flex p-4 myCard"},
			{Name: "style", Value: "color: red"},
		},
		Text: "Hello",
	}
	if !reflect.DeepEqual(result.Element, want) {
		t.Errorf("Element = %+v, want %+v", result.Element, want)
	}
	if result.URL != "https://example.com/page" || result.Title != "Landing" {
		t.Errorf("URL/Title = %q/%q", result.URL, result.Title)
	}
	if result.RawHTML != `<div class="flex p-4 myCard" style="color: red">Hello</div>` {
		t.Errorf("RawHTML = %q", result.RawHTML)
	}
	if len(result.Artifacts) != len(generator.Formats) {
		t.Errorf("got %d artifacts", len(result.Artifacts))
	}
	if got := result.Model.UtilityClasses.Items(); !reflect.DeepEqual(got, []string{"flex", "p-4"}) {
		t.Errorf("UtilityClasses = %v", got)
	}

	inline := result.Artifacts[generator.Standalone].Fragment
	if inline != `<div style="display: block; color: red">Hello</div>` {
		t.Errorf("standalone fragment = %q", inline)
	}
	if !strings.Contains(result.Report, "div.flex.p-4.myCard") {
		t.Errorf("report does not name the element:\n%s", result.Report)
	}
	if len(log.lines) == 0 {
		t.Error("nothing was logged")
	}
}

func TestStandaloneKeepsInheritedReset(t *testing.T) {
	root := mustQuery(t, `<html><head><style>
.wrap { white-space: nowrap; line-height: 2 }
.inner { white-space: normal; line-height: normal }
</style></head><body><div class="wrap"><p class="inner">text</p></div></body></html>`, "div")

	opts := DefaultOptions()
	opts.Formats = []generator.Format{generator.Standalone, generator.HTMLCSS}
	result, err := Extract(root, opts)
	if err != nil {
		t.Fatal(err)
	}
	inline := result.Artifacts[generator.Standalone].Fragment
	if !strings.Contains(inline, `<p style="display: block; line-height: normal; white-space: normal">text</p>`) {
		t.Errorf("standalone fragment lost the reset:\n%s", inline)
	}
	if cssText := result.Artifacts[generator.HTMLCSS].Auxiliary; !strings.Contains(cssText, "white-space: normal;") {
		t.Errorf("css lost the reset:\n%s", cssText)
	}
}

func TestExtractFormats(t *testing.T) {
	root := mustQuery(t, `<html><body><section class="hero"><h1>Hi</h1></section></body></html>`, "section")

	opts := DefaultOptions()
	opts.Formats = []generator.Format{generator.Component, generator.CSS}
	result, err := Extract(root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("artifacts = %v", result.Artifacts)
	}
	if _, ok := result.Artifacts[generator.HTMLCSS]; ok {
		t.Error("unrequested format generated")
	}
}

func TestExtractDetached(t *testing.T) {
	root := mustQuery(t, `<html><body><div class="card">x</div></body></html>`, "div")
	root.Detach()

	result, err := Extract(root, DefaultOptions())
	if !errors.Is(err, dom.ErrDetached) {
		t.Fatalf("expected ErrDetached, got %v", err)
	}
	if result != nil {
		t.Error("a result was returned with the error")
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	page := `<html><head>
<link rel="stylesheet" href="style.css">
</head><body>
<ul class="menu"><li class="entry">one</li><li class="entry active">two</li></ul>
</body></html>`
	sheet := `.menu { list-style: none; }
@media (max-width: 600px) { .entry { padding: 2px; } }`
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(sheet), 0644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.File = filepath.Join(dir, "page.html")
	opts.Selector = "li"
	opts.Walk = []string{"ArrowUp"}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.Element.Label() != "ul.menu" {
		t.Errorf("picked %q", result.Element.Label())
	}
	if !strings.HasPrefix(result.URL, "file://") {
		t.Errorf("URL = %q", result.URL)
	}
	rules, ok := result.Model.MediaRules.Get("(max-width: 600px)")
	if !ok || len(rules) != 1 || rules[0].Selector != ".entry" {
		t.Errorf("media rules = %+v", result.Model.MediaRules.Blocks())
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestRunNoSource(t *testing.T) {
	if _, err := Run(context.Background(), DefaultOptions()); err == nil {
		t.Fatal("expected an error without a source")
	}

	opts := DefaultOptions()
	opts.URL = "https://example.com"
	opts.File = "page.html"
	if _, err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected an error with two sources")
	}
}

func TestExtractDocumentNoMatch(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p>x</p></body></html>`, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Selector = "#missing"
	if _, err := ExtractDocument(doc, opts); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestExtractDocumentBadSelector(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div>x</div></body></html>`, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Selector = "div[[["
	if _, err := ExtractDocument(doc, opts); !errors.Is(err, dom.ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector, got %v", err)
	}
}

// orphanNode fails to reach its parent.
type orphanNode struct{ dom.Node }

func (orphanNode) Parent() (dom.Node, error) { return nil, dom.ErrDetached }

func TestWalkFailure(t *testing.T) {
	el := mustQuery(t, `<html><body><p class="lead">x</p></body></html>`, "p")
	opts := DefaultOptions()
	opts.Walk = []string{picker.KeyUp}
	_, err := walk(orphanNode{el}, opts)
	if !errors.Is(err, ErrWalk) || !errors.Is(err, dom.ErrDetached) {
		t.Fatalf("expected a walk error wrapping ErrDetached, got %v", err)
	}

	opts.Walk = []string{picker.KeyUp, picker.KeyUp, picker.KeyUp, picker.KeyUp}
	root, err := walk(el, opts)
	if err != nil {
		t.Fatal(err)
	}
	if root.TagName() != "html" {
		t.Errorf("walking past the root ended on %q, want html", root.TagName())
	}
}

func TestExtractDocumentPick(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><ul><li class="a">one</li><li class="b">two</li></ul></body></html>`, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var from string
	opts := DefaultOptions()
	opts.Formats = []generator.Format{generator.Standalone}
	opts.Selector = "li.a"
	opts.Walk = []string{picker.KeyUp}
	opts.Pick = func(start dom.Node) (dom.Node, error) {
		from = start.TagName()
		children, err := start.Children()
		if err != nil {
			return nil, err
		}
		return children[1], nil
	}
	result, err := ExtractDocument(doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if from != "ul" {
		t.Errorf("pick started from %q, want ul", from)
	}
	if got := result.Element.Label(); got != "li.b" {
		t.Errorf("extracted %q, want li.b", got)
	}

	cancel := errors.New("cancelled")
	opts.Pick = func(dom.Node) (dom.Node, error) { return nil, cancel }
	if _, err := ExtractDocument(doc, opts); !errors.Is(err, cancel) {
		t.Fatalf("expected the pick error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	var r *Result
	var verr *ValidationError
	if err := r.Validate(); !errors.As(err, &verr) {
		t.Fatalf("nil result: %v", err)
	}

	err := (&Result{RawHTML: "  "}).Validate()
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := []string{"element.tagName", "html", "styles", "exports"}
	if !reflect.DeepEqual(verr.Missing, want) {
		t.Errorf("Missing = %v, want %v", verr.Missing, want)
	}
	if !strings.Contains(err.Error(), "element.tagName, html") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestPreviewText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<div><b>Hello</b>   <i>world</i></div>`, "Hello world"},
		{`<p>Fish &amp; chips</p>`, "Fish & chips"},
		{`<div><script>alert(1)</script>Safe</div>`, "Safe"},
		{"<p>" + strings.Repeat("a", 130) + "</p>", strings.Repeat("a", 117) + "..."},
	}
	for _, tt := range tests {
		if got := PreviewText(tt.in); got != tt.want {
			t.Errorf("PreviewText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
