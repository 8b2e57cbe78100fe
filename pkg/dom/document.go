package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/kataras/markup-extractor/pkg/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleSheetLoader returns the text of the stylesheet at an absolute URL.
type StyleSheetLoader func(href string) (string, error)

// ParseOptions configures Parse.
type ParseOptions struct {
	// URL is the address the document was loaded from. Relative stylesheet
	// links resolve against it and only sheets on the same origin are read.
	URL string
	// Loader fetches linked stylesheets. Without one, linked sheets are
	// reported as inaccessible.
	Loader StyleSheetLoader
}

// HTMLDocument is an in-memory document parsed with golang.org/x/net/html.
// It is not safe for concurrent use.
type HTMLDocument struct {
	root   *html.Node
	opts   ParseOptions
	base   *url.URL
	nodes  map[*html.Node]*Element
	styles map[*html.Node]css.Declarations

	sheets      []*sheet
	sheetsReady bool
	cascade     []cascadeRule
}

var _ Document = (*HTMLDocument)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader, opts ParseOptions) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}

	d := &HTMLDocument{
		root:   root,
		opts:   opts,
		nodes:  make(map[*html.Node]*Element),
		styles: make(map[*html.Node]css.Declarations),
	}
	if opts.URL != "" {
		base, err := url.Parse(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("dom: parse document url: %w", err)
		}
		d.base = base
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ParseOptions) (*HTMLDocument, error) {
	return Parse(strings.NewReader(s), opts)
}

// URL returns the address the document was loaded from.
func (d *HTMLDocument) URL() string { return d.opts.URL }

// Title returns the text of the first <title> element.
func (d *HTMLDocument) Title() string {
	var title string
	walkHTML(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			title = strings.TrimSpace(textContent(n))
			return false
		}
		return title == ""
	})
	return title
}

// Root returns the document element (<html>).
func (d *HTMLDocument) Root() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.element(c)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *HTMLDocument) Body() *Element {
	els, _ := d.QueryAll("body")
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// Query returns the first element matching selector, or nil.
func (d *HTMLDocument) Query(selector string) (*Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	n := sel.MatchFirst(d.root)
	if n == nil {
		return nil, nil
	}
	return d.element(n), nil
}

// QueryAll returns every element matching selector in document order.
func (d *HTMLDocument) QueryAll(selector string) ([]*Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []*Element
	for _, n := range sel.MatchAll(d.root) {
		out = append(out, d.element(n))
	}
	return out, nil
}

// element returns the single wrapper of n so node identity is stable.
func (d *HTMLDocument) element(n *html.Node) *Element {
	if e, ok := d.nodes[n]; ok {
		return e
	}
	e := &Element{doc: d, n: n}
	d.nodes[n] = e
	return e
}

func (d *HTMLDocument) contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// StyleSheets returns the document's <style> and linked sheets in document
// order.
func (d *HTMLDocument) StyleSheets() ([]StyleSheet, error) {
	d.loadSheets()
	out := make([]StyleSheet, 0, len(d.sheets))
	for _, s := range d.sheets {
		out = append(out, s)
	}
	return out, nil
}

func (d *HTMLDocument) loadSheets() {
	if d.sheetsReady {
		return
	}
	d.sheetsReady = true

	walkHTML(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Style:
			d.sheets = append(d.sheets, newSheet("", textContent(n), nil))
		case atom.Link:
			if isStylesheetLink(n) {
				if href, ok := attr(n, "href"); ok && href != "" {
					d.sheets = append(d.sheets, d.linkedSheet(href))
				}
			}
		}
		return true
	})

	for _, s := range d.sheets {
		if s.err != nil {
			continue
		}
		for _, r := range s.parsed.Rules {
			d.cascade = append(d.cascade, compileRule(r))
		}
	}
}

func (d *HTMLDocument) linkedSheet(href string) *sheet {
	abs := href
	if d.base != nil {
		ref, err := url.Parse(href)
		if err != nil {
			return newSheet(href, "", fmt.Errorf("%w: %s: %v", ErrInaccessible, href, err))
		}
		u := d.base.ResolveReference(ref)
		abs = u.String()
		if !sameOrigin(d.base, u) {
			return newSheet(abs, "", fmt.Errorf("%w: %s is cross-origin", ErrInaccessible, abs))
		}
	}
	if d.opts.Loader == nil {
		return newSheet(abs, "", fmt.Errorf("%w: %s: no loader", ErrInaccessible, abs))
	}
	text, err := d.opts.Loader(abs)
	if err != nil {
		return newSheet(abs, "", fmt.Errorf("%w: %s: %v", ErrInaccessible, abs, err))
	}
	return newSheet(abs, text, nil)
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func isStylesheetLink(n *html.Node) bool {
	rel, _ := attr(n, "rel")
	for _, f := range strings.Fields(strings.ToLower(rel)) {
		if f == "stylesheet" {
			return true
		}
	}
	return false
}

type sheet struct {
	href   string
	parsed *css.Sheet
	err    error
}

func newSheet(href, text string, err error) *sheet {
	s := &sheet{href: href, err: err}
	if err != nil {
		return s
	}
	parsed, perr := css.ParseStylesheet(text)
	if perr != nil {
		s.err = fmt.Errorf("%w: %v", ErrInaccessible, perr)
		return s
	}
	s.parsed = parsed
	return s
}

func (s *sheet) Href() string { return s.href }

func (s *sheet) MediaBlocks() ([]css.MediaBlock, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.parsed.Media, nil
}

func walkHTML(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walkHTML(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
