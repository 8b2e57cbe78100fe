package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a DOM element of a loaded page. Tag and attributes are read
// once when the element is wrapped; SetAttr keeps that copy current.
type Element struct {
	page  *Page
	el    *rod.Element
	tag   string
	attrs []html.Attribute
}

var _ dom.Node = (*Element)(nil)

const describeJS = `() => JSON.stringify({
	tag: this.tagName.toLowerCase(),
	attrs: Array.from(this.attributes).map(a => [a.name, a.value]),
})`

type elementInfo struct {
	Tag   string      `json:"tag"`
	Attrs [][2]string `json:"attrs"`
}

func (p *Page) wrap(el *rod.Element) (*Element, error) {
	var info elementInfo
	if err := evalJSON(el.Eval, &info, describeJS); err != nil {
		return nil, fmt.Errorf("browser: describe element: %w", err)
	}
	return newElement(p, el, info), nil
}

func newElement(p *Page, el *rod.Element, info elementInfo) *Element {
	e := &Element{page: p, el: el, tag: strings.ToLower(info.Tag)}
	e.attrs = make([]html.Attribute, 0, len(info.Attrs))
	for _, kv := range info.Attrs {
		e.attrs = append(e.attrs, html.Attribute{Key: kv[0], Val: kv[1]})
	}
	return e
}

func (e *Element) TagName() string { return e.tag }

func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return strings.TrimSpace(v)
}

func (e *Element) ClassList() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *Element) StyleText() string {
	v, _ := e.Attr("style")
	return v
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) Attributes() []html.Attribute {
	out := make([]html.Attribute, len(e.attrs))
	copy(out, e.attrs)
	return out
}

func (e *Element) SetAttr(name, value string) error {
	if _, err := e.el.Eval(`(n, v) => this.setAttribute(n, v)`, name, value); err != nil {
		return fmt.Errorf("browser: set %s on %s: %w", name, dom.Describe(e), err)
	}
	for i, a := range e.attrs {
		if a.Key == name {
			e.attrs[i].Val = value
			return nil
		}
	}
	e.attrs = append(e.attrs, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) Parent() (dom.Node, error) {
	res, err := e.el.Eval(`() => this.parentElement !== null`)
	if err != nil {
		return nil, fmt.Errorf("browser: parent of %s: %w", dom.Describe(e), err)
	}
	if !res.Value.Bool() {
		return nil, nil
	}
	parent, err := e.el.Parent()
	if err != nil {
		return nil, fmt.Errorf("browser: parent of %s: %w", dom.Describe(e), err)
	}
	return e.page.wrap(parent)
}

func (e *Element) Children() ([]dom.Node, error) {
	els, err := e.el.Elements(":scope > *")
	if err != nil {
		return nil, fmt.Errorf("browser: children of %s: %w", dom.Describe(e), err)
	}
	out := make([]dom.Node, 0, len(els))
	for _, c := range els {
		child, err := e.page.wrap(c)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// The listed properties come first, in order, so the presentational ones
// keep the allow-list order; every other longhand follows.
const computedJS = `(props) => {
	const cs = getComputedStyle(this);
	const seen = new Set();
	const out = [];
	for (const p of props) {
		out.push([p, cs.getPropertyValue(p)]);
		seen.add(p);
	}
	for (let i = 0; i < cs.length; i++) {
		const p = cs[i];
		if (!seen.has(p)) out.push([p, cs.getPropertyValue(p)]);
	}
	return JSON.stringify(out);
}`

func (e *Element) ComputedStyle() (css.Declarations, error) {
	if err := e.ensureAttached(); err != nil {
		return css.Declarations{}, err
	}
	var pairs [][2]string
	if err := evalJSON(e.el.Eval, &pairs, computedJS, css.Presentational); err != nil {
		return css.Declarations{}, fmt.Errorf("browser: computed style of %s: %w", dom.Describe(e), err)
	}
	return declarationsFromPairs(pairs), nil
}

func declarationsFromPairs(pairs [][2]string) css.Declarations {
	var d css.Declarations
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		d.Set(kv[0], kv[1])
	}
	return d
}

// Matches reports whether the element matches selector. A selector the page
// rejects is an error.
func (e *Element) Matches(selector string) (bool, error) {
	res, err := e.el.Eval(`(s) => this.matches(s)`, selector)
	if err != nil {
		return false, fmt.Errorf("browser: match %q: %w", selector, err)
	}
	return res.Value.Bool(), nil
}

func (e *Element) Snapshot() (*html.Node, error) {
	if err := e.ensureAttached(); err != nil {
		return nil, err
	}
	var out struct {
		HTML   string `json:"html"`
		Parent string `json:"parent"`
	}
	const js = `() => JSON.stringify({
		html: this.outerHTML,
		parent: this.parentElement ? this.parentElement.tagName.toLowerCase() : "",
	})`
	if err := evalJSON(e.el.Eval, &out, js); err != nil {
		return nil, fmt.Errorf("browser: snapshot %s: %w", dom.Describe(e), err)
	}
	return parseOuterHTML(out.HTML, e.tag, out.Parent)
}

// parseOuterHTML parses the markup of one element in the context of its
// parent, so table rows and list items keep their structure.
func parseOuterHTML(markup, tag, parentTag string) (*html.Node, error) {
	if tag == "html" {
		doc, err := html.Parse(strings.NewReader(markup))
		if err != nil {
			return nil, fmt.Errorf("browser: parse snapshot: %w", err)
		}
		if root := firstElement(doc); root != nil {
			root.Parent.RemoveChild(root)
			return root, nil
		}
		return nil, fmt.Errorf("browser: empty snapshot of <html>")
	}

	if parentTag == "" || parentTag == "html" {
		parentTag = "body"
	}
	parent := &html.Node{
		Type:     html.ElementNode,
		Data:     parentTag,
		DataAtom: atom.Lookup([]byte(parentTag)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("browser: parse snapshot: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.Data == tag {
			return n, nil
		}
	}
	return nil, fmt.Errorf("browser: snapshot of <%s> has no element", tag)
}

func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func (e *Element) Attached() (bool, error) {
	res, err := e.el.Eval(`() => this.isConnected`)
	if err != nil {
		return false, fmt.Errorf("browser: check %s: %w", dom.Describe(e), err)
	}
	return res.Value.Bool(), nil
}

func (e *Element) ensureAttached() error {
	ok, err := e.Attached()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", dom.Describe(e), dom.ErrDetached)
	}
	return nil
}

func (e *Element) Document() dom.Document { return e.page }

type evalFunc func(js string, params ...interface{}) (*proto.RuntimeRemoteObject, error)

// evalJSON runs a script that returns JSON.stringify output and decodes it
// into v.
func evalJSON(eval evalFunc, v any, js string, params ...any) error {
	res, err := eval(js, params...)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(res.Value.Str()), v)
}

// SameNode reports whether other wraps the same DOM element. Wrappers are
// created per lookup, so pointer equality is not enough.
func (e *Element) SameNode(other dom.Node) bool {
	o, ok := other.(*Element)
	if !ok {
		return false
	}
	res, err := e.el.Eval(`(o) => this === o`, o.el.Object)
	return err == nil && res.Value.Bool()
}
