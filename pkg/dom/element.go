package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/kataras/markup-extractor/pkg/css"
	"golang.org/x/net/html"
)

// Element is an element of an HTMLDocument.
type Element struct {
	doc *HTMLDocument
	n   *html.Node
}

var _ Node = (*Element)(nil)

// HTML returns the underlying node. It belongs to the document; use Snapshot
// for a copy that is safe to change.
func (e *Element) HTML() *html.Node { return e.n }

func (e *Element) TagName() string { return strings.ToLower(e.n.Data) }

func (e *Element) ID() string {
	v, _ := attr(e.n, "id")
	return strings.TrimSpace(v)
}

func (e *Element) ClassList() []string {
	v, _ := attr(e.n, "class")
	return strings.Fields(v)
}

func (e *Element) StyleText() string {
	v, _ := attr(e.n, "style")
	return v
}

func (e *Element) Attr(name string) (string, bool) { return attr(e.n, name) }

func (e *Element) Attributes() []html.Attribute {
	out := make([]html.Attribute, len(e.n.Attr))
	copy(out, e.n.Attr)
	return out
}

// SetAttr adds or replaces an attribute.
func (e *Element) SetAttr(name, value string) error {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return nil
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) Parent() (Node, error) {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.element(p), nil
		}
	}
	return nil, nil
}

func (e *Element) Children() ([]Node, error) {
	var out []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.element(c))
		}
	}
	return out, nil
}

func (e *Element) ComputedStyle() (css.Declarations, error) {
	if !e.doc.contains(e.n) {
		return css.Declarations{}, fmt.Errorf("%s: %w", Describe(e), ErrDetached)
	}
	return e.doc.computed(e.n).Clone(), nil
}

// Matches reports whether the element matches selector. Selectors cascadia
// cannot compile (for example ones with :hover) return an error.
func (e *Element) Matches(selector string) (bool, error) {
	sel, err := e.doc.compile(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(e.n), nil
}

func (e *Element) Snapshot() (*html.Node, error) {
	if !e.doc.contains(e.n) {
		return nil, fmt.Errorf("%s: %w", Describe(e), ErrDetached)
	}
	return Clone(e.n), nil
}

func (e *Element) Attached() (bool, error) { return e.doc.contains(e.n), nil }

func (e *Element) Document() Document { return e.doc }

// Detach removes the element from its parent.
func (e *Element) Detach() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

func (d *HTMLDocument) compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSelector, selector, err)
	}
	return sel, nil
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Render serializes n with html.Render.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return sb.String(), nil
}
