package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/kataras/markup-extractor/pkg/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The static cascade applies, in order: inherited values from the parent, the
// tag's user-agent defaults, every matching rule in source order, important
// declarations in source order and finally the style attribute. Specificity
// is ignored and @media blocks are not applied.

type cascadeRule struct {
	selector cascadia.Selector
	decls    css.Declarations
}

func compileRule(r css.Rule) cascadeRule {
	sel, err := cascadia.Compile(r.Selector)
	if err != nil {
		return cascadeRule{decls: r.Declarations}
	}
	return cascadeRule{selector: sel, decls: r.Declarations}
}

func (d *HTMLDocument) computed(n *html.Node) css.Declarations {
	if s, ok := d.styles[n]; ok {
		return s
	}
	d.loadSheets()

	var out css.Declarations
	if p := n.Parent; p != nil && p.Type == html.ElementNode {
		parent := d.computed(p)
		for _, prop := range css.Inherited {
			if v, ok := parent.Get(prop); ok {
				out.Set(prop, v)
			}
		}
	}
	for _, def := range tagDefaults(n) {
		out.Set(def.Property, def.Value)
	}

	var important []css.Declaration
	for _, r := range d.cascade {
		if r.selector == nil || !r.selector.Match(n) {
			continue
		}
		for _, decl := range r.decls.Items() {
			if v, ok := strings.CutSuffix(decl.Value, "!important"); ok {
				important = append(important, css.Declaration{Property: decl.Property, Value: strings.TrimSpace(v)})
				continue
			}
			out.Set(decl.Property, decl.Value)
		}
	}
	for _, decl := range important {
		out.Set(decl.Property, decl.Value)
	}

	style, _ := attr(n, "style")
	for _, decl := range css.ParseInline(style).Items() {
		out.Set(decl.Property, decl.Value)
	}

	d.styles[n] = out
	return out
}

func tagDefaults(n *html.Node) []css.Declaration {
	var out []css.Declaration
	if display := defaultDisplay(n.DataAtom); display != "inline" {
		out = append(out, css.Declaration{Property: "display", Value: display})
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.B, atom.Strong, atom.Th:
		out = append(out, css.Declaration{Property: "font-weight", Value: "700"})
	case atom.Em, atom.I, atom.Cite:
		out = append(out, css.Declaration{Property: "font-style", Value: "italic"})
	}
	return out
}

func defaultDisplay(a atom.Atom) string {
	switch a {
	case atom.Html, atom.Body, atom.Div, atom.P, atom.Section, atom.Article,
		atom.Header, atom.Footer, atom.Main, atom.Nav, atom.Aside, atom.Form,
		atom.Fieldset, atom.Figure, atom.Figcaption, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Ul, atom.Ol,
		atom.Dl, atom.Dt, atom.Dd, atom.Hr, atom.Address, atom.Details, atom.Summary:
		return "block"
	case atom.Li:
		return "list-item"
	case atom.Table:
		return "table"
	case atom.Tr:
		return "table-row"
	case atom.Td, atom.Th:
		return "table-cell"
	case atom.Thead, atom.Tbody, atom.Tfoot:
		return "table-row-group"
	case atom.Img, atom.Button, atom.Input, atom.Select, atom.Textarea:
		return "inline-block"
	case atom.Head, atom.Script, atom.Style, atom.Link, atom.Meta, atom.Title, atom.Template:
		return "none"
	}
	return "inline"
}
