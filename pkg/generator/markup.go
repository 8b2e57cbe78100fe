package generator

import (
	"strconv"
	"strings"

	"github.com/kataras/markup-extractor/pkg/classify"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/selector"
	"golang.org/x/net/html"
)

// prepare returns a marker-free copy of the snapshot for one render.
func prepare(snapshot *html.Node) *html.Node {
	n := dom.Clone(snapshot)
	selector.StripMarkers(n)
	return n
}

// eachElement visits n and its element descendants in pre-order.
func eachElement(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		eachElement(c, fn)
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// filterClasses keeps the classes keep accepts and drops the attribute when
// none remain.
func filterClasses(root *html.Node, keep func(string) bool) {
	eachElement(root, func(n *html.Node) {
		v, ok := getAttr(n, "class")
		if !ok {
			return
		}
		var kept []string
		for _, c := range classify.Fields(v) {
			if keep(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			removeAttr(n, "class")
			return
		}
		setAttr(n, "class", strings.Join(kept, " "))
	})
}

func dropAttr(root *html.Node, key string) {
	eachElement(root, func(n *html.Node) { removeAttr(n, key) })
}

// dropEmptyAttrs removes class and style attributes left without content.
func dropEmptyAttrs(root *html.Node) {
	eachElement(root, func(n *html.Node) {
		for _, key := range []string{"class", "style"} {
			if v, ok := getAttr(n, key); ok && strings.TrimSpace(v) == "" {
				removeAttr(n, key)
			}
		}
	})
}

// inlineComputed writes computed[i] onto the i-th element (pre-order) as its
// style attribute and removes every class attribute. Elements past the end of
// computed keep the style they had.
func inlineComputed(root *html.Node, computed []css.Declarations) {
	i := 0
	eachElement(root, func(n *html.Node) {
		if i < len(computed) {
			if d := computed[i]; d.Len() > 0 {
				setAttr(n, "style", d.String())
			} else {
				removeAttr(n, "style")
			}
		}
		removeAttr(n, "class")
		i++
	})
}

func renderHTML(n *html.Node) (string, error) {
	return dom.Render(n)
}

// jsxAttrNames maps HTML attribute names to their JSX spelling.
var jsxAttrNames = map[string]string{
	"class":           "className",
	"for":             "htmlFor",
	"tabindex":        "tabIndex",
	"readonly":        "readOnly",
	"maxlength":       "maxLength",
	"minlength":       "minLength",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
	"autocomplete":    "autoComplete",
	"autofocus":       "autoFocus",
	"contenteditable": "contentEditable",
	"crossorigin":     "crossOrigin",
	"enctype":         "encType",
	"srcset":          "srcSet",
	"usemap":          "useMap",
	"http-equiv":      "httpEquiv",
	"accept-charset":  "acceptCharset",
	"datetime":        "dateTime",
	"spellcheck":      "spellCheck",
	"novalidate":      "noValidate",
	"frameborder":     "frameBorder",
	"allowfullscreen": "allowFullScreen",
	"cellpadding":     "cellPadding",
	"cellspacing":     "cellSpacing",
}

// booleanAttrs are HTML attributes whose presence alone means true. JSX
// writes them bare.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// JSXAttrName returns the JSX name of an HTML attribute.
func JSXAttrName(name string) string {
	if jsx, ok := jsxAttrNames[name]; ok {
		return jsx
	}
	return name
}

// StyleObject renders inline style text as the body of a JSX style object:
// {{ backgroundColor: "red", "--brand": "#fff" }}. Empty text gives "".
func StyleObject(styleText string) string {
	decls := css.ParseInline(styleText)
	if decls.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, decls.Len())
	for _, d := range decls.Items() {
		key := css.ToCamelCase(d.Property)
		if strings.HasPrefix(key, "--") {
			key = strconv.Quote(key)
		}
		parts = append(parts, key+": "+strconv.Quote(d.Value))
	}
	return "{{ " + strings.Join(parts, ", ") + " }}"
}

var jsxText = strings.NewReplacer("{", "&#123;", "}", "&#125;")

// renderJSX serializes n as JSX. Comments are dropped and void elements are
// self-closed.
func renderJSX(n *html.Node) string {
	var sb strings.Builder
	writeJSX(&sb, n)
	return sb.String()
}

func writeJSX(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if p := n.Parent; p != nil && (p.Data == "script" || p.Data == "style") {
			sb.WriteString("{" + strconv.Quote(n.Data) + "}")
			return
		}
		sb.WriteString(jsxText.Replace(html.EscapeString(n.Data)))
		return
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeJSX(sb, c)
		}
		return
	case html.ElementNode:
	default:
		return
	}

	sb.WriteString("<" + n.Data)
	for _, a := range n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		if name == "style" {
			if obj := StyleObject(a.Val); obj != "" {
				sb.WriteString(" style=" + obj)
			}
			continue
		}
		if booleanAttrs[name] {
			sb.WriteString(" " + JSXAttrName(name))
			continue
		}
		sb.WriteString(" " + JSXAttrName(name) + `="` + html.EscapeString(a.Val) + `"`)
	}

	if IsVoidElement(n.Data) {
		sb.WriteString(" />")
		return
	}
	sb.WriteString(">")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeJSX(sb, c)
	}
	sb.WriteString("</" + n.Data + ">")
}
