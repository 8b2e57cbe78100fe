// Package generator renders the artifacts of an extraction: HTML with its
// CSS, a JSX component, a utility-class-only JSX component, standalone
// markup with every style inlined, and the CSS text. Every function here is
// pure: the output depends only on the snapshot, the style model and the
// options.
package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kataras/markup-extractor/pkg/classify"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/extractor"
	"golang.org/x/net/html"
)

const (
	// DefaultComponentName names the generated component.
	DefaultComponentName = "ExtractedComponent"
	// DefaultTitle is the <title> of generated documents.
	DefaultTitle = "Extracted Component"
	// TailwindCDN is loaded by generated documents that use utility classes.
	TailwindCDN = "https://cdn.tailwindcss.com"
)

// Options control rendering.
type Options struct {
	// PreserveUtilityClasses keeps utility classes in the HTML and JSX markup
	// and loads the Tailwind script in the generated document.
	PreserveUtilityClasses bool
	// IncludeInlineStyles keeps style attributes in the markup and merges the
	// inline declarations into the generated CSS, where they override the
	// computed ones.
	IncludeInlineStyles bool
	// ComponentName names the JSX component. Defaults to ExtractedComponent.
	ComponentName string
	// Title is the <title> of generated documents.
	Title string
	// Computed holds, per element of the snapshot in pre-order, the
	// minimized computed style used by the Standalone format.
	Computed []css.Declarations
}

func (o Options) componentName() string {
	if o.ComponentName == "" {
		return DefaultComponentName
	}
	return o.ComponentName
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

// GenerateAll renders the given formats, or all of them when none are given.
func GenerateAll(snapshot *html.Node, model *extractor.StyleModel, opts Options, formats ...Format) (map[Format]Artifact, error) {
	if len(formats) == 0 {
		formats = Formats
	}
	out := make(map[Format]Artifact, len(formats))
	for _, f := range formats {
		a, err := Generate(snapshot, model, opts, f)
		if err != nil {
			return nil, err
		}
		out[f] = a
	}
	return out, nil
}

// Generate renders one format.
func Generate(snapshot *html.Node, model *extractor.StyleModel, opts Options, format Format) (Artifact, error) {
	if snapshot == nil {
		return Artifact{}, fmt.Errorf("generate %s: nil snapshot", format)
	}
	if model == nil {
		return Artifact{}, fmt.Errorf("generate %s: nil style model", format)
	}

	var (
		a   Artifact
		err error
	)
	switch format {
	case HTMLCSS:
		a, err = htmlCSS(snapshot, model, opts)
	case Component:
		a, err = component(snapshot, model, opts)
	case UtilityComponent:
		a, err = utilityComponent(snapshot, model, opts)
	case Standalone:
		a, err = standalone(snapshot, opts)
	case CSS:
		a = Artifact{Primary: CSSExport(model, opts.IncludeInlineStyles)}
	default:
		return Artifact{}, fmt.Errorf("generate: unknown format %q", format)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("generate %s: %w", format, err)
	}
	a.Format = format
	return a, nil
}

// StyleSheet is the CSS shipped with the HTML and JSX formats: the custom
// rules followed by the media blocks.
func StyleSheet(model *extractor.StyleModel, withInline bool) string {
	var parts []string
	if s := model.CustomCSS(withInline); s != "" {
		parts = append(parts, s)
	}
	if model.MediaRules.Len() > 0 {
		parts = append(parts, model.MediaRules.String())
	}
	return strings.Join(parts, "\n\n")
}

// CSSExport renders the CSS artifact: custom rules, a comment listing the
// utility classes in use and the media blocks.
func CSSExport(model *extractor.StyleModel, withInline bool) string {
	var sb strings.Builder
	if s := model.CustomCSS(withInline); s != "" {
		sb.WriteString("/* Custom CSS */\n" + s + "\n\n")
	}
	if model.UtilityClasses.Len() > 0 {
		sb.WriteString("/* Tailwind Classes Used */\n/*\n")
		for _, c := range model.UtilityClasses.Items() {
			sb.WriteString("  " + c + "\n")
		}
		sb.WriteString("*/\n\n")
	}
	if model.MediaRules.Len() > 0 {
		sb.WriteString("/* Media Queries */\n" + model.MediaRules.String())
	}
	return strings.TrimSpace(sb.String())
}

// markupFor applies the class and style options to a prepared copy.
func markupFor(snapshot *html.Node, opts Options) *html.Node {
	n := prepare(snapshot)
	if !opts.PreserveUtilityClasses {
		filterClasses(n, func(c string) bool { return !classify.IsUtility(c) })
	}
	if !opts.IncludeInlineStyles {
		dropAttr(n, "style")
	}
	dropEmptyAttrs(n)
	return n
}

func htmlCSS(snapshot *html.Node, model *extractor.StyleModel, opts Options) (Artifact, error) {
	raw, err := renderHTML(markupFor(snapshot, opts))
	if err != nil {
		return Artifact{}, err
	}
	fragment := FormatHTML(raw)
	sheet := StyleSheet(model, opts.IncludeInlineStyles)
	withScript := opts.PreserveUtilityClasses && model.UtilityClasses.Len() > 0

	return Artifact{
		Primary:   Document(opts.title(), fragment, sheet, withScript),
		Auxiliary: sheet,
		Fragment:  fragment,
	}, nil
}

// Document wraps a pretty-printed fragment in a complete HTML document.
func Document(title, fragment, styleSheet string, tailwind bool) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("  <title>" + html.EscapeString(title) + "</title>\n")
	if tailwind {
		sb.WriteString("  <script src=\"" + TailwindCDN + "\"></script>\n")
	}
	if styleSheet != "" {
		sb.WriteString("  <style>\n" + indentLines(styleSheet, "    ") + "\n  </style>\n")
	}
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	if fragment != "" {
		sb.WriteString(indentLines(fragment, "  ") + "\n")
	}
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")
	return sb.String()
}

func component(snapshot *html.Node, model *extractor.StyleModel, opts Options) (Artifact, error) {
	jsx := FormatHTML(renderJSX(markupFor(snapshot, opts)))
	sheet := StyleSheet(model, opts.IncludeInlineStyles)
	return Artifact{
		Primary:   ComponentModule(opts.componentName(), jsx, sheet != ""),
		Auxiliary: sheet,
		Fragment:  jsx,
	}, nil
}

func utilityComponent(snapshot *html.Node, model *extractor.StyleModel, opts Options) (Artifact, error) {
	n := prepare(snapshot)
	filterClasses(n, model.UtilityClasses.Has)
	dropAttr(n, "style")

	jsx := FormatHTML(renderJSX(n))
	config, err := TailwindConfig(model.UtilityClasses.Items())
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Primary:   ComponentModule(opts.componentName(), jsx, false),
		Auxiliary: config,
		Fragment:  jsx,
	}, nil
}

// ComponentModule wraps JSX markup in a functional component module. With
// importCSS set it imports ./<name>.css.
func ComponentModule(name, jsx string, importCSS bool) string {
	var sb strings.Builder
	sb.WriteString("import React from 'react';\n")
	if importCSS {
		sb.WriteString("import './" + name + ".css';\n")
	}
	sb.WriteString("\n")
	sb.WriteString("const " + name + " = () => {\n")
	sb.WriteString("  return (\n")
	sb.WriteString(indentLines(jsx, "    ") + "\n")
	sb.WriteString("  );\n")
	sb.WriteString("};\n")
	sb.WriteString("\n")
	sb.WriteString("export default " + name + ";\n")
	return sb.String()
}

type tailwindConfig struct {
	Content  []string       `json:"content"`
	Theme    map[string]any `json:"theme"`
	Plugins  []string       `json:"plugins"`
	Safelist []string       `json:"safelist,omitempty"`
}

// TailwindConfig renders a tailwind.config.js module whose safelist holds the
// given classes.
func TailwindConfig(classes []string) (string, error) {
	cfg := tailwindConfig{
		Content:  []string{"./src/**/*.{js,jsx,ts,tsx}"},
		Theme:    map[string]any{"extend": map[string]any{}},
		Plugins:  []string{},
		Safelist: classes,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("tailwind config: %w", err)
	}
	return "module.exports = " + string(data) + ";\n", nil
}

func standalone(snapshot *html.Node, opts Options) (Artifact, error) {
	n := prepare(snapshot)
	inlineComputed(n, opts.Computed)
	dropEmptyAttrs(n)

	raw, err := renderHTML(n)
	if err != nil {
		return Artifact{}, err
	}
	fragment := FormatHTML(raw)
	return Artifact{
		Primary:  Document(opts.title(), fragment, "", false),
		Fragment: fragment,
	}, nil
}
