package extractor

import (
	"github.com/kataras/markup-extractor/pkg/classify"
	"github.com/kataras/markup-extractor/pkg/css"
)

// StyleModel is everything one extraction pass learned about the styling of
// a subtree. It holds no reference back into the live document.
//
// Every class in UtilityClasses classifies as a utility class. Selector keys
// in CustomRules and InlineStyles come from the selector package and are
// unique inside one pass.
type StyleModel struct {
	// UtilityClasses is the set of utility classes seen on any visited node,
	// in first-seen order.
	UtilityClasses classify.Set `json:"utilityClasses" yaml:"utilityClasses"`
	// CustomRules holds the minimized computed declarations of every node that
	// carries a custom class or an inline style, in traversal order.
	// Properties also present in the node's inline style are left out.
	CustomRules []css.Rule `json:"customRules" yaml:"customRules"`
	// InlineStyles maps a selector key to the node's parsed style attribute.
	InlineStyles map[string]css.Declarations `json:"inlineStyles" yaml:"inlineStyles"`
	// MediaRules holds the @media scoped rules that match a visited node.
	MediaRules css.MediaRules `json:"mediaRules" yaml:"mediaRules"`
}

// Rule returns the custom rule recorded under selector.
func (m *StyleModel) Rule(selector string) (css.Rule, bool) {
	for _, r := range m.CustomRules {
		if r.Selector == selector {
			return r, true
		}
	}
	return css.Rule{}, false
}

// MergedRules returns CustomRules with the inline declarations of each key
// laid over the computed ones. Inline values win. Inline-only keys without a
// custom rule are appended sorted by key.
func (m *StyleModel) MergedRules() []css.Rule {
	out := make([]css.Rule, 0, len(m.CustomRules))
	seen := make(map[string]bool, len(m.CustomRules))
	for _, r := range m.CustomRules {
		seen[r.Selector] = true
		decls := r.Declarations
		if inline, ok := m.InlineStyles[r.Selector]; ok {
			decls = decls.Merge(inline)
		}
		out = append(out, css.Rule{Selector: r.Selector, Declarations: decls})
	}
	for _, key := range sortedKeys(m.InlineStyles) {
		if !seen[key] {
			out = append(out, css.Rule{Selector: key, Declarations: m.InlineStyles[key].Clone()})
		}
	}
	return out
}

// CustomCSS renders the custom rules, merged with inline styles when
// withInline is set.
func (m *StyleModel) CustomCSS(withInline bool) string {
	if withInline {
		return css.FormatRules(m.MergedRules())
	}
	return css.FormatRules(m.CustomRules)
}

// Empty reports whether the model carries no styling at all.
func (m *StyleModel) Empty() bool {
	return m.UtilityClasses.Len() == 0 && len(m.CustomRules) == 0 &&
		len(m.InlineStyles) == 0 && m.MediaRules.Len() == 0
}
