// Package extractor walks a live subtree once and reduces its styling to a
// StyleModel: the utility classes in use, the minimal computed declarations
// of every custom-styled node, the nodes' inline styles and the @media rules
// that reach into the subtree.
package extractor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kataras/markup-extractor/pkg/classify"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/selector"
)

// Logger receives warnings about skipped data. A nil Logger is silent.
type Logger interface {
	Warnf(format string, args ...any)
}

// Extraction is the outcome of one pass.
type Extraction struct {
	Model *StyleModel
	// Skipped lists the stylesheets that could not be read.
	Skipped []*PartialDataError
	// Nodes holds the visited elements in pre-order, root first.
	Nodes []dom.Node
	// Keys maps a recorded node to its selector key.
	Keys map[dom.Node]string
}

// Extractor runs extraction passes. It keeps no state between passes.
type Extractor struct {
	logger Logger
}

// New returns an Extractor that reports skipped stylesheets to logger.
func New(logger Logger) *Extractor {
	return &Extractor{logger: logger}
}

func (x *Extractor) warnf(format string, args ...any) {
	if x.logger != nil {
		x.logger.Warnf(format, args...)
	}
}

// Extract walks root and its descendants in pre-order and builds the style
// model. The only write to the document is the selector marker attribute on
// recorded nodes that have neither an id nor a custom class.
//
// A root that is no longer attached fails with an error wrapping
// dom.ErrDetached. Unreadable stylesheets do not fail the pass; they are
// returned in Extraction.Skipped.
func (x *Extractor) Extract(root dom.Node) (*Extraction, error) {
	attached, err := root.Attached()
	if err != nil {
		return nil, fmt.Errorf("extractor: check %s: %w", root.TagName(), err)
	}
	if !attached {
		return nil, fmt.Errorf("extractor: %s: %w", dom.Describe(root), dom.ErrDetached)
	}

	model := &StyleModel{InlineStyles: make(map[string]css.Declarations)}
	ext := &Extraction{Model: model, Keys: make(map[dom.Node]string)}
	assigner := selector.NewAssigner()
	ruleIndex := make(map[string]int)

	err = dom.Walk(root, func(n dom.Node) (bool, error) {
		ext.Nodes = append(ext.Nodes, n)

		utility, custom := classify.Split(n.ClassList())
		for _, c := range utility {
			model.UtilityClasses.Add(c)
		}

		inline := css.ParseInline(n.StyleText())
		if len(custom) == 0 && inline.Len() == 0 {
			return true, nil
		}

		key, err := assigner.Assign(n)
		if err != nil {
			return false, err
		}
		ext.Keys[n] = key

		computed, err := n.ComputedStyle()
		if err != nil {
			return false, fmt.Errorf("extractor: computed style of %s: %w", key, err)
		}
		// the inline value is rendered in place of the computed one.
		decls := css.Relevant(computed).Filter(func(p, _ string) bool {
			return !inline.Has(p)
		})

		if i, ok := ruleIndex[key]; ok {
			// same class-derived key as an earlier node: one style group,
			// earlier values stay.
			model.CustomRules[i].Declarations = addMissing(model.CustomRules[i].Declarations, decls)
		} else {
			ruleIndex[key] = len(model.CustomRules)
			model.CustomRules = append(model.CustomRules, css.Rule{Selector: key, Declarations: decls})
		}

		if inline.Len() > 0 {
			if prev, ok := model.InlineStyles[key]; ok {
				model.InlineStyles[key] = addMissing(prev, inline)
			} else {
				model.InlineStyles[key] = inline
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	x.scanMedia(root.Document(), ext)
	return ext, nil
}

// scanMedia records every @media rule whose selector matches a visited node.
func (x *Extractor) scanMedia(doc dom.Document, ext *Extraction) {
	if doc == nil {
		return
	}
	sheets, err := doc.StyleSheets()
	if err != nil {
		x.skip(ext, &PartialDataError{Err: err})
		return
	}

	for _, sheet := range sheets {
		blocks, err := sheet.MediaBlocks()
		if err != nil {
			x.skip(ext, &PartialDataError{Href: sheet.Href(), Err: err})
			continue
		}
		for _, block := range blocks {
			for _, rule := range block.Rules {
				if matchesAny(ext.Nodes, rule.Selector) {
					ext.Model.MediaRules.Add(block.Query, rule)
				}
			}
		}
	}
}

func (x *Extractor) skip(ext *Extraction, perr *PartialDataError) {
	ext.Skipped = append(ext.Skipped, perr)
	x.warnf("%v", perr)
}

// matchesAny treats selectors the document cannot evaluate as non-matching.
func matchesAny(nodes []dom.Node, sel string) bool {
	for _, n := range nodes {
		ok, err := n.Matches(sel)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func addMissing(dst, src css.Declarations) css.Declarations {
	out := dst.Clone()
	for _, d := range src.Items() {
		if !out.Has(d.Property) {
			out.Set(d.Property, d.Value)
		}
	}
	return out
}

func sortedKeys(m map[string]css.Declarations) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsPartial reports whether err is a PartialDataError.
func IsPartial(err error) bool {
	var perr *PartialDataError
	return errors.As(err, &perr)
}
