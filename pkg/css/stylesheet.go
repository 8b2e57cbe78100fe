package css

import (
	"fmt"
	"strings"

	dcss "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Sheet is a parsed stylesheet reduced to what extraction needs: plain style
// rules and @media blocks, both in source order.
type Sheet struct {
	Rules []Rule
	Media []MediaBlock
}

// ParseStylesheet parses CSS text. At-rules other than @media are ignored.
func ParseStylesheet(text string) (*Sheet, error) {
	ss, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("css: parse stylesheet: %w", err)
	}

	sheet := &Sheet{}
	for _, r := range ss.Rules {
		switch r.Kind {
		case dcss.QualifiedRule:
			sheet.Rules = append(sheet.Rules, convertRule(r))
		case dcss.AtRule:
			if !isMediaRule(r) {
				continue
			}
			block := MediaBlock{Query: strings.TrimSpace(r.Prelude)}
			for _, nested := range r.Rules {
				if nested.Kind != dcss.QualifiedRule {
					continue
				}
				block.Rules = append(block.Rules, convertRule(nested))
			}
			sheet.Media = append(sheet.Media, block)
		}
	}
	return sheet, nil
}

func isMediaRule(r *dcss.Rule) bool {
	return strings.EqualFold(strings.TrimPrefix(r.Name, "@"), "media")
}

func convertRule(r *dcss.Rule) Rule {
	selector := strings.Join(r.Selectors, ", ")
	if selector == "" {
		selector = strings.TrimSpace(r.Prelude)
	}
	var d Declarations
	for _, decl := range r.Declarations {
		value := strings.TrimSpace(decl.Value)
		if decl.Important {
			value += " !important"
		}
		d.Set(normalizeProperty(decl.Property), value)
	}
	return Rule{Selector: selector, Declarations: d}
}
