package markupextractor

import (
	stdhtml "html"
	"strings"
	"unicode/utf8"

	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/selector"
	"github.com/microcosm-cc/bluemonday"
)

// maxPreviewRunes bounds ElementSummary.Text.
const maxPreviewRunes = 120

// Attribute is one name/value pair of the extracted element.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ElementSummary describes the extracted root element.
type ElementSummary struct {
	TagName    string      `json:"tagName" yaml:"tagName"`
	ID         string      `json:"id,omitempty" yaml:"id,omitempty"`
	Classes    []string    `json:"classes" yaml:"classes"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
	// Text is a tag-free preview of the element content.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Label renders the element as tag#id.class1.class2.
func (s ElementSummary) Label() string {
	var sb strings.Builder
	sb.WriteString(s.TagName)
	if s.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(s.ID)
	}
	for _, c := range s.Classes {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	return sb.String()
}

var textPolicy = bluemonday.StrictPolicy()

func summarize(n dom.Node, rawHTML string) ElementSummary {
	s := ElementSummary{
		TagName: n.TagName(),
		ID:      n.ID(),
		Classes: n.ClassList(),
		Text:    PreviewText(rawHTML),
	}
	if s.Classes == nil {
		s.Classes = []string{}
	}
	attrs := n.Attributes()
	s.Attributes = make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if selector.IsMarker(a.Key) {
			continue
		}
		s.Attributes = append(s.Attributes, Attribute{Name: a.Key, Value: a.Val})
	}
	return s
}

// PreviewText strips every tag from markup, collapses whitespace and cuts the
// result to 120 runes.
func PreviewText(markup string) string {
	text := stdhtml.UnescapeString(textPolicy.Sanitize(markup))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPreviewRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxPreviewRunes-3])) + "..."
}
