package css

import (
	"encoding/json"
	"strings"
)

// Indent is the indentation unit used for every rendered CSS block.
const Indent = "  "

// Rule is a selector with its declaration block.
type Rule struct {
	Selector     string       `json:"selector"`
	Declarations Declarations `json:"declarations"`
}

// String renders the rule as a multi-line block.
func (r Rule) String() string {
	var sb strings.Builder
	writeRule(&sb, r, "")
	return sb.String()
}

func writeRule(sb *strings.Builder, r Rule, prefix string) {
	sb.WriteString(prefix + r.Selector + " {\n")
	for _, d := range r.Declarations.items {
		sb.WriteString(prefix + Indent + d.Property + ": " + d.Value + ";\n")
	}
	sb.WriteString(prefix + "}")
}

// FormatRules renders rules separated by a blank line. Rules without
// declarations are skipped.
func FormatRules(rules []Rule) string {
	blocks := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Declarations.Len() == 0 {
			continue
		}
		blocks = append(blocks, r.String())
	}
	return strings.Join(blocks, "\n\n")
}

// MediaBlock is one @media query with the rules scoped to it.
type MediaBlock struct {
	Query string `json:"query"`
	Rules []Rule `json:"rules"`
}

// String renders the block with nested, indented rules.
func (b MediaBlock) String() string {
	var sb strings.Builder
	sb.WriteString("@media " + b.Query + " {\n")
	for i, r := range b.Rules {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeRule(&sb, r, Indent)
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// MediaRules maps a media query text to its rules, remembering the order in
// which queries were first seen. The zero value is ready to use.
type MediaRules struct {
	blocks []MediaBlock
	index  map[string]int
}

// Add appends a rule under query.
func (m *MediaRules) Add(query string, r Rule) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	i, ok := m.index[query]
	if !ok {
		i = len(m.blocks)
		m.index[query] = i
		m.blocks = append(m.blocks, MediaBlock{Query: query})
	}
	m.blocks[i].Rules = append(m.blocks[i].Rules, r)
}

// Get returns the rules recorded for query.
func (m MediaRules) Get(query string) ([]Rule, bool) {
	i, ok := m.index[query]
	if !ok {
		return nil, false
	}
	return m.blocks[i].Rules, true
}

// Len reports the number of distinct queries.
func (m MediaRules) Len() int { return len(m.blocks) }

// Blocks returns the media blocks in first-seen order.
func (m MediaRules) Blocks() []MediaBlock {
	out := make([]MediaBlock, len(m.blocks))
	copy(out, m.blocks)
	return out
}

// String renders every block separated by a blank line.
func (m MediaRules) String() string {
	parts := make([]string, 0, len(m.blocks))
	for _, b := range m.blocks {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// MarshalJSON encodes the map as an ordered list of blocks.
func (m MediaRules) MarshalJSON() ([]byte, error) {
	if m.blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.blocks)
}

// UnmarshalJSON decodes an ordered list of blocks.
func (m *MediaRules) UnmarshalJSON(data []byte) error {
	var blocks []MediaBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	*m = MediaRules{}
	for _, b := range blocks {
		for _, r := range b.Rules {
			m.Add(b.Query, r)
		}
	}
	return nil
}

// MarshalYAML encodes the map as an ordered list of blocks.
func (m MediaRules) MarshalYAML() (any, error) {
	return m.Blocks(), nil
}
