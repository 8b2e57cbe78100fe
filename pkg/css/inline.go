package css

import (
	"strings"
	"unicode"
)

// ParseInline parses style attribute text. Declarations are ";"-delimited
// "key: value" pairs; both sides are trimmed and pairs missing either side are
// dropped. Semicolons inside quotes or parentheses (data URLs) do not split.
func ParseInline(text string) Declarations {
	var d Declarations
	for _, part := range splitTopLevel(text, ';') {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = normalizeProperty(prop)
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		d.Set(prop, value)
	}
	return d
}

func normalizeProperty(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "--") {
		return p
	}
	return strings.ToLower(p)
}

func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// ToCamelCase converts a kebab-case property name to the camelCase key used by
// component style objects: "background-color" -> "backgroundColor",
// "-webkit-transition" -> "WebkitTransition". Custom properties are returned
// unchanged.
func ToCamelCase(property string) string {
	if strings.HasPrefix(property, "--") {
		return property
	}
	runes := []rune(property)
	var sb strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '-' && i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
			sb.WriteRune(unicode.ToUpper(runes[i+1]))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
