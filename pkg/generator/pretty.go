package generator

import (
	"regexp"
	"strings"
)

// IndentUnit is the indentation used by FormatHTML.
const IndentUnit = "  "

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag is in the void element table.
func IsVoidElement(tag string) bool { return voidElements[strings.ToLower(tag)] }

var tagBoundary = regexp.MustCompile(`>\s*<`)

// FormatHTML pretty-prints markup: one tag boundary per line, re-indented by
// IndentUnit per open element. It works on JSX as well. Formatting twice
// gives the same text as formatting once.
func FormatHTML(markup string) string {
	markup = tagBoundary.ReplaceAllString(markup, ">\n<")

	var out []string
	depth := 0
	for _, line := range strings.Split(markup, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		opens, closes, leadingClose := countTags(line)
		if leadingClose {
			depth--
			closes--
		}
		if depth < 0 {
			depth = 0
		}
		out = append(out, strings.Repeat(IndentUnit, depth)+line)

		depth += opens - closes
		if depth < 0 {
			depth = 0
		}
	}
	return strings.Join(out, "\n")
}

// countTags counts the element-opening and closing tags of one line. Void,
// self-terminating, comment and doctype tags count as neither.
func countTags(line string) (opens, closes int, leadingClose bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != '<' || i+1 >= len(line) {
			continue
		}
		end := tagEnd(line, i)
		if end < 0 {
			return
		}
		tag := line[i : end+1]
		switch next := line[i+1]; {
		case next == '/':
			closes++
			if i == 0 {
				leadingClose = true
			}
		case next == '!' || next == '?':
		case isLetter(next):
			if !strings.HasSuffix(tag, "/>") && !IsVoidElement(tagName(tag)) {
				opens++
			}
		}
		i = end
	}
	return
}

// tagEnd finds the '>' closing the tag that starts at start, skipping quoted
// attribute values and JSX braces.
func tagEnd(s string, start int) int {
	var quote byte
	braces := 0
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			braces++
		case c == '}':
			if braces > 0 {
				braces--
			}
		case c == '>' && braces == 0:
			return i
		}
	}
	return -1
}

func tagName(tag string) string {
	name := strings.TrimPrefix(tag, "<")
	if i := strings.IndexAny(name, " \t\n/>"); i >= 0 {
		name = name[:i]
	}
	return name
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// indentLines prefixes every non-empty line of s with prefix.
func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
