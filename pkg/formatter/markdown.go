package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/kataras/markup-extractor/pkg/extractor"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/nao1215/markdown"
)

// Summary is what the report needs to know about one extraction.
type Summary struct {
	Element     string // label such as div#main.card
	URL         string
	Title       string
	Nodes       int
	Model       *extractor.StyleModel
	Formats     []generator.Format
	Skipped     []string // stylesheets that could not be read
	GeneratedAt time.Time
	// HTML is the element markup. When set, its text content is rendered
	// into a Content section.
	HTML string
}

var contentConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Content converts element markup to markdown. Links and images resolve
// against pageURL when it is set.
func Content(html, pageURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}
	out, err := contentConverter.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("convert content: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ToMarkdown renders the extraction report as markdown text.
func ToMarkdown(s Summary) string {
	var sb strings.Builder
	// a strings.Builder never fails to write.
	_ = WriteMarkdown(&sb, s)
	return sb.String()
}

// WriteMarkdown writes the extraction report to w: an overview table, the
// utility classes in use, the custom CSS, the media queries, the element
// content, the generated files and any stylesheet that had to be skipped.
func WriteMarkdown(w io.Writer, s Summary) error {
	md := markdown.NewMarkdown(w)

	md.H1("Extracted Component - " + s.Element)
	md.PlainText("")

	rows := [][]string{
		{"Element", "`" + s.Element + "`"},
		{"Nodes", strconv.Itoa(s.Nodes)},
	}
	if s.URL != "" {
		rows = append(rows, []string{"Source", s.URL})
	}
	if s.Title != "" {
		rows = append(rows, []string{"Page Title", s.Title})
	}
	if !s.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Extracted At", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if m := s.Model; m != nil {
		rows = append(rows,
			[]string{"Utility Classes", strconv.Itoa(m.UtilityClasses.Len())},
			[]string{"Custom Rules", strconv.Itoa(len(m.CustomRules))},
			[]string{"Inline Styles", strconv.Itoa(len(m.InlineStyles))},
			[]string{"Media Queries", strconv.Itoa(m.MediaRules.Len())},
		)
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	if len(s.Skipped) > 0 {
		md.Warningf("%d stylesheet(s) could not be read; their media queries are missing.", len(s.Skipped))
		md.PlainText("")
		md.BulletList(s.Skipped...)
		md.PlainText("")
	}

	if m := s.Model; m != nil {
		writeModel(md, m)
	}

	if s.HTML != "" {
		// an unconvertible fragment only costs the report its Content section
		if content, err := Content(s.HTML, s.URL); err == nil && content != "" {
			md.H2("Content")
			md.PlainText("")
			md.PlainText(content)
			md.PlainText("")
		}
	}

	if len(s.Formats) > 0 {
		md.H2("Files")
		md.PlainText("")
		at := s.GeneratedAt
		if at.IsZero() {
			at = time.Now()
		}
		files := make([][]string, 0, len(s.Formats))
		for _, f := range s.Formats {
			files = append(files, []string{f.Label(), "`" + generator.Filename(f, at) + "`"})
		}
		md.Table(markdown.TableSet{Header: []string{"Format", "File"}, Rows: files})
		md.PlainText("")
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("build markdown report: %w", err)
	}
	return nil
}

func writeModel(md *markdown.Markdown, m *extractor.StyleModel) {
	if m.UtilityClasses.Len() > 0 {
		md.H2("Utility Classes")
		md.PlainText("")
		classes := m.UtilityClasses.Sorted()
		for i, c := range classes {
			classes[i] = "`" + c + "`"
		}
		md.BulletList(classes...)
		md.PlainText("")
	}

	if custom := m.CustomCSS(true); custom != "" {
		md.H2("Custom CSS")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("css"), custom)
		md.PlainText("")
	}

	if m.MediaRules.Len() > 0 {
		md.H2("Media Queries")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("css"), m.MediaRules.String())
		md.PlainText("")
	}
}
