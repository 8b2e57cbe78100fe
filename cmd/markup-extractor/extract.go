package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	markupextractor "github.com/kataras/markup-extractor"
	"github.com/kataras/markup-extractor/pkg/assets"
	"github.com/kataras/markup-extractor/pkg/browser"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/picker"
	"github.com/kataras/markup-extractor/pkg/settings"
	"github.com/kataras/markup-extractor/pkg/tui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type extractFlags struct {
	url            string
	file           string
	static         bool
	selector       string
	walk           string
	interactive    bool
	formats        []string
	outputDir      string
	componentName  string
	title          string
	noTailwind     bool
	noInline       bool
	downloadAssets bool
	assetDir       string
	report         string
	save           bool
	remote         string
	headful        bool
	stealth        bool
}

func newExtractCmd(g *globalFlags) *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract an element of a page",
		Long: "Load a page from a URL (in Chrome, or over plain HTTP with --static) or a local file, " +
			"pick an element with --selector and optionally --walk, and write the selected formats",
		Example: `  markup-extractor extract -u https://example.com -s "main .card" -F jsx,tailwind
  markup-extractor extract -f page.html -s "h2" --walk up -F all -o out
  markup-extractor extract -u https://example.com --static -s main -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.url, "url", "u", "", "Page URL")
	fl.StringVarP(&f.file, "file", "f", "", "Local HTML file")
	fl.BoolVar(&f.static, "static", false, "Fetch the URL over HTTP instead of loading it in Chrome")
	fl.StringVarP(&f.selector, "selector", "s", markupextractor.DefaultSelector, "CSS selector of the element to extract")
	fl.StringVar(&f.walk, "walk", "", `Picker keys replayed from the selected element, e.g. "up,up,next"`)
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "Pick the element with the arrow keys, starting from the selected one")
	fl.StringSliceVarP(&f.formats, "format", "F", nil, "Formats: html, jsx, tailwind, inline, css or all (default from settings)")
	fl.StringVarP(&f.outputDir, "output", "o", ".", "Output directory")
	fl.StringVarP(&f.componentName, "name", "n", "", "JSX component name (default "+generator.DefaultComponentName+")")
	fl.StringVar(&f.title, "title", "", "Title of generated documents")
	fl.BoolVar(&f.noTailwind, "no-tailwind", false, "Strip utility classes from the HTML and JSX markup")
	fl.BoolVar(&f.noInline, "no-inline", false, "Drop inline style attributes")
	fl.BoolVar(&f.downloadAssets, "download-assets", false, "Download the images of the extracted element")
	fl.StringVar(&f.assetDir, "asset-dir", assets.DefaultOutputDir, "Image directory, relative to the output directory")
	fl.StringVar(&f.report, "report", "", "Also write the markdown report to this file")
	fl.BoolVar(&f.save, "save", false, "Store the result in the history")
	fl.StringVar(&f.remote, "remote", "", "DevTools websocket URL of a running Chrome")
	fl.BoolVar(&f.headful, "headful", false, "Show the browser window")
	fl.BoolVar(&f.stealth, "stealth", false, "Apply stealth evasions to the page")

	cmd.MarkFlagsMutuallyExclusive("url", "file")
	cmd.MarkFlagsOneRequired("url", "file")
	return cmd
}

// parseFormats resolves --format values. Without any the settings default
// is used.
func parseFormats(values []string, s settings.Settings) ([]generator.Format, error) {
	if len(values) == 0 {
		return []generator.Format{s.Format()}, nil
	}
	var out []generator.Format
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return generator.Formats, nil
		}
		format, err := generator.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

func runExtract(cmd *cobra.Command, g *globalFlags, f *extractFlags) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	s, err := g.settings()
	if err != nil {
		return err
	}
	formats, err := parseFormats(f.formats, s)
	if err != nil {
		return err
	}
	keys, err := picker.ParseKeys(f.walk)
	if err != nil {
		return err
	}

	cyan.Fprintln(out, "\n🧩 Markup Extractor")
	cyan.Fprintln(out, "===================")
	cyan.Fprintln(out)

	opts := markupextractor.Options{
		PreserveUtilityClasses: s.PreserveTailwind && !f.noTailwind,
		IncludeInlineStyles:    s.IncludeInlineStyles && !f.noInline,
		Formats:                formats,
		ComponentName:          f.componentName,
		Title:                  f.title,
		URL:                    f.url,
		File:                   f.file,
		Static:                 f.static,
		Selector:               f.selector,
		Walk:                   keys,
		Browser: browser.Config{
			RemoteURL: f.remote,
			Headful:   f.headful,
			Stealth:   f.stealth,
		},
		DownloadAssets: f.downloadAssets,
		AssetDir:       filepath.Join(f.outputDir, f.assetDir),
		Logger:         &cliLogger{w: out},
	}
	if f.interactive {
		opts.Pick = func(start dom.Node) (dom.Node, error) {
			return tui.Pick(cmd.Context(), start, s.HighlightColor, cmd.InOrStdin(), out)
		}
	}

	result, err := markupextractor.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	m := result.Model
	cyan.Fprintln(out, "\n📊 Extraction Summary:")
	fmt.Fprintf(out, "  • Element: %s\n", result.Element.Label())
	if result.Element.Text != "" {
		fmt.Fprintf(out, "  • Text: %s\n", result.Element.Text)
	}
	fmt.Fprintf(out, "  • Utility Classes: %d\n", m.UtilityClasses.Len())
	fmt.Fprintf(out, "  • Custom Rules: %d\n", len(m.CustomRules))
	fmt.Fprintf(out, "  • Inline Styles: %d\n", len(m.InlineStyles))
	fmt.Fprintf(out, "  • Media Queries: %d\n", m.MediaRules.Len())
	if len(result.Assets) > 0 {
		fmt.Fprintf(out, "  • Downloaded Images: %d\n", len(result.Assets))
	}

	written, err := writeArtifacts(f.outputDir, result)
	if err != nil {
		return err
	}
	for _, p := range written {
		green.Fprintf(out, "💾 %s\n", p)
	}

	if f.report != "" {
		if err := os.WriteFile(f.report, []byte(result.Report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		green.Fprintf(out, "💾 %s\n", f.report)
	}

	if f.save {
		store, err := g.openHistory(s)
		if err != nil {
			return err
		}
		defer store.Close()
		c, err := store.Save(cmd.Context(), result)
		if err != nil {
			return err
		}
		green.Fprintf(out, "🗂  Saved to history as %s\n", c.ID)
	}

	green.Fprintf(out, "\n✨ Extracted %s\n\n", result.Element.Label())
	return nil
}

// writeArtifacts writes every artifact of result into dir and returns the
// written paths. Component modules get the stylesheet they import, the
// utility component gets its Tailwind config.
func writeArtifacts(dir string, result *markupextractor.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	write := func(name, text string) error {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
		return nil
	}

	for _, format := range generator.Formats {
		a, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		if err := write(a.Filename(result.ExtractedAt), a.Primary); err != nil {
			return written, err
		}
		if format == generator.HTMLCSS || a.Auxiliary == "" {
			continue
		}
		if err := write(generator.AuxiliaryFilename(format, result.Component), a.Auxiliary); err != nil {
			return written, err
		}
	}
	return written, nil
}
