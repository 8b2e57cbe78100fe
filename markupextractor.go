package markupextractor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kataras/markup-extractor/pkg/assets"
	"github.com/kataras/markup-extractor/pkg/browser"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/extractor"
	"github.com/kataras/markup-extractor/pkg/fetch"
	"github.com/kataras/markup-extractor/pkg/formatter"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/picker"
	"golang.org/x/net/html"
)

// Version is the release version, overridden at link time by release builds.
var Version = "0.1.0"

// DefaultSelector picks the element to extract when Options.Selector is empty.
const DefaultSelector = "body"

// Options configures the extraction.
type Options struct {
	PreserveUtilityClasses bool
	IncludeInlineStyles    bool
	Formats                []generator.Format // empty = all formats
	ComponentName          string             // JSX component name
	Title                  string             // <title> of generated documents

	// Source, used by Run only. Exactly one of URL and File is set.
	URL      string
	File     string
	Static   bool     // fetch URL over HTTP instead of loading it in Chrome
	Selector string   // root element, default "body"
	Walk     []string // picker keys replayed from the selected element
	Browser  browser.Config

	// Pick, when set, chooses the root interactively, starting from the
	// element Selector and Walk resolve to.
	Pick func(start dom.Node) (dom.Node, error)

	DownloadAssets bool
	AssetDir       string

	Logger Logger // nil = no logging
}

// DefaultOptions keeps utility classes and inline styles, as the settings
// defaults do.
func DefaultOptions() Options {
	return Options{
		PreserveUtilityClasses: true,
		IncludeInlineStyles:    true,
	}
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Result contains the extraction output.
type Result struct {
	Element     ElementSummary                          `json:"element" yaml:"element"`
	URL         string                                  `json:"url,omitempty" yaml:"url,omitempty"`
	Title       string                                  `json:"title,omitempty" yaml:"title,omitempty"`
	RawHTML     string                                  `json:"html" yaml:"html"`
	Model       *extractor.StyleModel                   `json:"styles" yaml:"styles"`
	Artifacts   map[generator.Format]generator.Artifact `json:"exports" yaml:"exports"`
	Component   string                                  `json:"componentName" yaml:"componentName"`
	Warnings    []string                                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Report      string                                  `json:"report,omitempty" yaml:"report,omitempty"`
	Assets      []assets.Asset                          `json:"assets,omitempty" yaml:"assets,omitempty"`
	ExtractedAt time.Time                               `json:"extractedAt" yaml:"extractedAt"`
}

// Extract runs the pipeline over root: snapshot, style extraction, artifact
// generation and the markdown report. root must be attached to its
// document. On error no Result is returned.
func Extract(root dom.Node, opts Options) (*Result, error) {
	attached, err := root.Attached()
	if err != nil {
		return nil, fmt.Errorf("check root: %w", err)
	}
	if !attached {
		return nil, fmt.Errorf("%s: %w", dom.Describe(root), dom.ErrDetached)
	}

	opts.logInfo("Capturing %s...", dom.Describe(root))
	snapshot, err := root.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	raw, err := dom.Render(snapshot)
	if err != nil {
		return nil, err
	}

	opts.logInfo("Extracting styles...")
	var xlog extractor.Logger
	if opts.Logger != nil {
		xlog = opts.Logger
	}
	ext, err := extractor.New(xlog).Extract(root)
	if err != nil {
		return nil, fmt.Errorf("extract styles: %w", err)
	}
	opts.logInfo("Visited %d element(s): %d utility class(es), %d custom rule(s), %d media quer(ies)",
		len(ext.Nodes), ext.Model.UtilityClasses.Len(), len(ext.Model.CustomRules), ext.Model.MediaRules.Len())

	computed, err := computedStyles(ext.Nodes)
	if err != nil {
		return nil, err
	}

	doc := root.Document()
	genOpts := generator.Options{
		PreserveUtilityClasses: opts.PreserveUtilityClasses,
		IncludeInlineStyles:    opts.IncludeInlineStyles,
		ComponentName:          opts.ComponentName,
		Title:                  opts.Title,
		Computed:               computed,
	}

	formats := opts.Formats
	if len(formats) == 0 {
		formats = generator.Formats
	}
	opts.logInfo("Generating %d format(s)...", len(formats))
	artifacts, err := generator.GenerateAll(snapshot, ext.Model, genOpts, formats...)
	if err != nil {
		return nil, err
	}

	var (
		warnings []string
		skipped  []string
	)
	for _, s := range ext.Skipped {
		warnings = append(warnings, s.Error())
		skipped = append(skipped, s.Href)
	}

	now := time.Now()
	summary := summarize(root, raw)
	report := formatter.ToMarkdown(formatter.Summary{
		Element:     summary.Label(),
		URL:         doc.URL(),
		Title:       doc.Title(),
		Nodes:       len(ext.Nodes),
		Model:       ext.Model,
		Formats:     formats,
		Skipped:     skipped,
		GeneratedAt: now,
		HTML:        raw,
	})

	return &Result{
		Element:     summary,
		URL:         doc.URL(),
		Title:       doc.Title(),
		RawHTML:     raw,
		Model:       ext.Model,
		Artifacts:   artifacts,
		Component:   componentName(opts.ComponentName),
		Warnings:    warnings,
		Report:      report,
		ExtractedAt: now,
	}, nil
}

func componentName(name string) string {
	if name == "" {
		return generator.DefaultComponentName
	}
	return name
}

// computedStyles returns the minimized computed style of every node, in the
// order given.
func computedStyles(nodes []dom.Node) ([]css.Declarations, error) {
	out := make([]css.Declarations, 0, len(nodes))
	for _, n := range nodes {
		d, err := n.ComputedStyle()
		if err != nil {
			return nil, fmt.Errorf("computed style of %s: %w", dom.Describe(n), err)
		}
		out = append(out, css.Relevant(d))
	}
	return out, nil
}

// Run loads the source named by opts, resolves the root element and runs
// Extract on it.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}

	var (
		result *Result
		err    error
	)
	switch {
	case opts.URL != "" && opts.File != "":
		return nil, fmt.Errorf("set either a URL or a file, not both")
	case opts.File != "":
		result, err = runFile(opts)
	case opts.URL != "" && opts.Static:
		result, err = runStatic(ctx, opts)
	case opts.URL != "":
		result, err = runBrowser(ctx, opts)
	default:
		return nil, fmt.Errorf("no source: set a URL or a file")
	}
	if err != nil {
		return nil, err
	}

	if opts.DownloadAssets {
		if err := downloadAssets(ctx, &opts, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func runFile(opts Options) (*Result, error) {
	abs, err := filepath.Abs(opts.File)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	opts.logInfo("Parsing %s...", abs)
	doc, err := dom.Parse(f, dom.ParseOptions{
		URL:    (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		Loader: fileLoader,
	})
	if err != nil {
		return nil, err
	}
	return ExtractDocument(doc, opts)
}

// fileLoader reads stylesheets linked from a local file.
func fileLoader(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runStatic(ctx context.Context, opts Options) (*Result, error) {
	opts.logInfo("Fetching %s...", opts.URL)
	doc, err := fetch.NewClient().Document(ctx, opts.URL)
	if err != nil {
		return nil, err
	}
	return ExtractDocument(doc, opts)
}

// ExtractDocument resolves opts.Selector and opts.Walk in a parsed document
// and runs Extract on the element they name.
func ExtractDocument(doc *dom.HTMLDocument, opts Options) (*Result, error) {
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	el, err := doc.Query(opts.Selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, opts.Selector)
	}
	root, err := walk(el, opts)
	if err != nil {
		return nil, err
	}
	return Extract(root, opts)
}

func runBrowser(ctx context.Context, opts Options) (*Result, error) {
	opts.logInfo("Starting browser...")
	s, err := browser.Open(ctx, opts.Browser)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			opts.logWarn("Close browser: %v", err)
		}
	}()

	var result *Result
	opts.logInfo("Loading %s...", opts.URL)
	err = s.Do(ctx, opts.URL, func(p *browser.Page) error {
		el, err := p.Query(opts.Selector)
		if err != nil {
			return err
		}
		root, err := walk(el, opts)
		if err != nil {
			return err
		}
		result, err = Extract(root, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func walk(start dom.Node, opts Options) (dom.Node, error) {
	root := start
	if len(opts.Walk) > 0 {
		var err error
		if root, err = picker.Replay(start, opts.Walk); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWalk, err)
		}
	}
	if opts.Pick != nil {
		var err error
		if root, err = opts.Pick(root); err != nil {
			return nil, err
		}
	}
	if root != start {
		opts.logInfo("Picked %s", picker.TooltipText(root))
	}
	return root, nil
}

func downloadAssets(ctx context.Context, opts *Options, result *Result) error {
	doc, err := html.Parse(strings.NewReader(result.RawHTML))
	if err != nil {
		return fmt.Errorf("parse extracted html: %w", err)
	}
	sources := assets.CollectSources(doc)
	if len(sources) == 0 {
		opts.logInfo("No images to download")
		return nil
	}

	opts.logInfo("Downloading %d image(s) to %s...", len(sources), opts.AssetDir)
	res, err := assets.Download(ctx, fetch.NewClient(), sources, assets.Config{
		BaseURL:   result.URL,
		OutputDir: opts.AssetDir,
	})
	if err != nil {
		opts.logError("Downloading images failed: %v", err)
		return fmt.Errorf("download assets: %w", err)
	}
	for _, e := range res.Errors {
		opts.logWarn("%v", e)
		result.Warnings = append(result.Warnings, e.Error())
	}
	result.Assets = res.Assets
	opts.logInfo("Downloaded %d image(s)", len(res.Assets))
	return nil
}
