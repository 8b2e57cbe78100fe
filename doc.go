// Package markupextractor re-expresses a region of a web page as portable
// front-end code: HTML with its CSS, a JSX component, a Tailwind-only JSX
// component, standalone HTML with every style inlined, and the CSS alone.
//
// The CLI lives in cmd/markup-extractor; this root package exposes the same
// pipeline as a Go API so that callers can embed extraction in their own
// tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named markupextractor:
//
//	import "github.com/kataras/markup-extractor" // package markupextractor
//
// # Quick start
//
//	opts := markupextractor.DefaultOptions()
//	opts.URL = "https://example.com"
//	opts.Selector = ".pricing-card"
//	result, err := markupextractor.Run(context.Background(), opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a := result.Artifacts[generator.Component]
//	os.WriteFile(a.Filename(time.Now()), []byte(a.Primary), 0644)
//
// # Sources
//
// [Options.URL] loads the page in Chrome through go-rod, so computed styles
// and stylesheet access follow the browser. Set [Options.Static] to download
// the page over HTTP instead, or [Options.File] to read a local file; both
// use an in-memory document whose computed styles come from a source-order
// cascade without specificity.
//
// Any other [dom.Node] implementation can be passed to [Extract] directly.
//
// # Logging
//
// Progress and skipped stylesheets are reported to [Options.Logger], which
// may be nil. Any type with Infof, Warnf and Errorf methods will do, for
// example one that forwards to the standard log package:
//
//	type stdLogger struct{}
//	func (stdLogger) Infof(f string, a ...any)  { log.Printf("info: "+f, a...) }
//	func (stdLogger) Warnf(f string, a ...any)  { log.Printf("warn: "+f, a...) }
//	func (stdLogger) Errorf(f string, a ...any) { log.Printf("error: "+f, a...) }
//
// # Picking an element
//
// [Options.Selector] names the starting element. [Options.Walk] replays
// picker keys from there ("ArrowUp" moves to the parent, "ArrowDown" to the
// first child, "ArrowLeft" and "ArrowRight" to siblings), the same moves the
// interactive picker in package picker offers. [Options.Pick] hands the
// resolved element to an interactive chooser such as package tui.
package markupextractor
