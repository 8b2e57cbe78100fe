package generator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Format names one output artifact.
type Format string

const (
	// HTMLCSS is the markup with a CSS block, plus a full document.
	HTMLCSS Format = "html"
	// Component is a JSX functional component.
	Component Format = "jsx"
	// UtilityComponent is a JSX component styled by utility classes only.
	UtilityComponent Format = "tailwind"
	// Standalone is markup with every style inlined.
	Standalone Format = "inline"
	// CSS is the stylesheet text alone.
	CSS Format = "css"
)

// Formats lists every format in rendering order.
var Formats = []Format{HTMLCSS, Component, UtilityComponent, Standalone, CSS}

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected html, jsx, tailwind, inline or css)", s)
}

func (f Format) String() string { return string(f) }

// Label is a human readable format name.
func (f Format) Label() string {
	switch f {
	case HTMLCSS:
		return "HTML + CSS"
	case Component:
		return "JSX Component"
	case UtilityComponent:
		return "Tailwind JSX"
	case Standalone:
		return "Inline HTML"
	case CSS:
		return "CSS"
	}
	return string(f)
}

// Extension returns the conventional file extension, dot included.
func Extension(f Format) string {
	switch f {
	case Component, UtilityComponent:
		return ".jsx"
	case CSS:
		return ".css"
	}
	return ".html"
}

// Filename returns the download name of an artifact produced at t.
func Filename(f Format, t time.Time) string {
	date := t.Format("2006-01-02")
	switch f {
	case Component:
		return "Component-" + date + ".jsx"
	case UtilityComponent:
		return "TailwindComponent-" + date + ".jsx"
	case Standalone:
		return "component-inline-" + date + ".html"
	case CSS:
		return "styles-" + date + ".css"
	}
	return "component-" + date + ".html"
}

// AuxiliaryFilename names the companion file of an artifact: the stylesheet
// the component module imports, or the Tailwind config. It is empty for
// formats without one.
func AuxiliaryFilename(f Format, componentName string) string {
	if componentName == "" {
		componentName = DefaultComponentName
	}
	switch f {
	case HTMLCSS, Component:
		return componentName + ".css"
	case UtilityComponent:
		return "tailwind.config.js"
	}
	return ""
}

var (
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// SanitizeFilename lower-cases s, replaces anything but letters and digits
// with underscores, collapses runs of them and trims them from both ends.
func SanitizeFilename(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Artifact is one rendered output. It is derived entirely from the snapshot,
// the style model and the options.
type Artifact struct {
	Format Format `json:"format" yaml:"format"`
	// Primary is the downloadable text: a document, a component module or a
	// stylesheet.
	Primary string `json:"primary" yaml:"primary"`
	// Auxiliary is the companion text, if any: the CSS for HTMLCSS and
	// Component, the Tailwind config for UtilityComponent.
	Auxiliary string `json:"auxiliary,omitempty" yaml:"auxiliary,omitempty"`
	// Fragment is the pretty-printed markup alone.
	Fragment string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
}

// Filename is Filename(a.Format, t).
func (a Artifact) Filename(t time.Time) string { return Filename(a.Format, t) }
