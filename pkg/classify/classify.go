// Package classify decides whether a class name belongs to the utility-class
// vocabulary (Tailwind style) or is a bespoke, custom class.
//
// The rule table in this package is the only one in the module. Both the
// style extractor and the code generator consult it, so a utility-only render
// always agrees with the custom-CSS render about which classes are which.
package classify

import (
	"regexp"
	"strings"
)

// Kind is the verdict for one class name.
type Kind int

const (
	// Custom is any class not recognized by the rule table.
	Custom Kind = iota
	// Utility is a class drawn from the utility vocabulary.
	Utility
)

func (k Kind) String() string {
	if k == Utility {
		return "utility"
	}
	return "custom"
}

// Rule is one named pattern group of the table.
type Rule struct {
	Group   string
	Pattern *regexp.Regexp
}

const colors = `(?:slate|gray|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose)`

func rule(group, pattern string) Rule {
	return Rule{Group: group, Pattern: regexp.MustCompile(pattern)}
}

// Rules is the ordered table. First match wins.
var Rules = []Rule{
	// layout
	rule("container", `^container$`),
	rule("display", `^(?:block|inline-block|inline|flex|inline-flex|table|inline-table|table-cell|table-row|table-column|grid|inline-grid|contents|hidden)$`),
	rule("position", `^(?:static|fixed|absolute|relative|sticky)$`),

	// flex & grid
	rule("flex", `^flex-(?:1|auto|initial|none)$`),
	rule("flex-direction", `^flex-(?:row|row-reverse|col|col-reverse)$`),
	rule("flex-wrap", `^flex-(?:wrap|wrap-reverse|nowrap)$`),
	rule("align-items", `^items-(?:start|end|center|baseline|stretch)$`),
	rule("justify-content", `^justify-(?:start|end|center|between|around|evenly)$`),
	rule("grid-cols", `^grid-(?:cols|rows)-(?:\d+|none)$`),
	rule("col-span", `^(?:col|row)-span-(?:\d+|full)$`),

	// spacing
	rule("margin", `^-?m[trblxy]?-(?:\d+(?:\.\d+)?|px|auto)$`),
	rule("padding", `^p[trblxy]?-(?:\d+(?:\.\d+)?|px)$`),
	rule("space", `^space-[xy]-(?:\d+|px|reverse)$`),
	rule("gap", `^gap(?:-[xy])?-(?:\d+(?:\.\d+)?|px)$`),

	// sizing
	rule("width", `^w-(?:\d+(?:/\d+)?|px|auto|full|screen|min|max|fit)$`),
	rule("height", `^h-(?:\d+(?:/\d+)?|px|auto|full|screen|min|max|fit)$`),
	rule("min-width", `^min-w-(?:\d+|px|full|min|max|fit)$`),
	rule("max-width", `^max-w-(?:\d+|px|full|min|max|fit|prose|none|xs|sm|md|lg|xl|[2-7]xl|screen-(?:sm|md|lg|xl|2xl))$`),
	rule("min-height", `^min-h-(?:\d+|px|full|screen|min|max|fit)$`),
	rule("max-height", `^max-h-(?:\d+|px|full|screen|min|max|fit)$`),

	// typography
	rule("font-size", `^text-(?:xs|sm|base|lg|xl|[2-9]xl)$`),
	rule("font-weight", `^font-(?:thin|extralight|light|normal|medium|semibold|bold|extrabold|black)$`),
	rule("text-align", `^text-(?:left|center|right|justify|start|end)$`),
	rule("text-color", `^text-(?:inherit|current|transparent|black|white)$`),
	rule("text-color-shade", `^text-`+colors+`-\d{2,3}$`),

	// colors
	rule("background-color", `^bg-(?:inherit|current|transparent|black|white)$`),
	rule("background-color-shade", `^bg-`+colors+`-\d{2,3}$`),
	rule("border-color", `^border-(?:inherit|current|transparent|black|white)$`),
	rule("border-color-shade", `^border-`+colors+`-\d{2,3}$`),

	// borders
	rule("border-radius", `^rounded(?:-(?:t|r|b|l|tl|tr|br|bl))?(?:-(?:none|sm|md|lg|xl|2xl|3xl|full))?$`),
	rule("border-width", `^border(?:-[trblxy])?(?:-[0248])?$`),

	// effects
	rule("shadow", `^shadow(?:-(?:sm|md|lg|xl|2xl|inner|none))?$`),
	rule("opacity", `^opacity-\d+$`),

	// motion
	rule("transition", `^transition(?:-(?:none|all|colors|opacity|shadow|transform))?$`),
	rule("animation", `^animate-(?:none|spin|ping|pulse|bounce)$`),
}

var (
	responsivePrefixes = []string{"sm:", "md:", "lg:", "xl:", "2xl:"}
	statePrefixes      = []string{"hover:", "focus:", "active:", "disabled:", "group-hover:", "group-focus:"}
)

// Match returns the first rule matching name. At most one responsive prefix
// and then at most one state prefix are stripped before matching; the
// prefixes never change the verdict on their own.
func Match(name string) (Rule, bool) {
	if r, ok := matchBare(name); ok {
		return r, true
	}
	bare, stripped := stripPrefixes(name)
	if !stripped || bare == "" {
		return Rule{}, false
	}
	return matchBare(bare)
}

func matchBare(name string) (Rule, bool) {
	for _, r := range Rules {
		if r.Pattern.MatchString(name) {
			return r, true
		}
	}
	return Rule{}, false
}

func stripPrefixes(name string) (string, bool) {
	stripped := false
	for _, p := range responsivePrefixes {
		if strings.HasPrefix(name, p) {
			name = name[len(p):]
			stripped = true
			break
		}
	}
	for _, p := range statePrefixes {
		if strings.HasPrefix(name, p) {
			name = name[len(p):]
			stripped = true
			break
		}
	}
	return name, stripped
}

// Classify returns the verdict for name. It is total: any string that no rule
// matches is Custom.
func Classify(name string) Kind {
	if _, ok := Match(name); ok {
		return Utility
	}
	return Custom
}

// IsUtility is shorthand for Classify(name) == Utility.
func IsUtility(name string) bool { return Classify(name) == Utility }

// Split partitions classes, keeping source order inside each side.
func Split(classes []string) (utility, custom []string) {
	for _, c := range classes {
		if c == "" {
			continue
		}
		if IsUtility(c) {
			utility = append(utility, c)
		} else {
			custom = append(custom, c)
		}
	}
	return utility, custom
}

// Fields splits a class attribute value on whitespace.
func Fields(classAttr string) []string {
	return strings.Fields(classAttr)
}
