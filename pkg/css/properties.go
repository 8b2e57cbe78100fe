package css

// Presentational is the allow-list of computed properties worth reproducing,
// grouped the way they are rendered. Longhands already covered by a listed
// shorthand (margin-top, padding-left, flex-grow, row-gap, overflow-x,
// transition-duration, ...) are left out. The border shorthand is replaced by
// its width/style/color longhands so it lines up with the default table.
var Presentational = []string{
	// layout
	"display", "position", "top", "right", "bottom", "left", "z-index",
	"float", "clear", "overflow",
	// box model
	"width", "height", "min-width", "max-width", "min-height", "max-height",
	"margin", "padding",
	// flex
	"flex", "flex-direction", "flex-wrap",
	"align-items", "align-content", "align-self", "justify-content",
	// grid
	"grid-template-columns", "grid-template-rows", "grid-template-areas",
	"grid-area", "gap",
	// typography
	"font-family", "font-size", "font-weight", "font-style", "font-variant",
	"line-height", "letter-spacing", "text-align", "text-decoration",
	"text-transform", "text-indent", "white-space", "word-spacing",
	// color and background
	"color", "background-color", "background-image", "background-position",
	"background-size", "background-repeat", "background-attachment",
	// border
	"border-width", "border-style", "border-color", "border-radius",
	// effects
	"box-shadow", "text-shadow", "opacity", "visibility",
	"transform", "transform-origin", "perspective",
	// motion
	"transition", "animation",
}

var presentationalSet = func() map[string]bool {
	m := make(map[string]bool, len(Presentational))
	for _, p := range Presentational {
		m[p] = true
	}
	return m
}()

// IsPresentational reports whether property is on the allow-list.
func IsPresentational(property string) bool { return presentationalSet[property] }

// Defaults maps a property to the computed value that needs no output.
// Initial values of properties not listed here are always kept.
var Defaults = map[string]string{
	"display":          "inline",
	"position":         "static",
	"margin":           "0px",
	"padding":          "0px",
	"border-width":     "0px",
	"border-style":     "none",
	"background-color": "rgba(0, 0, 0, 0)",
	"color":            "rgb(0, 0, 0)",
	"font-weight":      "400",
	"text-align":       "start",
	"opacity":          "1",
	"visibility":       "visible",
}

// IsDefault reports whether value is the documented default for property.
func IsDefault(property, value string) bool {
	def, ok := Defaults[property]
	return ok && def == value
}

// isKeywordOnly reports values that carry no information of their own.
func isKeywordOnly(value string) bool {
	switch value {
	case "", "initial", "inherit", "unset":
		return true
	}
	return false
}

// Minimize drops empty or keyword-only values and documented defaults.
func Minimize(d Declarations) Declarations {
	return d.Filter(func(p, v string) bool {
		return !isKeywordOnly(v) && !IsDefault(p, v)
	})
}

// Relevant restricts a computed style to the allow-list, in allow-list order,
// and minimizes it.
func Relevant(computed Declarations) Declarations {
	var d Declarations
	for _, p := range Presentational {
		if v, ok := computed.Get(p); ok {
			d.Set(p, v)
		}
	}
	return Minimize(d)
}

// Inherited lists the properties a child takes from its parent when no rule
// sets them. Used by the static cascade in package dom.
var Inherited = []string{
	"color", "font-family", "font-size", "font-weight", "font-style",
	"font-variant", "line-height", "letter-spacing", "text-align",
	"text-indent", "text-transform", "white-space", "word-spacing",
	"visibility",
}
