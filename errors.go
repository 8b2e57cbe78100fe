package markupextractor

import (
	"errors"
	"strings"
)

var (
	// ErrNoMatch is returned when the selector matches no element.
	ErrNoMatch = errors.New("no element matches the selector")
	// ErrWalk wraps failures to replay Options.Walk from the matched element.
	ErrWalk = errors.New("walk failed")
)

// ValidationError lists the fields a Result is missing. Consumers that store
// or serve results reject invalid ones with it.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "invalid extraction result: missing " + strings.Join(e.Missing, ", ")
}

// Validate reports a *ValidationError when r lacks the element, the markup,
// the style model or every artifact.
func (r *Result) Validate() error {
	if r == nil {
		return &ValidationError{Missing: []string{"result"}}
	}
	var missing []string
	if r.Element.TagName == "" {
		missing = append(missing, "element.tagName")
	}
	if strings.TrimSpace(r.RawHTML) == "" {
		missing = append(missing, "html")
	}
	if r.Model == nil {
		missing = append(missing, "styles")
	}
	if len(r.Artifacts) == 0 {
		missing = append(missing, "exports")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
