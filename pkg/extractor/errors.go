package extractor

import "fmt"

// PartialDataError reports a stylesheet whose rules could not be read. The
// extraction still succeeds; the sheet's media rules are simply missing.
type PartialDataError struct {
	Href string // empty for embedded sheets
	Err  error
}

func (e *PartialDataError) Error() string {
	href := e.Href
	if href == "" {
		href = "<style>"
	}
	return fmt.Sprintf("stylesheet %s skipped: %v", href, e.Err)
}

func (e *PartialDataError) Unwrap() error { return e.Err }
