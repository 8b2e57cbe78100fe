package settings

import "errors"

var (
	// ErrInvalidExportFormat is returned when the default export format is
	// not html, jsx or tailwind.
	ErrInvalidExportFormat = errors.New("settings: defaultExportFormat must be html, jsx or tailwind")

	// ErrInvalidHighlightColor is returned for a colour that is not #rgb or
	// #rrggbb.
	ErrInvalidHighlightColor = errors.New("settings: highlightColor must be a hex colour")

	// ErrInvalidMaxStored is returned when maxStoredComponents is not
	// positive.
	ErrInvalidMaxStored = errors.New("settings: maxStoredComponents must be positive")
)
