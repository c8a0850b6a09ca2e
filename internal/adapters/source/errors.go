package source

import "errors"

var (
	// ErrUnsupportedFormat is returned for input files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("input has no header row")
	// ErrSheetNotFound is returned when the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("worksheet not found")
)
