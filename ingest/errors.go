package ingest

import "errors"

var (
	// ErrUnsupportedFormat is returned for unknown format tokens.
	ErrUnsupportedFormat = errors.New("unsupported schema format")

	// ErrNoMatches is returned when a glob matches no files.
	ErrNoMatches = errors.New("no schema files match pattern")
)
