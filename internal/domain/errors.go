package domain

import "errors"

// Error taxonomy for the filtering pipeline. Record-level failures
// (ErrMalformedRecord) are recovered by skipping and counting the row;
// file-level failures (ErrUnreadableFile) are recovered by skipping the file
// with a warning. Configuration errors are fatal and surface from
// config.Load before any file I/O.
var (
	// ErrMalformedRecord marks a single row that failed to parse: wrong field
	// count, non-numeric value, invalid calendar date, or an out-of-range
	// coordinate.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnreadableFile marks a granule file that could not be opened or has
	// no usable header row.
	ErrUnreadableFile = errors.New("unreadable file")
)
