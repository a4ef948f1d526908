package source

import (
	"errors"
	"fmt"
)

// Sentinel errors for question sources.
var (
	ErrInvalidSource     = errors.New("invalid question source")
	ErrMalformedRow      = errors.New("malformed row")
	ErrUnsupportedFormat = errors.New("unsupported question file format")
)

// MalformedRowError identifies the offending row of a question source.
// Row is the 1-based line as a spreadsheet shows it, header included.
type MalformedRowError struct {
	Row    int
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedRow.
func (e *MalformedRowError) Unwrap() error { return ErrMalformedRow }
