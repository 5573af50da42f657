package errors

import (
	stderrors "errors"
	"fmt"
)

// RecordError wraps a specific error with context about where it occurred.
// Line is the 1-based input line for loaded data, or the slice index for
// records validated in memory.
type RecordError struct {
	Line   int
	Record []string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Record == nil {
		return fmt.Sprintf("invalid record %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Define specific error types for better error handling
var (
	ErrMissingHeader     = fmt.Errorf("missing header")
	ErrMissingColumn     = fmt.Errorf("missing required column")
	ErrInvalidFieldCount = fmt.Errorf("invalid field count")
	ErrInvalidStart      = fmt.Errorf("invalid start time")
	ErrInvalidDuration   = fmt.Errorf("invalid duration")
	ErrNegativeDuration  = fmt.Errorf("negative duration")
	ErrInvalidRing       = fmt.Errorf("invalid ring time")
	ErrInvalidTotal      = fmt.Errorf("invalid total time")
)

// Type returns a short label for the sentinel wrapped by err, suitable as a
// metric label value.
func Type(err error) string {
	for _, s := range []struct {
		err  error
		name string
	}{
		{ErrMissingHeader, "missing_header"},
		{ErrMissingColumn, "missing_column"},
		{ErrInvalidFieldCount, "invalid_field_count"},
		{ErrInvalidStart, "invalid_start"},
		{ErrInvalidDuration, "invalid_duration"},
		{ErrNegativeDuration, "negative_duration"},
		{ErrInvalidRing, "invalid_ring"},
		{ErrInvalidTotal, "invalid_total"},
	} {
		if stderrors.Is(err, s.err) {
			return s.name
		}
	}
	return "other"
}
