package alloc

import (
	"errors"
	"fmt"
)

// Sentinel reasons. Wrapped by the typed errors below so callers can match
// either the category (errors.As) or the exact cause (errors.Is).
var (
	ErrMissingColumn    = errors.New("required column missing")
	ErrNoFacultyColumns = errors.New("no faculty columns")
	ErrNoFaculties      = errors.New("faculty list is empty")
	ErrEmptyTable       = errors.New("table has no header row")
	ErrRaggedRow        = errors.New("row has more cells than the header")
)

// SchemaError reports an input table whose header cannot be resolved.
// It aborts the run.
type SchemaError struct {
	Reason error
	Column string // the column that was looked up, if any
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema error: %v: %q", e.Reason, e.Column)
	}
	return fmt.Sprintf("schema error: %v", e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Reason }

// AllocationError reports a violated structural precondition of the engine.
type AllocationError struct {
	Reason error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation error: %v", e.Reason)
}

func (e *AllocationError) Unwrap() error { return e.Reason }

// MalformedCellError describes a single unusable cell. It is never returned
// from the engine; it is logged and counted, and the cell is treated as
// missing.
type MalformedCellError struct {
	Row    int // 0-based data row index in input order
	Column string
	Value  string
	Reason string
}

func (e *MalformedCellError) Error() string {
	return fmt.Sprintf("row %d column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}
