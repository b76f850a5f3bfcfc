package pgslice

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDumpType is returned when the dump type is not one of copy,
	// insert, inserts or updates.
	ErrUnknownDumpType = errors.New("unknown dump type")

	// ErrUnknownTransactionMode is returned when the transaction mode is not
	// one of begin or full.
	ErrUnknownTransactionMode = errors.New("unknown transaction mode")

	// ErrOmitIDsWithUpdates is returned when the id column is omitted from an
	// updates dump. The updates dialect needs the id column for its WHERE key.
	ErrOmitIDsWithUpdates = errors.New("omit-ids cannot be used with the updates dump type")

	// ErrDeleteFirstWithUpdates is returned when delete-first is combined with
	// an updates dump.
	ErrDeleteFirstWithUpdates = errors.New("delete-first cannot be used with the updates dump type")
)

// CoercionError is returned when a row's id value cannot be parsed as an
// integer. ID tracking is required for manifests and delete-first, so this is
// fatal to the dump.
type CoercionError struct {
	// Column is the column that failed to parse.
	Column string

	// Value is the textual value that could not be coerced.
	Value string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s value %q to an integer", e.Column, e.Value)
}
