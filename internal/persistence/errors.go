package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotNotFound is returned by snapshot stores when no document is
	// stored under the requested name.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrMissingField     = errors.New("missing required field")
)

// IOError reports a snapshot that could not be read or written.
type IOError struct {
	Op       string
	Document string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s snapshot %s: %v", e.Op, e.Document, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed snapshot document. Field is the path of the
// offending value, e.g. "accounts[0].booked flights[1].seat", and is empty for
// syntax errors.
type ParseError struct {
	Document string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %s: %v", e.Document, e.Err)
	}
	return fmt.Sprintf("parse %s: %s: %v", e.Document, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
