package check

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection indicates a selection check was requested without an
	// active selection.
	ErrNoSelection = errors.New("check: no active selection")

	// ErrEmptyEndpoint indicates a client was constructed without an
	// endpoint URL.
	ErrEmptyEndpoint = errors.New("check: empty endpoint")
)

// CheckError wraps a failure of a single check cycle. A failed cycle is
// skipped; annotations from the previous successful cycle stay in place.
type CheckError struct {
	Op  string
	Err error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s: %v", e.Op, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}
