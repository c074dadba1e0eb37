package replace

import (
	"errors"
	"fmt"
)

// ErrNoSource indicates no rule source path was configured.
var ErrNoSource = errors.New("no rule source configured")

// LoadError indicates a rule source could not be read or parsed.
// Callers are expected to continue with an empty table; a bad rule
// source must never be fatal.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("loading rules from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
