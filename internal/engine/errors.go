package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing record (credentials, job, batch).
// Callers test with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError marks a malformed query or payload from the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NavigationError is a recoverable automation failure: a timeout, a blocked
// page, or a selector that no longer matches the remote markup. It is absorbed
// at step boundaries and surfaces only inside a failed ApplicationResult.
type NavigationError struct {
	URL string
	Op  string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// IsNavigation reports whether err is (or wraps) a NavigationError.
func IsNavigation(err error) bool {
	var ne *NavigationError
	return errors.As(err, &ne)
}
