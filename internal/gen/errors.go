package gen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAPI is returned when the API fails validation.
var ErrInvalidAPI = errors.New("invalid API")

// ErrDuplicateMethod is returned when two routes of a namespace map to the
// same method identifier, e.g. "get_metadata" and "get/metadata".
var ErrDuplicateMethod = errors.New("duplicate method identifier")

// ErrDrift is returned in check mode when files on disk differ from the
// generated output.
var ErrDrift = errors.New("generated files are out of date")

// Error locates a generation failure.
type Error struct {
	Namespace string
	Route     string // wire route name, empty for namespace-level failures
	Err       error
}

func (e *Error) Error() string {
	if e.Route != "" {
		return fmt.Sprintf("namespace %s, route %s: %v", e.Namespace, e.Route, e.Err)
	}
	return fmt.Sprintf("namespace %s: %v", e.Namespace, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DriftError lists the files that check mode found out of date.
type DriftError struct {
	Paths []string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDrift, strings.Join(e.Paths, ", "))
}

func (e *DriftError) Unwrap() error { return ErrDrift }
