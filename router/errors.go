package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/isgasho/roa/status"
)

// Reasons reported by PathError. Compare with errors.Is.
var (
	ErrUnbalancedBraces  = errors.New("unbalanced braces")
	ErrEmptyVariable     = errors.New("missing variable name")
	ErrInvalidVariable   = errors.New("variable name must be word characters")
	ErrDuplicateVariable = errors.New("duplicated variable")
	ErrInvalidPattern    = errors.New("invalid variable pattern")
)

// ErrCompiled is returned when a router tree is registered on or compiled
// after it has already been compiled.
var ErrCompiled = errors.New("router: tree already compiled")

// ErrNextCalled is wrapped in a non-exposed 500 status returned by a
// continuation that is invoked more than once.
var ErrNextCalled = errors.New("router: next called multiple times")

func nextCalledTwice() error {
	return status.Wrap(http.StatusInternalServerError, ErrNextCalled, false)
}

// PathError reports a malformed route template.
type PathError struct {
	Template string
	Reason   string
	Err      error
}

func (e *PathError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("router: invalid path %q: %v", e.Template, e.Err)
	}
	return fmt.Sprintf("router: invalid path %q: %v: %s", e.Template, e.Err, e.Reason)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathError(tpl string, err error, format string, args ...any) *PathError {
	return &PathError{Template: tpl, Reason: fmt.Sprintf(format, args...), Err: err}
}

// ConflictKind tells what two registrations collided on.
type ConflictKind int

const (
	// ConflictPath means two endpoints claim the same static path.
	ConflictPath ConflictKind = iota + 1
	// ConflictMethod means one endpoint registered the same method twice.
	ConflictMethod
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictPath:
		return "path"
	case ConflictMethod:
		return "method"
	default:
		return "unknown"
	}
}

// ConflictError is a build-time registration collision.
type ConflictError struct {
	Kind   ConflictKind
	Path   string
	Method string
}

func (e *ConflictError) Error() string {
	if e.Kind == ConflictMethod {
		return fmt.Sprintf("router: conflict on %s: method %s registered twice", e.Path, e.Method)
	}
	return fmt.Sprintf("router: conflict on %s: static path registered twice", e.Path)
}
