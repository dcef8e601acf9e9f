package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned by New when no element carries the
	// requested root id.
	ErrRootNotFound = errors.New("root element not found")

	// ErrSeed wraps the update errors raised while assigning the initial
	// scope. New still returns a usable engine alongside it.
	ErrSeed = errors.New("seeding initial scope")

	// ErrDestroyed is returned by Scope.Set after Engine.Destroy.
	ErrDestroyed = errors.New("engine destroyed")

	// ErrEmptyDirectiveName is returned when registering a directive
	// without a name.
	ErrEmptyDirectiveName = errors.New("directive name is empty")

	// ErrNilDefinition is returned when registering a nil definition.
	ErrNilDefinition = errors.New("directive definition is nil")

	// ErrDuplicateDirective is returned when a name is registered twice.
	ErrDuplicateDirective = errors.New("directive already registered")

	// ErrEmptyFilterName is returned when registering a filter without a
	// name.
	ErrEmptyFilterName = errors.New("filter name is empty")

	// ErrNilFilter is returned when registering a nil filter function.
	ErrNilFilter = errors.New("filter function is nil")

	// ErrDuplicateFilter is returned when a filter name is registered twice.
	ErrDuplicateFilter = errors.New("filter already registered")
)

// UpdateError reports a directive whose update function failed.
//
// Scope.Set runs every directive bound to a key even when one fails, so a
// single Set may return several UpdateErrors joined with errors.Join.
type UpdateError struct {
	// Key is the scope key being assigned.
	Key string

	// Directive is the directive name, e.g. "class".
	Directive string

	// Argument is the directive argument, if any.
	Argument string

	// Element is the path of the target element (see dom.Element.Path).
	Element string

	// Err is the error returned by the update function.
	Err error
}

// Error implements the error interface.
func (e *UpdateError) Error() string {
	name := e.Directive
	if e.Argument != "" {
		name += "-" + e.Argument
	}
	return fmt.Sprintf("update %s on %s (key %q): %v", name, e.Element, e.Key, e.Err)
}

// Unwrap returns the underlying update error.
func (e *UpdateError) Unwrap() error {
	return e.Err
}

// IsUpdateError reports whether err contains an UpdateError.
// Uses errors.As, so joined and wrapped errors are searched.
func IsUpdateError(err error) bool {
	var ue *UpdateError
	return errors.As(err, &ue)
}

// UpdateErrors returns every UpdateError contained in err, in order.
func UpdateErrors(err error) []*UpdateError {
	if err == nil {
		return nil
	}
	var out []*UpdateError
	var walk func(error)
	walk = func(err error) {
		if ue, ok := err.(*UpdateError); ok {
			out = append(out, ue)
			return
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := x.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
