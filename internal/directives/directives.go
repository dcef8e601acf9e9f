package directives

import (
	"errors"
	"fmt"

	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/ir"
)

var (
	// ErrMissingClassName is returned by the class directive when the
	// attribute has no class argument (sd-class instead of sd-class-NAME).
	ErrMissingClassName = errors.New("class directive needs a class name argument")

	// ErrNotHandler is returned by the on directive when the bound value is
	// neither nil nor a handler function.
	ErrNotHandler = errors.New("value is not an event handler")
)

// Text sets the element's text content; falsy values clear it.
var Text = engine.UpdateFunc(func(el *dom.Element, value any, _ string, _ *engine.Directive, _ *engine.Engine) error {
	if !ir.Truthy(value) {
		el.SetTextContent("")
		return nil
	}
	el.SetTextContent(ir.String(value))
	return nil
})

// Show clears the inline display property for truthy values and sets it
// to "none" otherwise.
var Show = engine.UpdateFunc(func(el *dom.Element, value any, _ string, _ *engine.Directive, _ *engine.Engine) error {
	if ir.Truthy(value) {
		el.Style().Set("display", "")
	} else {
		el.Style().Set("display", "none")
	}
	return nil
})

// Class toggles the class named by the directive argument.
var Class = engine.UpdateFunc(func(el *dom.Element, value any, arg string, d *engine.Directive, _ *engine.Engine) error {
	if arg == "" {
		return fmt.Errorf("%w: %s", ErrMissingClassName, d.Attr.Name)
	}
	el.ClassList().Toggle(arg, ir.Truthy(value))
	return nil
})

// Definitions returns the stock directive set keyed by name. Callers may
// add their own entries before building a registry.
func Definitions() map[string]engine.Definition {
	return map[string]engine.Definition{
		"text":  Text,
		"show":  Show,
		"class": Class,
		"on":    On{},
	}
}

// Default returns a registry holding text, show, class and on.
func Default() *engine.Registry {
	return engine.MustRegistry(Definitions())
}
