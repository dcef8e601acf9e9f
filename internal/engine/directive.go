package engine

import (
	"github.com/roach88/sdbind/internal/dom"
)

// Definition is the behaviour behind a directive name. Update is required;
// a definition may also implement Binder, Unbinder and CustomFilterer.
type Definition interface {
	// Update renders value onto el. arg is the text after the directive
	// name in the attribute (sd-class-active → "active"), d is the bound
	// descriptor and e the owning engine.
	Update(el *dom.Element, value any, arg string, d *Directive, e *Engine) error
}

// UpdateFunc is the bare-function form of a Definition.
type UpdateFunc func(el *dom.Element, value any, arg string, d *Directive, e *Engine) error

// Update calls f.
func (f UpdateFunc) Update(el *dom.Element, value any, arg string, d *Directive, e *Engine) error {
	return f(el, value, arg, d, e)
}

// Binder is implemented by definitions that need a hook when a directive is
// discovered. value is whatever the key's binding holds at that moment
// (nil during bootstrap).
type Binder interface {
	Bind(el *dom.Element, value any)
}

// Unbinder is implemented by definitions that hold resources to release on
// Engine.Destroy.
type Unbinder interface {
	Unbind(el *dom.Element, arg string, d *Directive)
}

// CustomFilterer is implemented by definitions that reinterpret the filter
// syntax. When present, the whole filter list is handed over in one call
// instead of running named filters.
type CustomFilterer interface {
	CustomFilter(value any, filters []string) any
}

// Directive is one directive attribute bound to a scope key.
type Directive struct {
	// Attr is the original attribute, as found before it was stripped.
	Attr dom.Attribute

	// Name is the directive name (sd-class-active → "class").
	Name string

	// Key is the scope key the directive is bound to. May be "".
	Key string

	// Argument is the text after the first "-" following the name.
	// HasArgument distinguishes an absent argument from an empty one.
	Argument    string
	HasArgument bool

	// Filters holds the trimmed filter names in order. nil means the
	// attribute had no "|" at all, which skips the filter pipeline.
	Filters []string

	// Element is the element the attribute was found on. The engine does
	// not own its lifecycle.
	Element *dom.Element

	// Definition is the registered definition for Name.
	Definition Definition

	// Update is the resolved update function of Definition.
	Update UpdateFunc

	// Handlers is scratch state owned by this directive, used by event
	// directives to remember the listener attached per event type.
	Handlers map[string]*dom.Listener

	def *resolved
}

// resolved is a definition with its optional capabilities looked up once,
// at registration.
type resolved struct {
	name         string
	def          Definition
	update       UpdateFunc
	bind         func(el *dom.Element, value any)
	unbind       func(el *dom.Element, arg string, d *Directive)
	customFilter func(value any, filters []string) any
}

func resolve(name string, def Definition) *resolved {
	r := &resolved{name: name, def: def}
	if f, ok := def.(UpdateFunc); ok {
		r.update = f
	} else {
		r.update = def.Update
	}
	if b, ok := def.(Binder); ok {
		r.bind = b.Bind
	}
	if u, ok := def.(Unbinder); ok {
		r.unbind = u.Unbind
	}
	if c, ok := def.(CustomFilterer); ok {
		r.customFilter = c.CustomFilter
	}
	return r
}
