package engine

import (
	"fmt"
	"sort"
)

// Registry maps directive names to definitions.
//
// A registry is assembled with NewRegistry (or Register calls) and then
// handed to engines; do not Register into a registry an engine is already
// using. Lookups are read-only and stable.
type Registry struct {
	defs map[string]*resolved
}

// NewRegistry creates a registry holding defs. Names are registered in
// sorted order so that errors are deterministic.
func NewRegistry(defs map[string]Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*resolved, len(defs))}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.Register(name, defs[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(defs map[string]Definition) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a definition. The optional capabilities (Binder, Unbinder,
// CustomFilterer) are resolved here, once.
func (r *Registry) Register(name string, def Definition) error {
	if name == "" {
		return ErrEmptyDirectiveName
	}
	if def == nil {
		return fmt.Errorf("%w: %q", ErrNilDefinition, name)
	}
	if f, ok := def.(UpdateFunc); ok && f == nil {
		return fmt.Errorf("%w: %q", ErrNilDefinition, name)
	}
	if r.defs == nil {
		r.defs = make(map[string]*resolved)
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateDirective, name)
	}
	r.defs[name] = resolve(name, def)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.lookup(name) != nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	res := r.lookup(name)
	if res == nil {
		return nil, false
	}
	return res.def, true
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasCustomFilter reports whether the named directive takes over its
// filter list.
func (r *Registry) HasCustomFilter(name string) bool {
	res := r.lookup(name)
	return res != nil && res.customFilter != nil
}

func (r *Registry) lookup(name string) *resolved {
	if r == nil {
		return nil
	}
	return r.defs[name]
}
