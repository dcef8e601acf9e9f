package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/sdbind/internal/ir"
)

// FilterFunc transforms a value on its way to a directive.
type FilterFunc func(value any) any

// Filters maps filter names to functions.
//
// Like Registry, a Filters set is assembled up front and then only read.
type Filters struct {
	fns map[string]FilterFunc
}

// NewFilters creates a filter set holding fns.
func NewFilters(fns map[string]FilterFunc) (*Filters, error) {
	f := &Filters{fns: make(map[string]FilterFunc, len(fns))}

	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := f.Register(name, fns[name]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustFilters is like NewFilters but panics on error.
func MustFilters(fns map[string]FilterFunc) *Filters {
	f, err := NewFilters(fns)
	if err != nil {
		panic(err)
	}
	return f
}

// Register adds a filter.
func (f *Filters) Register(name string, fn FilterFunc) error {
	if name == "" {
		return ErrEmptyFilterName
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilFilter, name)
	}
	if f.fns == nil {
		f.fns = make(map[string]FilterFunc)
	}
	if _, exists := f.fns[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFilter, name)
	}
	f.fns[name] = fn
	return nil
}

// Has reports whether name is registered.
func (f *Filters) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Get returns the filter registered under name.
func (f *Filters) Get(name string) (FilterFunc, bool) {
	if f == nil {
		return nil, false
	}
	fn, ok := f.fns[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (f *Filters) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.fns))
	for name := range f.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyFilters runs value through d's filter list.
//
// Falsy values are returned untouched, as are values for directives whose
// attribute had no filter syntax. A definition implementing CustomFilterer
// receives the whole list; otherwise named filters run left to right and
// unknown names leave the value as is.
func (e *Engine) applyFilters(value any, d *Directive) any {
	if !ir.Truthy(value) || d.Filters == nil {
		return value
	}
	if d.def.customFilter != nil {
		return d.def.customFilter(value, d.Filters)
	}
	for _, name := range d.Filters {
		fn, ok := e.filters.Get(name)
		if !ok {
			e.logger.Debug("unknown filter", "filter", name, "key", d.Key, "directive", d.Name)
			continue
		}
		value = fn(value)
	}
	return value
}
