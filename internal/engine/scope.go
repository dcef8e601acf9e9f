package engine

import (
	"errors"
	"sort"
)

// Scope is the engine's data object. Every key discovered during bootstrap
// has a reactive cell: Set stores the value and re-renders every directive
// bound to the key. Keys without a directive hold plain values that Get
// returns but that drive nothing.
//
// A Scope is not safe for concurrent use.
type Scope struct {
	e     *Engine
	plain map[string]any
}

func newScope(e *Engine) *Scope {
	return &Scope{e: e, plain: make(map[string]any)}
}

// Get returns the value stored under key, or nil.
func (s *Scope) Get(key string) any {
	v, _ := s.Lookup(key)
	return v
}

// Lookup returns the value stored under key and whether the key has ever
// been bound or assigned.
func (s *Scope) Lookup(key string) (any, bool) {
	if b, ok := s.e.bindings.get(key); ok {
		return b.Value, true
	}
	v, ok := s.plain[key]
	return v, ok
}

// Set assigns value to key.
//
// For a bound key the value is stored first, then every directive bound to
// the key runs in discovery order, each with value passed through its own
// filter list. A failing directive does not stop the ones after it; the
// failures come back as *UpdateError values joined with errors.Join.
//
// After Engine.Destroy, Set returns ErrDestroyed and stores nothing. A Set
// nested inside update functions deeper than the engine's limit returns a
// *DepthExceededError.
func (s *Scope) Set(key string, value any) error {
	if s.e.destroyed {
		return ErrDestroyed
	}

	b, ok := s.e.bindings.get(key)
	if !ok {
		s.plain[key] = value
		return nil
	}

	if err := s.e.depth.enter(key); err != nil {
		return err
	}
	defer s.e.depth.leave()

	b.Value = value

	var errs []error
	for _, d := range b.Directives {
		if err := s.e.update(d, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Has reports whether key has a reactive cell.
func (s *Scope) Has(key string) bool {
	_, ok := s.e.bindings.get(key)
	return ok
}

// Keys returns the reactive keys in discovery order.
func (s *Scope) Keys() []string {
	return s.e.bindings.keys()
}

// Snapshot returns a copy of every stored value, reactive and plain.
func (s *Scope) Snapshot() map[string]any {
	out := make(map[string]any, len(s.plain)+len(s.e.bindings.order))
	for k, v := range s.plain {
		out[k] = v
	}
	for _, k := range s.e.bindings.order {
		b, _ := s.e.bindings.get(k)
		out[k] = b.Value
	}
	return out
}

// PlainKeys returns the keys holding non-reactive values, sorted.
func (s *Scope) PlainKeys() []string {
	keys := make([]string, 0, len(s.plain))
	for k := range s.plain {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
