package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/sdbind/internal/dom"
)

// DefaultPrefix is the attribute prefix used when WithPrefix is not given.
const DefaultPrefix = "sd"

// Options identifies what an engine binds.
type Options struct {
	// ID is the id attribute of the root element.
	ID string

	// Scope holds initial values. Every bound key is assigned
	// Scope[key] (nil when missing) once binding completes; entries for
	// keys without a directive are kept as plain values.
	Scope map[string]any
}

// Engine binds one root element and its descendants to a Scope.
//
// The binding table, scope cells and directives are fixed once New
// returns: no key becomes reactive after construction.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	el         *dom.Element
	prefix     string
	registry   *Registry
	filters    *Filters
	logger     *slog.Logger
	observer   Observer
	runIDGen   RunIDGenerator
	clock      Sequencer
	runID      string
	bindings   *bindingTable
	directives []*Directive
	scope      *Scope
	depth      depthGuard
	destroyed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrefix sets the directive attribute prefix (default "sd"). An empty
// prefix keeps the default.
func WithPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithDirectives sets the directive registry. Without it nothing binds.
func WithDirectives(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithFilters sets the filter registry. Without it every filter name is
// treated as unknown.
func WithFilters(f *Filters) Option {
	return func(e *Engine) {
		e.filters = f
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an observer for run and update notifications.
// Use MultiObserver to register several.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithRunIDGenerator sets the run ID source (default UUIDv7Generator).
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.runIDGen = g
		}
	}
}

// WithClock sets the sequencer that stamps updates (default NewClock()).
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New binds the element with id opts.ID in doc and assigns the initial
// scope.
//
// Bootstrap collects every descendant carrying a registered directive
// attribute, then the root itself, and for each element in that order
// parses a snapshot of its attributes. Recognized directives are stripped
// from the element and bound; unrecognized ones are left in place.
// Finally every bound key is assigned from opts.Scope in discovery order.
//
// New returns ErrRootNotFound when the root is missing. When an update
// fails while seeding, New returns the engine together with an error
// wrapping ErrSeed and the joined UpdateErrors.
func New(doc *dom.Document, opts Options, eopts ...Option) (*Engine, error) {
	e := &Engine{
		prefix:   DefaultPrefix,
		registry: &Registry{},
		filters:  &Filters{},
		logger:   slog.Default(),
		runIDGen: UUIDv7Generator{},
		clock:    NewClock(),
		bindings: newBindingTable(),
		depth:    depthGuard{limit: DefaultMaxDepth},
	}
	for _, opt := range eopts {
		opt(e)
	}
	e.scope = newScope(e)

	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrRootNotFound)
	}
	root := doc.GetElementByID(opts.ID)
	if root == nil {
		return nil, fmt.Errorf("%w: #%s", ErrRootNotFound, opts.ID)
	}
	e.el = root

	els := root.QueryAll(e.hasDirective)
	els = append(els, root)

	for _, el := range els {
		for _, attr := range el.Attributes() {
			d, ok := ParseDirective(attr, e.prefix, e.registry)
			if !ok {
				if name, prefixed := DirectiveName(attr.Name, e.prefix); prefixed {
					e.logger.Debug("skipping unknown directive",
						"attr", attr.Name,
						"directive", name,
						"element", el.Path())
				}
				continue
			}
			el.RemoveAttribute(attr.Name)
			d.Element = el
			e.bind(d)
		}
	}

	e.runID = e.runIDGen.Generate()
	if e.observer != nil {
		e.observer.BeginRun(RunInfo{
			RunID:  e.runID,
			Root:   root,
			Prefix: e.prefix,
			Keys:   e.bindings.keys(),
		})
	}

	e.logger.Info("engine bound",
		"root", opts.ID,
		"run_id", e.runID,
		"elements", len(els),
		"directives", len(e.directives),
		"keys", len(e.bindings.order))

	if err := e.seed(opts.Scope); err != nil {
		return e, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	return e, nil
}

// hasDirective reports whether el carries an attribute named
// prefix-<name> or prefix-<name>-<arg> for a registered name.
func (e *Engine) hasDirective(el *dom.Element) bool {
	for _, attr := range el.Attributes() {
		if name, ok := DirectiveName(attr.Name, e.prefix); ok && e.registry.Has(name) {
			return true
		}
	}
	return false
}

// bind appends d to its key's binding, creating the binding (and with it
// the scope cell) on first sight of the key.
func (e *Engine) bind(d *Directive) {
	b := e.bindings.ensure(d.Key)
	b.Directives = append(b.Directives, d)
	e.directives = append(e.directives, d)

	if d.def.bind != nil {
		d.def.bind(d.Element, b.Value)
	}

	e.logger.Debug("directive bound",
		"directive", d.Name,
		"arg", d.Argument,
		"key", d.Key,
		"filters", d.Filters,
		"element", d.Element.Path())
}

// seed assigns the initial scope: bound keys in discovery order, then the
// remaining entries as plain values.
func (e *Engine) seed(initial map[string]any) error {
	var errs []error
	for _, key := range e.bindings.keys() {
		if err := e.scope.Set(key, initial[key]); err != nil {
			errs = append(errs, err)
		}
	}

	extra := make([]string, 0, len(initial))
	for key := range initial {
		if !e.scope.Has(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		e.scope.plain[key] = initial[key]
	}

	return errors.Join(errs...)
}

// update runs one directive for a freshly assigned value.
func (e *Engine) update(d *Directive, raw any) error {
	seq := e.clock.Next()
	value := e.applyFilters(raw, d)

	err := d.Update(d.Element, value, d.Argument, d, e)

	if e.observer != nil {
		e.observer.ObserveUpdate(UpdateEvent{
			RunID:     e.runID,
			Seq:       seq,
			Key:       d.Key,
			Directive: d,
			Raw:       raw,
			Value:     value,
			Err:       err,
		})
	}

	if err != nil {
		e.logger.Warn("directive update failed",
			"directive", d.Name,
			"key", d.Key,
			"element", d.Element.Path(),
			"error", err)
		return &UpdateError{
			Key:       d.Key,
			Directive: d.Name,
			Argument:  d.Argument,
			Element:   d.Element.Path(),
			Err:       err,
		}
	}
	return nil
}

// Destroy runs the Unbind hook of every directive whose definition has
// one, in discovery order. Afterwards Scope.Set returns ErrDestroyed.
// Calling Destroy again does nothing.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true

	for _, d := range e.directives {
		if d.def.unbind != nil {
			d.def.unbind(d.Element, d.Argument, d)
		}
	}
	e.logger.Info("engine destroyed", "run_id", e.runID)
}

// El returns the root element.
func (e *Engine) El() *dom.Element { return e.el }

// Scope returns the engine's scope.
func (e *Engine) Scope() *Scope { return e.scope }

// RunID returns the ID stamped on this engine's journal rows.
func (e *Engine) RunID() string { return e.runID }

// Prefix returns the directive attribute prefix.
func (e *Engine) Prefix() string { return e.prefix }

// Registry returns the directive registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Filters returns the filter registry.
func (e *Engine) Filters() *Filters { return e.filters }

// Destroyed reports whether Destroy has been called.
func (e *Engine) Destroyed() bool { return e.destroyed }

// Directives returns every bound directive in discovery order.
func (e *Engine) Directives() []*Directive {
	out := make([]*Directive, len(e.directives))
	copy(out, e.directives)
	return out
}

// Binding returns a copy of the binding for key.
func (e *Engine) Binding(key string) (Binding, bool) {
	b, ok := e.bindings.get(key)
	if !ok {
		return Binding{}, false
	}
	ds := make([]*Directive, len(b.Directives))
	copy(ds, b.Directives)
	return Binding{Value: b.Value, Directives: ds}, true
}
