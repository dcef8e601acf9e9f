package directives

import (
	"fmt"

	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/engine"
)

// Handler is an event callback. this is the element carrying the sd-on
// directive, ev the dispatched event.
type Handler func(this *dom.Element, ev *dom.Event)

// AsHandler converts v to a Handler. It accepts a Handler and the plain
// function shapes func(*dom.Element, *dom.Event), func(*dom.Event) and
// func(). Nil functions are rejected.
func AsHandler(v any) (Handler, bool) {
	switch fn := v.(type) {
	case Handler:
		return fn, fn != nil
	case func(*dom.Element, *dom.Event):
		return fn, fn != nil
	case func(*dom.Event):
		if fn == nil {
			return nil, false
		}
		return func(_ *dom.Element, ev *dom.Event) { fn(ev) }, true
	case func():
		if fn == nil {
			return nil, false
		}
		return func(*dom.Element, *dom.Event) { fn() }, true
	}
	return nil, false
}

// On attaches the handler bound to its key as a listener for the event
// named by the directive argument. Assigning a new handler detaches the
// previous one; assigning nil only detaches.
type On struct{}

// Update swaps the listener for event.
func (On) Update(el *dom.Element, value any, event string, d *engine.Directive, _ *engine.Engine) error {
	var handler Handler
	if value != nil {
		h, ok := AsHandler(value)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNotHandler, value)
		}
		handler = h
	}

	if d.Handlers == nil {
		d.Handlers = make(map[string]*dom.Listener)
	}
	if prev, ok := d.Handlers[event]; ok {
		el.RemoveEventListener(event, prev)
		delete(d.Handlers, event)
	}
	if handler == nil {
		return nil
	}

	l := dom.NewListener(func(ev *dom.Event) { handler(el, ev) })
	el.AddEventListener(event, l)
	d.Handlers[event] = l
	return nil
}

// Unbind detaches the listener for event.
func (On) Unbind(el *dom.Element, event string, d *engine.Directive) {
	if l, ok := d.Handlers[event]; ok {
		el.RemoveEventListener(event, l)
		delete(d.Handlers, event)
	}
}

// CustomFilter wraps handler so it only runs for events whose target
// matches every selector. A selector that does not parse never matches.
func (On) CustomFilter(value any, selectors []string) any {
	handler, ok := AsHandler(value)
	if !ok {
		return value
	}
	return Handler(func(this *dom.Element, ev *dom.Event) {
		for _, sel := range selectors {
			match, err := ev.Target.Matches(sel)
			if err != nil || !match {
				return
			}
		}
		handler(this, ev)
	})
}
