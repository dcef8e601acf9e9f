package dom

import "errors"

// ErrBadSelector is returned when a CSS selector does not parse.
var ErrBadSelector = errors.New("dom: invalid selector")

// Event is a dispatched DOM event.
type Event struct {
	// Type is the event name, e.g. "click".
	Type string

	// Target is the element the event was dispatched on.
	Target *Element

	// CurrentTarget is the element whose listeners are running.
	CurrentTarget *Element

	stopped bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// StopPropagation prevents the event from bubbling further.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// Listener is an attached event callback. Listeners are compared by
// pointer, so keep the *Listener returned by NewListener to detach it.
type Listener struct {
	fn func(ev *Event)
}

// NewListener wraps fn as a Listener.
func NewListener(fn func(ev *Event)) *Listener {
	return &Listener{fn: fn}
}

// AddEventListener attaches l for events of type typ. Attaching the same
// listener twice for one type is a no-op.
func (e *Element) AddEventListener(typ string, l *Listener) {
	if l == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]*Listener)
	}
	for _, existing := range e.listeners[typ] {
		if existing == l {
			return
		}
	}
	e.listeners[typ] = append(e.listeners[typ], l)
}

// RemoveEventListener detaches l. Removing an unknown listener is a no-op.
func (e *Element) RemoveEventListener(typ string, l *Listener) {
	ls := e.listeners[typ]
	for i, existing := range ls {
		if existing == l {
			e.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of listeners attached for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// DispatchEvent delivers ev to e and then bubbles it through the ancestors
// until a listener calls StopPropagation.
func (e *Element) DispatchEvent(ev *Event) {
	ev.Target = e
	for cur := e; cur != nil && !ev.stopped; cur = cur.Parent() {
		ls := cur.listeners[ev.Type]
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = cur
		// Listeners may detach themselves while running.
		snapshot := append([]*Listener(nil), ls...)
		for _, l := range snapshot {
			l.fn(ev)
		}
	}
	ev.CurrentTarget = nil
}

// Click dispatches a "click" event on e.
func (e *Element) Click() {
	e.DispatchEvent(NewEvent("click"))
}
