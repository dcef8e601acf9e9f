package engine

import "github.com/roach88/sdbind/internal/dom"

// RunInfo describes an engine after its directives are bound and before
// the initial scope is assigned.
type RunInfo struct {
	RunID  string
	Root   *dom.Element
	Prefix string
	Keys   []string
}

// UpdateEvent is one directive update.
type UpdateEvent struct {
	RunID string

	// Seq is the engine clock value stamped on this update. Seqs are
	// strictly increasing within a run.
	Seq int64

	Key       string
	Directive *Directive

	// Raw is the value assigned to the key; Value is what the update
	// function received after filtering.
	Raw   any
	Value any

	// Err is the error returned by the update function, if any.
	Err error
}

// Observer receives engine lifecycle and update notifications. Observers
// run synchronously on the caller's goroutine and must not call back into
// the engine.
type Observer interface {
	BeginRun(info RunInfo)
	ObserveUpdate(ev UpdateEvent)
}

// ObserverFunc adapts a function to an Observer that only watches updates.
type ObserverFunc func(ev UpdateEvent)

// BeginRun does nothing.
func (f ObserverFunc) BeginRun(RunInfo) {}

// ObserveUpdate calls f.
func (f ObserverFunc) ObserveUpdate(ev UpdateEvent) { f(ev) }

// MultiObserver fans notifications out to every non-nil observer, in
// order.
func MultiObserver(obs ...Observer) Observer {
	var list multiObserver
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) BeginRun(info RunInfo) {
	for _, o := range m {
		o.BeginRun(info)
	}
}

func (m multiObserver) ObserveUpdate(ev UpdateEvent) {
	for _, o := range m {
		o.ObserveUpdate(ev)
	}
}
