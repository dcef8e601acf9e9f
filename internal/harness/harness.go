package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/sdbind/internal/directives"
	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/filters"
	"github.com/roach88/sdbind/internal/ir"
	"github.com/roach88/sdbind/internal/store"
	"github.com/roach88/sdbind/internal/testutil"
)

// Harness holds the state of one scenario execution.
type Harness struct {
	doc     *dom.Document
	engine  *engine.Engine
	store   *store.Store
	journal *store.Journal
	clock   *testutil.DeterministicClock
	result  *Result
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh document and a fresh in-memory
// journal. The returned error reports harness failures (bad template,
// missing root, journal unavailable); scenario failures are recorded in
// Result.Errors.
//
// Execution flow:
//  1. Parse the template and open the journal
//  2. Build the engine with the stock directives and filters
//  3. Execute steps
//  4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	doc, err := dom.ParseString(scenario.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	h := &Harness{
		doc:     doc,
		store:   st,
		journal: store.NewJournal(ctx, st),
		clock:   testutil.NewDeterministicClock(),
		result:  NewResult(),
		logger:  testutil.DiscardLogger(),
	}

	root := scenario.Root
	if root == "" {
		root = DefaultRoot
	}

	scope := ir.NormalizeScope(scenario.Scope)
	for key, name := range scenario.Handlers {
		scope[key] = h.handler(name)
	}

	eng, err := engine.New(doc, engine.Options{ID: root, Scope: scope},
		engine.WithDirectives(directives.Default()),
		engine.WithFilters(filters.Default()),
		engine.WithPrefix(scenario.Prefix),
		engine.WithLogger(h.logger),
		engine.WithClock(h.clock),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithObserver(engine.MultiObserver(engine.ObserverFunc(h.observe), h.journal)),
	)
	if err != nil && !errors.Is(err, engine.ErrSeed) {
		return nil, err
	}
	h.engine = eng
	h.result.RunID = eng.RunID()
	h.checkError("seed", err, scenario.ExpectSeedError)

	for i, step := range scenario.Steps {
		err := h.executeStep(step)
		h.checkError(fmt.Sprintf("steps[%d]", i), err, step.ExpectError)
	}

	if html, err := eng.El().OuterHTML(); err == nil {
		h.result.HTML = html
	} else {
		h.result.AddError(fmt.Sprintf("render root: %v", err))
	}

	if err := h.journal.Err(); err != nil {
		h.result.AddError(fmt.Sprintf("journal: %v", err))
	}

	actx := &AssertionContext{
		Doc:    doc,
		Engine: eng,
		Store:  st,
		Ctx:    ctx,
	}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// checkError records a failure when err does not match the expectation:
// no error when want is empty, an error containing want otherwise.
func (h *Harness) checkError(where string, err error, want string) {
	switch {
	case want == "" && err != nil:
		h.result.AddError(fmt.Sprintf("%s: unexpected error: %v", where, err))
	case want != "" && err == nil:
		h.result.AddError(fmt.Sprintf("%s: expected error containing %q, got none", where, want))
	case want != "" && !strings.Contains(err.Error(), want):
		h.result.AddError(fmt.Sprintf("%s: expected error containing %q, got: %v", where, want, err))
	}
}

// executeStep runs one step against the engine.
func (h *Harness) executeStep(step Step) error {
	switch {
	case step.Set != nil:
		return h.engine.Scope().Set(step.Set.Key, ir.Normalize(step.Set.Value))

	case step.SetHandler != nil:
		var v any
		if step.SetHandler.Handler != "" {
			v = h.handler(step.SetHandler.Handler)
		}
		return h.engine.Scope().Set(step.SetHandler.Key, v)

	case step.Dispatch != nil:
		el, err := h.doc.QuerySelector(step.Dispatch.Selector)
		if err != nil {
			return err
		}
		if el == nil {
			return fmt.Errorf("dispatch: no element matches %q", step.Dispatch.Selector)
		}
		el.DispatchEvent(dom.NewEvent(step.Dispatch.Event))
		return nil

	case step.Destroy:
		h.engine.Destroy()
		h.result.Trace = append(h.result.Trace, TraceEvent{
			Type: EventDestroy,
			Seq:  h.clock.Next(),
		})
		return nil
	}
	return fmt.Errorf("empty step")
}

// handler returns a recording handler named name. Each call counts toward
// Result.Calls and appends a call event to the trace.
func (h *Harness) handler(name string) directives.Handler {
	return func(this *dom.Element, ev *dom.Event) {
		h.result.Calls[name]++
		h.result.Trace = append(h.result.Trace, TraceEvent{
			Type:    EventCall,
			Seq:     h.clock.Next(),
			Handler: name,
			Element: this.Path(),
			Event:   ev.Type,
			Target:  ev.Target.Path(),
		})
	}
}

// observe appends an engine update to the trace.
func (h *Harness) observe(ev engine.UpdateEvent) {
	te := TraceEvent{
		Type:      EventUpdate,
		Seq:       ev.Seq,
		Key:       ev.Key,
		Directive: ev.Directive.Name,
		Argument:  ev.Directive.Argument,
		Element:   ev.Directive.Element.Path(),
		Raw:       traceValue(ev.Raw),
		Value:     traceValue(ev.Value),
	}
	if ev.Err != nil {
		te.Error = ev.Err.Error()
	}
	h.result.Trace = append(h.result.Trace, te)
}

// traceValue maps handlers to ir.FunctionPlaceholder so traces hold data
// only.
func traceValue(v any) any {
	if _, ok := directives.AsHandler(v); ok {
		return ir.FunctionPlaceholder
	}
	return v
}

// CallNames returns the names of handlers that ran, sorted.
func (r *Result) CallNames() []string {
	names := make([]string, 0, len(r.Calls))
	for name := range r.Calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
