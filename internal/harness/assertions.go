package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/ir"
	"github.com/roach88/sdbind/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, event.Label())
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions inspect beyond the result.
type AssertionContext struct {
	Doc    *dom.Document
	Engine *engine.Engine
	Store  *store.Store
	Ctx    context.Context
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertText:
		return assertElement(actx, a, func(el *dom.Element) error {
			return expectString(a, el.TextContent())
		})
	case AssertHTML:
		return assertElement(actx, a, func(el *dom.Element) error {
			html, err := el.OuterHTML()
			if err != nil {
				return err
			}
			return expectString(a, html)
		})
	case AssertAttr:
		return assertElement(actx, a, func(el *dom.Element) error {
			v, ok := el.GetAttribute(a.Name)
			if !ok {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("attribute %q on %s", a.Name, a.Selector),
					Actual:   "attribute absent",
				}
			}
			return expectString(a, v)
		})
	case AssertAttrAbsent:
		return assertElement(actx, a, func(el *dom.Element) error {
			if v, ok := el.GetAttribute(a.Name); ok {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("no attribute %q on %s", a.Name, a.Selector),
					Actual:   fmt.Sprintf("%s=%q", a.Name, v),
				}
			}
			return nil
		})
	case AssertHasClass, AssertLacksClass:
		want := a.Type == AssertHasClass
		return assertElement(actx, a, func(el *dom.Element) error {
			if el.ClassList().Contains(a.Class) != want {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("class %q present=%t on %s", a.Class, want, a.Selector),
					Actual:   fmt.Sprintf("classes %v", el.ClassList().Values()),
				}
			}
			return nil
		})
	case AssertDisplay:
		return assertElement(actx, a, func(el *dom.Element) error {
			return expectString(a, el.Style().Get("display"))
		})
	case AssertCalls:
		if got := result.Calls[a.Handler]; got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d calls of %s", a.Count, a.Handler),
				Actual:   fmt.Sprintf("%d calls", got),
				Trace:    result.Trace,
			}
		}
		return nil
	case AssertScope:
		got := actx.Engine.Scope().Get(a.Key)
		if !ir.Equal(ir.Normalize(a.Expect), got) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s = %v (type %T)", a.Key, a.Expect, a.Expect),
				Actual:   fmt.Sprintf("%s = %v (type %T)", a.Key, got, got),
			}
		}
		return nil
	case AssertUpdateOrder:
		return assertUpdateOrder(result, a)
	case AssertUpdateCount:
		if got := len(result.Updates(a.Key)); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d updates%s", a.Count, forKey(a.Key)),
				Actual:   fmt.Sprintf("%d updates", got),
				Trace:    result.Trace,
			}
		}
		return nil
	case AssertJournalCount:
		rows, err := actx.Store.ReadUpdates(actx.Ctx, store.UpdateFilter{
			RunID: actx.Engine.RunID(),
			Key:   a.Key,
		})
		if err != nil {
			return err
		}
		if len(rows) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d journal rows%s", a.Count, forKey(a.Key)),
				Actual:   fmt.Sprintf("%d rows", len(rows)),
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertElement runs check against the first element matching a.Selector.
func assertElement(actx *AssertionContext, a Assertion, check func(*dom.Element) error) error {
	el, err := actx.Doc.QuerySelector(a.Selector)
	if err != nil {
		return err
	}
	if el == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("element matching %s", a.Selector),
			Actual:   "no element found",
		}
	}
	return check(el)
}

func expectString(a Assertion, got string) error {
	want, _ := a.Expect.(string)
	if got != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%q at %s", want, a.Selector),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

// assertUpdateOrder checks that update labels appear in the given order.
// Updates in between are allowed; each expected label matches the first
// unmatched update after the previous match.
func assertUpdateOrder(result *Result, a Assertion) error {
	updates := result.Updates(a.Key)
	pos := 0
	for _, want := range a.Sequence {
		found := false
		for pos < len(updates) {
			label := updates[pos].Label()
			pos++
			if label == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("updates in order%s: %v", forKey(a.Key), a.Sequence),
				Actual:   fmt.Sprintf("%q not found in order", want),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func forKey(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf(" for key %q", key)
}
