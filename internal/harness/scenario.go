package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRoot is the root element id used when a scenario omits root.
const DefaultRoot = "app"

// Scenario defines one binding scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Template is the HTML document to bind.
	Template string `yaml:"template"`

	// Root is the id of the root element (default "app").
	Root string `yaml:"root,omitempty"`

	// Prefix overrides the directive prefix (default "sd").
	Prefix string `yaml:"prefix,omitempty"`

	// RunID is an optional fixed run ID. If empty, testutil.DefaultRunID
	// is used so golden files stay stable.
	RunID string `yaml:"run_id,omitempty"`

	// Scope holds initial values.
	Scope map[string]any `yaml:"scope,omitempty"`

	// Handlers seeds scope keys with recording handlers, keyed by scope
	// key; the value names the handler in calls assertions and the trace.
	Handlers map[string]string `yaml:"handlers,omitempty"`

	// ExpectSeedError, when set, is a substring the seeding error must
	// contain. Without it any seeding error fails the scenario.
	ExpectSeedError string `yaml:"expect_seed_error,omitempty"`

	// Steps run in order after construction.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final document, calls and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one of Set, SetHandler, Dispatch
// and Destroy is given.
type Step struct {
	Set        *SetStep        `yaml:"set,omitempty"`
	SetHandler *SetHandlerStep `yaml:"set_handler,omitempty"`
	Dispatch   *DispatchStep   `yaml:"dispatch,omitempty"`
	Destroy    bool            `yaml:"destroy,omitempty"`

	// ExpectError, when set, is a substring the step's error must contain.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// SetStep assigns a scope value.
type SetStep struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// SetHandlerStep assigns a recording handler to a scope key. An empty
// Handler assigns nil, which detaches event listeners.
type SetHandlerStep struct {
	Key     string `yaml:"key"`
	Handler string `yaml:"handler"`
}

// DispatchStep dispatches an event on the first element matching Selector.
type DispatchStep struct {
	Selector string `yaml:"selector"`
	Event    string `yaml:"event"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Selector picks the element (text, html, attr, attr_absent,
	// has_class, lacks_class, display).
	Selector string `yaml:"selector,omitempty"`

	// Name is the attribute name (attr, attr_absent).
	Name string `yaml:"name,omitempty"`

	// Class is the class name (has_class, lacks_class).
	Class string `yaml:"class,omitempty"`

	// Key narrows update_order, update_count and journal_count to one key,
	// and names the key for scope.
	Key string `yaml:"key,omitempty"`

	// Handler names the recording handler (calls).
	Handler string `yaml:"handler,omitempty"`

	// Expect is the expected value (text, html, attr, display, scope).
	Expect any `yaml:"expect,omitempty"`

	// Count is the expected number (calls, update_count, journal_count).
	Count int `yaml:"count,omitempty"`

	// Sequence is the expected label order (update_order).
	Sequence []string `yaml:"sequence,omitempty"`
}

// Assertion type constants.
const (
	AssertText         = "text"
	AssertHTML         = "html"
	AssertAttr         = "attr"
	AssertAttrAbsent   = "attr_absent"
	AssertHasClass     = "has_class"
	AssertLacksClass   = "lacks_class"
	AssertDisplay      = "display"
	AssertCalls        = "calls"
	AssertScope        = "scope"
	AssertUpdateOrder  = "update_order"
	AssertUpdateCount  = "update_count"
	AssertJournalCount = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Template == "" {
		return fmt.Errorf("template is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step names exactly one action.
func validateStep(index int, st *Step) error {
	n := 0
	if st.Set != nil {
		n++
	}
	if st.SetHandler != nil {
		n++
	}
	if st.Dispatch != nil {
		n++
		if st.Dispatch.Selector == "" || st.Dispatch.Event == "" {
			return fmt.Errorf("steps[%d]: dispatch needs selector and event", index)
		}
	}
	if st.Destroy {
		n++
	}
	if n != 1 {
		return fmt.Errorf("steps[%d]: exactly one of set, set_handler, dispatch, destroy is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertText, AssertHTML, AssertDisplay:
		if a.Selector == "" {
			return fmt.Errorf("assertions[%d]: selector is required for %s", index, a.Type)
		}
		if _, ok := a.Expect.(string); !ok && a.Expect != nil {
			return fmt.Errorf("assertions[%d]: expect must be a string for %s", index, a.Type)
		}
	case AssertAttr, AssertAttrAbsent:
		if a.Selector == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: selector and name are required for %s", index, a.Type)
		}
	case AssertHasClass, AssertLacksClass:
		if a.Selector == "" || a.Class == "" {
			return fmt.Errorf("assertions[%d]: selector and class are required for %s", index, a.Type)
		}
	case AssertCalls:
		if a.Handler == "" {
			return fmt.Errorf("assertions[%d]: handler is required for calls", index)
		}
	case AssertScope:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for scope", index)
		}
	case AssertUpdateOrder:
		if len(a.Sequence) == 0 {
			return fmt.Errorf("assertions[%d]: sequence is required for update_order", index)
		}
	case AssertUpdateCount, AssertJournalCount:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	return nil
}
