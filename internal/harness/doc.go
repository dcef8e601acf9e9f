// Package harness runs YAML binding scenarios against the real engine.
//
// A scenario supplies an HTML template, an initial scope and a list of
// steps (scope assignments, handler swaps, dispatched events, teardown),
// then asserts on the resulting document, handler calls and update trace.
//
// # Scenario Format
//
//	name: capitalize_name
//	description: "capitalize filter applies on seed and on set"
//	template: |
//	  <div id="app"><span id="name" sd-text="name | capitalize"></span></div>
//	root: app                 # default "app"
//	scope:
//	  name: ada
//	handlers:
//	  onClick: clicked        # scope key -> recording handler name
//	steps:
//	  - set: { key: name, value: grace }
//	  - set_handler: { key: onClick, handler: other }
//	  - dispatch: { selector: "#btn", event: click }
//	  - destroy: true
//	assertions:
//	  - type: text
//	    selector: "#name"
//	    expect: Grace
//	  - type: calls
//	    handler: clicked
//	    count: 1
//
// # Assertion Types
//
//   - text: text content of the first element matching selector
//   - html: outer HTML of the first element matching selector
//   - attr / attr_absent: attribute value or absence
//   - has_class / lacks_class: class list membership
//   - display: inline display style ("" or "none")
//   - calls: number of times a recording handler ran
//   - scope: value returned by Scope.Get(key)
//   - update_order: "directive element" labels of the updates, optionally
//     for one key
//   - update_count: number of updates, optionally for one key
//   - journal_count: number of journaled update rows, optionally for one key
//
// # Deterministic Testing
//
// Every scenario runs with:
//   - a fixed run ID (scenario.run_id or testutil.DefaultRunID)
//   - a testutil.DeterministicClock shared by engine updates and handler
//     calls
//   - an in-memory SQLite journal (isolated per scenario)
//
// so the same scenario always produces the same trace, which RunWithGolden
// compares against testdata/golden/<name>.golden.
package harness
