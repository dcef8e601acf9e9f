// Package ir holds the value model shared by the engine, the journal and the
// harness.
//
// Scope values are plain Go values: nil (an unset key), bool, string, the
// integer and float kinds, []any, map[string]any, and functions (event
// handlers). This package defines how those values behave where the binding
// engine needs a uniform answer:
//   - Truthy: the falsy set that short-circuits the filter pipeline
//   - String: the text form directives and filters render
//   - Normalize: cleanup of values decoded from YAML, JSON or CUE
//   - MarshalCanonical: deterministic JSON for journals and golden traces
//
// ir imports nothing internal.
package ir
