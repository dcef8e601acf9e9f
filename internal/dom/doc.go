// Package dom is the in-memory document the binding engine runs against.
//
// A Document wraps a golang.org/x/net/html node tree and hands out Element
// values with the small subset of the browser DOM that directives need:
//
//   - attribute access (snapshot, get, set, remove)
//   - text content
//   - inline style properties (style="display: none")
//   - the class list
//   - event listeners with bubbling dispatch
//   - CSS selector queries and matching (github.com/andybalholm/cascadia)
//
// Element identity is stable: the same html.Node always yields the same
// *Element, so listeners attached through one lookup are visible through
// another.
//
// A Document is not safe for concurrent use.
package dom
