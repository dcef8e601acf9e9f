// Package engine implements the sdbind directive binding engine.
//
// The engine scans a root element and its descendants for prefixed
// attributes ("directives") such as sd-text="name | capitalize", wires each
// one to a key of the engine's Scope, and keeps the document in sync: a
// Scope.Set on a key runs every directive bound to that key.
//
// ARCHITECTURE:
//
// Bootstrap (New) is linear:
//  1. Locate: find the root by id and every descendant carrying a
//     registered directive attribute; the root is visited last.
//  2. Snapshot: copy each element's attributes before touching it.
//  3. Bind: parse each attribute, strip it from the element, append the
//     Directive to its key's Binding and install the key's scope cell once.
//  4. Seed: assign every bound key from the caller's initial scope, which
//     runs the first update of every directive.
//
// Update fan-out:
// One Set stores the value and then, for each directive bound to the key
// in discovery order, runs the filter pipeline for that directive's own
// filter list and calls its update function. A failing directive does not
// stop its siblings; Set returns every failure joined.
//
// Filter pipeline:
// Falsy values and directives without filter syntax skip filtering. A
// definition implementing CustomFilterer receives the whole filter list;
// otherwise named filters apply left to right and unknown names pass the
// value through.
//
// Silent-failure parsing:
// An attribute whose directive name is not registered is left on the
// element and ignored. ParseDirective reports this as (nil, false), never as
// an error, so a template typo cannot break an otherwise working page.
//
// CONCURRENCY:
//
// Everything is synchronous and single-threaded. An Engine and its Scope
// must not be used from multiple goroutines at once; no locks are taken.
package engine
