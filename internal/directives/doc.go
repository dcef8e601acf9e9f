// Package directives provides the stock sdbind directives:
//
//	sd-text="key"          sets the element's text content
//	sd-show="key"          hides the element (display: none) when key is falsy
//	sd-class-NAME="key"    adds class NAME when key is truthy, removes it otherwise
//	sd-on-EVENT="key"      attaches the Handler stored under key for EVENT
//
// sd-on treats its filter list as CSS selectors: "onClick | li.item"
// only calls the handler for events whose target matches every selector.
//
// Default returns a registry holding all four.
package directives
