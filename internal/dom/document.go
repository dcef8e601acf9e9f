package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root     *html.Node
	elements map[*html.Node]*Element
}

// Parse reads an HTML document from r.
// Fragments are accepted; the parser adds the implied html/head/body.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the underlying document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// GetElementByID returns the first element whose id attribute equals id,
// or nil when there is none.
func (d *Document) GetElementByID(id string) *Element {
	n := cascadia.Query(d.root, matchFunc(func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	}))
	if n == nil {
		return nil
	}
	return d.wrap(n)
}

// QuerySelector returns the first element matching the CSS selector.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	n := cascadia.Query(d.root, sel)
	if n == nil {
		return nil, nil
	}
	return d.wrap(n), nil
}

// QuerySelectorAll returns every element matching the CSS selector in
// document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return d.wrapAll(cascadia.QueryAll(d.root, sel)), nil
}

// Elements returns every element of the document in document order.
func (d *Document) Elements() []*Element {
	return d.wrapAll(cascadia.QueryAll(d.root, matchFunc(isElement)))
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" if rendering fails.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// matchFunc adapts a predicate to cascadia.Matcher.
type matchFunc func(n *html.Node) bool

func (f matchFunc) Match(n *html.Node) bool {
	return isElement(n) && f(n)
}

func isElement(n *html.Node) bool {
	return n.Type == html.ElementNode
}

func compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadSelector, selector, err)
	}
	return sel, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
