package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Attribute is a detached copy of one attribute name/value pair.
type Attribute struct {
	Name  string
	Value string
}

// Element is an element node of a Document.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]*Listener
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// ID returns the id attribute, or "".
func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

// Attributes returns a snapshot of the element's attributes. Mutating the
// element afterwards does not affect the returned slice.
func (e *Element) Attributes() []Attribute {
	out := make([]Attribute, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		out = append(out, Attribute{Name: name, Value: a.Val})
	}
	return out
}

// GetAttribute returns the value of the named attribute.
func (e *Element) GetAttribute(name string) (string, bool) {
	return attr(e.node, name)
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := attr(e.node, name)
	return ok
}

// SetAttribute sets (or adds) the named attribute.
func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute removes the named attribute. Removing an absent
// attribute is a no-op.
func (e *Element) RemoveAttribute(name string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr = append(e.node.Attr[:i:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// TextContent returns the concatenated text of all descendant text nodes.
func (e *Element) TextContent() string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetTextContent replaces all children with a single text node.
// An empty string leaves the element without children.
func (e *Element) SetTextContent(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Style returns the element's inline style declarations.
func (e *Element) Style() *Style {
	return &Style{el: e}
}

// ClassList returns the element's class list.
func (e *Element) ClassList() *ClassList {
	return &ClassList{el: e}
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// QueryAll returns every descendant element (not e itself) for which match
// returns true, in document order.
func (e *Element) QueryAll(match func(*Element) bool) []*Element {
	nodes := cascadia.QueryAll(e.node, matchFunc(func(n *html.Node) bool {
		return match(e.doc.wrap(n))
	}))
	return e.doc.wrapAll(nodes)
}

// QuerySelector returns the first descendant matching selector, or nil.
func (e *Element) QuerySelector(selector string) (*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	n := cascadia.Query(e.node, sel)
	if n == nil {
		return nil, nil
	}
	return e.doc.wrap(n), nil
}

// QuerySelectorAll returns the descendants matching selector.
func (e *Element) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return e.doc.wrapAll(cascadia.QueryAll(e.node, sel)), nil
}

// Matches reports whether the element matches the CSS selector.
func (e *Element) Matches(selector string) (bool, error) {
	sel, err := compile(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(e.node), nil
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return "", fmt.Errorf("render <%s>: %w", e.TagName(), err)
	}
	return buf.String(), nil
}

// Path describes the element's position for logs and traces. The path is
// anchored at the nearest ancestor (or self) carrying an id, e.g.
// "div#app/ul[1]/li[2]". Indexes count same-tag element siblings from 1.
func (e *Element) Path() string {
	var segs []string
	for cur := e; cur != nil; cur = cur.Parent() {
		if id := cur.ID(); id != "" {
			segs = append(segs, cur.TagName()+"#"+id)
			break
		}
		segs = append(segs, fmt.Sprintf("%s[%d]", cur.TagName(), cur.index()))
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

func (e *Element) index() int {
	i := 1
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == e.node.Data {
			i++
		}
	}
	return i
}
