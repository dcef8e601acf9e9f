package dom

import (
	"strings"
)

// Style edits the inline style attribute of an element.
//
// Only "property: value" declarations separated by ";" are understood;
// that is all the style attribute grammar directives rely on.
type Style struct {
	el *Element
}

type declaration struct {
	prop  string
	value string
}

// Get returns the value of an inline style property, or "".
func (s *Style) Get(prop string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	for _, d := range s.declarations() {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Set assigns an inline style property. An empty value removes the
// property, as assigning "" does in a browser.
func (s *Style) Set(prop, value string) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)

	_, had := s.el.GetAttribute("style")
	decls := s.declarations()
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop != prop {
			out = append(out, d)
			continue
		}
		if value != "" && !replaced {
			out = append(out, declaration{prop: prop, value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, declaration{prop: prop, value: value})
	}

	if len(out) == 0 && !had {
		return
	}
	s.el.SetAttribute("style", serialize(out))
}

func (s *Style) declarations() []declaration {
	raw, _ := s.el.GetAttribute("style")
	var decls []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

func serialize(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.value+";")
	}
	return strings.Join(parts, " ")
}

// ClassList edits the class attribute of an element.
type ClassList struct {
	el *Element
}

// Values returns the classes in attribute order.
func (c *ClassList) Values() []string {
	raw, _ := c.el.GetAttribute("class")
	return strings.Fields(raw)
}

// Contains reports whether name is in the list.
func (c *ClassList) Contains(name string) bool {
	for _, v := range c.Values() {
		if v == name {
			return true
		}
	}
	return false
}

// Add appends name if it is not already present.
func (c *ClassList) Add(name string) {
	if name == "" || c.Contains(name) {
		return
	}
	c.el.SetAttribute("class", strings.Join(append(c.Values(), name), " "))
}

// Remove drops every occurrence of name. The class attribute is kept
// (possibly empty) once it exists.
func (c *ClassList) Remove(name string) {
	if !c.el.HasAttribute("class") {
		return
	}
	values := c.Values()
	out := values[:0]
	for _, v := range values {
		if v != name {
			out = append(out, v)
		}
	}
	c.el.SetAttribute("class", strings.Join(out, " "))
}

// Toggle adds name when on is true and removes it otherwise.
func (c *ClassList) Toggle(name string, on bool) {
	if on {
		c.Add(name)
		return
	}
	c.Remove(name)
}
