package engine

import (
	"strings"

	"github.com/roach88/sdbind/internal/dom"
)

// ParseDirective turns one attribute into a Directive.
//
// The attribute name must be prefix + "-" + name, optionally followed by
// "-" + argument; the argument may itself contain "-". The value is
// "key [| filter | filter ...]".
//
// It returns (nil, false) when the attribute does not carry the prefix or
// names a directive that reg does not know. That is a normal outcome, not
// an error: such attributes are left alone.
//
// The returned Directive has no Element yet; the engine sets it.
func ParseDirective(attr dom.Attribute, prefix string, reg *Registry) (*Directive, bool) {
	rest, ok := strings.CutPrefix(attr.Name, prefix+"-")
	if !ok {
		return nil, false
	}

	name, arg, hasArg := strings.Cut(rest, "-")
	def := reg.lookup(name)
	if def == nil {
		return nil, false
	}

	key, filters := ParseExpression(attr.Value)

	return &Directive{
		Attr:        attr,
		Name:        name,
		Key:         key,
		Argument:    arg,
		HasArgument: hasArg,
		Filters:     filters,
		Definition:  def.def,
		Update:      def.update,
		def:         def,
	}, true
}

// ParseExpression splits an attribute value into its key and filter names.
//
// Both are trimmed. filters is nil when value contains no "|" at all, and
// non-nil (possibly holding empty names) otherwise: "||" yields key "" and
// filters ["", ""].
func ParseExpression(value string) (key string, filters []string) {
	parts := strings.Split(value, "|")
	key = strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return key, nil
	}

	filters = make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		filters = append(filters, strings.TrimSpace(p))
	}
	return key, filters
}

// DirectiveName extracts the directive name from an attribute name, or
// reports false when the attribute does not carry the prefix.
func DirectiveName(attrName, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(attrName, prefix+"-")
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(rest, "-")
	return name, true
}
