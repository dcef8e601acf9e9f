// Package filters provides the stock sdbind filters, applied with the pipe
// syntax of a directive value: sd-text="name | capitalize".
package filters

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/ir"
)

// Capitalize upper-cases the first character of the value's string form.
func Capitalize(value any) any {
	s := ir.String(value)
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}

// Uppercase upper-cases the value's string form.
func Uppercase(value any) any {
	return cases.Upper(language.Und).String(ir.String(value))
}

// Lowercase lower-cases the value's string form.
func Lowercase(value any) any {
	return cases.Lower(language.Und).String(ir.String(value))
}

// Definitions returns the stock filter set keyed by name.
func Definitions() map[string]engine.FilterFunc {
	return map[string]engine.FilterFunc{
		"capitalize": Capitalize,
		"uppercase":  Uppercase,
		"lowercase":  Lowercase,
	}
}

// Default returns a filter registry holding capitalize, uppercase and
// lowercase.
func Default() *engine.Filters {
	return engine.MustFilters(Definitions())
}
