package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sdbind/internal/dom"
)

// allHooks implements every optional capability.
type allHooks struct{}

func (allHooks) Update(*dom.Element, any, string, *Directive, *Engine) error { return nil }
func (allHooks) Bind(*dom.Element, any)                                      {}
func (allHooks) Unbind(*dom.Element, string, *Directive)                     {}
func (allHooks) CustomFilter(v any, _ []string) any                          { return v }

func TestRegistry_ResolvesCapabilities(t *testing.T) {
	reg := MustRegistry(map[string]Definition{
		"plain": textDef,
		"full":  allHooks{},
	})

	plain := reg.lookup("plain")
	require.NotNil(t, plain)
	assert.NotNil(t, plain.update)
	assert.Nil(t, plain.bind)
	assert.Nil(t, plain.unbind)
	assert.Nil(t, plain.customFilter)

	full := reg.lookup("full")
	require.NotNil(t, full)
	assert.NotNil(t, full.update)
	assert.NotNil(t, full.bind)
	assert.NotNil(t, full.unbind)
	assert.NotNil(t, full.customFilter)

	assert.True(t, reg.HasCustomFilter("full"))
	assert.False(t, reg.HasCustomFilter("plain"))
	assert.Equal(t, []string{"full", "plain"}, reg.Names())
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustRegistry(map[string]Definition{"text": textDef})

	assert.True(t, reg.Has("text"))
	assert.False(t, reg.Has("show"))

	def, ok := reg.Get("text")
	assert.True(t, ok)
	assert.NotNil(t, def)

	_, ok = reg.Get("show")
	assert.False(t, ok)

	var nilReg *Registry
	assert.False(t, nilReg.Has("text"))
	assert.Nil(t, nilReg.Names())
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := &Registry{}

	assert.ErrorIs(t, reg.Register("", textDef), ErrEmptyDirectiveName)
	assert.ErrorIs(t, reg.Register("x", nil), ErrNilDefinition)
	assert.ErrorIs(t, reg.Register("x", UpdateFunc(nil)), ErrNilDefinition)

	require.NoError(t, reg.Register("x", textDef))
	assert.ErrorIs(t, reg.Register("x", textDef), ErrDuplicateDirective)

	_, err := NewRegistry(map[string]Definition{"": textDef})
	assert.ErrorIs(t, err, ErrEmptyDirectiveName)

	assert.Panics(t, func() { MustRegistry(map[string]Definition{"bad": nil}) })
}
