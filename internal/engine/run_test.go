package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	const iterations = 1000

	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := gen.Generate()
		require.False(t, seen[id], "run ID %s generated twice", id)
		seen[id] = true
	}
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() }, "should panic when all IDs are used")
}

func TestFixedGenerator_Empty(t *testing.T) {
	gen := NewFixedGenerator()
	assert.Panics(t, func() { gen.Generate() })
}

func TestEngine_RunIDFromGenerator(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span sd-text="name"></span></div>`)

	e, err := New(doc, Options{ID: "app"},
		WithDirectives(testRegistry(t, nil)),
		WithRunIDGenerator(NewFixedGenerator("run-fixed")))
	require.NoError(t, err)

	assert.Equal(t, "run-fixed", e.RunID())
}

func TestEngine_DefaultRunIDIsUUIDv7(t *testing.T) {
	doc := parseDoc(t, `<div id="app"></div>`)

	e, err := New(doc, Options{ID: "app"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(e.RunID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
