package testutil

// DefaultRunID is the run ID used when a scenario does not name one.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator returns the same run ID every time, so a scenario
// produces byte-identical journals and golden traces on every run.
//
// Unlike engine.FixedGenerator, which hands out IDs in sequence and panics
// when they run out, this generator never runs out.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator returning id, or DefaultRunID
// when id is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
