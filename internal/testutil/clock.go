package testutil

import (
	"sync"

	"github.com/roach88/sdbind/internal/engine"
)

// DeterministicClock is a resettable engine.Sequencer for tests. Scenarios
// hand one clock to the engine and use it for their own trace events, so
// updates, handler calls and destroys share a single ordering.
//
// Unlike engine.Clock it is safe for concurrent use.
type DeterministicClock struct {
	mu    sync.Mutex
	clock *engine.Clock
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{clock: engine.NewClock()}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock.Next()
}

// Current returns the last value handed out.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock.Current()
}

// Reset rewinds the clock so the next Next returns 1 again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = engine.NewClock()
}
