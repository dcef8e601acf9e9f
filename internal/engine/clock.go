package engine

// Sequencer stamps updates with increasing sequence numbers. Values must
// be strictly increasing across calls; gaps are allowed.
type Sequencer interface {
	Next() int64
}

// SequencerFunc adapts a function to a Sequencer.
type SequencerFunc func() int64

// Next calls f.
func (f SequencerFunc) Next() int64 { return f() }

// Clock is the engine's default Sequencer: a logical counter owned by one
// engine. Journals and traces order updates by its values, never by wall
// time.
//
// Like Engine, a Clock is not safe for concurrent use. Share a
// synchronized Sequencer when several engines must interleave on one
// ordering.
type Clock struct {
	last int64
}

// NewClock returns a clock whose first stamp is 1.
func NewClock() *Clock {
	return NewClockAt(0)
}

// NewClockAt returns a clock whose first stamp is start+1, for resuming an
// ordering persisted elsewhere.
func NewClockAt(start int64) *Clock {
	return &Clock{last: start}
}

// Next advances the clock and returns the new stamp.
func (c *Clock) Next() int64 {
	c.last++
	return c.last
}

// Current returns the last stamp handed out (the start value before any
// Next).
func (c *Clock) Current() int64 {
	return c.last
}
