package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth is the default limit on nested Scope.Set calls.
const DefaultMaxDepth = 64

// ErrDepthExceeded is matched by every DepthExceededError.
var ErrDepthExceeded = errors.New("nested assignment limit exceeded")

// DepthExceededError is returned by Scope.Set when an update function
// assigns a bound key from inside another update deeper than the limit.
//
// Directives that write back into the scope (two keys mirroring each other,
// a key that re-renders itself) would otherwise recurse without end.
type DepthExceededError struct {
	Key   string
	Depth int
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("set %q at depth %d exceeds limit %d", e.Key, e.Depth, e.Limit)
}

// Is reports whether target is ErrDepthExceeded.
func (e *DepthExceededError) Is(target error) bool {
	return target == ErrDepthExceeded
}

// depthGuard counts Scope.Set calls currently on the stack.
type depthGuard struct {
	limit   int
	current int
}

// enter records one more nested Set for key. A failed enter needs no
// matching leave.
func (g *depthGuard) enter(key string) error {
	if g.current >= g.limit {
		return &DepthExceededError{Key: key, Depth: g.current + 1, Limit: g.limit}
	}
	g.current++
	return nil
}

func (g *depthGuard) leave() {
	g.current--
}

// WithMaxDepth sets the nested assignment limit (default DefaultMaxDepth).
// Non-positive values keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.depth.limit = n
		}
	}
}
