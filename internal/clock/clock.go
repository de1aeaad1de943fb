// Package clock implements the STM runtime's global timestamp source.
//
// A Clock hands out strictly increasing, totally-ordered uint64 values.
// Committing transactions sample it once to pick a start time and once
// more to pick an end time; the ordering between any two samples is what
// lets the rest of the runtime reason about which transaction happened
// before which.
package clock

import "go.uber.org/atomic"

// Clock is a monotonically increasing 64-bit counter. The zero value
// starts at 0, so the first Tick returns 1 — orecs are seeded at version
// 0, and a real transaction must always be able to commit at a version
// greater than "nothing has ever been written here."
//
// Tick is implemented with an atomic add rather than a hardware
// timestamp counter. On the platforms the Go toolchain targets this
// still gives every instrumented load/store the ordering the algorithm
// needs: Go's memory model guarantees that an atomic operation
// synchronizes with every atomic operation it is ordered after, which is
// the fence a timestamp source for this algorithm must provide.
type Clock struct {
	counter atomic.Uint64
}

// New returns a Clock starting at zero.
func New() *Clock {
	return &Clock{}
}

// Tick returns a value strictly greater than any value previously
// returned by this Clock, including values returned to other concurrent
// callers.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Peek returns the most recently handed out value without advancing the
// clock. Used only for diagnostics; never for deciding an ordering.
func (c *Clock) Peek() uint64 {
	return c.counter.Load()
}

// Bump advances the clock so that the next Tick returns a value strictly
// greater than at least, if it isn't already. A rollback may release an
// orec at a version derived from its own bookkeeping (prevVersion+1)
// rather than from a fresh Tick, and that version must never be allowed
// to exceed the clock itself or a later, legitimately-ticked transaction
// could be assigned a timestamp that already appears to have been
// observed.
func (c *Clock) Bump(atLeast uint64) {
	for {
		cur := c.counter.Load()
		if cur >= atLeast {
			return
		}
		if c.counter.CAS(cur, atLeast) {
			return
		}
	}
}
