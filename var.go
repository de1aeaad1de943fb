package stm

import (
	"sync/atomic"
	"unsafe"

	"github.com/rochester-stm/orec/internal/orec"
)

// Var holds one STM variable: a transactional memory location. A Var's
// orec is resolved once, at construction, by hashing the Var's own
// address — stable for its lifetime — through the shared orec table,
// rather than recomputed on every access.
type Var struct {
	o   *orec.Orec
	val atomic.Value
}

// box wraps every value a Var stores so that sync/atomic.Value's "every
// Store must use the same concrete type" rule is satisfied regardless
// of what type the caller's value actually is — including storing
// different concrete types across successive Sets, or a nil interface.
type box struct{ v any }

// NewVar returns a new STM variable holding val.
func NewVar(val any) *Var {
	v := &Var{}
	v.val.Store(box{val})
	v.o = engine.Table().Get(unsafe.Pointer(v))
	return v
}

// Orec implements txn.Location.
func (v *Var) Orec() *orec.Orec { return v.o }

// Peek implements txn.Location: an unsynchronized-with-the-protocol read
// of the current raw value, used both by the engine's bracketed read
// and to snapshot the old value into the undo log before a write.
func (v *Var) Peek() any { return v.val.Load().(box).v }

// Poke implements txn.Location. mask is ignored: a Var has no sub-word
// addressing, so every write replaces the whole boxed value
// (orec.MaskFull, always).
func (v *Var) Poke(val any, _ orec.Mask) { v.val.Store(box{val}) }
