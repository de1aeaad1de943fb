// Package txn implements the OrecEager transaction descriptor and the
// begin/read/write/commit/rollback/validate protocol over an orec table
// and a global clock. The root stm package is the hand-written client
// that sits on top of it.
package txn

import (
	"github.com/rochester-stm/orec/internal/orec"
)

// undoEntry is one (address, old_value, mask) triple in a transaction's
// undo log, in the order the write occurred. addr is the Location the
// caller wrote — the root stm package passes *Var. The engine reaches a
// location's value only through its Peek and Poke methods, so it stays
// agnostic to what a "word" actually is.
type undoEntry struct {
	addr Location
	old  any
	mask orec.Mask
}

// Location is a transactional memory location: something that can be
// read and restored by masked value, and that resolves to a stable orec
// via Orec(). The root stm package's *Var implements this.
type Location interface {
	// Orec returns the ownership record this location hashes to. Must
	// be stable for the lifetime of the location.
	Orec() *orec.Orec
	// Peek returns the location's current raw value, bypassing the STM
	// protocol. Used only to snapshot the old value for the undo log
	// and to restore it on rollback.
	Peek() any
	// Poke overwrites the location's raw value, bypassing the STM
	// protocol. Used for both the in-place transactional write and the
	// undo-log replay on rollback.
	Poke(val any, mask orec.Mask)
}

// Allocator is a narrow per-transaction allocator hook. Go's garbage
// collector makes a custom per-transaction allocator unnecessary for
// correctness, so the default NoopAllocator satisfies every transaction;
// Allocator exists so a caller embedding this engine in an
// arena-allocated context can still hook transaction boundaries.
type Allocator interface {
	OnBegin()
	OnCommit()
	OnAbort()
}

// NoopAllocator is the default Allocator: no hooks.
type NoopAllocator struct{}

// OnBegin implements Allocator.
func (NoopAllocator) OnBegin() {}

// OnCommit implements Allocator.
func (NoopAllocator) OnCommit() {}

// OnAbort implements Allocator.
func (NoopAllocator) OnAbort() {}

// Tx is a transaction descriptor: per-goroutine state that spans one
// begin→commit/rollback lifecycle. A Tx is reset and reused across
// retries by the descriptor pool in idpool.go rather than reallocated.
type Tx struct {
	startTime uint64
	myLock    orec.LockID

	rOrecs  []*orec.Orec // ordered, duplicates allowed
	locks   []*orec.Orec // orec in locks iff its current value == myLock
	undoLog []undoEntry  // every entry's orec is in locks

	allocator Allocator
}

// StartTime returns the timestamp sampled at Begin.
func (tx *Tx) StartTime() uint64 { return tx.startTime }

// LockID returns this transaction's unique owning token.
func (tx *Tx) LockID() orec.LockID { return tx.myLock }

// ReadOnly reports whether this transaction has acquired any locks. Used
// by commit to take the read-only fast path.
func (tx *Tx) ReadOnly() bool { return len(tx.locks) == 0 }

// reset clears all per-transaction logs, preparing the descriptor for
// a fresh Begin. The lock id is not reset here: it is assigned once,
// when the descriptor is drawn from the pool, and held for the
// descriptor's lifetime in the pool (see idpool.go).
func (tx *Tx) reset() {
	tx.rOrecs = tx.rOrecs[:0]
	tx.locks = tx.locks[:0]
	tx.undoLog = tx.undoLog[:0]
}
