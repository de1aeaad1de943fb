package txn

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rochester-stm/orec/internal/clock"
	"github.com/rochester-stm/orec/internal/contention"
	"github.com/rochester-stm/orec/internal/orec"
)

// conflictError is the sentinel panic value raised whenever a
// transaction must abort because of a detected conflict or a failed
// validation. It is never returned as a normal error: it is always
// recovered exactly once, at the top of the driving loop that calls
// Begin/Commit (stm.Atomically in the root package). panic/recover gives
// rollback a non-local jump back to that loop without threading an abort
// signal through every call on the stack in between.
type conflictError struct{}

func (conflictError) Error() string { return "txn: transaction aborted due to a conflict" }

// ErrConflict is the panic value Engine.Rollback raises. Callers driving
// a retry loop recover it to know the abort was an ordinary conflict
// (as opposed to a programmer error propagating out of fn).
var ErrConflict error = conflictError{}

// Engine implements the OrecEager begin/read/write/commit/rollback
// protocol, parameterized over a contention-manager policy M. M is used
// by its zero value at every hook call site: this resolves each hook to
// a direct, inlinable call at compile time instead of an indirect call
// through an interface vtable, at the cost of requiring M to be a
// stateless policy (true of contention.HyperAggressive). A stateful
// policy like contention.Backoff can't be plugged in here; it is driven
// from the caller's retry loop instead (see stm.Atomically), since it
// needs to persist across a transaction's retries and the engine itself
// must never block or sleep.
type Engine[M contention.Manager] struct {
	clock *clock.Clock
	table *orec.Table
	pool  *descriptorPool

	// OnConflict, if set, is called with the descriptor immediately
	// before Rollback replays its undo log and releases its locks — i.e.
	// while every piece of state the rollback is about to wipe is still
	// intact. The engine has no stack to unwind the way an exception
	// would, but observability (logging a conflict, counting an abort)
	// still needs to happen before the descriptor is reset and recycled.
	OnConflict func(tx *Tx)
}

// New constructs an Engine with a fresh orec table of 2^tableBits
// entries and a fresh global clock. Pass orec.DefaultBits for tableBits
// unless you have a specific capacity in mind.
func New[M contention.Manager](tableBits int) *Engine[M] {
	return &Engine[M]{
		clock: clock.New(),
		table: orec.NewTable(tableBits),
		pool:  newDescriptorPool(),
	}
}

// Table returns the engine's orec table. Exposed so a Location
// implementation (e.g. stm.Var) can resolve its own orec at
// construction time via Table().Get(addr).
func (e *Engine[M]) Table() *orec.Table { return e.table }

// Begin starts a new transaction: a descriptor is drawn from the pool,
// given a fresh start time, and handed to the allocator and contention
// manager begin hooks. Begin cannot fail.
func (e *Engine[M]) Begin() *Tx {
	tx := e.pool.acquire()
	tx.startTime = e.clock.Tick()
	tx.allocator.OnBegin()
	var m M
	m.OnBegin()
	return tx
}

// Read performs a bracketed read: sample the orec, read the value, then
// sample the orec again, so a concurrent writer caught in the act is
// detected instead of silently handing back a torn read. loc must
// resolve to a stable orec for its lifetime (see Location).
func (e *Engine[M]) Read(tx *Tx, loc Location) any {
	o := loc.Orec()
	myWord := tx.myLock.Word()

	// Read the orec before reading anything else.
	v1 := o.Load()
	// Read the location. The two orec.Load calls bracketing this are
	// themselves atomic operations, so the Go memory model already
	// orders them around the plain read in between on every platform
	// the toolchain targets — no separate fence primitive is needed.
	val := loc.Peek()

	// Best case: we locked this orec ourselves earlier in this
	// transaction. Safe regardless of what else changed.
	if v1 == myWord {
		return val
	}

	// Re-read the orec after reading the value.
	v2 := o.Load()

	// Common case: a fresh read of an unlocked, sufficiently old
	// location.
	if v1 == v2 && !v1.Locked() && v1.Version() <= tx.startTime {
		tx.rOrecs = append(tx.rOrecs, o)
		return val
	}

	// Either the orec is locked by someone else, it changed between our
	// two reads, or it is unlocked but newer than our start time: this
	// read can no longer be reconciled with a consistent snapshot, so
	// abort rather than extend the snapshot forward and keep going.
	e.Rollback(tx)
	panic("unreachable: Rollback always panics")
}

// Write acquires loc's orec (if this transaction doesn't already hold
// it), logs the old value for rollback, and writes in place.
func (e *Engine[M]) Write(tx *Tx, loc Location, val any, mask orec.Mask) {
	o := loc.Orec()
	myWord := tx.myLock.Word()
	v := o.Load()

	// Common case: uncontended, old enough to take.
	if !v.Locked() && v.Version() <= tx.startTime {
		if !o.CAS(v, myWord) {
			e.Rollback(tx)
		}
		o.SetPrevVersion(v.Version())
		tx.locks = append(tx.locks, o)
		tx.undoLog = append(tx.undoLog, undoEntry{addr: loc, old: loc.Peek(), mask: mask})
		loc.Poke(val, mask)
		return
	}

	// We already hold this orec (many locations may hash to it), so no
	// new lock acquisition is needed — but this exact location may not
	// have been undo-logged yet.
	if v == myWord {
		tx.undoLog = append(tx.undoLog, undoEntry{addr: loc, old: loc.Peek(), mask: mask})
		loc.Poke(val, mask)
		return
	}

	// Locked by someone else, or unlocked but newer than our start
	// time: abort (no extension path; see Read).
	e.Rollback(tx)
}

// validate re-checks every orec this transaction has read: each one must
// still be either unchanged since start time or owned by this
// transaction, or the read set is no longer a consistent snapshot.
func (e *Engine[M]) validate(tx *Tx) {
	myWord := tx.myLock.Word()
	for _, o := range tx.rOrecs {
		v := o.Load()
		if v == myWord {
			continue
		}
		if v.Locked() || v.Version() > tx.startTime {
			validationFailuresTotal.Inc()
			e.Rollback(tx)
		}
	}
}

// Commit returns true once a transaction is serialized for the lifetime
// of the process; a failed commit never returns false — it aborts via
// Rollback instead, so the only value Commit ever actually returns is
// true. The bool result is kept so a caller has an explicit "committed"
// signal to check without having to inspect a recovered panic.
func (e *Engine[M]) Commit(tx *Tx) bool {
	if tx.ReadOnly() {
		var m M
		m.OnCommit()
		tx.allocator.OnCommit()
		e.pool.release(tx)
		commitsTotal.Inc()
		return true
	}

	// Acquire the end timestamp, then validate. Validation must happen
	// after the tick, not before: any transaction that committed
	// between our last read and this tick must already be reflected in
	// the orecs we are about to check.
	endTime := e.clock.Tick()
	e.validate(tx)

	// Release locks. The tick() above and the atomic stores below are
	// themselves atomic operations, so they already order with respect
	// to every other atomic access to these orecs on every platform the
	// toolchain targets — no separate store-store barrier is needed.
	myWord := tx.myLock.Word()
	for _, o := range tx.locks {
		if o.Load() != myWord {
			fatalInvariant("releasing an orec this transaction does not hold",
				zap.Uint64("lockID", uint64(tx.myLock)))
		}
		o.StoreVersion(endTime)
	}

	var m M
	m.OnCommit()
	tx.allocator.OnCommit()
	e.pool.release(tx)
	commitsTotal.Inc()
	return true
}

// Rollback replays the undo log in reverse, releases every lock this
// transaction holds at its prior version plus one (so strictly greater
// than its prior version), resets the descriptor,
// returns it to the pool, and then panics with ErrConflict to jump back
// to the driving loop.
//
// Rollback is exported so embedders can observe it via OnConflict, but
// since this engine never aborts a transaction voluntarily, it is only
// ever called by Read, Write, or Commit/validate after detecting a
// conflict — never by application code.
func (e *Engine[M]) Rollback(tx *Tx) {
	if e.OnConflict != nil {
		e.OnConflict(tx)
	}

	for i := len(tx.undoLog) - 1; i >= 0; i-- {
		entry := tx.undoLog[i]
		entry.addr.Poke(entry.old, entry.mask)
	}

	var maxNew uint64
	for _, o := range tx.locks {
		newVer := o.PrevVersion() + 1
		o.StoreVersion(newVer)
		if newVer > maxNew {
			maxNew = newVer
		}
	}
	if maxNew > 0 {
		// The version we just released at must never exceed the clock's
		// own idea of "the latest tick," or a later, legitimately-ticked
		// transaction could be assigned a timestamp that collides with
		// it.
		e.clock.Bump(maxNew)
	}

	var m M
	m.OnAbort()
	tx.allocator.OnAbort()
	e.pool.release(tx)
	abortsTotal.Inc()

	panic(ErrConflict)
}

// Irrevoc commits tx in place without taking the usual abort path, for a
// caller that has already established exclusive access some other way
// (e.g. a single global lock held for the duration of an
// irrevocable/non-abortable transaction). The caller must already hold
// serial — this engine has no way to enforce that itself, it only
// documents the precondition. On success, tx is committed and released;
// on failure, tx is left completely untouched so the caller can fall
// back to the normal Rollback path.
func (e *Engine[M]) Irrevoc(tx *Tx, serial sync.Locker) bool {
	_ = serial // documented precondition only; see doc comment above

	endTime := e.clock.Tick()
	myWord := tx.myLock.Word()
	for _, o := range tx.rOrecs {
		v := o.Load()
		if v == myWord {
			continue
		}
		if v.Locked() || v.Version() > tx.startTime {
			return false
		}
	}

	for _, o := range tx.locks {
		o.StoreVersion(endTime)
	}
	tx.allocator.OnCommit()
	e.pool.release(tx)
	return true
}

// OnSwitchTo is invoked once when this algorithm variant becomes active.
// Switching orec-based algorithms at runtime is dangerous (the orec
// table cannot safely be reused across variants with different locking
// disciplines) and out of scope here; this variant, like the reference
// source, does no work on switch.
func (e *Engine[M]) OnSwitchTo() {}
