package stm

import (
	"github.com/rochester-stm/orec/internal/contention"
	"github.com/rochester-stm/orec/internal/txn"
)

// Atomically executes fn as a single atomic transaction, retrying it
// for as long as it keeps aborting due to a detected conflict. fn must
// be idempotent: it may run more than once before it commits.
func Atomically(fn func(*Tx)) {
	var bo *contention.Backoff
	if cmVariant == "backoff" {
		bo = contention.NewBackoff()
	}

	for {
		tx := &Tx{inner: engine.Begin()}
		if runTx(fn, tx) {
			if bo != nil {
				bo.OnCommit()
			}
			return
		}
		if bo != nil {
			bo.OnAbort()
			bo.Wait()
		}
	}
}

// runTx runs fn against tx, then commits. It recovers exactly one panic
// value: txn.ErrConflict, raised by the engine's Rollback whenever a
// read, write, or commit-time validation detects a conflict. Any other
// panic — a programmer error inside fn, or a real bug — propagates to
// Atomically's caller unchanged.
func runTx(fn func(*Tx), tx *Tx) (committed bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == txn.ErrConflict {
				committed = false
				return
			}
			panic(r)
		}
	}()
	fn(tx)
	committed = engine.Commit(tx.inner)
	return
}

// AtomicGet atomically reads the value of v, without any surrounding
// transaction bookkeeping beyond what a single-Get transaction needs.
func AtomicGet(v *Var) any {
	var val any
	Atomically(func(tx *Tx) {
		val = tx.Get(v)
	})
	return val
}

// AtomicSet atomically writes val to v.
func AtomicSet(v *Var, val any) {
	Atomically(func(tx *Tx) {
		tx.Set(v, val)
	})
}

// Compose combines multiple transaction functions into a single one
// that runs each in sequence, within the same transaction.
func Compose(fns ...func(*Tx)) func(*Tx) {
	return func(tx *Tx) {
		for _, fn := range fns {
			fn(tx)
		}
	}
}
