/*
Package stm provides Software Transactional Memory over an eager,
versioned-lock, encounter-time-locking algorithm (OrecEager): writers
acquire an ownership record at write time via CAS, log the old value for
undo, and write in place; readers validate a bracketed pair of version
reads against the transaction's start time. Conflicts are resolved by
aborting and replaying the undo log — there is no global lock held
across a commit.

Create a Var to hold data you want to access from multiple goroutines:

	x := stm.NewVar(3)

Atomically runs a function as a single atomic transaction. This code
atomically decrements x:

	stm.Atomically(func(tx *stm.Tx) {
		cur := tx.Get(x).(int)
		tx.Set(x, cur-1)
	})

If another transaction commits a conflicting write while this one is
still in flight, the engine aborts it (replaying any writes it had
already made) and Atomically transparently retries fn. This is the only
reason Atomically re-runs fn: unlike some STM libraries, there is no
voluntary "retry" primitive here — a transaction never aborts itself
just because application code decided to wait for a different value.
That would require the engine to know how to block and resume blocked
waiters, and this package intentionally does not support that: a
transaction only ever aborts in response to a detected conflict.

As with any STM system, transactions must be idempotent: a transaction
may run more than once before it successfully commits, so its side
effects may happen more than once. Build up a list of any impure
operations inside the transaction and run them after Atomically returns.

Multiple Gets and Sets can be freely composed within one transaction
function, or chained with Compose:

	stm.Atomically(stm.Compose(
		func(tx *stm.Tx) { tx.Set(x, 1) },
		func(tx *stm.Tx) { tx.Set(y, 2) },
	))

The contention-manager policy this package uses can be selected with the
STM_CM environment variable: "hyper" (the default — a conflicting
transaction always aborts itself immediately) or "backoff" (the same
abort behavior, but Atomically sleeps an exponentially growing, jittered
interval between retries). See internal/contention for both policies.
*/
package stm
