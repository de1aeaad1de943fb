package txn

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rochester-stm/orec/internal/contention"
	"github.com/rochester-stm/orec/internal/orec"
)

// Read-only transactions never mutate the orec table: reading never
// writes an orec, so a burst of concurrent readers should leave every
// orec word exactly as it found it. Exercised by snapshotting the whole
// table before and after.
func TestReadOnlyTransactionsNeverMutateOrecs(t *testing.T) {
	e := newEngine()
	accounts := make([]*cell, 16)
	for i := range accounts {
		accounts[i] = newCell(e, i*100)
	}

	before := e.Table().Snapshot()

	var wg sync.WaitGroup
	for g := 0; g < 64; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runOnce(t, e, func(tx *Tx) {
				for _, a := range accounts {
					_ = e.Read(tx, a)
				}
			})
		}()
	}
	wg.Wait()

	after := e.Table().Snapshot()
	assert.Equal(t, before, after, "a table of exclusively read-only transactions must never change any orec word")
}

// A transaction that reads a location, then later writes a different
// location and tries to commit, must abort if a concurrent writer
// committed to that first location in the meantime: once a transaction
// also attempts a commit, its reads must never be shown to be
// inconsistent with some global order of transactions.
func TestReadWriteConflictForcesAbort(t *testing.T) {
	e := newEngine()
	x := newCell(e, 1)
	y := newCell(e, 2)

	readerStarted := make(chan struct{})
	writerDone := make(chan struct{})

	var sawConflict bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tx := e.Begin()
		committed, failure := attempt(e, tx, func(tx *Tx) {
			_ = e.Read(tx, x)
			close(readerStarted)
			<-writerDone
			// The write to y itself succeeds; the concurrent commit to
			// x is caught by commit-time validation of the read set.
			e.Write(tx, y, 99, orec.MaskFull)
		})
		require.Nil(t, failure)
		sawConflict = !committed
	}()

	<-readerStarted
	runOnce(t, e, func(tx *Tx) {
		e.Write(tx, x, 2, orec.MaskFull)
	})
	close(writerDone)
	wg.Wait()

	assert.True(t, sawConflict, "a transaction that read x before a concurrent commit to x, then tried to write y and commit, must abort")
	assert.Equal(t, 2, x.Peek().(int), "x must reflect only the committed writer's value")
	assert.Equal(t, 2, y.Peek().(int), "y must be untouched by the aborted transaction")
}

// Repeatedly forcing a single location to abort must still leave its
// orec at a version strictly greater than any previously observed
// version, never regressing and never deadlocking the table.
func TestAbortedWritesNeverRegressVersion(t *testing.T) {
	e := newEngine()
	z := newCell(e, 0)

	var lastVersion uint64
	for i := 0; i < 500; i++ {
		tx := e.Begin()
		e.Write(tx, z, i, orec.MaskFull)
		func() {
			defer func() { recover() }()
			e.Rollback(tx)
		}()
		v := z.Orec().Load().Version()
		require.Greater(t, v, lastVersion, "orec version must strictly advance across repeated aborts")
		lastVersion = v
	}
}

// Using a stateful contention manager (Backoff) from the driving loop,
// rather than as the Engine's type parameter, must still let
// transactions make progress: this exercises the split documented in
// engine.go between the monomorphized, stateless M and an external,
// stateful manager driven around the retry loop.
func TestBackoffDrivenRetryLoopMakesProgress(t *testing.T) {
	e := New[contention.HyperAggressive](10)
	w := newCell(e, 0)
	bo := contention.NewBackoff()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				tx := e.Begin()
				committed, failure := attempt(e, tx, func(tx *Tx) {
					cur := e.Read(tx, w).(int)
					e.Write(tx, w, cur+1, orec.MaskFull)
				})
				if failure != nil {
					panic(failure)
				}
				if committed {
					bo.OnCommit()
					return
				}
				bo.OnAbort()
				bo.Wait()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, writers, w.Peek().(int))
}
