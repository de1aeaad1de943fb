// Package contention implements the pluggable contention-manager (CM)
// hook: policy called at begin/commit/abort that decides whether a
// conflict should make the caller back off before retrying. The STM
// algorithm itself never sleeps; any backoff a Manager wants happens in
// the driving loop that calls Begin/Commit/Rollback, never inside them.
package contention

// Snapshot is the read-only view of a transaction a Manager is handed
// when asked whether it may abort another transaction. OrecEager never
// aborts a remote victim (see HyperAggressive below), so Snapshot exists
// for Managers that might, without coupling this package to
// internal/txn.
type Snapshot struct {
	StartTime uint64
	LockID    uint64
}

// Manager is the contention-manager capability: OnBegin/OnCommit/
// OnAbort plus an optional MayAbort hook. Implementations are expected
// to be cheap value types — Engine[M] is parameterized over a Manager
// and uses its zero value at every call site (see internal/txn), which
// resolves each hook to a direct call at compile time instead of an
// indirect call through an interface. A Manager that needs state (like
// Backoff below) must be driven from outside the engine instead.
type Manager interface {
	// OnBegin is called once a transaction has sampled its start time.
	OnBegin()
	// OnCommit is called after a transaction has finished committing,
	// whether it was read-only or a writer.
	OnCommit()
	// OnAbort is called after a transaction has finished rolling back.
	OnAbort()
	// MayAbort reports whether the caller may forcibly abort a remote
	// transaction described by victim, rather than aborting itself.
	MayAbort(victim Snapshot) bool
}

// HyperAggressive is the default policy this runtime variant uses: every
// hook is a no-op, and a conflicting transaction always aborts itself
// immediately. It never requests that a remote victim abort instead —
// hence "hyper-aggressive": the caller is the one who always backs down.
type HyperAggressive struct{}

// OnBegin implements Manager.
func (HyperAggressive) OnBegin() {}

// OnCommit implements Manager.
func (HyperAggressive) OnCommit() {}

// OnAbort implements Manager.
func (HyperAggressive) OnAbort() {}

// MayAbort implements Manager. HyperAggressive never aborts a victim; the
// caller self-aborts and retries instead.
func (HyperAggressive) MayAbort(Snapshot) bool { return false }

var (
	_ Manager = HyperAggressive{}
)
