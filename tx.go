package stm

import (
	"github.com/rochester-stm/orec/internal/orec"
	"github.com/rochester-stm/orec/internal/txn"
)

// Tx represents one in-flight atomic transaction. A *Tx is only valid
// for the duration of the function passed to Atomically; do not retain
// one past that call.
type Tx struct {
	inner *txn.Tx
}

// Get returns the value of v as of the start of the transaction, or the
// value this transaction itself most recently wrote to v if it has
// already done so.
func (tx *Tx) Get(v *Var) any {
	return engine.Read(tx.inner, v)
}

// Set sets the value of v for the remainder of the transaction. The
// write becomes visible to other transactions only if and when this
// transaction commits.
func (tx *Tx) Set(v *Var, val any) {
	engine.Write(tx.inner, v, val, orec.MaskFull)
}
