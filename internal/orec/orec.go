// Package orec implements the ownership-record table: the fixed-size
// array of versioned locks that OrecEager hashes every transactional
// address into.
//
// Each Orec is a single machine word with two logical states. Unlocked,
// it holds a version — a past value of the global clock. Locked, it
// holds the unique lock id of the owning transaction. The two states
// are disjoint because lock ids always carry the low "lock" bit set,
// and versions never do (see Word).
package orec

import "go.uber.org/atomic"

// Word is the packed contents of an orec's version word: version or
// lock id in the high bits, the lock flag in bit 0.
type Word uint64

// Locked reports whether w represents a locked orec.
func (w Word) Locked() bool { return w&1 == 1 }

// Version returns the version encoded in w. Only meaningful if !w.Locked().
func (w Word) Version() uint64 { return uint64(w) >> 1 }

// OwnerID returns the lock id encoded in w. Only meaningful if w.Locked().
func (w Word) OwnerID() uint64 { return uint64(w) >> 1 }

// VersionWord packs an unlocked word holding version v.
func VersionWord(v uint64) Word { return Word(v << 1) }

// LockWord packs a locked word owned by lock id id.
func LockWord(id uint64) Word { return Word((id << 1) | 1) }

// LockID names the owner of a locked orec. A LockID is derived from a
// transaction descriptor's slot in the descriptor pool (internal/txn),
// so any orec storing LockID(id).Word() unambiguously identifies the
// owning descriptor.
type LockID uint64

// Word returns the packed, locked representation of id.
func (id LockID) Word() Word { return LockWord(uint64(id)) }

// Mask describes which bytes of a word a write touches. Var-level
// writes in the root stm package always use MaskFull: Go's boxed `any`
// values have no sub-word addressing, so a Var write always replaces
// the whole word. Mask exists so a narrower Var (e.g. one over a fixed
// byte buffer) could exercise partial masks without any change to
// internal/txn's write/undo-log plumbing.
type Mask uint64

// MaskFull denotes a full-word write.
const MaskFull Mask = ^Mask(0)

// Orec is one ownership record: an atomic version/lock word plus a
// plain, owner-only "previous version" field.
//
// prevVersion is written only by the thread that holds the lock (it is
// set at acquisition time and read back only by that same thread during
// rollback), so it does not need to be atomic: there is no concurrent
// writer, and the CAS that acquires the lock already establishes the
// happens-before edge that makes the plain write visible to the same
// goroutine's later plain read.
type Orec struct {
	v           atomic.Uint64
	prevVersion uint64
}

// Load reads the orec's current word.
func (o *Orec) Load() Word { return Word(o.v.Load()) }

// CAS attempts to transition the orec from old to new. It is the only
// way a transaction acquires an orec; on success the caller owns it
// until it stores a release value with StoreVersion.
func (o *Orec) CAS(old, new Word) bool {
	return o.v.CAS(uint64(old), uint64(new))
}

// StoreVersion releases the orec at version v. Callers must hold the
// lock (i.e. have previously won a CAS to this orec) before calling
// this; it is an unconditional atomic store rather than a CAS because
// only the owner ever releases.
func (o *Orec) StoreVersion(v uint64) {
	o.v.Store(uint64(VersionWord(v)))
}

// PrevVersion returns the version this orec held immediately before its
// current owner acquired it. Valid only while the orec is locked by the
// calling transaction.
func (o *Orec) PrevVersion() uint64 { return o.prevVersion }

// SetPrevVersion records the version an orec held at acquisition time.
// Must only be called by the transaction that just won the CAS locking
// this orec.
func (o *Orec) SetPrevVersion(v uint64) { o.prevVersion = v }
