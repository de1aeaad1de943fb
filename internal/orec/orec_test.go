package orec

import (
	"testing"
	"unsafe"
)

func ptrOf(p *int) unsafe.Pointer { return unsafe.Pointer(p) }

func TestWordRoundTrip(t *testing.T) {
	v := VersionWord(42)
	if v.Locked() {
		t.Fatal("version word should not be locked")
	}
	if v.Version() != 42 {
		t.Fatalf("expected version 42, got %d", v.Version())
	}

	l := LockID(7).Word()
	if !l.Locked() {
		t.Fatal("lock word should be locked")
	}
	if l.OwnerID() != 7 {
		t.Fatalf("expected owner 7, got %d", l.OwnerID())
	}
}

func TestLockIDsAndVersionsDisjoint(t *testing.T) {
	// No version word is ever equal to a lock word, for any version/id
	// pair, because the low bit distinguishes them.
	for i := uint64(0); i < 1000; i++ {
		if VersionWord(i) == LockID(i).Word() {
			t.Fatalf("version and lock word collided at %d", i)
		}
	}
}

func TestOrecCAS(t *testing.T) {
	var o Orec
	o.StoreVersion(10)

	start := o.Load()
	if start.Version() != 10 {
		t.Fatalf("expected version 10, got %d", start.Version())
	}

	owner := LockID(3)
	if !o.CAS(start, owner.Word()) {
		t.Fatal("expected CAS to succeed on uncontended orec")
	}
	o.SetPrevVersion(start.Version())

	// A second, stale CAS attempt must fail now that the orec is locked.
	if o.CAS(start, LockID(4).Word()) {
		t.Fatal("expected CAS against a stale word to fail")
	}

	locked := o.Load()
	if !locked.Locked() || locked.OwnerID() != 3 {
		t.Fatalf("expected orec locked by 3, got %+v", locked)
	}

	o.StoreVersion(o.PrevVersion() + 1)
	released := o.Load()
	if released.Locked() || released.Version() != 11 {
		t.Fatalf("expected released version 11, got %+v", released)
	}
}

func TestTableGetIsPure(t *testing.T) {
	tbl := NewTable(10)
	var x, y int
	if tbl.Get(ptrOf(&x)) != tbl.Get(ptrOf(&x)) {
		t.Fatal("Get must be a pure function of the address")
	}
	_ = y
}
