package txn

import (
	"sync"

	"github.com/rochester-stm/orec/internal/orec"
)

// MaxConcurrentTx sizes the descriptor pool's eager pre-allocation. It
// is not a hard cap — the pool grows past it under heavier concurrency
// — but it is the number of descriptors (and therefore distinct lock
// ids) the pool expects to need without growing.
const MaxConcurrentTx = 1024

// descriptorPool hands out *Tx descriptors with a unique, stable
// orec.LockID each, and takes them back for reuse: a descriptor is
// constructed once and reset at each begin, rather than allocated fresh
// per transaction. Rather than tie a descriptor to an OS thread, it is
// tied to whichever goroutine currently holds it, and recycled (along
// with its lock id) once that goroutine is done with its transaction.
type descriptorPool struct {
	mu   sync.Mutex
	free []*Tx
	next uint64
}

func newDescriptorPool() *descriptorPool {
	return &descriptorPool{
		free: make([]*Tx, 0, MaxConcurrentTx),
	}
}

// acquire returns a descriptor with a fresh or recycled lock id. The
// descriptor's logs are empty; startTime is not yet set (Begin sets it).
func (p *descriptorPool) acquire() *Tx {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		tx := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return tx
	}
	id := p.next
	p.next++
	p.mu.Unlock()

	return &Tx{
		myLock:    orec.LockID(id),
		allocator: NoopAllocator{},
	}
}

// release returns tx to the pool for reuse, after clearing its logs.
// The lock id travels with the descriptor, so no orec can ever observe
// two live descriptors sharing one id.
func (p *descriptorPool) release(tx *Tx) {
	tx.reset()
	p.mu.Lock()
	p.free = append(p.free, tx)
	p.mu.Unlock()
}
