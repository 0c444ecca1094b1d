package zbuf

import (
	"os"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ctlBlock is the heap-allocated control block backing a promoted buffer.
// It plays the role of spec.md's Ctl: {refcount, base_ptr, capacity}.
//
// In the reference implementation this library's design is grounded on, the
// "promoted or not" discriminant is packed into the low bit of a single
// tagged pointer word, because a raw pointer there is never scanned by a
// garbage collector and a fake address does no harm. Go's collector is
// precise: a field that is sometimes a valid *ctlBlock and sometimes a
// disguised integer is not a trick Go's memory model permits, and the
// collector holds no reference to an object whose only live pointer has been
// stored as a uintptr. So SharedBytes/MutBytes keep the real promotion
// decision in a genuine nilable pointer: an atomically-accessed
// unsafe.Pointer field manipulated only through sync/atomic's
// pointer-typed load/store/CAS functions for SharedBytes (which must stay
// a plain copyable value, so it cannot embed atomic.Pointer[T] -- that type
// carries a copy-guard that trips on every return-by-value), and a plain
// unshared *ctlBlock for the exclusively-owned MutBytes. The pre-promotion
// head offset lives in an ordinary int field instead of stealing bits from
// the pointer. See DESIGN.md OQ-1 for the full rationale; every observable
// state transition and the CAS race in Clone below are otherwise unchanged
// from spec.md §4.1/§4.2/§9.
type ctlBlock struct {
	refcount atomic.Int64
	_        cpu.CacheLinePad // keeps the hot refcount off base/capacity's cache line
	base     []byte           // the full owning allocation; len(base) == capacity
	capacity int
}

// promoteWithSlice allocates a new ctlBlock taking ownership of buf with the
// given initial refcount. Mirrors spec.md §4.1 promote_with_vec.
func promoteWithSlice(buf []byte, initialRefcount int64) *ctlBlock {
	blk := &ctlBlock{base: buf, capacity: len(buf)}
	blk.refcount.Store(initialRefcount)
	return blk
}

// increment bumps the refcount. Aborts the process on overflow past half the
// signed range, matching spec.md's refcount-overflow-aborts policy.
func (b *ctlBlock) increment() {
	if n := b.refcount.Add(1); n > 1<<62 {
		os.Stderr.WriteString("zbuf: refcount overflow\n")
		os.Exit(2)
	}
}

// release drops the refcount by one. When it reaches zero the backing slice
// reference is cleared so the garbage collector can reclaim it -- Go has no
// manual free, so "freeing the allocation" collapses to dropping the last
// live reference to it.
func (b *ctlBlock) release() {
	if b.refcount.Add(-1) == 0 {
		b.base = nil
	}
}

// releaseIntoSlice behaves like release, but on the last-drop path returns
// the owned slice truncated to length instead of discarding it. Returns
// ok == false when this was not the last reference.
func (b *ctlBlock) releaseIntoSlice(length int) (out []byte, ok bool) {
	if b.refcount.Add(-1) == 0 {
		out = b.base[:length]
		b.base = nil
		return out, true
	}
	return nil, false
}

func (b *ctlBlock) isUnique() bool {
	return b.refcount.Load() == 1
}
