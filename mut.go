package zbuf

import (
	"sync/atomic"
	"unsafe"
)

// MutBytes is a mutable, uniquely owned, growable byte buffer. Unlike
// SharedBytes it is never implicitly shared: splitting it promotes the
// split halves to share a ctlBlock the same way SharedBytes.Clone does,
// but every MutBytes value the caller holds still has exclusive write
// access to its own (non-overlapping) window.
//
// Grounded on the original source's bytes_mut.rs, adapted to Go's slice
// three-index form (data[:len:cap]) in place of a raw pointer/len/cap
// triple -- Go's own slice header already carries exactly that bookkeeping,
// so there is no need to hand-manage it the way the Rust source does.
type MutBytes struct {
	data []byte // data[:len(data)] is the readable/written content

	// Unpromoted bookkeeping. owner is the entire backing allocation
	// this buffer owns outright; headOffset is how far data's start has
	// advanced past owner[0]. No tail offset is representable while
	// unpromoted, so cap(data)+headOffset == len(owner) always holds
	// here. Meaningless once ctl is non-nil: a promoted buffer's offset
	// is instead recovered by pointer subtraction against ctl.base, the
	// same way SharedBytes does once promoted.
	owner      []byte
	headOffset int

	ctl *ctlBlock // nil until promoted by a split or ShallowClone
}

// NewMutBytes returns an empty buffer with no backing allocation.
func NewMutBytes() MutBytes { return MutBytes{} }

// MutBytesWithCapacity returns an empty buffer with room for n bytes
// before the next write needs to grow it.
func MutBytesWithCapacity(n int) MutBytes {
	full := make([]byte, n)
	return MutBytes{data: full[:0:n], owner: full}
}

// CopyFromSliceMut copies s into a freshly allocated buffer with no spare
// capacity.
func CopyFromSliceMut(s []byte) MutBytes {
	full := make([]byte, len(s))
	copy(full, s)
	return MutBytes{data: full[:len(s):len(s)], owner: full}
}

// FromSliceMut adopts v (its full capacity included) as the backing
// allocation.
func FromSliceMut(v []byte) MutBytes {
	full := v[:cap(v):cap(v)]
	return MutBytes{data: full[:len(v):cap(v)], owner: full}
}

// Len returns the number of bytes currently written.
func (m *MutBytes) Len() int { return len(m.data) }

// IsEmpty reports whether Len is zero.
func (m *MutBytes) IsEmpty() bool { return len(m.data) == 0 }

// Cap returns the number of bytes that can be written before the next
// growth. Equal to Len when there is no spare capacity.
func (m *MutBytes) Cap() int { return cap(m.data) }

// AsSlice returns the current content. The slice aliases m's storage.
func (m *MutBytes) AsSlice() []byte { return m.data }

// AsPtr returns the address of the first byte.
func (m *MutBytes) AsPtr() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(m.data))
}

// Cursor returns a read-only Cursor over the written content.
func (m *MutBytes) Cursor() Cursor { return NewCursor(m.data) }

// growCapacity picks a new capacity for a reallocation: the larger of
// doubling the current capacity or growing exactly enough, matching
// spec.md §4.3's reserve growth policy.
func growCapacity(curCap, length, additional int) int {
	need := length + additional
	doubled := curCap * 2
	if doubled > need {
		return doubled
	}
	return need
}

// reserveInner is the shared engine behind TryReclaim, TryReclaimFull and
// Reserve. It mirrors the original source's reserve_inner: first try to
// absorb any tail capacity a promoted-unique buffer has left unclaimed
// past its own cap (case 2), then try compacting the head offset forward
// in place (case 1), and only when allocate is true fall back to a fresh
// allocation. Returns whether additional bytes of spare capacity are now
// available.
func (m *MutBytes) reserveInner(additional int, allocate bool) bool {
	if cap(m.data)-len(m.data) >= additional {
		return true
	}
	length := len(m.data)

	if m.ctl == nil {
		// No tail is ever representable while unpromoted (owner has
		// none to spare), so only head compaction can help here.
		off := m.headOffset
		if off > 0 && off >= length && off+(cap(m.data)-length) >= additional {
			copy(m.owner[0:length], m.data[:length])
			m.data = m.owner[0:length:len(m.owner)]
			m.headOffset = 0
			return true
		}
		if !allocate {
			return false
		}
		newCap := growCapacity(cap(m.data), length, additional)
		fresh := make([]byte, length, newCap)
		copy(fresh, m.data)
		m.owner = fresh[:newCap:newCap]
		m.data = fresh[:length:newCap]
		m.headOffset = 0
		return true
	}

	if !m.ctl.isUnique() {
		if !allocate {
			return false
		}
		newCap := growCapacity(cap(m.data), length, additional)
		fresh := make([]byte, length, newCap)
		copy(fresh, m.data)
		m.ctl.release()
		m.ctl = nil
		m.owner = fresh[:newCap:newCap]
		m.data = fresh[:length:newCap]
		m.headOffset = 0
		return true
	}

	base := m.ctl.base
	off := ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(base)), len(base), m.AsPtr())

	// Case 2: absorb whatever tail capacity this handle's own cap
	// doesn't already reach, unconditionally -- it is free, since no
	// other live handle can be looking at it while this one is unique.
	if tail := len(base) - (off + cap(m.data)); tail > 0 {
		m.data = base[off : off+length : off+cap(m.data)+tail]
		if tail >= additional {
			return true
		}
	}

	// Case 1: compact the head offset forward using the (possibly
	// tail-extended) capacity from above.
	if off > 0 && off >= length && off+(cap(m.data)-length) >= additional {
		copy(base[0:length], m.data[:length])
		m.data = base[0:length : off+cap(m.data)]
		return true
	}

	if !allocate {
		return false
	}
	newCap := growCapacity(cap(m.data), length, additional)
	fresh := make([]byte, length, newCap)
	copy(fresh, m.data)
	m.ctl.release()
	m.ctl = nil
	m.owner = fresh[:newCap:newCap]
	m.data = fresh[:length:newCap]
	m.headOffset = 0
	return true
}

// TryReclaim attempts to make room for additional more bytes without
// allocating, by absorbing spare tail capacity and/or shifting the
// written content to the front of the allocation it uniquely owns.
// Returns whether there is now enough spare capacity; a false return
// means Reserve must allocate to proceed.
func (m *MutBytes) TryReclaim(additional int) bool {
	return m.reserveInner(additional, false)
}

// Reserve ensures at least additional bytes of spare capacity are
// available, reclaiming in place when possible (see TryReclaim) and
// reallocating otherwise. Mirrors spec.md §4.3 reserve / reserve_inner.
func (m *MutBytes) Reserve(additional int) {
	m.reserveInner(additional, true)
}

// TryReclaimFull asks reserveInner for however much spare capacity
// compacting in place could possibly yield -- the full tail-plus-head
// amount for a promoted-unique buffer, or the full head offset for an
// unpromoted one -- so a true return means the allocation's entire
// original capacity is now available again, not merely some of it.
func (m *MutBytes) TryReclaimFull() bool {
	var additional int
	if m.ctl == nil {
		additional = m.headOffset + (cap(m.data) - len(m.data))
	} else {
		additional = m.ctl.capacity - len(m.data)
	}
	return m.reserveInner(additional, false)
}

// Put appends a single byte, growing the buffer if necessary.
func (m *MutBytes) Put(b byte) {
	m.Reserve(1)
	n := len(m.data)
	m.data = m.data[:n+1]
	m.data[n] = b
}

// ExtendFromSlice appends s, growing the buffer if necessary.
func (m *MutBytes) ExtendFromSlice(s []byte) {
	m.Reserve(len(s))
	n := len(m.data)
	m.data = m.data[:n+len(s)]
	copy(m.data[n:], s)
}

// Truncate shortens the content to the first n bytes. A no-op if
// n >= Len; capacity is unaffected.
func (m *MutBytes) Truncate(n int) {
	if n < len(m.data) {
		m.data = m.data[:n]
	}
}

// Clear empties the content while retaining capacity.
func (m *MutBytes) Clear() { m.data = m.data[:0] }

// promoteSelf ensures m is backed by a ctlBlock, promoting an unpromoted
// buffer in place with an initial refcount of 1.
func (m *MutBytes) promoteSelf() *ctlBlock {
	if m.ctl == nil {
		m.ctl = promoteWithSlice(m.owner, 1)
		m.owner = nil
	}
	return m.ctl
}

// ShallowClone returns an immutable SharedBytes view over m's current
// content, promoting m if needed. Grounded on bytes_mut.rs shallow_clone.
func (m *MutBytes) ShallowClone() SharedBytes {
	blk := m.promoteSelf()
	blk.increment()
	var out SharedBytes
	out.data = m.data
	atomic.StorePointer(&out.ctl, unsafe.Pointer(blk))
	return out
}

// SplitOff returns a new MutBytes covering [at:Len); m retains [0:at) and
// loses write access past at until it reclaims or reallocates. Both
// halves share the promoted allocation.
func (m *MutBytes) SplitOff(at int) MutBytes {
	if at > len(m.data) {
		panic("zbuf: MutBytes.SplitOff out of bounds")
	}
	blk := m.promoteSelf()
	blk.increment()
	tail := MutBytes{data: m.data[at:len(m.data):cap(m.data)], ctl: blk}
	m.data = m.data[:at:at]
	return tail
}

// SplitTo returns a new MutBytes covering [0:at); m retains [at:Len) and
// keeps the original tail capacity. Both halves share the promoted
// allocation.
func (m *MutBytes) SplitTo(at int) MutBytes {
	if at > len(m.data) {
		panic("zbuf: MutBytes.SplitTo out of bounds")
	}
	blk := m.promoteSelf()
	blk.increment()
	front := MutBytes{data: m.data[:at:at], ctl: blk}
	m.data = m.data[at:len(m.data):cap(m.data)]
	return front
}

// TryUnsplit merges other onto the end of m if they are adjacent windows
// into the same allocation, reporting whether the merge happened. An
// empty side always merges trivially.
func (m *MutBytes) TryUnsplit(other MutBytes) bool {
	if len(other.data) == 0 {
		return true
	}
	if len(m.data) == 0 {
		*m = other
		return true
	}
	if m.ctl == nil || other.ctl == nil || m.ctl != other.ctl {
		return false
	}
	mEnd := unsafe.Add(m.AsPtr(), len(m.data))
	if mEnd != other.AsPtr() {
		return false
	}
	total := len(m.data) + len(other.data)
	base := m.ctl.base
	off := ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(base)), len(base), m.AsPtr())
	m.data = base[off : off+total : off+len(m.data)+cap(other.data)]
	other.ctl.release()
	return true
}

// Unsplit merges other onto the end of m. When the two are adjacent
// windows into the same allocation this is the zero-copy TryUnsplit path;
// otherwise it falls back to ExtendFromSlice and never fails, matching
// spec.md §4.3's description of unsplit/try_unsplit (the checked
// TryUnsplit exposes only the zero-copy fast path as a pass/fail query;
// Unsplit always completes the merge one way or the other).
func (m *MutBytes) Unsplit(other MutBytes) {
	if m.TryUnsplit(other) {
		return
	}
	m.ExtendFromSlice(other.AsSlice())
}

// Freeze converts m into an immutable SharedBytes with no copy. m must
// not be used after Freeze. A promoted buffer's head offset is always
// recoverable by pointer subtraction against ctl.base, as SharedBytes
// itself does once promoted; an unpromoted buffer has no ctl.base to
// subtract against, so its headOffset is carried across explicitly. An
// unpromoted buffer with spare capacity past its content is promoted
// first, since an unpromoted SharedBytes cannot carry that tail.
func (m MutBytes) Freeze() SharedBytes {
	if m.ctl != nil {
		return SharedBytes{data: m.data, ctl: unsafe.Pointer(m.ctl)}
	}
	if len(m.data) < cap(m.data) {
		blk := promoteWithSlice(m.owner, 1)
		return SharedBytes{data: m.data, ctl: unsafe.Pointer(blk)}
	}
	return SharedBytes{data: m.data, owner: m.owner, headOffset: m.headOffset}
}
