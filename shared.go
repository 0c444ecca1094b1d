package zbuf

import (
	"sync/atomic"
	"unsafe"
)

// SharedBytes is an immutable, cheaply cloneable, sub-sliceable view into a
// contiguous byte allocation that may be shared by many owners.
//
// A SharedBytes starts in an "unpromoted" single-owner state that carries no
// heap control block. The first Clone of it promotes the buffer to a
// heap-allocated, atomically refcounted control block; after that, cloning
// is a single atomic increment and dropping is a single atomic decrement.
//
// SharedBytes must be duplicated through Clone, not through a plain Go
// assignment. A plain copy is memory-safe -- the garbage collector keeps the
// backing allocation alive for as long as any copy references it -- but it
// is invisible to the refcount, so IsUnique and the capacity-reclaim paths
// on a MutBytes derived from it would be fooled into thinking they hold the
// only reference. See DESIGN.md OQ-1.
type SharedBytes struct {
	data []byte // the visible window, data[0:len(data)]

	// Unpromoted bookkeeping. owner is the entire owning allocation this
	// buffer was carved from; by construction len(owner) == cap(owner) ==
	// headOffset+len(data), i.e. there is never a tail offset while
	// unpromoted (spec.md §3.1). Meaningless once ctl is non-nil.
	owner      []byte
	headOffset int

	// ctl atomically holds *ctlBlock once promoted, or nil while
	// unpromoted/static. Manipulated with the package-level atomic
	// pointer functions rather than atomic.Pointer[T] so that SharedBytes
	// keeps ordinary copyable value semantics (atomic.Pointer embeds a
	// copy-guard that would make every return-by-value trip `go vet`).
	ctl unsafe.Pointer

	static bool // true: external 'static-lifetime memory, never promoted, never unique
}

// NewSharedBytes returns an empty, static SharedBytes. It does not allocate.
func NewSharedBytes() SharedBytes {
	return SharedBytes{static: true}
}

// FromStaticBytes wraps a slice the caller guarantees will outlive every use
// of the returned SharedBytes (e.g. a package-level []byte literal).
func FromStaticBytes(s []byte) SharedBytes {
	return SharedBytes{data: s, static: true}
}

// CopyFromSliceShared copies s into a freshly allocated, unpromoted buffer.
func CopyFromSliceShared(s []byte) SharedBytes {
	buf := make([]byte, len(s))
	copy(buf, s)
	return SharedBytes{data: buf, owner: buf}
}

// FromSliceShared adopts v as the backing allocation. If cap(v) == len(v)
// the result is unpromoted (no tail offset is representable); otherwise it
// is promoted immediately, since the spare tail capacity can only be
// tracked in a ctlBlock. Mirrors spec.md §4.2 from_vec.
func FromSliceShared(v []byte) SharedBytes {
	if cap(v) == len(v) {
		return SharedBytes{data: v, owner: v}
	}
	full := v[:cap(v)]
	blk := promoteWithSlice(full, 1)
	return SharedBytes{data: full[:len(v)], ctl: unsafe.Pointer(blk)}
}

func (b *SharedBytes) loadCtl() *ctlBlock {
	return (*ctlBlock)(atomic.LoadPointer(&b.ctl))
}

// Len returns the number of bytes in the view.
func (b *SharedBytes) Len() int { return len(b.data) }

// IsEmpty reports whether Len is zero.
func (b *SharedBytes) IsEmpty() bool { return len(b.data) == 0 }

// AsSlice returns the visible bytes. The returned slice must not be
// mutated; SharedBytes is an immutable view.
func (b *SharedBytes) AsSlice() []byte { return b.data }

// AsPtr returns the address of the first byte, or a non-nil dangling
// pointer valid for zero-length reads when Len is 0.
func (b *SharedBytes) AsPtr() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b.data))
}

// Cursor returns a read-only Cursor over the visible bytes.
func (b *SharedBytes) Cursor() Cursor { return NewCursor(b.data) }

// IsUnique reports whether this is the only live handle sharing its
// backing allocation. Static buffers are never unique; unpromoted buffers
// always are; promoted buffers report refcount == 1.
func (b *SharedBytes) IsUnique() bool {
	if b.static {
		return false
	}
	if blk := b.loadCtl(); blk != nil {
		return blk.isUnique()
	}
	return true
}

// Slice returns the sub-view [lo:hi) of b. Panics if lo > hi or hi > Len.
func (b *SharedBytes) Slice(lo, hi int) SharedBytes {
	if lo > hi || hi > len(b.data) {
		panic("zbuf: SharedBytes.Slice out of bounds")
	}
	if hi == lo {
		return SharedBytes{data: b.data[lo:lo]}
	}
	clone := b.Clone()
	clone.data = clone.data[lo:hi]
	return clone
}

// SliceRef returns a SharedBytes sharing b's storage but covering exactly
// the bytes of sub, which must be (a subslice of) b.AsSlice().
func (b *SharedBytes) SliceRef(sub []byte) SharedBytes {
	begin := sliceOffsetWithin(b.data, sub)
	return b.Slice(begin, begin+len(sub))
}

// SliceFromRaw returns a SharedBytes covering the length bytes starting at
// ptr, which must lie within [b.AsPtr(), b.AsPtr()+b.Len()].
//
// Unsafe: the caller must guarantee ptr derives from b's own storage.
func (b *SharedBytes) SliceFromRaw(ptr unsafe.Pointer, length int) SharedBytes {
	begin := ptrOffsetWithin(b.AsPtr(), len(b.data), ptr)
	return b.Slice(begin, begin+length)
}

// Truncate shortens the view to the first n bytes. A no-op if n >= Len.
func (b *SharedBytes) Truncate(n int) {
	if n >= len(b.data) {
		return
	}
	if b.static {
		b.data = b.data[:n]
		return
	}
	// A shorter view with unused trailing capacity is a tail offset,
	// which only a promoted buffer can represent; split_off forces the
	// promotion as a side effect and the split-off half is discarded.
	b.SplitOff(n)
}

// TruncateOff drops the last off bytes, saturating at 0.
func (b *SharedBytes) TruncateOff(off int) {
	n := len(b.data) - off
	if n < 0 {
		n = 0
	}
	b.Truncate(n)
}

// Clear empties the view while retaining provenance of the pointer. b
// gives up its reference to the backing allocation and becomes a static
// empty view.
func (b *SharedBytes) Clear() {
	if blk := b.loadCtl(); blk != nil {
		blk.release()
	}
	*b = SharedBytes{data: b.data[:0], static: true}
}

// Advance drops the first cnt bytes from the view. Panics if cnt > Len.
func (b *SharedBytes) Advance(cnt int) {
	if cnt > len(b.data) {
		panic("zbuf: SharedBytes.Advance out of bounds")
	}
	b.data = b.data[cnt:]
	if !b.static && b.loadCtl() == nil {
		b.headOffset += cnt
	}
}

// AdvanceToPtr advances the view so it starts at ptr.
//
// Unsafe: ptr must lie within [b.AsPtr(), b.AsPtr()+b.Len()].
func (b *SharedBytes) AdvanceToPtr(ptr unsafe.Pointer) {
	b.Advance(ptrOffsetWithin(b.AsPtr(), len(b.data), ptr))
}

// SplitOff returns the [at:Len) half; b retains [0:at). Both O(1).
//
// Both halves are produced through Clone so the refcount correctly
// reflects two live handles even at the at == 0 and at == Len edges; a
// shortcut that copied b's fields directly would leave two handles
// sharing one ctlBlock reference that was never incremented.
func (b *SharedBytes) SplitOff(at int) SharedBytes {
	if at > len(b.data) {
		panic("zbuf: SharedBytes.SplitOff out of bounds")
	}
	out := b.Clone()
	out.Advance(at)
	b.data = b.data[:at]
	return out
}

// SplitTo returns the [0:at) half; b retains [at:Len). Both O(1).
func (b *SharedBytes) SplitTo(at int) SharedBytes {
	if at > len(b.data) {
		panic("zbuf: SharedBytes.SplitTo out of bounds")
	}
	out := b.Clone()
	out.data = out.data[:at]
	b.Advance(at)
	return out
}

// Clone returns a second reference to b's backing storage in O(1), without
// copying any bytes. This is the central lazy-promotion algorithm of the
// whole library (spec.md §4.2, §9):
//
//   - Static: a plain structural copy, no atomics.
//   - Promoted: increment the shared refcount.
//   - Unpromoted: race every other concurrent Clone to promote. A fresh
//     ctlBlock is allocated *before* the compare-and-swap; the loser of the
//     CAS simply discards its own ctlBlock (Go's collector reclaims it; no
//     manual free is needed) and increments the winner's instead.
func (b *SharedBytes) Clone() SharedBytes {
	if b.static {
		return SharedBytes{data: b.data, static: true}
	}
	for {
		if blk := b.loadCtl(); blk != nil {
			blk.increment()
			var out SharedBytes
			out.data = b.data
			atomic.StorePointer(&out.ctl, unsafe.Pointer(blk))
			return out
		}

		// Reconstruct the entire owned allocation and attempt to
		// promote it. owner already has no tail (invariant above).
		candidate := promoteWithSlice(b.owner, 2)
		if atomic.CompareAndSwapPointer(&b.ctl, nil, unsafe.Pointer(candidate)) {
			var out SharedBytes
			out.data = b.data
			atomic.StorePointer(&out.ctl, unsafe.Pointer(candidate))
			return out
		}
		// Lost the race: candidate is garbage, retry against whatever
		// the winner installed.
	}
}

// IntoVec reclaims the backing allocation as a plain []byte. If the view is
// unique and has a head offset, the bytes are compacted in place with an
// overlap-safe copy; otherwise (not unique) the bytes are copied fresh.
func (b *SharedBytes) IntoVec() []byte {
	if b.static {
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return out
	}
	if blk := b.loadCtl(); blk != nil {
		if reclaimed, ok := blk.releaseIntoSlice(blk.capacity); ok {
			off := ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(reclaimed)), len(reclaimed), b.AsPtr())
			if off > 0 {
				copy(reclaimed, reclaimed[off:off+len(b.data)])
			}
			return reclaimed[:len(b.data)]
		}
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return out
	}
	// Unpromoted implies unique; compact the head offset in place.
	if b.headOffset > 0 {
		copy(b.owner, b.owner[b.headOffset:b.headOffset+len(b.data)])
	}
	return b.owner[:len(b.data)]
}

// IntoMutBytes converts b into a MutBytes. Unlike IntoVec, no backward
// copy is needed: MutBytes can represent a head offset directly (via its
// own headOffset field while unpromoted, or by pointer arithmetic against
// ctl.base once promoted), so the offset is simply carried across.
func (b *SharedBytes) IntoMutBytes() MutBytes {
	if b.static {
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return MutBytes{data: out, owner: out}
	}
	if blk := b.loadCtl(); blk != nil {
		if reclaimed, ok := blk.releaseIntoSlice(blk.capacity); ok {
			off := ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(reclaimed)), len(reclaimed), b.AsPtr())
			full := reclaimed[off : off+len(b.data) : cap(reclaimed)]
			return MutBytes{data: full, owner: reclaimed[:cap(reclaimed):cap(reclaimed)], headOffset: off}
		}
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return MutBytes{data: out, owner: out}
	}
	off := b.headOffset
	return MutBytes{data: b.owner[off : off+len(b.data) : len(b.owner)], owner: b.owner, headOffset: off}
}

// Equal reports whether b's bytes equal s.
func (b *SharedBytes) Equal(s []byte) bool {
	if len(b.data) != len(s) {
		return false
	}
	for i := range b.data {
		if b.data[i] != s[i] {
			return false
		}
	}
	return true
}

// EqualString reports whether b's bytes equal s.
func (b *SharedBytes) EqualString(s string) bool {
	return string(b.data) == s
}

// sliceOffsetWithin returns the byte offset of sub within buf, panicking if
// sub is not contained in buf.
func sliceOffsetWithin(buf, sub []byte) int {
	if len(sub) == 0 {
		return ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(buf)), len(buf), unsafe.Pointer(unsafe.SliceData(sub)))
	}
	return ptrOffsetWithin(unsafe.Pointer(unsafe.SliceData(buf)), len(buf), unsafe.Pointer(unsafe.SliceData(sub)))
}

// ptrOffsetWithin converts ptr into an offset from base, panicking unless
// 0 <= offset <= length.
func ptrOffsetWithin(base unsafe.Pointer, length int, ptr unsafe.Pointer) int {
	off := uintptr(ptr) - uintptr(base)
	if int(off) < 0 || int(off) > length || uintptr(int(off)) != off {
		panic("zbuf: pointer not contained in buffer")
	}
	return int(off)
}
