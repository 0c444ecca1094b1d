package zbuf

import "unsafe"

// PtrRange is a half-open range of byte addresses captured from one
// buffer, usable to obtain a zero-copy sub-slice of any later buffer that
// still covers those same addresses -- "remember a sub-slice across a
// freeze operation" per spec.md §4.6.
type PtrRange struct {
	begin, end uintptr
}

// RangeOf captures the address range covered by s.
func RangeOf(s []byte) PtrRange {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	return PtrRange{begin: base, end: base + uintptr(len(s))}
}

// Len returns the number of bytes the range spans.
func (r PtrRange) Len() int { return int(r.end - r.begin) }

// SliceOfBytes returns the sub-view of buf covering r, which must be (a
// sub-range of) buf's own address range.
//
// spec.md §9's Open Question notes the reference implementation computes
// its bound check from the range's starting address rather than its
// length, making the upper-bound assertion unreachable in practice; this
// port uses the actual buffer length, per spec.md's own correction.
func SliceOfBytes(r PtrRange, buf *SharedBytes) SharedBytes {
	base := uintptr(buf.AsPtr())
	bufLen := uintptr(buf.Len())
	if r.begin < base || r.end > base+bufLen {
		panic("zbuf: SliceOfBytes range not contained in buffer")
	}
	if r.Len() == 0 {
		return buf.Slice(int(r.begin-base), int(r.begin-base))
	}
	lo := int(r.begin - base)
	return buf.Slice(lo, lo+r.Len())
}

// SliceOfMutBytes returns the sub-view of buf covering r, dropping any
// leading bytes of buf that precede r.begin.
func SliceOfMutBytes(r PtrRange, buf *MutBytes) MutBytes {
	base := uintptr(buf.AsPtr())
	bufLen := uintptr(buf.Len())
	if r.begin < base || r.end > base+bufLen {
		panic("zbuf: SliceOfMutBytes range not contained in buffer")
	}
	lead := int(r.begin - base)
	if lead > 0 {
		buf.SplitTo(lead)
	}
	if r.Len() < buf.Len() {
		tail := buf.SplitOff(r.Len())
		_ = tail
	}
	return *buf
}

// SliceOf returns the borrowed sub-slice of buf covering r.
func SliceOf(r PtrRange, buf []byte) []byte {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	bufLen := uintptr(len(buf))
	if r.begin < base || r.end > base+bufLen {
		panic("zbuf: SliceOf range not contained in buffer")
	}
	lo := int(r.begin - base)
	return buf[lo : lo+r.Len()]
}
