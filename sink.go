package zbuf

import "encoding/binary"

// Sink is a writable cursor over possibly uninitialized memory. Grounded on
// the original source's buf_mut.rs BufMut trait.
type Sink interface {
	// RemainingMut returns the number of bytes that can still be
	// written before the sink must grow (or panics on overflow).
	RemainingMut() int

	// ChunkMut returns the next writable region as an UninitSlice: the
	// caller must not read it, and must not advance past bytes it has
	// not itself written.
	ChunkMut() *UninitSlice

	// AdvanceMut records that n bytes of ChunkMut() were initialized by
	// the caller.
	//
	// Unsafe: the caller must have actually written those n bytes
	// through ChunkMut before calling this.
	AdvanceMut(n int)
}

// HasRemainingMut reports whether s can still accept more writes.
func HasRemainingMut(s Sink) bool { return s.RemainingMut() > 0 }

// PutSlice writes all of src into s, growing/advancing as needed. Panics
// if s does not have enough remaining capacity.
func PutSlice(s Sink, src []byte) {
	for len(src) > 0 {
		dst := s.ChunkMut()
		n := dst.CopyFrom(src)
		s.AdvanceMut(n)
		src = src[n:]
		if n == 0 && len(src) > 0 {
			panic("zbuf: PutSlice: sink exhausted")
		}
	}
}

// Put drains all of src into s.
func Put(s Sink, src Source) {
	for HasRemaining(src) {
		chunk := src.Chunk()
		PutSlice(s, chunk)
		src.Advance(len(chunk))
	}
}

func putUintN(s Sink, v uint64, n int, order binary.ByteOrder) {
	var buf [8]byte
	switch n {
	case 2:
		order.PutUint16(buf[:2], uint16(v))
	case 4:
		order.PutUint32(buf[:4], uint32(v))
	case 8:
		order.PutUint64(buf[:8], v)
	default:
		panic("zbuf: unsupported integer width")
	}
	PutSlice(s, buf[:n])
}

// PutUint8 appends a single byte.
func PutUint8(s Sink, v uint8) { PutSlice(s, []byte{v}) }

func PutUint16BE(s Sink, v uint16) { putUintN(s, uint64(v), 2, binary.BigEndian) }
func PutUint16LE(s Sink, v uint16) { putUintN(s, uint64(v), 2, binary.LittleEndian) }
func PutUint16(s Sink, v uint16)   { putUintN(s, uint64(v), 2, binary.NativeEndian) }
func PutUint32BE(s Sink, v uint32) { putUintN(s, uint64(v), 4, binary.BigEndian) }
func PutUint32LE(s Sink, v uint32) { putUintN(s, uint64(v), 4, binary.LittleEndian) }
func PutUint32(s Sink, v uint32)   { putUintN(s, uint64(v), 4, binary.NativeEndian) }
func PutUint64BE(s Sink, v uint64) { putUintN(s, v, 8, binary.BigEndian) }
func PutUint64LE(s Sink, v uint64) { putUintN(s, v, 8, binary.LittleEndian) }
func PutUint64(s Sink, v uint64)   { putUintN(s, v, 8, binary.NativeEndian) }

// --- UninitSlice -----------------------------------------------------------

// UninitSlice is an opaque view over possibly-uninitialized memory. Safe
// code may not read through it and may not claim (via AdvanceMut on the
// owning Sink) bytes it has not itself written via CopyFrom/Set. Grounded
// on the original source's buf_mut.rs UninitSlice, adapted to Go: since Go
// zero-initializes all memory, "uninitialized" here means "not yet
// logically part of the written content", not undefined bit patterns --
// the type exists to preserve the write-before-advance API contract, not
// to dodge a real uninitialized-read hazard.
type UninitSlice struct {
	b []byte
}

// NewUninitSlice wraps the backing slice b, which must not be read by the
// caller until written.
func NewUninitSlice(b []byte) *UninitSlice { return &UninitSlice{b: b} }

// Len returns the number of writable bytes.
func (u *UninitSlice) Len() int { return len(u.b) }

// CopyFrom writes as much of src as fits and returns how many bytes were
// written.
func (u *UninitSlice) CopyFrom(src []byte) int { return copy(u.b, src) }

// Set writes a single byte at index i. Panics if i is out of range.
func (u *UninitSlice) Set(i int, v byte) { u.b[i] = v }

// Slice returns the sub-range [lo:hi) as an UninitSlice.
func (u *UninitSlice) Slice(lo, hi int) *UninitSlice { return &UninitSlice{b: u.b[lo:hi]} }

// AsUninitBytes is the explicit unsafe escape hatch back to a plain
// []byte, for callers that already know the memory is theirs to both read
// and write.
//
// Unsafe: callers outside this package must not read bytes past what they
// have themselves written.
func (u *UninitSlice) AsUninitBytes() []byte { return u.b }

// --- blanket Sink implementations ------------------------------------------

// sliceSink adapts a plain, already-initialized []byte (tracked by a
// length cursor) to Sink, appending as it grows. The Go analogue of the
// upstream crate's `impl BufMut for Vec<u8>`.
type sliceSink struct{ buf *[]byte }

// NewSliceSink wraps dst as an append-growing Sink.
func NewSliceSink(dst *[]byte) Sink { return &sliceSink{buf: dst} }

func (s *sliceSink) RemainingMut() int { return int(^uint(0) >> 1) }

func (s *sliceSink) ChunkMut() *UninitSlice {
	b := *s.buf
	free := cap(b) - len(b)
	if free == 0 {
		free = 64
		if c := cap(b); c > free {
			free = c
		}
		grown := make([]byte, len(b), len(b)+free)
		copy(grown, b)
		*s.buf = grown
		b = grown
	}
	return NewUninitSlice(b[len(b):cap(b)])
}

func (s *sliceSink) AdvanceMut(n int) {
	b := *s.buf
	*s.buf = b[:len(b)+n]
}

// RemainingMut returns the spare capacity, Cap() - Len(); ChunkMut grows
// the buffer once it reaches zero.
func (m *MutBytes) RemainingMut() int { return m.Cap() - m.Len() }

// ChunkMut exposes the buffer's spare capacity for writing. When there is
// none, Reserve(64) is called first so a full or zero-capacity MutBytes
// still offers room to grow.
func (m *MutBytes) ChunkMut() *UninitSlice {
	if m.Cap() == m.Len() {
		m.Reserve(64)
	}
	return NewUninitSlice(m.data[len(m.data):cap(m.data)])
}

// AdvanceMut records that the caller wrote n bytes into ChunkMut's result.
func (m *MutBytes) AdvanceMut(n int) {
	m.data = m.data[:len(m.data)+n]
}

// PutSource drains src into m, stealing its allocation outright when m has
// no capacity and src is a single-chunk source that owns that chunk uniquely
// (mirrors spec.md §4.3 Put's steal-the-allocation fast path).
func (m *MutBytes) PutSource(src Source) {
	if m.Cap() == 0 {
		if sb, ok := src.(*SharedBytes); ok && sb.IsUnique() {
			*m = sb.IntoMutBytes()
			*sb = NewSharedBytes()
			return
		}
	}
	m.Reserve(src.Remaining())
	Put(m, src)
}
