package zbuf

import "encoding/binary"

// Source is a readable cursor over possibly non-contiguous bytes. Grounded
// on the original source's buf.rs Buf trait; the blanket implementations
// below (over []byte, SharedBytes, MutBytes) play the role of the upstream
// crate's impl Buf for &[u8] / Bytes / BytesMut.
type Source interface {
	// Remaining returns the number of bytes left to read. Monotonically
	// non-increasing between Advance calls.
	Remaining() int

	// Chunk returns the next contiguous run of unread bytes. Non-empty
	// iff Remaining() > 0; never longer than Remaining().
	Chunk() []byte

	// Advance discards the next n bytes. Panics if n > Remaining().
	Advance(n int)
}

// HasRemaining reports whether s has any unread bytes left.
func HasRemaining(s Source) bool { return s.Remaining() > 0 }

// ChunksVectored fills dst with contiguous unread runs from s and returns
// the number of entries filled. A *Chain fills entries from both of its
// sources in order; every other Source in this package is single-chunk and
// fills at most one entry.
func ChunksVectored(s Source, dst [][]byte) int {
	if len(dst) == 0 || !HasRemaining(s) {
		return 0
	}
	if c, ok := s.(*Chain); ok {
		n := ChunksVectored(c.a, dst)
		return n + ChunksVectored(c.b, dst[n:])
	}
	dst[0] = s.Chunk()
	return 1
}

// CopyToSlice copies len(dst) bytes from s into dst and advances s by that
// many bytes. Panics if s does not have enough bytes remaining.
func CopyToSlice(s Source, dst []byte) {
	n := copy(dst, s.Chunk())
	for n < len(dst) {
		s.Advance(n)
		dst = dst[n:]
		if s.Remaining() == 0 {
			panic("zbuf: CopyToSlice: source exhausted")
		}
		n = copy(dst, s.Chunk())
	}
	s.Advance(n)
}

// CopyToBytes drains n bytes from s into a fresh SharedBytes. The default
// path materializes via a MutBytes and Freeze; concrete Source
// implementations in this package (*SharedBytes, *MutBytes)
// are expected to special-case the single-chunk, already-owned case
// themselves rather than going through this helper when they can avoid the
// copy (see SharedBytes.CopyToBytes / MutBytes.CopyToBytes below).
func CopyToBytes(s Source, n int) SharedBytes {
	out := MutBytesWithCapacity(n)
	remaining := n
	for remaining > 0 {
		chunk := s.Chunk()
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		out.ExtendFromSlice(chunk)
		s.Advance(len(chunk))
		remaining -= len(chunk)
	}
	return out.Freeze()
}

// --- integer decode -------------------------------------------------------

// GetUint8 reads one byte and advances s by one. Panics if s is empty.
func GetUint8(s Source) uint8 {
	v, ok := TryGetUint8(s)
	if !ok {
		panic("zbuf: GetUint8: insufficient bytes")
	}
	return v
}

// TryGetUint8 reads one byte and advances s by one, or reports ok == false
// if s is empty (s is left unchanged).
func TryGetUint8(s Source) (v uint8, ok bool) {
	if s.Remaining() < 1 {
		return 0, false
	}
	v = s.Chunk()[0]
	s.Advance(1)
	return v, true
}

func getUintN(s Source, n int, order binary.ByteOrder) (v uint64, ok bool) {
	if s.Remaining() < n {
		return 0, false
	}
	var buf [8]byte
	CopyToSlice(s, buf[:n])
	switch n {
	case 2:
		return uint64(order.Uint16(buf[:2])), true
	case 4:
		return uint64(order.Uint32(buf[:4])), true
	case 8:
		return order.Uint64(buf[:8]), true
	}
	panic("zbuf: unsupported integer width")
}

// TryGetUint16BE reads a big-endian uint16, or ok == false if insufficient.
func TryGetUint16BE(s Source) (uint16, bool) {
	v, ok := getUintN(s, 2, binary.BigEndian)
	return uint16(v), ok
}

// TryGetUint16LE reads a little-endian uint16, or ok == false if insufficient.
func TryGetUint16LE(s Source) (uint16, bool) {
	v, ok := getUintN(s, 2, binary.LittleEndian)
	return uint16(v), ok
}

// TryGetUint16 reads a native-endian uint16, or ok == false if insufficient.
func TryGetUint16(s Source) (uint16, bool) {
	v, ok := getUintN(s, 2, binary.NativeEndian)
	return uint16(v), ok
}

// TryGetUint32BE reads a big-endian uint32, or ok == false if insufficient.
func TryGetUint32BE(s Source) (uint32, bool) {
	v, ok := getUintN(s, 4, binary.BigEndian)
	return uint32(v), ok
}

// TryGetUint32LE reads a little-endian uint32, or ok == false if insufficient.
func TryGetUint32LE(s Source) (uint32, bool) {
	v, ok := getUintN(s, 4, binary.LittleEndian)
	return uint32(v), ok
}

// TryGetUint32 reads a native-endian uint32, or ok == false if insufficient.
func TryGetUint32(s Source) (uint32, bool) {
	v, ok := getUintN(s, 4, binary.NativeEndian)
	return uint32(v), ok
}

// TryGetUint64BE reads a big-endian uint64, or ok == false if insufficient.
func TryGetUint64BE(s Source) (uint64, bool) { return getUintN(s, 8, binary.BigEndian) }

// TryGetUint64LE reads a little-endian uint64, or ok == false if insufficient.
func TryGetUint64LE(s Source) (uint64, bool) { return getUintN(s, 8, binary.LittleEndian) }

// TryGetUint64 reads a native-endian uint64, or ok == false if insufficient.
func TryGetUint64(s Source) (uint64, bool) { return getUintN(s, 8, binary.NativeEndian) }

// GetUint16BE, GetUint32BE, GetUint64BE and their LE/native-endian variants
// panic instead of returning ok == false; each is a thin wrapper over the
// matching Try* function, mirroring the checked/unchecked pairing
// spec.md §4.5 and §7 require. Only unsigned widths are exposed: §4.5
// lists uXX only, so the signed get_iXX family the original defines has
// no counterpart here.
func GetUint16BE(s Source) uint16 { return mustGet(TryGetUint16BE(s)) }
func GetUint16LE(s Source) uint16 { return mustGet(TryGetUint16LE(s)) }
func GetUint16(s Source) uint16   { return mustGet(TryGetUint16(s)) }
func GetUint32BE(s Source) uint32 { return mustGet(TryGetUint32BE(s)) }
func GetUint32LE(s Source) uint32 { return mustGet(TryGetUint32LE(s)) }
func GetUint32(s Source) uint32   { return mustGet(TryGetUint32(s)) }
func GetUint64BE(s Source) uint64 { return mustGet(TryGetUint64BE(s)) }
func GetUint64LE(s Source) uint64 { return mustGet(TryGetUint64LE(s)) }
func GetUint64(s Source) uint64   { return mustGet(TryGetUint64(s)) }

func mustGet[T any](v T, ok bool) T {
	if !ok {
		panic("zbuf: Get: insufficient bytes")
	}
	return v
}

// --- blanket Source implementations ---------------------------------------

// sliceSource adapts a plain []byte to Source, the Go analogue of the
// upstream crate's `impl Buf for &[u8]`.
type sliceSource struct{ b []byte }

// NewSliceSource wraps s as a Source.
func NewSliceSource(s []byte) Source { return &sliceSource{b: s} }

func (s *sliceSource) Remaining() int { return len(s.b) }
func (s *sliceSource) Chunk() []byte  { return s.b }
func (s *sliceSource) Advance(n int) {
	if n > len(s.b) {
		panic("zbuf: sliceSource.Advance out of bounds")
	}
	s.b = s.b[n:]
}

func (b *SharedBytes) Remaining() int { return b.Len() }
func (b *SharedBytes) Chunk() []byte  { return b.AsSlice() }

// CopyToBytes drains n bytes from b as a zero-copy SplitTo instead of the
// generic copying default, since a SharedBytes source is
// already its own contiguous shared allocation.
func (b *SharedBytes) CopyToBytes(n int) SharedBytes {
	out := b.SplitTo(n)
	return out
}

func (m *MutBytes) Remaining() int { return m.Len() }
func (m *MutBytes) Chunk() []byte  { return m.AsSlice() }

// Advance drops the first n bytes from the readable window. While
// unpromoted this moves data's start past owner[0], so headOffset is kept
// in step with it -- Freeze and the reclaim paths both depend on it to
// recover the real position.
func (m *MutBytes) Advance(n int) {
	if n > len(m.data) {
		panic("zbuf: MutBytes.Advance out of bounds")
	}
	m.data = m.data[n:]
	if m.ctl == nil {
		m.headOffset += n
	}
}

// CopyToBytes drains n bytes from m as a zero-copy split instead of the
// generic copying default.
func (m *MutBytes) CopyToBytes(n int) SharedBytes {
	return m.SplitTo(n).Freeze()
}

// NewTake returns an adapter that limits s to at most limit further bytes.
func NewTake(s Source, limit int) *Take { return &Take{src: s, limit: limit} }

// NewChain returns an adapter that reads a fully, then b.
func NewChain(a, b Source) *Chain { return &Chain{a: a, b: b} }
