package zbuf

import "testing"

func TestChainCopyToBytes(t *testing.T) {
	a := NewSliceSource([]byte("foo"))
	b := NewSliceSource([]byte("bar"))
	c := NewChain(a, b)
	got := c.CopyToBytes(5)
	if !got.Equal([]byte("fooba")) {
		t.Fatalf("got %q", got.AsSlice())
	}
}

func TestChainRemainingAndAdvance(t *testing.T) {
	a := NewSliceSource([]byte("foo"))
	b := NewSliceSource([]byte("bar"))
	c := NewChain(a, b)
	if c.Remaining() != 6 {
		t.Fatalf("remaining = %d", c.Remaining())
	}
	c.Advance(4)
	if string(c.Chunk()) != "ar" {
		t.Fatalf("chunk = %q", c.Chunk())
	}
}

func TestTakeLimitsChunkAndAdvance(t *testing.T) {
	src := NewSliceSource([]byte("0123456789"))
	tk := NewTake(src, 4)
	if tk.Remaining() != 4 {
		t.Fatalf("remaining = %d", tk.Remaining())
	}
	if string(tk.Chunk()) != "0123" {
		t.Fatalf("chunk = %q", tk.Chunk())
	}
	tk.Advance(4)
	if tk.Remaining() != 0 {
		t.Fatalf("remaining after drain = %d", tk.Remaining())
	}
}

func TestGetUint32BigEndian(t *testing.T) {
	src := NewSliceSource([]byte{0, 0, 0x01, 0x02})
	got := GetUint32BE(src)
	if got != 0x0102 {
		t.Fatalf("got %#x", got)
	}
	if HasRemaining(src) {
		t.Fatalf("expected no bytes remaining")
	}
}

func TestIntegerRoundTripAllWidthsAndEndian(t *testing.T) {
	var buf []byte
	sink := NewSliceSink(&buf)

	PutUint16BE(sink, 0xAABB)
	PutUint16LE(sink, 0xAABB)
	PutUint32BE(sink, 0xAABBCCDD)
	PutUint32LE(sink, 0xAABBCCDD)
	PutUint64BE(sink, 0x0102030405060708)
	PutUint64LE(sink, 0x0102030405060708)

	src := NewSliceSource(buf)
	if v := GetUint16BE(src); v != 0xAABB {
		t.Fatalf("u16 be = %#x", v)
	}
	if v := GetUint16LE(src); v != 0xAABB {
		t.Fatalf("u16 le = %#x", v)
	}
	if v := GetUint32BE(src); v != 0xAABBCCDD {
		t.Fatalf("u32 be = %#x", v)
	}
	if v := GetUint32LE(src); v != 0xAABBCCDD {
		t.Fatalf("u32 le = %#x", v)
	}
	if v := GetUint64BE(src); v != 0x0102030405060708 {
		t.Fatalf("u64 be = %#x", v)
	}
	if v := GetUint64LE(src); v != 0x0102030405060708 {
		t.Fatalf("u64 le = %#x", v)
	}
	if HasRemaining(src) {
		t.Fatalf("expected source fully drained")
	}
}

func TestTryGetInsufficientBytes(t *testing.T) {
	src := NewSliceSource([]byte{0x01})
	if _, ok := TryGetUint32BE(src); ok {
		t.Fatalf("expected TryGetUint32BE to fail on insufficient bytes")
	}
	if got := src.Remaining(); got != 1 {
		t.Fatalf("expected source untouched on failed read, remaining = %d", got)
	}
}

func TestPutSliceAndSinkOnMutBytes(t *testing.T) {
	m := NewMutBytes()
	PutSlice(&m, []byte("hello"))
	if string(m.AsSlice()) != "hello" {
		t.Fatalf("got %q", m.AsSlice())
	}
}

func TestMutBytesPutSourceStealsUniqueAllocation(t *testing.T) {
	sb := CopyFromSliceShared([]byte("stolen"))
	m := NewMutBytes()
	m.PutSource(&sb)
	if string(m.AsSlice()) != "stolen" {
		t.Fatalf("got %q", m.AsSlice())
	}
}
