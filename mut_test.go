package zbuf

import "testing"

func TestMutBytesSplitTo(t *testing.T) {
	m := CopyFromSliceMut([]byte("userinfo@example.com"))
	front := m.SplitTo(8)
	if string(front.AsSlice()) != "userinfo" {
		t.Fatalf("front = %q", front.AsSlice())
	}
	if string(m.AsSlice()) != "@example.com" {
		t.Fatalf("self = %q", m.AsSlice())
	}
}

func TestMutBytesTryReclaimFullOnUniqueEmpty(t *testing.T) {
	m := MutBytesWithCapacity(128)
	m.ExtendFromSlice(make([]byte, 23))
	origPtr := m.AsPtr()
	m.Clear()
	if !m.TryReclaimFull() {
		t.Fatalf("expected TryReclaimFull to succeed on a unique empty buffer")
	}
	if m.Cap() != 128 {
		t.Fatalf("cap = %d, want 128", m.Cap())
	}
	if m.AsPtr() != origPtr {
		t.Fatalf("expected TryReclaimFull to keep the original base pointer")
	}
}

func TestMutBytesReserveAllocatesWhileSplitFrontLive(t *testing.T) {
	m := MutBytesWithCapacity(16)
	m.ExtendFromSlice([]byte("0123456789"))
	front := m.SplitTo(10) // front keeps the ctlBlock non-unique for m
	origPtr := m.AsPtr()
	m.Reserve(10) // more than m's own 6 bytes of cap; front still live, so reclaim is blocked
	if m.AsPtr() == origPtr {
		t.Fatalf("expected Reserve to relocate while the split-off front is still live")
	}
	if len(front.AsSlice()) != 10 {
		t.Fatalf("front = %q", front.AsSlice())
	}
}

func TestMutBytesReserveReclaimsTailAfterSplitOffDropped(t *testing.T) {
	m := MutBytesWithCapacity(16)
	m.ExtendFromSlice([]byte("0123456789")) // len 10, cap 16
	tail := m.SplitOff(10)                  // m's own cap shrinks to 10; 6 bytes of tail live past it
	_ = tail
	m.ctl.release() // simulate the split-off tail going out of scope: m is unique again
	origPtr := m.AsPtr()
	m.Reserve(6) // exactly the abandoned tail capacity; must absorb it, not reallocate
	if m.AsPtr() != origPtr {
		t.Fatalf("expected Reserve to reclaim the trailing capacity in place")
	}
	if m.Cap() < 16 {
		t.Fatalf("cap = %d, want at least 16", m.Cap())
	}
}

func TestMutBytesUnsplitRoundTrip(t *testing.T) {
	m := CopyFromSliceMut([]byte("abcdefgh"))
	origPtr := m.AsPtr()
	tail := m.SplitOff(4)
	m.Unsplit(tail)
	if string(m.AsSlice()) != "abcdefgh" {
		t.Fatalf("got %q", m.AsSlice())
	}
	if m.AsPtr() != origPtr {
		t.Fatalf("expected Unsplit to restore the original pointer")
	}
}

func TestMutBytesFreezeIntoMutRoundTrip(t *testing.T) {
	v := []byte("round trip")
	m := FromSliceMut(append([]byte(nil), v...))
	frozen := m.Freeze()
	back := frozen.IntoMutBytes()
	if string(back.AsSlice()) != string(v) {
		t.Fatalf("got %q", back.AsSlice())
	}
}

func TestMutBytesExtendGrows(t *testing.T) {
	m := NewMutBytes()
	m.ExtendFromSlice([]byte("hello"))
	m.ExtendFromSlice([]byte(" world"))
	if string(m.AsSlice()) != "hello world" {
		t.Fatalf("got %q", m.AsSlice())
	}
}

func TestMutBytesShallowCloneSharesStorage(t *testing.T) {
	m := CopyFromSliceMut([]byte("shared"))
	view := m.ShallowClone()
	if !view.Equal([]byte("shared")) {
		t.Fatalf("got %q", view.AsSlice())
	}
	if m.IsEmpty() {
		t.Fatalf("expected m to still carry its own content after ShallowClone")
	}
}

func TestMutBytesTryUnsplitNonAdjacentFails(t *testing.T) {
	m := CopyFromSliceMut([]byte("abc"))
	other := CopyFromSliceMut([]byte("def"))
	if m.TryUnsplit(other) {
		t.Fatalf("expected non-adjacent buffers to fail the zero-copy merge")
	}
}

func TestMutBytesUnsplitFallsBackToCopy(t *testing.T) {
	m := CopyFromSliceMut([]byte("abc"))
	other := CopyFromSliceMut([]byte("def"))
	m.Unsplit(other)
	if string(m.AsSlice()) != "abcdef" {
		t.Fatalf("got %q", m.AsSlice())
	}
}
