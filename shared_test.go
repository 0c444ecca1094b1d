package zbuf

import (
	"testing"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

func TestSharedBytesStaticIsNotUnique(t *testing.T) {
	b := FromStaticBytes([]byte("hello"))
	if b.IsUnique() {
		t.Fatalf("static SharedBytes reported unique")
	}
}

func TestSharedBytesFromSliceCloneDropIsUnique(t *testing.T) {
	v := make([]byte, 8)
	b := FromSliceShared(v)
	clone := b.Clone()
	_ = clone
	if b.IsUnique() {
		t.Fatalf("expected not unique while clone is live")
	}
	clone = SharedBytes{}
	_ = clone
	// Go has no deterministic drop; exercise the refcount path directly.
	blk := b.loadCtl()
	if blk == nil {
		t.Fatalf("expected promotion after clone")
	}
	blk.release()
	if !b.IsUnique() {
		t.Fatalf("expected unique after releasing the only clone")
	}
}

func TestSharedBytesAdvanceIntoVecCompactsInPlace(t *testing.T) {
	v := []byte("Content-Type")
	b := FromSliceShared(v)
	origPtr := b.AsPtr()
	b.Advance(2)
	out := b.IntoVec()
	if unsafe.Pointer(unsafe.SliceData(out)) != origPtr {
		t.Fatalf("expected IntoVec to compact in place at the original base pointer")
	}
	if string(out) != "ntent-Type" {
		t.Fatalf("got %q", out)
	}
}

func TestSharedBytesAdvanceIntoMutKeepsOffsetPointer(t *testing.T) {
	v := []byte("Content-Type")
	b := FromSliceShared(v)
	b.Advance(2)
	wantPtr := b.AsPtr()
	m := b.IntoMutBytes()
	if m.AsPtr() != wantPtr {
		t.Fatalf("expected IntoMutBytes to keep the advanced pointer without compaction")
	}
}

func TestSharedBytesTruncatePromotes(t *testing.T) {
	v := []byte("Content-Type")
	b := FromSliceShared(v)
	if b.loadCtl() != nil {
		t.Fatalf("expected unpromoted before truncate")
	}
	b.Truncate(7)
	if b.loadCtl() == nil {
		t.Fatalf("expected truncate to force promotion")
	}
	if !b.Equal([]byte("Content")) {
		t.Fatalf("got %q", b.AsSlice())
	}
}

func TestSharedBytesSlice(t *testing.T) {
	b := CopyFromSliceShared([]byte("Hello World!"))
	got := b.Slice(6, b.Len())
	if !got.Equal([]byte("World!")) {
		t.Fatalf("got %q", got.AsSlice())
	}
}

func TestSharedBytesSplitConcatenation(t *testing.T) {
	original := []byte("the quick brown fox")
	for i := 0; i <= len(original); i++ {
		b := FromSliceShared(append([]byte(nil), original...))
		front := b.SplitTo(i)
		combined := append(append([]byte(nil), front.AsSlice()...), b.AsSlice()...)
		if string(combined) != string(original) {
			t.Fatalf("split_to(%d): got %q want %q", i, combined, original)
		}
	}
}

func TestSharedBytesConcurrentPromotionRace(t *testing.T) {
	v := make([]byte, 32)
	b := FromSliceShared(v)

	var g errgroup.Group
	results := make([]SharedBytes, 2)
	g.Go(func() error {
		results[0] = b.Clone()
		return nil
	})
	g.Go(func() error {
		results[1] = b.Clone()
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	blk := b.loadCtl()
	if blk == nil {
		t.Fatalf("expected promotion")
	}
	if results[0].loadCtl() != blk || results[1].loadCtl() != blk {
		t.Fatalf("expected both clones to observe the same winning ctlBlock")
	}
	if got := blk.refcount.Load(); got != 3 {
		t.Fatalf("refcount = %d, want 3", got)
	}
}

func TestSharedBytesEqual(t *testing.T) {
	b := CopyFromSliceShared([]byte("abc"))
	if !b.Equal([]byte("abc")) || b.Equal([]byte("abd")) {
		t.Fatalf("Equal mismatch")
	}
	if !b.EqualString("abc") {
		t.Fatalf("EqualString mismatch")
	}
}

func TestSharedBytesString(t *testing.T) {
	b := CopyFromSliceShared([]byte("ab\r\n\x01"))
	if got, want := b.String(), `ab\r\n\x01`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
