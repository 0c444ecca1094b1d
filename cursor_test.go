package zbuf

import (
	"bytes"
	"testing"
)

func TestCursorNextFind(t *testing.T) {
	c := NewCursor([]byte("Content-Type: "))
	got, ok := c.NextFind(':')
	if !ok || string(got) != "Content-Type" {
		t.Fatalf("got %q, %v", got, ok)
	}
	if string(c.AsBytes()) != ": " {
		t.Fatalf("remaining = %q", c.AsBytes())
	}
}

func TestCursorNextUntilAndSplit(t *testing.T) {
	c := NewCursor([]byte("a,b,c"))
	got, ok := c.NextUntil(',')
	if !ok || string(got) != "a," {
		t.Fatalf("NextUntil got %q, %v", got, ok)
	}

	c2 := NewCursor([]byte("a,b,c"))
	got2, ok2 := c2.NextSplit(',')
	if !ok2 || string(got2) != "a" {
		t.Fatalf("NextSplit got %q, %v", got2, ok2)
	}
	if string(c2.AsBytes()) != "b,c" {
		t.Fatalf("remaining = %q", c2.AsBytes())
	}
}

func TestCursorFindRawMatchesLinearScan(t *testing.T) {
	for n := 0; n < 40; n++ {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte('a' + i%5)
		}
		for _, target := range []byte{'a', 'b', 'c', 'd', 'e', 'z'} {
			want := bytes.IndexByte(buf, target)
			c := NewCursor(buf)
			off, ok := c.findRaw(target)
			if want < 0 {
				if ok {
					t.Fatalf("n=%d target=%c: expected not found", n, target)
				}
				continue
			}
			if !ok || off != want {
				t.Fatalf("n=%d target=%c: got (%d,%v), want %d", n, target, off, ok, want)
			}
		}
	}
}

func TestCursorStepBackAndAdvance(t *testing.T) {
	c := NewCursor([]byte("abcdef"))
	c.Advance(3)
	if c.Steps() != 3 {
		t.Fatalf("steps = %d", c.Steps())
	}
	c.StepBack(1)
	if c.Steps() != 2 {
		t.Fatalf("steps after step back = %d", c.Steps())
	}
	if string(c.AsBytes()) != "cdef" {
		t.Fatalf("got %q", c.AsBytes())
	}
}

func TestCursorPeekNextChunk(t *testing.T) {
	c := NewCursor([]byte("abcdef"))
	chunk, ok := c.PeekChunk(3)
	if !ok || string(chunk) != "abc" {
		t.Fatalf("peek chunk got %q, %v", chunk, ok)
	}
	if c.Steps() != 0 {
		t.Fatalf("peek must not advance")
	}
	chunk, ok = c.NextChunk(3)
	if !ok || string(chunk) != "abc" {
		t.Fatalf("next chunk got %q, %v", chunk, ok)
	}
	if c.Steps() != 3 {
		t.Fatalf("steps = %d", c.Steps())
	}
	if _, ok := c.NextChunk(10); ok {
		t.Fatalf("expected NextChunk past end to fail")
	}
}
