package zbuf

// Chain sequences two Sources, draining a before b. Grounded on the
// original source's buf/chain.rs.
type Chain struct {
	a, b Source
}

// Remaining returns the saturating sum of both sources' remaining bytes.
func (c *Chain) Remaining() int {
	ra, rb := c.a.Remaining(), c.b.Remaining()
	sum := ra + rb
	if sum < ra { // overflow
		return int(^uint(0) >> 1)
	}
	return sum
}

// Chunk returns a's next chunk while a has remaining bytes, else b's.
func (c *Chain) Chunk() []byte {
	if HasRemaining(c.a) {
		return c.a.Chunk()
	}
	return c.b.Chunk()
}

// Advance drains a first, then b with whatever remains of n.
func (c *Chain) Advance(n int) {
	ra := c.a.Remaining()
	if n <= ra {
		c.a.Advance(n)
		return
	}
	c.a.Advance(ra)
	c.b.Advance(n - ra)
}

// CopyToBytes prefers draining entirely from whichever side alone can
// satisfy the request, falling back to the generic copying implementation
// when the request straddles both sides.
func (c *Chain) CopyToBytes(n int) SharedBytes {
	if n <= c.a.Remaining() {
		if s, ok := c.a.(interface{ CopyToBytes(int) SharedBytes }); ok {
			return s.CopyToBytes(n)
		}
	} else if c.a.Remaining() == 0 {
		if s, ok := c.b.(interface{ CopyToBytes(int) SharedBytes }); ok {
			return s.CopyToBytes(n)
		}
	}
	return CopyToBytes(c, n)
}

// Take limits an underlying Source to at most limit further bytes.
// Grounded on the original source's buf/take.rs.
type Take struct {
	src   Source
	limit int
}

// Limit returns the number of bytes this adapter will still yield before
// treating the underlying source as exhausted.
func (t *Take) Limit() int { return t.limit }

// SetLimit changes the remaining byte budget.
func (t *Take) SetLimit(lim int) { t.limit = lim }

// IntoInner returns the wrapped Source.
func (t *Take) IntoInner() Source { return t.src }

// Remaining returns min(src.Remaining(), limit).
func (t *Take) Remaining() int {
	if r := t.src.Remaining(); r < t.limit {
		return r
	}
	return t.limit
}

// Chunk returns the underlying chunk truncated to the remaining limit.
func (t *Take) Chunk() []byte {
	c := t.src.Chunk()
	if len(c) > t.limit {
		c = c[:t.limit]
	}
	return c
}

// Advance drains n bytes, panicking if n exceeds the remaining limit.
func (t *Take) Advance(n int) {
	if n > t.limit {
		panic("zbuf: Take.Advance exceeds limit")
	}
	t.src.Advance(n)
	t.limit -= n
}
