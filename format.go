package zbuf

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lossyDebugString renders b as a debug string: ASCII graphic bytes pass
// through as-is, \r and \n render as their familiar escapes, and every
// other byte (control bytes and anything outside ASCII) renders as \xHH.
//
// Before escaping, the bytes are run through golang.org/x/text's UTF-8
// decoder so that malformed multi-byte sequences are replaced with the
// Unicode replacement rune, which the escaping pass then renders as
// \xef\xbf\xbd; the original bytes of a malformed sequence do not appear in
// the output. This is "lossy" the way the original source's debug Display
// impl is lossy, rather than a hand-rolled UTF-8 validity scan.
func lossyDebugString(b []byte) string {
	cleaned, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		cleaned = b
	}

	var sb strings.Builder
	sb.Grow(len(cleaned) + 2)
	for _, r := range cleaned {
		switch {
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r >= 0x20 && r < 0x7f:
			sb.WriteByte(r)
		default:
			sb.WriteString(`\x`)
			const hex = "0123456789abcdef"
			sb.WriteByte(hex[r>>4])
			sb.WriteByte(hex[r&0xf])
		}
	}
	return sb.String()
}

// String renders b's bytes as a lossy debug string (spec.md §6).
func (b *SharedBytes) String() string { return lossyDebugString(b.data) }

// GoString renders b in Go-syntax-like form for %#v.
func (b *SharedBytes) GoString() string { return "zbuf.SharedBytes{" + b.String() + "}" }

// String renders m's written bytes as a lossy debug string.
func (m *MutBytes) String() string { return lossyDebugString(m.data) }

// GoString renders m in Go-syntax-like form for %#v.
func (m *MutBytes) GoString() string { return "zbuf.MutBytes{" + m.String() + "}" }
