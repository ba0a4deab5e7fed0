package runeio

import "unicode/utf8"

// AppendKey appends the echo of a typed key to dst. ASCII keys are appended
// as is, NEL as the more conventional CRLF, other C1 controls in their 7-bit
// escape form (CSI becomes ESC [), and anything else as UTF-8.
func AppendKey(dst []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(dst, byte(r))
	case r == 0x85:
		return append(dst, '\r', '\n')
	case r <= 0x9f:
		return append(dst, 0x1b, byte(r^0xc0))
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(dst, buf[:n]...)
}
