package vt

import "strconv"

// Escape sequences emitted for named codes and built-ins.
const (
	ClearScreen = "\x1b[2J"
	ClearEOL    = "\x1b[K"
	Home        = "\x1b[H"
	Bell        = "\a"
)

// palette maps a 3-bit legacy color index to its ANSI color offset; the
// legacy order is blue-before-red, ANSI is red-before-blue.
var palette = [8]byte{0, 4, 2, 6, 1, 5, 3, 7}

// Attribute bits of a legacy color byte.
const (
	AttrBold  = 0x08
	AttrBlink = 0x80
)

// AppendSGR appends the select-graphic-rendition sequence for a legacy
// attribute byte: the low nibble is the foreground, the high nibble the
// background, bit 3 selects bold. Blink is not rendered.
func AppendSGR(dst []byte, attr byte) []byte {
	dst = append(dst, "\x1b[0;"...)
	if attr&AttrBold != 0 {
		dst = append(dst, "1;"...)
	}
	dst = strconv.AppendInt(dst, 30+int64(palette[attr&0x07]), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, 40+int64(palette[(attr>>4)&0x07]), 10)
	return append(dst, 'm')
}

// SGR returns AppendSGR as a string.
func SGR(attr byte) string { return string(AppendSGR(nil, attr)) }

// AppendGotoXY appends a cursor position sequence for 0-based x and y.
func AppendGotoXY(dst []byte, x, y int) []byte {
	dst = append(dst, "\x1b["...)
	dst = strconv.AppendInt(dst, int64(y+1), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(x+1), 10)
	return append(dst, 'H')
}
