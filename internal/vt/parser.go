// Package vt transcodes the legacy @-code output dialect into ANSI terminal
// sequences while tracking the cursor and attribute a remote terminal would
// hold.
package vt

import (
	"strings"

	"github.com/jcorbin/ppedoor/internal/runeio"
)

const (
	prefix     = '@'
	colorStart = 'X'

	// EOF terminates a display file; nothing after it is rendered.
	EOF = 0x1A

	// maxNameLen bounds a named code; longer runs are literal text.
	maxNameLen = 32
)

type mode uint8

const (
	modeDefault mode = iota
	modeGotPrefix
	modeNibble1
	modeNibble2
	modeNamed
)

var modeNames = [...]string{"default", "prefix", "nibble1", "nibble2", "named"}

func (m mode) String() string { return modeNames[m] }

// Parser is the transcoder state machine; its state carries across calls so
// that a code may be split between writes.
type Parser struct {
	// Logf, if set, receives notice of dropped codes.
	Logf func(mess string, args ...interface{})

	// Width is the column count used for cursor wrapping, 80 when zero.
	Width int

	X, Y int
	Attr byte

	mode   mode
	nibble byte
	name   []byte
}

// Reset returns the parser to its session start state.
func (p *Parser) Reset() {
	p.X, p.Y, p.Attr = 0, 0, 0
	p.mode = modeDefault
	p.name = p.name[:0]
}

// Idle reports whether the parser is between codes.
func (p *Parser) Idle() bool { return p.mode == modeDefault }

// Transcode appends the rendering of src to dst.
func (p *Parser) Transcode(dst, src []byte) []byte {
	for _, c := range src {
		switch p.mode {
		case modeDefault:
			switch c {
			case prefix:
				p.mode = modeGotPrefix
			case EOF:
				return dst
			default:
				dst = p.emit(dst, c)
			}

		case modeGotPrefix:
			switch c {
			case prefix:
				// a lone @ left over from an earlier write starts over
			case colorStart:
				p.mode = modeNibble1
			default:
				p.name = append(p.name[:0], c)
				p.mode = modeNamed
			}

		case modeNibble1:
			if _, ok := hexDigit(c); ok {
				p.nibble = c
				p.mode = modeNibble2
			} else {
				p.mode = modeDefault
				dst = p.emit(dst, prefix, colorStart, c)
			}

		case modeNibble2:
			p.mode = modeDefault
			hi, _ := hexDigit(p.nibble)
			if lo, ok := hexDigit(c); ok {
				dst = p.setColor(dst, hi<<4|lo)
			} else {
				dst = p.emit(dst, prefix, p.nibble, c)
			}

		case modeNamed:
			switch {
			case c == prefix:
				p.mode = modeDefault
				dst = p.expand(dst, string(p.name))
			case c == '\r' || c == '\n' || len(p.name) >= maxNameLen:
				p.mode = modeDefault
				dst = p.emit(dst, prefix)
				dst = p.emit(dst, p.name...)
				dst = p.emit(dst, c)
			default:
				p.name = append(p.name, c)
			}
		}
	}
	return dst
}

// SetColor appends the rendering of an attribute change, identical to what
// an @X code for attr produces.
func (p *Parser) SetColor(dst []byte, attr byte) []byte {
	return p.setColor(dst, attr)
}

// GotoXY appends a cursor move to 0-based x and y.
func (p *Parser) GotoXY(dst []byte, x, y int) []byte {
	p.X, p.Y = x, y
	return AppendGotoXY(dst, x, y)
}

func (p *Parser) setColor(dst []byte, attr byte) []byte {
	p.Attr = attr
	return AppendSGR(dst, attr)
}

func (p *Parser) expand(dst []byte, name string) []byte {
	switch strings.ToUpper(name) {
	case "CLS":
		p.X, p.Y = 0, 0
		return append(dst, ClearScreen...)
	case "CLREOL":
		return append(dst, ClearEOL...)
	case "HOME":
		p.X, p.Y = 0, 0
		return append(dst, Home...)
	case "BEEP":
		return append(dst, Bell...)
	case "POFF", "PON", "PAUSE", "MORE", "WAIT":
		return dst
	}
	p.logf("dropped unknown code @%v@", runeio.Quote(name))
	return dst
}

func (p *Parser) emit(dst []byte, cs ...byte) []byte {
	width := p.Width
	if width <= 0 {
		width = 80
	}
	for _, c := range cs {
		switch {
		case c == '\r':
			p.X = 0
		case c == '\n':
			p.Y++
		case c == '\b':
			if p.X > 0 {
				p.X--
			}
		case c == '\a':
		case c == 0x1b:
		case c >= 0x20:
			p.X++
			if p.X >= width {
				p.X = 0
				p.Y++
			}
		}
	}
	return append(dst, cs...)
}

func (p *Parser) logf(mess string, args ...interface{}) {
	if p.Logf != nil {
		p.Logf(mess, args...)
	}
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return 10 + c - 'a', true
	case 'A' <= c && c <= 'F':
		return 10 + c - 'A', true
	}
	return 0, false
}
