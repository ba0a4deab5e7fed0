package runeio

import (
	"bufio"
	"io"
)

// Telnet command bytes that KeyReader understands.
const (
	iac  = 0xff
	se   = 0xf0
	sb   = 0xfa
	will = 0xfb
	dont = 0xfe
)

// KeyReader decodes the keys sent by a remote terminal. Every byte is one
// key: legacy terminals send code page bytes, not UTF-8. Telnet commands are
// dropped, and the CR NUL and CR LF line endings collapse into a single CR.
type KeyReader struct {
	rd     *bufio.Reader
	lastCR bool
}

// NewKeyReader creates a key reader around r.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{rd: bufio.NewReader(r)}
}

// ReadKey returns the next key.
func (kr *KeyReader) ReadKey() (rune, error) {
	for {
		c, err := kr.rd.ReadByte()
		if err != nil {
			return 0, err
		}

		if c == iac {
			if lit, err := kr.command(); err != nil {
				return 0, err
			} else if !lit {
				continue
			}
		}

		if kr.lastCR {
			kr.lastCR = false
			if c == 0 || c == '\n' {
				continue
			}
		}
		kr.lastCR = c == '\r'
		return rune(c), nil
	}
}

// Buffered returns the number of bytes read from the stream but not yet
// decoded.
func (kr *KeyReader) Buffered() int { return kr.rd.Buffered() }

// command skips a telnet command, returning true when it was an escaped
// literal 0xff byte.
func (kr *KeyReader) command() (bool, error) {
	c, err := kr.rd.ReadByte()
	if err != nil {
		return false, err
	}
	switch {
	case c == iac:
		return true, nil
	case will <= c && c <= dont:
		_, err = kr.rd.ReadByte()
	case c == sb:
		err = kr.skipSubnegotiation()
	}
	return false, err
}

func (kr *KeyReader) skipSubnegotiation() error {
	for {
		c, err := kr.rd.ReadByte()
		if err != nil {
			return err
		}
		if c != iac {
			continue
		}
		if c, err = kr.rd.ReadByte(); err != nil {
			return err
		} else if c == se {
			return nil
		}
	}
}
