package vt

import (
	"io"
	"sync"

	"github.com/jcorbin/ppedoor/internal/flushio"
	"github.com/jcorbin/ppedoor/internal/runeio"
)

// Terminal renders program output through a Parser onto a stream, flushing
// after every write so that prompts reach the remote side before a read.
type Terminal struct {
	mu  sync.Mutex
	p   Parser
	out *flushio.Tee
	buf []byte
	key []byte
}

// NewTerminal creates a terminal writing to w; any copies, like a session
// capture, receive the same rendered bytes.
func NewTerminal(w io.Writer, copies ...io.Writer) *Terminal {
	return &Terminal{out: flushio.NewTee(w, copies...)}
}

// SetLogf sets the destination for transcoder notices and dropped copies.
func (term *Terminal) SetLogf(logfn func(mess string, args ...interface{})) {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.p.Logf = logfn
	term.out.Dropped = nil
	if logfn != nil {
		term.out.Dropped = func(err error) { logfn("%v", err) }
	}
}

// SetWidth sets the column count the cursor wraps at.
func (term *Terminal) SetWidth(width int) {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.p.Width = width
}

// Cursor returns the tracked cursor position.
func (term *Terminal) Cursor() (x, y int) {
	term.mu.Lock()
	defer term.mu.Unlock()
	return term.p.X, term.p.Y
}

// Attr returns the current attribute byte.
func (term *Terminal) Attr() byte {
	term.mu.Lock()
	defer term.mu.Unlock()
	return term.p.Attr
}

// Print transcodes and writes s.
func (term *Terminal) Print(s string) error {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.buf = term.p.Transcode(term.buf[:0], []byte(s))
	return term.write()
}

// WriteRaw transcodes and writes data.
func (term *Terminal) WriteRaw(data []byte) error {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.buf = term.p.Transcode(term.buf[:0], data)
	return term.write()
}

// Write implements io.Writer by way of WriteRaw.
func (term *Terminal) Write(p []byte) (int, error) {
	if err := term.WriteRaw(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetColor writes the sequence for attr.
func (term *Terminal) SetColor(attr byte) error {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.buf = term.p.SetColor(term.buf[:0], attr)
	return term.write()
}

// Echo writes typed keys back literally; @ codes in them are not expanded.
func (term *Terminal) Echo(keys ...rune) error {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.key = term.key[:0]
	for _, r := range keys {
		term.key = runeio.AppendKey(term.key, r)
	}
	term.buf = term.p.emit(term.buf[:0], term.key...)
	return term.write()
}

// GotoXY moves the cursor to 0-based x and y.
func (term *Terminal) GotoXY(x, y int) error {
	term.mu.Lock()
	defer term.mu.Unlock()
	term.buf = term.p.GotoXY(term.buf[:0], x, y)
	return term.write()
}

func (term *Terminal) write() error {
	if len(term.buf) > 0 {
		if _, err := term.out.Write(term.buf); err != nil {
			return err
		}
	}
	return term.out.Flush()
}
