// Package flushio provides flush-able writers for session output: writes to
// a remote terminal are buffered and pushed out whole, once per rendered
// chunk.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard is a WriteFlusher that drops everything.
var Discard WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher wraps w for buffered writing. Writers that already flush are
// returned as is; in-memory buffers and io.Discard get a no-op Flush; anything
// else, like a network connection or file, is wrapped in a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case WriteFlusher:
		return impl
	case inMemory:
		return nopFlusher{w}
	}
	if w == io.Discard {
		return Discard
	}
	return bufio.NewWriter(w)
}

// inMemory matches buffers like bytes.Buffer and strings.Builder.
type inMemory interface {
	io.Writer
	Cap() int
	Len() int
	Grow(n int)
	Reset()
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }
