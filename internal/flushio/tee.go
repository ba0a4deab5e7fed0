package flushio

import (
	"fmt"
	"io"
)

// Tee writes to a primary stream and to any number of copies, like a session
// capture file. A copy that fails is dropped and reported to Dropped; only
// primary failures are returned to the writer.
type Tee struct {
	Primary WriteFlusher
	Copies  []WriteFlusher
	Dropped func(err error)
}

// NewTee creates a Tee writing to w and copying to every non-nil copy.
func NewTee(w io.Writer, copies ...io.Writer) *Tee {
	tee := &Tee{Primary: NewWriteFlusher(w)}
	for _, c := range copies {
		if c != nil {
			tee.Copies = append(tee.Copies, NewWriteFlusher(c))
		}
	}
	return tee
}

func (tee *Tee) Write(p []byte) (int, error) {
	n, err := tee.Primary.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	for i := 0; i < len(tee.Copies); i++ {
		if m, cerr := tee.Copies[i].Write(p); cerr != nil || m != len(p) {
			if cerr == nil {
				cerr = io.ErrShortWrite
			}
			tee.drop(i, cerr)
			i--
		}
	}
	return n, err
}

// Flush flushes the primary and every copy.
func (tee *Tee) Flush() error {
	err := tee.Primary.Flush()
	for i := 0; i < len(tee.Copies); i++ {
		if cerr := tee.Copies[i].Flush(); cerr != nil {
			tee.drop(i, cerr)
			i--
		}
	}
	return err
}

func (tee *Tee) drop(i int, err error) {
	tee.Copies = append(tee.Copies[:i], tee.Copies[i+1:]...)
	if tee.Dropped != nil {
		tee.Dropped(fmt.Errorf("dropped output copy: %w", err))
	}
}
