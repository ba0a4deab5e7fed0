package ppe

import (
	"fmt"
	"io"
	"sort"

	"github.com/jcorbin/ppedoor/internal/chanio"
)

// Dump writes the interpreter's frames, variables and file channel flags to
// w; hosts use it to explain a failed run.
func (it *Interpreter) Dump(w io.Writer) {
	dump := dumper{it: it, out: w}
	dump.dump()
}

type dumper struct {
	it  *Interpreter
	out io.Writer
}

func (dump dumper) dump() {
	fmt.Fprintf(dump.out, "# Interpreter Dump\n")
	if dump.it.mirrorOf >= 0 {
		fmt.Fprintf(dump.out, "  user: %v\n", dump.it.mirrorOf)
	}
	if len(dump.it.tokens) > 0 {
		fmt.Fprintf(dump.out, "  tokens: %q\n", dump.it.tokens)
	}
	dump.dumpChannels()
	for i := len(dump.it.frames) - 1; i >= 0; i-- {
		dump.dumpFrame(dump.it.frames[i])
	}
}

func (dump dumper) dumpChannels() {
	if dump.it.io == nil {
		return
	}
	var flagged []int
	for ch := 0; ch < chanio.Channels; ch++ {
		if dump.it.io.Err(ch) {
			flagged = append(flagged, ch)
		}
	}
	if len(flagged) > 0 {
		fmt.Fprintf(dump.out, "  ferr: %v\n", flagged)
	}
}

func (dump dumper) dumpFrame(fr *frame) {
	fmt.Fprintf(dump.out, "# Frame %v\n", fr.name)
	switch {
	case fr.ptr == terminated:
		fmt.Fprintf(dump.out, "  ptr: END\n")
	case fr.ptr > 0 && fr.ptr <= len(fr.block.Statements):
		fmt.Fprintf(dump.out, "  ptr: %v after %v\n", fr.ptr, fr.block.Statements[fr.ptr-1])
	default:
		fmt.Fprintf(dump.out, "  ptr: %v\n", fr.ptr)
	}
	if len(fr.gosubs) > 0 {
		fmt.Fprintf(dump.out, "  gosubs: %v\n", fr.gosubs)
	}

	names := make([]string, 0, len(fr.vars))
	for name := range fr.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := fr.vars[name]
		fmt.Fprintf(dump.out, "  %v %v = %v\n", v.Type(), name, v)
	}
}
