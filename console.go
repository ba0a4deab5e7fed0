package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/ppe"
	"github.com/jcorbin/ppedoor/internal/vt"
)

var errInterrupted = errors.New("interrupted")

// lineReader reads one line of local input; prompt is the text already
// shown on the current line.
type lineReader interface {
	readLine(prompt string) (string, error)
}

type linerReader struct{ *liner.State }

func (lr linerReader) readLine(prompt string) (string, error) {
	line, err := lr.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errInterrupted
	}
	if err == nil && line != "" {
		lr.AppendHistory(line)
	}
	return line, err
}

type plainReader struct{ *bufio.Reader }

func (pr plainReader) readLine(string) (string, error) {
	line, err := pr.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// console is a session on the local terminal. SendToCom input is queued
// ahead of anything typed.
type console struct {
	*vt.Terminal
	in      lineReader
	tail    *lineTail
	pending []rune
}

func newConsole(in lineReader, out io.Writer) *console {
	tail := &lineTail{}
	return &console{
		Terminal: vt.NewTerminal(out, tail),
		in:       in,
		tail:     tail,
	}
}

// ReadLine takes a queued line if one was stuffed whole, otherwise reads a
// line of local input after any queued partial one.
func (con *console) ReadLine() (string, error) {
	for i, r := range con.pending {
		if r == '\r' || r == '\n' {
			line := string(con.pending[:i])
			con.pending = con.pending[i+1:]
			return line, nil
		}
	}
	prefix := string(con.pending)
	con.pending = nil
	line, err := con.in.readLine(con.tail.String())
	con.tail.Reset()
	return prefix + line, err
}

// GetChar only sees queued input; the local console reads whole lines.
func (con *console) GetChar() (rune, bool, error) {
	if len(con.pending) == 0 {
		return 0, false, nil
	}
	r := con.pending[0]
	con.pending = con.pending[1:]
	return r, true, nil
}

func (con *console) InBytes() int { return len(con.pending) }

func (con *console) SendToCom(data string) error {
	con.pending = append(con.pending, []rune(data)...)
	return nil
}

// lineTail keeps the printable text written since the last line break, so
// that line editing can redraw a prompt the program printed.
type lineTail struct {
	buf    []byte
	escape bool
}

func (lt *lineTail) Write(p []byte) (int, error) {
	for _, c := range p {
		switch {
		case lt.escape:
			lt.escape = !('@' <= c && c <= '~' && c != '[')
		case c == 0x1b:
			lt.escape = true
		case c == '\r' || c == '\n':
			lt.buf = lt.buf[:0]
		case c == '\b':
			if len(lt.buf) > 0 {
				lt.buf = lt.buf[:len(lt.buf)-1]
			}
		case c >= ' ':
			lt.buf = append(lt.buf, c)
		}
	}
	return len(p), nil
}

func (lt *lineTail) String() string { return string(lt.buf) }
func (lt *lineTail) Reset()         { lt.buf = lt.buf[:0] }

// localInput picks line editing when stdin is a terminal, and plain reads
// otherwise; the returned close function restores the terminal.
func localInput() (lineReader, func()) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return plainReader{bufio.NewReader(os.Stdin)}, func() {}
	}
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return linerReader{state}, func() { state.Close() }
}

// consoleWidth returns the stdout terminal width, or 80.
func consoleWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// runLocal runs prg once on the local terminal, against the board directory
// or, with memio, an empty in-memory file store.
func runLocal(ctx context.Context, prg *ast.Program, con *console, cfg config, memio bool, opts ...ppe.Option) (*ppe.Interpreter, error) {
	var files chanio.Provider
	if memio {
		files = chanio.NewMemory(nil)
	} else {
		disk := chanio.NewDisk(cfg.Root)
		defer disk.CloseAll()
		files = disk
	}
	data := cfg.Board.Clone()
	if data.Board.Node == 0 {
		data.Board.Node = 1
	}
	if len(data.Nodes) == 0 {
		data.Nodes = []icy.Node{{Status: icy.NodeInDoor, Operation: "Local session"}}
	}
	it := ppe.New(prg, con, files, data, opts...)
	return it, it.Run(ctx)
}
