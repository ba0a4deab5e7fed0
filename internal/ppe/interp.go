// Package ppe runs a loaded PPE program against a terminal session.
//
// A run walks the main block with an explicit statement cursor, pushing a new
// frame for each user procedure or function call. Labels are resolved per
// frame, GOSUB return points live on the frame that pushed them, and
// identifiers resolve only through the innermost frame. Fatal conditions halt
// the run with an error naming the failing statement; file channel failures
// only set per-channel flags that the program may inspect with FERR.
package ppe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/panicerr"
	"github.com/jcorbin/ppedoor/internal/vt"
)

// ExecutionContext is the terminal session a program talks to.
type ExecutionContext interface {
	Print(s string) error
	WriteRaw(data []byte) error
	GotoXY(x, y int) error
	SetColor(attr byte) error

	// ReadLine blocks until the user ends a line, or the host gives up.
	ReadLine() (string, error)

	// GetChar polls for one pending key without blocking.
	GetChar() (r rune, ok bool, err error)

	InBytes() int
	SendToCom(data string) error
}

// Broadcaster may be implemented by an ExecutionContext to deliver WRUNET
// broadcast messages to another node.
type Broadcaster interface {
	Broadcast(node int, message string) error
}

// Interpreter holds the state of one program run.
type Interpreter struct {
	logging

	prg  *ast.Program
	ec   ExecutionContext
	io   chanio.Provider
	data *icy.BoardData
	diag *vt.Terminal
	now  func() time.Time

	eventf func(mess string, args ...interface{})

	runCtx context.Context
	frames []*frame

	// scratch is the user record loaded by GETUSER, written back by PUTUSER.
	scratch  *icy.User
	mirrorOf int
	node     icy.Node
	tokens   []string
	rng      *rand.Rand
}

// New creates an interpreter for one run of prg. The board data is cloned;
// the run's copy is available from BoardData.
func New(prg *ast.Program, ec ExecutionContext, io chanio.Provider, data *icy.BoardData, opts ...Option) *Interpreter {
	it := &Interpreter{
		prg:      prg,
		ec:       ec,
		io:       io,
		mirrorOf: -1,
	}
	if data != nil {
		it.data = data.Clone()
	} else {
		it.data = &icy.BoardData{}
	}
	defaultOptions.apply(it)
	Options(opts).apply(it)
	return it
}

// Run executes a program to completion; see New.
func Run(ctx context.Context, prg *ast.Program, ec ExecutionContext, io chanio.Provider, data *icy.BoardData, opts ...Option) error {
	return New(prg, ec, io, data, opts...).Run(ctx)
}

// BoardData returns the run's working copy of the board data, for the host to
// commit after Run returns.
func (it *Interpreter) BoardData() *icy.BoardData { return it.data }

// Run executes the main block until it ends, the program STOPs, a fatal error
// occurs, or ctx is done.
func (it *Interpreter) Run(ctx context.Context) error {
	err := panicerr.Recover("ppe", func() error {
		it.run(ctx)
		return nil
	})
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (it *Interpreter) run(ctx context.Context) {
	it.runCtx = ctx
	main := newFrame("main", &it.prg.Main)
	for _, decl := range it.prg.Declarations {
		main.declare(decl)
	}
	it.frames = append(it.frames[:0], main)
	if _, err := it.data.Current(); err == nil {
		it.mirrorUser(main, it.data.CurrentUser)
	}
	it.exec(main)
}

func (it *Interpreter) top() *frame { return it.frames[len(it.frames)-1] }

func (it *Interpreter) exec(fr *frame) {
	if it.logfn != nil && len(it.frames) > 1 {
		defer it.withLogPrefix("  ")()
	}
	for !fr.done() {
		it.haltif(it.runCtx.Err())
		it.step(fr)
	}
}

func (it *Interpreter) step(fr *frame) {
	at := fr.ptr
	stmt := fr.block.Statements[at]
	fr.ptr++
	defer func() {
		if e := recover(); e != nil {
			if he, ok := e.(haltError); ok && !errors.Is(he.error, errStop) {
				var se *StatementError
				if !errors.As(he.error, &se) || se.Frame != fr.name || se.Index != at {
					e = haltError{&StatementError{fr.name, at, stmt, he.error}}
				}
			}
			panic(e)
		}
	}()
	it.logf(">", "%v @%v %v", fr.name, at, stmt)
	it.execute(fr, stmt)
}

func (it *Interpreter) halt(err error) {
	it.logf("!", "halt: %v", err)
	panic(haltError{err})
}

func (it *Interpreter) haltif(err error) {
	if err != nil {
		it.halt(err)
	}
}

type logging struct {
	logfn     func(mess string, args ...interface{})
	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(mark[:1], n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
