package ppe

import (
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/vt"
)

const crlf = "\r\n"

func registerDisplayBuiltins() {
	register(
		Builtin{Name: "PRINT", MaxArgs: -1, Proc: printWith("")},
		Builtin{Name: "PRINTLN", MaxArgs: -1, Proc: printWith(crlf)},
		Builtin{Name: "DISPSTR", MinArgs: 1, MaxArgs: 1, Proc: printWith("")},
		Builtin{Name: "KBDSTUFF", MinArgs: 1, MaxArgs: 1, Proc: printWith("")},
		Builtin{Name: "MPRINT", MaxArgs: -1, Proc: printWith("")},
		Builtin{Name: "MPRINTLN", MaxArgs: -1, Proc: printWith(crlf)},
		Builtin{Name: "SPRINT", MaxArgs: -1, Proc: sprintWith("")},
		Builtin{Name: "SPRINTLN", MaxArgs: -1, Proc: sprintWith(crlf)},
		Builtin{Name: "CLS", Proc: emit(vt.ClearScreen)},
		Builtin{Name: "CLREOL", Proc: emit(vt.ClearEOL)},
		Builtin{Name: "NEWLINE", Proc: emit(crlf)},
		Builtin{Name: "BEEP", Proc: emit(vt.Bell)},
		Builtin{Name: "NEWLINES", MinArgs: 1, MaxArgs: 1, Proc: newlines},
		Builtin{Name: "COLOR", MinArgs: 1, MaxArgs: 1, Proc: color},
		Builtin{Name: "ANSIPOS", MinArgs: 2, MaxArgs: 2, Proc: ansipos},
		Builtin{Name: "DISPFILE", MinArgs: 1, MaxArgs: 2, Proc: dispfile},
		Builtin{Name: "DISPTEXT", MinArgs: 1, MaxArgs: 2, Proc: disptext},
	)
}

func (it *Interpreter) concat(args []ast.Expression) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(it.evalString(arg))
	}
	return sb.String()
}

func printWith(eol string) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		return it.ec.Print(it.concat(args) + eol)
	}
}

func sprintWith(eol string) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		return it.diag.Print(it.concat(args) + eol)
	}
}

func emit(s string) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, _ []ast.Expression) error {
		return it.ec.Print(s)
	}
}

func newlines(it *Interpreter, args []ast.Expression) error {
	if n := it.evalInt(args[0]); n > 0 {
		return it.ec.Print(strings.Repeat(crlf, n))
	}
	return nil
}

func color(it *Interpreter, args []ast.Expression) error {
	return it.ec.SetColor(byte(it.evalInt(args[0])))
}

// ansipos takes 1-based coordinates.
func ansipos(it *Interpreter, args []ast.Expression) error {
	x := it.evalInt(args[0])
	y := it.evalInt(args[1])
	return it.ec.GotoXY(x-1, y-1)
}

func dispfile(it *Interpreter, args []ast.Expression) error {
	name := it.evalString(args[0])
	if len(args) > 1 {
		it.evalInt(args[1])
	}
	data, err := it.io.ReadFile(name)
	if err != nil {
		it.logf("#", "dispfile %q: %v", name, err)
		return it.ec.Print("file error " + name + crlf)
	}
	return it.ec.WriteRaw(data)
}

func disptext(it *Interpreter, args []ast.Expression) error {
	n := it.evalInt(args[0])
	flags := 0
	if len(args) > 1 {
		flags = it.evalInt(args[1])
	}
	text, ok := it.data.Text(n)
	if !ok {
		it.logf("#", "no display text %v", n)
		return nil
	}
	if flags&flagLFBefore != 0 {
		text = crlf + text
	}
	if flags&(flagNewline|flagLFAfter) != 0 {
		text += crlf
	}
	if flags&flagBell != 0 {
		text += vt.Bell
	}
	return it.ec.Print(text)
}
