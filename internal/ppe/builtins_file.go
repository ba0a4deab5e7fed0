package ppe

import (
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/value"
)

// closeSentinel is the channel number FCLOSE ignores.
const closeSentinel = -1

func registerFileBuiltins() {
	register(
		Builtin{Name: "FOPEN", MinArgs: 4, MaxArgs: 4, Mutates: true, Proc: openWith(chanio.Provider.Open)},
		Builtin{Name: "FCREATE", MinArgs: 4, MaxArgs: 4, Mutates: true, Proc: openWith(chanio.Provider.Create)},
		Builtin{Name: "FAPPEND", MinArgs: 4, MaxArgs: 4, Mutates: true, Proc: openWith(chanio.Provider.Append)},
		Builtin{Name: "FCLOSE", MinArgs: 1, MaxArgs: 1, Mutates: true, Proc: fclose},
		Builtin{Name: "FCLOSEALL", Mutates: true, Proc: fcloseAll},
		Builtin{Name: "FGET", MinArgs: 2, MaxArgs: 2, Proc: fget},
		Builtin{Name: "FPUT", MinArgs: 1, MaxArgs: -1, Mutates: true, Proc: fputWith("")},
		Builtin{Name: "FPUTLN", MinArgs: 1, MaxArgs: -1, Mutates: true, Proc: fputWith("\r\n")},
		Builtin{Name: "FREWIND", MinArgs: 1, MaxArgs: 1, Proc: frewind},
		Builtin{Name: "DELETE", MinArgs: 1, MaxArgs: 1, Mutates: true, Proc: fileOp(func(io chanio.Provider, names []string) error {
			return io.Delete(names[0])
		})},
		Builtin{Name: "RENAME", MinArgs: 2, MaxArgs: 2, Mutates: true, Proc: fileOp(func(io chanio.Provider, names []string) error {
			return io.Rename(names[0], names[1])
		})},
		Builtin{Name: "COPY", MinArgs: 2, MaxArgs: 2, Mutates: true, Proc: fileOp(func(io chanio.Provider, names []string) error {
			return io.Copy(names[0], names[1])
		})},
	)
}

func (it *Interpreter) channel(expr ast.Expression) int {
	ch := it.evalInt(expr)
	it.haltif(chanio.CheckChannel(ch))
	return ch
}

func openWith(open func(chanio.Provider, int, string, int, int) error) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		ch := it.channel(args[0])
		name := it.evalString(args[1])
		am := it.evalInt(args[2])
		sm := it.evalInt(args[3])
		if err := open(it.io, ch, name, am, sm); err != nil {
			return err
		}
		if it.io.Err(ch) {
			it.logf("#", "channel %v: open %q failed", ch, name)
		}
		return nil
	}
}

func fclose(it *Interpreter, args []ast.Expression) error {
	ch := it.evalInt(args[0])
	if ch == closeSentinel {
		return nil
	}
	it.haltif(chanio.CheckChannel(ch))
	return it.io.Close(ch)
}

func fcloseAll(it *Interpreter, _ []ast.Expression) error {
	for ch := 0; ch < chanio.Channels; ch++ {
		if err := it.io.Close(ch); err != nil {
			return err
		}
	}
	return nil
}

func fget(it *Interpreter, args []ast.Expression) error {
	ch := it.channel(args[0])
	ref := it.varRef(args[1])
	line, err := it.io.GetLine(ch)
	if err != nil {
		return err
	}
	it.assign(ref, value.String(line))
	return nil
}

func fputWith(eol string) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		ch := it.channel(args[0])
		var sb strings.Builder
		for _, arg := range args[1:] {
			sb.WriteString(it.evalString(arg))
		}
		sb.WriteString(eol)
		return it.io.Put(ch, sb.String())
	}
}

func frewind(it *Interpreter, args []ast.Expression) error {
	return it.io.Rewind(it.channel(args[0]))
}

// fileOp runs a whole-file operation; failures are logged, not fatal.
func fileOp(op func(io chanio.Provider, names []string) error) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		names := make([]string, len(args))
		for i, arg := range args {
			names[i] = it.evalString(arg)
		}
		if err := op(it.io, names); err != nil {
			it.logf("#", "file operation failed: %v", err)
		}
		return nil
	}
}
