package ppe

import (
	"strconv"
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
	"github.com/jcorbin/ppedoor/internal/vt"
)

const waitPrompt = "Press (Enter) to continue?"

func registerInputBuiltins() {
	register(
		Builtin{Name: "INPUT", MinArgs: 2, MaxArgs: 2, Blocks: true, Proc: input},
		Builtin{Name: "INPUTSTR", MinArgs: 6, MaxArgs: 6, Blocks: true, Proc: inputstr},
		Builtin{Name: "INPUTTEXT", MinArgs: 4, MaxArgs: 4, Blocks: true, Proc: inputtext},
		Builtin{Name: "INPUTINT", MinArgs: 4, MaxArgs: 4, Blocks: true, Proc: inputint},
		Builtin{Name: "INPUTYN", MinArgs: 3, MaxArgs: 3, Blocks: true, Proc: inputyn},
		Builtin{Name: "WAIT", Blocks: true, Proc: wait},
		Builtin{Name: "KBDSTRING", MinArgs: 1, MaxArgs: 1, Proc: kbdstring},
	)
}

// prompt describes one input field.
type prompt struct {
	text   string
	color  int
	length int
	valid  string
	flags  int
}

// read shows the prompt and reads one line, applying the field's limits and
// flags.
func (it *Interpreter) read(p prompt) string {
	if p.flags&flagLFBefore != 0 {
		it.haltif(it.ec.Print(crlf))
	}
	if p.color > 0 {
		it.haltif(it.ec.SetColor(byte(p.color)))
	}
	it.haltif(it.ec.Print(p.text))
	if p.flags&flagBell != 0 {
		it.haltif(it.ec.Print(vt.Bell))
	}

	line, err := it.ec.ReadLine()
	it.haltif(err)

	if p.valid != "" {
		line = strings.Map(func(r rune) rune {
			if strings.ContainsRune(p.valid, r) {
				return r
			}
			return -1
		}, line)
	}
	if p.length > 0 && len(line) > p.length {
		line = line[:p.length]
	}
	if p.flags&flagUpcase != 0 {
		line = strings.ToUpper(line)
	}

	switch {
	case p.flags&flagEraseLine != 0:
		it.haltif(it.ec.Print("\r" + vt.ClearEOL))
	case p.flags&(flagNewline|flagLFAfter) != 0:
		it.haltif(it.ec.Print(crlf))
	}
	return line
}

func input(it *Interpreter, args []ast.Expression) error {
	p := prompt{text: it.evalString(args[0])}
	ref := it.varRef(args[1])
	it.assign(ref, value.String(it.read(p)))
	return nil
}

func inputstr(it *Interpreter, args []ast.Expression) error {
	p := prompt{text: it.evalString(args[0])}
	ref := it.varRef(args[1])
	p.color = it.evalInt(args[2])
	p.length = it.evalInt(args[3])
	p.valid = it.evalString(args[4])
	p.flags = it.evalInt(args[5])
	line := it.read(p)
	if p.flags&flagYesNo != 0 {
		line = yesNo(line)
	}
	it.assign(ref, value.String(line))
	return nil
}

func inputtext(it *Interpreter, args []ast.Expression) error {
	p := prompt{text: it.evalString(args[0])}
	ref := it.varRef(args[1])
	p.color = it.evalInt(args[2])
	p.length = it.evalInt(args[3])
	it.assign(ref, value.String(it.read(p)))
	return nil
}

func inputint(it *Interpreter, args []ast.Expression) error {
	p := prompt{text: it.evalString(args[0]), valid: "-0123456789"}
	ref := it.varRef(args[1])
	p.color = it.evalInt(args[2])
	p.flags = it.evalInt(args[3])
	n, err := strconv.Atoi(strings.TrimSpace(it.read(p)))
	if err != nil {
		n = 0
	}
	it.assign(ref, value.Integer(n))
	return nil
}

func inputyn(it *Interpreter, args []ast.Expression) error {
	p := prompt{text: it.evalString(args[0])}
	ref := it.varRef(args[1])
	p.color = it.evalInt(args[2])
	it.assign(ref, value.String(yesNo(it.read(p))))
	return nil
}

func yesNo(line string) string {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "Y") {
		return "Y"
	}
	return "N"
}

func wait(it *Interpreter, _ []ast.Expression) error {
	it.read(prompt{text: waitPrompt, flags: flagNewline})
	return nil
}

func kbdstring(it *Interpreter, args []ast.Expression) error {
	return it.ec.SendToCom(it.evalString(args[0]))
}
