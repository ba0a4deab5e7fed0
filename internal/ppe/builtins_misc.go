package ppe

import (
	"strings"
	"time"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

// ticksPerSecond is the legacy timer rate DELAY counts in.
const ticksPerSecond = 18.2

func registerMiscBuiltins() {
	register(
		Builtin{Name: "DELAY", MinArgs: 1, MaxArgs: 1, Blocks: true, Proc: delay},
		Builtin{Name: "TOKENIZE", MinArgs: 1, MaxArgs: 1, Proc: tokenize},
		Builtin{Name: "GETTOKEN", MinArgs: 1, MaxArgs: 1, Proc: gettoken},
		Builtin{Name: "INC", MinArgs: 1, MaxArgs: 1, Proc: bumpWith(value.OpAdd)},
		Builtin{Name: "DEC", MinArgs: 1, MaxArgs: 1, Proc: bumpWith(value.OpSub)},
		Builtin{Name: "LOG", MinArgs: 1, MaxArgs: 2, Proc: logMessage},
		Builtin{Name: "STOP", Proc: stop},
	)
}

func ticks(n int) time.Duration {
	return time.Duration(float64(n) * float64(time.Second) / ticksPerSecond)
}

func delay(it *Interpreter, args []ast.Expression) error {
	n := it.evalInt(args[0])
	if n <= 0 {
		return nil
	}
	timer := time.NewTimer(ticks(n))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-it.runCtx.Done():
		return it.runCtx.Err()
	}
}

// splitTokens splits on spaces and semicolons, dropping empty tokens.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';'
	})
}

func tokenize(it *Interpreter, args []ast.Expression) error {
	it.tokens = splitTokens(it.evalString(args[0]))
	return nil
}

func (it *Interpreter) nextToken() string {
	if len(it.tokens) == 0 {
		return ""
	}
	tok := it.tokens[0]
	it.tokens = it.tokens[1:]
	return tok
}

func gettoken(it *Interpreter, args []ast.Expression) error {
	ref := it.varRef(args[0])
	it.assign(ref, value.String(it.nextToken()))
	return nil
}

func bumpWith(op value.Op) func(*Interpreter, []ast.Expression) error {
	return func(it *Interpreter, args []ast.Expression) error {
		ref := it.varRef(args[0])
		cur := it.eval(args[0])
		v, err := value.Binary(op, cur, value.Integer(1))
		if err != nil {
			return err
		}
		it.assign(ref, v)
		return nil
	}
}

func logMessage(it *Interpreter, args []ast.Expression) error {
	message := it.evalString(args[0])
	if len(args) > 1 && it.evalBool(args[1]) {
		message = strings.TrimLeft(message, " ")
	}
	it.logf("#", "log: %v", message)
	if it.eventf != nil {
		it.eventf("%v", message)
	}
	return nil
}

func stop(it *Interpreter, _ []ast.Expression) error {
	return errStop
}
