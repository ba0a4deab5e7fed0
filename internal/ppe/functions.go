package ppe

import (
	"fmt"
	"math/rand"
	"path"
	"strconv"
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/value"
)

// version is what VER reports.
const version = 1540

func registerFunctions() {
	registerFunc(
		BuiltinFunc{Name: "LEN", MinArgs: 1, MaxArgs: 1, Fn: strInt(func(s string) int { return len(s) })},
		BuiltinFunc{Name: "LOWER", MinArgs: 1, MaxArgs: 1, Fn: strStr(strings.ToLower)},
		BuiltinFunc{Name: "UPPER", MinArgs: 1, MaxArgs: 1, Fn: strStr(strings.ToUpper)},
		BuiltinFunc{Name: "LEFT", MinArgs: 2, MaxArgs: 2, Fn: left},
		BuiltinFunc{Name: "RIGHT", MinArgs: 2, MaxArgs: 2, Fn: right},
		BuiltinFunc{Name: "MID", MinArgs: 3, MaxArgs: 3, Fn: mid},
		BuiltinFunc{Name: "INSTR", MinArgs: 2, MaxArgs: 2, Fn: instr},
		BuiltinFunc{Name: "LTRIM", MinArgs: 1, MaxArgs: 2, Fn: trimWith(strings.TrimLeft)},
		BuiltinFunc{Name: "RTRIM", MinArgs: 1, MaxArgs: 2, Fn: trimWith(strings.TrimRight)},
		BuiltinFunc{Name: "TRIM", MinArgs: 1, MaxArgs: 2, Fn: trimWith(strings.Trim)},
		BuiltinFunc{Name: "SPACE", MinArgs: 1, MaxArgs: 1, Fn: space},
		BuiltinFunc{Name: "STRING", MinArgs: 1, MaxArgs: 1, Fn: str},
		BuiltinFunc{Name: "CHR", MinArgs: 1, MaxArgs: 1, Fn: chr},
		BuiltinFunc{Name: "ASC", MinArgs: 1, MaxArgs: 1, Fn: asc},
		BuiltinFunc{Name: "ABS", MinArgs: 1, MaxArgs: 1, Fn: abs},
		BuiltinFunc{Name: "RANDOM", MinArgs: 1, MaxArgs: 1, Fn: random},
		BuiltinFunc{Name: "DATE", Fn: date},
		BuiltinFunc{Name: "TIME", Fn: clock},
		BuiltinFunc{Name: "S2I", MinArgs: 2, MaxArgs: 2, Fn: s2i},
		BuiltinFunc{Name: "I2S", MinArgs: 2, MaxArgs: 2, Fn: i2s},

		BuiltinFunc{Name: "FERR", MinArgs: 1, MaxArgs: 1, Fn: ferr},
		BuiltinFunc{Name: "EXIST", MinArgs: 1, MaxArgs: 1, Fn: exist},
		BuiltinFunc{Name: "FILEINF", MinArgs: 2, MaxArgs: 2, Fn: fileinf},

		BuiltinFunc{Name: "INKEY", Fn: inkey},
		BuiltinFunc{Name: "INBYTES", Fn: inbytes},

		BuiltinFunc{Name: "TOKCOUNT", Fn: tokcount},
		BuiltinFunc{Name: "GETTOKEN", Fn: nexttoken},
		BuiltinFunc{Name: "TOKENSTR", Fn: tokenstr},

		BuiltinFunc{Name: "U_NAME", Fn: textOf(func(it *Interpreter) string { return it.currentUser().Name })},
		BuiltinFunc{Name: "U_CITY", Fn: textOf(func(it *Interpreter) string { return it.currentUser().City })},
		BuiltinFunc{Name: "UN_STAT", Fn: textOf(func(it *Interpreter) string { return it.node.Status })},
		BuiltinFunc{Name: "UN_NAME", Fn: textOf(func(it *Interpreter) string { return it.node.Name })},
		BuiltinFunc{Name: "UN_CITY", Fn: textOf(func(it *Interpreter) string { return it.node.City })},
		BuiltinFunc{Name: "UN_OPER", Fn: textOf(func(it *Interpreter) string { return it.node.Operation })},
		BuiltinFunc{Name: "PCBNODE", Fn: pcbnode},
		BuiltinFunc{Name: "VER", Fn: ver},
		BuiltinFunc{Name: "CURUSER", Fn: curuser},
	)
}

func strInt(f func(string) int) func(*Interpreter, []ast.Expression) (value.Value, error) {
	return func(it *Interpreter, args []ast.Expression) (value.Value, error) {
		return value.Integer(f(it.evalString(args[0]))), nil
	}
}

func strStr(f func(string) string) func(*Interpreter, []ast.Expression) (value.Value, error) {
	return func(it *Interpreter, args []ast.Expression) (value.Value, error) {
		return value.String(f(it.evalString(args[0]))), nil
	}
}

// maxStringLen bounds the strings LEFT, RIGHT, MID and SPACE build.
const maxStringLen = 1 << 16

func checkLen(n int) error {
	if n > maxStringLen {
		return fmt.Errorf("%w: %v > %v", ErrStringTooLong, n, maxStringLen)
	}
	return nil
}

// substr returns n bytes of s starting at 1-based pos, padding with spaces
// where the range falls outside s.
func substr(s string, pos, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	if err := checkLen(n); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := pos; i < pos+n; i++ {
		if i >= 1 && i <= len(s) {
			sb.WriteByte(s[i-1])
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String(), nil
}

func substrValue(s string, pos, n int) (value.Value, error) {
	sub, err := substr(s, pos, n)
	if err != nil {
		return nil, err
	}
	return value.String(sub), nil
}

func left(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := it.evalString(args[0])
	return substrValue(s, 1, it.evalInt(args[1]))
}

func right(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := it.evalString(args[0])
	n := it.evalInt(args[1])
	return substrValue(s, len(s)-n+1, n)
}

func mid(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := it.evalString(args[0])
	return substrValue(s, it.evalInt(args[1]), it.evalInt(args[2]))
}

func instr(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := it.evalString(args[0])
	sub := it.evalString(args[1])
	if sub == "" {
		return value.Integer(0), nil
	}
	return value.Integer(strings.Index(s, sub) + 1), nil
}

func trimWith(trim func(s, cutset string) string) func(*Interpreter, []ast.Expression) (value.Value, error) {
	return func(it *Interpreter, args []ast.Expression) (value.Value, error) {
		s := it.evalString(args[0])
		cutset := " "
		if len(args) > 1 {
			cutset = it.evalString(args[1])
		}
		return value.String(trim(s, cutset)), nil
	}
}

func space(it *Interpreter, args []ast.Expression) (value.Value, error) {
	n := it.evalInt(args[0])
	if n < 0 {
		n = 0
	}
	if err := checkLen(n); err != nil {
		return nil, err
	}
	return value.String(strings.Repeat(" ", n)), nil
}

func str(it *Interpreter, args []ast.Expression) (value.Value, error) {
	return value.String(it.evalString(args[0])), nil
}

func chr(it *Interpreter, args []ast.Expression) (value.Value, error) {
	n := it.evalInt(args[0])
	if n <= 0 || n > 0xff {
		return value.String(""), nil
	}
	return value.String([]byte{byte(n)}), nil
}

func asc(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := it.evalString(args[0])
	if s == "" {
		return value.Integer(0), nil
	}
	return value.Integer(s[0]), nil
}

func abs(it *Interpreter, args []ast.Expression) (value.Value, error) {
	v := it.eval(args[0])
	if v.Type().IsFloat() {
		f, err := value.Float64(v)
		if err != nil {
			return nil, err
		}
		if f < 0 {
			f = -f
		}
		return value.Convert(value.Double(f), v.Type())
	}
	n, err := value.Int64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = -n
	}
	return value.Integer(n), nil
}

// random returns a number in 0..limit inclusive.
func random(it *Interpreter, args []ast.Expression) (value.Value, error) {
	limit := it.evalInt(args[0])
	if limit <= 0 {
		return value.Integer(0), nil
	}
	if it.rng == nil {
		it.rng = rand.New(rand.NewSource(it.now().UnixNano()))
	}
	return value.Integer(it.rng.Intn(limit + 1)), nil
}

func date(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.DateOf(it.now()), nil
}

func clock(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.TimeOf(it.now()), nil
}

func s2i(it *Interpreter, args []ast.Expression) (value.Value, error) {
	s := strings.TrimSpace(it.evalString(args[0]))
	base := it.evalInt(args[1])
	if base < 2 || base > 36 {
		return value.Integer(0), nil
	}
	n, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return value.Integer(0), nil
	}
	return value.Integer(n), nil
}

func i2s(it *Interpreter, args []ast.Expression) (value.Value, error) {
	n := it.evalInt(args[0])
	base := it.evalInt(args[1])
	if base < 2 || base > 36 {
		return value.String(""), nil
	}
	return value.String(strings.ToUpper(strconv.FormatInt(int64(n), base))), nil
}

func ferr(it *Interpreter, args []ast.Expression) (value.Value, error) {
	ch := it.evalInt(args[0])
	if err := chanio.CheckChannel(ch); err != nil {
		return nil, err
	}
	return value.Boolean(it.io.Err(ch)), nil
}

func exist(it *Interpreter, args []ast.Expression) (value.Value, error) {
	return value.Boolean(it.io.Exists(it.evalString(args[0]))), nil
}

// File information items.
const (
	infoExists = iota + 1
	infoDate
	infoTime
	infoSize
	infoAttr
	infoDrive
	infoPath
	infoBase
	infoExt
)

func fileinf(it *Interpreter, args []ast.Expression) (value.Value, error) {
	name := it.evalString(args[0])
	item := it.evalInt(args[1])
	clean := chanio.CleanName(name)

	switch item {
	case infoExists:
		return value.Boolean(it.io.Exists(name)), nil
	case infoDate, infoTime:
		mod, err := it.io.ModTime(name)
		if err != nil {
			if item == infoDate {
				return value.Date(0), nil
			}
			return value.Time(0), nil
		}
		if item == infoDate {
			return value.DateOf(mod), nil
		}
		return value.TimeOf(mod), nil
	case infoSize:
		size, err := it.io.Size(name)
		if err != nil {
			return value.Integer(0), nil
		}
		return value.Integer(size), nil
	case infoAttr:
		return value.Integer(0), nil
	case infoDrive:
		if len(name) >= 2 && name[1] == ':' {
			return value.String(strings.ToUpper(name[:2])), nil
		}
		return value.String(""), nil
	case infoPath:
		dir := path.Dir(clean)
		if dir == "." {
			dir = ""
		}
		return value.String(dir), nil
	case infoBase:
		base := path.Base(clean)
		return value.String(strings.TrimSuffix(base, path.Ext(base))), nil
	case infoExt:
		return value.String(path.Ext(clean)), nil
	}
	return nil, fmt.Errorf("FILEINF item %v out of range %v..%v", item, infoExists, infoExt)
}

func inkey(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	r, ok, err := it.ec.GetChar()
	if err != nil || !ok {
		return value.String(""), err
	}
	return value.String(string(r)), nil
}

func inbytes(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.Integer(it.ec.InBytes()), nil
}

func tokcount(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.Integer(len(it.tokens)), nil
}

func nexttoken(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.String(it.nextToken()), nil
}

func tokenstr(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	s := strings.Join(it.tokens, " ")
	it.tokens = nil
	return value.String(s), nil
}

func (it *Interpreter) currentUser() *icy.User {
	u, err := it.data.Current()
	it.haltif(err)
	return u
}

func textOf(f func(it *Interpreter) string) func(*Interpreter, []ast.Expression) (value.Value, error) {
	return func(it *Interpreter, _ []ast.Expression) (value.Value, error) {
		return value.String(f(it)), nil
	}
}

func pcbnode(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	return value.Integer(it.data.Board.Node), nil
}

func ver(*Interpreter, []ast.Expression) (value.Value, error) {
	return value.Integer(version), nil
}

// curuser returns the 1-based number of the user record the U_* variables
// mirror, or -1.
func curuser(it *Interpreter, _ []ast.Expression) (value.Value, error) {
	if it.mirrorOf < 0 {
		return value.Integer(-1), nil
	}
	return value.Integer(it.mirrorOf + 1), nil
}
