package ppe

import (
	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

func (it *Interpreter) eval(expr ast.Expression) value.Value {
	switch expr := expr.(type) {
	case ast.Const:
		if expr.Value == nil {
			return value.String("")
		}
		return expr.Value

	case ast.Identifier:
		return it.lookup(expr.Name)

	case ast.Unary:
		v, err := value.Unary(expr.Op, it.eval(expr.Expr))
		it.haltif(err)
		return v

	case ast.Binary:
		v, err := value.Binary(expr.Op, it.eval(expr.Left), it.eval(expr.Right))
		it.haltif(err)
		return v

	case ast.FunctionCall:
		if impl := it.prg.Function(expr.Name); impl != nil {
			return it.invoke(impl, expr.Args, true)
		}
		return it.callFunction(expr.Name, expr.Args)

	case ast.ArrayElement:
		arr := it.array(it.top(), varKey(expr.Name))
		v, err := arr.Get(it.indices(expr.Index)...)
		it.haltif(err)
		return v
	}
	it.halt(UnsupportedExpressionError{expr})
	return nil
}

// lookup resolves a name through the innermost frame, then the predefined
// constants, then zero argument built-in functions.
func (it *Interpreter) lookup(name string) value.Value {
	fr := it.top()
	key := varKey(name)
	if v := fr.vars[key]; v != nil {
		return v
	}
	if d, declared := fr.decls[key]; declared {
		if len(d.dims) > 0 {
			return it.array(fr, key)
		}
		return value.Default(d.typ)
	}
	if v, ok := constants[key]; ok {
		return v
	}
	if fn, ok := functions[key]; ok && fn.MinArgs == 0 {
		return it.callFunction(name, nil)
	}
	it.halt(UndefinedVariableError(name))
	return nil
}

func (it *Interpreter) evalInt(expr ast.Expression) int {
	n, err := value.Int64(it.eval(expr))
	it.haltif(err)
	return int(n)
}

func (it *Interpreter) evalString(expr ast.Expression) string {
	v := it.eval(expr)
	if _, isArray := v.(*value.Array); isArray {
		it.halt(value.ErrArrayValue)
	}
	return v.String()
}

func (it *Interpreter) evalBool(expr ast.Expression) bool {
	b, err := value.Truthy(it.eval(expr))
	it.haltif(err)
	return b
}

// varRef returns the variable an output argument names.
func (it *Interpreter) varRef(expr ast.Expression) ast.VarRef {
	switch expr := expr.(type) {
	case ast.Identifier:
		return ast.VarRef{Name: expr.Name}
	case ast.ArrayElement:
		return ast.VarRef{Name: expr.Name, Index: expr.Index}
	}
	it.halt(ErrNotVariable)
	return ast.VarRef{}
}

// UnsupportedExpressionError reports an expression node the evaluator does
// not know.
type UnsupportedExpressionError struct{ Expr ast.Expression }

func (err UnsupportedExpressionError) Error() string {
	return "unsupported expression " + err.Expr.String()
}

// Predefined constants, including the INPUTSTR flag bits and file modes.
const (
	flagDefs      = 0x0000
	flagEchoDots  = 0x0001
	flagFieldLen  = 0x0002
	flagGuide     = 0x0004
	flagUpcase    = 0x0008
	flagStacked   = 0x0010
	flagEraseLine = 0x0020
	flagNewline   = 0x0040
	flagLFBefore  = 0x0080
	flagLFAfter   = 0x0100
	flagWordWrap  = 0x0200
	flagNoClear   = 0x0400
	flagBell      = 0x0800
	flagHighASCII = 0x1000
	flagAuto      = 0x2000
	flagYesNo     = 0x4000
	flagLogIt     = 0x8000
	flagLogLeft   = 0x10000
)

var constants = map[string]value.Value{
	"TRUE":      value.Boolean(true),
	"FALSE":     value.Boolean(false),
	"O_RD":      value.Integer(0),
	"O_WR":      value.Integer(1),
	"O_RW":      value.Integer(2),
	"S_DN":      value.Integer(0),
	"S_DR":      value.Integer(1),
	"S_DW":      value.Integer(2),
	"S_DB":      value.Integer(3),
	"DEFS":      value.Integer(flagDefs),
	"ECHODOTS":  value.Integer(flagEchoDots),
	"FIELDLEN":  value.Integer(flagFieldLen),
	"GUIDE":     value.Integer(flagGuide),
	"UPCASE":    value.Integer(flagUpcase),
	"STACKED":   value.Integer(flagStacked),
	"ERASELINE": value.Integer(flagEraseLine),
	"NEWLINE":   value.Integer(flagNewline),
	"LFBEFORE":  value.Integer(flagLFBefore),
	"LFAFTER":   value.Integer(flagLFAfter),
	"WORDWRAP":  value.Integer(flagWordWrap),
	"NOCLEAR":   value.Integer(flagNoClear),
	"BELL":      value.Integer(flagBell),
	"HIGHASCII": value.Integer(flagHighASCII),
	"AUTO":      value.Integer(flagAuto),
	"YESNO":     value.Integer(flagYesNo),
	"LOGIT":     value.Integer(flagLogIt),
	"LOGITLEFT": value.Integer(flagLogLeft),
}
