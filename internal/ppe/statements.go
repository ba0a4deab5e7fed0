package ppe

import (
	"strconv"
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

func (it *Interpreter) execute(fr *frame, stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case ast.Comment, ast.Label:

	case ast.Let:
		it.assign(stmt.Target, it.eval(stmt.Value))

	case ast.Goto:
		fr.jump(stmt.Label)

	case ast.Gosub:
		fr.gosub(stmt.Label)

	case ast.Return:
		fr.ret()

	case ast.End:
		fr.ptr = terminated

	case ast.If:
		if it.condition(stmt.Cond) {
			it.execute(fr, stmt.Then)
		}

	case ast.Inc:
		it.bump(stmt.Name, value.OpAdd)

	case ast.Dec:
		it.bump(stmt.Name, value.OpSub)

	case ast.Call:
		it.callBuiltin(stmt.Name, stmt.Args)

	case ast.ProcedureCall:
		impl := it.prg.Procedure(stmt.Name)
		if impl == nil {
			it.halt(UndefinedProcedureError(stmt.Name))
		}
		it.invoke(impl, stmt.Args, false)

	default:
		it.halt(UnsupportedStatementError{stmt})
	}
}

// condition evaluates an IF condition, which must be an Integer or Boolean.
func (it *Interpreter) condition(expr ast.Expression) bool {
	switch v := it.eval(expr).(type) {
	case value.Boolean:
		return bool(v)
	case value.Integer:
		return v != 0
	case nil:
		it.halt(ConditionError{value.TypeString})
	default:
		it.halt(ConditionError{v.Type()})
	}
	return false
}

func (it *Interpreter) bump(name string, op value.Op) {
	ref := ast.VarRef{Name: name}
	v, err := value.Binary(op, it.lookup(name), value.Integer(1))
	it.haltif(err)
	it.assign(ref, v)
}

// assign stores v into a variable of the innermost frame, converting it to
// the declared type. Undeclared names keep the type they already hold, or
// take v's type on first assignment.
func (it *Interpreter) assign(ref ast.VarRef, v value.Value) {
	fr := it.top()
	key := varKey(ref.Name)
	if len(ref.Index) > 0 {
		arr := it.array(fr, key)
		it.haltif(arr.Set(v, it.indices(ref.Index)...))
		return
	}

	if _, isArray := v.(*value.Array); isArray {
		it.halt(value.ErrArrayValue)
	}
	if d, declared := fr.decls[key]; declared {
		if len(d.dims) > 0 {
			it.halt(value.ErrArrayValue)
		}
		cv, err := value.Convert(v, d.typ)
		it.haltif(err)
		v = cv
	} else if cur := fr.vars[key]; cur != nil {
		if _, isArray := cur.(*value.Array); isArray {
			it.halt(value.ErrArrayValue)
		}
		cv, err := value.Convert(v, cur.Type())
		it.haltif(err)
		v = cv
	}
	fr.vars[key] = v
}

// array returns a frame's array, allocating it from its declared dimensions
// on first use.
func (it *Interpreter) array(fr *frame, key string) *value.Array {
	if v, ok := fr.vars[key]; ok {
		if arr, isArray := v.(*value.Array); isArray {
			return arr
		}
		it.halt(UndefinedVariableError(key + "()"))
	}
	d, declared := fr.decls[key]
	if !declared || len(d.dims) == 0 {
		it.halt(UndefinedVariableError(key + "()"))
	}
	dims := make([]int, len(d.dims))
	for i, dim := range d.dims {
		dims[i] = it.evalInt(dim)
	}
	arr := value.NewArray(d.typ, dims...)
	fr.vars[key] = arr
	return arr
}

func (it *Interpreter) indices(exprs []ast.Expression) []int {
	index := make([]int, len(exprs))
	for i, expr := range exprs {
		index[i] = it.index(it.eval(expr))
	}
	return index
}

func (it *Interpreter) index(v value.Value) int {
	switch t := v.Type(); {
	case t.IsInteger(), t.IsFloat():
		n, err := value.Int64(v)
		it.haltif(err)
		return int(n)
	case t.IsString():
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64); err == nil {
			return int(f)
		}
	}
	it.halt(IndexTypeError{v})
	return 0
}

// maxFrames bounds call nesting, main frame included.
const maxFrames = 256

// invoke runs a user procedure or function in a new frame; functions return
// the value of the local variable named after the function.
func (it *Interpreter) invoke(impl *ast.Implementation, args []ast.Expression, isFunc bool) value.Value {
	if len(it.frames) >= maxFrames {
		it.halt(ErrStackOverflow)
	}
	if len(args) != len(impl.Params) {
		it.halt(ArityError{impl.Name, len(args), len(impl.Params), len(impl.Params)})
	}
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		vals[i] = it.eval(arg)
	}

	fr := newFrame(impl.Name, &impl.Block)
	for i, param := range impl.Params {
		fr.declare(param)
		cv, err := value.Convert(vals[i], fr.decls[varKey(param.Name)].typ)
		it.haltif(err)
		fr.vars[varKey(param.Name)] = cv
	}
	for _, local := range impl.Locals {
		fr.declare(local)
	}
	if isFunc {
		fr.declare(ast.Declaration{Name: impl.Name, Type: impl.Returns})
	}

	it.frames = append(it.frames, fr)
	defer func() { it.frames = it.frames[:len(it.frames)-1] }()
	it.exec(fr)

	if !isFunc {
		return nil
	}
	if v := fr.vars[varKey(impl.Name)]; v != nil {
		return v
	}
	return value.Default(impl.Returns)
}
