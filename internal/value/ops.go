package value

import (
	"math"
	"strings"
)

// Op names a unary or binary operator.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpPlus
)

var opNames = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpMod:  "%",
	OpPow:  "^",
	OpEq:   "=",
	OpNe:   "<>",
	OpLt:   "<",
	OpLe:   "<=",
	OpGt:   ">",
	OpGe:   ">=",
	OpAnd:  "&",
	OpOr:   "|",
	OpNot:  "!",
	OpNeg:  "-",
	OpPlus: "+",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "?"
}

var binaryOps = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod, "MOD": OpMod,
	"^": OpPow, "=": OpEq, "==": OpEq, "<>": OpNe, "!=": OpNe, "<": OpLt,
	"<=": OpLe, ">": OpGt, ">=": OpGe, "&": OpAnd, "&&": OpAnd, "AND": OpAnd,
	"|": OpOr, "||": OpOr, "OR": OpOr,
}

var unaryOps = map[string]Op{"-": OpNeg, "+": OpPlus, "!": OpNot, "NOT": OpNot}

// ParseBinaryOp resolves an operator token.
func ParseBinaryOp(s string) (Op, bool) {
	op, ok := binaryOps[strings.ToUpper(s)]
	return op, ok
}

// ParseUnaryOp resolves a prefix operator token.
func ParseUnaryOp(s string) (Op, bool) {
	op, ok := unaryOps[strings.ToUpper(s)]
	return op, ok
}

// Binary applies op to a and b.
//
// Arithmetic promotes both operands to the wider of their types. Addition
// with any String operand concatenates; other arithmetic involving a String
// reads it as a number and computes in Double. Comparisons yield Boolean,
// comparing bytes when either side is a String.
func Binary(op Op, a, b Value) (Value, error) {
	if _, isArray := a.(*Array); isArray {
		return nil, ErrArrayValue
	}
	if _, isArray := b.(*Array); isArray {
		return nil, ErrArrayValue
	}
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return compare(op, a, b)
	case OpAnd, OpOr:
		x, err := Truthy(a)
		if err != nil {
			return nil, err
		}
		y, err := Truthy(b)
		if err != nil {
			return nil, err
		}
		if op == OpAnd {
			return Boolean(x && y), nil
		}
		return Boolean(x || y), nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return arith(op, a, b)
	}
	return nil, TypeError{op.String(), a.Type()}
}

func arith(op Op, a, b Value) (Value, error) {
	t := Promote(a.Type(), b.Type())
	if t.IsString() {
		if op == OpAdd {
			return String(a.String() + b.String()), nil
		}
		t = TypeDouble
	}

	if t.IsFloat() {
		x, err := Float64(a)
		if err != nil {
			return nil, err
		}
		y, err := Float64(b)
		if err != nil {
			return nil, err
		}
		var r float64
		switch op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpMul:
			r = x * y
		case OpDiv:
			if y == 0 {
				return nil, ErrDivisionByZero
			}
			r = x / y
		case OpMod:
			if y == 0 {
				return nil, ErrDivisionByZero
			}
			r = math.Mod(x, y)
		case OpPow:
			r = math.Pow(x, y)
		}
		return fromFloat(r, t), nil
	}

	x, err := Int64(a)
	if err != nil {
		return nil, err
	}
	y, err := Int64(b)
	if err != nil {
		return nil, err
	}
	var r int64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		if y == 0 {
			return nil, ErrDivisionByZero
		}
		r = x / y
	case OpMod:
		if y == 0 {
			return nil, ErrDivisionByZero
		}
		r = x % y
	case OpPow:
		r = int64(math.Pow(float64(x), float64(y)))
	}
	return fromInt(r, t), nil
}

func compare(op Op, a, b Value) (Value, error) {
	var c int
	switch t := Promote(a.Type(), b.Type()); {
	case t.IsString():
		c = strings.Compare(a.String(), b.String())
	case t.IsFloat():
		x, _ := Float64(a)
		y, _ := Float64(b)
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	default:
		x, _ := Int64(a)
		y, _ := Int64(b)
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	}
	switch op {
	case OpEq:
		return Boolean(c == 0), nil
	case OpNe:
		return Boolean(c != 0), nil
	case OpLt:
		return Boolean(c < 0), nil
	case OpLe:
		return Boolean(c <= 0), nil
	case OpGt:
		return Boolean(c > 0), nil
	default:
		return Boolean(c >= 0), nil
	}
}

// Unary applies a prefix operator.
func Unary(op Op, v Value) (Value, error) {
	if _, isArray := v.(*Array); isArray {
		return nil, ErrArrayValue
	}
	switch op {
	case OpNot:
		b, err := Truthy(v)
		if err != nil {
			return nil, err
		}
		return Boolean(!b), nil
	case OpNeg, OpPlus:
		t := v.Type()
		if t.IsString() {
			return nil, TypeError{op.String(), t}
		}
		if op == OpPlus {
			return v, nil
		}
		if t == TypeBoolean {
			t = TypeInteger
		}
		if t.IsFloat() {
			f, _ := Float64(v)
			return fromFloat(-f, t), nil
		}
		n, _ := Int64(v)
		return fromInt(-n, t), nil
	}
	return nil, TypeError{op.String(), v.Type()}
}
