package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrArrayValue     = errors.New("array used as scalar")
)

// TypeError reports an operand of an unacceptable kind.
type TypeError struct {
	Op   string
	Have Type
}

func (err TypeError) Error() string {
	return fmt.Sprintf("%v: invalid operand type %v", err.Op, err.Have)
}

// Int64 returns the whole number form of a scalar value. Strings parse as
// decimal numbers, with unparseable text reading as 0; floats truncate.
func Int64(v Value) (int64, error) {
	switch v := v.(type) {
	case Integer:
		return int64(v), nil
	case Unsigned:
		return int64(v), nil
	case Byte:
		return int64(v), nil
	case Word:
		return int64(v), nil
	case SByte:
		return int64(v), nil
	case SWord:
		return int64(v), nil
	case Boolean:
		if v {
			return 1, nil
		}
		return 0, nil
	case Date:
		return int64(v), nil
	case EDate:
		return int64(v), nil
	case DDate:
		return int64(v), nil
	case Time:
		return int64(v), nil
	case Real:
		return int64(v), nil
	case Double:
		return int64(v), nil
	case Money:
		return int64(v), nil
	case String:
		return parseInt(string(v)), nil
	case nil:
		return 0, nil
	}
	return 0, ErrArrayValue
}

// Float64 returns the floating point form of a scalar value.
func Float64(v Value) (float64, error) {
	switch v := v.(type) {
	case Real:
		return float64(v), nil
	case Double:
		return float64(v), nil
	case Money:
		return float64(v), nil
	case String:
		return parseFloat(string(v)), nil
	}
	n, err := Int64(v)
	return float64(n), err
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return int64(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return 0
}

// Convert coerces a scalar into type t. Whole number targets wrap on
// overflow following two's complement truncation.
func Convert(v Value, t Type) (Value, error) {
	if _, isArray := v.(*Array); isArray {
		return nil, ErrArrayValue
	}
	if v != nil && v.Type() == t {
		return v, nil
	}
	switch {
	case t.IsString():
		if v == nil {
			return String(""), nil
		}
		return String(v.String()), nil
	case t.IsFloat():
		f, err := Float64(v)
		if err != nil {
			return nil, err
		}
		return fromFloat(f, t), nil
	case t == TypeBoolean:
		if s, ok := v.(String); ok {
			return Boolean(parseFloat(string(s)) != 0), nil
		}
		f, err := Float64(v)
		return Boolean(f != 0), err
	default:
		n, err := Int64(v)
		if err != nil {
			return nil, err
		}
		return fromInt(n, t), nil
	}
}

func fromInt(n int64, t Type) Value {
	switch t {
	case TypeBoolean:
		return Boolean(n != 0)
	case TypeUnsigned:
		return Unsigned(uint32(n))
	case TypeByte:
		return Byte(uint8(n))
	case TypeWord:
		return Word(uint16(n))
	case TypeSByte:
		return SByte(int8(n))
	case TypeSWord:
		return SWord(int16(n))
	case TypeDate:
		return Date(int32(n))
	case TypeEDate:
		return EDate(int32(n))
	case TypeDDate:
		return DDate(int32(n))
	case TypeTime:
		return Time(int32(n))
	case TypeMoney, TypeReal, TypeDouble:
		return fromFloat(float64(n), t)
	case TypeString, TypeBigStr:
		return String(strconv.FormatInt(n, 10))
	default:
		return Integer(int32(n))
	}
}

func fromFloat(f float64, t Type) Value {
	switch t {
	case TypeMoney:
		return Money(math.Round(f*100) / 100)
	case TypeReal:
		return Real(f)
	case TypeDouble:
		return Double(f)
	case TypeString, TypeBigStr:
		return String(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return fromInt(int64(f), t)
}

// Truthy returns the logical form of a Boolean or whole number value.
func Truthy(v Value) (bool, error) {
	switch v := v.(type) {
	case Boolean:
		return bool(v), nil
	case nil:
		return false, nil
	}
	if v.Type().IsInteger() {
		n, err := Int64(v)
		return n != 0, err
	}
	return false, TypeError{"logic", v.Type()}
}
