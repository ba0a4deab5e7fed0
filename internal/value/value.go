// Package value implements the runtime values of a PPE program: a closed set
// of scalar kinds plus fixed element-type arrays, with the promotion and
// coercion rules used by the interpreter.
package value

import (
	"strconv"
	"time"
)

// Value is implemented only by the types in this package.
type Value interface {
	Type() Type
	String() string
	isValue()
}

type (
	Integer  int32
	Unsigned uint32
	Byte     uint8
	Word     uint16
	SByte    int8
	SWord    int16
	Boolean  bool
	Real     float64
	Double   float64
	Money    float64
	String   string

	// Date, EDate and DDate count days since 1900-01-01.
	Date  int32
	EDate int32
	DDate int32

	// Time counts seconds since midnight.
	Time int32
)

func (Integer) Type() Type  { return TypeInteger }
func (Unsigned) Type() Type { return TypeUnsigned }
func (Byte) Type() Type     { return TypeByte }
func (Word) Type() Type     { return TypeWord }
func (SByte) Type() Type    { return TypeSByte }
func (SWord) Type() Type    { return TypeSWord }
func (Boolean) Type() Type  { return TypeBoolean }
func (Real) Type() Type     { return TypeReal }
func (Double) Type() Type   { return TypeDouble }
func (Money) Type() Type    { return TypeMoney }
func (String) Type() Type   { return TypeString }
func (Date) Type() Type     { return TypeDate }
func (EDate) Type() Type    { return TypeEDate }
func (DDate) Type() Type    { return TypeDDate }
func (Time) Type() Type     { return TypeTime }

func (Integer) isValue()  {}
func (Unsigned) isValue() {}
func (Byte) isValue()     {}
func (Word) isValue()     {}
func (SByte) isValue()    {}
func (SWord) isValue()    {}
func (Boolean) isValue()  {}
func (Real) isValue()     {}
func (Double) isValue()   {}
func (Money) isValue()    {}
func (String) isValue()   {}
func (Date) isValue()     {}
func (EDate) isValue()    {}
func (DDate) isValue()    {}
func (Time) isValue()     {}

func (v Integer) String() string  { return strconv.FormatInt(int64(v), 10) }
func (v Unsigned) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v Byte) String() string     { return strconv.FormatUint(uint64(v), 10) }
func (v Word) String() string     { return strconv.FormatUint(uint64(v), 10) }
func (v SByte) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v SWord) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Real) String() string     { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Double) String() string   { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Money) String() string    { return strconv.FormatFloat(float64(v), 'f', 2, 64) }
func (v String) String() string   { return string(v) }

// Boolean values print as 1 and 0.
func (v Boolean) String() string {
	if v {
		return "1"
	}
	return "0"
}

var epoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateOf returns the day count of t's calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(day.Sub(epoch) / (24 * time.Hour))
}

// TimeOf returns the seconds since midnight of t's wall clock.
func TimeOf(t time.Time) Time {
	h, m, s := t.Clock()
	return Time(h*3600 + m*60 + s)
}

// Time returns the calendar date as a UTC time.
func (v Date) Time() time.Time { return epoch.AddDate(0, 0, int(v)) }

func (v Date) String() string  { return v.Time().Format("01-02-06") }
func (v EDate) String() string { return Date(v).String() }
func (v DDate) String() string { return Date(v).String() }

func (v Time) String() string {
	s := int(v) % 86400
	if s < 0 {
		s += 86400
	}
	return time.Date(0, 1, 1, s/3600, s/60%60, s%60, 0, time.UTC).Format("15:04:05")
}

// Default returns the zero value of a declared scalar type.
func Default(t Type) Value {
	switch t {
	case TypeBoolean:
		return Boolean(false)
	case TypeUnsigned:
		return Unsigned(0)
	case TypeDate:
		return Date(0)
	case TypeEDate:
		return EDate(0)
	case TypeDDate:
		return DDate(0)
	case TypeInteger:
		return Integer(0)
	case TypeMoney:
		return Money(0)
	case TypeReal:
		return Real(0)
	case TypeDouble:
		return Double(0)
	case TypeTime:
		return Time(0)
	case TypeByte:
		return Byte(0)
	case TypeWord:
		return Word(0)
	case TypeSByte:
		return SByte(0)
	case TypeSWord:
		return SWord(0)
	default:
		return String("")
	}
}
