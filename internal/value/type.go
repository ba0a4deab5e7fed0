package value

import "strings"

// Type identifies the declared kind of a variable or value.
type Type uint8

// Declarable types; BigStr is accepted in declarations and stored as String.
const (
	TypeBoolean Type = iota
	TypeUnsigned
	TypeDate
	TypeEDate
	TypeInteger
	TypeMoney
	TypeReal
	TypeString
	TypeTime
	TypeByte
	TypeWord
	TypeSByte
	TypeSWord
	TypeBigStr
	TypeDDate
	TypeDouble
	TypeArray
)

var typeNames = [...]string{
	TypeBoolean:  "BOOLEAN",
	TypeUnsigned: "UNSIGNED",
	TypeDate:     "DATE",
	TypeEDate:    "EDATE",
	TypeInteger:  "INTEGER",
	TypeMoney:    "MONEY",
	TypeReal:     "REAL",
	TypeString:   "STRING",
	TypeTime:     "TIME",
	TypeByte:     "BYTE",
	TypeWord:     "WORD",
	TypeSByte:    "SBYTE",
	TypeSWord:    "SWORD",
	TypeBigStr:   "BIGSTR",
	TypeDDate:    "DDATE",
	TypeDouble:   "DOUBLE",
	TypeArray:    "ARRAY",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "INVALID"
}

// ParseType resolves a type name as written in a declaration.
func ParseType(name string) (Type, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch name {
	case "INT":
		return TypeInteger, true
	case "BOOL":
		return TypeBoolean, true
	case "STR":
		return TypeString, true
	}
	for t, n := range typeNames {
		if n == name && Type(t) != TypeArray {
			return Type(t), true
		}
	}
	return 0, false
}

// rank orders types for promotion in mixed binary operations; the wider rank
// wins.
func (t Type) rank() int {
	switch t {
	case TypeBoolean:
		return 0
	case TypeByte:
		return 1
	case TypeSByte:
		return 2
	case TypeWord:
		return 3
	case TypeSWord:
		return 4
	case TypeUnsigned:
		return 5
	case TypeInteger:
		return 6
	case TypeTime:
		return 7
	case TypeDate, TypeEDate, TypeDDate:
		return 8
	case TypeMoney:
		return 9
	case TypeReal:
		return 10
	case TypeDouble:
		return 11
	case TypeString, TypeBigStr:
		return 12
	}
	return -1
}

// IsInteger reports whether values of t are carried as whole numbers.
func (t Type) IsInteger() bool {
	switch t {
	case TypeBoolean, TypeByte, TypeSByte, TypeWord, TypeSWord, TypeUnsigned,
		TypeInteger, TypeTime, TypeDate, TypeEDate, TypeDDate:
		return true
	}
	return false
}

// IsFloat reports whether values of t are carried as floating point.
func (t Type) IsFloat() bool {
	switch t {
	case TypeMoney, TypeReal, TypeDouble:
		return true
	}
	return false
}

// IsString reports whether t is a string type.
func (t Type) IsString() bool { return t == TypeString || t == TypeBigStr }

// Promote returns the result type of a binary arithmetic operation between a
// and b.
func Promote(a, b Type) Type {
	t := a
	if b.rank() > a.rank() {
		t = b
	}
	if t == TypeBoolean {
		return TypeInteger
	}
	if t == TypeBigStr {
		return TypeString
	}
	return t
}
