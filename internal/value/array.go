package value

import (
	"fmt"
	"strings"
)

// Array is a 1 to 3 dimensional array with a fixed element type.
//
// Programs address elements with 1-based indices; an array declared with
// dimension n holds n+1 slots so legacy indices 1..n+1 are all addressable.
type Array struct {
	Elem Type
	Dims []int
	Data []Value
}

// BoundsError reports an array index outside of its dimension.
type BoundsError struct {
	Index int
	Dim   int
}

func (err BoundsError) Error() string {
	return fmt.Sprintf("array index %v out of range 1..%v", err.Index, err.Dim)
}

// NewArray allocates an array for the declared dimensions, each growing by one
// storage slot.
func NewArray(elem Type, dims ...int) *Array {
	if elem == TypeBigStr {
		elem = TypeString
	}
	arr := &Array{Elem: elem, Dims: make([]int, len(dims))}
	size := 1
	for i, d := range dims {
		if d < 0 {
			d = 0
		}
		arr.Dims[i] = d + 1
		size *= d + 1
	}
	arr.Data = make([]Value, size)
	zero := Default(elem)
	for i := range arr.Data {
		arr.Data[i] = zero
	}
	return arr
}

func (*Array) isValue()   {}
func (*Array) Type() Type { return TypeArray }

func (arr *Array) String() string {
	parts := make([]string, len(arr.Data))
	for i, v := range arr.Data {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// offset converts legacy 1-based indices into a storage offset; this is the
// only place where the off-by-one conversion happens.
func (arr *Array) offset(index []int) (int, error) {
	if len(index) != len(arr.Dims) {
		return 0, fmt.Errorf("array has %v dimensions, indexed with %v", len(arr.Dims), len(index))
	}
	off := 0
	for i, legacy := range index {
		n := legacy - 1
		if n < 0 || n >= arr.Dims[i] {
			return 0, BoundsError{legacy, arr.Dims[i]}
		}
		off = off*arr.Dims[i] + n
	}
	return off, nil
}

// Get returns the element at the given legacy indices.
func (arr *Array) Get(index ...int) (Value, error) {
	off, err := arr.offset(index)
	if err != nil {
		return nil, err
	}
	return arr.Data[off], nil
}

// Set converts v to the element type and stores it at the given legacy
// indices.
func (arr *Array) Set(v Value, index ...int) error {
	off, err := arr.offset(index)
	if err != nil {
		return err
	}
	cv, err := Convert(v, arr.Elem)
	if err != nil {
		return err
	}
	arr.Data[off] = cv
	return nil
}

// Clone returns a copy that shares no storage with arr.
func (arr *Array) Clone() *Array {
	dup := &Array{Elem: arr.Elem, Dims: append([]int(nil), arr.Dims...)}
	dup.Data = append([]Value(nil), arr.Data...)
	return dup
}

// Strings builds a one dimensional String array holding ss at indices 1..len(ss).
func Strings(ss ...string) *Array {
	arr := NewArray(TypeString, len(ss)-1)
	for i, s := range ss {
		arr.Data[i] = String(s)
	}
	return arr
}
