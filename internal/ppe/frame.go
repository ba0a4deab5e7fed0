package ppe

import (
	"math"
	"strings"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

// terminated is the cursor of a frame that ran END.
const terminated = math.MaxInt - 1

type slot struct {
	typ  value.Type
	dims []ast.Expression
}

type frame struct {
	name   string
	block  *ast.Block
	vars   map[string]value.Value
	decls  map[string]slot
	gosubs []int
	ptr    int
	labels map[string]int
}

func newFrame(name string, block *ast.Block) *frame {
	return &frame{
		name:   name,
		block:  block,
		vars:   make(map[string]value.Value),
		decls:  make(map[string]slot),
		labels: calcTable(block),
	}
}

func varKey(name string) string { return strings.ToUpper(name) }

// calcTable indexes the labels of a block; when a label repeats, the last
// occurrence wins.
func calcTable(block *ast.Block) map[string]int {
	table := make(map[string]int)
	for i, stmt := range block.Statements {
		if label, ok := stmt.(ast.Label); ok {
			table[varKey(label.Name)] = i
		}
	}
	return table
}

func (fr *frame) declare(decl ast.Declaration) {
	key := varKey(decl.Name)
	typ := decl.Type
	if typ == value.TypeBigStr {
		typ = value.TypeString
	}
	fr.decls[key] = slot{typ, decl.Dims}
	if len(decl.Dims) == 0 {
		fr.vars[key] = value.Default(typ)
	} else {
		delete(fr.vars, key)
	}
}

func (fr *frame) jump(label string) {
	i, ok := fr.labels[varKey(label)]
	if !ok {
		panic(haltError{LabelNotFoundError(label)})
	}
	fr.ptr = i
}

func (fr *frame) gosub(label string) {
	ret := fr.ptr
	fr.jump(label)
	fr.gosubs = append(fr.gosubs, ret)
}

func (fr *frame) ret() {
	i := len(fr.gosubs) - 1
	if i < 0 {
		panic(haltError{ErrReturnUnderflow})
	}
	fr.ptr, fr.gosubs = fr.gosubs[i], fr.gosubs[:i]
}

func (fr *frame) done() bool {
	return fr.ptr < 0 || fr.ptr >= len(fr.block.Statements)
}
