// Package ast describes a loaded PPE program: declarations, the main block,
// and user procedure and function implementations. Statements and
// expressions are closed sets of node types.
package ast

import (
	"fmt"
	"strings"

	"github.com/jcorbin/ppedoor/internal/value"
)

// Program is the immutable input of an interpreter run.
type Program struct {
	Declarations []Declaration
	Main         Block
	Procedures   []*Implementation
	Functions    []*Implementation
}

// Declaration declares a variable; Dims holds array dimension expressions,
// empty for scalars.
type Declaration struct {
	Name string
	Type value.Type
	Dims []Expression
}

// Implementation is a user procedure or function body.
type Implementation struct {
	Name    string
	Params  []Declaration
	Locals  []Declaration
	Returns value.Type
	Block   Block
}

// Block is an ordered statement list.
type Block struct {
	Statements []Statement
}

// Procedure finds a procedure implementation by case-insensitive name.
func (prg *Program) Procedure(name string) *Implementation {
	return findImpl(prg.Procedures, name)
}

// Function finds a function implementation by case-insensitive name.
func (prg *Program) Function(name string) *Implementation {
	return findImpl(prg.Functions, name)
}

func findImpl(impls []*Implementation, name string) *Implementation {
	for _, impl := range impls {
		if strings.EqualFold(impl.Name, name) {
			return impl
		}
	}
	return nil
}

// Statement is implemented by the statement node types in this package.
type Statement interface {
	fmt.Stringer
	isStatement()
}

type (
	Comment struct{ Text string }
	Label   struct{ Name string }

	// Let assigns Value to Target, which may be an array element.
	Let struct {
		Target VarRef
		Value  Expression
	}

	Goto   struct{ Label string }
	Gosub  struct{ Label string }
	Return struct{}
	End    struct{}

	// Call invokes a built-in procedure.
	Call struct {
		Name string
		Args []Expression
	}

	// ProcedureCall invokes a user procedure.
	ProcedureCall struct {
		Name string
		Args []Expression
	}

	// If runs Then when Cond holds.
	If struct {
		Cond Expression
		Then Statement
	}

	Inc struct{ Name string }
	Dec struct{ Name string }

	// Structured statements must be lowered to labels and gotos before a
	// program is run.
	IfThen struct {
		Cond Expression
		Then []Statement
		Else []Statement
	}
	While struct {
		Cond Expression
		Body []Statement
	}
	DoWhile struct {
		Cond Expression
		Body []Statement
	}
	For struct {
		Var        string
		From, To   Expression
		Step       Expression
		Statements []Statement
	}
	Select struct {
		Expr  Expression
		Cases []Statement
	}
	BlockStmt struct{ Statements []Statement }
	Break     struct{}
	Continue  struct{}
)

// VarRef names a variable, with optional element indices.
type VarRef struct {
	Name  string
	Index []Expression
}

func (Comment) isStatement()       {}
func (Label) isStatement()         {}
func (Let) isStatement()           {}
func (Goto) isStatement()          {}
func (Gosub) isStatement()         {}
func (Return) isStatement()        {}
func (End) isStatement()           {}
func (Call) isStatement()          {}
func (ProcedureCall) isStatement() {}
func (If) isStatement()            {}
func (Inc) isStatement()           {}
func (Dec) isStatement()           {}
func (IfThen) isStatement()        {}
func (While) isStatement()         {}
func (DoWhile) isStatement()       {}
func (For) isStatement()           {}
func (Select) isStatement()        {}
func (BlockStmt) isStatement()     {}
func (Break) isStatement()         {}
func (Continue) isStatement()      {}

func (s Comment) String() string       { return "; " + s.Text }
func (s Label) String() string         { return ":" + s.Name }
func (s Let) String() string           { return fmt.Sprintf("LET %v = %v", s.Target, s.Value) }
func (s Goto) String() string          { return "GOTO " + s.Label }
func (s Gosub) String() string         { return "GOSUB " + s.Label }
func (Return) String() string          { return "RETURN" }
func (End) String() string             { return "END" }
func (s Call) String() string          { return callString(s.Name, s.Args, " ") }
func (s ProcedureCall) String() string { return callString(s.Name, s.Args, "") }
func (s If) String() string            { return fmt.Sprintf("IF (%v) %v", s.Cond, s.Then) }
func (s Inc) String() string           { return "INC " + s.Name }
func (s Dec) String() string           { return "DEC " + s.Name }
func (s IfThen) String() string        { return fmt.Sprintf("IF (%v) THEN ...", s.Cond) }
func (s While) String() string         { return fmt.Sprintf("WHILE (%v) DO ...", s.Cond) }
func (s DoWhile) String() string       { return fmt.Sprintf("DO ... WHILE (%v)", s.Cond) }
func (s For) String() string           { return fmt.Sprintf("FOR %v = %v TO %v ...", s.Var, s.From, s.To) }
func (s Select) String() string        { return fmt.Sprintf("SELECT CASE %v ...", s.Expr) }
func (BlockStmt) String() string       { return "BEGIN ... END" }
func (Break) String() string           { return "BREAK" }
func (Continue) String() string        { return "CONTINUE" }

func (ref VarRef) String() string {
	if len(ref.Index) == 0 {
		return ref.Name
	}
	return callString(ref.Name, ref.Index, "")
}

func callString(name string, args []Expression, sep string) string {
	var sb strings.Builder
	sb.WriteString(name)
	if sep != "" {
		if len(args) > 0 {
			sb.WriteString(sep)
		}
		for i, arg := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		return sb.String()
	}
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Expression is implemented by the expression node types in this package.
type Expression interface {
	fmt.Stringer
	isExpression()
}

type (
	Identifier struct{ Name string }
	Const      struct{ Value value.Value }

	Unary struct {
		Op   value.Op
		Expr Expression
	}

	Binary struct {
		Op          value.Op
		Left, Right Expression
	}

	// FunctionCall calls a built-in function, or a user function when the
	// program implements one by that name.
	FunctionCall struct {
		Name string
		Args []Expression
	}

	ArrayElement struct {
		Name  string
		Index []Expression
	}
)

func (Identifier) isExpression()   {}
func (Const) isExpression()        {}
func (Unary) isExpression()        {}
func (Binary) isExpression()       {}
func (FunctionCall) isExpression() {}
func (ArrayElement) isExpression() {}

func (e Identifier) String() string   { return e.Name }
func (e Unary) String() string        { return fmt.Sprintf("%v%v", e.Op, e.Expr) }
func (e Binary) String() string       { return fmt.Sprintf("(%v %v %v)", e.Left, e.Op, e.Right) }
func (e FunctionCall) String() string { return callString(e.Name, e.Args, "") }
func (e ArrayElement) String() string { return callString(e.Name, e.Index, "") }

func (e Const) String() string {
	if s, ok := e.Value.(value.String); ok {
		return fmt.Sprintf("%q", string(s))
	}
	if e.Value == nil {
		return "<nil>"
	}
	return e.Value.String()
}

// Int builds an Integer constant.
func Int(n int) Const { return Const{value.Integer(n)} }

// Str builds a String constant.
func Str(s string) Const { return Const{value.String(s)} }

// Var builds an identifier.
func Var(name string) Identifier { return Identifier{name} }
