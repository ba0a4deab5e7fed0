package ppe

import (
	"errors"
	"fmt"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

var (
	ErrReturnUnderflow = errors.New("return stack underflow")
	ErrNotVariable     = errors.New("argument must be a variable")
	ErrStackOverflow   = errors.New("too many nested procedure calls")
	ErrStringTooLong   = errors.New("string length out of range")

	errStop = errors.New("stopped")
)

type (
	LabelNotFoundError        string
	UndefinedProcedureError   string
	UndefinedVariableError    string
	NotSupportedError         string
	UnsupportedStatementError struct{ Stmt ast.Statement }
)

func (name LabelNotFoundError) Error() string {
	return fmt.Sprintf("label %q not found", string(name))
}
func (name UndefinedProcedureError) Error() string {
	return fmt.Sprintf("undefined procedure %q", string(name))
}
func (name UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", string(name))
}
func (name NotSupportedError) Error() string {
	return fmt.Sprintf("%v is not supported", string(name))
}
func (err UnsupportedStatementError) Error() string {
	return fmt.Sprintf("unsupported statement %T, lower it to labels and gotos", err.Stmt)
}

// ArityError reports a built-in or user routine called with the wrong number
// of arguments.
type ArityError struct {
	Name     string
	Have     int
	Min, Max int
}

func (err ArityError) Error() string {
	switch {
	case err.Max < 0:
		return fmt.Sprintf("%v takes at least %v arguments, given %v", err.Name, err.Min, err.Have)
	case err.Min == err.Max:
		return fmt.Sprintf("%v takes %v arguments, given %v", err.Name, err.Min, err.Have)
	}
	return fmt.Sprintf("%v takes %v to %v arguments, given %v", err.Name, err.Min, err.Max, err.Have)
}

// ConditionError reports an IF condition that is neither Integer nor Boolean.
type ConditionError struct{ Have value.Type }

func (err ConditionError) Error() string {
	return fmt.Sprintf("condition must be INTEGER or BOOLEAN, have %v", err.Have)
}

// IndexTypeError reports an array index that is not a number.
type IndexTypeError struct{ Have value.Value }

func (err IndexTypeError) Error() string {
	return fmt.Sprintf("array index must be numeric, have %v %q", err.Have.Type(), err.Have.String())
}

// StatementError annotates a fatal error with the statement that raised it.
type StatementError struct {
	Frame string
	Index int
	Stmt  ast.Statement
	Err   error
}

func (err *StatementError) Error() string {
	return fmt.Sprintf("%v @%v %v: %v", err.Frame, err.Index, err.Stmt, err.Err)
}

func (err *StatementError) Unwrap() error { return err.Err }

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }
