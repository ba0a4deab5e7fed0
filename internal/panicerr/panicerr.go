// Package panicerr turns a panic, or a runtime.Goexit call, inside a function
// into an ordinary error return.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Recover runs f in its own goroutine and returns its error. If f panics, the
// error is a *PanicError; if f calls runtime.Goexit, it is an ExitError.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			if e := recover(); e != nil {
				errch <- &PanicError{Name: name, Value: e, Stack: debug.Stack()}
			} else {
				errch <- ExitError(name)
			}
		}()
		err := f()
		returned = true
		errch <- err
	}()
	return <-errch
}

// PanicError is a recovered panic.
type PanicError struct {
	Name  string
	Value interface{}
	Stack []byte
}

func (pe *PanicError) Error() string { return fmt.Sprint(pe) }

// Format prints the panic stack too under %+v.
func (pe *PanicError) Format(f fmt.State, c rune) {
	if pe.Name == "" {
		fmt.Fprintf(f, "panicked: %v", pe.Value)
	} else {
		fmt.Fprintf(f, "%v panicked: %v", pe.Name, pe.Value)
	}
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\nPanic stack: %s", pe.Stack)
	}
}

// Unwrap returns the panic value when it was an error.
func (pe *PanicError) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// ExitError reports that the named function called runtime.Goexit.
type ExitError string

func (name ExitError) Error() string {
	if name == "" {
		return "runtime.Goexit called"
	}
	return fmt.Sprintf("%v called runtime.Goexit", string(name))
}

// IsPanic returns true if err wraps a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// Stack returns the stack trace of a recovered panic, or "".
func Stack(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
