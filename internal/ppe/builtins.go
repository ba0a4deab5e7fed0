package ppe

import (
	"sort"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

// Builtin describes a predefined procedure. Arguments arrive unevaluated so
// that a procedure may treat one as an output variable.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // negative for no limit
	Mutates bool
	Blocks  bool
	Proc    func(it *Interpreter, args []ast.Expression) error
}

// BuiltinFunc describes a predefined function.
type BuiltinFunc struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      func(it *Interpreter, args []ast.Expression) (value.Value, error)
}

var (
	builtins  = make(map[string]*Builtin)
	functions = make(map[string]*BuiltinFunc)
)

func register(bs ...Builtin) {
	for i := range bs {
		b := bs[i]
		builtins[varKey(b.Name)] = &b
	}
}

func registerFunc(fns ...BuiltinFunc) {
	for i := range fns {
		fn := fns[i]
		functions[varKey(fn.Name)] = &fn
	}
}

// registerUnsupported fills catalog entries that exist in the language but
// have no implementation here.
func registerUnsupported(names ...string) {
	for _, name := range names {
		name := name
		if _, defined := builtins[name]; defined {
			continue
		}
		builtins[name] = &Builtin{Name: name, MaxArgs: -1, Proc: func(*Interpreter, []ast.Expression) error {
			return NotSupportedError(name)
		}}
	}
}

func registerUnsupportedFuncs(names ...string) {
	for _, name := range names {
		name := name
		if _, defined := functions[name]; defined {
			continue
		}
		functions[name] = &BuiltinFunc{Name: name, MaxArgs: -1, Fn: func(*Interpreter, []ast.Expression) (value.Value, error) {
			return nil, NotSupportedError(name)
		}}
	}
}

func noop(*Interpreter, []ast.Expression) error { return nil }

// Builtins returns the names of all registered procedures, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBuiltin returns a procedure's descriptor.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[varKey(name)]
	if !ok {
		return Builtin{}, false
	}
	return *b, true
}

// LookupFunction returns a function's descriptor.
func LookupFunction(name string) (BuiltinFunc, bool) {
	fn, ok := functions[varKey(name)]
	if !ok {
		return BuiltinFunc{}, false
	}
	return *fn, true
}

func checkArity(name string, have, min, max int) error {
	if have < min || (max >= 0 && have > max) {
		return ArityError{name, have, min, max}
	}
	return nil
}

func (it *Interpreter) callBuiltin(name string, args []ast.Expression) {
	b, ok := builtins[varKey(name)]
	if !ok {
		it.halt(NotSupportedError(name))
	}
	it.haltif(checkArity(b.Name, len(args), b.MinArgs, b.MaxArgs))
	it.haltif(b.Proc(it, args))
}

func (it *Interpreter) callFunction(name string, args []ast.Expression) value.Value {
	fn, ok := functions[varKey(name)]
	if !ok {
		it.halt(NotSupportedError(name))
	}
	it.haltif(checkArity(fn.Name, len(args), fn.MinArgs, fn.MaxArgs))
	v, err := fn.Fn(it, args)
	it.haltif(err)
	return v
}

func init() {
	register(
		Builtin{Name: "KBDFLUSH", MaxArgs: 0, Proc: noop},
		Builtin{Name: "MDMFLUSH", MaxArgs: 0, Proc: noop},
		Builtin{Name: "KEYFLUSH", MaxArgs: 0, Proc: noop},
		Builtin{Name: "RESETDISP", MaxArgs: 0, Proc: noop},
		Builtin{Name: "STARTDISP", MaxArgs: 1, Proc: noop},
	)
	registerFileBuiltins()
	registerDisplayBuiltins()
	registerInputBuiltins()
	registerUserBuiltins()
	registerMiscBuiltins()
	registerFunctions()

	registerUnsupported(
		"ADJTIME", "ANSIPOSX", "BLT", "BROADCAST", "BYE", "CALL", "CHAT",
		"CONFFLAG", "CONFUNFLAG", "DEFCOLOR", "DELUSER", "DIR", "DISPSTRF",
		"DOINTR", "DOOR", "DTROFF", "DTRON", "FDEFIN", "FDEFOUT", "FDGET",
		"FDPUT", "FDPUTLN", "FDPUTPAD", "FDREAD", "FDWRITE", "FFLUSH",
		"FREAD", "FREALTUSER", "FSEEK", "FWRITE", "GOODBYE", "HANGUP",
		"JOIN", "LANG", "MESSAGE", "MOVMEM", "PAGEOFF", "PAGEON", "POKEB",
		"POKEDW", "POKEW", "POP", "PUSH", "QUEST", "REDIM", "SAVESCRN",
		"RESTSCRN", "SCRFILE", "SEARCHINIT", "SEARCHFIND", "SEARCHSTOP",
		"SENDMODEM", "SHELL", "SHOWOFF", "SHOWON", "SORT", "SOUND",
		"SPRINTLNF", "TPAGET", "TPAPUT", "VARADDR", "VARSEG",
	)
	registerUnsupportedFuncs(
		"ABORT", "ANSION", "CALLID", "CARRIER", "CDON", "CURCONF", "CURSEC",
		"DEFANS", "DOW", "ERRCORRECT", "EVTTIME", "FMTCC", "HELPPATH",
		"HOUR", "I2BD", "KINKEY", "MEGANUM", "MEMSET", "MGETBYTE", "MINKEY",
		"MINLEFT", "MINON", "MINUTE", "NODENUM", "OPTEXT", "PAGESTAT",
		"PCBDAT", "PEEKB", "PEEKDW", "PEEKW", "PPENAME", "PPEPATH",
		"READLINE", "REGAL", "REGAH", "SCRTEXT", "SECOND", "SHOWSTAT",
		"SYSOPSEC", "TEMPPATH", "TIMEAP", "VALCC", "VALDATE", "VALTIME",
	)
}
