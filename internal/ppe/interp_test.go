package ppe

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/logio"
	"github.com/jcorbin/ppedoor/internal/value"
	"github.com/jcorbin/ppedoor/internal/vt"
)

func TestInterpreter(t *testing.T) {
	ppeTestCases{
		ppeTest("empty program"),

		ppeTest("loop three times").withMain(
			let("i", ast.Int(0)),
			ast.Label{Name: "loop"},
			let("i", add(ast.Var("i"), ast.Int(1))),
			call("PRINT", ast.Var("i")),
			ast.If{Cond: bin(value.OpLt, ast.Var("i"), ast.Int(3)), Then: ast.Goto{Label: "loop"}},
			ast.End{},
			call("PRINT", ast.Str("unreachable")),
		).expectOutput("123").expectVar("I", value.Integer(3)),

		ppeTest("color loop keeps every code").withMain(
			let("x", ast.Int(1)),
			ast.Label{Name: "loop"},
			call("PRINT", ast.Str("@X01@")),
			ast.Inc{Name: "x"},
			ast.If{Cond: bin(value.OpLt, ast.Var("x"), ast.Int(4)), Then: ast.Goto{Label: "loop"}},
		).expectOutput(strings.Repeat("\x1b[0;34;40m", 3)).expectVar("X", value.Integer(4)),

		ppeTest("last label wins").withMain(
			ast.Goto{Label: "here"},
			ast.Label{Name: "here"},
			call("PRINT", ast.Str("first")),
			ast.End{},
			ast.Label{Name: "HERE"},
			call("PRINT", ast.Str("second")),
		).expectOutput("second"),

		ppeTest("gosub returns after the call").withMain(
			ast.Gosub{Label: "sub"},
			call("PRINT", ast.Str("back")),
			ast.End{},
			ast.Label{Name: "sub"},
			call("PRINT", ast.Str("sub;")),
			ast.Return{},
		).expectOutput("sub;back"),

		ppeTest("return underflow").withMain(
			ast.Return{},
		).expectError(ErrReturnUnderflow),

		ppeTest("missing label").withMain(
			ast.Goto{Label: "nowhere"},
		).expectError(LabelNotFoundError("nowhere")),

		ppeTest("structured statements are rejected").withMain(
			ast.While{Cond: ast.Var("TRUE")},
		).expectErrorAs(new(UnsupportedStatementError)),

		ppeTest("if requires integer or boolean").withMain(
			ast.If{Cond: ast.Str("yes"), Then: ast.End{}},
		).expectErrorAs(new(ConditionError)),

		ppeTest("undefined variable").withMain(
			call("PRINT", ast.Var("nope")),
		).expectError(UndefinedVariableError("nope")),

		ppeTest("declared types convert on assignment").withDecls(
			ast.Declaration{Name: "b", Type: value.TypeByte},
			ast.Declaration{Name: "s", Type: value.TypeString},
		).withMain(
			let("b", ast.Int(257)),
			let("s", ast.Int(42)),
		).expectVar("B", value.Byte(1)).expectVar("S", value.String("42")),

		ppeTest("division by zero").withMain(
			let("x", bin(value.OpDiv, ast.Int(1), ast.Int(0))),
		).expectError(value.ErrDivisionByZero),

		ppeTest("arrays use legacy indices").withDecls(
			ast.Declaration{Name: "a", Type: value.TypeInteger, Dims: []ast.Expression{ast.Int(2)}},
		).withMain(
			ast.Let{Target: ast.VarRef{Name: "a", Index: []ast.Expression{ast.Int(1)}}, Value: ast.Int(7)},
			ast.Let{Target: ast.VarRef{Name: "a", Index: []ast.Expression{ast.Str("3")}}, Value: ast.Int(9)},
			call("PRINT", ast.ArrayElement{Name: "a", Index: []ast.Expression{ast.Int(1)}}),
			call("PRINT", ast.ArrayElement{Name: "a", Index: []ast.Expression{ast.Int(3)}}),
		).expectOutput("79"),

		ppeTest("array bounds are fatal").withDecls(
			ast.Declaration{Name: "a", Type: value.TypeInteger, Dims: []ast.Expression{ast.Int(2)}},
		).withMain(
			call("PRINT", ast.ArrayElement{Name: "a", Index: []ast.Expression{ast.Int(4)}}),
		).expectErrorAs(new(value.BoundsError)),

		ppeTest("array index must be numeric").withDecls(
			ast.Declaration{Name: "a", Type: value.TypeInteger, Dims: []ast.Expression{ast.Int(2)}},
		).withMain(
			call("PRINT", ast.ArrayElement{Name: "a", Index: []ast.Expression{ast.Str("x")}}),
		).expectErrorAs(new(IndexTypeError)),

		ppeTest("user procedure gets its own frame").withProcedure(&ast.Implementation{
			Name:   "greet",
			Params: []ast.Declaration{{Name: "who", Type: value.TypeString}},
			Block: ast.Block{Statements: []ast.Statement{
				call("PRINT", ast.Str("hi "), ast.Var("who")),
				let("x", ast.Int(99)),
			}},
		}).withMain(
			let("x", ast.Int(1)),
			ast.ProcedureCall{Name: "GREET", Args: []ast.Expression{ast.Str("bob")}},
		).expectOutput("hi bob").expectVar("X", value.Integer(1)),

		ppeTest("user function returns its named local").withFunction(&ast.Implementation{
			Name:    "double",
			Params:  []ast.Declaration{{Name: "n", Type: value.TypeInteger}},
			Returns: value.TypeInteger,
			Block: ast.Block{Statements: []ast.Statement{
				let("double", bin(value.OpMul, ast.Var("n"), ast.Int(2))),
			}},
		}).withMain(
			let("y", ast.FunctionCall{Name: "double", Args: []ast.Expression{ast.Int(21)}}),
		).expectVar("Y", value.Integer(42)),

		ppeTest("user function without assignment returns zero").withFunction(&ast.Implementation{
			Name:    "nothing",
			Returns: value.TypeInteger,
		}).withMain(
			let("y", ast.FunctionCall{Name: "nothing"}),
		).expectVar("Y", value.Integer(0)),

		ppeTest("runaway recursion").withProcedure(&ast.Implementation{
			Name: "again",
			Block: ast.Block{Statements: []ast.Statement{
				ast.ProcedureCall{Name: "AGAIN"},
			}},
		}).withMain(
			ast.ProcedureCall{Name: "AGAIN"},
		).expectError(ErrStackOverflow),

		ppeTest("recursive function").withFunction(&ast.Implementation{
			Name:    "loop",
			Params:  []ast.Declaration{{Name: "n", Type: value.TypeInteger}},
			Returns: value.TypeInteger,
			Block: ast.Block{Statements: []ast.Statement{
				let("loop", ast.FunctionCall{Name: "loop", Args: []ast.Expression{add(ast.Var("n"), ast.Int(1))}}),
			}},
		}).withMain(
			let("y", ast.FunctionCall{Name: "loop", Args: []ast.Expression{ast.Int(0)}}),
		).expectError(ErrStackOverflow),

		ppeTest("procedure arity").withProcedure(&ast.Implementation{
			Name:   "one",
			Params: []ast.Declaration{{Name: "a", Type: value.TypeInteger}},
		}).withMain(
			ast.ProcedureCall{Name: "one"},
		).expectErrorAs(new(ArityError)),

		ppeTest("undefined procedure").withMain(
			ast.ProcedureCall{Name: "ghost"},
		).expectError(UndefinedProcedureError("ghost")),

		ppeTest("errors name the failing statement").withMain(
			ast.Comment{Text: "first"},
			ast.Return{},
		).expectErrorAs(new(*StatementError)).expect(func(t *testing.T, err error, _ *Interpreter) {
			var se *StatementError
			if assert.True(t, errors.As(err, &se)) {
				assert.Equal(t, "main", se.Frame)
				assert.Equal(t, 1, se.Index)
				assert.Equal(t, ast.Return{}, se.Stmt)
			}
		}),

		ppeTest("stop ends the run").withMain(
			call("PRINT", ast.Str("a")),
			call("STOP"),
			call("PRINT", ast.Str("b")),
		).expectOutput("a"),

		ppeTest("stop inside a procedure").withProcedure(&ast.Implementation{
			Name: "quit",
			Block: ast.Block{Statements: []ast.Statement{
				call("STOP"),
			}},
		}).withMain(
			ast.ProcedureCall{Name: "quit"},
			call("PRINT", ast.Str("b")),
		).expectOutput(""),

		ppeTest("cancelled run").withTimeout(50*time.Millisecond).withMain(
			ast.Label{Name: "spin"},
			ast.Goto{Label: "spin"},
		).expectError(context.DeadlineExceeded),

		ppeTest("inc and dec").withMain(
			let("n", ast.Int(5)),
			ast.Inc{Name: "n"},
			ast.Inc{Name: "n"},
			ast.Dec{Name: "n"},
		).expectVar("N", value.Integer(6)),

		ppeTest("constants and zero argument functions").withMain(
			let("t", ast.Var("TRUE")),
			let("v", ast.Var("VER")),
		).expectVar("T", value.Boolean(true)).expectVar("V", value.Integer(version)),
	}.run(t)
}

// ppe test DSL

type ppeTestCases []ppeTestCase

func (pts ppeTestCases) run(t *testing.T) {
	{
		var exclusive []ppeTestCase
		for _, pt := range pts {
			if pt.exclusive {
				exclusive = append(exclusive, pt)
			}
		}
		if len(exclusive) > 0 {
			pts = exclusive
		}
	}
	for _, pt := range pts {
		if !t.Run(pt.name, pt.run) {
			return
		}
	}
}

func ppeTest(name string) (pt ppeTestCase) {
	pt.name = name
	return pt
}

type ppeTestCase struct {
	name    string
	prg     ast.Program
	input   []string
	keys    string
	files   map[string]string
	data    *icy.BoardData
	now     time.Time
	timeout time.Duration
	opts    []Option

	wantErr   error
	wantErrAs interface{}
	expects   []func(t *testing.T, err error, it *Interpreter)
	exclusive bool
}

func (pt ppeTestCase) exclusiveTest() ppeTestCase {
	pt.exclusive = true
	return pt
}

func (pt ppeTestCase) withDecls(decls ...ast.Declaration) ppeTestCase {
	pt.prg.Declarations = append(pt.prg.Declarations[:len(pt.prg.Declarations):len(pt.prg.Declarations)], decls...)
	return pt
}

func (pt ppeTestCase) withMain(stmts ...ast.Statement) ppeTestCase {
	pt.prg.Main.Statements = stmts
	return pt
}

func (pt ppeTestCase) withProcedure(impl *ast.Implementation) ppeTestCase {
	pt.prg.Procedures = append(pt.prg.Procedures[:len(pt.prg.Procedures):len(pt.prg.Procedures)], impl)
	return pt
}

func (pt ppeTestCase) withFunction(impl *ast.Implementation) ppeTestCase {
	pt.prg.Functions = append(pt.prg.Functions[:len(pt.prg.Functions):len(pt.prg.Functions)], impl)
	return pt
}

func (pt ppeTestCase) withInput(lines ...string) ppeTestCase {
	pt.input = lines
	return pt
}

func (pt ppeTestCase) withKeys(keys string) ppeTestCase {
	pt.keys = keys
	return pt
}

func (pt ppeTestCase) withFiles(files map[string]string) ppeTestCase {
	pt.files = files
	return pt
}

func (pt ppeTestCase) withBoard(data *icy.BoardData) ppeTestCase {
	pt.data = data
	return pt
}

func (pt ppeTestCase) withNow(now time.Time) ppeTestCase {
	pt.now = now
	return pt
}

func (pt ppeTestCase) withTimeout(timeout time.Duration) ppeTestCase {
	pt.timeout = timeout
	return pt
}

func (pt ppeTestCase) withOptions(opts ...Option) ppeTestCase {
	pt.opts = append(pt.opts[:len(pt.opts):len(pt.opts)], opts...)
	return pt
}

func (pt ppeTestCase) expectError(err error) ppeTestCase {
	pt.wantErr = err
	return pt
}

func (pt ppeTestCase) expectErrorAs(target interface{}) ppeTestCase {
	pt.wantErrAs = target
	return pt
}

func (pt ppeTestCase) expect(expect func(t *testing.T, err error, it *Interpreter)) ppeTestCase {
	pt.expects = append(pt.expects[:len(pt.expects):len(pt.expects)], expect)
	return pt
}

func (pt ppeTestCase) expectOutput(output string) ppeTestCase {
	return pt.expect(func(t *testing.T, _ error, it *Interpreter) {
		assert.Equal(t, output, it.ec.(*testSession).out.String(), "expected output")
	})
}

func (pt ppeTestCase) expectVar(name string, v value.Value) ppeTestCase {
	return pt.expect(func(t *testing.T, _ error, it *Interpreter) {
		assert.Equal(t, v, it.frames[0].vars[name], "expected variable %v", name)
	})
}

func (pt ppeTestCase) expectFile(name, content string) ppeTestCase {
	return pt.expect(func(t *testing.T, _ error, it *Interpreter) {
		data, ok := it.io.(*chanio.Memory).File(name)
		if assert.True(t, ok, "expected file %v to exist", name) {
			assert.Equal(t, content, data, "expected file %v content", name)
		}
	})
}

func (pt ppeTestCase) expectSent(sent ...string) ppeTestCase {
	return pt.expect(func(t *testing.T, _ error, it *Interpreter) {
		assert.Equal(t, sent, it.ec.(*testSession).sent, "expected com injections")
	})
}

func (pt ppeTestCase) expectBoard(check func(t *testing.T, data *icy.BoardData)) ppeTestCase {
	return pt.expect(func(t *testing.T, _ error, it *Interpreter) {
		check(t, it.BoardData())
	})
}

func (pt ppeTestCase) run(t *testing.T) {
	const defaultTimeout = time.Second
	timeout := pt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	it := pt.build(t)
	err := it.Run(ctx)

	defer func() {
		if t.Failed() {
			lw := logio.Writer{Logf: t.Logf}
			it.Dump(&lw)
			lw.Close()
		}
	}()

	switch {
	case pt.wantErr != nil:
		assert.True(t, errors.Is(err, pt.wantErr), "expected error: %v\ngot: %+v", pt.wantErr, err)
	case pt.wantErrAs != nil:
		assert.True(t, errors.As(err, pt.wantErrAs), "expected error of type %T\ngot: %+v", pt.wantErrAs, err)
	default:
		require.NoError(t, err, "unexpected run error")
	}
	for _, expect := range pt.expects {
		expect(t, err, it)
	}
}

func (pt ppeTestCase) build(t *testing.T) *Interpreter {
	sess := newTestSession(pt.input, pt.keys)
	files := chanio.NewMemory(pt.files)
	prg := pt.prg
	opts := []Option{WithLogf(t.Logf)}
	if !pt.now.IsZero() {
		now := pt.now
		opts = append(opts, WithClock(func() time.Time { return now }))
	}
	opts = append(opts, pt.opts...)
	return New(&prg, sess, files, pt.data, opts...)
}

// testSession is an in-memory terminal session.
type testSession struct {
	*vt.Terminal
	out        strings.Builder
	lines      []string
	keys       []rune
	sent       []string
	broadcasts []string
}

func newTestSession(lines []string, keys string) *testSession {
	sess := &testSession{
		lines: lines,
		keys:  []rune(keys),
	}
	sess.Terminal = vt.NewTerminal(&sess.out)
	return sess
}

func (sess *testSession) ReadLine() (string, error) {
	if len(sess.lines) == 0 {
		return "", io.EOF
	}
	line := sess.lines[0]
	sess.lines = sess.lines[1:]
	return line, nil
}

func (sess *testSession) GetChar() (rune, bool, error) {
	if len(sess.keys) == 0 {
		return 0, false, nil
	}
	r := sess.keys[0]
	sess.keys = sess.keys[1:]
	return r, true, nil
}

func (sess *testSession) InBytes() int { return len(sess.keys) }

func (sess *testSession) SendToCom(data string) error {
	sess.sent = append(sess.sent, data)
	return nil
}

func (sess *testSession) Broadcast(node int, message string) error {
	sess.broadcasts = append(sess.broadcasts, message)
	return nil
}

// program construction helpers

func let(name string, expr ast.Expression) ast.Let {
	return ast.Let{Target: ast.VarRef{Name: name}, Value: expr}
}

func call(name string, args ...ast.Expression) ast.Call {
	return ast.Call{Name: name, Args: args}
}

func fn(name string, args ...ast.Expression) ast.FunctionCall {
	return ast.FunctionCall{Name: name, Args: args}
}

func bin(op value.Op, left, right ast.Expression) ast.Binary {
	return ast.Binary{Op: op, Left: left, Right: right}
}

func add(left, right ast.Expression) ast.Binary { return bin(value.OpAdd, left, right) }
