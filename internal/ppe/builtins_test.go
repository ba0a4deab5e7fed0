package ppe

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/value"
)

func TestBuiltins_files(t *testing.T) {
	ppeTestCases{
		ppeTest("write then read back").withMain(
			call("FCREATE", ast.Int(0), ast.Str(`C:\PCB\OUT.TXT`), ast.Var("O_WR"), ast.Var("S_DN")),
			call("FPUTLN", ast.Int(0), ast.Str("hello "), ast.Int(1)),
			call("FPUT", ast.Int(0), ast.Str("tail")),
			call("FCLOSE", ast.Int(0)),
			call("FOPEN", ast.Int(1), ast.Str(`C:\PCB\OUT.TXT`), ast.Var("O_RD"), ast.Var("S_DN")),
			call("FGET", ast.Int(1), ast.Var("a")),
			call("FGET", ast.Int(1), ast.Var("b")),
			call("FGET", ast.Int(1), ast.Var("c")),
			let("eof", fn("FERR", ast.Int(1))),
			call("FREWIND", ast.Int(1)),
			call("FGET", ast.Int(1), ast.Var("d")),
			call("FCLOSEALL"),
		).
			expectFile("pcb/out.txt", "hello 1\r\ntail").
			expectVar("A", value.String("hello 1")).
			expectVar("B", value.String("tail")).
			expectVar("C", value.String("")).
			expectVar("EOF", value.Boolean(true)).
			expectVar("D", value.String("hello 1")),

		ppeTest("open failure only sets the flag").withMain(
			call("FOPEN", ast.Int(2), ast.Str("MISSING.TXT"), ast.Var("O_RD"), ast.Var("S_DN")),
			let("e", fn("FERR", ast.Int(2))),
			call("PRINT", ast.Str("still running")),
		).expectOutput("still running").expectVar("E", value.Boolean(true)),

		ppeTest("append").withFiles(map[string]string{
			"LOG.TXT": "one\r\n",
		}).withMain(
			call("FAPPEND", ast.Int(3), ast.Str("log.txt"), ast.Var("O_WR"), ast.Var("S_DN")),
			call("FPUTLN", ast.Int(3), ast.Str("two")),
			call("FCLOSE", ast.Int(3)),
		).expectFile("LOG.TXT", "one\r\ntwo\r\n"),

		ppeTest("fclose ignores the sentinel").withMain(
			call("FCLOSE", ast.Int(-1)),
		),

		ppeTest("channel out of range").withMain(
			call("FOPEN", ast.Int(8), ast.Str("X.TXT"), ast.Var("O_RD"), ast.Var("S_DN")),
		).expectError(chanio.ChannelError(8)),

		ppeTest("ferr out of range").withMain(
			let("e", fn("FERR", ast.Int(-2))),
		).expectError(chanio.ChannelError(-2)),

		ppeTest("fget needs a variable").withFiles(map[string]string{
			"IN.TXT": "x\r\n",
		}).withMain(
			call("FOPEN", ast.Int(0), ast.Str("IN.TXT"), ast.Var("O_RD"), ast.Var("S_DN")),
			call("FGET", ast.Int(0), ast.Str("oops")),
		).expectError(ErrNotVariable),

		ppeTest("whole file operations").withFiles(map[string]string{
			"A.TXT": "aaa",
			"B.TXT": "bbb",
		}).withMain(
			call("COPY", ast.Str("A.TXT"), ast.Str("C.TXT")),
			call("RENAME", ast.Str("B.TXT"), ast.Str("D.TXT")),
			call("DELETE", ast.Str("A.TXT")),
			call("DELETE", ast.Str("NOPE.TXT")),
			let("a", fn("EXIST", ast.Str("A.TXT"))),
			let("b", fn("EXIST", ast.Str("B.TXT"))),
		).
			expectFile("C.TXT", "aaa").
			expectFile("D.TXT", "bbb").
			expectVar("A", value.Boolean(false)).
			expectVar("B", value.Boolean(false)),

		ppeTest("file information").withFiles(map[string]string{
			"GEN/NEWS.TXT": "12345",
		}).withMain(
			let("exists", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(1))),
			let("size", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(4))),
			let("drive", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(6))),
			let("dir", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(7))),
			let("base", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(8))),
			let("ext", fn("FILEINF", ast.Str(`C:\GEN\NEWS.TXT`), ast.Int(9))),
		).
			expectVar("EXISTS", value.Boolean(true)).
			expectVar("SIZE", value.Integer(5)).
			expectVar("DRIVE", value.String("C:")).
			expectVar("DIR", value.String("GEN")).
			expectVar("BASE", value.String("NEWS")).
			expectVar("EXT", value.String(".TXT")),
	}.run(t)
}

func TestBuiltins_display(t *testing.T) {
	ppeTestCases{
		ppeTest("print variants").withMain(
			call("PRINT", ast.Str("a"), ast.Int(1)),
			call("PRINTLN", ast.Str("b")),
			call("PRINTLN"),
			call("DISPSTR", ast.Str("c")),
			call("MPRINTLN", ast.Str("d")),
		).expectOutput("a1b\r\n\r\ncd\r\n"),

		ppeTest("color codes are transcoded").withMain(
			call("PRINT", ast.Str("@X1Fhi")),
		).expectOutput("\x1b[0;1;37;44mhi"),

		ppeTest("screen control").withMain(
			call("CLS"),
			call("CLREOL"),
			call("BEEP"),
			call("NEWLINES", ast.Int(2)),
			call("NEWLINES", ast.Int(0)),
			call("COLOR", ast.Int(0x0E)),
			call("ANSIPOS", ast.Int(10), ast.Int(5)),
		).expectOutput("\x1b[2J\x1b[K\a\r\n\r\n\x1b[0;1;33;40m\x1b[5;10H"),

		ppeTest("display file").withFiles(map[string]string{
			"WELCOME.TXT": "@X0Ahello@CLREOL@",
		}).withMain(
			call("DISPFILE", ast.Str("welcome.txt"), ast.Int(0)),
		).expectOutput("\x1b[0;1;32;40mhello\x1b[K"),

		ppeTest("display missing file").withMain(
			call("DISPFILE", ast.Str("GONE.TXT")),
			call("PRINT", ast.Str("!")),
		).expectOutput("file error GONE.TXT\r\n!"),

		ppeTest("display text").withBoard(&icy.BoardData{
			Texts: map[int]string{7: "Goodbye"},
		}).withMain(
			call("DISPTEXT", ast.Int(7), ast.Var("NEWLINE")),
			call("DISPTEXT", ast.Int(8)),
		).expectOutput("Goodbye\r\n"),

		ppeTest("print arity").withMain(
			call("DISPSTR"),
		).expectErrorAs(new(ArityError)),
	}.run(t)
}

func TestBuiltins_input(t *testing.T) {
	ppeTestCases{
		ppeTest("input").withInput("bob").withMain(
			call("INPUT", ast.Str("Name? "), ast.Var("name")),
		).expectOutput("Name? ").expectVar("NAME", value.String("bob")),

		ppeTest("inputstr limits and flags").withInput("a1b2c3d4").withMain(
			call("INPUTSTR", ast.Str("? "), ast.Var("s"), ast.Int(0), ast.Int(3),
				ast.Str("abcd"), add(ast.Var("UPCASE"), ast.Var("NEWLINE"))),
		).expectOutput("? \r\n").expectVar("S", value.String("ABC")),

		ppeTest("inputint").withInput(" 42 ").withMain(
			call("INPUTINT", ast.Str("n: "), ast.Var("n"), ast.Int(0), ast.Int(0)),
		).expectVar("N", value.Integer(42)),

		ppeTest("inputyn").withInput("yes", "nope").withMain(
			call("INPUTYN", ast.Str(""), ast.Var("a"), ast.Int(0)),
			call("INPUTYN", ast.Str(""), ast.Var("b"), ast.Int(0)),
		).expectVar("A", value.String("Y")).expectVar("B", value.String("N")),

		ppeTest("input into a declared integer").withDecls(
			ast.Declaration{Name: "n", Type: value.TypeInteger},
		).withInput("17").withMain(
			call("INPUT", ast.Str(""), ast.Var("n")),
		).expectVar("N", value.Integer(17)),

		ppeTest("read failure is fatal").withMain(
			call("WAIT"),
		).expectError(io.EOF),

		ppeTest("kbdstring injects input").withMain(
			call("KBDSTRING", ast.Str("Y\r")),
		).expectSent("Y\r"),

		ppeTest("inkey polls").withKeys("q").withMain(
			let("n", fn("INBYTES")),
			let("a", fn("INKEY")),
			let("b", ast.Var("INKEY")),
		).
			expectVar("N", value.Integer(1)).
			expectVar("A", value.String("q")).
			expectVar("B", value.String("")),
	}.run(t)
}

func TestBuiltins_user(t *testing.T) {
	board := func() *icy.BoardData {
		return &icy.BoardData{
			Board: icy.Board{Name: "Test BBS", Node: 2},
			Users: []icy.User{
				{Name: "SYSOP", City: "Nowhere", Security: 110, PageLen: 23},
				{Name: "ALICE", City: "Springfield", Security: 20, PageLen: 24, Password: "secret"},
			},
			CurrentUser: 1,
			Nodes:       []icy.Node{
				{Status: icy.NodeAvailable},
				{Status: icy.NodeInDoor, Name: "ALICE", City: "Springfield", Operation: "playing"},
			},
		}
	}

	orig := board()
	ppeTestCases{
		ppeTest("current user is mirrored at start").withBoard(board()).withMain(
			let("name", fn("U_NAME")),
		).
			expectVar("U_SEC", value.Integer(20)).
			expectVar("U_CITY", value.String("Springfield")).
			expectVar("NAME", value.String("ALICE")),

		ppeTest("getuser twice then putuser changes nothing").withBoard(board()).withMain(
			call("GETUSER"),
			call("GETUSER"),
			call("PUTUSER"),
		).expectBoard(func(t *testing.T, data *icy.BoardData) {
			assert.Equal(t, board().Users, data.Users)
		}),

		ppeTest("putuser folds variables back").withBoard(board()).withMain(
			call("GETUSER"),
			let("U_SEC", ast.Int(50)),
			let("U_PWD", ast.Str("hunter2")),
			ast.Let{Target: ast.VarRef{Name: "U_ADDR", Index: []ast.Expression{ast.Int(1)}}, Value: ast.Str("1 Main St")},
			call("PUTUSER"),
		).expectBoard(func(t *testing.T, data *icy.BoardData) {
			u := data.Users[1]
			assert.Equal(t, 50, u.Security)
			assert.Equal(t, "hunter2", u.Password)
			assert.Equal(t, "1 Main St", u.Address.Street1)
			assert.Equal(t, 110, data.Users[0].Security, "other users untouched")
		}),

		ppeTest("getuser inside a procedure").withBoard(board()).withProcedure(&ast.Implementation{
			Name: "edit",
			Block: ast.Block{Statements: []ast.Statement{
				call("GETUSER"),
				call("PRINT", ast.Var("U_PWD")),
				let("U_SEC", ast.Int(77)),
				call("PUTUSER"),
			}},
		}).withMain(
			ast.ProcedureCall{Name: "EDIT"},
		).expectOutput("secret").expectBoard(func(t *testing.T, data *icy.BoardData) {
			assert.Equal(t, 77, data.Users[1].Security)
		}),

		ppeTest("putuser without getuser").withBoard(board()).withMain(
			let("U_SEC", ast.Int(50)),
			call("PUTUSER"),
		).expectBoard(func(t *testing.T, data *icy.BoardData) {
			assert.Equal(t, 20, data.Users[1].Security)
		}),

		ppeTest("getaltuser").withBoard(board()).withMain(
			call("GETALTUSER", ast.Int(1)),
			let("n", fn("CURUSER")),
		).expectVar("U_SEC", value.Integer(110)).expectVar("N", value.Integer(1)),

		ppeTest("getaltuser out of range").withBoard(board()).withMain(
			call("GETALTUSER", ast.Int(3)),
		).expectErrorAs(new(icy.IndexError)),

		ppeTest("node table").withBoard(board()).withMain(
			call("RDUNET", ast.Int(2)),
			let("stat", fn("UN_STAT")),
			let("oper", fn("UN_OPER")),
			call("WRUNET", ast.Int(1), ast.Str("D"), ast.Str("BOB"), ast.Str("Shelbyville"), ast.Str("chatting"), ast.Str("")),
			let("node", fn("PCBNODE")),
		).
			expectVar("STAT", value.String(icy.NodeInDoor)).
			expectVar("OPER", value.String("playing")).
			expectVar("NODE", value.Integer(2)).
			expectBoard(func(t *testing.T, data *icy.BoardData) {
				assert.Equal(t, icy.Node{Status: "D", Name: "BOB", City: "Shelbyville", Operation: "chatting"}, data.Nodes[0])
			}),

		ppeTest("wrunet broadcasts").withBoard(board()).withMain(
			call("WRUNET", ast.Int(2), ast.Str("A"), ast.Str(""), ast.Str(""), ast.Str(""), ast.Str("hello node")),
		).expect(func(t *testing.T, _ error, it *Interpreter) {
			assert.Equal(t, []string{"hello node"}, it.ec.(*testSession).broadcasts)
		}),

		ppeTest("rdunet out of range").withBoard(board()).withMain(
			call("RDUNET", ast.Int(0)),
		).expectErrorAs(new(icy.IndexError)),

		ppeTest("the caller's board data is not modified").withBoard(orig).withMain(
			call("GETUSER"),
			let("U_SEC", ast.Int(99)),
			call("PUTUSER"),
		).expect(func(t *testing.T, _ error, it *Interpreter) {
			assert.Equal(t, 99, it.BoardData().Users[1].Security)
			assert.Equal(t, 20, orig.Users[1].Security)
		}),
	}.run(t)
}

func TestBuiltins_misc(t *testing.T) {
	ppeTestCases{
		ppeTest("tokens").withMain(
			call("TOKENIZE", ast.Str("one two;;three  four")),
			let("n", fn("TOKCOUNT")),
			call("GETTOKEN", ast.Var("a")),
			let("b", fn("GETTOKEN")),
			let("rest", fn("TOKENSTR")),
			let("m", fn("TOKCOUNT")),
			let("empty", fn("GETTOKEN")),
		).
			expectVar("N", value.Integer(4)).
			expectVar("A", value.String("one")).
			expectVar("B", value.String("two")).
			expectVar("REST", value.String("three four")).
			expectVar("M", value.Integer(0)).
			expectVar("EMPTY", value.String("")),

		ppeTest("inc and dec builtins").withMain(
			let("n", ast.Int(1)),
			call("INC", ast.Var("n")),
			call("INC", ast.Var("n")),
			call("DEC", ast.Var("n")),
		).expectVar("N", value.Integer(2)),

		ppeTest("log").withMain(
			call("LOG", ast.Str("  entered door"), ast.Var("TRUE")),
		).withOptions(WithEventLog(func(mess string, args ...interface{}) {})),

		ppeTest("no-op flushes").withMain(
			call("KBDFLUSH"),
			call("MDMFLUSH"),
			call("KEYFLUSH"),
			call("RESETDISP"),
			call("STARTDISP", ast.Int(0)),
		),

		ppeTest("unsupported builtin").withMain(
			call("SHELL", ast.Int(0), ast.Int(0), ast.Str("COMMAND.COM"), ast.Str("")),
		).expectError(NotSupportedError("SHELL")),

		ppeTest("unknown builtin").withMain(
			call("FROBNICATE"),
		).expectError(NotSupportedError("FROBNICATE")),

		ppeTest("unsupported function").withMain(
			let("x", fn("CARRIER")),
		).expectError(NotSupportedError("CARRIER")),

		ppeTest("delay zero does not wait").withMain(
			call("DELAY", ast.Int(0)),
			call("DELAY", ast.Int(-5)),
		),

		ppeTest("delay is cancelled with the run").withTimeout(50*time.Millisecond).withMain(
			call("DELAY", ast.Int(1000)),
		).expectError(context.DeadlineExceeded),
	}.run(t)
}

func TestBuiltins_delay(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for a second")
	}
	start := time.Now()
	ppeTest("eighteen ticks").withTimeout(5 * time.Second).withMain(
		call("DELAY", ast.Int(18)),
	).run(t)
	elapsed := time.Since(start)
	assert.True(t, elapsed >= 950*time.Millisecond && elapsed <= 1100*time.Millisecond,
		"expected about 989ms, took %v", elapsed)
}

func TestFunctions(t *testing.T) {
	now := time.Date(2024, time.March, 5, 13, 14, 15, 0, time.UTC)
	ppeTestCases{
		ppeTest("strings").withMain(
			let("len", fn("LEN", ast.Str("hello"))),
			let("lower", fn("LOWER", ast.Str("HeLLo"))),
			let("upper", fn("UPPER", ast.Str("HeLLo"))),
			let("left", fn("LEFT", ast.Str("hello"), ast.Int(7))),
			let("right", fn("RIGHT", ast.Str("hello"), ast.Int(3))),
			let("mid", fn("MID", ast.Str("hello"), ast.Int(2), ast.Int(3))),
			let("instr", fn("INSTR", ast.Str("hello"), ast.Str("ll"))),
			let("missing", fn("INSTR", ast.Str("hello"), ast.Str("z"))),
			let("ltrim", fn("LTRIM", ast.Str("  x  "))),
			let("rtrim", fn("RTRIM", ast.Str("--x--"), ast.Str("-"))),
			let("trim", fn("TRIM", ast.Str("  x  "))),
			let("space", fn("SPACE", ast.Int(3))),
			let("chr", fn("CHR", ast.Int(65))),
			let("asc", fn("ASC", ast.Str("A"))),
			let("str", fn("STRING", ast.Int(12))),
		).
			expectVar("LEN", value.Integer(5)).
			expectVar("LOWER", value.String("hello")).
			expectVar("UPPER", value.String("HELLO")).
			expectVar("LEFT", value.String("hello  ")).
			expectVar("RIGHT", value.String("llo")).
			expectVar("MID", value.String("ell")).
			expectVar("INSTR", value.Integer(3)).
			expectVar("MISSING", value.Integer(0)).
			expectVar("LTRIM", value.String("x  ")).
			expectVar("RTRIM", value.String("--x")).
			expectVar("TRIM", value.String("x")).
			expectVar("SPACE", value.String("   ")).
			expectVar("CHR", value.String("A")).
			expectVar("ASC", value.Integer(65)).
			expectVar("STR", value.String("12")),

		ppeTest("numbers").withMain(
			let("abs", fn("ABS", ast.Int(-4))),
			let("fabs", fn("ABS", ast.Const{Value: value.Double(-1.5)})),
			let("s2i", fn("S2I", ast.Str("ff"), ast.Int(16))),
			let("bad", fn("S2I", ast.Str("zz"), ast.Int(10))),
			let("i2s", fn("I2S", ast.Int(255), ast.Int(16))),
			let("r", fn("RANDOM", ast.Int(0))),
		).
			expectVar("ABS", value.Integer(4)).
			expectVar("FABS", value.Double(1.5)).
			expectVar("S2I", value.Integer(255)).
			expectVar("BAD", value.Integer(0)).
			expectVar("I2S", value.String("FF")).
			expectVar("R", value.Integer(0)),

		ppeTest("random stays in range").withMain(
			let("i", ast.Int(0)),
			ast.Label{Name: "again"},
			let("r", fn("RANDOM", ast.Int(3))),
			ast.If{Cond: bin(value.OpLt, ast.Var("r"), ast.Int(0)), Then: call("STOP")},
			ast.If{Cond: bin(value.OpGt, ast.Var("r"), ast.Int(3)), Then: call("STOP")},
			ast.Inc{Name: "i"},
			ast.If{Cond: bin(value.OpLt, ast.Var("i"), ast.Int(100)), Then: ast.Goto{Label: "again"}},
		).expectVar("I", value.Integer(100)),

		ppeTest("clock").withNow(now).withMain(
			let("d", fn("DATE")),
			let("t", ast.Var("TIME")),
			call("PRINT", ast.Var("d"), ast.Str(" "), ast.Var("t")),
		).
			expectVar("D", value.DateOf(now)).
			expectVar("T", value.TimeOf(now)).
			expectOutput("03-05-24 13:14:15"),

		ppeTest("huge left").withMain(
			let("x", fn("LEFT", ast.Str("hi"), ast.Int(2000000000))),
		).expectError(ErrStringTooLong),

		ppeTest("huge mid").withMain(
			let("x", fn("MID", ast.Str("hi"), ast.Int(1), ast.Int(1<<20))),
		).expectError(ErrStringTooLong),

		ppeTest("huge space").withMain(
			let("x", fn("SPACE", ast.Int(1<<20))),
		).expectError(ErrStringTooLong),

		ppeTest("function arity").withMain(
			let("x", fn("LEN")),
		).expectErrorAs(new(ArityError)),
	}.run(t)
}

func TestRegistry(t *testing.T) {
	b, ok := LookupBuiltin("println")
	if assert.True(t, ok) {
		assert.Equal(t, "PRINTLN", b.Name)
		assert.Equal(t, -1, b.MaxArgs)
	}
	in, ok := LookupBuiltin("INPUTSTR")
	if assert.True(t, ok) {
		assert.True(t, in.Blocks)
	}
	_, ok = LookupBuiltin("FROBNICATE")
	assert.False(t, ok)

	fn, ok := LookupFunction("mid")
	if assert.True(t, ok) {
		assert.Equal(t, 3, fn.MinArgs)
	}

	names := Builtins()
	assert.Contains(t, names, "SHELL")
	assert.Contains(t, names, "FOPEN")
	assert.IsIncreasing(t, names)
}
