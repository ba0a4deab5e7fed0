package ppe

import (
	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/value"
)

func registerUserBuiltins() {
	register(
		Builtin{Name: "GETUSER", Mutates: true, Proc: getuser},
		Builtin{Name: "PUTUSER", Mutates: true, Proc: putuser},
		Builtin{Name: "GETALTUSER", MinArgs: 1, MaxArgs: 1, Mutates: true, Proc: getaltuser},
		Builtin{Name: "RDUNET", MinArgs: 1, MaxArgs: 1, Proc: rdunet},
		Builtin{Name: "WRUNET", MinArgs: 6, MaxArgs: 6, Mutates: true, Proc: wrunet},
	)
}

// User record fields mirrored into program variables.
const (
	uPageLen = "U_PAGELEN"
	uPwd     = "U_PWD"
	uPwdExp  = "U_PWDEXP"
	uScroll  = "U_SCROLL"
	uSec     = "U_SEC"
	uCity    = "U_CITY"
	uAddr    = "U_ADDR"
	uBDPhone = "U_BDPHONE"
	uHVPhone = "U_HVPHONE"
	uCmnt1   = "U_CMNT1"
	uCmnt2   = "U_CMNT2"
	uExpert  = "U_EXPERT"
)

// mirrorUser copies user i into the U_* variables of frame fr.
func (it *Interpreter) mirrorUser(fr *frame, i int) {
	u, err := it.data.User(i)
	it.haltif(err)
	it.setVar(fr, uPageLen, value.Integer(u.PageLen))
	it.setVar(fr, uPwd, value.String(u.Password))
	it.setVar(fr, uPwdExp, value.Date(u.PasswordExpire))
	it.setVar(fr, uScroll, value.Boolean(u.Scroll))
	it.setVar(fr, uSec, value.Integer(u.Security))
	it.setVar(fr, uCity, value.String(u.City))
	lines := u.AddressLines()
	it.setVar(fr, uAddr, value.Strings(lines[:]...))
	it.setVar(fr, uBDPhone, value.String(u.BusDataPhone))
	it.setVar(fr, uHVPhone, value.String(u.HomeVoicePhone))
	it.setVar(fr, uCmnt1, value.String(u.Comment))
	it.setVar(fr, uCmnt2, value.String(u.SysopComment))
	it.setVar(fr, uExpert, value.Boolean(u.ExpertMode))
	it.mirrorOf = i
}

// foldUser copies the U_* variables back into u, taking each from the
// current frame, or the main frame where the current one has none.
func (it *Interpreter) foldUser(u *icy.User) {
	if v := it.userVar(uPageLen); v != nil {
		u.PageLen = it.intOf(v)
	}
	if v := it.userVar(uPwd); v != nil {
		u.Password = v.String()
	}
	if v := it.userVar(uPwdExp); v != nil {
		u.PasswordExpire = int32(it.intOf(v))
	}
	if v := it.userVar(uScroll); v != nil {
		u.Scroll = it.boolOf(v)
	}
	if v := it.userVar(uSec); v != nil {
		u.Security = it.intOf(v)
	}
	if v := it.userVar(uCity); v != nil {
		u.City = v.String()
	}
	if arr, ok := it.userVar(uAddr).(*value.Array); ok {
		var lines [6]string
		for i := range lines {
			if i < len(arr.Data) {
				lines[i] = arr.Data[i].String()
			}
		}
		if lines != u.AddressLines() {
			u.SetAddressLines(lines)
		}
	}
	if v := it.userVar(uBDPhone); v != nil {
		u.BusDataPhone = v.String()
	}
	if v := it.userVar(uHVPhone); v != nil {
		u.HomeVoicePhone = v.String()
	}
	if v := it.userVar(uCmnt1); v != nil {
		u.Comment = v.String()
	}
	if v := it.userVar(uCmnt2); v != nil {
		u.SysopComment = v.String()
	}
	if v := it.userVar(uExpert); v != nil {
		u.ExpertMode = it.boolOf(v)
	}
}

func (it *Interpreter) userVar(name string) value.Value {
	key := varKey(name)
	if v, ok := it.top().vars[key]; ok {
		return v
	}
	return it.frames[0].vars[key]
}

// setVar stores v in fr, converting it to any declared type.
func (it *Interpreter) setVar(fr *frame, name string, v value.Value) {
	key := varKey(name)
	if d, declared := fr.decls[key]; declared && len(d.dims) == 0 {
		cv, err := value.Convert(v, d.typ)
		it.haltif(err)
		v = cv
	}
	fr.vars[key] = v
}

func (it *Interpreter) intOf(v value.Value) int {
	n, err := value.Int64(v)
	it.haltif(err)
	return int(n)
}

func (it *Interpreter) boolOf(v value.Value) bool {
	b, err := value.Truthy(v)
	it.haltif(err)
	return b
}

func getuser(it *Interpreter, _ []ast.Expression) error {
	u, err := it.data.Current()
	if err != nil {
		return err
	}
	scratch := *u
	it.scratch = &scratch
	it.mirrorUser(it.top(), it.data.CurrentUser)
	return nil
}

func putuser(it *Interpreter, _ []ast.Expression) error {
	if it.scratch == nil {
		it.logf("#", "putuser without getuser")
		return nil
	}
	if it.mirrorOf == it.data.CurrentUser {
		it.foldUser(it.scratch)
	}
	u, err := it.data.Current()
	if err != nil {
		return err
	}
	*u = *it.scratch
	it.scratch = nil
	return nil
}

// getaltuser takes a 1-based user number.
func getaltuser(it *Interpreter, args []ast.Expression) error {
	n := it.evalInt(args[0])
	if _, err := it.data.User(n - 1); err != nil {
		return err
	}
	it.mirrorUser(it.top(), n-1)
	return nil
}

func rdunet(it *Interpreter, args []ast.Expression) error {
	node, err := it.data.Node(it.evalInt(args[0]))
	if err != nil {
		return err
	}
	it.node = *node
	return nil
}

func wrunet(it *Interpreter, args []ast.Expression) error {
	n := it.evalInt(args[0])
	entry := icy.Node{
		Status:    it.evalString(args[1]),
		Name:      it.evalString(args[2]),
		City:      it.evalString(args[3]),
		Operation: it.evalString(args[4]),
	}
	message := it.evalString(args[5])

	node, err := it.data.Node(n)
	if err != nil {
		return err
	}
	*node = entry

	if message == "" {
		return nil
	}
	if bc, ok := it.ec.(Broadcaster); ok {
		return bc.Broadcast(n, message)
	}
	it.logf("#", "broadcast to node %v: %v", n, message)
	return nil
}
