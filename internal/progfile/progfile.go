// Package progfile loads PPE programs from YAML documents.
//
// A document has four optional top level keys:
//
//	variables:  [{name: I, type: INTEGER}, {name: A, type: STRING, dims: [10]}]
//	procedures: [{name: GREET, params: [...], locals: [...], body: [...]}]
//	functions:  [{name: TWICE, params: [...], returns: INTEGER, body: [...]}]
//	main:       [...]
//
// Statements are single key maps named by their kind, or bare words for the
// kinds that take nothing (return, end, break, continue):
//
//	- label: LOOP
//	- let: {var: I, value: {op: "+", left: {var: I}, right: 1}}
//	- call: {name: PRINTLN, args: ["I = ", {var: I}]}
//	- if: {cond: {op: "<", left: {var: I}, right: 3}, then: {goto: LOOP}}
//	- end
//
// Expressions are scalars, taken as literals, or maps: {var, index},
// {op, left, right}, {op, expr}, {fn, args} and {type, value}.
package progfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/value"
)

// SyntaxError reports a malformed document node.
type SyntaxError struct {
	Name   string
	Line   int
	Column int
	Mess   string
}

func (err *SyntaxError) Error() string {
	if err.Name != "" {
		return fmt.Sprintf("%v:%v:%v: %v", err.Name, err.Line, err.Column, err.Mess)
	}
	return fmt.Sprintf("%v:%v: %v", err.Line, err.Column, err.Mess)
}

// LoadFile reads a program document from the named file.
func LoadFile(name string) (*ast.Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(name, f)
}

// Load reads a program document; name is used only in error messages.
func Load(name string, r io.Reader) (*ast.Program, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err == io.EOF {
		return &ast.Program{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	ld := loader{name: name}
	return ld.program(&doc)
}

// Parse is Load for an in-memory document.
func Parse(name string, data []byte) (*ast.Program, error) {
	return Load(name, bytes.NewReader(data))
}

type loader struct {
	name string
}

// bail panics with a SyntaxError, caught by program.
func (ld loader) bail(n *yaml.Node, mess string, args ...interface{}) {
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	panic(&SyntaxError{ld.name, n.Line, n.Column, mess})
}

func (ld loader) program(doc *yaml.Node) (prg *ast.Program, err error) {
	defer func() {
		if e := recover(); e != nil {
			se, ok := e.(*SyntaxError)
			if !ok {
				panic(e)
			}
			prg, err = nil, se
		}
	}()

	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	prg = &ast.Program{}
	for _, kv := range ld.pairs(root) {
		switch key, val := kv[0].Value, kv[1]; key {
		case "variables":
			prg.Declarations = ld.declarations(val)
		case "procedures":
			for _, n := range ld.seq(val) {
				prg.Procedures = append(prg.Procedures, ld.implementation(n, false))
			}
		case "functions":
			for _, n := range ld.seq(val) {
				prg.Functions = append(prg.Functions, ld.implementation(n, true))
			}
		case "main":
			prg.Main = ld.block(val)
		default:
			ld.bail(kv[0], "unknown program section %q", key)
		}
	}
	return prg, nil
}

// pairs returns the key/value pairs of a mapping node.
func (ld loader) pairs(n *yaml.Node) [][2]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		ld.bail(n, "expected a mapping")
	}
	kvs := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		kvs = append(kvs, [2]*yaml.Node{n.Content[i], n.Content[i+1]})
	}
	return kvs
}

func (ld loader) fields(n *yaml.Node) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node)
	for _, kv := range ld.pairs(n) {
		fields[strings.ToLower(kv[0].Value)] = kv[1]
	}
	return fields
}

func (ld loader) seq(n *yaml.Node) []*yaml.Node {
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Content
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
	}
	ld.bail(n, "expected a sequence")
	return nil
}

func (ld loader) str(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		ld.bail(n, "expected a scalar")
	}
	return n.Value
}

func (ld loader) typ(n *yaml.Node) value.Type {
	t, ok := value.ParseType(ld.str(n))
	if !ok {
		ld.bail(n, "unknown type %q", n.Value)
	}
	return t
}

func (ld loader) declarations(n *yaml.Node) []ast.Declaration {
	var decls []ast.Declaration
	for _, dn := range ld.seq(n) {
		fields := ld.fields(dn)
		var decl ast.Declaration
		if nn := fields["name"]; nn != nil {
			decl.Name = ld.str(nn)
		} else {
			ld.bail(dn, "declaration needs a name")
		}
		decl.Type = value.TypeInteger
		if tn := fields["type"]; tn != nil {
			decl.Type = ld.typ(tn)
		}
		if dims := fields["dims"]; dims != nil {
			decl.Dims = ld.exprs(dims)
			if len(decl.Dims) > 3 {
				ld.bail(dims, "arrays have at most 3 dimensions")
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func (ld loader) implementation(n *yaml.Node, isFunc bool) *ast.Implementation {
	fields := ld.fields(n)
	impl := &ast.Implementation{}
	if nn := fields["name"]; nn != nil {
		impl.Name = ld.str(nn)
	} else {
		ld.bail(n, "procedure needs a name")
	}
	if pn := fields["params"]; pn != nil {
		impl.Params = ld.declarations(pn)
	}
	if ln := fields["locals"]; ln != nil {
		impl.Locals = ld.declarations(ln)
	}
	if rn := fields["returns"]; rn != nil {
		if !isFunc {
			ld.bail(rn, "procedures do not return a value")
		}
		impl.Returns = ld.typ(rn)
	} else if isFunc {
		impl.Returns = value.TypeInteger
	}
	if bn := fields["body"]; bn != nil {
		impl.Block = ld.block(bn)
	}
	return impl
}

func (ld loader) block(n *yaml.Node) ast.Block {
	return ast.Block{Statements: ld.statements(n)}
}

func (ld loader) statements(n *yaml.Node) []ast.Statement {
	nodes := ld.seq(n)
	stmts := make([]ast.Statement, 0, len(nodes))
	for _, sn := range nodes {
		stmts = append(stmts, ld.statement(sn))
	}
	return stmts
}

func (ld loader) statement(n *yaml.Node) ast.Statement {
	if n.Kind == yaml.ScalarNode {
		switch strings.ToLower(n.Value) {
		case "return":
			return ast.Return{}
		case "end":
			return ast.End{}
		case "break":
			return ast.Break{}
		case "continue":
			return ast.Continue{}
		}
		ld.bail(n, "unknown statement %q", n.Value)
	}

	kvs := ld.pairs(n)
	if len(kvs) != 1 {
		ld.bail(n, "a statement has exactly one kind, have %v keys", len(kvs))
	}
	kind, arg := strings.ToLower(kvs[0][0].Value), kvs[0][1]
	switch kind {
	case "comment":
		return ast.Comment{Text: ld.str(arg)}
	case "label":
		return ast.Label{Name: ld.str(arg)}
	case "goto":
		return ast.Goto{Label: ld.str(arg)}
	case "gosub":
		return ast.Gosub{Label: ld.str(arg)}
	case "return":
		return ast.Return{}
	case "end":
		return ast.End{}
	case "inc":
		return ast.Inc{Name: ld.str(arg)}
	case "dec":
		return ast.Dec{Name: ld.str(arg)}

	case "let":
		fields := ld.fields(arg)
		vn, valn := fields["var"], fields["value"]
		if vn == nil || valn == nil {
			ld.bail(arg, "let needs var and value")
		}
		ref := ast.VarRef{Name: ld.str(vn)}
		if in := fields["index"]; in != nil {
			ref.Index = ld.exprs(in)
		}
		return ast.Let{Target: ref, Value: ld.expr(valn)}

	case "call":
		name, args := ld.invocation(arg)
		return ast.Call{Name: name, Args: args}

	case "proc":
		name, args := ld.invocation(arg)
		return ast.ProcedureCall{Name: name, Args: args}

	case "if":
		fields := ld.fields(arg)
		cn := fields["cond"]
		if cn == nil {
			ld.bail(arg, "if needs a cond")
		}
		if tn := fields["then"]; tn != nil && tn.Kind != yaml.SequenceNode && fields["else"] == nil {
			return ast.If{Cond: ld.expr(cn), Then: ld.statement(tn)}
		}
		stmt := ast.IfThen{Cond: ld.expr(cn)}
		if tn := fields["then"]; tn != nil {
			stmt.Then = ld.statements(tn)
		}
		if en := fields["else"]; en != nil {
			stmt.Else = ld.statements(en)
		}
		return stmt

	case "while":
		cond, body := ld.loop(arg)
		return ast.While{Cond: cond, Body: body}
	case "dowhile":
		cond, body := ld.loop(arg)
		return ast.DoWhile{Cond: cond, Body: body}
	case "for":
		fields := ld.fields(arg)
		stmt := ast.For{}
		if vn := fields["var"]; vn != nil {
			stmt.Var = ld.str(vn)
		}
		if fn := fields["from"]; fn != nil {
			stmt.From = ld.expr(fn)
		}
		if tn := fields["to"]; tn != nil {
			stmt.To = ld.expr(tn)
		}
		if sn := fields["step"]; sn != nil {
			stmt.Step = ld.expr(sn)
		}
		if bn := fields["body"]; bn != nil {
			stmt.Statements = ld.statements(bn)
		}
		return stmt
	case "select":
		fields := ld.fields(arg)
		stmt := ast.Select{}
		if en := fields["expr"]; en != nil {
			stmt.Expr = ld.expr(en)
		}
		if cn := fields["cases"]; cn != nil {
			stmt.Cases = ld.statements(cn)
		}
		return stmt
	case "block":
		return ast.BlockStmt{Statements: ld.statements(arg)}
	case "break":
		return ast.Break{}
	case "continue":
		return ast.Continue{}
	}
	ld.bail(kvs[0][0], "unknown statement %q", kind)
	return nil
}

func (ld loader) loop(n *yaml.Node) (ast.Expression, []ast.Statement) {
	fields := ld.fields(n)
	var cond ast.Expression
	var body []ast.Statement
	if cn := fields["cond"]; cn != nil {
		cond = ld.expr(cn)
	}
	if bn := fields["body"]; bn != nil {
		body = ld.statements(bn)
	}
	return cond, body
}

// invocation reads either a bare name or a {name, args} map.
func (ld loader) invocation(n *yaml.Node) (string, []ast.Expression) {
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	fields := ld.fields(n)
	nn := fields["name"]
	if nn == nil {
		ld.bail(n, "call needs a name")
	}
	var args []ast.Expression
	if an := fields["args"]; an != nil {
		args = ld.exprs(an)
	}
	return ld.str(nn), args
}

func (ld loader) exprs(n *yaml.Node) []ast.Expression {
	if n.Kind != yaml.SequenceNode {
		return []ast.Expression{ld.expr(n)}
	}
	exprs := make([]ast.Expression, len(n.Content))
	for i, en := range n.Content {
		exprs[i] = ld.expr(en)
	}
	return exprs
}

func (ld loader) expr(n *yaml.Node) ast.Expression {
	switch n.Kind {
	case yaml.ScalarNode:
		return ast.Const{Value: ld.literal(n)}
	case yaml.MappingNode:
	default:
		ld.bail(n, "expected an expression")
	}

	fields := ld.fields(n)
	switch {
	case fields["var"] != nil:
		name := ld.str(fields["var"])
		if in := fields["index"]; in != nil {
			return ast.ArrayElement{Name: name, Index: ld.exprs(in)}
		}
		return ast.Identifier{Name: name}

	case fields["fn"] != nil:
		var args []ast.Expression
		if an := fields["args"]; an != nil {
			args = ld.exprs(an)
		}
		return ast.FunctionCall{Name: ld.str(fields["fn"]), Args: args}

	case fields["op"] != nil:
		opn := fields["op"]
		if en := fields["expr"]; en != nil {
			op, ok := value.ParseUnaryOp(ld.str(opn))
			if !ok {
				ld.bail(opn, "unknown unary operator %q", opn.Value)
			}
			return ast.Unary{Op: op, Expr: ld.expr(en)}
		}
		ln, rn := fields["left"], fields["right"]
		if ln == nil || rn == nil {
			ld.bail(n, "binary operator needs left and right")
		}
		op, ok := value.ParseBinaryOp(ld.str(opn))
		if !ok {
			ld.bail(opn, "unknown binary operator %q", opn.Value)
		}
		return ast.Binary{Op: op, Left: ld.expr(ln), Right: ld.expr(rn)}

	case fields["type"] != nil:
		t := ld.typ(fields["type"])
		vn := fields["value"]
		if vn == nil {
			return ast.Const{Value: value.Default(t)}
		}
		v, err := value.Convert(ld.literal(vn), t)
		if err != nil {
			ld.bail(vn, "%v", err)
		}
		return ast.Const{Value: v}
	}
	ld.bail(n, "expected var, fn, op or type")
	return nil
}

func (ld loader) literal(n *yaml.Node) value.Value {
	if n.Kind != yaml.ScalarNode {
		ld.bail(n, "expected a literal")
	}
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			ld.bail(n, "invalid boolean %q", n.Value)
		}
		return value.Boolean(b)
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			ld.bail(n, "invalid integer %q", n.Value)
		}
		return value.Integer(int32(i))
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			ld.bail(n, "invalid number %q", n.Value)
		}
		return value.Double(f)
	}
	return value.String(n.Value)
}
