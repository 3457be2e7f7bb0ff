package compile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

func tspan(n int) source.Span {
	return source.Span{File: "test.duna", Start: n, End: n + 1}
}

func tbase(n int) tree.ExprBase {
	return tree.ExprBase{NodeBase: tree.NodeBase{Sp: tspan(n)}}
}

func tint(n int, text string) tree.Expr {
	return &tree.LiteralExpr{ExprBase: tbase(n), Kind: tree.LiteralInteger, Text: text}
}

func tstr(n int, text string) tree.Expr {
	return &tree.LiteralExpr{ExprBase: tbase(n), Kind: tree.LiteralString, Text: text}
}

func tname(n int, name string) tree.Expr {
	return &tree.NameExpr{ExprBase: tbase(n), Id: NewIdentifier(name)}
}

func tbody(stmts ...tree.Stmt) *tree.Block {
	return &tree.Block{NodeBase: tree.NodeBase{Sp: tspan(0)}, Statements: stmts}
}

func tstmt(x tree.Expr) tree.Stmt {
	return &tree.ExprStmt{StmtBase: tree.StmtBase{NodeBase: tree.NodeBase{Sp: x.Span()}}, Expr: x}
}

func anyContains(res *Result, substr string) bool {
	for _, d := range res.Diagnostics {
		if diagContains(d, substr) {
			return true
		}
	}
	return false
}

func diagContains(d *diag.Diagnostic, substr string) bool {
	if strings.Contains(d.Message, substr) {
		return true
	}
	for _, child := range d.Children {
		if diagContains(child, substr) {
			return true
		}
	}
	return false
}

// ========================

func TestUnitChecksBodies(t *testing.T) {
	unit := NewUnit(NewIdentifier("main"))
	fn := sym.NewFunction(NewIdentifier("answer"), tspan(90), tspan(90), nil, &sym.Signature{
		Output: sym.I64(),
	})
	unit.AddItem(fn)
	add := &tree.BinaryExpr{ExprBase: tbase(1), Op: tree.BinaryOpAdd, OpSpan: tspan(1),
		Left: tint(2, "40"), Right: tint(3, "2")}
	unit.AddBody(fn, tbody(tstmt(add)))

	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
	assert.Contains(t, res.Exprs, fn)
}

func TestUnitReportsBodyErrors(t *testing.T) {
	unit := NewUnit(NewIdentifier("main"))
	fn := sym.NewFunction(NewIdentifier("wrong"), tspan(90), tspan(90), nil, &sym.Signature{
		Output: sym.Bool(),
	})
	unit.AddItem(fn)
	unit.AddBody(fn, tbody(tstmt(tint(1, "1"))))

	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.HasErrors())
	assert.True(t, anyContains(res, "does not match the declared return type"))
}

func TestStructFieldCycleIsRejected(t *testing.T) {
	a := sym.NewAggregate(NewIdentifier("A"), tspan(1), tspan(1), sym.StructStyle)
	b := sym.NewAggregate(NewIdentifier("B"), tspan(2), tspan(2), sym.StructStyle)
	a.Fields = []*sym.Field{{Owner: a, Name: NewIdentifier("b"), Sp: tspan(1), Ty: sym.Named(b, nil)}}
	b.Fields = []*sym.Field{{Owner: b, Name: NewIdentifier("a"), Sp: tspan(2), Ty: sym.Named(a, nil)}}

	unit := NewUnit(NewIdentifier("main"))
	unit.AddItem(a)
	unit.AddItem(b)
	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	assert.Len(t, res.Diagnostics, 1)
	assert.True(t, anyContains(res, "contains itself by value"))
}

func TestClassSelfReferenceIsAllowed(t *testing.T) {
	// a class field holds a reference, so the type still has finite size
	c := sym.NewAggregate(NewIdentifier("Node"), tspan(1), tspan(1), sym.ClassStyle)
	c.Fields = []*sym.Field{{Owner: c, Name: NewIdentifier("next"), Sp: tspan(1), Ty: sym.Named(c, nil)}}

	unit := NewUnit(NewIdentifier("main"))
	unit.AddItem(c)
	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
}

func TestSharedStructFieldIsNotInline(t *testing.T) {
	s := sym.NewAggregate(NewIdentifier("S"), tspan(1), tspan(1), sym.StructStyle)
	s.Fields = []*sym.Field{{Owner: s, Name: NewIdentifier("self"), Sp: tspan(1),
		Ty: sym.Qualified(sym.Shared(nil), sym.Named(s, nil))}}

	unit := NewUnit(NewIdentifier("main"))
	unit.AddItem(s)
	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
}

func TestWhereClauseFailureSurfacesInUnit(t *testing.T) {
	// id[T](x: T) -> T where T is copy, called with a String argument
	tv := sym.NewVariable(sym.KindTy, NewIdentifier("T"), tspan(90), sym.RootUniverse)
	x := sym.NewVariable(sym.KindPlace, NewIdentifier("x"), tspan(90), sym.RootUniverse)
	id := sym.NewFunction(NewIdentifier("id"), tspan(90), tspan(90), nil, &sym.Signature{
		Variables:    []*sym.Variable{tv},
		OwnCount:     1,
		InputPlaces:  []*sym.Variable{x},
		Inputs:       []*sym.Ty{sym.TyVar(tv)},
		Output:       sym.TyVar(tv),
		WhereClauses: []sym.WhereClause{{Predicate: sym.PredCopy, Subject: sym.TyVar(tv)}},
	})
	main := sym.NewFunction(NewIdentifier("main"), tspan(91), tspan(91), nil, &sym.Signature{
		Output: sym.StringTy(),
	})

	unit := NewUnit(NewIdentifier("main"))
	unit.AddItem(id)
	unit.AddItem(main)
	give := &tree.PermExpr{ExprBase: tbase(1), Op: tree.PermissionOpGive, Value: tname(2, "x")}
	unit.AddBody(id, tbody(tstmt(give)))
	call := &tree.CallExpr{ExprBase: tbase(3), Callee: tname(4, "id"), Args: []tree.Expr{tstr(5, `"hi"`)}}
	unit.AddBody(main, tbody(tstmt(call)))

	res, err := unit.Check(context.Background())
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	assert.True(t, anyContains(res, "copy"))
}
