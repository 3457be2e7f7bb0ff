package check

import (
	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// CheckBlock checks a statement sequence. The value of the block is the
// value of its trailing expression statement, unit otherwise; every other
// statement is sequenced in front of it with a LetIn binding.
func (e Env) CheckBlock(b *tree.Block) *sym.Expr {
	return e.checkStmts(b.Sp, b.Statements)
}

func (e Env) checkStmts(blockSp source.Span, stmts []tree.Stmt) *sym.Expr {
	if len(stmts) == 0 {
		return sym.UnitExpr(blockSp.AtEnd())
	}
	rest := stmts[1:]
	switch s := stmts[0].(type) {
	case *tree.LetStmt:
		var ty *sym.Ty
		if s.Type != nil {
			ty = e.CheckTreeType(s.Type)
		} else {
			ty = e.FreshTyInfer(s.NameSpan)
		}
		var temps []*Temporary
		var initializer *sym.Expr
		if s.Initializer != nil {
			e, initializer = e.CheckExpr(s.Initializer).ToValue(e, &temps)
			_ = e.RequireAssignable(initializer.Ty, s.Initializer.Span(), ty, BadSubtype{
				Sp:     s.Initializer.Span(),
				Value:  initializer.Ty,
				Target: ty,
			})
		}
		v := sym.NewVariable(sym.KindPlace, s.Name, s.NameSpan, e.Universe)
		body := e.BindVar(v, ty).checkStmts(blockSp, rest)
		return Discharge(temps, &sym.Expr{
			Sp: s.Span().To(body.Sp),
			Ty: body.Ty,
			Kind: &sym.LetInExpr{
				Var:         v,
				VarTy:       ty,
				Initializer: initializer,
				Body:        body,
			},
		})
	case *tree.ExprStmt:
		var temps []*Temporary
		var value *sym.Expr
		e, value = e.CheckExpr(s.Expr).ToValue(e, &temps)
		if len(rest) == 0 {
			return Discharge(temps, value)
		}
		// sequence the statement's value in front of the rest
		drop := &Temporary{
			Var:         sym.NewVariable(sym.KindPlace, IgnoreIdent, s.Span(), e.Universe),
			Ty:          value.Ty,
			Initializer: value,
		}
		temps = append(temps, drop)
		return Discharge(temps, e.checkStmts(blockSp, rest))
	default:
		spew.Dump(stmts[0])
		panic("unreachable")
	}
}
