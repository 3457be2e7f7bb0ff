package check

import (
	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// Temporary is a checker-synthesized binding sequencing an intermediate
// value before its first use. Temporaries ride along on ExprResults and
// are discharged as LetIn wrappers at the nearest expression boundary.
type Temporary struct {
	Var         *sym.Variable
	Ty          *sym.Ty
	Initializer *sym.Expr
}

// ExprResult is the ephemeral outcome of checking one subexpression. It is
// not part of the output tree: whoever consumes it coerces it to the form
// they need and takes over its pending temporaries.
type ExprResult struct {
	Temporaries []*Temporary
	Sp          source.Span
	Kind        ResultKind
}

type ResultKind interface {
	_ResultKind()
}

// PlaceResult is a checked place expression.
type PlaceResult struct {
	Place *sym.PlaceExpr
}

// ValueResult is a checked value expression.
type ValueResult struct {
	Expr *sym.Expr
}

// MethodResult is a partially applied method: a receiver and a function,
// waiting for its call parentheses. Self is nil for a static reference.
// Prefix holds generic arguments carried in by the resolution path
// (`Class[T].method`); Own holds arguments applied to the method itself
// (`method[U]`). Nil means not supplied, to be inferred at the call.
type MethodResult struct {
	Self     *sym.PlaceExpr
	Function *sym.Function
	Prefix   []sym.GenericTerm
	Own      []sym.GenericTerm
	IdSp     source.Span
}

// OtherResult is a name resolution that is not an expression, e.g. a
// module or class reference on its way to a member access.
type OtherResult struct {
	Res NameResolution
}

func (*PlaceResult) _ResultKind()  {}
func (*ValueResult) _ResultKind()  {}
func (*MethodResult) _ResultKind() {}
func (*OtherResult) _ResultKind()  {}

func valueResult(sp source.Span, expr *sym.Expr) ExprResult {
	return ExprResult{Sp: sp, Kind: &ValueResult{Expr: expr}}
}

func placeResult(sp source.Span, place *sym.PlaceExpr) ExprResult {
	return ExprResult{Sp: sp, Kind: &PlaceResult{Place: place}}
}

func errResult(sp source.Span, r diag.Reported) ExprResult {
	return valueResult(sp, sym.ErrExpr(sp, r))
}

// ========================

// adoptTemporaries transfers pending temporaries into the consumer's list
// and binds them into the environment so their places can be typed.
func (e Env) adoptTemporaries(ts []*Temporary, temps *[]*Temporary) Env {
	for _, t := range ts {
		e = e.BindVar(t.Var, t.Ty)
	}
	*temps = append(*temps, ts...)
	return e
}

// ToValue coerces the result to a value expression. A place is read under
// an implicit `ref` so the by-value use is explicit in the output tree.
// Pending temporaries transfer to temps.
func (r ExprResult) ToValue(e Env, temps *[]*Temporary) (Env, *sym.Expr) {
	e = e.adoptTemporaries(r.Temporaries, temps)
	switch k := r.Kind.(type) {
	case *ValueResult:
		return e, k.Expr
	case *PlaceResult:
		return e, refPlace(k.Place)
	case *MethodResult:
		rep := e.Report(diag.Error(r.Sp, "missing call to method `%v`", k.Function).
			Label(diag.LevelInfo, k.Function.NameSp, "`%v` declared here", k.Function))
		return e, sym.ErrExpr(r.Sp, rep)
	case *OtherResult:
		rep := e.Report(diag.Error(r.Sp, "expected an expression, found %s", k.Res.Describe()))
		return e, sym.ErrExpr(r.Sp, rep)
	default:
		spew.Dump(r.Kind)
		panic("unreachable")
	}
}

// ToPlace coerces the result to a place expression, materializing a
// temporary when the result is a plain value.
func (r ExprResult) ToPlace(e Env, temps *[]*Temporary) (Env, *sym.PlaceExpr) {
	e = e.adoptTemporaries(r.Temporaries, temps)
	switch k := r.Kind.(type) {
	case *PlaceResult:
		return e, k.Place
	case *ValueResult:
		return e.materialize(k.Expr, temps)
	case *MethodResult:
		rep := e.Report(diag.Error(r.Sp, "missing call to method `%v`", k.Function).
			Label(diag.LevelInfo, k.Function.NameSp, "`%v` declared here", k.Function))
		return e, sym.ErrPlaceExpr(r.Sp, rep)
	case *OtherResult:
		rep := e.Report(diag.Error(r.Sp, "expected a place, found %s", k.Res.Describe()))
		return e, sym.ErrPlaceExpr(r.Sp, rep)
	default:
		spew.Dump(r.Kind)
		panic("unreachable")
	}
}

// materialize binds expr to a fresh temporary and yields its place.
func (e Env) materialize(expr *sym.Expr, temps *[]*Temporary) (Env, *sym.PlaceExpr) {
	v := sym.NewVariable(sym.KindPlace, IgnoreIdent, expr.Sp, e.Universe)
	tmp := &Temporary{Var: v, Ty: expr.Ty, Initializer: expr}
	*temps = append(*temps, tmp)
	e = e.BindVar(v, expr.Ty)
	return e, &sym.PlaceExpr{Sp: expr.Sp, Ty: expr.Ty, Kind: &sym.VarPlaceExpr{Var: v}}
}

func refPlace(place *sym.PlaceExpr) *sym.Expr {
	if _, isErr := place.Kind.(*sym.ErrorPlaceExpr); isErr {
		return place.ToExpr()
	}
	return &sym.Expr{
		Sp:   place.Sp,
		Ty:   place.Ty.SharedFrom(place.ToPlace()),
		Kind: &sym.PermissionOpExpr{Op: tree.PermissionOpRef, Place: place},
	}
}

// Discharge wraps expr in LetIn bindings for the collected temporaries,
// outermost first, so evaluation order matches creation order.
func Discharge(temps []*Temporary, expr *sym.Expr) *sym.Expr {
	for i := len(temps) - 1; i >= 0; i-- {
		tmp := temps[i]
		expr = &sym.Expr{
			Sp: expr.Sp,
			Ty: expr.Ty,
			Kind: &sym.LetInExpr{
				Var:         tmp.Var,
				VarTy:       tmp.Ty,
				Initializer: tmp.Initializer,
				Body:        expr,
			},
		}
	}
	return expr
}
