package check

import (
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// CheckExpr checks one syntax expression. Subtyping and predicate
// obligations it discovers are spawned onto the runtime; the result carries
// the typed expression plus any temporaries still waiting to be discharged.
func (e Env) CheckExpr(x tree.Expr) ExprResult {
	sp := x.Span()
	switch x := x.(type) {
	case *tree.LiteralExpr:
		return e.checkLiteral(x)
	case *tree.TupleExpr:
		return e.checkTuple(x)
	case *tree.BinaryExpr:
		return e.checkBinary(x)
	case *tree.UnaryExpr:
		return e.checkUnary(x)
	case *tree.NameExpr:
		res, err := e.ResolveName(x.Id, sp)
		if err != nil {
			return errResult(sp, reported(err))
		}
		return e.resolutionResult(res, sp)
	case *tree.DotExpr:
		return e.checkDot(x)
	case *tree.SquareExpr:
		return e.checkSquare(x)
	case *tree.CallExpr:
		return e.checkCall(x)
	case *tree.ReturnExpr:
		return e.checkReturn(x)
	case *tree.AwaitExpr:
		return e.checkAwait(x)
	case *tree.IfExpr:
		return e.checkIf(x)
	case *tree.PermExpr:
		return e.checkPermOp(x)
	case *tree.BlockExpr:
		return valueResult(sp, e.CheckBlock(x.Block))
	default:
		spew.Dump(x)
		panic("unreachable")
	}
}

// CheckValueExpr checks an expression in value position and discharges its
// temporaries, yielding a self-contained typed expression.
func (e Env) CheckValueExpr(x tree.Expr) (Env, *sym.Expr) {
	var temps []*Temporary
	e, expr := e.CheckExpr(x).ToValue(e, &temps)
	return e, Discharge(temps, expr)
}

// ========================

func (e Env) checkLiteral(x *tree.LiteralExpr) ExprResult {
	sp := x.Span()
	switch x.Kind {
	case tree.LiteralBoolean:
		return valueResult(sp, sym.BoolExpr(sp, x.Text == "true"))
	case tree.LiteralInteger:
		digits := strings.ReplaceAll(x.Text, "_", "")
		bits, err := strconv.ParseUint(digits, 0, 64)
		if err != nil {
			return errResult(sp, e.Report(diag.Error(sp, "integer literal `%s` is out of range", x.Text)))
		}
		ty := e.FreshTyInfer(sp)
		_ = e.RequireNumericType(ty, sp, NumericTypeExpected{Sp: sp, Ty: ty})
		return valueResult(sp, &sym.Expr{Sp: sp, Ty: ty, Kind: &sym.IntLiteral{Bits: bits}})
	case tree.LiteralString:
		return e.checkStringLiteral(sp, x.Text)
	default:
		spew.Dump(x)
		panic("unreachable")
	}
}

// checkStringLiteral desugars `"..."` into a call to `String.literal` over
// two temporaries holding the raw bytes and their length.
func (e Env) checkStringLiteral(sp source.Span, text string) ExprResult {
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	data := []byte(text)

	dataTy := sym.Named(sym.PointerStruct(), []sym.GenericTerm{sym.U8()})
	dataTmp := e.freshTemporary(sp, dataTy, &sym.ByteLiteral{Data: data})
	lenTmp := e.freshTemporary(sp, sym.U64(), &sym.IntLiteral{Bits: uint64(len(data))})

	call := &sym.Expr{
		Sp: sp,
		Ty: sym.StringTy(),
		Kind: &sym.CallExpr{
			Function: sym.StringLiteralFn(),
			Args:     []*sym.Variable{dataTmp.Var, lenTmp.Var},
		},
	}
	return ExprResult{
		Temporaries: []*Temporary{dataTmp, lenTmp},
		Sp:          sp,
		Kind:        &ValueResult{Expr: call},
	}
}

func (e Env) checkTuple(x *tree.TupleExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	elems := make([]*sym.Expr, len(x.Elems))
	tys := make([]sym.GenericTerm, len(x.Elems))
	for i, elem := range x.Elems {
		e, elems[i] = e.CheckExpr(elem).ToValue(e, &temps)
		tys[i] = elems[i].Ty
	}
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   sym.Tuple(tys),
			Kind: &sym.TupleExpr{Elems: elems},
		}},
	}
}

// ========================

func (e Env) checkBinary(x *tree.BinaryExpr) ExprResult {
	switch x.Op {
	case tree.BinaryOpAssign:
		return e.checkAssign(x)
	case tree.BinaryOpAndAnd, tree.BinaryOpOrOr:
		return e.checkShortCircuit(x)
	default:
		return e.checkScalarOp(x)
	}
}

func (e Env) checkAssign(x *tree.BinaryExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	e, place := e.CheckExpr(x.Left).ToPlace(e, &temps)
	e, value := e.CheckExpr(x.Right).ToValue(e, &temps)
	_ = e.RequireAssignable(value.Ty, x.Right.Span(), place.Ty, InvalidAssignmentType{
		TargetSp: x.Left.Span(),
		ValueSp:  x.Right.Span(),
	})
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   sym.Unit(),
			Kind: &sym.AssignExpr{Place: place, Value: value},
		}},
	}
}

// checkShortCircuit desugars `a && b` into
// `if a { if b { true } else { false } } else { false }` and `a || b` into
// `if a { true } else { if b { true } else { false } }`. The right operand's
// temporaries stay inside its arm so they only evaluate when the arm is
// taken.
func (e Env) checkShortCircuit(x *tree.BinaryExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	e, left := e.CheckExpr(x.Left).ToValue(e, &temps)
	e.requireBool(left, x.Left.Span())

	var rightTemps []*Temporary
	e, right := e.CheckExpr(x.Right).ToValue(e, &rightTemps)
	e.requireBool(right, x.Right.Span())
	inner := sym.IfThenElse(sp, sym.Bool(), right, sym.BoolExpr(sp, true), sym.BoolExpr(sp, false))
	inner = Discharge(rightTemps, inner)

	var expr *sym.Expr
	switch x.Op {
	case tree.BinaryOpAndAnd:
		expr = sym.IfThenElse(sp, sym.Bool(), left, inner, sym.BoolExpr(sp, false))
	case tree.BinaryOpOrOr:
		expr = sym.IfThenElse(sp, sym.Bool(), left, sym.BoolExpr(sp, true), inner)
	default:
		panic("unreachable")
	}
	return ExprResult{Temporaries: temps, Sp: sp, Kind: &ValueResult{Expr: expr}}
}

func (e Env) checkScalarOp(x *tree.BinaryExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	e, left := e.CheckExpr(x.Left).ToValue(e, &temps)
	e, right := e.CheckExpr(x.Right).ToValue(e, &temps)

	resultTy := sym.Bool()
	switch x.Op {
	case tree.BinaryOpAdd, tree.BinaryOpSub, tree.BinaryOpMul, tree.BinaryOpDiv:
		resultTy = left.Ty
	case tree.BinaryOpGt, tree.BinaryOpLt, tree.BinaryOpGte, tree.BinaryOpLte, tree.BinaryOpEq:
		// operands must be of the same primitive scalar type, equality
		// included
	default:
		spew.Dump(x.Op)
		panic("unreachable")
	}

	e.Spawn("operand-numeric", func(e Env) {
		_ = e.RequireNumericType(left.Ty, x.Left.Span(), OperatorRequiresNumericType{
			Op: x.Op, OpSp: x.OpSpan, ArgSp: x.Left.Span(), Ty: left.Ty,
		})
	})
	e.Spawn("operand-numeric", func(e Env) {
		_ = e.RequireNumericType(right.Ty, x.Right.Span(), OperatorRequiresNumericType{
			Op: x.Op, OpSp: x.OpSpan, ArgSp: x.Right.Span(), Ty: right.Ty,
		})
	})
	e.Spawn("operand-types-agree", func(e Env) {
		_ = e.RequireEqualTypes(left.Ty, right.Ty, x.OpSpan, OperatorArgumentsMustHaveSameType{
			Op: x.Op, OpSp: x.OpSpan, LeftSp: x.Left.Span(), RightSp: x.Right.Span(),
		})
	})

	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   resultTy,
			Kind: &sym.BinaryOpExpr{Op: x.Op, Left: left, Right: right},
		}},
	}
}

func (e Env) checkUnary(x *tree.UnaryExpr) ExprResult {
	sp := x.Span()
	switch x.Op {
	case tree.UnaryOpNot:
		var temps []*Temporary
		e, operand := e.CheckExpr(x.Operand).ToValue(e, &temps)
		e.requireBool(operand, x.Operand.Span())
		return ExprResult{
			Temporaries: temps,
			Sp:          sp,
			Kind: &ValueResult{Expr: &sym.Expr{
				Sp:   sp,
				Ty:   sym.Bool(),
				Kind: &sym.NotExpr{Operand: operand},
			}},
		}
	case tree.UnaryOpNegate:
		// signed negation needs a numeric story for literals first
		panic("unary negation is not supported yet")
	default:
		spew.Dump(x.Op)
		panic("unreachable")
	}
}

func (e Env) requireBool(expr *sym.Expr, sp source.Span) {
	_ = e.RequireAssignable(expr.Ty, sp, sym.Bool(), BooleanTypeExpected{Sp: sp, Ty: expr.Ty})
}

// ========================

// resolutionResult turns a lexical resolution into an expression result. A
// local variable becomes a place; a function waits for its receiver or call.
func (e Env) resolutionResult(res NameResolution, sp source.Span) ExprResult {
	switch s := res.Sym.(type) {
	case *sym.Variable:
		if s.Kind != sym.KindPlace {
			return errResult(sp, e.Report(
				diag.Error(sp, "generic parameter `%v` is not an expression", s)))
		}
		ty, ok := e.Scope.VarTy(s)
		if !ok {
			spew.Dump(s)
			panic("place variable has no type in scope")
		}
		return placeResult(sp, &sym.PlaceExpr{Sp: sp, Ty: ty, Kind: &sym.VarPlaceExpr{Var: s}})
	case *sym.Function:
		return ExprResult{Sp: sp, Kind: &MethodResult{
			Function: s,
			Prefix:   res.Generics,
			IdSp:     sp,
		}}
	case *sym.Aggregate, *sym.Module, sym.Primitive:
		return ExprResult{Sp: sp, Kind: &OtherResult{Res: res}}
	default:
		spew.Dump(res.Sym)
		panic("unreachable")
	}
}

func (e Env) checkDot(x *tree.DotExpr) ExprResult {
	owner := e.CheckExpr(x.Owner)
	if other, ok := owner.Kind.(*OtherResult); ok {
		res, applies, err := e.ResolveRelativeID(other.Res, x.Id, x.IdSpan)
		if err != nil {
			return errResult(x.IdSpan, reported(err))
		}
		if applies {
			out := e.resolutionResult(res, x.IdSpan)
			out.Temporaries = append(owner.Temporaries, out.Temporaries...)
			return out
		}
		return errResult(x.IdSpan, e.Report(
			diag.Error(x.IdSpan, "%s has no member named `%v`", other.Res.Describe(), x.Id)))
	}
	return e.checkMemberAccess(owner, x.Id, x.IdSpan)
}

func (e Env) checkSquare(x *tree.SquareExpr) ExprResult {
	sp := x.Span()
	owner := e.CheckExpr(x.Owner)
	switch k := owner.Kind.(type) {
	case *MethodResult:
		if k.Own != nil {
			return errResult(sp, e.Report(diag.Error(sp, "generic arguments already applied")))
		}
		args := make([]sym.GenericTerm, len(x.Args))
		for i, arg := range x.Args {
			args[i] = e.CheckTreeGenericTerm(arg)
		}
		owner.Kind = &MethodResult{Self: k.Self, Function: k.Function, Prefix: k.Prefix, Own: args, IdSp: k.IdSp}
		owner.Sp = sp
		return owner
	case *OtherResult:
		args := make([]sym.GenericTerm, len(x.Args))
		for i, arg := range x.Args {
			args[i] = e.CheckTreeGenericTerm(arg)
		}
		res, err := e.ResolveRelativeGenericArgs(k.Res, args, sp)
		if err != nil {
			return errResult(sp, reported(err))
		}
		out := e.resolutionResult(res, sp)
		out.Temporaries = append(owner.Temporaries, out.Temporaries...)
		return out
	default:
		return errResult(sp, e.Report(
			diag.Error(sp, "indexing expressions are not supported yet")))
	}
}

// ========================

func (e Env) checkReturn(x *tree.ReturnExpr) ExprResult {
	sp := x.Span()
	if e.Fn == nil {
		return errResult(sp, e.Report(diag.Error(sp, "`return` outside of a function")))
	}
	var temps []*Temporary
	var value *sym.Expr
	valueSp := sp
	if x.Value != nil {
		valueSp = x.Value.Span()
		e, value = e.CheckExpr(x.Value).ToValue(e, &temps)
	} else {
		value = sym.UnitExpr(sp.AtEnd())
	}
	_ = e.RequireAssignable(value.Ty, valueSp, e.ReturnTy, InvalidReturnValue{
		Sp:   valueSp,
		Fn:   e.Fn,
		Want: e.ReturnTy,
	})
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   sym.Never(),
			Kind: &sym.ReturnExpr{Value: value},
		}},
	}
}

func (e Env) checkAwait(x *tree.AwaitExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	e, value := e.CheckExpr(x.Value).ToValue(e, &temps)
	awaited := e.FreshTyInfer(sp)
	e.Spawn("await-future", func(e Env) {
		_ = e.RequireFutureType(value.Ty, awaited, x.AwaitSpan, AwaitNonFuture{
			AwaitSp: x.AwaitSpan,
			Ty:      value.Ty,
		})
	})
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   awaited,
			Kind: &sym.AwaitExpr{Value: value},
		}},
	}
}

// checkIf checks an if/else chain as a match. Without an else arm the
// result is unit and arm values are discarded; with one, every arm flows
// into a fresh inference variable.
func (e Env) checkIf(x *tree.IfExpr) ExprResult {
	sp := x.Span()
	hasElse := false
	for _, arm := range x.Arms {
		if arm.Condition == nil {
			hasElse = true
		}
	}
	ty := sym.Unit()
	if hasElse {
		ty = e.FreshTyInfer(sp)
	}

	var temps []*Temporary
	arms := make([]sym.MatchArm, 0, len(x.Arms)+1)
	for _, arm := range x.Arms {
		var cond *sym.Expr
		if arm.Condition != nil {
			var condTemps []*Temporary
			e, cond = e.CheckExpr(arm.Condition).ToValue(e, &condTemps)
			e.requireBool(cond, arm.Condition.Span())
			cond = Discharge(condTemps, cond)
		}
		var bodyTemps []*Temporary
		bodyEnv, body := e.CheckExpr(arm.Body).ToValue(e, &bodyTemps)
		body = Discharge(bodyTemps, body)
		if hasElse {
			bodySp := arm.Body.Span()
			bodyTy := body.Ty
			bodyEnv.Spawn("if-arm", func(e Env) {
				_ = e.RequireAssignable(bodyTy, bodySp, ty, BadSubtype{
					Sp:     bodySp,
					Value:  bodyTy,
					Target: ty,
				})
			})
		}
		arms = append(arms, sym.MatchArm{Condition: cond, Body: body})
	}
	if !hasElse {
		arms = append(arms, sym.MatchArm{Body: sym.UnitExpr(sp.AtEnd())})
	}
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   ty,
			Kind: &sym.MatchExpr{Arms: arms},
		}},
	}
}

func (e Env) checkPermOp(x *tree.PermExpr) ExprResult {
	sp := x.Span()
	var temps []*Temporary
	e, place := e.CheckExpr(x.Value).ToPlace(e, &temps)

	var ty *sym.Ty
	switch x.Op {
	case tree.PermissionOpGive:
		ty = place.Ty
	case tree.PermissionOpMutate:
		ty = place.Ty.LeasedFrom(place.ToPlace())
	case tree.PermissionOpRef:
		ty = place.Ty.SharedFrom(place.ToPlace())
	default:
		spew.Dump(x.Op)
		panic("unreachable")
	}
	return ExprResult{
		Temporaries: temps,
		Sp:          sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp:   sp,
			Ty:   ty,
			Kind: &sym.PermissionOpExpr{Op: x.Op, Place: place},
		}},
	}
}

// ========================

func (e Env) freshTemporary(sp source.Span, ty *sym.Ty, kind sym.ExprKind) *Temporary {
	v := sym.NewVariable(sym.KindPlace, IgnoreIdent, sp, e.Universe)
	return &Temporary{
		Var:         v,
		Ty:          ty,
		Initializer: &sym.Expr{Sp: sp, Ty: ty, Kind: kind},
	}
}

func reported(err error) diag.Reported {
	r, ok := diag.AsReported(err)
	if !ok {
		panic(err)
	}
	return r
}
