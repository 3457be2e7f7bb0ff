package check

import (
	"sync"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

func (e Env) checkCall(x *tree.CallExpr) ExprResult {
	sp := x.Span()
	callee := e.CheckExpr(x.Callee)
	switch k := callee.Kind.(type) {
	case *MethodResult:
		return e.checkCallCommon(callSite{
			sp:        sp,
			idSp:      k.IdSp,
			fn:        k.Function,
			self:      k.Self,
			enclosing: k.Prefix,
			own:       k.Own,
			args:      x.Args,
			temps:     callee.Temporaries,
		})
	case *OtherResult:
		if agg, ok := k.Res.Sym.(*sym.Aggregate); ok {
			return e.checkClassCall(sp, callee, agg, k.Res.Generics, x.Args)
		}
		return errResult(sp, e.Report(
			diag.Error(x.Callee.Span(), "expected a function, found %s", k.Res.Describe())))
	case *PlaceResult:
		return errResult(sp, e.Report(
			diag.Error(x.Callee.Span(), "expected a function, found a value of type `%v`", k.Place.Ty)))
	case *ValueResult:
		if _, isErr := k.Expr.Kind.(*sym.ErrorExpr); isErr {
			return callee
		}
		return errResult(sp, e.Report(
			diag.Error(x.Callee.Span(), "expected a function, found a value of type `%v`", k.Expr.Ty)))
	default:
		panic("unreachable")
	}
}

// checkClassCall checks `Class(...)` by forwarding to the class's `new`
// method with the class's explicit generics filling the enclosing slots.
func (e Env) checkClassCall(sp source.Span, callee ExprResult, agg *sym.Aggregate, generics []sym.GenericTerm, args []tree.Expr) ExprResult {
	ctor, ok := agg.Constructor()
	if !ok {
		d := diag.Error(sp, "%v `%v` has no `new` method", agg.Style, agg).
			Label(diag.LevelInfo, agg.NameSp, "`%v` declared here", agg)
		if field, isField := agg.FieldNamed(NewIdentifier("new")); isField {
			d.Label(diag.LevelInfo, field.Sp, "`new` is a field, not a method")
		}
		return errResult(sp, e.Report(d))
	}
	return e.checkCallCommon(callSite{
		sp:        sp,
		idSp:      sp,
		fn:        ctor,
		enclosing: generics,
		args:      args,
		temps:     callee.Temporaries,
	})
}

// callSite is everything checkCallCommon needs about one call expression.
type callSite struct {
	sp   source.Span
	idSp source.Span

	fn        *sym.Function
	self      *sym.PlaceExpr
	enclosing []sym.GenericTerm // nil = infer
	own       []sym.GenericTerm // nil = infer

	args  []tree.Expr
	temps []*Temporary
}

// checkCallCommon is the shared path for function, method, and class calls.
//
// Explicitly supplied generic arguments bind their signature variables;
// every remaining variable gets a fresh inference variable. Each input slot
// also gets a fresh place inference variable, bound to the argument's
// temporary once it is evaluated, so later input types and the output type
// can mention earlier argument places before those arguments are checked.
func (e Env) checkCallCommon(call callSite) ExprResult {
	sig, err := call.fn.CheckedSignature()
	if err != nil {
		return errResult(call.idSp, reported(err))
	}
	encCount := len(sig.Variables) - sig.OwnCount

	if call.own != nil {
		if r, failed := e.checkExplicitGenerics(call, sig.Variables[encCount:], call.own); failed {
			return errResult(call.idSp, r)
		}
	}
	if call.enclosing != nil {
		Assert(len(call.enclosing) == encCount, "resolution carried the wrong number of generic arguments")
	}

	substitution := make([]sym.GenericTerm, len(sig.Variables))
	for i, v := range sig.Variables {
		switch {
		case i < encCount && call.enclosing != nil:
			substitution[i] = call.enclosing[i]
		case i >= encCount && call.own != nil:
			substitution[i] = call.own[i-encCount]
		default:
			substitution[i] = e.FreshInferFor(v, call.idSp)
		}
	}
	io := sig.Instantiate(substitution)

	selfCount := 0
	if call.self != nil {
		selfCount = 1
	}
	if len(call.args) != len(io.InputPlaces)-selfCount {
		r := e.Report(diag.Error(call.sp, "expected %d arguments, found %d",
			len(io.InputPlaces)-selfCount, len(call.args)).
			Label(diag.LevelInfo, call.fn.NameSp, "`%v` declared here", call.fn))
		return errResult(call.sp, r)
	}

	placeIDs := make([]sym.InferID, len(io.InputPlaces))
	places := make([]*sym.Place, len(io.InputPlaces))
	for i := range io.InputPlaces {
		placeIDs[i] = e.Rt.NewInfer(sym.KindPlace, call.sp, e.Universe)
		places[i] = sym.PlaceInfer(placeIDs[i])
	}
	bound := io.BindInputs(places)

	temps := call.temps
	argVars := make([]*sym.Variable, len(io.InputPlaces))
	if call.self != nil {
		e, argVars[0] = e.placeArgVar(call.self, &temps)
		e.addBound(placeIDs[0], sym.PlaceVar(argVars[0]), call.self.Sp, BadSubtype{
			Sp: call.self.Sp, Value: call.self.Ty, Target: bound.Inputs[0],
		})
		selfTy, declared := call.self.Ty, bound.Inputs[0]
		selfSp := call.self.Sp
		e.Spawn("call-self", func(e Env) {
			_ = e.RequireAssignable(selfTy, selfSp, declared, BadSubtype{
				Sp: selfSp, Value: selfTy, Target: declared,
			})
		})
	}
	// arguments check concurrently; one argument's inference needs can be
	// fed by a sibling's checking
	argResults := make([]ExprResult, len(call.args))
	if len(call.args) > 0 {
		var mu sync.Mutex
		done := 0
		for i, arg := range call.args {
			i, arg := i, arg
			e.Spawn("call-argument-check", func(e Env) {
				res := e.CheckExpr(arg)
				mu.Lock()
				argResults[i] = res
				done++
				mu.Unlock()
			})
		}
		e.Rt.LoopUntil(func() bool {
			mu.Lock()
			defer mu.Unlock()
			return done == len(call.args)
		})
	}

	for i, arg := range call.args {
		slot := i + selfCount
		argSp := arg.Span()
		var value *sym.Expr
		e, value = argResults[i].ToValue(e, &temps)
		tmp := &Temporary{
			Var:         sym.NewVariable(sym.KindPlace, IgnoreIdent, argSp, e.Universe),
			Ty:          value.Ty,
			Initializer: value,
		}
		temps = append(temps, tmp)
		e = e.BindVar(tmp.Var, tmp.Ty)
		argVars[slot] = tmp.Var

		orElse := BadSubtype{Sp: argSp, Value: value.Ty, Target: bound.Inputs[slot]}
		e.addBound(placeIDs[slot], sym.PlaceVar(tmp.Var), argSp, orElse)
		valueTy, declared := value.Ty, bound.Inputs[slot]
		e.Spawn("call-argument", func(e Env) {
			_ = e.RequireAssignable(valueTy, argSp, declared, orElse)
		})
	}

	for _, wc := range bound.WhereClauses {
		wc := wc
		e.Spawn("call-where-clause", func(e Env) {
			_ = e.RequireTermIs(wc.Subject, wc.Predicate, WhereClauseUnsatisfied{
				Sp:     call.sp,
				Clause: wc,
			})
		})
	}

	return ExprResult{
		Temporaries: temps,
		Sp:          call.sp,
		Kind: &ValueResult{Expr: &sym.Expr{
			Sp: call.sp,
			Ty: bound.Output,
			Kind: &sym.CallExpr{
				Function:     call.fn,
				Substitution: substitution,
				Args:         argVars,
			},
		}},
	}
}

func (e Env) checkExplicitGenerics(call callSite, vars []*sym.Variable, args []sym.GenericTerm) (diag.Reported, bool) {
	if len(args) != len(vars) {
		r := e.Report(diag.Error(call.idSp, "expected %d generic arguments, found %d",
			len(vars), len(args)).
			Label(diag.LevelInfo, call.fn.NameSp, "`%v` declared here", call.fn))
		return r, true
	}
	for i, v := range vars {
		if !args[i].HasKind(v.Kind) {
			r := e.Report(diag.Error(call.idSp, "expected a %v for `%v`, found %s",
				v.Kind, v, sym.Describe(args[i])))
			return r, true
		}
	}
	return diag.Reported{}, false
}

// placeArgVar yields a variable standing for a receiver place: the variable
// itself when the receiver already is one, a temporary otherwise.
func (e Env) placeArgVar(place *sym.PlaceExpr, temps *[]*Temporary) (Env, *sym.Variable) {
	if k, ok := place.Kind.(*sym.VarPlaceExpr); ok {
		return e, k.Var
	}
	tmp := &Temporary{
		Var:         sym.NewVariable(sym.KindPlace, IgnoreIdent, place.Sp, e.Universe),
		Ty:          place.Ty,
		Initializer: place.ToExpr(),
	}
	*temps = append(*temps, tmp)
	return e.BindVar(tmp.Var, tmp.Ty), tmp.Var
}
