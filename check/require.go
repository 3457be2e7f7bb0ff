package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// RequireCopy adds a hard constraint that t can be duplicated.
func (e Env) RequireCopy(t sym.GenericTerm, orElse OrElse) error {
	return e.RequireTermIs(t, sym.PredCopy, orElse)
}

// RequireMove adds a hard constraint that t moves.
func (e Env) RequireMove(t sym.GenericTerm, orElse OrElse) error {
	return e.RequireTermIs(t, sym.PredMove, orElse)
}

// RequireTermIs enforces pred over t: immediate error where structurally
// impossible, a registered fact against an inference variable, a deferred
// wait where decidability depends on inference progress.
func (e Env) RequireTermIs(t sym.GenericTerm, pred sym.Predicate, orElse OrElse) error {
	PredPrintf("pred: require %s is %v\n", sym.Describe(t), pred)
	switch t := t.(type) {
	case *sym.Ty:
		return e.requireTyIs(t, pred, orElse)
	case *sym.Perm:
		return e.requirePermIs(t, pred, orElse)
	case *sym.Place:
		ty, err := e.PlaceTy(t)
		if err != nil {
			return err
		}
		return e.requireTyIs(ty, pred, orElse)
	case sym.ErrorTerm:
		return t.Reported
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

func (e Env) requireTyIs(ty *sym.Ty, pred sym.Predicate, orElse OrElse) error {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		return e.requireApplicationIs(k.Perm, k.Ty, pred, orElse)
	case *sym.NamedTy:
		return e.requireNamedIs(ty, k, pred, orElse)
	case *sym.InferTy:
		return e.requireInferIs(k.Var, pred, orElse)
	case *sym.VarTy:
		if e.Scope.Facts(k.Var).Has(pred) {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      k.Var.Sp,
			Message: diag.Msgf("no where-clause declares `%v` to be %v", k.Var, pred),
		})
	case *sym.NeverTy:
		// dead code checks as whatever is required of it, except Copy
		if pred == sym.PredCopy {
			return e.reportOrElse(orElse, BecauseNeverIsNotCopy{Sp: spanOfOrElse(orElse)})
		}
		return nil
	case *sym.ErrorTy:
		return k.Reported
	default:
		spew.Dump(ty)
		panic("unreachable")
	}
}

func (e Env) requireNamedIs(ty *sym.Ty, k *sym.NamedTy, pred sym.Predicate, orElse OrElse) error {
	switch name := k.Name.(type) {
	case sym.Primitive:
		if primitiveFacts.is[pred] {
			return nil
		}
		return e.reportOrElse(orElse, BecausePrimitiveIsCopy{Sp: spanOfOrElse(orElse), Ty: ty})
	case sym.FutureName:
		if classFacts.is[pred] {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: diag.Msgf("`%v` is a future, and futures are not %v", ty, pred),
		})
	case sym.TupleName:
		return e.requireExists(k.Args, pred, orElse)
	case *sym.Aggregate:
		if name.Style == sym.ClassStyle {
			if classFacts.is[pred] {
				return nil
			}
			return e.reportOrElse(orElse, BecauseClassIsMove{Sp: spanOfOrElse(orElse), Agg: name})
		}
		return e.requireExists(k.Args, pred, orElse)
	default:
		spew.Dump(k.Name)
		panic("unreachable")
	}
}

func (e Env) requirePermIs(p *sym.Perm, pred sym.Predicate, orElse OrElse) error {
	switch k := p.Kind.(type) {
	case *sym.MyPerm:
		if myFacts.is[pred] {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: diag.Msgf("`my` is not %v", pred),
		})
	case *sym.OurPerm:
		if ourFacts.is[pred] {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: diag.Msgf("`our` is not %v", pred),
		})
	case *sym.SharedPerm:
		if sharedFacts.is[pred] {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: diag.Msgf("`%v` is not %v", p, pred),
		})
	case *sym.LeasedPerm:
		return e.requireLeasedIs(k.Places, pred, orElse)
	case *sym.ApplyPerm:
		return e.requireApplicationIs(k.Left, k.Right, pred, orElse)
	case *sym.InferPerm:
		return e.requireInferIs(k.Var, pred, orElse)
	case *sym.VarPerm:
		if e.Scope.Facts(k.Var).Has(pred) {
			return nil
		}
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      k.Var.Sp,
			Message: diag.Msgf("no where-clause declares `%v` to be %v", k.Var, pred),
		})
	case *sym.ErrorPerm:
		return k.Reported
	default:
		spew.Dump(p)
		panic("unreachable")
	}
}

// requireLeasedIs requires pred of every place a lease could alias. The
// places are checked concurrently; each failure cites its place.
func (e Env) requireLeasedIs(places []*sym.Place, pred sym.Predicate, orElse OrElse) error {
	switch pred {
	case sym.PredLent:
		return nil
	case sym.PredOwned:
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: "a lease is never owned",
		})
	}
	if len(places) == 0 {
		return nil
	}
	for _, place := range places[1:] {
		place := place
		e.Spawn("require-leased-place", func(e Env) {
			_ = e.RequireTermIs(place, pred, withBecause{
				inner: orElse,
				extra: []Because{BecauseLeasedPlace{Sp: spanOfOrElse(orElse), Place: place}},
			})
		})
	}
	first := places[0]
	return e.RequireTermIs(first, pred, withBecause{
		inner: orElse,
		extra: []Because{BecauseLeasedPlace{Sp: spanOfOrElse(orElse), Place: first}},
	})
}

// requireApplicationIs enforces pred over a permission application. For the
// existential predicates both sides are tested simultaneously: whichever
// side is not provable forces the other. The universal predicates need both
// sides outright.
func (e Env) requireApplicationIs(lhs, rhs sym.GenericTerm, pred sym.Predicate, orElse OrElse) error {
	if !applicationExistential(pred) {
		e.Spawn("require-application-lhs", func(e Env) {
			_ = e.RequireTermIs(lhs, pred, orElse)
		})
		return e.RequireTermIs(rhs, pred, orElse)
	}
	e.Spawn("require-application-arm", func(e Env) {
		ok, err := e.IsProvably(lhs, pred)
		if err != nil || ok {
			return
		}
		_ = e.RequireTermIs(rhs, pred, orElse)
	})
	ok, err := e.IsProvably(rhs, pred)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.RequireTermIs(lhs, pred, orElse)
}

// requireExists enforces the existential struct/tuple rule: at least one
// child must have the predicate. Nothing is forced onto any particular
// child; the call waits until the disjunction is decidable.
func (e Env) requireExists(args []sym.GenericTerm, pred sym.Predicate, orElse OrElse) error {
	if len(args) == 0 {
		return e.reportOrElse(orElse, BecauseJustSo{
			Sp:      spanOfOrElse(orElse),
			Message: diag.Msgf("it has no fields that could be %v", pred),
		})
	}
	var v verdict
	var verr error
	e.Rt.LoopUntil(func() bool {
		v, verr = exists(e.termChildren(args, pred, Env.tryIsTerm)...)
		return v != verdictUnknown || verr != nil
	})
	if verr != nil {
		return verr
	}
	if v == verdictTrue {
		return nil
	}
	return e.reportOrElse(orElse, BecauseJustSo{
		Sp:      spanOfOrElse(orElse),
		Message: diag.Msgf("none of its fields is %v", pred),
	})
}

// requireInferIs registers the fact against the inference variable and
// checks it against every bound already present; bounds arriving later are
// checked by whoever adds them.
func (e Env) requireInferIs(id sym.InferID, pred sym.Predicate, orElse OrElse) error {
	sp := spanOfOrElse(orElse)
	bounds := e.Rt.RequirePredicate(id, pred, sp)
	for _, b := range bounds {
		b := b
		e.Spawn("require-infer-bound", func(e Env) {
			_ = e.RequireTermIs(b.Term, pred, withBecause{
				inner: orElse,
				extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
			})
		})
	}
	return nil
}

// checkNewBound re-checks an inference variable's required predicates
// against a bound that just arrived.
func (e Env) checkNewBound(id sym.InferID, b Bound, preds []sym.Predicate) {
	for _, pred := range preds {
		pred := pred
		sp, _ := e.Rt.RequiredPredicate(id, pred)
		e.Spawn("check-new-bound", func(e Env) {
			_ = e.RequireTermIs(b.Term, pred, withBecause{
				inner: PredicateNotSatisfied{Sp: sp, Pred: pred, Term: b.Term},
				extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
			})
		})
	}
}

// spanOfOrElse digs the primary span out of an OrElse for provenance notes.
func spanOfOrElse(orElse OrElse) source.Span {
	return orElse.ToDiagnostic(nil).Span
}
