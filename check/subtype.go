package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// RequireAssignable enforces that a value of type value may be stored where
// a target is expected. Shape is compared on red types; permission
// compatibility is checked along the stripped chains.
func (e Env) RequireAssignable(value *sym.Ty, sp source.Span, target *sym.Ty, orElse OrElse) error {
	permV, redV := e.ToRedTy(value)
	permT, redT := e.ToRedTy(target)

	if r, ok := redErr(redV); ok {
		return r
	}
	if r, ok := redErr(redT); ok {
		return r
	}
	if _, ok := redV.(*RedNever); ok {
		return nil
	}
	if it, ok := redT.(*RedInfer); ok {
		e.addTyBound(it.Var, value, sp, orElse)
		return nil
	}
	if iv, ok := redV.(*RedInfer); ok {
		return e.whenBound(iv.Var, func(e Env, b Bound) error {
			bound := permV.ApplyTo(sym.AssertTy(b.Term))
			return e.RequireAssignable(bound, sp, target, withBecause{
				inner: orElse,
				extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
			})
		})
	}

	switch rv := redV.(type) {
	case *RedVar:
		tv, ok := redT.(*RedVar)
		if !ok || tv.Var != rv.Var {
			return e.reportOrElse(orElse)
		}
		return e.requirePermAssignable(permV, permT, sp, orElse)
	case *RedNamed:
		tn, ok := redT.(*RedNamed)
		if !ok || !sameHead(rv, tn) {
			return e.reportOrElse(orElse)
		}
		for i := range rv.Args {
			i := i
			e.Spawn("subtype-generic-arg", func(e Env) {
				_ = e.RequireEqualTerms(rv.Args[i], tn.Args[i], sp, orElse)
			})
		}
		if _, prim := rv.Name.(sym.Primitive); prim {
			// primitive values copy out of any permission chain
			return nil
		}
		return e.requirePermAssignable(permV, permT, sp, orElse)
	default:
		spew.Dump(redV, redT)
		panic("unreachable")
	}
}

// RequireEqualTerms enforces equality between two generic terms of the same
// kind, as generic argument positions demand.
func (e Env) RequireEqualTerms(a, b sym.GenericTerm, sp source.Span, orElse OrElse) error {
	if a == b {
		return nil
	}
	if r, ok := termErr(a); ok {
		return r
	}
	if r, ok := termErr(b); ok {
		return r
	}
	switch a := a.(type) {
	case *sym.Ty:
		bt, ok := b.(*sym.Ty)
		if !ok {
			return e.reportOrElse(orElse)
		}
		return e.RequireEqualTypes(a, bt, sp, orElse)
	case *sym.Perm:
		bp, ok := b.(*sym.Perm)
		if !ok {
			return e.reportOrElse(orElse)
		}
		if err := e.requirePermAssignable(a, bp, sp, orElse); err != nil {
			return err
		}
		return e.requirePermAssignable(bp, a, sp, orElse)
	case *sym.Place:
		bp, ok := b.(*sym.Place)
		if !ok {
			return e.reportOrElse(orElse)
		}
		return e.requireEqualPlaces(a, bp, sp, orElse)
	default:
		spew.Dump(a)
		panic("unreachable")
	}
}

// RequireEqualTypes enforces mutual assignability by structure: same head,
// equal generic arguments, equal permission chains. Inference variables are
// bound to the opposite side.
func (e Env) RequireEqualTypes(a, b *sym.Ty, sp source.Span, orElse OrElse) error {
	if a == b {
		return nil
	}
	permA, redA := e.ToRedTy(a)
	permB, redB := e.ToRedTy(b)
	if r, ok := redErr(redA); ok {
		return r
	}
	if r, ok := redErr(redB); ok {
		return r
	}

	ia, aInfer := redA.(*RedInfer)
	ib, bInfer := redB.(*RedInfer)
	switch {
	case aInfer && bInfer:
		// bind deterministically so the chase stays acyclic
		if ia.Var == ib.Var {
			return nil
		}
		if ia.Var > ib.Var {
			e.addTyBound(ia.Var, permB.ApplyTo(sym.TyInfer(ib.Var)), sp, orElse)
		} else {
			e.addTyBound(ib.Var, permA.ApplyTo(sym.TyInfer(ia.Var)), sp, orElse)
		}
		return nil
	case aInfer:
		e.addTyBound(ia.Var, b, sp, orElse)
		return nil
	case bInfer:
		e.addTyBound(ib.Var, a, sp, orElse)
		return nil
	}

	switch ra := redA.(type) {
	case *RedNever:
		if _, ok := redB.(*RedNever); ok {
			return nil
		}
		return e.reportOrElse(orElse)
	case *RedVar:
		rb, ok := redB.(*RedVar)
		if !ok || ra.Var != rb.Var {
			return e.reportOrElse(orElse)
		}
	case *RedNamed:
		rb, ok := redB.(*RedNamed)
		if !ok || !sameHead(ra, rb) {
			return e.reportOrElse(orElse)
		}
		for i := range ra.Args {
			i := i
			e.Spawn("equal-generic-arg", func(e Env) {
				_ = e.RequireEqualTerms(ra.Args[i], rb.Args[i], sp, orElse)
			})
		}
		if _, prim := ra.Name.(sym.Primitive); prim {
			return nil
		}
	default:
		spew.Dump(redA)
		panic("unreachable")
	}
	if err := e.requirePermAssignable(permA, permB, sp, orElse); err != nil {
		return err
	}
	return e.requirePermAssignable(permB, permA, sp, orElse)
}

func (e Env) requireEqualPlaces(a, b *sym.Place, sp source.Span, orElse OrElse) error {
	if a == b {
		return nil
	}
	if ia, ok := sym.AsInfer(a); ok {
		e.addBound(ia, b, sp, orElse)
		return nil
	}
	if ib, ok := sym.AsInfer(b); ok {
		e.addBound(ib, a, sp, orElse)
		return nil
	}
	return e.reportOrElse(orElse)
}

// RequireNumericType enforces that ty resolves to a numeric primitive.
func (e Env) RequireNumericType(ty *sym.Ty, sp source.Span, orElse OrElse) error {
	_, red := e.ToRedTy(ty)
	switch k := red.(type) {
	case *RedErr:
		return k.Reported
	case *RedNever:
		return nil
	case *RedInfer:
		bounds := e.Rt.RequireNumeric(k.Var, sp)
		for _, b := range bounds {
			b := b
			e.Spawn("numeric-bound", func(e Env) {
				_ = e.RequireNumericType(sym.AssertTy(b.Term), sp, withBecause{
					inner: orElse,
					extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
				})
			})
		}
		return nil
	case *RedNamed:
		if prim, ok := k.Name.(sym.Primitive); ok && prim.Kind != sym.PrimBool {
			return nil
		}
		return e.reportOrElse(orElse)
	case *RedVar:
		return e.reportOrElse(orElse)
	default:
		spew.Dump(red)
		panic("unreachable")
	}
}

// ========================

// addTyBound records a lower bound on a type inference variable and spawns
// the follow-up obligations: required predicates against the new bound,
// numeric requirement, and reconciliation with the previous representative.
func (e Env) addTyBound(id sym.InferID, ty *sym.Ty, sp source.Span, orElse OrElse) {
	added, prior, preds := e.Rt.AddLowerBound(id, ty, sp)
	if !added {
		return
	}
	b := Bound{Term: ty, Sp: sp}
	e.checkNewBound(id, b, preds)
	if numSp, ok := e.Rt.NumericSpan(id); ok {
		e.Spawn("numeric-new-bound", func(e Env) {
			_ = e.RequireNumericType(ty, sp, NumericTypeExpected{Sp: numSp, Ty: ty})
		})
	}
	if prev, ok := representativeOf(prior); ok && !isNeverTy(ty) {
		prevTy := sym.AssertTy(prev.Term)
		e.Spawn("merge-bounds", func(e Env) {
			_ = e.RequireEqualTypes(prevTy, ty, sp, withBecause{
				inner: orElse,
				extra: []Because{
					BecauseInferredBound{Term: prev.Term, Sp: prev.Sp},
					BecauseInferredBound{Term: ty, Sp: sp},
				},
			})
		})
	}
}

// addBound is addTyBound for permission and place variables.
func (e Env) addBound(id sym.InferID, term sym.GenericTerm, sp source.Span, orElse OrElse) {
	added, prior, preds := e.Rt.AddLowerBound(id, term, sp)
	if !added {
		return
	}
	e.checkNewBound(id, Bound{Term: term, Sp: sp}, preds)
	if prev, ok := representativeOf(prior); ok && prev.Term != term {
		e.Spawn("merge-bounds", func(e Env) {
			_ = e.RequireEqualTerms(prev.Term, term, sp, orElse)
		})
	}
}

// whenBound blocks until the variable has a binding, then runs fn on it.
func (e Env) whenBound(id sym.InferID, fn func(Env, Bound) error) error {
	var b Bound
	e.Rt.LoopUntil(func() bool {
		var ok bool
		b, ok = e.Rt.Representative(id)
		return ok
	})
	return fn(e, b)
}

func representativeOf(bounds []Bound) (Bound, bool) {
	for _, b := range bounds {
		if ty, ok := b.Term.(*sym.Ty); ok && isNeverTy(ty) {
			continue
		}
		return b, true
	}
	return Bound{}, false
}

func isNeverTy(ty *sym.Ty) bool {
	_, ok := ty.Kind.(*sym.NeverTy)
	return ok
}

func redErr(red RedTy) (diag.Reported, bool) {
	if k, ok := red.(*RedErr); ok {
		return k.Reported, true
	}
	return diag.Reported{}, false
}

func termErr(t sym.GenericTerm) (diag.Reported, bool) {
	if k, ok := t.(sym.ErrorTerm); ok {
		return k.Reported, true
	}
	return diag.Reported{}, false
}
