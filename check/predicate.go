package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/sym"
)

// The predicate engine decides Copy/Move/Owned/Lent over generic terms.
// Three contracts per predicate: tryIs / tryIsnt are non-blocking
// best-effort decisions from current facts (both can be undecided at once,
// and "neither provable" is representable); the require side registers hard
// constraints and lives in require.go.

// applicationExistential says which predicates propagate through a
// permission application when either side has them; the others need both
// sides.
func applicationExistential(pred sym.Predicate) bool {
	switch pred {
	case sym.PredCopy, sym.PredLent:
		return true
	case sym.PredMove, sym.PredOwned:
		return false
	default:
		panic("unreachable")
	}
}

// leafFacts are the fixed verdicts of a leaf shape.
type leafFacts struct {
	is   [sym.NumPredicates]bool
	isnt [sym.NumPredicates]bool
}

// complementary builds the facts of a leaf whose negative knowledge is
// exactly the complement of its positive knowledge.
func complementary(copy, owned bool) leafFacts {
	var f leafFacts
	f.is[sym.PredCopy] = copy
	f.isnt[sym.PredCopy] = !copy
	f.is[sym.PredMove] = !copy
	f.isnt[sym.PredMove] = copy
	f.is[sym.PredOwned] = owned
	f.isnt[sym.PredOwned] = !owned
	f.is[sym.PredLent] = !owned
	f.isnt[sym.PredLent] = owned
	return f
}

var (
	primitiveFacts = complementary(true, true)
	classFacts     = complementary(false, true)
	myFacts        = complementary(false, true)
	ourFacts       = complementary(true, true)
	sharedFacts    = complementary(true, false)

	// Never proves Copy and Owned but refutes nothing; its Move predicate
	// is deliberately absent from the decision path.
	neverFacts = leafFacts{
		is: predArray(sym.PredCopy, sym.PredOwned),
	}
)

func predArray(preds ...sym.Predicate) [sym.NumPredicates]bool {
	var out [sym.NumPredicates]bool
	for _, p := range preds {
		out[p] = true
	}
	return out
}

// ========================

func (e Env) tryIsTerm(t sym.GenericTerm, pred sym.Predicate) (verdict, error) {
	switch t := t.(type) {
	case *sym.Ty:
		return e.tryIsTy(t, pred)
	case *sym.Perm:
		return e.tryIsPerm(t, pred)
	case *sym.Place:
		return e.tryIsPlace(t, pred)
	case sym.ErrorTerm:
		return verdictUnknown, t.Reported
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

func (e Env) tryIsntTerm(t sym.GenericTerm, pred sym.Predicate) (verdict, error) {
	switch t := t.(type) {
	case *sym.Ty:
		return e.tryIsntTy(t, pred)
	case *sym.Perm:
		return e.tryIsntPerm(t, pred)
	case *sym.Place:
		ty, ok, err := e.TryPlaceTy(t)
		if err != nil || !ok {
			return verdictUnknown, err
		}
		return e.tryIsntTy(ty, pred)
	case sym.ErrorTerm:
		return verdictUnknown, t.Reported
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

// A place in a predicate query stands for its current type.
func (e Env) tryIsPlace(p *sym.Place, pred sym.Predicate) (verdict, error) {
	ty, ok, err := e.TryPlaceTy(p)
	if err != nil || !ok {
		return verdictUnknown, err
	}
	return e.tryIsTy(ty, pred)
}

func (e Env) tryIsTy(ty *sym.Ty, pred sym.Predicate) (verdict, error) {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		return e.tryIsApplication(k.Perm, k.Ty, pred)
	case *sym.NamedTy:
		return e.tryIsNamed(k, pred)
	case *sym.InferTy:
		return e.tryIsInfer(k.Var, pred)
	case *sym.VarTy:
		return boolVerdict(e.Scope.Facts(k.Var).Has(pred)), nil
	case *sym.NeverTy:
		return boolVerdict(neverFacts.is[pred]), nil
	case *sym.ErrorTy:
		return verdictUnknown, k.Reported
	default:
		spew.Dump(ty)
		panic("unreachable")
	}
}

func (e Env) tryIsntTy(ty *sym.Ty, pred sym.Predicate) (verdict, error) {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		return e.tryIsntApplication(k.Perm, k.Ty, pred)
	case *sym.NamedTy:
		return e.tryIsntNamed(k, pred)
	case *sym.InferTy:
		return e.tryIsntInfer(k.Var, pred)
	case *sym.VarTy:
		return boolVerdict(e.Scope.Facts(k.Var).Has(pred.Invert())), nil
	case *sym.NeverTy:
		return boolVerdict(neverFacts.isnt[pred]), nil
	case *sym.ErrorTy:
		return verdictUnknown, k.Reported
	default:
		spew.Dump(ty)
		panic("unreachable")
	}
}

func (e Env) tryIsNamed(k *sym.NamedTy, pred sym.Predicate) (verdict, error) {
	switch name := k.Name.(type) {
	case sym.Primitive:
		return boolVerdict(primitiveFacts.is[pred]), nil
	case sym.FutureName:
		return boolVerdict(classFacts.is[pred]), nil
	case sym.TupleName:
		return exists(e.termChildren(k.Args, pred, Env.tryIsTerm)...)
	case *sym.Aggregate:
		if name.Style == sym.ClassStyle {
			return boolVerdict(classFacts.is[pred]), nil
		}
		// struct: the predicate holds if any generic argument has it
		return exists(e.termChildren(k.Args, pred, Env.tryIsTerm)...)
	default:
		spew.Dump(k.Name)
		panic("unreachable")
	}
}

func (e Env) tryIsntNamed(k *sym.NamedTy, pred sym.Predicate) (verdict, error) {
	switch name := k.Name.(type) {
	case sym.Primitive:
		return boolVerdict(primitiveFacts.isnt[pred]), nil
	case sym.FutureName:
		return boolVerdict(classFacts.isnt[pred]), nil
	case sym.TupleName:
		return forAll(e.termChildren(k.Args, pred, Env.tryIsntTerm)...)
	case *sym.Aggregate:
		if name.Style == sym.ClassStyle {
			return boolVerdict(classFacts.isnt[pred]), nil
		}
		return forAll(e.termChildren(k.Args, pred, Env.tryIsntTerm)...)
	default:
		spew.Dump(k.Name)
		panic("unreachable")
	}
}

func (e Env) tryIsPerm(p *sym.Perm, pred sym.Predicate) (verdict, error) {
	switch k := p.Kind.(type) {
	case *sym.MyPerm:
		return boolVerdict(myFacts.is[pred]), nil
	case *sym.OurPerm:
		return boolVerdict(ourFacts.is[pred]), nil
	case *sym.SharedPerm:
		return boolVerdict(sharedFacts.is[pred]), nil
	case *sym.LeasedPerm:
		return e.tryLeased(k.Places, pred, false)
	case *sym.ApplyPerm:
		return e.tryIsApplication(k.Left, k.Right, pred)
	case *sym.InferPerm:
		return e.tryIsInfer(k.Var, pred)
	case *sym.VarPerm:
		return boolVerdict(e.Scope.Facts(k.Var).Has(pred)), nil
	case *sym.ErrorPerm:
		return verdictUnknown, k.Reported
	default:
		spew.Dump(p)
		panic("unreachable")
	}
}

func (e Env) tryIsntPerm(p *sym.Perm, pred sym.Predicate) (verdict, error) {
	switch k := p.Kind.(type) {
	case *sym.MyPerm:
		return boolVerdict(myFacts.isnt[pred]), nil
	case *sym.OurPerm:
		return boolVerdict(ourFacts.isnt[pred]), nil
	case *sym.SharedPerm:
		return boolVerdict(sharedFacts.isnt[pred]), nil
	case *sym.LeasedPerm:
		return e.tryLeased(k.Places, pred, true)
	case *sym.ApplyPerm:
		return e.tryIsntApplication(k.Left, k.Right, pred)
	case *sym.InferPerm:
		return e.tryIsntInfer(k.Var, pred)
	case *sym.VarPerm:
		return boolVerdict(e.Scope.Facts(k.Var).Has(pred.Invert())), nil
	case *sym.ErrorPerm:
		return verdictUnknown, k.Reported
	default:
		spew.Dump(p)
		panic("unreachable")
	}
}

// tryLeased decides Copy/Move over a lease universally: whichever place is
// the actual runtime alias must satisfy the predicate, so all of them must.
// Owned and Lent are fixed by the lease itself.
func (e Env) tryLeased(places []*sym.Place, pred sym.Predicate, negated bool) (verdict, error) {
	switch pred {
	case sym.PredOwned, sym.PredLent:
		facts := complementary(true, false)
		if negated {
			return boolVerdict(facts.isnt[pred]), nil
		}
		return boolVerdict(facts.is[pred]), nil
	}
	children := make([]childVerdict, len(places))
	for i, place := range places {
		place := place
		if negated {
			children[i] = func() (verdict, error) { return e.tryIsntTerm(place, pred) }
		} else {
			children[i] = func() (verdict, error) { return e.tryIsTerm(place, pred) }
		}
	}
	if negated {
		// the negation is provable if any possible alias refutes it
		return exists(children...)
	}
	return forAll(children...)
}

func (e Env) tryIsApplication(lhs, rhs sym.GenericTerm, pred sym.Predicate) (verdict, error) {
	l := func() (verdict, error) { return e.tryIsTerm(lhs, pred) }
	r := func() (verdict, error) { return e.tryIsTerm(rhs, pred) }
	if applicationExistential(pred) {
		return either(l, r)
	}
	return both(l, r)
}

func (e Env) tryIsntApplication(lhs, rhs sym.GenericTerm, pred sym.Predicate) (verdict, error) {
	l := func() (verdict, error) { return e.tryIsntTerm(lhs, pred) }
	r := func() (verdict, error) { return e.tryIsntTerm(rhs, pred) }
	if applicationExistential(pred) {
		// pred needs only one side, so refuting it needs both sides refuted
		return both(l, r)
	}
	return either(l, r)
}

func (e Env) tryIsInfer(id sym.InferID, pred sym.Predicate) (verdict, error) {
	if _, ok := e.Rt.RequiredPredicate(id, pred); ok {
		return verdictTrue, nil
	}
	if b, ok := e.Rt.Representative(id); ok {
		return e.tryIsTerm(b.Term, pred)
	}
	return verdictUnknown, nil
}

func (e Env) tryIsntInfer(id sym.InferID, pred sym.Predicate) (verdict, error) {
	if _, ok := e.Rt.RequiredPredicate(id, pred); ok {
		return verdictFalse, nil
	}
	if b, ok := e.Rt.Representative(id); ok {
		return e.tryIsntTerm(b.Term, pred)
	}
	return verdictUnknown, nil
}

func (e Env) termChildren(args []sym.GenericTerm, pred sym.Predicate, eval func(Env, sym.GenericTerm, sym.Predicate) (verdict, error)) []childVerdict {
	children := make([]childVerdict, len(args))
	for i, arg := range args {
		arg := arg
		children[i] = func() (verdict, error) { return eval(e, arg, pred) }
	}
	return children
}

// ========================

// IsProvably blocks until the predicate's provability is decided.
func (e Env) IsProvably(t sym.GenericTerm, pred sym.Predicate) (bool, error) {
	var v verdict
	var err error
	e.Rt.LoopUntil(func() bool {
		v, err = e.tryIsTerm(t, pred)
		return v != verdictUnknown || err != nil
	})
	if err != nil {
		return false, err
	}
	PredPrintf("pred: %s is %v: %v\n", sym.Describe(t), pred, v)
	return v == verdictTrue, nil
}

// IsntProvably blocks until provability of the negation is decided. Not
// the complement of IsProvably: with incomplete knowledge neither may be
// provable.
func (e Env) IsntProvably(t sym.GenericTerm, pred sym.Predicate) (bool, error) {
	var v verdict
	var err error
	e.Rt.LoopUntil(func() bool {
		v, err = e.tryIsntTerm(t, pred)
		return v != verdictUnknown || err != nil
	})
	if err != nil {
		return false, err
	}
	PredPrintf("pred: %s isnt %v: %v\n", sym.Describe(t), pred, v)
	return v == verdictTrue, nil
}
