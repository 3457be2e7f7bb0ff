package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// Permission-chain subtyping. Chains are compared leaf-by-leaf on the
// flattened Apply spine with `my` leaves dropped; a value with no leaves
// left (`my`) assigns anywhere, and an empty target chain accepts only
// `my`.

func dropMy(leaves []*sym.Perm) []*sym.Perm {
	out := leaves[:0:0]
	for _, l := range leaves {
		if _, ok := l.Kind.(*sym.MyPerm); ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (e Env) requirePermAssignable(value, target *sym.Perm, sp source.Span, orElse OrElse) error {
	if value == target {
		return nil
	}
	vL := dropMy(value.Leaves())
	tL := dropMy(target.Leaves())
	for _, l := range append(append([]*sym.Perm(nil), vL...), tL...) {
		if k, ok := l.Kind.(*sym.ErrorPerm); ok {
			return k.Reported
		}
	}
	if len(vL) == 0 {
		return nil
	}
	if len(vL) != len(tL) {
		// a single unresolved leaf may still absorb the whole other chain
		if len(tL) == 1 {
			if id, ok := inferLeaf(tL[0]); ok {
				return e.requirePermInferTarget(id, rebuildChain(vL), sp, orElse)
			}
		}
		if len(vL) == 1 {
			if id, ok := inferLeaf(vL[0]); ok {
				return e.whenBound(id, func(e Env, b Bound) error {
					return e.requirePermAssignable(sym.AssertPerm(b.Term), rebuildChain(tL), sp, withBecause{
						inner: orElse,
						extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
					})
				})
			}
		}
		return e.reportOrElse(orElse)
	}
	for i := range vL {
		if err := e.requirePermLeafAssignable(vL[i], tL[i], sp, orElse); err != nil {
			return err
		}
	}
	return nil
}

func inferLeaf(p *sym.Perm) (sym.InferID, bool) {
	if k, ok := p.Kind.(*sym.InferPerm); ok {
		return k.Var, true
	}
	return 0, false
}

func rebuildChain(leaves []*sym.Perm) *sym.Perm {
	chain := sym.My()
	for _, l := range leaves {
		chain = chain.ApplyToPerm(l)
	}
	return chain
}

func (e Env) requirePermLeafAssignable(value, target *sym.Perm, sp source.Span, orElse OrElse) error {
	if value == target {
		return nil
	}
	if id, ok := inferLeaf(target); ok {
		return e.requirePermInferTarget(id, value, sp, orElse)
	}
	if id, ok := inferLeaf(value); ok {
		return e.whenBound(id, func(e Env, b Bound) error {
			return e.requirePermLeafAssignable(sym.AssertPerm(b.Term), target, sp, withBecause{
				inner: orElse,
				extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
			})
		})
	}
	switch v, err := e.tryPermLeafAssignable(value, target); {
	case err != nil:
		return err
	case v == verdictTrue:
		return nil
	default:
		return e.reportOrElse(orElse)
	}
}

// tryPermLeafAssignable decides leaf-level assignability from current
// knowledge, committing nothing.
func (e Env) tryPermLeafAssignable(value, target *sym.Perm) (verdict, error) {
	if value == target {
		return verdictTrue, nil
	}
	if id, ok := inferLeaf(value); ok {
		b, ok := e.Rt.Representative(id)
		if !ok {
			return verdictUnknown, nil
		}
		return e.tryPermLeafAssignable(sym.AssertPerm(b.Term), target)
	}
	if id, ok := inferLeaf(target); ok {
		b, ok := e.Rt.Representative(id)
		if !ok {
			return verdictUnknown, nil
		}
		return e.tryPermLeafAssignable(value, sym.AssertPerm(b.Term))
	}
	switch vk := value.Kind.(type) {
	case *sym.MyPerm:
		return verdictTrue, nil
	case *sym.OurPerm:
		switch target.Kind.(type) {
		case *sym.OurPerm, *sym.SharedPerm:
			return verdictTrue, nil
		default:
			return verdictFalse, nil
		}
	case *sym.SharedPerm:
		tk, ok := target.Kind.(*sym.SharedPerm)
		if !ok {
			return verdictFalse, nil
		}
		return placesCovered(vk.Places, tk.Places)
	case *sym.LeasedPerm:
		tk, ok := target.Kind.(*sym.LeasedPerm)
		if !ok {
			return verdictFalse, nil
		}
		return placesCovered(vk.Places, tk.Places)
	case *sym.VarPerm:
		return verdictFalse, nil
	case *sym.ErrorPerm:
		return verdictUnknown, vk.Reported
	default:
		spew.Dump(value)
		panic("unreachable")
	}
}

// placesCovered holds when every source place is covered by some target
// place: widening the place set of a borrow is sound, narrowing is not.
func placesCovered(from, to []*sym.Place) (verdict, error) {
	for _, p := range from {
		if !p.NoInferenceVars() {
			return verdictUnknown, nil
		}
		covered := false
		for _, q := range to {
			if !q.NoInferenceVars() {
				return verdictUnknown, nil
			}
			if p.IsCoveredBy(q) {
				covered = true
				break
			}
		}
		if !covered {
			return verdictFalse, nil
		}
	}
	return verdictTrue, nil
}

// requirePermInferTarget resolves a constraint against an unresolved
// permission variable. Two proof paths are opened: reusing a bound the
// variable already has, or committing the value as a new lower bound. The
// reuse path is purely speculative; the bind path only commits once it is
// the sole survivor, so speculation from sibling derivations cannot pin the
// variable.
func (e Env) requirePermInferTarget(id sym.InferID, value *sym.Perm, sp source.Span, orElse OrElse) error {
	alts := e.Alt.SpawnChildren(2)
	reuse, bind := alts[0], alts[1]
	defer bind.Release()

	reuseOk := false
	if b, ok := e.Rt.Representative(id); ok {
		if v, err := e.tryPermLeafAssignable(value, sym.AssertPerm(b.Term)); err == nil && v == verdictTrue {
			reuseOk = true
		}
	}
	reuse.Release()
	if reuseOk {
		return nil
	}

	ok, err := bind.IfRequired(
		func() error {
			e.WithAlt(bind).addBound(id, value, sp, orElse)
			return nil
		},
		func() verdict {
			b, bok := e.Rt.Representative(id)
			if !bok {
				return verdictUnknown
			}
			v, verr := e.tryPermLeafAssignable(value, sym.AssertPerm(b.Term))
			if verr != nil {
				return verdictFalse
			}
			return v
		},
	)
	if err != nil {
		return err
	}
	if !ok {
		return e.reportOrElse(orElse)
	}
	return nil
}
