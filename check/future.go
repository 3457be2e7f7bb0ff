package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// RequireFutureType enforces that ty is `Future[awaited]`. An unresolved
// inference variable suspends on its lower bound: bounds only tighten, so
// if the current bound is already not a future the resolved type cannot be
// one either, and checking the bound early is sound. Failures report
// through orElse with the inferred bound in the provenance chain.
func (e Env) RequireFutureType(ty *sym.Ty, awaited *sym.Ty, sp source.Span, orElse OrElse) error {
	_, red := e.ToRedTy(ty)
	switch k := red.(type) {
	case *RedErr:
		return k.Reported
	case *RedNamed:
		if _, ok := k.Name.(sym.FutureName); ok {
			return e.RequireEqualTypes(sym.AssertTy(k.Args[0]), awaited, sp, orElse)
		}
		return e.reportOrElse(orElse)
	case *RedNever, *RedVar:
		return e.reportOrElse(orElse)
	case *RedInfer:
		return e.whenBound(k.Var, func(e Env, b Bound) error {
			return e.RequireFutureType(sym.AssertTy(b.Term), awaited, sp, withBecause{
				inner: orElse,
				extra: []Because{BecauseInferredBound{Term: b.Term, Sp: b.Sp}},
			})
		})
	default:
		spew.Dump(red)
		panic("unreachable")
	}
}
