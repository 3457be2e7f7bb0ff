package check

import (
	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// checkMemberAccess resolves `owner.id` against the owner's type. The owner
// is coerced to a place first so field accesses stay places. Blocks until
// the owner's type is resolved far enough to name an aggregate.
func (e Env) checkMemberAccess(owner ExprResult, id Identifier, idSp source.Span) ExprResult {
	var temps []*Temporary
	e, place := owner.ToPlace(e, &temps)

	var perm *sym.Perm
	var red RedTy
	e.Rt.LoopUntil(func() bool {
		var ok bool
		perm, red, ok = e.tryToRedTy(place.Ty)
		return ok
	})

	res := e.resolveMember(place, perm, red, id, idSp)
	res.Temporaries = append(temps, res.Temporaries...)
	return res
}

func (e Env) resolveMember(place *sym.PlaceExpr, perm *sym.Perm, red RedTy, id Identifier, idSp source.Span) ExprResult {
	switch k := red.(type) {
	case *RedNamed:
		agg, isAgg := k.Name.(*sym.Aggregate)
		if !isAgg {
			return errResult(idSp, e.Report(
				diag.Error(idSp, "type `%v` has no member `%s`", place.Ty, id.Value)))
		}
		if field, ok := agg.FieldNamed(id); ok {
			fieldTy := perm.ApplyTo(field.TyFor(place.ToPlace(), k.Args))
			return placeResult(idSp, &sym.PlaceExpr{
				Sp:   place.Sp.To(idSp),
				Ty:   fieldTy,
				Kind: &sym.FieldPlaceExpr{Owner: place, Field: field},
			})
		}
		if method, ok := agg.MethodNamed(id); ok {
			return ExprResult{Sp: idSp, Kind: &MethodResult{
				Self:     place,
				Function: method,
				IdSp:     idSp,
			}}
		}
		return errResult(idSp, e.Report(
			diag.Error(idSp, "`%v` has no member `%s`", agg, id.Value).
				Label(diag.LevelInfo, agg.NameSp, "`%v` declared here", agg)))
	case *RedNever, *RedVar:
		return errResult(idSp, e.Report(
			diag.Error(idSp, "type `%v` has no member `%s`", place.Ty, id.Value)))
	case *RedErr:
		return errResult(idSp, k.Reported)
	default:
		spew.Dump(red)
		panic("unreachable")
	}
}
