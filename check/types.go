package check

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-set/v3"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// Symbolizing surface annotations: the types, permissions, and places the
// user wrote become interned terms against the current scope.

var primitiveNames = map[string]sym.Primitive{
	"bool": {Kind: sym.PrimBool, Bits: 1},
	"i8":   {Kind: sym.PrimInt, Bits: 8},
	"i16":  {Kind: sym.PrimInt, Bits: 16},
	"i32":  {Kind: sym.PrimInt, Bits: 32},
	"i64":  {Kind: sym.PrimInt, Bits: 64},
	"u8":   {Kind: sym.PrimUint, Bits: 8},
	"u16":  {Kind: sym.PrimUint, Bits: 16},
	"u32":  {Kind: sym.PrimUint, Bits: 32},
	"u64":  {Kind: sym.PrimUint, Bits: 64},
	"f32":  {Kind: sym.PrimFloat, Bits: 32},
	"f64":  {Kind: sym.PrimFloat, Bits: 64},
}

func (e Env) CheckTreeType(t tree.Type) *sym.Ty {
	switch t := t.(type) {
	case *tree.NameType:
		return e.checkNameType(t)
	case *tree.PermType:
		perm := e.CheckTreePerm(t.Perm)
		return perm.ApplyTo(e.CheckTreeType(t.Inner))
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

func (e Env) checkNameType(t *tree.NameType) *sym.Ty {
	if prim, ok := primitiveNames[t.Id.Value]; ok {
		if len(t.Args) != 0 {
			r := e.Report(diag.Error(t.Span(), "`%v` does not take generic arguments", t.Id))
			return sym.ErrTy(r)
		}
		return sym.PrimitiveTy(prim)
	}
	res, err := e.ResolveName(t.Id, t.Span())
	if err != nil {
		return reportedTy(err)
	}
	switch s := res.Sym.(type) {
	case *sym.Aggregate:
		if len(t.Args) != len(s.Generics) {
			r := e.Report(diag.Error(t.Span(), "expected %d generic arguments, found %d", len(s.Generics), len(t.Args)).
				Label(diag.LevelInfo, s.NameSp, "`%v` declared here", s))
			return sym.ErrTy(r)
		}
		args := make([]sym.GenericTerm, len(t.Args))
		for i, arg := range t.Args {
			args[i] = e.CheckTreeGenericTerm(arg)
			if !args[i].HasKind(s.Generics[i].Kind) {
				r := e.Report(diag.Error(arg.Span(), "expected a %v for `%v`, found %s",
					s.Generics[i].Kind, s.Generics[i], sym.Describe(args[i])))
				args[i] = sym.ErrTerm(r)
			}
		}
		return sym.Named(s, args)
	case *sym.Variable:
		if len(t.Args) != 0 {
			r := e.Report(diag.Error(t.Span(), "`%v` does not take generic arguments", t.Id))
			return sym.ErrTy(r)
		}
		if s.Kind != sym.KindTy {
			r := e.Report(diag.Error(t.Span(), "expected a type, `%v` is a %v", t.Id, s.Kind))
			return sym.ErrTy(r)
		}
		return sym.TyVar(s)
	default:
		r := e.Report(diag.Error(t.Span(), "expected a type, found %s", res.Describe()))
		return sym.ErrTy(r)
	}
}

func (e Env) CheckTreePerm(p tree.Perm) *sym.Perm {
	switch p := p.(type) {
	case *tree.MyPerm:
		return sym.My()
	case *tree.OurPerm:
		return sym.Our()
	case *tree.RefPerm:
		return sym.Shared(e.checkPlaceList(p.Places))
	case *tree.MutPerm:
		return sym.Leased(e.checkPlaceList(p.Places))
	case *tree.NamePerm:
		res, err := e.ResolveName(p.Id, p.Span())
		if err != nil {
			return reportedPerm(err)
		}
		if v, ok := res.Sym.(*sym.Variable); ok && v.Kind == sym.KindPerm {
			return sym.PermVar(v)
		}
		r := e.Report(diag.Error(p.Span(), "expected a permission, found %s", res.Describe()))
		return sym.ErrPerm(r)
	default:
		spew.Dump(p)
		panic("unreachable")
	}
}

// checkPlaceList resolves the places of a `ref[...]`/`mut[...]`
// annotation, deduplicated with source order preserved.
func (e Env) checkPlaceList(paths []*tree.PlacePath) []*sym.Place {
	seen := set.New[*sym.Place](len(paths))
	var out []*sym.Place
	for _, path := range paths {
		place := e.CheckPlacePath(path)
		if seen.Insert(place) {
			out = append(out, place)
		}
	}
	return out
}

func (e Env) CheckPlacePath(path *tree.PlacePath) *sym.Place {
	res, err := e.ResolveName(path.Var, path.Span())
	if err != nil {
		return reportedPlace(err)
	}
	v, ok := res.Sym.(*sym.Variable)
	if !ok || v.Kind != sym.KindPlace {
		r := e.Report(diag.Error(path.Span(), "expected a place, found %s", res.Describe()))
		return sym.ErrPlace(r)
	}
	place := sym.PlaceVar(v)
	for _, fieldName := range path.Fields {
		next, err := e.placeField(place, fieldName, path)
		if err != nil {
			r, _ := diag.AsReported(err)
			return sym.ErrPlace(r)
		}
		place = next
	}
	return place
}

func (e Env) placeField(place *sym.Place, fieldName Identifier, path *tree.PlacePath) (*sym.Place, error) {
	ty, err := e.PlaceTy(place)
	if err != nil {
		return nil, err
	}
	var red RedTy
	e.Rt.LoopUntil(func() bool {
		var ok bool
		_, red, ok = e.tryToRedTy(ty)
		return ok
	})
	named, isNamed := red.(*RedNamed)
	if !isNamed {
		r := e.Report(diag.Error(path.Span(), "`%v` has no field `%v`", place, fieldName))
		return nil, r
	}
	agg, isAgg := named.Name.(*sym.Aggregate)
	if !isAgg {
		r := e.Report(diag.Error(path.Span(), "`%v` has no field `%v`", place, fieldName))
		return nil, r
	}
	field, found := agg.FieldNamed(fieldName)
	if !found {
		r := e.Report(diag.Error(path.Span(), "%v `%v` has no field `%v`", agg.Style, agg, fieldName).
			Label(diag.LevelInfo, agg.NameSp, "`%v` declared here", agg))
		return nil, r
	}
	return place.Field(field), nil
}

func (e Env) CheckTreeGenericTerm(t tree.GenericTerm) sym.GenericTerm {
	switch t := t.(type) {
	case tree.TypeArg:
		return e.CheckTreeType(t.Type)
	case tree.PermArg:
		return e.CheckTreePerm(t.Perm)
	case tree.PlaceArg:
		return e.CheckPlacePath(t.Place)
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

func reportedTy(err error) *sym.Ty {
	r, ok := diag.AsReported(err)
	if !ok {
		panic(err)
	}
	return sym.ErrTy(r)
}

func reportedPerm(err error) *sym.Perm {
	r, ok := diag.AsReported(err)
	if !ok {
		panic(err)
	}
	return sym.ErrPerm(r)
}

func reportedPlace(err error) *sym.Place {
	r, ok := diag.AsReported(err)
	if !ok {
		panic(err)
	}
	return sym.ErrPlace(r)
}
