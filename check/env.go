package check

import (
	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// Env is the per-task checking environment. It is copied by value when a
// scope is entered; the runtime and diagnostic queue behind it are shared
// by every task in the session.
type Env struct {
	Rt     *Runtime
	Module *sym.Module

	Fn       *sym.Function
	ReturnTy *sym.Ty

	Universe sym.Universe
	Alt      *Alternative
	Scope    *Scope
}

func NewEnv(rt *Runtime, module *sym.Module) Env {
	return Env{
		Rt:       rt,
		Module:   module,
		Universe: sym.RootUniverse,
		Alt:      RootAlternative(rt),
		Scope:    NewScope(),
	}
}

func (e Env) Report(d *diag.Diagnostic) diag.Reported {
	return e.Rt.queue.Report(d)
}

// Spawn starts an obligation carrying a snapshot of this environment.
func (e Env) Spawn(name string, fn func(Env)) {
	e.Rt.Spawn(name, func() { fn(e) })
}

func (e Env) BindVar(v *sym.Variable, ty *sym.Ty) Env {
	e.Scope = e.Scope.BindVar(v, ty)
	return e
}

func (e Env) Bind(name Identifier, res NameResolution) Env {
	e.Scope = e.Scope.Bind(name, res)
	return e
}

func (e Env) DeclareFact(v *sym.Variable, p sym.Predicate) Env {
	e.Scope = e.Scope.DeclareFact(v, p)
	return e
}

func (e Env) WithAlt(alt *Alternative) Env {
	e.Alt = alt
	return e
}

// ========================

func (e Env) FreshTyInfer(sp source.Span) *sym.Ty {
	return sym.TyInfer(e.Rt.NewInfer(sym.KindTy, sp, e.Universe))
}

func (e Env) FreshPermInfer(sp source.Span) *sym.Perm {
	return sym.PermInfer(e.Rt.NewInfer(sym.KindPerm, sp, e.Universe))
}

func (e Env) FreshPlaceInfer(sp source.Span) *sym.Place {
	return sym.PlaceInfer(e.Rt.NewInfer(sym.KindPlace, sp, e.Universe))
}

func (e Env) FreshInferFor(v *sym.Variable, sp source.Span) sym.GenericTerm {
	return sym.InferTerm(v.Kind, e.Rt.NewInfer(v.Kind, sp, e.Universe))
}

// ========================

// EnterFunction binds a function's signature into scope: generic variables
// by name with their where-clause facts, each parameter place variable with
// its declared type.
func (e Env) EnterFunction(fn *sym.Function) (Env, *sym.Signature, error) {
	sig, err := fn.CheckedSignature()
	if err != nil {
		return e, nil, err
	}
	e.Fn = fn
	e.ReturnTy = sig.Output
	for _, v := range sig.Variables {
		e = e.Bind(v.Name, NameResolution{Sym: v})
	}
	for i, v := range sig.InputPlaces {
		e = e.BindVar(v, sig.Inputs[i])
	}
	for _, wc := range sig.WhereClauses {
		if v, ok := whereClauseVar(wc.Subject); ok {
			e = e.DeclareFact(v, wc.Predicate)
		}
	}
	return e, sig, nil
}

func whereClauseVar(t sym.GenericTerm) (*sym.Variable, bool) {
	switch t := t.(type) {
	case *sym.Ty:
		if k, ok := t.Kind.(*sym.VarTy); ok {
			return k.Var, true
		}
	case *sym.Perm:
		if k, ok := t.Kind.(*sym.VarPerm); ok {
			return k.Var, true
		}
	}
	return nil, false
}

// ========================

// TryPlaceTy computes the type of a place from current knowledge; ok is
// false while the place depends on an unresolved inference variable.
func (e Env) TryPlaceTy(place *sym.Place) (*sym.Ty, bool, error) {
	switch k := place.Kind.(type) {
	case *sym.VarPlace:
		ty, ok := e.Scope.VarTy(k.Var)
		if !ok {
			spew.Dump(place)
			panic("place variable has no type in scope")
		}
		return ty, true, nil
	case *sym.FieldPlace:
		ownerTy, ok, err := e.TryPlaceTy(k.Base)
		if err != nil || !ok {
			return nil, ok, err
		}
		return e.tryFieldTy(k.Base, ownerTy, k.Field)
	case *sym.IndexPlace:
		r, hasErr := placeErr(k.Base)
		if hasErr {
			return sym.ErrTy(r), true, nil
		}
		spew.Dump(place)
		panic("index places are not typed yet")
	case *sym.InferPlace:
		b, ok := e.Rt.Representative(k.Var)
		if !ok {
			return nil, false, nil
		}
		return e.TryPlaceTy(sym.AssertPlace(b.Term))
	case *sym.ErrorPlace:
		return sym.ErrTy(k.Reported), true, nil
	default:
		spew.Dump(place)
		panic("unreachable")
	}
}

func (e Env) tryFieldTy(owner *sym.Place, ownerTy *sym.Ty, field *sym.Field) (*sym.Ty, bool, error) {
	perm, red, ok := e.tryToRedTy(ownerTy)
	if !ok {
		return nil, false, nil
	}
	switch k := red.(type) {
	case *RedNamed:
		agg, isAgg := k.Name.(*sym.Aggregate)
		if !isAgg || agg != field.Owner {
			spew.Dump(ownerTy, field)
			panic("field looked up against the wrong owner type")
		}
		return perm.ApplyTo(field.TyFor(owner, k.Args)), true, nil
	case *RedErr:
		return sym.ErrTy(k.Reported), true, nil
	default:
		spew.Dump(red)
		panic("unreachable")
	}
}

// PlaceTy is the blocking place-typing query.
func (e Env) PlaceTy(place *sym.Place) (*sym.Ty, error) {
	var ty *sym.Ty
	var err error
	e.Rt.LoopUntil(func() bool {
		var ok bool
		ty, ok, err = e.TryPlaceTy(place)
		return ok || err != nil
	})
	return ty, err
}

func placeErr(p *sym.Place) (diag.Reported, bool) {
	if k, ok := p.Kind.(*sym.ErrorPlace); ok {
		return k.Reported, true
	}
	return diag.Reported{}, false
}
