package check

import (
	"github.com/benbjohnson/immutable"
	"github.com/davecgh/go-spew/spew"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// NameResolution is the outcome of resolving an identifier. Sym is one of
// *sym.Variable, *sym.Function, *sym.Aggregate, *sym.Module, or
// sym.Primitive; Generics holds generic arguments already applied to it.
type NameResolution struct {
	Generics []sym.GenericTerm
	Sym      any
}

func (r NameResolution) Describe() string {
	switch s := r.Sym.(type) {
	case *sym.Variable:
		return "a variable"
	case *sym.Function:
		return diag.Msgf("the function `%v`", s)
	case *sym.Aggregate:
		return diag.Msgf("the %v `%v`", s.Style, s)
	case *sym.Module:
		return diag.Msgf("the module `%v`", s.Name)
	case sym.Primitive:
		return diag.Msgf("the type `%v`", s)
	default:
		spew.Dump(r.Sym)
		panic("unreachable")
	}
}

// ========================

// FactSet packs the predicates declared to hold of a generic variable.
type FactSet uint8

func (f FactSet) Has(p sym.Predicate) bool {
	return f&(1<<p) != 0
}

func (f FactSet) With(p sym.Predicate) FactSet {
	return f | 1<<p
}

// ========================

// Scope is the lexical environment: name bindings, the types of in-scope
// variables, and declared predicate facts. Backed by persistent maps, so
// forking a scope for a nested block is O(1) and never mutates the parent.
type Scope struct {
	names  *immutable.Map[string, NameResolution]
	varTys *immutable.Map[*sym.Variable, *sym.Ty]
	facts  *immutable.Map[*sym.Variable, FactSet]
}

type variableHasher struct{}

func (variableHasher) Hash(v *sym.Variable) uint32   { return v.ID() }
func (variableHasher) Equal(a, b *sym.Variable) bool { return a == b }

func NewScope() *Scope {
	return &Scope{
		names:  immutable.NewMap[string, NameResolution](nil),
		varTys: immutable.NewMap[*sym.Variable, *sym.Ty](variableHasher{}),
		facts:  immutable.NewMap[*sym.Variable, FactSet](variableHasher{}),
	}
}

func (s *Scope) Bind(name Identifier, res NameResolution) *Scope {
	out := *s
	out.names = s.names.Set(name.Value, res)
	return &out
}

func (s *Scope) BindVar(v *sym.Variable, ty *sym.Ty) *Scope {
	out := *s
	out.varTys = s.varTys.Set(v, ty)
	if !v.Name.IsIgnore() {
		out.names = s.names.Set(v.Name.Value, NameResolution{Sym: v})
	}
	return &out
}

func (s *Scope) DeclareFact(v *sym.Variable, p sym.Predicate) *Scope {
	cur, _ := s.facts.Get(v)
	out := *s
	out.facts = s.facts.Set(v, cur.With(p))
	return &out
}

func (s *Scope) Lookup(name Identifier) (NameResolution, bool) {
	return s.names.Get(name.Value)
}

func (s *Scope) VarTy(v *sym.Variable) (*sym.Ty, bool) {
	return s.varTys.Get(v)
}

func (s *Scope) Facts(v *sym.Variable) FactSet {
	f, _ := s.facts.Get(v)
	return f
}

// ========================

// ResolveName resolves an identifier lexically, then against module items,
// then against the builtin declarations.
func (e Env) ResolveName(name Identifier, sp source.Span) (NameResolution, error) {
	if res, ok := e.Scope.Lookup(name); ok {
		return res, nil
	}
	if e.Module != nil {
		if item, ok := e.Module.ItemNamed(name); ok {
			return NameResolution{Sym: item}, nil
		}
	}
	switch name.Value {
	case "String":
		return NameResolution{Sym: sym.StringClass()}, nil
	case "Pointer":
		return NameResolution{Sym: sym.PointerStruct()}, nil
	}
	r := e.Report(diag.Error(sp, "nothing named `%v` in scope", name))
	return NameResolution{}, r
}

// ResolveRelativeID performs member-style lexical resolution, `owner.id`
// where the owner is a module or an aggregate. Returns false when relative
// resolution does not apply to the owner and type-directed lookup should
// be tried instead.
func (e Env) ResolveRelativeID(res NameResolution, name Identifier, sp source.Span) (NameResolution, bool, error) {
	switch s := res.Sym.(type) {
	case *sym.Module:
		item, ok := s.ItemNamed(name)
		if !ok {
			r := e.Report(diag.Error(sp, "module `%v` has no item named `%v`", s.Name, name))
			return NameResolution{}, true, r
		}
		return NameResolution{Sym: item}, true, nil
	case *sym.Aggregate:
		if fn, ok := s.MethodNamed(name); ok {
			return NameResolution{Generics: res.Generics, Sym: fn}, true, nil
		}
		r := e.Report(diag.Error(sp, "%v `%v` has no member named `%v`", s.Style, s, name).
			Label(diag.LevelInfo, s.NameSp, "`%v` declared here", s))
		return NameResolution{}, true, r
	default:
		return NameResolution{}, false, nil
	}
}

// ResolveRelativeGenericArgs applies explicit generic arguments to a
// resolved name, `owner[args]`.
func (e Env) ResolveRelativeGenericArgs(res NameResolution, args []sym.GenericTerm, sp source.Span) (NameResolution, error) {
	if len(res.Generics) > 0 {
		r := e.Report(diag.Error(sp, "generic arguments already applied"))
		return NameResolution{}, r
	}
	switch s := res.Sym.(type) {
	case *sym.Aggregate:
		if len(args) != len(s.Generics) {
			r := e.Report(diag.Error(sp, "expected %d generic arguments, found %d", len(s.Generics), len(args)).
				Label(diag.LevelInfo, s.NameSp, "`%v` declared here", s))
			return NameResolution{}, r
		}
		for i, g := range s.Generics {
			if !args[i].HasKind(g.Kind) {
				r := e.Report(diag.Error(sp, "expected a %v for `%v`, found %s", g.Kind, g, sym.Describe(args[i])))
				return NameResolution{}, r
			}
		}
		return NameResolution{Generics: args, Sym: s}, nil
	case *sym.Function:
		return NameResolution{Generics: args, Sym: s}, nil
	default:
		r := e.Report(diag.Error(sp, "%s does not take generic arguments", res.Describe()))
		return NameResolution{}, r
	}
}
