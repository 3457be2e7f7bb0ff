package sym

import (
	"fmt"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
)

// Place is an interned path denoting a storage location.
type Place struct {
	id   uint32
	Kind PlaceKind
}

func (*Place) _GenericTerm() {}

func (*Place) HasKind(kind Kind) bool { return kind == KindPlace }

// ID is a process-unique identity, usable as a hash key.
func (p *Place) ID() uint32 { return p.id }

type PlaceKind interface {
	_PlaceKind()
}

// VarPlace is a variable, `x`.
type VarPlace struct {
	Var *Variable
}

// FieldPlace is `base.f`.
type FieldPlace struct {
	Base  *Place
	Field *Field
}

// IndexPlace is `base[_]`.
type IndexPlace struct {
	Base *Place
}

type InferPlace struct {
	Var InferID
}

type ErrorPlace struct {
	Reported diag.Reported
}

func (*VarPlace) _PlaceKind()   {}
func (*FieldPlace) _PlaceKind() {}
func (*IndexPlace) _PlaceKind() {}
func (*InferPlace) _PlaceKind() {}
func (*ErrorPlace) _PlaceKind() {}

// ========================

func PlaceVar(v *Variable) *Place {
	if v.Kind != KindPlace {
		panic("variable is not a place variable")
	}
	return internPlace(&VarPlace{Var: v})
}

func PlaceInfer(id InferID) *Place {
	return internPlace(&InferPlace{Var: id})
}

func ErrPlace(r diag.Reported) *Place {
	return internPlace(&ErrorPlace{Reported: r})
}

func (p *Place) Field(f *Field) *Place {
	return internPlace(&FieldPlace{Base: p, Field: f})
}

func (p *Place) Index() *Place {
	return internPlace(&IndexPlace{Base: p})
}

// NoInferenceVars reports whether p contains no inference variables.
func (p *Place) NoInferenceVars() bool {
	switch k := p.Kind.(type) {
	case *VarPlace:
		return true
	case *FieldPlace:
		return k.Base.NoInferenceVars()
	case *IndexPlace:
		return k.Base.NoInferenceVars()
	case *InferPlace:
		return false
	case *ErrorPlace:
		return true
	default:
		panic("unreachable")
	}
}

// Covers reports whether p includes all of other: `a` covers `a.b`.
// Neither place may contain inference variables.
func (p *Place) Covers(other *Place) bool {
	Assert(p.NoInferenceVars(), "place contains inference variables")
	Assert(other.NoInferenceVars(), "place contains inference variables")
	if p == other {
		return true
	}
	switch k := other.Kind.(type) {
	case *FieldPlace:
		return p.Covers(k.Base)
	case *IndexPlace:
		return p.Covers(k.Base)
	default:
		return false
	}
}

func (p *Place) IsCoveredBy(other *Place) bool {
	return other.Covers(p)
}

func (p *Place) String() string {
	switch k := p.Kind.(type) {
	case *VarPlace:
		return k.Var.String()
	case *FieldPlace:
		return fmt.Sprintf("%v.%s", k.Base, k.Field.Name)
	case *IndexPlace:
		return fmt.Sprintf("%v[_]", k.Base)
	case *InferPlace:
		return fmt.Sprintf("?%d", k.Var)
	case *ErrorPlace:
		return "<error>"
	default:
		panic("unreachable")
	}
}
