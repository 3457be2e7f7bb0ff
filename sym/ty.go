package sym

import (
	"fmt"
	"strings"

	"github.com/duna-lang/duna/diag"
)

// Ty is an interned type. Structurally equal types are pointer-equal.
type Ty struct {
	id   uint32
	Kind TyKind
}

func (*Ty) _GenericTerm() {}

func (*Ty) HasKind(kind Kind) bool { return kind == KindTy }

type TyKind interface {
	_TyKind()
}

// PermTy is a permission-qualified type, e.g. `ref[x] String`.
type PermTy struct {
	Perm *Perm
	Ty   *Ty
}

// NamedTy is `name[arg1, arg2]`, e.g. `Vec[String]`.
// The generic arguments must be well-kinded and of the declared number.
type NamedTy struct {
	Name TyName
	Args []GenericTerm
}

// InferTy is an unresolved inference variable, e.g. `?X`.
type InferTy struct {
	Var InferID
}

// VarTy references a generic variable, e.g. `T`.
type VarTy struct {
	Var *Variable
}

// NeverTy is the type of values that can never be created, denoted `!`.
type NeverTy struct{}

// ErrorTy records that some error occurred and was reported to the user.
type ErrorTy struct {
	Reported diag.Reported
}

func (*PermTy) _TyKind()  {}
func (*NamedTy) _TyKind() {}
func (*InferTy) _TyKind() {}
func (*VarTy) _TyKind()   {}
func (*NeverTy) _TyKind() {}
func (*ErrorTy) _TyKind() {}

// ========================

type TyName interface {
	_TyName()
}

type PrimitiveKind int

const (
	PrimBool PrimitiveKind = iota
	PrimInt
	PrimUint
	PrimFloat
)

type Primitive struct {
	Kind PrimitiveKind
	Bits int
}

func (Primitive) _TyName() {}

func (p Primitive) String() string {
	switch p.Kind {
	case PrimBool:
		return "bool"
	case PrimInt:
		return fmt.Sprintf("i%d", p.Bits)
	case PrimUint:
		return fmt.Sprintf("u%d", p.Bits)
	case PrimFloat:
		return fmt.Sprintf("f%d", p.Bits)
	default:
		panic("unreachable")
	}
}

// FutureName is the builtin `Future` type constructor.
type FutureName struct{}

func (FutureName) _TyName() {}

func (FutureName) String() string { return "Future" }

type TupleName struct {
	Arity int
}

func (TupleName) _TyName() {}

func (n TupleName) String() string { return fmt.Sprintf("%d-tuple", n.Arity) }

// ========================

func Named(name TyName, args []GenericTerm) *Ty {
	return internTy(&NamedTy{Name: name, Args: args})
}

func PrimitiveTy(p Primitive) *Ty {
	return Named(p, nil)
}

func Bool() *Ty { return PrimitiveTy(Primitive{Kind: PrimBool, Bits: 1}) }

func I32() *Ty { return PrimitiveTy(Primitive{Kind: PrimInt, Bits: 32}) }
func I64() *Ty { return PrimitiveTy(Primitive{Kind: PrimInt, Bits: 64}) }
func U8() *Ty  { return PrimitiveTy(Primitive{Kind: PrimUint, Bits: 8}) }
func U64() *Ty { return PrimitiveTy(Primitive{Kind: PrimUint, Bits: 64}) }

// Unit is the empty tuple type `()`.
func Unit() *Ty {
	return Named(TupleName{Arity: 0}, nil)
}

func Never() *Ty {
	return internTy(&NeverTy{})
}

func Tuple(elems []GenericTerm) *Ty {
	return Named(TupleName{Arity: len(elems)}, elems)
}

func Future(ty *Ty) *Ty {
	return Named(FutureName{}, []GenericTerm{ty})
}

func TyVar(v *Variable) *Ty {
	if v.Kind != KindTy {
		panic("variable is not a type variable")
	}
	return internTy(&VarTy{Var: v})
}

func TyInfer(id InferID) *Ty {
	return internTy(&InferTy{Var: id})
}

func ErrTy(r diag.Reported) *Ty {
	return internTy(&ErrorTy{Reported: r})
}

// Qualified wraps ty under perm. The caller usually wants Perm.ApplyTo,
// which collapses `my`.
func Qualified(perm *Perm, ty *Ty) *Ty {
	return internTy(&PermTy{Perm: perm, Ty: ty})
}

// SharedFrom qualifies ty as shared from the given place.
func (t *Ty) SharedFrom(place *Place) *Ty {
	return Qualified(Shared([]*Place{place}), t)
}

// LeasedFrom qualifies ty as leased from the given place.
func (t *Ty) LeasedFrom(place *Place) *Ty {
	return Qualified(Leased([]*Place{place}), t)
}

// IsNumeric reports whether t is a numeric primitive.
func (t *Ty) IsNumeric() bool {
	named, ok := t.Kind.(*NamedTy)
	if !ok {
		return false
	}
	prim, ok := named.Name.(Primitive)
	if !ok {
		return false
	}
	switch prim.Kind {
	case PrimInt, PrimUint, PrimFloat:
		return true
	default:
		return false
	}
}

func (t *Ty) String() string {
	switch k := t.Kind.(type) {
	case *PermTy:
		return fmt.Sprintf("%v %v", k.Perm, k.Ty)
	case *NamedTy:
		if len(k.Args) == 0 {
			return fmt.Sprintf("%v", k.Name)
		}
		parts := make([]string, 0, len(k.Args))
		for _, arg := range k.Args {
			parts = append(parts, fmt.Sprintf("%v", arg))
		}
		return fmt.Sprintf("%v[%s]", k.Name, strings.Join(parts, ", "))
	case *InferTy:
		return fmt.Sprintf("?%d", k.Var)
	case *VarTy:
		return k.Var.String()
	case *NeverTy:
		return "!"
	case *ErrorTy:
		return "<error>"
	default:
		panic("unreachable")
	}
}
