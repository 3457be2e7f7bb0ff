package sym

import (
	"fmt"
	"strings"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
)

// Perm is an interned permission.
type Perm struct {
	id   uint32
	Kind PermKind
}

func (*Perm) _GenericTerm() {}

func (*Perm) HasKind(kind Kind) bool { return kind == KindPerm }

type PermKind interface {
	_PermKind()
}

// MyPerm is `my`: uniquely owned.
type MyPerm struct{}

// OurPerm is `our`: shared by value.
type OurPerm struct{}

// SharedPerm is `ref[p...]`: borrowed-readable from a set of places.
type SharedPerm struct {
	Places []*Place
}

// LeasedPerm is `mut[p...]`: borrowed-exclusive from a set of places.
type LeasedPerm struct {
	Places []*Place
}

// ApplyPerm is sequential composition `left right`, e.g. `ref[x] mut[y]`.
type ApplyPerm struct {
	Left  *Perm
	Right *Perm
}

type InferPerm struct {
	Var InferID
}

type VarPerm struct {
	Var *Variable
}

type ErrorPerm struct {
	Reported diag.Reported
}

func (*MyPerm) _PermKind()     {}
func (*OurPerm) _PermKind()    {}
func (*SharedPerm) _PermKind() {}
func (*LeasedPerm) _PermKind() {}
func (*ApplyPerm) _PermKind()  {}
func (*InferPerm) _PermKind()  {}
func (*VarPerm) _PermKind()    {}
func (*ErrorPerm) _PermKind()  {}

// ========================

func My() *Perm {
	return internPerm(&MyPerm{})
}

func Our() *Perm {
	return internPerm(&OurPerm{})
}

func Shared(places []*Place) *Perm {
	return internPerm(&SharedPerm{Places: places})
}

func Leased(places []*Place) *Perm {
	return internPerm(&LeasedPerm{Places: places})
}

func Apply(left, right *Perm) *Perm {
	return internPerm(&ApplyPerm{Left: left, Right: right})
}

func PermVar(v *Variable) *Perm {
	if v.Kind != KindPerm {
		panic("variable is not a permission variable")
	}
	return internPerm(&VarPerm{Var: v})
}

func PermInfer(id InferID) *Perm {
	return internPerm(&InferPerm{Var: id})
}

func ErrPerm(r diag.Reported) *Perm {
	return internPerm(&ErrorPerm{Reported: r})
}

// ApplyTo qualifies ty with p. `my` is the identity permission and does not
// wrap.
func (p *Perm) ApplyTo(ty *Ty) *Ty {
	if _, ok := p.Kind.(*MyPerm); ok {
		return ty
	}
	return Qualified(p, ty)
}

// ApplyToPerm composes p before q, collapsing `my` on either side.
func (p *Perm) ApplyToPerm(q *Perm) *Perm {
	if _, ok := p.Kind.(*MyPerm); ok {
		return q
	}
	if _, ok := q.Kind.(*MyPerm); ok {
		return p
	}
	return Apply(p, q)
}

// Leaves flattens Apply nodes and returns the non-application permissions
// in left-to-right order: for `ref[x] mut[y]` the order is
// `ref[x], mut[y]`.
func (p *Perm) Leaves() []*Perm {
	var leaves []*Perm
	stack := []*Perm{p}
	for len(stack) > 0 {
		var perm *Perm
		perm, stack = PopBack(stack)
		switch k := perm.Kind.(type) {
		case *ApplyPerm:
			stack = append(stack, k.Right, k.Left)
		default:
			leaves = append(leaves, perm)
		}
	}
	return leaves
}

func (p *Perm) String() string {
	switch k := p.Kind.(type) {
	case *MyPerm:
		return "my"
	case *OurPerm:
		return "our"
	case *SharedPerm:
		return fmt.Sprintf("ref[%s]", placeList(k.Places))
	case *LeasedPerm:
		return fmt.Sprintf("mut[%s]", placeList(k.Places))
	case *ApplyPerm:
		return fmt.Sprintf("%v %v", k.Left, k.Right)
	case *InferPerm:
		return fmt.Sprintf("?%d", k.Var)
	case *VarPerm:
		return k.Var.String()
	case *ErrorPerm:
		return "<error>"
	default:
		panic("unreachable")
	}
}

func placeList(places []*Place) string {
	parts := make([]string, 0, len(places))
	for _, place := range places {
		parts = append(parts, place.String())
	}
	return strings.Join(parts, ", ")
}
