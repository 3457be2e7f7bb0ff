package sym

import (
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/tree"
)

// Expr is a fully typed expression, the output of checking. Unlike terms,
// expressions are not interned.
type Expr struct {
	Sp   source.Span
	Ty   *Ty
	Kind ExprKind
}

func (e *Expr) Span() source.Span { return e.Sp }

type ExprKind interface {
	_ExprKind()
}

// IntLiteral is an integer literal with its parsed bits.
type IntLiteral struct {
	Bits uint64
}

type BoolLiteral struct {
	Value bool
}

// ByteLiteral is the raw data behind a string literal.
type ByteLiteral struct {
	Data []byte
}

type TupleExpr struct {
	Elems []*Expr
}

// BinaryOpExpr is a builtin operator applied to two scalar operands.
type BinaryOpExpr struct {
	Op    tree.BinaryOp
	Left  *Expr
	Right *Expr
}

type NotExpr struct {
	Operand *Expr
}

// LetInExpr binds a variable for the extent of Body. Initializer may be
// nil, meaning the variable starts uninitialized.
type LetInExpr struct {
	Var         *Variable
	VarTy       *Ty
	Initializer *Expr
	Body        *Expr
}

// UsePlaceExpr reads the value of a place. Whether the value moves or
// copies follows the place's type.
type UsePlaceExpr struct {
	Place *PlaceExpr
}

type AssignExpr struct {
	Place *PlaceExpr
	Value *Expr
}

// PermissionOpExpr is `place.give`, `place.mut`, or `place.ref`.
type PermissionOpExpr struct {
	Op    tree.PermissionOp
	Place *PlaceExpr
}

// CallExpr invokes a function. The arguments were evaluated into the given
// temporaries by enclosing LetInExpr nodes; Substitution binds the
// function's generic variables, in signature order.
type CallExpr struct {
	Function     *Function
	Substitution []GenericTerm
	Args         []*Variable
}

type ReturnExpr struct {
	Value *Expr
}

type AwaitExpr struct {
	Value *Expr
}

// MatchExpr selects the first arm whose condition holds. An arm with a nil
// condition always holds.
type MatchExpr struct {
	Arms []MatchArm
}

type MatchArm struct {
	Condition *Expr
	Body      *Expr
}

type ErrorExpr struct {
	Reported diag.Reported
}

func (*IntLiteral) _ExprKind()       {}
func (*BoolLiteral) _ExprKind()      {}
func (*ByteLiteral) _ExprKind()      {}
func (*TupleExpr) _ExprKind()        {}
func (*BinaryOpExpr) _ExprKind()     {}
func (*NotExpr) _ExprKind()          {}
func (*LetInExpr) _ExprKind()        {}
func (*UsePlaceExpr) _ExprKind()     {}
func (*AssignExpr) _ExprKind()       {}
func (*PermissionOpExpr) _ExprKind() {}
func (*CallExpr) _ExprKind()         {}
func (*ReturnExpr) _ExprKind()       {}
func (*AwaitExpr) _ExprKind()        {}
func (*MatchExpr) _ExprKind()        {}
func (*ErrorExpr) _ExprKind()        {}

// ========================

// PlaceExpr is a typed expression denoting a storage location.
type PlaceExpr struct {
	Sp   source.Span
	Ty   *Ty
	Kind PlaceExprKind
}

func (e *PlaceExpr) Span() source.Span { return e.Sp }

type PlaceExprKind interface {
	_PlaceExprKind()
}

type VarPlaceExpr struct {
	Var *Variable
}

type FieldPlaceExpr struct {
	Owner *PlaceExpr
	Field *Field
}

type ErrorPlaceExpr struct {
	Reported diag.Reported
}

func (*VarPlaceExpr) _PlaceExprKind()   {}
func (*FieldPlaceExpr) _PlaceExprKind() {}
func (*ErrorPlaceExpr) _PlaceExprKind() {}

// ToPlace returns the place this expression denotes.
func (e *PlaceExpr) ToPlace() *Place {
	switch k := e.Kind.(type) {
	case *VarPlaceExpr:
		return PlaceVar(k.Var)
	case *FieldPlaceExpr:
		return k.Owner.ToPlace().Field(k.Field)
	case *ErrorPlaceExpr:
		return ErrPlace(k.Reported)
	default:
		panic("unreachable")
	}
}

// ToExpr reads the place as a value.
func (e *PlaceExpr) ToExpr() *Expr {
	return &Expr{Sp: e.Sp, Ty: e.Ty, Kind: &UsePlaceExpr{Place: e}}
}

// ========================

func ErrExpr(sp source.Span, r diag.Reported) *Expr {
	return &Expr{Sp: sp, Ty: ErrTy(r), Kind: &ErrorExpr{Reported: r}}
}

func ErrPlaceExpr(sp source.Span, r diag.Reported) *PlaceExpr {
	return &PlaceExpr{Sp: sp, Ty: ErrTy(r), Kind: &ErrorPlaceExpr{Reported: r}}
}

func BoolExpr(sp source.Span, value bool) *Expr {
	return &Expr{Sp: sp, Ty: Bool(), Kind: &BoolLiteral{Value: value}}
}

func UnitExpr(sp source.Span) *Expr {
	return &Expr{Sp: sp, Ty: Unit(), Kind: &TupleExpr{}}
}

// IfThenElse builds a two-armed match.
func IfThenElse(sp source.Span, ty *Ty, cond, thenExpr, elseExpr *Expr) *Expr {
	return &Expr{Sp: sp, Ty: ty, Kind: &MatchExpr{Arms: []MatchArm{
		{Condition: cond, Body: thenExpr},
		{Condition: nil, Body: elseExpr},
	}}}
}
