package sym

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/diag"
)

// Kind classifies generic terms: every generic parameter, argument, and
// inference variable is a type, a permission, or a place.
type Kind int

const (
	KindTy Kind = iota
	KindPerm
	KindPlace
)

func (k Kind) String() string {
	switch k {
	case KindTy:
		return "type"
	case KindPerm:
		return "perm"
	case KindPlace:
		return "place"
	default:
		panic("unreachable")
	}
}

// InferID indexes an inference variable within one check session.
type InferID int

// GenericTerm is the sum of the three term sorts plus the error term.
// Implemented by *Ty, *Perm, *Place, and ErrorTerm.
type GenericTerm interface {
	// HasKind reports whether the term can be said to have the given kind.
	// Error terms report true for every kind.
	HasKind(kind Kind) bool
	_GenericTerm()
}

// ErrorTerm is a generic term standing for an error that has already been
// reported.
type ErrorTerm struct {
	Reported diag.Reported
}

func (ErrorTerm) HasKind(Kind) bool { return true }
func (ErrorTerm) _GenericTerm()     {}

// TermKind returns the kind of a term, or the underlying Reported for an
// error term.
func TermKind(t GenericTerm) (Kind, error) {
	switch t := t.(type) {
	case *Ty:
		return KindTy, nil
	case *Perm:
		return KindPerm, nil
	case *Place:
		return KindPlace, nil
	case ErrorTerm:
		return 0, t.Reported
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}

// AssertTy downcasts a term to a type. The caller must have established the
// kind already; a mismatch is a checker bug.
func AssertTy(t GenericTerm) *Ty {
	switch t := t.(type) {
	case *Ty:
		return t
	case ErrorTerm:
		return ErrTy(t.Reported)
	default:
		spew.Dump(t)
		panic("term is not a type")
	}
}

func AssertPerm(t GenericTerm) *Perm {
	switch t := t.(type) {
	case *Perm:
		return t
	case ErrorTerm:
		return ErrPerm(t.Reported)
	default:
		spew.Dump(t)
		panic("term is not a permission")
	}
}

func AssertPlace(t GenericTerm) *Place {
	switch t := t.(type) {
	case *Place:
		return t
	case ErrorTerm:
		return ErrPlace(t.Reported)
	default:
		spew.Dump(t)
		panic("term is not a place")
	}
}

// AsInfer returns the inference variable behind a term, if the term is one.
func AsInfer(t GenericTerm) (InferID, bool) {
	switch t := t.(type) {
	case *Ty:
		if k, ok := t.Kind.(*InferTy); ok {
			return k.Var, true
		}
	case *Perm:
		if k, ok := t.Kind.(*InferPerm); ok {
			return k.Var, true
		}
	case *Place:
		if k, ok := t.Kind.(*InferPlace); ok {
			return k.Var, true
		}
	}
	return 0, false
}

// VarTerm wraps a generic variable as a term of the variable's kind.
func VarTerm(v *Variable) GenericTerm {
	switch v.Kind {
	case KindTy:
		return TyVar(v)
	case KindPerm:
		return PermVar(v)
	case KindPlace:
		return PlaceVar(v)
	default:
		panic("unreachable")
	}
}

// InferTerm wraps an inference variable as a term of the given kind.
func InferTerm(kind Kind, id InferID) GenericTerm {
	switch kind {
	case KindTy:
		return TyInfer(id)
	case KindPerm:
		return PermInfer(id)
	case KindPlace:
		return PlaceInfer(id)
	default:
		panic("unreachable")
	}
}

// ErrTerm wraps a reported error as a term.
func ErrTerm(r diag.Reported) GenericTerm {
	return ErrorTerm{Reported: r}
}

// Describe returns a phrase like "type `X`", used in diagnostics.
func Describe(t GenericTerm) string {
	switch t := t.(type) {
	case *Ty:
		return diag.Msgf("type `%v`", t)
	case *Perm:
		return diag.Msgf("permission `%v`", t)
	case *Place:
		return diag.Msgf("place `%v`", t)
	case ErrorTerm:
		return "(error)"
	default:
		spew.Dump(t)
		panic("unreachable")
	}
}
