package tree

import (
	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
)

// Syntactic types and permissions, as written by the user.

type Type interface {
	Node
	_Type()
}

type TypeBase struct {
	NodeBase
}

func (TypeBase) _Type() {}

type NameType struct {
	TypeBase
	Id   Identifier
	Args []GenericTerm
}

// PermType is a permission-qualified type, e.g. `ref[x] String`.
type PermType struct {
	TypeBase
	Perm  Perm
	Inner Type
}

// ========================

type Perm interface {
	Node
	_Perm()
}

type PermBase struct {
	NodeBase
}

func (PermBase) _Perm() {}

type MyPerm struct {
	PermBase
}

type OurPerm struct {
	PermBase
}

type RefPerm struct {
	PermBase
	Places []*PlacePath
}

type MutPerm struct {
	PermBase
	Places []*PlacePath
}

// NamePerm references a declared permission generic, e.g. `P`.
type NamePerm struct {
	PermBase
	Id Identifier
}

// ========================

// PlacePath is a syntactic place: a variable followed by field selections.
type PlacePath struct {
	NodeBase
	Var    Identifier
	Fields []Identifier
}

// ========================

// GenericTerm is a syntactic generic argument: a type, a permission, or a
// place.
type GenericTerm interface {
	Node
	_GenericTerm()
}

type TypeArg struct {
	Type Type
}

func (a TypeArg) Span() source.Span { return a.Type.Span() }
func (TypeArg) _GenericTerm()       {}

type PermArg struct {
	Perm Perm
}

func (a PermArg) Span() source.Span { return a.Perm.Span() }
func (PermArg) _GenericTerm()       {}

type PlaceArg struct {
	Place *PlacePath
}

func (a PlaceArg) Span() source.Span { return a.Place.Span() }
func (PlaceArg) _GenericTerm()       {}
