package sym

import (
	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
)

type AggregateStyle int

const (
	// ClassStyle aggregates are nominal reference types. Their values own
	// their fields and are never copy.
	ClassStyle AggregateStyle = iota
	// StructStyle aggregates are value types whose permission behavior
	// follows their fields.
	StructStyle
)

func (s AggregateStyle) String() string {
	switch s {
	case ClassStyle:
		return "class"
	case StructStyle:
		return "struct"
	default:
		panic("unreachable")
	}
}

// Aggregate is a class or struct declaration. Aggregates are compared by
// identity.
type Aggregate struct {
	id     uint32
	Name   Identifier
	Sp     source.Span
	NameSp source.Span
	Style  AggregateStyle

	// Generics are the declared generic parameters, in order.
	Generics []*Variable
	// SelfPlace is the implicit place variable bound to `self`. Field
	// types may mention it.
	SelfPlace *Variable

	Fields  []*Field
	Methods []*Function
}

func (*Aggregate) _TyName() {}

func NewAggregate(name Identifier, sp, nameSp source.Span, style AggregateStyle) *Aggregate {
	return &Aggregate{
		id:        newSymID(),
		Name:      name,
		Sp:        sp,
		NameSp:    nameSp,
		Style:     style,
		SelfPlace: NewVariable(KindPlace, NewIdentifier("self"), nameSp, RootUniverse),
	}
}

func (a *Aggregate) String() string { return a.Name.Value }

func (a *Aggregate) Span() source.Span { return a.Sp }

// SelfTy is the type of the aggregate applied to its own generics.
func (a *Aggregate) SelfTy() *Ty {
	args := make([]GenericTerm, 0, len(a.Generics))
	for _, g := range a.Generics {
		args = append(args, VarTerm(g))
	}
	return Named(a, args)
}

func (a *Aggregate) FieldNamed(name Identifier) (*Field, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (a *Aggregate) MethodNamed(name Identifier) (*Function, bool) {
	for _, m := range a.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Constructor returns the aggregate's `new` method, if declared.
func (a *Aggregate) Constructor() (*Function, bool) {
	return a.MethodNamed(NewIdentifier("new"))
}

// ========================

// Field is a field of an aggregate. The field type may mention the owner's
// generics and the owner's self place.
type Field struct {
	Owner *Aggregate
	Name  Identifier
	Sp    source.Span
	Ty    *Ty
}

func (f *Field) Span() source.Span { return f.Sp }

// TyFor returns the field's type with the self place replaced by the place
// of the actual owner and the owner generics replaced by args.
func (f *Field) TyFor(owner *Place, args []GenericTerm) *Ty {
	subst := Subst{f.Owner.SelfPlace: owner}
	Assert(len(args) == len(f.Owner.Generics), "wrong number of generic arguments")
	for i, g := range f.Owner.Generics {
		subst[g] = args[i]
	}
	return subst.ApplyTy(f.Ty)
}

// ========================

// Function is a function or method declaration.
type Function struct {
	id     uint32
	Name   Identifier
	Sp     source.Span
	NameSp source.Span

	// Enclosing is the aggregate this function is a method of, or nil for
	// a module-level function.
	Enclosing *Aggregate

	sig    *Signature
	sigErr *diag.Reported
}

func NewFunction(name Identifier, sp, nameSp source.Span, enclosing *Aggregate, sig *Signature) *Function {
	return &Function{
		id:        newSymID(),
		Name:      name,
		Sp:        sp,
		NameSp:    nameSp,
		Enclosing: enclosing,
		sig:       sig,
	}
}

// NewErrFunction records a function whose signature failed to check.
func NewErrFunction(name Identifier, sp, nameSp source.Span, enclosing *Aggregate, r diag.Reported) *Function {
	return &Function{
		id:        newSymID(),
		Name:      name,
		Sp:        sp,
		NameSp:    nameSp,
		Enclosing: enclosing,
		sigErr:    &r,
	}
}

func (f *Function) String() string { return f.Name.Value }

func (f *Function) Span() source.Span { return f.Sp }

// CheckedSignature returns the function's signature, or the error
// reported while checking it.
func (f *Function) CheckedSignature() (*Signature, error) {
	if f.sigErr != nil {
		return nil, *f.sigErr
	}
	return f.sig, nil
}

// TransitiveGenericParams returns the enclosing aggregate's generics
// followed by the function's own, the order generic arguments bind in.
func (f *Function) TransitiveGenericParams() []*Variable {
	if f.sig == nil {
		return nil
	}
	return f.sig.Variables
}

// OwnGenericParams returns just the function's own generics.
func (f *Function) OwnGenericParams() []*Variable {
	if f.sig == nil {
		return nil
	}
	return f.sig.Variables[len(f.sig.Variables)-f.sig.OwnCount:]
}

// ========================

// ModuleItem is a top-level declaration: *Aggregate or *Function.
type ModuleItem interface {
	ItemName() Identifier
}

func (a *Aggregate) ItemName() Identifier { return a.Name }
func (f *Function) ItemName() Identifier  { return f.Name }

type Module struct {
	Name  Identifier
	Items []ModuleItem
}

func (m *Module) ItemNamed(name Identifier) (ModuleItem, bool) {
	for _, item := range m.Items {
		if item.ItemName() == name {
			return item, true
		}
	}
	return nil, false
}
