package sym

import (
	"sync"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
)

// Builtin declarations the checker desugars against. They are constructed
// once; well-known items live in every module's scope.

var wellKnown struct {
	once       sync.Once
	str        *Aggregate
	pointer    *Aggregate
	strLiteral *Function
}

func builtinSpan() source.Span {
	return source.Span{File: "<builtin>"}
}

func initWellKnown() {
	sp := builtinSpan()

	wellKnown.pointer = NewAggregate(NewIdentifier("Pointer"), sp, sp, StructStyle)
	wellKnown.pointer.Generics = []*Variable{
		NewVariable(KindTy, NewIdentifier("T"), sp, RootUniverse),
	}

	wellKnown.str = NewAggregate(NewIdentifier("String"), sp, sp, ClassStyle)

	// String.literal(data: my Pointer[u8], len: u64) -> my String
	dataPlace := NewVariable(KindPlace, NewIdentifier("data"), sp, RootUniverse)
	lenPlace := NewVariable(KindPlace, NewIdentifier("len"), sp, RootUniverse)
	sig := &Signature{
		InputPlaces: []*Variable{dataPlace, lenPlace},
		Inputs: []*Ty{
			Named(wellKnown.pointer, []GenericTerm{U8()}),
			U64(),
		},
		Output: Named(wellKnown.str, nil),
	}
	wellKnown.strLiteral = NewFunction(NewIdentifier("literal"), sp, sp, wellKnown.str, sig)
	wellKnown.str.Methods = []*Function{wellKnown.strLiteral}
}

// StringClass is the builtin `String` class.
func StringClass() *Aggregate {
	wellKnown.once.Do(initWellKnown)
	return wellKnown.str
}

// PointerStruct is the builtin `Pointer[T]` struct backing raw data.
func PointerStruct() *Aggregate {
	wellKnown.once.Do(initWellKnown)
	return wellKnown.pointer
}

// StringLiteralFn is `String.literal`, the target of string literal
// desugaring.
func StringLiteralFn() *Function {
	wellKnown.once.Do(initWellKnown)
	return wellKnown.strLiteral
}

// StringTy is `my String`.
func StringTy() *Ty {
	return Named(StringClass(), nil)
}
