package sym

import (
	"fmt"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
)

// Variable is a generic parameter or a local variable. Variables are
// compared by identity.
type Variable struct {
	id       uint32
	Kind     Kind
	Name     Identifier
	Sp       source.Span
	Universe Universe
}

func NewVariable(kind Kind, name Identifier, sp source.Span, universe Universe) *Variable {
	return &Variable{
		id:       newSymID(),
		Kind:     kind,
		Name:     name,
		Sp:       sp,
		Universe: universe,
	}
}

func (v *Variable) Span() source.Span { return v.Sp }

// ID is a process-unique identity, usable as a hash key.
func (v *Variable) ID() uint32 { return v.id }

func (v *Variable) String() string {
	if v.Name.IsIgnore() {
		return fmt.Sprintf("_%d", v.id)
	}
	return v.Name.Value
}
