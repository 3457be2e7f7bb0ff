package common

// Identifier is a source-level name. The zero value is not a valid name;
// use IgnoreIdent for the discard binding.
type Identifier struct {
	Value string
}

// IgnoreIdent is the `_` name. Variables carrying it never enter scope.
var IgnoreIdent = Identifier{Value: "_"}

func NewIdentifier(name string) Identifier {
	return Identifier{Value: name}
}

func (i Identifier) String() string {
	return i.Value
}

// IsIgnore reports whether this is the discard name.
func (i Identifier) IsIgnore() bool {
	return i == IgnoreIdent
}
