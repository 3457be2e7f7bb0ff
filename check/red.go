package check

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
)

// RedTy is a type reduced for structural comparison: the permission
// qualifiers are stripped into a side channel, leaving only the head shape.
// Permission compatibility is checked separately.
type RedTy interface {
	_RedTy()
}

type RedNamed struct {
	Name sym.TyName
	Args []sym.GenericTerm
}

type RedNever struct{}

type RedVar struct {
	Var *sym.Variable
}

type RedInfer struct {
	Var sym.InferID
}

type RedErr struct {
	Reported diag.Reported
}

func (*RedNamed) _RedTy() {}
func (*RedNever) _RedTy() {}
func (*RedVar) _RedTy()   {}
func (*RedInfer) _RedTy() {}
func (*RedErr) _RedTy()   {}

// ToRedTy strips ty's permission qualifiers into a composed permission and
// returns the head shape. An unresolved inference variable reduces to
// RedInfer with its paired permission variable; resolving through its
// bounds is the caller's choice.
func (e Env) ToRedTy(ty *sym.Ty) (*sym.Perm, RedTy) {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		perm, red := e.ToRedTy(k.Ty)
		return k.Perm.ApplyToPerm(perm), red
	case *sym.NamedTy:
		return sym.My(), &RedNamed{Name: k.Name, Args: k.Args}
	case *sym.InferTy:
		return sym.PermInfer(e.Rt.PermPair(k.Var)), &RedInfer{Var: k.Var}
	case *sym.VarTy:
		return sym.My(), &RedVar{Var: k.Var}
	case *sym.NeverTy:
		return sym.My(), &RedNever{}
	case *sym.ErrorTy:
		return sym.My(), &RedErr{Reported: k.Reported}
	default:
		spew.Dump(ty)
		panic("unreachable")
	}
}

// tryToRedTy reduces like ToRedTy but resolves inference variables through
// their current bounds; ok is false while an inference variable on the
// spine has no bound yet.
func (e Env) tryToRedTy(ty *sym.Ty) (*sym.Perm, RedTy, bool) {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		perm, red, ok := e.tryToRedTy(k.Ty)
		if !ok {
			return nil, nil, false
		}
		return k.Perm.ApplyToPerm(perm), red, true
	case *sym.InferTy:
		b, ok := e.Rt.Representative(k.Var)
		if !ok {
			return nil, nil, false
		}
		return e.tryToRedTy(sym.AssertTy(b.Term))
	default:
		perm, red := e.ToRedTy(ty)
		return perm, red, true
	}
}

// sameHead reports whether two red heads name the same type constructor.
func sameHead(a, b *RedNamed) bool {
	switch an := a.Name.(type) {
	case sym.Primitive:
		bn, ok := b.Name.(sym.Primitive)
		return ok && an == bn
	case *sym.Aggregate:
		return a.Name == b.Name
	case sym.FutureName:
		_, ok := b.Name.(sym.FutureName)
		return ok
	case sym.TupleName:
		bn, ok := b.Name.(sym.TupleName)
		return ok && an == bn
	default:
		spew.Dump(a.Name)
		panic("unreachable")
	}
}
