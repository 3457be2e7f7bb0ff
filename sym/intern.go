package sym

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Terms are hash-consed: structurally equal types, permissions, and places
// are the same pointer, so equality and map keys are cheap. Keys encode the
// child ids of each node; children are already canonical by construction.

var nextSymID atomic.Uint32

func newSymID() uint32 {
	return nextSymID.Add(1)
}

var store = struct {
	mu     sync.Mutex
	tys    map[string]*Ty
	perms  map[string]*Perm
	places map[string]*Place
}{
	tys:    make(map[string]*Ty),
	perms:  make(map[string]*Perm),
	places: make(map[string]*Place),
}

func internTy(kind TyKind) *Ty {
	key := tyKindKey(kind)
	store.mu.Lock()
	defer store.mu.Unlock()
	if ty, ok := store.tys[key]; ok {
		return ty
	}
	ty := &Ty{id: newSymID(), Kind: kind}
	store.tys[key] = ty
	return ty
}

func internPerm(kind PermKind) *Perm {
	key := permKindKey(kind)
	store.mu.Lock()
	defer store.mu.Unlock()
	if perm, ok := store.perms[key]; ok {
		return perm
	}
	perm := &Perm{id: newSymID(), Kind: kind}
	store.perms[key] = perm
	return perm
}

func internPlace(kind PlaceKind) *Place {
	key := placeKindKey(kind)
	store.mu.Lock()
	defer store.mu.Unlock()
	if place, ok := store.places[key]; ok {
		return place
	}
	place := &Place{id: newSymID(), Kind: kind}
	store.places[key] = place
	return place
}

func tyKindKey(kind TyKind) string {
	var b strings.Builder
	switch k := kind.(type) {
	case *PermTy:
		fmt.Fprintf(&b, "P%d;%d", k.Perm.id, k.Ty.id)
	case *NamedTy:
		fmt.Fprintf(&b, "N%s", tyNameKey(k.Name))
		writeTermIDs(&b, k.Args)
	case *InferTy:
		fmt.Fprintf(&b, "I%d", k.Var)
	case *VarTy:
		fmt.Fprintf(&b, "V%d", k.Var.id)
	case *NeverTy:
		b.WriteString("!")
	case *ErrorTy:
		fmt.Fprintf(&b, "E%p", k.Reported.Diagnostic())
	default:
		panic("unreachable")
	}
	return b.String()
}

func permKindKey(kind PermKind) string {
	var b strings.Builder
	switch k := kind.(type) {
	case *MyPerm:
		b.WriteString("my")
	case *OurPerm:
		b.WriteString("our")
	case *SharedPerm:
		b.WriteString("ref")
		writePlaceIDs(&b, k.Places)
	case *LeasedPerm:
		b.WriteString("mut")
		writePlaceIDs(&b, k.Places)
	case *ApplyPerm:
		fmt.Fprintf(&b, "A%d;%d", k.Left.id, k.Right.id)
	case *InferPerm:
		fmt.Fprintf(&b, "I%d", k.Var)
	case *VarPerm:
		fmt.Fprintf(&b, "V%d", k.Var.id)
	case *ErrorPerm:
		fmt.Fprintf(&b, "E%p", k.Reported.Diagnostic())
	default:
		panic("unreachable")
	}
	return b.String()
}

func placeKindKey(kind PlaceKind) string {
	var b strings.Builder
	switch k := kind.(type) {
	case *VarPlace:
		fmt.Fprintf(&b, "V%d", k.Var.id)
	case *FieldPlace:
		fmt.Fprintf(&b, "F%d;%d.%s", k.Base.id, k.Field.Owner.id, k.Field.Name)
	case *IndexPlace:
		fmt.Fprintf(&b, "X%d", k.Base.id)
	case *InferPlace:
		fmt.Fprintf(&b, "I%d", k.Var)
	case *ErrorPlace:
		fmt.Fprintf(&b, "E%p", k.Reported.Diagnostic())
	default:
		panic("unreachable")
	}
	return b.String()
}

func tyNameKey(name TyName) string {
	switch n := name.(type) {
	case Primitive:
		return fmt.Sprintf("p%d.%d", n.Kind, n.Bits)
	case *Aggregate:
		return fmt.Sprintf("a%d", n.id)
	case FutureName:
		return "fut"
	case TupleName:
		return fmt.Sprintf("t%d", n.Arity)
	default:
		panic("unreachable")
	}
}

func writeTermIDs(b *strings.Builder, terms []GenericTerm) {
	for _, t := range terms {
		switch t := t.(type) {
		case *Ty:
			fmt.Fprintf(b, ";t%d", t.id)
		case *Perm:
			fmt.Fprintf(b, ";p%d", t.id)
		case *Place:
			fmt.Fprintf(b, ";l%d", t.id)
		case ErrorTerm:
			fmt.Fprintf(b, ";e%p", t.Reported.Diagnostic())
		default:
			panic("unreachable")
		}
	}
}

func writePlaceIDs(b *strings.Builder, places []*Place) {
	for _, p := range places {
		fmt.Fprintf(b, ";%d", p.id)
	}
}
