package sym

// Universe identifies a binding level for generic variables. Terms may
// only mention variables from their own universe or an enclosing one.
type Universe uint32

// RootUniverse holds the generic parameters of the item being checked.
const RootUniverse Universe = 1

func (u Universe) Next() Universe { return u + 1 }

func (u Universe) CanSee(other Universe) bool { return other <= u }

func maxUniverse(a, b Universe) Universe {
	if a > b {
		return a
	}
	return b
}

// MaxUniverse returns the highest universe of any variable mentioned in t.
// Terms with no variables are in the root universe.
func MaxUniverse(t GenericTerm) Universe {
	switch t := t.(type) {
	case *Ty:
		return maxUniverseTy(t)
	case *Perm:
		return maxUniversePerm(t)
	case *Place:
		return maxUniversePlace(t)
	case ErrorTerm:
		return RootUniverse
	default:
		panic("unreachable")
	}
}

func maxUniverseTy(t *Ty) Universe {
	switch k := t.Kind.(type) {
	case *PermTy:
		return maxUniverse(maxUniversePerm(k.Perm), maxUniverseTy(k.Ty))
	case *NamedTy:
		u := RootUniverse
		for _, arg := range k.Args {
			u = maxUniverse(u, MaxUniverse(arg))
		}
		return u
	case *VarTy:
		return k.Var.Universe
	case *InferTy, *NeverTy, *ErrorTy:
		return RootUniverse
	default:
		panic("unreachable")
	}
}

func maxUniversePerm(p *Perm) Universe {
	switch k := p.Kind.(type) {
	case *MyPerm, *OurPerm, *InferPerm, *ErrorPerm:
		return RootUniverse
	case *SharedPerm:
		return maxUniversePlaces(k.Places)
	case *LeasedPerm:
		return maxUniversePlaces(k.Places)
	case *ApplyPerm:
		return maxUniverse(maxUniversePerm(k.Left), maxUniversePerm(k.Right))
	case *VarPerm:
		return k.Var.Universe
	default:
		panic("unreachable")
	}
}

func maxUniversePlace(p *Place) Universe {
	switch k := p.Kind.(type) {
	case *VarPlace:
		return k.Var.Universe
	case *FieldPlace:
		return maxUniversePlace(k.Base)
	case *IndexPlace:
		return maxUniversePlace(k.Base)
	case *InferPlace, *ErrorPlace:
		return RootUniverse
	default:
		panic("unreachable")
	}
}

func maxUniversePlaces(ps []*Place) Universe {
	u := RootUniverse
	for _, p := range ps {
		u = maxUniverse(u, maxUniversePlace(p))
	}
	return u
}
