package sym

// Subst maps generic variables to the terms replacing them. Applying a
// substitution rebuilds terms bottom-up, so results stay interned.
type Subst map[*Variable]GenericTerm

func (s Subst) Apply(t GenericTerm) GenericTerm {
	switch t := t.(type) {
	case *Ty:
		return s.ApplyTy(t)
	case *Perm:
		return s.ApplyPerm(t)
	case *Place:
		return s.applyPlaceTerm(t)
	case ErrorTerm:
		return t
	default:
		panic("unreachable")
	}
}

func (s Subst) ApplyTy(t *Ty) *Ty {
	switch k := t.Kind.(type) {
	case *PermTy:
		return s.ApplyPerm(k.Perm).ApplyTo(s.ApplyTy(k.Ty))
	case *NamedTy:
		if len(k.Args) == 0 {
			return t
		}
		args := make([]GenericTerm, len(k.Args))
		for i, arg := range k.Args {
			args[i] = s.Apply(arg)
		}
		return Named(k.Name, args)
	case *VarTy:
		if repl, ok := s[k.Var]; ok {
			return AssertTy(repl)
		}
		return t
	case *InferTy, *NeverTy, *ErrorTy:
		return t
	default:
		panic("unreachable")
	}
}

func (s Subst) ApplyPerm(p *Perm) *Perm {
	switch k := p.Kind.(type) {
	case *MyPerm, *OurPerm, *InferPerm, *ErrorPerm:
		return p
	case *SharedPerm:
		return Shared(s.applyPlaces(k.Places))
	case *LeasedPerm:
		return Leased(s.applyPlaces(k.Places))
	case *ApplyPerm:
		return s.ApplyPerm(k.Left).ApplyToPerm(s.ApplyPerm(k.Right))
	case *VarPerm:
		if repl, ok := s[k.Var]; ok {
			return AssertPerm(repl)
		}
		return p
	default:
		panic("unreachable")
	}
}

func (s Subst) ApplyPlace(p *Place) *Place {
	switch k := p.Kind.(type) {
	case *VarPlace:
		if repl, ok := s[k.Var]; ok {
			return AssertPlace(repl)
		}
		return p
	case *FieldPlace:
		return s.ApplyPlace(k.Base).Field(k.Field)
	case *IndexPlace:
		return s.ApplyPlace(k.Base).Index()
	case *InferPlace, *ErrorPlace:
		return p
	default:
		panic("unreachable")
	}
}

func (s Subst) applyPlaceTerm(p *Place) GenericTerm {
	return s.ApplyPlace(p)
}

func (s Subst) applyPlaces(ps []*Place) []*Place {
	out := make([]*Place, len(ps))
	for i, p := range ps {
		out[i] = s.ApplyPlace(p)
	}
	return out
}
