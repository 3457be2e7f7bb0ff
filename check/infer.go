package check

import (
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

// Bound is a lower bound recorded against an inference variable, with the
// span whose checking produced it.
type Bound struct {
	Term sym.GenericTerm
	Sp   source.Span
}

// InferVar is one inference variable's mutable state. All fields past the
// identity block are guarded by the runtime lock and only ever tighten:
// bounds are appended, facts are set once, nothing is retracted.
type InferVar struct {
	ID       sym.InferID
	Kind     sym.Kind
	Sp       source.Span
	Universe sym.Universe

	// PermPair is the permission variable allocated alongside a type
	// variable; reduction of an unresolved type refers to it.
	PermPair sym.InferID

	bounds    []Bound
	numericSp *source.Span
	required  [sym.NumPredicates]*source.Span
}

// representative picks the bound that stands for the variable's value.
// Never bounds only represent the variable when nothing else does, so a
// `return`-ending arm does not pin a join to `!`.
func (iv *InferVar) representative() (Bound, bool) {
	for _, b := range iv.bounds {
		if ty, ok := b.Term.(*sym.Ty); ok {
			if _, isNever := ty.Kind.(*sym.NeverTy); isNever {
				continue
			}
		}
		return b, true
	}
	if len(iv.bounds) > 0 {
		return iv.bounds[0], true
	}
	return Bound{}, false
}

// ========================

func (rt *Runtime) NewInfer(kind sym.Kind, sp source.Span, universe sym.Universe) sym.InferID {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	iv := rt.newInferLocked(kind, sp, universe)
	if kind == sym.KindTy {
		iv.PermPair = rt.newInferLocked(sym.KindPerm, sp, universe).ID
	}
	return iv.ID
}

func (rt *Runtime) newInferLocked(kind sym.Kind, sp source.Span, universe sym.Universe) *InferVar {
	iv := &InferVar{
		ID:       sym.InferID(len(rt.infers)),
		Kind:     kind,
		Sp:       sp,
		Universe: universe,
	}
	rt.infers = append(rt.infers, iv)
	InferPrintf("infer: new ?%d (%v) at %v\n", iv.ID, kind, sp)
	return iv
}

func (rt *Runtime) infer(id sym.InferID) *InferVar {
	return rt.infers[id]
}

func (rt *Runtime) KindOf(id sym.InferID) sym.Kind {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.infer(id).Kind
}

func (rt *Runtime) SpanOf(id sym.InferID) source.Span {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.infer(id).Sp
}

// PermPair returns the permission variable paired with a type variable.
func (rt *Runtime) PermPair(id sym.InferID) sym.InferID {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	iv := rt.infer(id)
	if iv.Kind != sym.KindTy {
		panic("PermPair on non-type inference variable")
	}
	return iv.PermPair
}

// Bounds returns a snapshot of the variable's lower bounds. Bounds only
// accumulate, so the snapshot stays a valid prefix.
func (rt *Runtime) Bounds(id sym.InferID) []Bound {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]Bound(nil), rt.infer(id).bounds...)
}

// Representative returns the variable's current binding, if any.
func (rt *Runtime) Representative(id sym.InferID) (Bound, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.infer(id).representative()
}

// RequiredPredicate returns the span that required pred of the variable.
func (rt *Runtime) RequiredPredicate(id sym.InferID, pred sym.Predicate) (source.Span, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	sp := rt.infer(id).required[pred]
	if sp == nil {
		return source.Span{}, false
	}
	return *sp, true
}

// AddLowerBound records term as a lower bound of the variable and returns
// the bounds and required predicates that were already present. The caller
// spawns the obligations relating them to the new bound.
func (rt *Runtime) AddLowerBound(id sym.InferID, term sym.GenericTerm, sp source.Span) (added bool, prior []Bound, preds []sym.Predicate) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	iv := rt.infer(id)
	for _, b := range iv.bounds {
		if b.Term == term {
			return false, nil, nil
		}
	}
	if !iv.Universe.CanSee(sym.MaxUniverse(term)) {
		r := rt.queue.Report(diag.Error(sp,
			"cannot infer `%v` here: it mentions a variable from an inner scope", term).
			Label(diag.LevelInfo, iv.Sp, "the %v being inferred here cannot name it", iv.Kind))
		iv.bounds = append(iv.bounds, Bound{Term: errBoundTerm(iv.Kind, r), Sp: sp})
		rt.progressLocked()
		return false, nil, nil
	}
	InferPrintf("infer: ?%d <- %v at %v\n", id, term, sp)
	prior = append([]Bound(nil), iv.bounds...)
	for pred, reqSp := range iv.required {
		if reqSp != nil {
			preds = append(preds, sym.Predicate(pred))
		}
	}
	iv.bounds = append(iv.bounds, Bound{Term: term, Sp: sp})
	rt.progressLocked()
	return true, prior, preds
}

// NumericSpan returns the span that required the variable to be numeric.
func (rt *Runtime) NumericSpan(id sym.InferID) (source.Span, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	sp := rt.infer(id).numericSp
	if sp == nil {
		return source.Span{}, false
	}
	return *sp, true
}

// RequirePredicate records that pred must hold of the variable and returns
// the bounds already present, which the caller checks against pred.
func (rt *Runtime) RequirePredicate(id sym.InferID, pred sym.Predicate, sp source.Span) []Bound {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	iv := rt.infer(id)
	if iv.required[pred] != nil {
		return nil
	}
	InferPrintf("infer: ?%d must be %v at %v\n", id, pred, sp)
	iv.required[pred] = &sp
	rt.progressLocked()
	return append([]Bound(nil), iv.bounds...)
}

// RequireNumeric records that the variable must resolve to a numeric type
// and returns the bounds already present.
func (rt *Runtime) RequireNumeric(id sym.InferID, sp source.Span) []Bound {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	iv := rt.infer(id)
	if iv.numericSp != nil {
		return nil
	}
	InferPrintf("infer: ?%d must be numeric at %v\n", id, sp)
	iv.numericSp = &sp
	rt.progressLocked()
	return append([]Bound(nil), iv.bounds...)
}

// force is called when every task in the session is blocked. It makes
// whatever progress is still possible: first numeric defaulting, then
// permission defaulting, then reporting the variables nothing constrained.
// Returns false when there was nothing left to do.
func (rt *Runtime) forceLocked() bool {
	progressed := false
	for _, iv := range rt.infers {
		if len(iv.bounds) > 0 || !rt.handled.Insert(iv.ID) {
			continue
		}
		if iv.Kind == sym.KindTy && iv.numericSp != nil {
			InferPrintf("infer: ?%d defaulted to i64\n", iv.ID)
			iv.bounds = append(iv.bounds, Bound{Term: sym.I64(), Sp: *iv.numericSp})
			progressed = true
		} else {
			rt.handled.Remove(iv.ID)
		}
	}
	if progressed {
		rt.progressLocked()
		return true
	}

	for _, iv := range rt.infers {
		if len(iv.bounds) > 0 || iv.Kind != sym.KindPerm || !rt.handled.Insert(iv.ID) {
			continue
		}
		InferPrintf("infer: ?%d defaulted to my\n", iv.ID)
		iv.bounds = append(iv.bounds, Bound{Term: sym.My(), Sp: iv.Sp})
		progressed = true
	}
	if progressed {
		rt.progressLocked()
		return true
	}

	for _, iv := range rt.infers {
		if len(iv.bounds) > 0 || !rt.handled.Insert(iv.ID) {
			continue
		}
		r := rt.queue.Report(diag.Error(iv.Sp, "type annotations needed").
			Label(diag.LevelInfo, iv.Sp, "could not infer the %v here", iv.Kind))
		iv.bounds = append(iv.bounds, Bound{Term: errBoundTerm(iv.Kind, r), Sp: iv.Sp})
		progressed = true
	}
	if progressed {
		rt.progressLocked()
	}
	return progressed
}

func errBoundTerm(kind sym.Kind, r diag.Reported) sym.GenericTerm {
	switch kind {
	case sym.KindTy:
		return sym.ErrTy(r)
	case sym.KindPerm:
		return sym.ErrPerm(r)
	case sym.KindPlace:
		return sym.ErrPlace(r)
	default:
		panic("unreachable")
	}
}
