package sym

import (
	. "github.com/duna-lang/duna/common"
)

// Signature is a function's checked signature.
//
// Variables holds every generic variable in scope, the enclosing
// aggregate's first and the function's own last; OwnCount says how many of
// the tail belong to the function itself. Each input also binds a place
// variable so later input types, the output type, and where-clauses can
// refer to the argument's place.
type Signature struct {
	Variables []*Variable
	OwnCount  int

	InputPlaces  []*Variable
	Inputs       []*Ty
	Output       *Ty
	WhereClauses []WhereClause
}

// WhereClause demands that a predicate hold of a subject term, e.g.
// `where T is copy`.
type WhereClause struct {
	Predicate Predicate
	Subject   GenericTerm
}

// InputOutput is a signature with its generics already replaced.
type InputOutput struct {
	InputPlaces  []*Variable
	Inputs       []*Ty
	Output       *Ty
	WhereClauses []WhereClause
}

// Instantiate replaces the signature's generic variables with args. The
// argument terms must be well-kinded; callers check kinds before binding.
func (s *Signature) Instantiate(args []GenericTerm) *InputOutput {
	Assert(len(args) == len(s.Variables), "wrong number of generic arguments")
	subst := make(Subst, len(args))
	for i, v := range s.Variables {
		Assert(args[i].HasKind(v.Kind), "generic argument has wrong kind")
		subst[v] = args[i]
	}
	return s.substitute(subst)
}

// BindInputs replaces io's input place variables with the actual argument
// places, yielding the final input and output types.
func (io *InputOutput) BindInputs(places []*Place) *InputOutput {
	Assert(len(places) == len(io.InputPlaces), "wrong number of argument places")
	subst := make(Subst, len(places))
	for i, v := range io.InputPlaces {
		subst[v] = places[i]
	}
	out := &InputOutput{
		Inputs:       make([]*Ty, len(io.Inputs)),
		Output:       subst.ApplyTy(io.Output),
		WhereClauses: substWhereClauses(subst, io.WhereClauses),
	}
	for i, in := range io.Inputs {
		out.Inputs[i] = subst.ApplyTy(in)
	}
	return out
}

func (s *Signature) substitute(subst Subst) *InputOutput {
	out := &InputOutput{
		InputPlaces:  s.InputPlaces,
		Inputs:       make([]*Ty, len(s.Inputs)),
		Output:       subst.ApplyTy(s.Output),
		WhereClauses: substWhereClauses(subst, s.WhereClauses),
	}
	for i, in := range s.Inputs {
		out.Inputs[i] = subst.ApplyTy(in)
	}
	return out
}

func substWhereClauses(subst Subst, clauses []WhereClause) []WhereClause {
	if len(clauses) == 0 {
		return nil
	}
	out := make([]WhereClause, len(clauses))
	for i, wc := range clauses {
		out[i] = WhereClause{Predicate: wc.Predicate, Subject: subst.Apply(wc.Subject)}
	}
	return out
}
