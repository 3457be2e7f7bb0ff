package check

import (
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// OrElse is the error a deferred obligation reports if it ultimately fails.
// The obligation is created where the requirement originates, so the
// diagnostic points at the originating construct, not at the point deep in
// inference where the contradiction surfaced.
type OrElse interface {
	ToDiagnostic(because []Because) *diag.Diagnostic
}

// Because is one step of provenance carried from the point of discovery
// back to the reported diagnostic.
type Because interface {
	note() *diag.Diagnostic
}

func attach(d *diag.Diagnostic, because []Because) *diag.Diagnostic {
	for _, b := range because {
		d.Child(b.note())
	}
	return d
}

// reportOrElse is how every deferred failure reaches the queue.
func (e Env) reportOrElse(orElse OrElse, because ...Because) diag.Reported {
	return e.Report(orElse.ToDiagnostic(because))
}

// withBecause layers extra provenance onto an existing OrElse.
type withBecause struct {
	inner OrElse
	extra []Because
}

func (w withBecause) ToDiagnostic(because []Because) *diag.Diagnostic {
	return w.inner.ToDiagnostic(append(append([]Because(nil), w.extra...), because...))
}

// ========================

// BecauseJustSo states a fact the term model gives no further reason for.
type BecauseJustSo struct {
	Sp      source.Span
	Message string
}

func (b BecauseJustSo) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "%s", b.Message)
}

type BecauseNeverIsNotCopy struct {
	Sp source.Span
}

func (b BecauseNeverIsNotCopy) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "the never type `!` cannot be copied")
}

type BecauseClassIsMove struct {
	Sp  source.Span
	Agg *sym.Aggregate
}

func (b BecauseClassIsMove) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "`%v` is a class, and class values move", b.Agg).
		Label(diag.LevelInfo, b.Agg.NameSp, "`%v` declared here", b.Agg)
}

type BecausePrimitiveIsCopy struct {
	Sp source.Span
	Ty *sym.Ty
}

func (b BecausePrimitiveIsCopy) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "`%v` is a primitive, and primitives copy", b.Ty)
}

type BecauseLeasedPlace struct {
	Sp    source.Span
	Place *sym.Place
}

func (b BecauseLeasedPlace) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "because of the lease on `%v`", b.Place)
}

// BecauseInferredBound traces a failure through an inference variable to
// the bound that caused it.
type BecauseInferredBound struct {
	Term sym.GenericTerm
	Sp   source.Span
}

func (b BecauseInferredBound) note() *diag.Diagnostic {
	return diag.New(diag.LevelNote, b.Sp, "inferred %s because of this", sym.Describe(b.Term))
}

// ========================

type NumericTypeExpected struct {
	Sp source.Span
	Ty *sym.Ty
}

func (o NumericTypeExpected) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.Sp, "expected a numeric type, found `%v`", o.Ty), because)
}

type OperatorRequiresNumericType struct {
	Op    tree.BinaryOp
	OpSp  source.Span
	ArgSp source.Span
	Ty    *sym.Ty
}

func (o OperatorRequiresNumericType) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.OpSp, "operator `%v` requires numeric operands, found `%v`", o.Op, o.Ty).
		Label(diag.LevelInfo, o.ArgSp, "this operand has type `%v`", o.Ty), because)
}

type OperatorArgumentsMustHaveSameType struct {
	Op      tree.BinaryOp
	OpSp    source.Span
	LeftSp  source.Span
	RightSp source.Span
}

func (o OperatorArgumentsMustHaveSameType) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.OpSp, "operator `%v` requires both operands to have the same type", o.Op).
		Label(diag.LevelInfo, o.LeftSp, "left operand").
		Label(diag.LevelInfo, o.RightSp, "right operand"), because)
}

type InvalidAssignmentType struct {
	TargetSp source.Span
	ValueSp  source.Span
}

func (o InvalidAssignmentType) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.ValueSp, "value is not assignable to this place").
		Label(diag.LevelInfo, o.TargetSp, "assigning to this place"), because)
}

type InvalidReturnValue struct {
	Sp   source.Span
	Fn   *sym.Function
	Want *sym.Ty
}

func (o InvalidReturnValue) ToDiagnostic(because []Because) *diag.Diagnostic {
	d := diag.Error(o.Sp, "return value does not match the declared return type `%v`", o.Want)
	if o.Fn != nil {
		d.Label(diag.LevelInfo, o.Fn.NameSp, "`%v` declared here", o.Fn)
	}
	return attach(d, because)
}

type AwaitNonFuture struct {
	AwaitSp source.Span
	Ty      *sym.Ty
}

func (o AwaitNonFuture) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.AwaitSp, "`%v` is not a future and cannot be awaited", o.Ty), because)
}

type BadSubtype struct {
	Sp     source.Span
	Value  *sym.Ty
	Target *sym.Ty
}

func (o BadSubtype) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.Sp, "expected `%v`, found `%v`", o.Target, o.Value), because)
}

type WhereClauseUnsatisfied struct {
	Sp     source.Span
	Clause sym.WhereClause
}

func (o WhereClauseUnsatisfied) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.Sp, "cannot prove that %s is %v",
		sym.Describe(o.Clause.Subject), o.Clause.Predicate), because)
}

// PredicateNotSatisfied is the fallback for require-predicate failures
// with no more specific surrounding construct.
type PredicateNotSatisfied struct {
	Sp   source.Span
	Pred sym.Predicate
	Term sym.GenericTerm
}

func (o PredicateNotSatisfied) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.Sp, "%s is not %v", sym.Describe(o.Term), o.Pred), because)
}

type BooleanTypeExpected struct {
	Sp source.Span
	Ty *sym.Ty
}

func (o BooleanTypeExpected) ToDiagnostic(because []Because) *diag.Diagnostic {
	return attach(diag.Error(o.Sp, "expected `bool`, found `%v`", o.Ty), because)
}
