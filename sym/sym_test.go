package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
)

func testSpan() source.Span {
	return source.Span{File: "test.duna"}
}

func TestInterningIdentity(t *testing.T) {
	assert.Same(t, Unit(), Unit())
	assert.Same(t, Never(), Never())
	assert.Same(t, I64(), I64())
	assert.NotSame(t, I32(), I64())

	v := NewVariable(KindPlace, NewIdentifier("x"), testSpan(), RootUniverse)
	p := PlaceVar(v)
	assert.Same(t, p, PlaceVar(v))
	assert.Same(t, Shared([]*Place{p}), Shared([]*Place{p}))
	assert.Same(t,
		Shared([]*Place{p}).ApplyTo(I64()),
		Shared([]*Place{p}).ApplyTo(I64()))
}

func TestApplyToCollapsesMy(t *testing.T) {
	assert.Same(t, I64(), My().ApplyTo(I64()))
	assert.Same(t, Our(), My().ApplyToPerm(Our()))
	assert.Same(t, Our(), Our().ApplyToPerm(My()))
}

func TestPermLeavesOrder(t *testing.T) {
	x := PlaceVar(NewVariable(KindPlace, NewIdentifier("x"), testSpan(), RootUniverse))
	y := PlaceVar(NewVariable(KindPlace, NewIdentifier("y"), testSpan(), RootUniverse))
	z := PlaceVar(NewVariable(KindPlace, NewIdentifier("z"), testSpan(), RootUniverse))

	chain := Apply(Apply(Shared([]*Place{x}), Leased([]*Place{y})), Shared([]*Place{z}))
	leaves := chain.Leaves()
	require.Len(t, leaves, 3)
	assert.Same(t, Shared([]*Place{x}), leaves[0])
	assert.Same(t, Leased([]*Place{y}), leaves[1])
	assert.Same(t, Shared([]*Place{z}), leaves[2])
}

func TestPlaceCovers(t *testing.T) {
	owner := NewAggregate(NewIdentifier("Point"), testSpan(), testSpan(), ClassStyle)
	fx := &Field{Owner: owner, Name: NewIdentifier("x"), Sp: testSpan(), Ty: I64()}

	a := PlaceVar(NewVariable(KindPlace, NewIdentifier("a"), testSpan(), RootUniverse))
	b := PlaceVar(NewVariable(KindPlace, NewIdentifier("b"), testSpan(), RootUniverse))

	assert.True(t, a.Covers(a))
	assert.True(t, a.Covers(a.Field(fx)))
	assert.True(t, a.Field(fx).IsCoveredBy(a))
	assert.False(t, a.Field(fx).Covers(a))
	assert.False(t, a.Covers(b))
	assert.False(t, a.Covers(b.Field(fx)))
}

func TestSubstRebuildsInterned(t *testing.T) {
	sp := testSpan()
	tv := NewVariable(KindTy, NewIdentifier("T"), sp, RootUniverse)
	pv := NewVariable(KindPlace, NewIdentifier("p"), sp, RootUniverse)

	ty := TyVar(tv).SharedFrom(PlaceVar(pv))

	q := PlaceVar(NewVariable(KindPlace, NewIdentifier("q"), sp, RootUniverse))
	subst := Subst{tv: I64(), pv: q}
	got := subst.ApplyTy(ty)
	assert.Same(t, I64().SharedFrom(q), got)
}

func TestSubstCollapsesMyPerm(t *testing.T) {
	sp := testSpan()
	pv := NewVariable(KindPerm, NewIdentifier("P"), sp, RootUniverse)
	ty := PermVar(pv).ApplyTo(I64())

	got := Subst{pv: My()}.ApplyTy(ty)
	assert.Same(t, I64(), got)
}

func TestMaxUniverse(t *testing.T) {
	sp := testSpan()
	u2 := RootUniverse.Next()
	root := NewVariable(KindTy, NewIdentifier("T"), sp, RootUniverse)
	deep := NewVariable(KindPlace, NewIdentifier("p"), sp, u2)

	assert.Equal(t, RootUniverse, MaxUniverse(I64()))
	assert.Equal(t, RootUniverse, MaxUniverse(TyVar(root)))
	assert.Equal(t, u2, MaxUniverse(TyVar(root).SharedFrom(PlaceVar(deep))))
	assert.True(t, u2.CanSee(RootUniverse))
	assert.False(t, RootUniverse.CanSee(u2))
}

func TestFieldTyFor(t *testing.T) {
	sp := testSpan()
	box := NewAggregate(NewIdentifier("Box"), sp, sp, ClassStyle)
	elem := NewVariable(KindTy, NewIdentifier("T"), sp, RootUniverse)
	box.Generics = []*Variable{elem}
	value := &Field{
		Owner: box,
		Name:  NewIdentifier("value"),
		Sp:    sp,
		Ty:    TyVar(elem).SharedFrom(PlaceVar(box.SelfPlace)),
	}
	box.Fields = []*Field{value}

	b := PlaceVar(NewVariable(KindPlace, NewIdentifier("b"), sp, RootUniverse))
	got := value.TyFor(b, []GenericTerm{I64()})
	assert.Same(t, I64().SharedFrom(b), got)
}

func TestSignatureInstantiate(t *testing.T) {
	sp := testSpan()
	tv := NewVariable(KindTy, NewIdentifier("T"), sp, RootUniverse)
	arg := NewVariable(KindPlace, NewIdentifier("value"), sp, RootUniverse)
	sig := &Signature{
		Variables:   []*Variable{tv},
		OwnCount:    1,
		InputPlaces: []*Variable{arg},
		Inputs:      []*Ty{TyVar(tv)},
		Output:      TyVar(tv).SharedFrom(PlaceVar(arg)),
		WhereClauses: []WhereClause{
			{Predicate: PredCopy, Subject: TyVar(tv)},
		},
	}

	io := sig.Instantiate([]GenericTerm{I64()})
	require.Len(t, io.Inputs, 1)
	assert.Same(t, I64(), io.Inputs[0])
	assert.Same(t, I64(), AssertTy(io.WhereClauses[0].Subject))

	x := PlaceVar(NewVariable(KindPlace, NewIdentifier("x"), sp, RootUniverse))
	bound := io.BindInputs([]*Place{x})
	assert.Same(t, I64().SharedFrom(x), bound.Output)
}

func TestWellKnownSingletons(t *testing.T) {
	assert.Same(t, StringClass(), StringClass())
	lit := StringLiteralFn()
	sig, err := lit.CheckedSignature()
	require.NoError(t, err)
	require.Len(t, sig.Inputs, 2)
	assert.Same(t, U64(), sig.Inputs[1])
	assert.Same(t, StringTy(), sig.Output)
}
