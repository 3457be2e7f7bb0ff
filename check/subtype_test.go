package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/sym"
)

func TestNeverAssignsAnywhere(t *testing.T) {
	queue := runSession(t, func(e Env) {
		assert.NoError(t, e.RequireAssignable(sym.Never(), testSpan(1), sym.Bool(), testOrElse(1)))
		assert.NoError(t, e.RequireAssignable(sym.Never(), testSpan(2), sym.StringTy(), testOrElse(2)))
	})
	assert.Equal(t, 0, queue.Len())
}

func TestAssignableRejectsHeadMismatch(t *testing.T) {
	queue := runSession(t, func(e Env) {
		_ = e.RequireAssignable(sym.Bool(), testSpan(1), sym.StringTy(), testOrElse(1))
	})
	assert.Equal(t, 1, queue.Len())
}

func TestAssignableAcceptsSameType(t *testing.T) {
	queue := runSession(t, func(e Env) {
		assert.NoError(t, e.RequireAssignable(sym.Bool(), testSpan(1), sym.Bool(), testOrElse(1)))
	})
	assert.Equal(t, 0, queue.Len())
}

func TestAssignableToInferTargetRecordsBound(t *testing.T) {
	var rt *Runtime
	var id sym.InferID
	queue := runSession(t, func(e Env) {
		rt = e.Rt
		id = rt.NewInfer(sym.KindTy, testSpan(1), e.Universe)
		_ = e.RequireAssignable(sym.Bool(), testSpan(2), sym.TyInfer(id), testOrElse(2))
	})
	assert.Equal(t, 0, queue.Len())
	b, ok := rt.Representative(id)
	require.True(t, ok)
	assert.Equal(t, sym.Bool(), b.Term)
}

func TestConflictingBoundsAreReported(t *testing.T) {
	queue := runSession(t, func(e Env) {
		id := e.Rt.NewInfer(sym.KindTy, testSpan(1), e.Universe)
		_ = e.RequireAssignable(sym.Bool(), testSpan(2), sym.TyInfer(id), testOrElse(2))
		_ = e.RequireAssignable(sym.I64(), testSpan(3), sym.TyInfer(id), testOrElse(3))
	})
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "inferred"))
}

func TestPermChainAssignability(t *testing.T) {
	x := sym.NewVariable(sym.KindPlace, NewIdentifier("x"), testSpan(1), sym.RootUniverse)
	y := sym.NewVariable(sym.KindPlace, NewIdentifier("y"), testSpan(2), sym.RootUniverse)
	px := sym.PlaceVar(x)
	py := sym.PlaceVar(y)

	cases := []struct {
		name   string
		value  *sym.Perm
		target *sym.Perm
		ok     bool
	}{
		{"my anywhere", sym.My(), sym.Leased([]*sym.Place{px}), true},
		{"our to our", sym.Our(), sym.Our(), true},
		{"our to shared", sym.Our(), sym.Shared(nil), true},
		{"shared widens", sym.Shared([]*sym.Place{px}), sym.Shared([]*sym.Place{px, py}), true},
		{"shared narrows", sym.Shared([]*sym.Place{px, py}), sym.Shared([]*sym.Place{px}), false},
		{"lease widens", sym.Leased([]*sym.Place{px}), sym.Leased([]*sym.Place{px, py}), true},
		{"lease is not shared", sym.Leased([]*sym.Place{px}), sym.Shared([]*sym.Place{px}), false},
		{"shared to my", sym.Shared([]*sym.Place{px}), sym.My(), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			queue := runSession(t, func(e Env) {
				value := sym.Qualified(tc.value, sym.StringTy())
				target := sym.Qualified(tc.target, sym.StringTy())
				_ = e.RequireAssignable(value, testSpan(3), target, testOrElse(3))
			})
			if tc.ok {
				assert.Equal(t, 0, queue.Len())
			} else {
				assert.Equal(t, 1, queue.Len())
			}
		})
	}
}

func TestPermInferTargetBindsWhenRequired(t *testing.T) {
	var rt *Runtime
	var id sym.InferID
	queue := runSession(t, func(e Env) {
		rt = e.Rt
		id = rt.NewInfer(sym.KindPerm, testSpan(1), e.Universe)
		value := sym.Qualified(sym.Our(), sym.StringTy())
		target := sym.Qualified(sym.PermInfer(id), sym.StringTy())
		_ = e.RequireAssignable(value, testSpan(2), target, testOrElse(2))
	})
	assert.Equal(t, 0, queue.Len())
	b, ok := rt.Representative(id)
	require.True(t, ok)
	assert.Equal(t, sym.Our(), b.Term)
}

func TestPermInferTargetReusesExistingBound(t *testing.T) {
	var rt *Runtime
	var id sym.InferID
	queue := runSession(t, func(e Env) {
		rt = e.Rt
		id = rt.NewInfer(sym.KindPerm, testSpan(1), e.Universe)
		e.addBound(id, sym.Shared(nil), testSpan(1), testOrElse(1))
		value := sym.Qualified(sym.Our(), sym.StringTy())
		target := sym.Qualified(sym.PermInfer(id), sym.StringTy())
		_ = e.RequireAssignable(value, testSpan(2), target, testOrElse(2))
	})
	// our assigns to the existing ref bound, so no second bound is added
	assert.Equal(t, 0, queue.Len())
	assert.Len(t, rt.Bounds(id), 1)
}

func TestEqualTypesBindInfersBothWays(t *testing.T) {
	var rt *Runtime
	var a, b sym.InferID
	queue := runSession(t, func(e Env) {
		rt = e.Rt
		a = rt.NewInfer(sym.KindTy, testSpan(1), e.Universe)
		b = rt.NewInfer(sym.KindTy, testSpan(2), e.Universe)
		_ = e.RequireEqualTypes(sym.TyInfer(a), sym.TyInfer(b), testSpan(3), testOrElse(3))
		_ = e.RequireEqualTypes(sym.TyInfer(a), sym.Bool(), testSpan(4), testOrElse(4))
	})
	assert.Equal(t, 0, queue.Len())
	ba, ok := rt.Representative(a)
	require.True(t, ok)
	bb, ok := rt.Representative(b)
	require.True(t, ok)
	// one of the two holds bool directly, the other points at it
	terms := []sym.GenericTerm{ba.Term, bb.Term}
	assert.Contains(t, terms, sym.GenericTerm(sym.Bool()))
}

func TestNumericTypeRequirement(t *testing.T) {
	queue := runSession(t, func(e Env) {
		assert.NoError(t, e.RequireNumericType(sym.I64(), testSpan(1), NumericTypeExpected{Sp: testSpan(1), Ty: sym.I64()}))
		_ = e.RequireNumericType(sym.Bool(), testSpan(2), NumericTypeExpected{Sp: testSpan(2), Ty: sym.Bool()})
	})
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "expected a numeric type"))
}
