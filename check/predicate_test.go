package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/sym"
)

func TestRequireCopyOfPermissions(t *testing.T) {
	cases := []struct {
		name string
		perm *sym.Perm
		ok   bool
	}{
		{"my", sym.My(), false},
		{"our", sym.Our(), true},
		{"shared", sym.Shared(nil), true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var err error
			queue := runSession(t, func(e Env) {
				err = e.RequireCopy(tc.perm, testOrElse(1))
			})
			if tc.ok {
				assert.NoError(t, err)
				assert.Equal(t, 0, queue.Len())
			} else {
				assert.Error(t, err)
				assert.Equal(t, 1, queue.Len())
			}
		})
	}
}

func TestRequireMoveOfPermissions(t *testing.T) {
	var myErr, ourErr error
	queue := runSession(t, func(e Env) {
		myErr = e.RequireMove(sym.My(), testOrElse(1))
		ourErr = e.RequireMove(sym.Our(), testOrElse(2))
	})
	assert.NoError(t, myErr)
	assert.Error(t, ourErr)
	assert.Equal(t, 1, queue.Len())
}

func TestNeverPredicateAsymmetry(t *testing.T) {
	var copyErr, moveErr, ownedErr error
	queue := runSession(t, func(e Env) {
		copyErr = e.RequireCopy(sym.Never(), testOrElse(1))
		moveErr = e.RequireMove(sym.Never(), testOrElse(2))
		ownedErr = e.RequireTermIs(sym.Never(), sym.PredOwned, testOrElse(3))
	})
	assert.Error(t, copyErr, "never cannot satisfy a copy requirement")
	assert.NoError(t, moveErr)
	assert.NoError(t, ownedErr)
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "cannot be copied"))
}

func TestNeverIsNotProvablyMove(t *testing.T) {
	runSession(t, func(e Env) {
		v, err := e.tryIsTy(sym.Never(), sym.PredMove)
		require.NoError(t, err)
		assert.Equal(t, verdictFalse, v)

		v, err = e.tryIsTy(sym.Never(), sym.PredCopy)
		require.NoError(t, err)
		assert.Equal(t, verdictTrue, v)

		// the negative side refutes nothing of never
		v, err = e.tryIsntTy(sym.Never(), sym.PredMove)
		require.NoError(t, err)
		assert.Equal(t, verdictFalse, v)
	})
}

func TestLeasedCopyNeedsEveryPlace(t *testing.T) {
	x := sym.NewVariable(sym.KindPlace, NewIdentifier("x"), testSpan(1), sym.RootUniverse)
	y := sym.NewVariable(sym.KindPlace, NewIdentifier("y"), testSpan(2), sym.RootUniverse)

	queue := runSession(t, func(e Env) {
		e = e.BindVar(x, sym.Qualified(sym.Our(), sym.StringTy()))
		e = e.BindVar(y, sym.StringTy())
		perm := sym.Leased([]*sym.Place{sym.PlaceVar(x), sym.PlaceVar(y)})
		_ = e.RequireCopy(perm, testOrElse(3))
	})
	// x is our String and copies; y is my String and does not
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "because of the lease on `y`"))
}

func TestLeasedIsLentNeverOwned(t *testing.T) {
	x := sym.NewVariable(sym.KindPlace, NewIdentifier("x"), testSpan(1), sym.RootUniverse)
	var lentErr, ownedErr error
	queue := runSession(t, func(e Env) {
		e = e.BindVar(x, sym.StringTy())
		perm := sym.Leased([]*sym.Place{sym.PlaceVar(x)})
		lentErr = e.RequireTermIs(perm, sym.PredLent, testOrElse(2))
		ownedErr = e.RequireTermIs(perm, sym.PredOwned, testOrElse(3))
	})
	assert.NoError(t, lentErr)
	assert.Error(t, ownedErr)
	assert.Equal(t, 1, queue.Len())
}

func TestApplicationExistentialCopy(t *testing.T) {
	p := sym.NewVariable(sym.KindPerm, NewIdentifier("P"), testSpan(1), sym.RootUniverse)

	var copyErr, ownedErr error
	queue := runSession(t, func(e Env) {
		// copy needs only one side: our suffices no matter what P is
		copyErr = e.RequireCopy(sym.Apply(sym.Our(), sym.PermVar(p)), testOrElse(2))
		// owned needs both sides, and nothing declares P owned
		ownedErr = e.RequireTermIs(sym.Apply(sym.My(), sym.PermVar(p)), sym.PredOwned, testOrElse(3))
	})
	assert.NoError(t, copyErr)
	assert.Error(t, ownedErr)
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "no where-clause declares `P`"))
}

func TestApplicationCopyConstrainsOpenSide(t *testing.T) {
	// require-copy over `?P mut[x]` with a non-copy lease must not fail:
	// the open side picks up the copy requirement instead
	x := sym.NewVariable(sym.KindPlace, NewIdentifier("x"), testSpan(1), sym.RootUniverse)

	var copyErr error
	var id sym.InferID
	var rt *Runtime
	queue := runSession(t, func(e Env) {
		rt = e.Rt
		e = e.BindVar(x, sym.StringTy())
		id = e.Rt.NewInfer(sym.KindPerm, testSpan(2), e.Universe)
		lease := sym.Leased([]*sym.Place{sym.PlaceVar(x)})
		copyErr = e.RequireCopy(sym.Apply(sym.PermInfer(id), lease), testOrElse(3))
	})
	assert.NoError(t, copyErr)
	assert.Equal(t, 0, queue.Len())
	_, registered := rt.RequiredPredicate(id, sym.PredCopy)
	assert.True(t, registered)
}

func TestApplicationOfOurAndMy(t *testing.T) {
	perm := sym.Apply(sym.Our(), sym.My())

	var copyOk bool
	var copyErr error
	queue := runSession(t, func(e Env) {
		copyOk, copyErr = e.IsProvably(perm, sym.PredCopy)
		_ = e.RequireMove(perm, testOrElse(1))
	})
	// `our my` copies because its left side does; move needs both sides
	// and the `our` half refuses
	require.NoError(t, copyErr)
	assert.True(t, copyOk)
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "`our` is not move"))
}

func TestDeclaredFactsSatisfyRequirements(t *testing.T) {
	p := sym.NewVariable(sym.KindPerm, NewIdentifier("P"), testSpan(1), sym.RootUniverse)
	var err error
	queue := runSession(t, func(e Env) {
		e = e.DeclareFact(p, sym.PredCopy)
		err = e.RequireCopy(sym.PermVar(p), testOrElse(2))
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, queue.Len())
}

func TestStructPredicatesAreExistential(t *testing.T) {
	pair := sym.NewAggregate(NewIdentifier("Pair"), testSpan(1), testSpan(1), sym.StructStyle)
	pair.Generics = []*sym.Variable{
		sym.NewVariable(sym.KindTy, NewIdentifier("A"), testSpan(1), sym.RootUniverse),
		sym.NewVariable(sym.KindTy, NewIdentifier("B"), testSpan(1), sym.RootUniverse),
	}

	mixed := sym.Named(pair, []sym.GenericTerm{sym.Bool(), sym.StringTy()})
	var copyErr, moveErr error
	queue := runSession(t, func(e Env) {
		copyErr = e.RequireCopy(mixed, testOrElse(2))
		moveErr = e.RequireMove(mixed, testOrElse(3))
	})
	// bool copies and String moves, so the struct is provably both
	assert.NoError(t, copyErr)
	assert.NoError(t, moveErr)
	assert.Equal(t, 0, queue.Len())
}

func TestStructWithOnlyCopyFieldsIsNotMove(t *testing.T) {
	box := sym.NewAggregate(NewIdentifier("Box"), testSpan(1), testSpan(1), sym.StructStyle)
	box.Generics = []*sym.Variable{
		sym.NewVariable(sym.KindTy, NewIdentifier("T"), testSpan(1), sym.RootUniverse),
	}

	var err error
	queue := runSession(t, func(e Env) {
		err = e.RequireMove(sym.Named(box, []sym.GenericTerm{sym.Bool()}), testOrElse(2))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "none of its fields is move"))
}

func TestInferredBoundCheckedAgainstRequirement(t *testing.T) {
	queue := runSession(t, func(e Env) {
		id := e.Rt.NewInfer(sym.KindTy, testSpan(1), e.Universe)
		_ = e.RequireCopy(sym.TyInfer(id), testOrElse(2))
		e.addTyBound(id, sym.StringTy(), testSpan(3), testOrElse(3))
	})
	// String is a class; the bound violates the registered copy requirement
	assert.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "class values move"))
}
