package check

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
)

func TestSpawnWaitRunsEveryObligation(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		rt.Spawn("count", func() { ran.Add(1) })
	}
	rt.Wait()
	assert.Equal(t, int32(8), ran.Load())
}

func TestLoopUntilWakesOnNewBound(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	id := rt.NewInfer(sym.KindTy, testSpan(1), sym.RootUniverse)

	var seen sym.GenericTerm
	rt.Spawn("waiter", func() {
		var b Bound
		rt.LoopUntil(func() bool {
			var ok bool
			b, ok = rt.Representative(id)
			return ok
		})
		seen = b.Term
	})
	rt.Spawn("binder", func() {
		rt.AddLowerBound(id, sym.Bool(), testSpan(2))
	})
	rt.Wait()
	assert.Equal(t, sym.Bool(), seen)
}

func TestNumericVariableDefaultsToI64(t *testing.T) {
	queue := diag.NewQueue()
	rt := NewRuntime(queue)
	id := rt.NewInfer(sym.KindTy, testSpan(1), sym.RootUniverse)
	rt.RequireNumeric(id, testSpan(1))

	var seen sym.GenericTerm
	rt.Spawn("waiter", func() {
		var b Bound
		rt.LoopUntil(func() bool {
			var ok bool
			b, ok = rt.Representative(id)
			return ok
		})
		seen = b.Term
	})
	rt.Wait()
	assert.Equal(t, sym.I64(), seen)
	assert.Equal(t, 0, queue.Len())
}

func TestPermissionVariableDefaultsToMy(t *testing.T) {
	queue := diag.NewQueue()
	rt := NewRuntime(queue)
	id := rt.NewInfer(sym.KindPerm, testSpan(1), sym.RootUniverse)

	var seen sym.GenericTerm
	rt.Spawn("waiter", func() {
		var b Bound
		rt.LoopUntil(func() bool {
			var ok bool
			b, ok = rt.Representative(id)
			return ok
		})
		seen = b.Term
	})
	rt.Wait()
	assert.Equal(t, sym.My(), seen)
	assert.Equal(t, 0, queue.Len())
}

func TestUnconstrainedVariableIsReported(t *testing.T) {
	queue := diag.NewQueue()
	rt := NewRuntime(queue)
	id := rt.NewInfer(sym.KindTy, testSpan(1), sym.RootUniverse)

	var seen sym.GenericTerm
	rt.Spawn("waiter", func() {
		var b Bound
		rt.LoopUntil(func() bool {
			var ok bool
			b, ok = rt.Representative(id)
			return ok
		})
		seen = b.Term
	})
	rt.Wait()
	require.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "type annotations needed"))
	ty, ok := seen.(*sym.Ty)
	require.True(t, ok)
	_, isErr := ty.Kind.(*sym.ErrorTy)
	assert.True(t, isErr)
}

func TestBoundFromInnerScopeIsRejected(t *testing.T) {
	queue := diag.NewQueue()
	rt := NewRuntime(queue)
	outer := rt.NewInfer(sym.KindTy, testSpan(1), sym.RootUniverse)
	inner := sym.NewVariable(sym.KindTy, NewIdentifier("T"), testSpan(2), sym.RootUniverse.Next())

	added, _, _ := rt.AddLowerBound(outer, sym.TyVar(inner), testSpan(3))
	assert.False(t, added)
	require.Equal(t, 1, queue.Len())
	assert.True(t, anyMessageContains(queue, "inner scope"))

	// the variable settles on the error term so waiters still unblock
	b, ok := rt.Representative(outer)
	require.True(t, ok)
	ty, ok := b.Term.(*sym.Ty)
	require.True(t, ok)
	_, isErr := ty.Kind.(*sym.ErrorTy)
	assert.True(t, isErr)

	// a variable at the inner level may name it
	deep := rt.NewInfer(sym.KindTy, testSpan(4), inner.Universe)
	added, _, _ = rt.AddLowerBound(deep, sym.TyVar(inner), testSpan(4))
	assert.True(t, added)
	assert.Equal(t, 1, queue.Len())
}

func TestDeadlockAborts(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	rt.Spawn("stuck", func() {
		rt.LoopUntil(func() bool { return false })
	})
	_, err, _ := Try(func() struct{} {
		rt.Wait()
		return struct{}{}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlocked")
}

func TestFatalPanicReachesWait(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	rt.Spawn("boom", func() { panic("wrong turn") })
	// a sibling blocked on the session unwinds instead of deadlocking
	rt.Spawn("bystander", func() {
		rt.LoopUntil(func() bool { return false })
	})
	_, err, _ := Try(func() struct{} {
		rt.Wait()
		return struct{}{}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong turn")
}

func TestAlternativeRequiredStatus(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	root := RootAlternative(rt)
	assert.True(t, root.IsRequired())

	kids := root.SpawnChildren(2)
	assert.False(t, kids[0].IsRequired())
	assert.False(t, kids[1].IsRequired())

	kids[1].Release()
	assert.True(t, kids[0].IsRequired())

	// nesting under a contested parent stays speculative
	more := root.SpawnChildren(1)
	grand := kids[0].SpawnChildren(1)
	assert.False(t, grand[0].IsRequired())
	more[0].Release()
	assert.True(t, grand[0].IsRequired())
	grand[0].Release()
	kids[0].Release()
	assert.True(t, root.IsRequired())
}

func TestIfRequiredCommitsOnlyPath(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	root := RootAlternative(rt)

	var committed atomic.Bool
	rt.Spawn("only-path", func() {
		ok, err := root.IfRequired(
			func() error { committed.Store(true); return nil },
			func() verdict { return verdictUnknown },
		)
		assert.True(t, ok)
		assert.NoError(t, err)
	})
	rt.Wait()
	assert.True(t, committed.Load())
}

func TestIfRequiredSettlesSpeculativelyOnVerdict(t *testing.T) {
	rt := NewRuntime(diag.NewQueue())
	root := RootAlternative(rt)
	kids := root.SpawnChildren(2)

	var committed atomic.Bool
	rt.Spawn("speculative", func() {
		ok, err := kids[0].IfRequired(
			func() error { committed.Store(true); return nil },
			func() verdict { return verdictFalse },
		)
		assert.False(t, ok)
		assert.NoError(t, err)
	})
	rt.Wait()
	assert.False(t, committed.Load())
	kids[0].Release()
	kids[1].Release()
}
