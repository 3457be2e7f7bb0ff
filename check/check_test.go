package check

import (
	"strings"
	"testing"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/source"
	"github.com/duna-lang/duna/sym"
)

func testSpan(n int) source.Span {
	return source.Span{File: "test.duna", Start: n, End: n + 1}
}

// runSession runs fn as the root obligation of a fresh check session and
// returns the diagnostics it produced.
func runSession(t *testing.T, fn func(Env)) *diag.Queue {
	t.Helper()
	queue := diag.NewQueue()
	rt := NewRuntime(queue)
	env := NewEnv(rt, &sym.Module{Name: NewIdentifier("main")})
	rt.Spawn("test-root", func() { fn(env) })
	rt.Wait()
	return queue
}

func testOrElse(n int) OrElse {
	return BadSubtype{Sp: testSpan(n), Value: sym.Unit(), Target: sym.Unit()}
}

func anyMessageContains(queue *diag.Queue, substr string) bool {
	for _, d := range queue.Diagnostics() {
		if containsDeep(d, substr) {
			return true
		}
	}
	return false
}

func containsDeep(d *diag.Diagnostic, substr string) bool {
	if strings.Contains(d.Message, substr) {
		return true
	}
	for _, child := range d.Children {
		if containsDeep(child, substr) {
			return true
		}
	}
	return false
}
