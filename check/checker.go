package check

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// FunctionBody pairs a declared function with its unchecked body.
type FunctionBody struct {
	Fn   *sym.Function
	Body *tree.Block
}

// Checker checks function bodies against a module. Each body gets its own
// Runtime session; the diagnostic queue is shared across all of them.
type Checker struct {
	Module *sym.Module
	Queue  *diag.Queue
}

func NewChecker(module *sym.Module) *Checker {
	return &Checker{Module: module, Queue: diag.NewQueue()}
}

// CheckBodies checks bodies concurrently and returns the typed expression
// for each. User-facing problems land in the queue; the returned error is
// reserved for checker bugs.
func (c *Checker) CheckBodies(ctx context.Context, bodies []FunctionBody) (map[*sym.Function]*sym.Expr, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[*sym.Function]*sym.Expr, len(bodies))
	for _, b := range bodies {
		b := b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			expr, err := c.CheckBody(b.Fn, b.Body)
			if err != nil {
				return err
			}
			mu.Lock()
			out[b.Fn] = expr
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckBody runs one check session. A fatal failure inside the session is
// contained here so one body cannot take down a whole run.
func (c *Checker) CheckBody(fn *sym.Function, body *tree.Block) (*sym.Expr, error) {
	expr, err, stack := Try(func() *sym.Expr {
		return c.checkBody(fn, body)
	})
	if err != nil {
		if r, ok := diag.AsReported(err); ok {
			return sym.ErrExpr(fn.Sp, r), nil
		}
		return nil, fmt.Errorf("checking `%v`: %w\n%s", fn, err, stack)
	}
	return expr, nil
}

func (c *Checker) checkBody(fn *sym.Function, body *tree.Block) *sym.Expr {
	rt := NewRuntime(c.Queue)
	env := NewEnv(rt, c.Module)
	env, sig, err := env.EnterFunction(fn)
	if err != nil {
		return sym.ErrExpr(fn.Sp, reported(err))
	}

	var out *sym.Expr
	rt.Spawn("function-body", func() {
		expr := env.CheckBlock(body)
		_ = env.RequireAssignable(expr.Ty, expr.Sp, sig.Output, InvalidReturnValue{
			Sp:   expr.Sp,
			Fn:   fn,
			Want: sig.Output,
		})
		out = expr
	})
	rt.Wait()
	return out
}
