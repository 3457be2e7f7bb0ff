package compile

import (
	"context"

	"github.com/duna-lang/duna/algos"
	"github.com/duna-lang/duna/check"
	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
	"github.com/duna-lang/duna/tree"
)

// Unit collects one module's declarations and function bodies and checks
// them as a whole program.
type Unit struct {
	module *sym.Module
	bodies []check.FunctionBody
}

func NewUnit(name Identifier) *Unit {
	return &Unit{module: &sym.Module{Name: name}}
}

func (u *Unit) Module() *sym.Module { return u.module }

func (u *Unit) AddItem(item sym.ModuleItem) {
	u.module.Items = append(u.module.Items, item)
}

func (u *Unit) AddBody(fn *sym.Function, body *tree.Block) {
	u.bodies = append(u.bodies, check.FunctionBody{Fn: fn, Body: body})
}

// Result is the outcome of checking a unit: the typed expression of every
// body that survived, plus everything reported along the way.
type Result struct {
	Exprs       map[*sym.Function]*sym.Expr
	Diagnostics []*diag.Diagnostic
}

func (r *Result) HasErrors() bool { return len(r.Diagnostics) > 0 }

// Check type-checks the unit. The returned error is reserved for internal
// failures; user-facing problems are Diagnostics on the result.
func (u *Unit) Check(ctx context.Context) (*Result, error) {
	checker := check.NewChecker(u.module)
	u.checkFieldCycles(checker.Queue)
	exprs, err := checker.CheckBodies(ctx, u.bodies)
	if err != nil {
		return nil, err
	}
	return &Result{Exprs: exprs, Diagnostics: checker.Queue.Diagnostics()}, nil
}

// checkFieldCycles rejects structs that contain themselves by value; such a
// type would have no finite size. Classes do not participate: a class field
// holds a reference to its object.
func (u *Unit) checkFieldCycles(queue *diag.Queue) {
	nodes := map[*sym.Aggregate]*sym.Aggregate{}
	for _, item := range u.module.Items {
		if agg, ok := item.(*sym.Aggregate); ok && agg.Style == sym.StructStyle {
			nodes[agg] = agg
		}
	}
	cycle := algos.FindCycle(nodes, func(agg *sym.Aggregate) map[*sym.Aggregate]struct{} {
		deps := map[*sym.Aggregate]struct{}{}
		for _, f := range agg.Fields {
			if dep, ok := byValueStruct(f.Ty); ok {
				if _, participates := nodes[dep]; participates {
					deps[dep] = struct{}{}
				}
			}
		}
		return deps
	})
	if len(cycle) == 0 {
		return
	}
	cycle = algos.Uniq(cycle)
	d := diag.Error(cycle[0].NameSp, "struct `%v` contains itself by value", cycle[0])
	for _, member := range cycle[1:] {
		d.Label(diag.LevelInfo, member.NameSp, "through `%v`", member)
	}
	queue.Report(d)
}

// byValueStruct names the struct a field of this type stores inline, if
// any. Only `my` qualification keeps a field inline; every other permission
// makes it a reference.
func byValueStruct(ty *sym.Ty) (*sym.Aggregate, bool) {
	switch k := ty.Kind.(type) {
	case *sym.PermTy:
		if _, my := k.Perm.Kind.(*sym.MyPerm); my {
			return byValueStruct(k.Ty)
		}
		return nil, false
	case *sym.NamedTy:
		if agg, ok := k.Name.(*sym.Aggregate); ok && agg.Style == sym.StructStyle {
			return agg, true
		}
	}
	return nil, false
}
