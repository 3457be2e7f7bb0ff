package check

import (
	"sync"
)

// Alternative marks one path of a proof search. Constraints issued while an
// alternative is "required" (every node from here to the root is an only
// child) may commit inference state; constraints issued while sibling paths
// are still live must stay speculative, or one abandoned derivation could
// poison the variables another derivation needs.
//
// Nodes form a parent-pointer tree with live-child counts. Required status
// is dynamic: it can become true mid-computation as siblings resolve, so it
// is re-read at every resumption, never cached.
type Alternative struct {
	rt     *Runtime
	parent *Alternative

	mu       sync.Mutex
	children int
}

// RootAlternative is required by construction.
func RootAlternative(rt *Runtime) *Alternative {
	return &Alternative{rt: rt}
}

// IsRequired reports whether this is currently the only live path.
func (a *Alternative) IsRequired() bool {
	for node := a.parent; node != nil; node = node.parent {
		node.mu.Lock()
		n := node.children
		node.mu.Unlock()
		if n > 1 {
			return false
		}
	}
	return true
}

// SpawnChildren creates n sibling paths at once. The count is set before
// any child exists, so no child observes itself as an only child while its
// siblings are still being built.
func (a *Alternative) SpawnChildren(n int) []*Alternative {
	a.mu.Lock()
	a.children += n
	a.mu.Unlock()
	out := make([]*Alternative, n)
	for i := range out {
		out[i] = &Alternative{rt: a.rt, parent: a}
	}
	return out
}

// Release retires this path. Callers pair every SpawnChildren child with a
// deferred Release so abandoned paths are retired on error exits too;
// releasing the last sibling can make the survivor required, so waiters are
// woken.
func (a *Alternative) Release() {
	if a.parent == nil {
		return
	}
	a.parent.mu.Lock()
	a.parent.children--
	if a.parent.children < 0 {
		panic("alternative released twice")
	}
	a.parent.mu.Unlock()
	a.rt.mu.Lock()
	a.rt.progressLocked()
	a.rt.mu.Unlock()
}

// IfRequired resolves a constraint that behaves differently under
// speculation. Each time the task resumes it re-checks required status:
// once required, commit runs and its outcome is final (it may tighten
// inference state); while speculative, test is polled and a definite
// verdict settles the call without committing anything.
func (a *Alternative) IfRequired(commit func() error, test func() verdict) (bool, error) {
	var ok bool
	var err error
	a.rt.LoopUntil(func() bool {
		if a.IsRequired() {
			err = commit()
			ok = err == nil
			return true
		}
		switch test() {
		case verdictTrue:
			ok = true
			return true
		case verdictFalse:
			ok = false
			return true
		default:
			return false
		}
	})
	return ok, err
}
