package check

import (
	"sync"

	"github.com/hashicorp/go-set/v3"

	"github.com/duna-lang/duna/diag"
	"github.com/duna-lang/duna/sym"
)

// Runtime is the shared state of one check session. Obligations run as
// goroutines; the lock serializes all inference-state mutation and the
// condition broadcasts whenever any state tightens, waking tasks blocked
// on it.
//
// Because inference state is monotone, a task waiting for a condition can
// re-evaluate it from scratch after every broadcast; it never observes a
// retraction.
type Runtime struct {
	queue *diag.Queue

	mu       sync.Mutex
	progress *sync.Cond
	gen      uint64

	infers  []*InferVar
	handled *set.Set[sym.InferID]

	outstanding int
	blocked     int
	aborted     bool
	fatal       any

	wg sync.WaitGroup
}

func NewRuntime(queue *diag.Queue) *Runtime {
	rt := &Runtime{
		queue:   queue,
		handled: set.New[sym.InferID](8),
	}
	rt.progress = sync.NewCond(&rt.mu)
	return rt
}

func (rt *Runtime) Queue() *diag.Queue { return rt.queue }

// progressLocked marks that inference state changed and wakes waiters.
func (rt *Runtime) progressLocked() {
	rt.gen++
	rt.progress.Broadcast()
}

// sessionAborted unwinds a task after a sibling hit a fatal invariant
// violation.
type sessionAborted struct{}

func (rt *Runtime) abortLocked(cause any) {
	if !rt.aborted {
		rt.aborted = true
		rt.fatal = cause
	}
	rt.progress.Broadcast()
}

// Spawn starts an obligation. The task counts as outstanding immediately,
// so stall detection cannot fire between spawn and start.
func (rt *Runtime) Spawn(name string, fn func()) {
	rt.mu.Lock()
	rt.outstanding++
	rt.mu.Unlock()
	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()
		defer func() {
			r := recover()
			rt.mu.Lock()
			rt.outstanding--
			if r != nil {
				if _, ok := r.(sessionAborted); !ok {
					rt.abortLocked(r)
				}
			}
			rt.progressLocked()
			rt.mu.Unlock()
		}()
		InferPrintf("spawn: %s\n", name)
		fn()
	}()
}

// Wait blocks until every spawned obligation has finished, then re-raises
// any fatal failure in the caller.
func (rt *Runtime) Wait() {
	rt.wg.Wait()
	if rt.fatal != nil {
		panic(rt.fatal)
	}
}

// LoopUntil blocks the calling task until pred returns true. pred must be
// monotone: once true under the current inference state it stays true.
// When every task in the session is blocked, the runtime forces whatever
// defaults remain; a condition that still cannot make progress after that
// is a checker bug.
func (rt *Runtime) LoopUntil(pred func() bool) {
	for {
		rt.mu.Lock()
		if rt.aborted {
			rt.mu.Unlock()
			panic(sessionAborted{})
		}
		gen := rt.gen
		rt.mu.Unlock()

		if pred() {
			return
		}

		rt.mu.Lock()
		if rt.aborted {
			rt.mu.Unlock()
			panic(sessionAborted{})
		}
		if rt.gen != gen {
			// state moved while pred ran; evaluate again
			rt.mu.Unlock()
			continue
		}
		rt.blocked++
		if rt.blocked == rt.outstanding {
			if !rt.forceLocked() {
				rt.blocked--
				rt.abortLocked("check session deadlocked: blocked on a condition no remaining task can satisfy")
				rt.mu.Unlock()
				panic(sessionAborted{})
			}
			rt.blocked--
			rt.mu.Unlock()
			continue
		}
		rt.progress.Wait()
		rt.blocked--
		rt.mu.Unlock()
	}
}
