package common

import (
	"fmt"
	"runtime/debug"
)

// Try runs f and converts a panic into an error plus the stack captured at
// the recovery point. Check sessions run under Try so a fault in one
// obligation surfaces as an error from the session instead of crashing the
// embedder.
func Try[T any](f func() T) (result T, err error, stack string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			err = e
		} else {
			err = fmt.Errorf("%v", r)
		}
		stack = string(debug.Stack())
	}()
	return f(), nil, ""
}
