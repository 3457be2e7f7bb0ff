package common

// Assert panics with msg when cond is false. For internal invariants only;
// user-facing failures go through diagnostics.
func Assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
