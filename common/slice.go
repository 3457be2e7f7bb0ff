package common

// PopBack removes and returns the last element. Panics on an empty slice.
func PopBack[T any](s []T) (T, []T) {
	last := len(s) - 1
	return s[last], s[:last]
}
