// Package algos holds small generic algorithms with no project
// dependencies.
package algos

// FindCycle returns the nodes on some cycle of the graph, in discovery
// order, or nil if the graph is acyclic. Keys identify nodes; edges yields
// the keys a node points at.
func FindCycle[T any, K comparable](nodes map[K]T, edges func(T) map[K]struct{}) []T {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[K]int, len(nodes))

	var cycle []T
	var start K
	collecting := false

	var walk func(K) bool
	walk = func(k K) bool {
		switch state[k] {
		case inProgress:
			start = k
			collecting = true
			cycle = append(cycle, nodes[k])
			return true
		case done:
			return false
		}
		state[k] = inProgress
		for dep := range edges(nodes[k]) {
			if walk(dep) {
				if collecting {
					if k == start {
						collecting = false
					} else {
						cycle = append(cycle, nodes[k])
					}
				}
				return true
			}
		}
		state[k] = done
		return false
	}

	for k := range nodes {
		if walk(k) {
			return cycle
		}
	}
	return nil
}

// Uniq drops duplicates, keeping the first occurrence of each value.
func Uniq[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
