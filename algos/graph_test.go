package algos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func graph(adj map[string][]string) (map[string]string, func(string) map[string]struct{}) {
	nodes := map[string]string{}
	for k := range adj {
		nodes[k] = k
	}
	edges := func(n string) map[string]struct{} {
		out := map[string]struct{}{}
		for _, dep := range adj[n] {
			out[dep] = struct{}{}
		}
		return out
	}
	return nodes, edges
}

func TestFindCycleAcyclic(t *testing.T) {
	nodes, edges := graph(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	})
	assert.Nil(t, FindCycle(nodes, edges))
}

func TestFindCycleReturnsOnlyCycleMembers(t *testing.T) {
	// a leads into the cycle but is not part of it
	nodes, edges := graph(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
	})
	cycle := FindCycle(nodes, edges)
	assert.ElementsMatch(t, []string{"b", "c"}, cycle)
}

func TestFindCycleSelfLoop(t *testing.T) {
	nodes, edges := graph(map[string][]string{
		"a": {"a"},
		"b": {},
	})
	assert.Equal(t, []string{"a"}, FindCycle(nodes, edges))
}

func TestUniqKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Uniq([]int{1, 2, 1, 3, 2, 1}))
	assert.Empty(t, Uniq([]int{}))
}
