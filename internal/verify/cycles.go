package verify

import (
	"sort"
)

// DetectCycles finds the strongly connected components of size greater than
// one (or self-loops) in the given adjacency list. Each returned component is
// sorted; components are sorted by their first member so output is
// deterministic regardless of map iteration order.
func DetectCycles(adjacency map[string][]string) [][]string {
	nodes := make([]string, 0, len(adjacency))
	for n := range adjacency {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	t := &tarjan{
		adjacency: adjacency,
		indexes:   make(map[string]int),
		lowlinks:  make(map[string]int),
		onStack:   make(map[string]bool),
	}
	for _, n := range nodes {
		if _, visited := t.indexes[n]; !visited {
			t.strongConnect(n)
		}
	}

	var cycles [][]string
	for _, comp := range t.components {
		if len(comp) > 1 || selfLoop(adjacency, comp[0]) {
			sort.Strings(comp)
			cycles = append(cycles, comp)
		}
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

func selfLoop(adjacency map[string][]string, node string) bool {
	for _, succ := range adjacency[node] {
		if succ == node {
			return true
		}
	}
	return false
}

// tarjan implements Tarjan's strongly-connected-components algorithm
type tarjan struct {
	adjacency  map[string][]string
	index      int
	indexes    map[string]int
	lowlinks   map[string]int
	onStack    map[string]bool
	stack      []string
	components [][]string
}

func (t *tarjan) strongConnect(node string) {
	t.indexes[node] = t.index
	t.lowlinks[node] = t.index
	t.index++
	t.stack = append(t.stack, node)
	t.onStack[node] = true

	succs := append([]string(nil), t.adjacency[node]...)
	sort.Strings(succs)
	for _, succ := range succs {
		if _, visited := t.indexes[succ]; !visited {
			t.strongConnect(succ)
			if t.lowlinks[succ] < t.lowlinks[node] {
				t.lowlinks[node] = t.lowlinks[succ]
			}
		} else if t.onStack[succ] {
			if t.indexes[succ] < t.lowlinks[node] {
				t.lowlinks[node] = t.indexes[succ]
			}
		}
	}

	if t.lowlinks[node] == t.indexes[node] {
		var comp []string
		for {
			n := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[n] = false
			comp = append(comp, n)
			if n == node {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}
