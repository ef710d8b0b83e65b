package check

import (
	"sort"
	"strings"
)

// validateSystems resolves after/before references, builds the dependency
// graph over system indices and computes the execution order. A cycle is
// fatal and names its participants.
func (c *Checker) validateSystems() {
	systems := c.ctx.Systems
	if len(systems) == 0 {
		return
	}

	index := make(map[string]int, len(systems))
	for i, s := range systems {
		index[s.Name] = i
	}
	names := make([]string, len(systems))
	for i, s := range systems {
		names[i] = s.Name
	}

	// adjacency: edge from -> to means "from runs before to"
	succ := make([][]int, len(systems))
	indeg := make([]int, len(systems))
	addEdge := func(from, to int) {
		succ[from] = append(succ[from], to)
		indeg[to]++
	}

	ok := true
	for i, s := range systems {
		for _, dep := range s.After {
			j, found := index[dep]
			if !found {
				c.errorfHint(s.Pos, suggest(dep, names), "system '%s' runs after undeclared system '%s'", s.Name, dep)
				ok = false
				continue
			}
			addEdge(j, i)
		}
		for _, dep := range s.Before {
			j, found := index[dep]
			if !found {
				c.errorfHint(s.Pos, suggest(dep, names), "system '%s' runs before undeclared system '%s'", s.Name, dep)
				ok = false
				continue
			}
			addEdge(i, j)
		}
	}
	if !ok {
		return
	}

	// Kahn's algorithm; among ready nodes always pick the earliest
	// declared so the schedule is reproducible.
	var order []int
	ready := make([]int, 0, len(systems))
	for i, d := range indeg {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	for len(ready) > 0 {
		sort.Slice(ready, func(a, b int) bool {
			return systems[ready[a]].DeclIndex < systems[ready[b]].DeclIndex
		})
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, m := range succ[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) < len(systems) {
		var cyclic []string
		for i, d := range indeg {
			if d > 0 {
				cyclic = append(cyclic, systems[i].Name)
			}
		}
		c.errorf(systems[index[cyclic[0]]].Pos,
			"circular system dependency involving: %s", strings.Join(cyclic, ", "))
		return
	}
	c.ctx.SystemOrder = order
}
