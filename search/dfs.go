package search

import "github.com/jpl-au/agdb/graph"

// runDFS is shared by DFS and DFSReverse: a LIFO frontier. Neighbors are
// pushed in reverse so the first neighbor in expansion order (the most
// recently inserted edge, per spec.md §4.5) is the next one popped,
// keeping DFS's visiting order consistent with BFS's sibling order.
func runDFS(g Graph, start graph.ElementID, forward bool, h Handler, opts Options) ([]graph.ElementID, error) {
	if !g.NodeExists(start) {
		return nil, graph.ErrInvalidID
	}
	c := &collector{opts: opts}
	visited := map[graph.ElementID]bool{start: true}
	stack := []frontierItem{{id: start, distance: 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		decision := h.Visit(item.id, item.distance)
		if decision.Include {
			if done := c.offer(item.id); done {
				return c.result, nil
			}
		}
		if decision.Action == ActionFinish {
			return c.result, nil
		}
		if decision.Action == ActionStop {
			continue
		}

		next, err := neighbors(g, item.id, forward)
		if err != nil {
			return nil, err
		}
		for i := len(next) - 1; i >= 0; i-- {
			n := next[i]
			if visited[n] {
				continue
			}
			visited[n] = true
			stack = append(stack, frontierItem{id: n, distance: item.distance + 1})
		}
	}
	return c.result, nil
}

// DFS performs a forward depth-first search from start.
func DFS(g Graph, start graph.ElementID, h Handler, opts Options) ([]graph.ElementID, error) {
	return runDFS(g, start, true, h, opts)
}

// DFSReverse performs a reverse depth-first search from start.
func DFSReverse(g Graph, start graph.ElementID, h Handler, opts Options) ([]graph.ElementID, error) {
	return runDFS(g, start, false, h, opts)
}
