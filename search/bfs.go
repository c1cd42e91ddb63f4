package search

import "github.com/jpl-au/agdb/graph"

type frontierItem struct {
	id       graph.ElementID
	distance uint64
}

// neighbors returns the next-level elements reachable from id, per
// spec.md §4.5's expansion rules: a node expands to its edges, an edge
// expands to the single node at its far end. forward selects which
// adjacency list a node consults and which endpoint an edge yields.
func neighbors(g Graph, id graph.ElementID, forward bool) ([]graph.ElementID, error) {
	if id.IsNode() {
		if forward {
			return g.EdgesFrom(id)
		}
		return g.EdgesTo(id)
	}
	var next graph.ElementID
	var err error
	if forward {
		next, err = g.EdgeTo(id)
	} else {
		next, err = g.EdgeFrom(id)
	}
	if err != nil {
		return nil, err
	}
	return []graph.ElementID{next}, nil
}

// runBFS is shared by BFS and BFSReverse: a FIFO frontier, a visited set
// preventing revisits, expansion order preserved by neighbors' natural
// (head-insertion) ordering so that siblings are visited in the reverse
// of their insertion order, per spec.md §4.5.
func runBFS(g Graph, start graph.ElementID, forward bool, h Handler, opts Options) ([]graph.ElementID, error) {
	if !g.NodeExists(start) {
		return nil, graph.ErrInvalidID
	}
	c := &collector{opts: opts}
	visited := map[graph.ElementID]bool{start: true}
	queue := []frontierItem{{id: start, distance: 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

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
		for _, n := range next {
			if visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, frontierItem{id: n, distance: item.distance + 1})
		}
	}
	return c.result, nil
}

// BFS performs a forward breadth-first search from start: node -> all
// outgoing edges, edge -> its target node.
func BFS(g Graph, start graph.ElementID, h Handler, opts Options) ([]graph.ElementID, error) {
	return runBFS(g, start, true, h, opts)
}

// BFSReverse performs a reverse breadth-first search from start: node ->
// all incoming edges, edge -> its source node.
func BFSReverse(g Graph, start graph.ElementID, h Handler, opts Options) ([]graph.ElementID, error) {
	return runBFS(g, start, false, h, opts)
}
