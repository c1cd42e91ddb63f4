package search

import (
	"container/heap"

	"github.com/jpl-au/agdb/graph"
)

// CostHandler assigns a non-negative traversal cost to every element a
// path search considers. A zero cost means "skip": the element (and
// anything only reachable through it) is excluded from the search
// entirely, per spec.md §4.5.
type CostHandler interface {
	Cost(id graph.ElementID) uint64
}

// CostHandlerFunc adapts a plain function to CostHandler.
type CostHandlerFunc func(id graph.ElementID) uint64

func (f CostHandlerFunc) Cost(id graph.ElementID) uint64 { return f(id) }

type pathEntry struct {
	id   graph.ElementID
	cost uint64
	prev *pathEntry
}

type pathQueue []*pathEntry

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)         { *q = append(*q, x.(*pathEntry)) }
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Path performs a uniform-cost (Dijkstra-style) search from `from` to
// `to`, returning the first path found whose cumulative handler cost is
// minimal among all from->to paths, per spec.md §4.5 and §8's "Path
// optimality" property. The returned slice alternates node/edge ids,
// starting at `from` and ending at `to`, matching BFS/DFS's element
// model. Returns nil, nil if no path exists.
func Path(g Graph, from, to graph.ElementID, h CostHandler) ([]graph.ElementID, error) {
	if !g.NodeExists(from) || !g.NodeExists(to) {
		return nil, graph.ErrInvalidID
	}
	if from == to {
		return []graph.ElementID{from}, nil
	}

	best := map[graph.ElementID]uint64{from: 0}
	pq := &pathQueue{{id: from, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pathEntry)
		if c, ok := best[cur.id]; ok && cur.cost > c {
			continue // stale entry, a cheaper path to cur.id already won
		}
		if cur.id == to {
			return reconstructPath(cur), nil
		}

		forward := true
		next, err := neighbors(g, cur.id, forward)
		if err != nil {
			return nil, err
		}
		for _, n := range next {
			cost := h.Cost(n)
			if cost == 0 {
				continue
			}
			total := cur.cost + cost
			if existing, ok := best[n]; ok && existing <= total {
				continue
			}
			best[n] = total
			heap.Push(pq, &pathEntry{id: n, cost: total, prev: cur})
		}
	}
	return nil, nil
}

func reconstructPath(e *pathEntry) []graph.ElementID {
	var rev []graph.ElementID
	for cur := e; cur != nil; cur = cur.prev {
		rev = append(rev, cur.id)
	}
	out := make([]graph.ElementID, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}
