package query

import (
	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/graph"
	"github.com/jpl-au/agdb/search"
)

// conditionHandler adapts a Condition into a search.Handler: a visited
// element is included iff the condition matches it, and not_beyond
// clauses translate into search.Stop instead of search.Continue.
type conditionHandler struct {
	d    *db.DB
	cond *Condition
	err  error
}

func (h *conditionHandler) Visit(id graph.ElementID, distance uint64) search.Decision {
	if h.err != nil {
		return search.Finish(false)
	}
	if h.cond == nil {
		return search.Continue(true)
	}
	matched, stopExpand, err := h.cond.Evaluate(h.d, id, distance)
	if err != nil {
		h.err = err
		return search.Finish(false)
	}
	if stopExpand {
		return search.Stop(matched)
	}
	return search.Continue(matched)
}

// searchOptions resolves spec.md §9's open question on Limit==0: a
// SearchQuery whose Limit was never set is the Go zero value (0), which
// this engine treats as "unbounded" rather than "zero results" since a
// plain int field can't otherwise distinguish "absent" from "explicitly
// zero" without a pointer/option wrapper (see DESIGN.md).
func searchOptions(q SearchQuery) search.Options {
	limit := -1
	if q.Limit > 0 {
		limit = int(q.Limit)
	}
	return search.Options{Limit: limit, Offset: int(q.Offset)}
}

// searchIDs runs a BFS/DFS/path search per spec.md §4.5 and returns the
// matched element ids, shared by SearchQuery.Process (returns ids bare)
// and SelectQuery.Process (select-from-search, resolves each id to its
// properties).
func searchIDs(d *db.DB, q SearchQuery) ([]graph.ElementID, error) {
	from, err := d.ResolveID(q.From)
	if err != nil {
		return nil, err
	}

	h := &conditionHandler{d: d, cond: q.Conditions}
	g := d.Graph()

	var ids []graph.ElementID
	switch q.Algorithm {
	case AlgorithmPath:
		to, err := d.ResolveID(q.To)
		if err != nil {
			return nil, err
		}
		costHandler := search.CostHandlerFunc(func(id graph.ElementID) uint64 {
			if q.Conditions == nil {
				return 1
			}
			matched, _, err := q.Conditions.Evaluate(d, id, 0)
			if err != nil || !matched {
				return 0
			}
			return 1
		})
		ids, err = search.Path(g, from, to, costHandler)
	case AlgorithmDFS:
		if q.Reverse {
			ids, err = search.DFSReverse(g, from, h, searchOptions(q))
		} else {
			ids, err = search.DFS(g, from, h, searchOptions(q))
		}
	default:
		if q.Reverse {
			ids, err = search.BFSReverse(g, from, h, searchOptions(q))
		} else {
			ids, err = search.BFS(g, from, h, searchOptions(q))
		}
	}
	if err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return ids, nil
}

// Process runs a BFS/DFS/path search per spec.md §4.5, returning the
// matched elements without properties (callers chain a select query to
// fetch those, matching the original's search-then-select pattern).
func (q SearchQuery) Process(d *db.DB) (*Result, error) {
	ids, err := searchIDs(d, q)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, len(ids))
	for i, id := range ids {
		elems[i] = Element{ID: id}
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}
