// Package search implements the BFS, DFS (forward and reverse) and
// Dijkstra-style path search algorithms described in spec.md §4.5, all
// sharing one handler contract. Grounded on
// original_source/crates/graph_search/src/{breadth_first_search,
// depth_first_search,search_handler,path,path_search_handler}.rs.
package search

import "github.com/jpl-au/agdb/graph"

// Action is the handler's verdict on whether to keep expanding past an
// element.
type Action int

const (
	// ActionContinue keeps expanding past this element.
	ActionContinue Action = iota
	// ActionFinish stops the whole search immediately.
	ActionFinish
	// ActionStop does not expand past this element, but lets sibling
	// branches continue.
	ActionStop
)

// Decision is a handler's verdict for one visited element: whether to
// keep searching (Action) and whether to include this element in the
// result set (Include).
type Decision struct {
	Action  Action
	Include bool
}

// Continue keeps expanding, including this element iff include.
func Continue(include bool) Decision { return Decision{Action: ActionContinue, Include: include} }

// Finish stops the whole search, including this element iff include.
func Finish(include bool) Decision { return Decision{Action: ActionFinish, Include: include} }

// Stop does not expand past this element, including it iff include.
func Stop(include bool) Decision { return Decision{Action: ActionStop, Include: include} }

// Handler decides, for every element BFS/DFS/path search visits,
// whether to include it in the result and whether to keep expanding.
type Handler interface {
	Visit(id graph.ElementID, distance uint64) Decision
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(id graph.ElementID, distance uint64) Decision

func (f HandlerFunc) Visit(id graph.ElementID, distance uint64) Decision { return f(id, distance) }

// Options bounds how many included elements a search returns. Limit < 0
// means unbounded; Limit == 0 means literally zero results; callers
// wanting "unbounded" must set Limit to a negative sentinel explicitly,
// since the Go zero value of Options has Limit == 0. spec.md §9 flags
// "limit == 0 means unbounded or empty" as an open question; package
// query resolves it at its own layer (a SearchQuery whose Limit was
// never set maps to the negative sentinel here, not to 0).
type Options struct {
	Limit  int
	Offset int
}

// collector accumulates included elements subject to Offset/Limit.
type collector struct {
	opts    Options
	skipped int
	result  []graph.ElementID
}

func (c *collector) offer(id graph.ElementID) (done bool) {
	if c.skipped < c.opts.Offset {
		c.skipped++
		return false
	}
	if c.opts.Limit >= 0 && len(c.result) >= c.opts.Limit {
		return true
	}
	c.result = append(c.result, id)
	if c.opts.Limit >= 0 && len(c.result) >= c.opts.Limit {
		return true
	}
	return false
}

// Graph is the subset of graph.Graph's API the search algorithms need,
// letting tests substitute a fake.
type Graph interface {
	NodeExists(id graph.ElementID) bool
	EdgesFrom(id graph.ElementID) ([]graph.ElementID, error)
	EdgesTo(id graph.ElementID) ([]graph.ElementID, error)
	EdgeFrom(id graph.ElementID) (graph.ElementID, error)
	EdgeTo(id graph.ElementID) (graph.ElementID, error)
}
