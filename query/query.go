package query

// InsertNodesQuery inserts Count fresh nodes, optionally binding Aliases
// (one per node, same length as Count when non-empty) and Values (either
// one set applied to every node, or one set per node).
type InsertNodesQuery struct {
	Count   int
	Aliases []string
	Values  [][]KeyValue
}

// InsertEdgesQuery inserts one edge per (From[i], To[i]) pair, optionally
// attaching Values the same way InsertNodesQuery does.
type InsertEdgesQuery struct {
	From   Ids
	To     Ids
	Values [][]KeyValue
}

// InsertAliasesQuery binds Aliases[i] to Ids[i].
type InsertAliasesQuery struct {
	Ids     Ids
	Aliases []string
}

// InsertValuesQuery sets Values[i] on Ids[i] (or Values[0] on every id,
// when only one set is given).
type InsertValuesQuery struct {
	Ids    Ids
	Values [][]KeyValue
}

// InsertIndexQuery creates a named index on Key, scanning every existing
// element.
type InsertIndexQuery struct {
	Key Value
}

// RemoveQuery deletes every element in Ids.
type RemoveQuery struct {
	Ids Ids
}

// RemoveAliasesQuery unbinds every alias in Aliases.
type RemoveAliasesQuery struct {
	Aliases []string
}

// RemoveValuesQuery deletes the properties named in Keys from every id in
// Ids.
type RemoveValuesQuery struct {
	Ids  Ids
	Keys []Value
}

// RemoveIndexQuery deletes the named index on Key.
type RemoveIndexQuery struct {
	Key Value
}

// SelectQuery returns full elements (id + all properties) for every id
// the query resolves. Ids is used unless Search is set, in which case
// the ids are whatever SearchQuery would have returned on its own
// (select-from-search, generalizing the original's
// QueryIds::Search(SearchQuery) variant).
type SelectQuery struct {
	Ids    Ids
	Search *SearchQuery
}

// SelectAliasesQuery returns every bound alias as a synthetic element
// carrying one ("alias", string) property.
type SelectAliasesQuery struct{}

// SelectKeysQuery returns every property key (no values) for each id.
type SelectKeysQuery struct {
	Ids Ids
}

// SelectKeyCountQuery returns one ("key_count", n) property per id.
type SelectKeyCountQuery struct {
	Ids Ids
}

// SelectValuesQuery returns the properties in Keys for each id in Ids.
type SelectValuesQuery struct {
	Ids  Ids
	Keys []Value
}

// SelectIndexesQuery returns one synthetic element (id 0) with one
// (name, indexedValueCount) property per maintained index.
type SelectIndexesQuery struct{}

// SelectNodeCountQuery returns one synthetic element (id 0) with one
// ("node_count", n) property.
type SelectNodeCountQuery struct{}

// Algorithm names a graph-search traversal order.
type Algorithm int

const (
	AlgorithmBFS Algorithm = iota
	AlgorithmDFS
	AlgorithmPath
)

// SearchQuery runs a BFS/DFS/path search from From (and, for Path, to
// To), filtered by Conditions, honoring Limit/Offset per spec.md §4.5.
// Reverse reverses traversal direction (BFS-reverse / DFS-reverse). A
// zero Limit (the Go zero value, i.e. never set) means unbounded; see
// searchOptions.
type SearchQuery struct {
	Algorithm  Algorithm
	From       QueryID
	To         QueryID
	Reverse    bool
	Limit      int64
	Offset     int64
	Conditions *Condition
}
