package query

// Builder entry points mirror spec.md §4.7's fluent chain: each call
// starts a typed builder whose terminal methods produce a Query or
// MutQuery variant. Grounded on
// original_source/agdb/src/query_builder/{insert_nodes,insert_edges,
// insert_aliases,insert_values,insert_index,remove,remove_aliases,
// remove_values,remove_index,select,search}.rs.

// InsertNodes starts an InsertNodesQuery builder for count fresh nodes.
func InsertNodes(count int) *insertNodesBuilder {
	return &insertNodesBuilder{q: InsertNodesQuery{Count: count}}
}

type insertNodesBuilder struct{ q InsertNodesQuery }

func (b *insertNodesBuilder) Aliases(aliases ...string) *insertNodesBuilder {
	b.q.Aliases = aliases
	b.q.Count = len(aliases)
	return b
}

func (b *insertNodesBuilder) Values(values ...[]KeyValue) *insertNodesBuilder {
	b.q.Values = values
	return b
}

func (b *insertNodesBuilder) Query() InsertNodesQuery { return b.q }

// InsertEdges starts an InsertEdgesQuery builder from the given sources.
func InsertEdges(from Ids) *insertEdgesBuilder {
	return &insertEdgesBuilder{q: InsertEdgesQuery{From: from}}
}

type insertEdgesBuilder struct{ q InsertEdgesQuery }

func (b *insertEdgesBuilder) To(to Ids) *insertEdgesBuilder {
	b.q.To = to
	return b
}

func (b *insertEdgesBuilder) Values(values ...[]KeyValue) *insertEdgesBuilder {
	b.q.Values = values
	return b
}

func (b *insertEdgesBuilder) Query() InsertEdgesQuery { return b.q }

// InsertAliases starts an InsertAliasesQuery builder.
func InsertAliases(aliases ...string) *insertAliasesBuilder {
	return &insertAliasesBuilder{q: InsertAliasesQuery{Aliases: aliases}}
}

type insertAliasesBuilder struct{ q InsertAliasesQuery }

func (b *insertAliasesBuilder) Ids(ids Ids) InsertAliasesQuery {
	b.q.Ids = ids
	return b.q
}

// InsertValues starts an InsertValuesQuery builder.
func InsertValues(values ...[]KeyValue) *insertValuesBuilder {
	return &insertValuesBuilder{q: InsertValuesQuery{Values: values}}
}

type insertValuesBuilder struct{ q InsertValuesQuery }

func (b *insertValuesBuilder) Ids(ids Ids) InsertValuesQuery {
	b.q.Ids = ids
	return b.q
}

// InsertIndex builds an InsertIndexQuery on key.
func InsertIndex(key Value) InsertIndexQuery { return InsertIndexQuery{Key: key} }

// Remove builds a RemoveQuery over ids.
func Remove(ids Ids) RemoveQuery { return RemoveQuery{Ids: ids} }

// RemoveAliases builds a RemoveAliasesQuery.
func RemoveAliases(aliases ...string) RemoveAliasesQuery {
	return RemoveAliasesQuery{Aliases: aliases}
}

// RemoveValues starts a RemoveValuesQuery builder over keys.
func RemoveValues(keys ...Value) *removeValuesBuilder {
	return &removeValuesBuilder{q: RemoveValuesQuery{Keys: keys}}
}

type removeValuesBuilder struct{ q RemoveValuesQuery }

func (b *removeValuesBuilder) Ids(ids Ids) RemoveValuesQuery {
	b.q.Ids = ids
	return b.q
}

// RemoveIndex builds a RemoveIndexQuery on key.
func RemoveIndex(key Value) RemoveIndexQuery { return RemoveIndexQuery{Key: key} }

// Select builds a SelectQuery over ids.
func Select(ids Ids) SelectQuery { return SelectQuery{Ids: ids} }

// SelectSearch builds a SelectQuery whose ids come from running search
// first, matching QueryBuilder::select().ids(QueryBuilder::search()...)
// in the original.
func SelectSearch(search SearchQuery) SelectQuery { return SelectQuery{Search: &search} }

// SelectAliases builds a SelectAliasesQuery.
func SelectAliases() SelectAliasesQuery { return SelectAliasesQuery{} }

// SelectKeys builds a SelectKeysQuery over ids.
func SelectKeys(ids Ids) SelectKeysQuery { return SelectKeysQuery{Ids: ids} }

// SelectKeyCount builds a SelectKeyCountQuery over ids.
func SelectKeyCount(ids Ids) SelectKeyCountQuery { return SelectKeyCountQuery{Ids: ids} }

// SelectValues starts a SelectValuesQuery builder over keys.
func SelectValues(keys ...Value) *selectValuesBuilder {
	return &selectValuesBuilder{q: SelectValuesQuery{Keys: keys}}
}

type selectValuesBuilder struct{ q SelectValuesQuery }

func (b *selectValuesBuilder) Ids(ids Ids) SelectValuesQuery {
	b.q.Ids = ids
	return b.q
}

// SelectIndexes builds a SelectIndexesQuery.
func SelectIndexes() SelectIndexesQuery { return SelectIndexesQuery{} }

// SelectNodeCount builds a SelectNodeCountQuery.
func SelectNodeCount() SelectNodeCountQuery { return SelectNodeCountQuery{} }

// Search starts a SearchQuery builder from a resolved start id. Limit
// defaults to the Go zero value (0), which searchOptions resolves as
// unbounded unless Limit is explicitly overridden.
func Search() *searchBuilder {
	return &searchBuilder{}
}

type searchBuilder struct{ q SearchQuery }

func (b *searchBuilder) From(from QueryID) *searchBuilder {
	b.q.From = from
	return b
}

func (b *searchBuilder) To(to QueryID) *searchBuilder {
	b.q.To = to
	return b
}

func (b *searchBuilder) Depth() *searchBuilder { b.q.Algorithm = AlgorithmDFS; return b }
func (b *searchBuilder) Breadth() *searchBuilder { b.q.Algorithm = AlgorithmBFS; return b }
func (b *searchBuilder) ShortestPath() *searchBuilder { b.q.Algorithm = AlgorithmPath; return b }

func (b *searchBuilder) Reverse() *searchBuilder {
	b.q.Reverse = true
	return b
}

func (b *searchBuilder) Limit(n int64) *searchBuilder {
	b.q.Limit = n
	return b
}

func (b *searchBuilder) Offset(n int64) *searchBuilder {
	b.q.Offset = n
	return b
}

func (b *searchBuilder) Where(cond *Condition) *searchBuilder {
	b.q.Conditions = cond
	return b
}

func (b *searchBuilder) Query() SearchQuery { return b.q }
