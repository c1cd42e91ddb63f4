// Package db's DB type is the facade spec.md §4.6 describes, exposing
// insertNode/insertEdge/insertAlias/insertValues/insertIndex/remove/... as
// normal Go methods building on graph.Graph, dictionary.Dictionary and
// the alias/property/index structures in this package.
package db

import (
	"sync"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/dictionary"
	"github.com/jpl-au/agdb/graph"
	"github.com/jpl-au/agdb/storage"
)

// rootIndex is the fixed storage index of the facade's root record,
// which locates every other structure (graph vectors, dictionary,
// alias maps, property store, named indexes), per spec.md §6 ("A root
// record at a known index holds serialized pointers...").
const rootIndex = storage.Index(1)

// DB coordinates the graph, alias bi-map, dictionary-backed property
// store and named indexes over one Storage handle, per spec.md §4.6.
type DB struct {
	mu sync.RWMutex

	s     *storage.Storage
	alg   collection.Algorithm
	graph *graph.Graph
	dict  *dictionary.Dictionary
	alias *aliasMap
	props *propertyStore

	indexes map[string]*namedIndex
}

// New creates a fresh facade over a freshly opened, empty Storage.
func New(s *storage.Storage, alg collection.Algorithm) (*DB, error) {
	// Reserve the root record first so it always lands at rootIndex: it
	// must be the very first record inserted into a fresh Storage, before
	// any substructure below claims that index instead.
	if _, err := s.Insert(nil); err != nil {
		return nil, err
	}

	g, err := graph.New(s)
	if err != nil {
		return nil, err
	}
	dict, err := dictionary.New(s, alg)
	if err != nil {
		return nil, err
	}
	am, err := newAliasMap(s, dict, alg)
	if err != nil {
		return nil, err
	}
	ps, err := newPropertyStore(s, dict, alg)
	if err != nil {
		return nil, err
	}
	d := &DB{s: s, alg: alg, graph: g, dict: dict, alias: am, props: ps, indexes: map[string]*namedIndex{}}
	if err := d.writeRoot(); err != nil {
		return nil, err
	}
	return d, nil
}

// Open attaches to a facade previously created over s, restoring every
// substructure from the root record.
func Open(s *storage.Storage, alg collection.Algorithm) (*DB, error) {
	if !s.Exists(rootIndex) {
		return New(s, alg)
	}
	root, err := readRoot(s)
	if err != nil {
		return nil, err
	}
	g, err := graph.Open(s, root.NodeIdx, root.EdgeIdx)
	if err != nil {
		return nil, err
	}
	dict, err := dictionary.Open(s, root.DictIdx, alg)
	if err != nil {
		return nil, err
	}
	am := openAliasMap(s, dict, alg, root.AliasIDToValueIdx, root.AliasValueToIDIdx)
	ps, err := openPropertyStore(s, dict, alg, root.PropsEntriesIdx)
	if err != nil {
		return nil, err
	}
	d := &DB{s: s, alg: alg, graph: g, dict: dict, alias: am, props: ps, indexes: map[string]*namedIndex{}}
	for _, ri := range root.Indexes {
		d.indexes[indexName(ri.Key)] = openNamedIndex(s, dict, alg, ri.Key, ri.ByHashIdx)
	}
	return d, nil
}

// reloadAfterRollback reopens every substructure from the root record
// after a Storage-level rollback, per spec.md §9's "snapshot-and-restore"
// alternative to an inverse-command undo log. The state held only in
// memory (the graph's free lists, the dictionary's bloom filter, the
// property store's next sequence number and the set of named indexes)
// is re-derived from the rolled-back storage content, and the alias map
// and property store are reattached to the new dictionary, so no
// explicit undo log is needed.
func (d *DB) reloadAfterRollback() error {
	root, err := readRoot(d.s)
	if err != nil {
		return err
	}
	g, err := graph.Open(d.s, root.NodeIdx, root.EdgeIdx)
	if err != nil {
		return err
	}
	dict, err := dictionary.Open(d.s, root.DictIdx, d.alg)
	if err != nil {
		return err
	}
	d.graph = g
	d.dict = dict
	d.alias = openAliasMap(d.s, dict, d.alg, root.AliasIDToValueIdx, root.AliasValueToIDIdx)
	ps, err := openPropertyStore(d.s, dict, d.alg, root.PropsEntriesIdx)
	if err != nil {
		return err
	}
	d.props = ps
	d.indexes = map[string]*namedIndex{}
	for _, ri := range root.Indexes {
		d.indexes[indexName(ri.Key)] = openNamedIndex(d.s, dict, d.alg, ri.Key, ri.ByHashIdx)
	}
	return nil
}

// ResolveID resolves a QueryID to its ElementID: a numeric id is checked
// for existence, an alias is resolved via the bi-map, per spec.md §4.6.
func (d *DB) ResolveID(q QueryID) (ElementID, error) {
	if !q.named {
		if q.id == 0 {
			return 0, errInvalidQuery("reserved id 0 is not a valid element id")
		}
		if !d.exists(q.id) {
			return 0, errIDNotFound(q.id)
		}
		return q.id, nil
	}
	id, ok, err := d.alias.Resolve(q.alias)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errAliasNotFound(q.alias)
	}
	return id, nil
}

func (d *DB) exists(id ElementID) bool {
	if id.IsNode() {
		return d.graph.NodeExists(id)
	}
	if id.IsEdge() {
		return d.graph.EdgeExists(id)
	}
	return false
}

// NodeCount returns the number of live nodes.
func (d *DB) NodeCount() uint64 { return d.graph.NodeCount() }

// Aliases returns every bound alias, sorted lexicographically.
func (d *DB) Aliases() ([]string, error) { return d.alias.Aliases() }

// ResolveAlias resolves alias to its bound id, if any.
func (d *DB) ResolveAlias(alias string) (ElementID, bool, error) { return d.alias.Resolve(alias) }

// IndexNames returns the names of every currently maintained index.
func (d *DB) IndexNames() []string {
	out := make([]string, 0, len(d.indexes))
	for k := range d.indexes {
		out = append(out, k)
	}
	return out
}

// IndexCount returns the number of values indexed under key.
func (d *DB) IndexCount(key string) (uint64, error) {
	idx, ok := d.indexes[key]
	if !ok {
		return 0, errIndexNotFound(key)
	}
	return idx.Count()
}

// Values returns id's properties in insertion order.
func (d *DB) Values(id ElementID) ([]KeyValue, error) { return d.props.Values(id) }

// ValuesByKeys returns id's properties restricted to keys.
func (d *DB) ValuesByKeys(id ElementID, keys []Value) ([]KeyValue, error) {
	return d.props.ValuesByKeys(id, keys)
}

// Keys returns id's property keys in insertion order.
func (d *DB) Keys(id ElementID) ([]Value, error) { return d.props.Keys(id) }

// KeyCount returns the number of properties on id.
func (d *DB) KeyCount(id ElementID) (uint64, error) { return d.props.KeyCount(id) }

// Graph exposes the underlying graph for the query engine's search
// executors, which need direct adjacency traversal.
func (d *DB) Graph() *graph.Graph { return d.graph }

// Lock/Unlock/RLock/RUnlock let Engine implement spec.md §5's reader/
// writer model (many readers xor one writer) around Exec/ExecMut.
func (d *DB) Lock()    { d.mu.Lock() }
func (d *DB) Unlock()  { d.mu.Unlock() }
func (d *DB) RLock()   { d.mu.RLock() }
func (d *DB) RUnlock() { d.mu.RUnlock() }

// Storage exposes the underlying storage handle for transaction scoping
// and optimize/backup/restore operations at the Engine layer.
func (d *DB) Storage() *storage.Storage { return d.s }

// AfterRollback re-derives cached substructures; exported for Engine's
// TransactionMut to call after a Storage.Rollback.
func (d *DB) AfterRollback() error { return d.reloadAfterRollback() }
