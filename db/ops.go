package db

import "github.com/jpl-au/agdb/serialize"

// Mutating facade operations, per spec.md §4.6. Every method here ends
// by calling writeRoot, since a substructure's backing storage index can
// change underneath it (a HashMap/MultiMap rehash swaps to a freshly
// allocated record) and the root record is the only place that mapping
// is persisted.

// InsertNode allocates a node and returns its id.
func (d *DB) InsertNode() (ElementID, error) {
	id, err := d.graph.InsertNode()
	if err != nil {
		return 0, err
	}
	return id, d.writeRoot()
}

// InsertEdge allocates an edge from -> to and returns its id.
func (d *DB) InsertEdge(from, to ElementID) (ElementID, error) {
	if !d.exists(from) {
		return 0, errIDNotFound(from)
	}
	if !d.exists(to) {
		return 0, errIDNotFound(to)
	}
	id, err := d.graph.InsertEdge(from, to)
	if err != nil {
		return 0, err
	}
	return id, d.writeRoot()
}

// InsertAlias binds alias to id.
func (d *DB) InsertAlias(id ElementID, alias string) error {
	if alias == "" {
		return errInvalidQuery("alias must not be empty")
	}
	if !d.exists(id) {
		return errIDNotFound(id)
	}
	if err := d.alias.Insert(id, alias); err != nil {
		return err
	}
	return d.writeRoot()
}

// RemoveAlias unbinds alias, reporting AliasNotFound if it was unbound.
func (d *DB) RemoveAlias(alias string) error {
	ok, err := d.alias.RemoveAlias(alias)
	if err != nil {
		return err
	}
	if !ok {
		return errAliasNotFound(alias)
	}
	return d.writeRoot()
}

// InsertValues sets kvs on id, replacing any existing value for a
// repeated key and appending otherwise, also updating any named index
// maintained on an affected key.
func (d *DB) InsertValues(id ElementID, kvs []KeyValue) error {
	if !d.exists(id) {
		return errIDNotFound(id)
	}
	before, err := d.props.Values(id)
	if err != nil {
		return err
	}
	if err := d.props.InsertValues(id, kvs); err != nil {
		return err
	}
	after, err := d.props.Values(id)
	if err != nil {
		return err
	}
	if err := d.syncIndexes(id, before, after); err != nil {
		return err
	}
	return d.writeRoot()
}

// RemoveKeys deletes id's properties named in keys.
func (d *DB) RemoveKeys(id ElementID, keys []Value) (int, error) {
	if !d.exists(id) {
		return 0, errIDNotFound(id)
	}
	before, err := d.props.Values(id)
	if err != nil {
		return 0, err
	}
	n, err := d.props.RemoveKeys(id, keys)
	if err != nil {
		return n, err
	}
	after, err := d.props.Values(id)
	if err != nil {
		return n, err
	}
	if err := d.syncIndexes(id, before, after); err != nil {
		return n, err
	}
	return n, d.writeRoot()
}

// Remove deletes id: if id is a node, every incident edge and all
// affected properties are removed atomically too, per spec.md §3's
// invariant.
func (d *DB) Remove(id ElementID) error {
	if !d.exists(id) {
		return nil
	}
	if id.IsEdge() {
		return d.removeEdge(id)
	}
	return d.removeNode(id)
}

func (d *DB) removeEdge(id ElementID) error {
	if err := d.clearElement(id); err != nil {
		return err
	}
	if err := d.graph.RemoveEdge(id); err != nil {
		return err
	}
	return d.writeRoot()
}

func (d *DB) removeNode(id ElementID) error {
	removedEdges, err := d.graph.RemoveNode(id)
	if err != nil {
		return err
	}
	for _, e := range removedEdges {
		if err := d.clearElement(e); err != nil {
			return err
		}
	}
	if err := d.clearElement(id); err != nil {
		return err
	}
	if err := d.alias.Remove(id); err != nil {
		return err
	}
	return d.writeRoot()
}

// clearElement removes id's properties and any index entries they fed.
func (d *DB) clearElement(id ElementID) error {
	before, err := d.props.Values(id)
	if err != nil {
		return err
	}
	if err := d.props.RemoveAll(id); err != nil {
		return err
	}
	return d.syncIndexes(id, before, nil)
}

// InsertIndex creates a named index on key, populating it from a full
// scan of every existing node and edge's properties, returning the
// number of elements indexed.
func (d *DB) InsertIndex(key Value) (int64, error) {
	keyStr := indexName(key)
	if _, exists := d.indexes[keyStr]; exists {
		return 0, errIndexExists(keyStr)
	}
	idx, err := newNamedIndex(d.s, d.dict, d.alg, key)
	if err != nil {
		return 0, err
	}
	d.indexes[keyStr] = idx

	var count int64
	scan := func(id ElementID) error {
		kvs, err := d.props.Values(id)
		if err != nil {
			return err
		}
		for _, kv := range kvs {
			if !kv.Key.Equal(key) {
				continue
			}
			entries, err := d.props.orderedEntries(id)
			if err != nil {
				return err
			}
			for _, e := range entries {
				k, err := d.dict.Value(e.KeyIdx)
				if err != nil {
					return err
				}
				if !k.Equal(key) {
					continue
				}
				if err := idx.Add(id, e.ValIdx, kv.Value); err != nil {
					return err
				}
			}
			count++
			break
		}
		return nil
	}
	for _, id := range d.graph.NodeIDs() {
		if err := scan(id); err != nil {
			return 0, err
		}
	}
	for _, id := range d.graph.EdgeIDs() {
		if err := scan(id); err != nil {
			return 0, err
		}
	}
	return count, d.writeRoot()
}

// RemoveIndex deletes the named index on key.
func (d *DB) RemoveIndex(key string) error {
	if _, ok := d.indexes[key]; !ok {
		return errIndexNotFound(key)
	}
	delete(d.indexes, key)
	return d.writeRoot()
}

// syncIndexes updates every maintained index after id's properties
// changed from `before` to `after`.
func (d *DB) syncIndexes(id ElementID, before, after []KeyValue) error {
	if len(d.indexes) == 0 {
		return nil
	}
	for _, idx := range d.indexes {
		oldVal, hadOld := findKey(before, idx.key)
		newVal, hasNew := findKey(after, idx.key)
		if hadOld && (!hasNew || !oldVal.Equal(newVal)) {
			if err := idx.Remove(id, oldVal); err != nil {
				return err
			}
		}
		if hasNew && (!hadOld || !oldVal.Equal(newVal)) {
			valIdx, ok, err := d.dict.Find(newVal)
			if err != nil {
				return err
			}
			if !ok {
				return newError(KindSerialization, "indexed value missing from dictionary for element '%d'", int64(id))
			}
			if err := idx.Add(id, valIdx, newVal); err != nil {
				return err
			}
		}
	}
	return nil
}

func findKey(kvs []KeyValue, key Value) (Value, bool) {
	for _, kv := range kvs {
		if kv.Key.Equal(key) {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// IndexName returns the map key a named index on key is stored under,
// exported so the query package can address RemoveIndex/IndexCount
// without duplicating the string-vs-encoded-bytes convention.
func IndexName(key Value) string { return indexName(key) }

func indexName(key Value) string {
	if key.Kind == serialize.KindString {
		return key.String
	}
	return string(key.HashBytes())
}
