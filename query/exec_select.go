package query

import (
	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/serialize"
)

// Process returns full elements (id + properties) for every id in Ids,
// or, when Search is set, every id that search would have returned on
// its own (select-from-search).
func (q SelectQuery) Process(d *db.DB) (*Result, error) {
	var ids []ElementID
	var err error
	if q.Search != nil {
		ids, err = searchIDs(d, *q.Search)
	} else {
		ids, err = resolve(d, q.Ids)
	}
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(ids))
	for _, id := range ids {
		kvs, err := d.Values(id)
		if err != nil {
			return nil, err
		}
		e := Element{ID: id, Values: kvs}
		if id.IsEdge() {
			from, err := d.Graph().EdgeFrom(id)
			if err != nil {
				return nil, err
			}
			to, err := d.Graph().EdgeTo(id)
			if err != nil {
				return nil, err
			}
			e.From, e.To = from, to
		}
		elems = append(elems, e)
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// Process returns every bound alias as a synthetic element carrying one
// ("alias", string) property.
func (q SelectAliasesQuery) Process(d *db.DB) (*Result, error) {
	aliases, err := d.Aliases()
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(aliases))
	for _, a := range aliases {
		id, ok, err := d.ResolveAlias(a)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		elems = append(elems, Element{ID: id, Values: []KeyValue{{Key: serialize.NewString("alias"), Value: serialize.NewString(a)}}})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// Process returns every property key (no values) for each id.
func (q SelectKeysQuery) Process(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(ids))
	for _, id := range ids {
		keys, err := d.Keys(id)
		if err != nil {
			return nil, err
		}
		kvs := make([]KeyValue, len(keys))
		for i, k := range keys {
			kvs[i] = KeyValue{Key: k}
		}
		elems = append(elems, Element{ID: id, Values: kvs})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// Process returns one ("key_count", n) property per id.
func (q SelectKeyCountQuery) Process(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(ids))
	for _, id := range ids {
		n, err := d.KeyCount(id)
		if err != nil {
			return nil, err
		}
		elems = append(elems, Element{ID: id, Values: []KeyValue{
			{Key: serialize.NewString("key_count"), Value: serialize.NewUInt(n)},
		}})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// Process returns the properties named in Keys for each id in Ids.
func (q SelectValuesQuery) Process(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(ids))
	for _, id := range ids {
		kvs, err := d.ValuesByKeys(id, q.Keys)
		if err != nil {
			return nil, err
		}
		elems = append(elems, Element{ID: id, Values: kvs})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// Process returns one synthetic element (id 0) with one
// (name, indexedValueCount) property per maintained index.
func (q SelectIndexesQuery) Process(d *db.DB) (*Result, error) {
	names := d.IndexNames()
	kvs := make([]KeyValue, 0, len(names))
	for _, name := range names {
		count, err := d.IndexCount(name)
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, KeyValue{Key: serialize.NewString(name), Value: serialize.NewUInt(count)})
	}
	return &Result{Result: 1, Elements: []Element{{ID: 0, Values: kvs}}}, nil
}

// Process returns one synthetic element (id 0) with one
// ("node_count", n) property.
func (q SelectNodeCountQuery) Process(d *db.DB) (*Result, error) {
	n := d.NodeCount()
	return &Result{Result: 1, Elements: []Element{{
		ID:     0,
		Values: []KeyValue{{Key: serialize.NewString("node_count"), Value: serialize.NewUInt(n)}},
	}}}, nil
}
