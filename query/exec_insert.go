package query

import "github.com/jpl-au/agdb/db"

func valuesFor(values [][]KeyValue, i, n int) []KeyValue {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 && n > 1 {
		return values[0]
	}
	if i < len(values) {
		return values[i]
	}
	return nil
}

// ProcessMut inserts Count nodes, per spec.md §4.7: result is the number
// of nodes inserted (positive); elements carry their new ids.
func (q InsertNodesQuery) ProcessMut(d *db.DB) (*Result, error) {
	n := q.Count
	if n == 0 {
		n = len(q.Aliases)
	}
	elems := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		id, err := d.InsertNode()
		if err != nil {
			return nil, err
		}
		if i < len(q.Aliases) {
			if err := d.InsertAlias(id, q.Aliases[i]); err != nil {
				return nil, err
			}
		}
		if kvs := valuesFor(q.Values, i, n); len(kvs) > 0 {
			if err := d.InsertValues(id, kvs); err != nil {
				return nil, err
			}
		}
		elems = append(elems, Element{ID: id})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// ProcessMut inserts one edge per (From[i], To[i]) pair.
func (q InsertEdgesQuery) ProcessMut(d *db.DB) (*Result, error) {
	from, err := resolve(d, q.From)
	if err != nil {
		return nil, err
	}
	to, err := resolve(d, q.To)
	if err != nil {
		return nil, err
	}
	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	elems := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		id, err := d.InsertEdge(from[i], to[i])
		if err != nil {
			return nil, err
		}
		if kvs := valuesFor(q.Values, i, n); len(kvs) > 0 {
			if err := d.InsertValues(id, kvs); err != nil {
				return nil, err
			}
		}
		elems = append(elems, Element{ID: id, From: from[i], To: to[i]})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// ProcessMut binds Aliases[i] to Ids[i], failing AliasExists if any
// alias names a different existing id.
func (q InsertAliasesQuery) ProcessMut(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	n := len(ids)
	if len(q.Aliases) < n {
		n = len(q.Aliases)
	}
	for i := 0; i < n; i++ {
		if err := d.InsertAlias(ids[i], q.Aliases[i]); err != nil {
			return nil, err
		}
	}
	elems := make([]Element, n)
	for i := 0; i < n; i++ {
		elems[i] = Element{ID: ids[i]}
	}
	return &Result{Result: int64(n), Elements: elems}, nil
}

// ProcessMut sets properties on every id in Ids.
func (q InsertValuesQuery) ProcessMut(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	n := len(ids)
	elems := make([]Element, 0, n)
	for i, id := range ids {
		kvs := valuesFor(q.Values, i, n)
		if len(kvs) > 0 {
			if err := d.InsertValues(id, kvs); err != nil {
				return nil, err
			}
		}
		elems = append(elems, Element{ID: id, Values: kvs})
	}
	return &Result{Result: int64(len(elems)), Elements: elems}, nil
}

// ProcessMut creates a named index on Key, returning the number of
// elements it was populated from.
func (q InsertIndexQuery) ProcessMut(d *db.DB) (*Result, error) {
	count, err := d.InsertIndex(q.Key)
	if err != nil {
		return nil, err
	}
	return &Result{Result: count}, nil
}
