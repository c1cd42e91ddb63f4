package query

import "github.com/jpl-au/agdb/db"

// ProcessMut deletes every element in Ids, per spec.md §4.7: result is a
// negative count of elements removed.
func (q RemoveQuery) ProcessMut(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, id := range ids {
		if err := d.Remove(id); err != nil {
			return nil, err
		}
		count++
	}
	return &Result{Result: -int64(count)}, nil
}

// ProcessMut unbinds every alias in Aliases.
func (q RemoveAliasesQuery) ProcessMut(d *db.DB) (*Result, error) {
	count := 0
	for _, a := range q.Aliases {
		if err := d.RemoveAlias(a); err != nil {
			return nil, err
		}
		count++
	}
	return &Result{Result: -int64(count)}, nil
}

// ProcessMut deletes the properties named in Keys from every id in Ids.
func (q RemoveValuesQuery) ProcessMut(d *db.DB) (*Result, error) {
	ids, err := resolve(d, q.Ids)
	if err != nil {
		return nil, err
	}
	var removed int64
	for _, id := range ids {
		n, err := d.RemoveKeys(id, q.Keys)
		if err != nil {
			return nil, err
		}
		removed += int64(n)
	}
	return &Result{Result: -removed}, nil
}

// ProcessMut deletes the named index on Key.
func (q RemoveIndexQuery) ProcessMut(d *db.DB) (*Result, error) {
	if err := d.RemoveIndex(db.IndexName(q.Key)); err != nil {
		return nil, err
	}
	return &Result{Result: -1}, nil
}
