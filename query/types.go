// Package query implements the sealed query variants, fluent builder and
// where_() condition DSL of spec.md §4.7, executing against a *db.DB.
// Grounded on original_source/agdb/src/query*/*.rs and
// original_source/agdb/src/query_builder/*.rs.
package query

import "github.com/jpl-au/agdb/db"

// ElementID, Value, KeyValue, QueryID, Element and Result are the facade's
// own types, re-exported here since every query operand and result is
// phrased in terms of them.
type (
	ElementID = db.ElementID
	Value     = db.Value
	KeyValue  = db.KeyValue
	QueryID   = db.QueryID
	Element   = db.Element
	Result    = db.Result
)

// ID wraps a numeric element id as a QueryID.
func ID(id ElementID) QueryID { return db.FromID(id) }

// Alias wraps a string alias as a QueryID.
func Alias(alias string) QueryID { return db.FromAlias(alias) }

// Ids is an ordered list of QueryIDs, generalizing spec.md's "external
// query ids" (either numeric ElementIds or string aliases).
type Ids []QueryID

// IDs builds an Ids list from numeric element ids.
func IDs(ids ...ElementID) Ids {
	out := make(Ids, len(ids))
	for i, id := range ids {
		out[i] = ID(id)
	}
	return out
}

// Aliases builds an Ids list from string aliases.
func Aliases(aliases ...string) Ids {
	out := make(Ids, len(aliases))
	for i, a := range aliases {
		out[i] = Alias(a)
	}
	return out
}

// resolve turns every QueryID in ids into its ElementID, failing on the
// first one the facade cannot resolve (unknown id or alias).
func resolve(d *db.DB, ids Ids) ([]ElementID, error) {
	out := make([]ElementID, len(ids))
	for i, q := range ids {
		id, err := d.ResolveID(q)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// Query is implemented by every read-only query variant.
type Query interface {
	Process(d *db.DB) (*Result, error)
}

// MutQuery is implemented by every mutating query variant.
type MutQuery interface {
	ProcessMut(d *db.DB) (*Result, error)
}
