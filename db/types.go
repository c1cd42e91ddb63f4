// Package db implements the facade described in spec.md §4.6: element
// identity (aliases + numeric ids), indexes, property storage and
// transactions, coordinating the graph, the alias map, the value
// dictionary and per-element property maps. Grounded on spec.md §4.6
// and original_source/agdb/src/db/{db_key,db_key_order,
// db_user_value}.rs.
package db

import (
	"github.com/jpl-au/agdb/graph"
	"github.com/jpl-au/agdb/serialize"
)

// ElementID is the canonical element handle: positive names a node,
// negative an edge, zero is invalid. Defined in package graph and
// re-exported here since every facade operation is phrased in terms of
// it.
type ElementID = graph.ElementID

// Value is the tagged union of scalar/vector value kinds, defined in
// package serialize and re-exported here for facade callers.
type Value = serialize.Value

// KeyValue is an ordered (key, value) property pair. An element's
// properties are kept in insertion order, but DB.InsertValues replaces
// the value of a key the element already carries, so a key appears at
// most once per element; repeated keys are not stored.
type KeyValue struct {
	Key   Value
	Value Value
}

// QueryID is either a numeric ElementID or a string alias, resolved once
// via DB.ResolveID at executor entry. Generalizes spec.md's "external
// query ids".
type QueryID struct {
	id    ElementID
	alias string
	named bool
}

// FromID builds a QueryID from a numeric element id.
func FromID(id ElementID) QueryID { return QueryID{id: id} }

// FromAlias builds a QueryID from a string alias.
func FromAlias(alias string) QueryID { return QueryID{alias: alias, named: true} }

// Element is one row of a QueryResult: an id plus its ordered key/value
// properties. From/To are populated for edges.
type Element struct {
	ID     ElementID
	From   ElementID
	To     ElementID
	Values []KeyValue
}

// Result is the structured outcome of executing a query, per spec.md
// §4.7: a scalar Result plus the Elements it touched or matched.
type Result struct {
	Result   int64
	Elements []Element
}
