package query

import (
	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/serialize"
)

// CompareOp names one of spec.md §4.7's comparison kinds, used by the
// value/distance/edge_count atoms.
type CompareOp int

const (
	Equal CompareOp = iota
	NotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Contains
)

// Comparison pairs an operator with the operand to compare against.
type Comparison struct {
	Op  CompareOp
	Val Value
}

func Eq(v Value) Comparison   { return Comparison{Equal, v} }
func Ne(v Value) Comparison   { return Comparison{NotEqual, v} }
func Gt(v Value) Comparison   { return Comparison{GreaterThan, v} }
func Ge(v Value) Comparison   { return Comparison{GreaterThanOrEqual, v} }
func Lt(v Value) Comparison   { return Comparison{LessThan, v} }
func Le(v Value) Comparison   { return Comparison{LessThanOrEqual, v} }
func Has(v Value) Comparison  { return Comparison{Contains, v} }

func (c Comparison) evalValue(actual Value) bool {
	switch c.Op {
	case Equal:
		return actual.Equal(c.Val)
	case NotEqual:
		return !actual.Equal(c.Val)
	case GreaterThan:
		return actual.Compare(c.Val) > 0
	case GreaterThanOrEqual:
		return actual.Compare(c.Val) >= 0
	case LessThan:
		return actual.Compare(c.Val) < 0
	case LessThanOrEqual:
		return actual.Compare(c.Val) <= 0
	case Contains:
		return actual.Contains(c.Val)
	}
	return false
}

func (c Comparison) evalUint(actual uint64) bool {
	return c.evalValue(serialize.NewUInt(actual))
}

// evalContext is the per-element state a condition atom evaluates
// against: the element under consideration and its search distance, if
// the condition is being evaluated from inside a search.
type evalContext struct {
	d        *db.DB
	id       ElementID
	distance uint64
}

// Atom is one leaf test in a condition tree: id, key, value, distance,
// edge_count* or node/edge type, per spec.md §4.7.
type Atom interface {
	eval(ctx *evalContext) (bool, error)
}

type idAtom struct{ ids Ids }

// AtomIDs matches elements whose id is one of ids.
func AtomIDs(ids Ids) Atom { return idAtom{ids: ids} }

func (a idAtom) eval(ctx *evalContext) (bool, error) {
	for _, q := range a.ids {
		resolved, err := ctx.d.ResolveID(q)
		if err != nil {
			continue
		}
		if resolved == ctx.id {
			return true, nil
		}
	}
	return false, nil
}

type keyAtom struct{ key Value }

// AtomKey matches elements carrying a property named key.
func AtomKey(key Value) Atom { return keyAtom{key: key} }

func (a keyAtom) eval(ctx *evalContext) (bool, error) {
	keys, err := ctx.d.Keys(ctx.id)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k.Equal(a.key) {
			return true, nil
		}
	}
	return false, nil
}

type keysAtom struct{ keys []Value }

// AtomKeys matches elements carrying every key in keys.
func AtomKeys(keys []Value) Atom { return keysAtom{keys: keys} }

func (a keysAtom) eval(ctx *evalContext) (bool, error) {
	present, err := ctx.d.Keys(ctx.id)
	if err != nil {
		return false, err
	}
	for _, want := range a.keys {
		found := false
		for _, k := range present {
			if k.Equal(want) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

type valueAtom struct {
	key Value
	cmp Comparison
}

// AtomValue matches elements whose property key compares true against cmp.
func AtomValue(key Value, cmp Comparison) Atom { return valueAtom{key: key, cmp: cmp} }

func (a valueAtom) eval(ctx *evalContext) (bool, error) {
	kvs, err := ctx.d.Values(ctx.id)
	if err != nil {
		return false, err
	}
	for _, kv := range kvs {
		if kv.Key.Equal(a.key) {
			return a.cmp.evalValue(kv.Value), nil
		}
	}
	return false, nil
}

type distanceAtom struct{ cmp Comparison }

// AtomDistance matches elements whose search distance compares true
// against cmp. Only meaningful inside a search's handler.
func AtomDistance(cmp Comparison) Atom { return distanceAtom{cmp: cmp} }

func (a distanceAtom) eval(ctx *evalContext) (bool, error) {
	return a.cmp.evalUint(ctx.distance), nil
}

type edgeCountAtom struct {
	cmp       Comparison
	fromOnly  bool
	toOnly    bool
}

// AtomEdgeCount matches nodes whose total incident edge count compares
// true against cmp.
func AtomEdgeCount(cmp Comparison) Atom { return edgeCountAtom{cmp: cmp} }

// AtomEdgeCountFrom matches nodes by outgoing edge count.
func AtomEdgeCountFrom(cmp Comparison) Atom { return edgeCountAtom{cmp: cmp, fromOnly: true} }

// AtomEdgeCountTo matches nodes by incoming edge count.
func AtomEdgeCountTo(cmp Comparison) Atom { return edgeCountAtom{cmp: cmp, toOnly: true} }

func (a edgeCountAtom) eval(ctx *evalContext) (bool, error) {
	if !ctx.id.IsNode() {
		return false, nil
	}
	g := ctx.d.Graph()
	var count uint64
	if !a.toOnly {
		out, err := g.EdgesFrom(ctx.id)
		if err != nil {
			return false, err
		}
		count += uint64(len(out))
	}
	if !a.fromOnly {
		in, err := g.EdgesTo(ctx.id)
		if err != nil {
			return false, err
		}
		count += uint64(len(in))
	}
	return a.cmp.evalUint(count), nil
}

type nodeAtom struct{}

// AtomNode matches node elements.
func AtomNode() Atom { return nodeAtom{} }

func (nodeAtom) eval(ctx *evalContext) (bool, error) { return ctx.id.IsNode(), nil }

type edgeAtom struct{}

// AtomEdge matches edge elements.
func AtomEdge() Atom { return edgeAtom{} }

func (edgeAtom) eval(ctx *evalContext) (bool, error) { return ctx.id.IsEdge(), nil }

// Logic joins a Clause to the running evaluation of the clauses before it.
type Logic int

const (
	And Logic = iota
	Or
)

// Modifier negates or limits the expansion effect of a Clause.
type Modifier int

const (
	ModNone Modifier = iota
	ModNot
	// ModNotBeyond marks the clause as spec.md §4.7's not_beyond: a search
	// must not expand past an element where this clause's atom matches.
	ModNotBeyond
)

// Clause is one element of a Condition: either a leaf Atom or a nested
// Group of clauses (spec.md's where_()...end_where() grouping), joined to
// its predecessor by Logic and optionally inverted/limited by Modifier.
type Clause struct {
	Logic    Logic
	Modifier Modifier
	Atom     Atom
	Group    *Condition
}

// Condition is a sequence of Clauses evaluated left to right.
type Condition struct {
	Clauses []Clause
}

func (c Clause) eval(ctx *evalContext) (bool, error) {
	var matched bool
	var err error
	if c.Group != nil {
		matched, _, err = c.Group.Evaluate(ctx.d, ctx.id, ctx.distance)
	} else if c.Atom != nil {
		matched, err = c.Atom.eval(ctx)
	}
	if err != nil {
		return false, err
	}
	if c.Modifier == ModNot {
		matched = !matched
	}
	return matched, nil
}

// Evaluate runs the condition against id (at the given search distance,
// 0 outside a search), returning whether it matched and whether a
// not_beyond clause fired (the search should not expand past id).
func (c *Condition) Evaluate(d *db.DB, id ElementID, distance uint64) (matched bool, stopExpand bool, err error) {
	ctx := &evalContext{d: d, id: id, distance: distance}
	result := true
	first := true
	for _, clause := range c.Clauses {
		m, err := clause.eval(ctx)
		if err != nil {
			return false, false, err
		}
		if first {
			result = m
			first = false
		} else if clause.Logic == Or {
			result = result || m
		} else {
			result = result && m
		}
		if clause.Modifier == ModNotBeyond && m {
			stopExpand = true
		}
	}
	return result, stopExpand, nil
}

// clause builds a new top-level clause, deferring And/Or attachment to
// And()/Or() below.
func clause(mod Modifier, atom Atom, group *Condition) Clause {
	return Clause{Modifier: mod, Atom: atom, Group: group}
}

// Where starts a new condition with a single clause.
func Where(atom Atom) *Condition {
	return &Condition{Clauses: []Clause{clause(ModNone, atom, nil)}}
}

// WhereGroup starts a new condition whose first clause is a nested group.
func WhereGroup(group *Condition) *Condition {
	return &Condition{Clauses: []Clause{clause(ModNone, nil, group)}}
}

// And appends atom, ANDed with everything before it.
func (c *Condition) And(atom Atom) *Condition {
	cl := clause(ModNone, atom, nil)
	cl.Logic = And
	c.Clauses = append(c.Clauses, cl)
	return c
}

// Or appends atom, ORed with everything before it.
func (c *Condition) Or(atom Atom) *Condition {
	cl := clause(ModNone, atom, nil)
	cl.Logic = Or
	c.Clauses = append(c.Clauses, cl)
	return c
}

// AndGroup appends a nested group, ANDed with everything before it.
func (c *Condition) AndGroup(group *Condition) *Condition {
	cl := clause(ModNone, nil, group)
	cl.Logic = And
	c.Clauses = append(c.Clauses, cl)
	return c
}

// OrGroup appends a nested group, ORed with everything before it.
func (c *Condition) OrGroup(group *Condition) *Condition {
	cl := clause(ModNone, nil, group)
	cl.Logic = Or
	c.Clauses = append(c.Clauses, cl)
	return c
}

// Not negates the last appended clause.
func (c *Condition) Not() *Condition {
	if len(c.Clauses) == 0 {
		return c
	}
	c.Clauses[len(c.Clauses)-1].Modifier = ModNot
	return c
}

// NotBeyond marks the last appended clause as a not_beyond stop-expansion
// boundary.
func (c *Condition) NotBeyond() *Condition {
	if len(c.Clauses) == 0 {
		return c
	}
	c.Clauses[len(c.Clauses)-1].Modifier = ModNotBeyond
	return c
}
