// Tests for the query builder chain, the where_() condition DSL and the
// select/remove/search executors, against a *db.DB over storage in a
// temporary file.
package query

import (
	"path/filepath"
	"testing"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/serialize"
	"github.com/jpl-au/agdb/storage"
)

func newDB(t *testing.T) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.agdb")
	s, err := storage.Open(path, storage.Config{})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	d, err := db.New(s, collection.AlgXXHash3)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	return d
}

func TestInsertNodesBuilderSetsCountFromAliases(t *testing.T) {
	q := InsertNodes(0).Aliases("x", "y", "z").Query()
	if q.Count != 3 {
		t.Errorf("Count = %d, want 3 (derived from Aliases)", q.Count)
	}
}

func TestInsertSelectRemoveRoundTrip(t *testing.T) {
	d := newDB(t)

	res, err := InsertNodes(1).Query().ProcessMut(d)
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	id := res.Elements[0].ID

	kvs := []KeyValue{{Key: serialize.NewString("k"), Value: serialize.NewInt(1)}}
	if _, err := InsertValues(kvs).Ids(IDs(id)).ProcessMut(d); err != nil {
		t.Fatalf("InsertValues: %v", err)
	}

	selRes, err := Select(IDs(id)).Process(d)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(selRes.Elements[0].Values) != 1 || selRes.Elements[0].Values[0].Value.Int != 1 {
		t.Fatalf("Select values = %+v, want [(k,1)]", selRes.Elements[0].Values)
	}

	remRes, err := Remove(IDs(id)).ProcessMut(d)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if remRes.Result != -1 {
		t.Fatalf("Remove result = %d, want -1", remRes.Result)
	}

	if _, err := Select(IDs(id)).Process(d); err == nil {
		t.Errorf("Select after Remove succeeded, want IdNotFound")
	}
}

func TestConditionValueComparison(t *testing.T) {
	d := newDB(t)
	res, _ := InsertNodes(1).Values([]KeyValue{
		{Key: serialize.NewString("age"), Value: serialize.NewInt(30)},
	}).Query().ProcessMut(d)
	id := res.Elements[0].ID

	cond := Where(AtomValue(serialize.NewString("age"), Ge(serialize.NewInt(18))))
	matched, stopExpand, err := cond.Evaluate(d, id, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !matched || stopExpand {
		t.Fatalf("matched, stopExpand = %v, %v; want true, false", matched, stopExpand)
	}

	cond2 := Where(AtomValue(serialize.NewString("age"), Lt(serialize.NewInt(18))))
	matched2, _, err := cond2.Evaluate(d, id, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if matched2 {
		t.Errorf("age < 18 matched for age=30")
	}
}

func TestConditionAndOrNot(t *testing.T) {
	d := newDB(t)
	res, _ := InsertNodes(1).Values([]KeyValue{
		{Key: serialize.NewString("role"), Value: serialize.NewString("admin")},
	}).Query().ProcessMut(d)
	id := res.Elements[0].ID

	cond := Where(AtomKey(serialize.NewString("role"))).
		And(AtomValue(serialize.NewString("role"), Eq(serialize.NewString("admin"))))
	matched, _, err := cond.Evaluate(d, id, 0)
	if err != nil || !matched {
		t.Fatalf("And(role present, role==admin) = %v, %v; want true, nil", matched, err)
	}

	notCond := Where(AtomValue(serialize.NewString("role"), Eq(serialize.NewString("admin")))).Not()
	matched, _, err = notCond.Evaluate(d, id, 0)
	if err != nil || matched {
		t.Fatalf("Not(role==admin) = %v, %v; want false, nil", matched, err)
	}
}

func TestConditionNotBeyondStopsExpansion(t *testing.T) {
	d := newDB(t)
	nodesRes, _ := InsertNodes(1).Query().ProcessMut(d)
	id := nodesRes.Elements[0].ID

	cond := Where(AtomIDs(IDs(id))).NotBeyond()
	_, stopExpand, err := cond.Evaluate(d, id, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !stopExpand {
		t.Errorf("NotBeyond clause matched but stopExpand = false")
	}
}

func TestSearchQueryConditionFiltersResult(t *testing.T) {
	d := newDB(t)
	nodesRes, _ := InsertNodes(3).Query().ProcessMut(d)
	n1, n2, n3 := nodesRes.Elements[0].ID, nodesRes.Elements[1].ID, nodesRes.Elements[2].ID
	_, err := InsertEdges(IDs(n1, n1)).To(IDs(n2, n3)).Query().ProcessMut(d)
	if err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	_, err = InsertValues([]KeyValue{{Key: serialize.NewString("tag"), Value: serialize.NewString("keep")}}).
		Ids(IDs(n2)).ProcessMut(d)
	if err != nil {
		t.Fatalf("InsertValues: %v", err)
	}

	q := Search().From(ID(n1)).Where(Where(AtomKey(serialize.NewString("tag")))).Query()
	res, err := q.Process(d)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var foundN2, foundN3 bool
	for _, e := range res.Elements {
		if e.ID == n2 {
			foundN2 = true
		}
		if e.ID == n3 {
			foundN3 = true
		}
	}
	if !foundN2 {
		t.Errorf("search did not include tagged node n2")
	}
	if foundN3 {
		t.Errorf("search included untagged node n3")
	}
}

func TestSearchQueryShortestPath(t *testing.T) {
	d := newDB(t)
	nodesRes, _ := InsertNodes(3).Query().ProcessMut(d)
	n1, n2, n3 := nodesRes.Elements[0].ID, nodesRes.Elements[1].ID, nodesRes.Elements[2].ID
	if _, err := InsertEdges(IDs(n1)).To(IDs(n2)).Query().ProcessMut(d); err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	if _, err := InsertEdges(IDs(n2)).To(IDs(n3)).Query().ProcessMut(d); err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}

	q := Search().From(ID(n1)).To(ID(n3)).ShortestPath().Query()
	res, err := q.Process(d)
	if err != nil {
		t.Fatalf("Search ShortestPath: %v", err)
	}
	if len(res.Elements) == 0 || res.Elements[len(res.Elements)-1].ID != n3 {
		t.Fatalf("path result = %+v, want to end at %d", res.Elements, n3)
	}
}

func TestSelectFromSearchResolvesPropertiesForSearchResultIds(t *testing.T) {
	d := newDB(t)
	nodesRes, _ := InsertNodes(3).Aliases("a1", "a2", "a3").Query().ProcessMut(d)
	n1, n2, n3 := nodesRes.Elements[0].ID, nodesRes.Elements[1].ID, nodesRes.Elements[2].ID
	if _, err := InsertEdges(IDs(n1, n2)).To(IDs(n2, n3)).Query().ProcessMut(d); err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	if _, err := InsertValues([]KeyValue{{Key: serialize.NewString("tag"), Value: serialize.NewString("v")}}).
		Ids(IDs(n1, n2, n3)).ProcessMut(d); err != nil {
		t.Fatalf("InsertValues: %v", err)
	}

	search := Search().From(ID(n1)).Query()
	res, err := SelectSearch(search).Process(d)
	if err != nil {
		t.Fatalf("SelectSearch: %v", err)
	}

	bare, err := search.Process(d)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Elements) != len(bare.Elements) {
		t.Fatalf("select-from-search returned %d elements, want %d", len(res.Elements), len(bare.Elements))
	}
	for i, e := range res.Elements {
		if e.ID != bare.Elements[i].ID {
			t.Errorf("element %d id = %d, want %d", i, e.ID, bare.Elements[i].ID)
		}
		if e.ID.IsNode() && len(e.Values) == 0 {
			t.Errorf("element %d (node %d) has no properties, want the 'tag' value", i, e.ID)
		}
	}
}

func TestSelectNodeCountAndIndexesSyntheticElement(t *testing.T) {
	d := newDB(t)
	if _, err := InsertNodes(2).Query().ProcessMut(d); err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	res, err := SelectNodeCount().Process(d)
	if err != nil {
		t.Fatalf("SelectNodeCount: %v", err)
	}
	if res.Elements[0].ID != 0 || res.Elements[0].Values[0].Key.String != "node_count" {
		t.Fatalf("SelectNodeCount element = %+v, want synthetic id 0 with node_count", res.Elements[0])
	}
}

func TestRemoveValuesQueryResultIsNegativeCount(t *testing.T) {
	d := newDB(t)
	res, _ := InsertNodes(1).Values([]KeyValue{
		{Key: serialize.NewString("a"), Value: serialize.NewInt(1)},
		{Key: serialize.NewString("b"), Value: serialize.NewInt(2)},
	}).Query().ProcessMut(d)
	id := res.Elements[0].ID

	remRes, err := RemoveValues(serialize.NewString("a")).Ids(IDs(id)).ProcessMut(d)
	if err != nil {
		t.Fatalf("RemoveValues: %v", err)
	}
	if remRes.Result != -1 {
		t.Fatalf("RemoveValues result = %d, want -1", remRes.Result)
	}
}
