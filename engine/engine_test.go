// End-to-end scenarios from spec.md §8: insert-and-select with
// properties, cascading edge removal, alias uniqueness, index
// populate-then-query, transaction rollback and BFS ordering, all
// driven through the one public Engine surface.
package engine

import (
	"path/filepath"
	"testing"

	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/query"
	"github.com/jpl-au/agdb/serialize"
)

func openEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.agdb")
	e, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func kv(key string, val serialize.Value) query.KeyValue {
	return query.KeyValue{Key: serialize.NewString(key), Value: val}
}

func TestInsertAndSelectNodeWithProperties(t *testing.T) {
	e := openEngine(t)

	insert := query.InsertNodes(1).Values([]query.KeyValue{
		kv("name", serialize.NewString("Alice")),
		kv("age", serialize.NewInt(30)),
	}).Query()
	res, err := e.ExecMut(insert)
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	if res.Result != 1 {
		t.Fatalf("InsertNodes result = %d, want 1", res.Result)
	}
	id := res.Elements[0].ID

	sel := query.SelectValues(serialize.NewString("name"), serialize.NewString("age")).Ids(query.IDs(id))
	selRes, err := e.Exec(sel)
	if err != nil {
		t.Fatalf("SelectValues: %v", err)
	}
	if selRes.Result != 1 {
		t.Fatalf("SelectValues result = %d, want 1", selRes.Result)
	}
	elem := selRes.Elements[0]
	if elem.ID != id || len(elem.Values) != 2 {
		t.Fatalf("element = %+v, want id %d with 2 values", elem, id)
	}
	if elem.Values[0].Value.String != "Alice" || elem.Values[1].Value.Int != 30 {
		t.Fatalf("values = %+v, want Alice, 30", elem.Values)
	}
}

func TestEdgeRemovalByNodeRemoval(t *testing.T) {
	e := openEngine(t)

	nodesRes, err := e.ExecMut(query.InsertNodes(3).Query())
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	n1, n2, n3 := nodesRes.Elements[0].ID, nodesRes.Elements[1].ID, nodesRes.Elements[2].ID

	edgesRes, err := e.ExecMut(query.InsertEdges(query.IDs(n1, n2, n3)).To(query.IDs(n2, n3, n1)).Query())
	if err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	e1, e2, e3 := edgesRes.Elements[0].ID, edgesRes.Elements[1].ID, edgesRes.Elements[2].ID

	removeRes, err := e.ExecMut(query.Remove(query.IDs(n2)))
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removeRes.Result != -1 {
		t.Fatalf("Remove result = %d, want -1", removeRes.Result)
	}

	for _, edgeID := range []query.ElementID{e1, e2, e3} {
		_, err := e.Exec(query.Select(query.IDs(edgeID)))
		dbErr, ok := err.(*db.Error)
		if !ok || dbErr.Kind != db.KindIDNotFound {
			t.Errorf("Select(%d) after node removal = %v, want IdNotFound", edgeID, err)
		}
	}

	countRes, err := e.Exec(query.SelectNodeCount())
	if err != nil {
		t.Fatalf("SelectNodeCount: %v", err)
	}
	if countRes.Elements[0].Values[0].Value.UInt != 2 {
		t.Fatalf("node_count = %d, want 2", countRes.Elements[0].Values[0].Value.UInt)
	}
}

func TestAliasUniquenessAndLookup(t *testing.T) {
	e := openEngine(t)

	res, err := e.ExecMut(query.InsertNodes(2).Aliases("a", "b").Query())
	if err != nil {
		t.Fatalf("InsertNodes with aliases: %v", err)
	}
	n1, n2 := res.Elements[0].ID, res.Elements[1].ID

	selRes, err := e.Exec(query.Select(query.Aliases("a")))
	if err != nil {
		t.Fatalf("Select(alias a): %v", err)
	}
	if selRes.Elements[0].ID != n1 {
		t.Fatalf("Select(alias a) = %d, want %d", selRes.Elements[0].ID, n1)
	}

	_, err = e.ExecMut(query.InsertAliases("a").Ids(query.IDs(n2)))
	dbErr, ok := err.(*db.Error)
	if !ok || dbErr.Kind != db.KindAliasExists {
		t.Fatalf("rebinding alias a to n2 = %v, want AliasExists", err)
	}

	removeRes, err := e.ExecMut(query.RemoveAliases("a"))
	if err != nil {
		t.Fatalf("RemoveAliases: %v", err)
	}
	if removeRes.Result != -1 {
		t.Fatalf("RemoveAliases result = %d, want -1", removeRes.Result)
	}

	_, err = e.Exec(query.Select(query.Aliases("a")))
	dbErr, ok = err.(*db.Error)
	if !ok || dbErr.Kind != db.KindAliasNotFound {
		t.Fatalf("Select(alias a) after removal = %v, want AliasNotFound", err)
	}
}

func TestIndexPopulateThenQuery(t *testing.T) {
	e := openEngine(t)

	_, err := e.ExecMut(query.InsertNodes(3).Values(
		[]query.KeyValue{kv("username", serialize.NewString("u1"))},
		[]query.KeyValue{kv("username", serialize.NewString("u2"))},
		[]query.KeyValue{kv("username", serialize.NewString("u3"))},
	).Query())
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	idxRes, err := e.ExecMut(query.InsertIndex(serialize.NewString("username")))
	if err != nil {
		t.Fatalf("InsertIndex: %v", err)
	}
	if idxRes.Result != 3 {
		t.Fatalf("InsertIndex result = %d, want 3", idxRes.Result)
	}

	selRes, err := e.Exec(query.SelectIndexes())
	if err != nil {
		t.Fatalf("SelectIndexes: %v", err)
	}
	if len(selRes.Elements) != 1 || selRes.Elements[0].ID != 0 {
		t.Fatalf("SelectIndexes elements = %+v, want one synthetic id-0 element", selRes.Elements)
	}
	values := selRes.Elements[0].Values
	if len(values) != 1 || values[0].Key.String != "username" || values[0].Value.UInt != 3 {
		t.Fatalf("SelectIndexes values = %+v, want [(username, 3)]", values)
	}
}

func TestTransactionRollbackLeavesStateUnchanged(t *testing.T) {
	e := openEngine(t)
	if _, err := e.ExecMut(query.InsertNodes(2).Query()); err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	wantErr := &db.Error{Kind: db.KindInvalidQuery, Message: "err"}
	err := e.TransactionMut(func(d *db.DB) error {
		if _, err := d.InsertNode(); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("TransactionMut error = %v, want %v", err, wantErr)
	}

	countRes, err := e.Exec(query.SelectNodeCount())
	if err != nil {
		t.Fatalf("SelectNodeCount: %v", err)
	}
	if countRes.Elements[0].Values[0].Value.UInt != 2 {
		t.Fatalf("node_count after rollback = %d, want 2", countRes.Elements[0].Values[0].Value.UInt)
	}
}

func TestBFSOrderingEndToEnd(t *testing.T) {
	e := openEngine(t)

	nodesRes, err := e.ExecMut(query.InsertNodes(4).Query())
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	n1 := nodesRes.Elements[0].ID
	n2 := nodesRes.Elements[1].ID
	n3 := nodesRes.Elements[2].ID
	n4 := nodesRes.Elements[3].ID

	edgesRes, err := e.ExecMut(query.InsertEdges(query.IDs(n1, n1, n1)).To(query.IDs(n2, n3, n4)).Query())
	if err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	e1 := edgesRes.Elements[0].ID
	e2 := edgesRes.Elements[1].ID
	e3 := edgesRes.Elements[2].ID

	searchRes, err := e.Exec(query.Search().From(query.ID(n1)).Query())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []query.ElementID{n1, e3, e2, e1, n4, n3, n2}
	if len(searchRes.Elements) != len(want) {
		t.Fatalf("search ids = %+v, want %v", searchRes.Elements, want)
	}
	for i, w := range want {
		if searchRes.Elements[i].ID != w {
			t.Errorf("search.Elements[%d].ID = %d, want %d", i, searchRes.Elements[i].ID, w)
		}
	}
}

func TestReopenRestoresStateAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.agdb")
	e, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	res, err := e.ExecMut(query.InsertNodes(1).Aliases("root").Query())
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	id := res.Elements[0].ID
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	selRes, err := reopened.Exec(query.Select(query.Aliases("root")))
	if err != nil {
		t.Fatalf("Select after reopen: %v", err)
	}
	if selRes.Elements[0].ID != id {
		t.Fatalf("Select after reopen = %d, want %d", selRes.Elements[0].ID, id)
	}
}

func TestBackupAndRestore(t *testing.T) {
	e := openEngine(t)
	if _, err := e.ExecMut(query.InsertNodes(1).Aliases("keep").Query()); err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "backup.agdb")
	if err := e.Backup(backupPath, false); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	if _, err := e.ExecMut(query.InsertNodes(1).Aliases("extra").Query()); err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	if err := e.Restore(backupPath, false); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	countRes, err := e.Exec(query.SelectNodeCount())
	if err != nil {
		t.Fatalf("SelectNodeCount: %v", err)
	}
	if countRes.Elements[0].Values[0].Value.UInt != 1 {
		t.Fatalf("node_count after restore = %d, want 1", countRes.Elements[0].Values[0].Value.UInt)
	}
}
