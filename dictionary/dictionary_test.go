// Tests for the content-addressed value store: dedup via hash +
// refcount, collision chain lookup, and free-at-zero removal.
package dictionary

import (
	"path/filepath"
	"testing"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/serialize"
	"github.com/jpl-au/agdb/storage"
)

func openStorage(t *testing.T) *storage.Storage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.agdb")
	s, err := storage.Open(path, storage.Config{})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertNewValue(t *testing.T) {
	d, err := New(openStorage(t), collection.AlgXXHash3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	idx, err := d.Insert(serialize.NewString("alice"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, err := d.Value(idx)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.String != "alice" {
		t.Errorf("Value = %q, want alice", v.String)
	}
	count, _ := d.Count(idx)
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestInsertEqualValueDedupsAndBumpsRefcount(t *testing.T) {
	d, _ := New(openStorage(t), collection.AlgXXHash3)
	a, err := d.Insert(serialize.NewInt(42))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	b, err := d.Insert(serialize.NewInt(42))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if a != b {
		t.Fatalf("equal values got distinct indexes: %d != %d", a, b)
	}
	count, _ := d.Count(a)
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestRemoveDecrementsThenFreesAtZero(t *testing.T) {
	d, _ := New(openStorage(t), collection.AlgXXHash3)
	idx, _ := d.Insert(serialize.NewString("x"))
	_, _ = d.Insert(serialize.NewString("x"))

	if err := d.Remove(idx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	count, err := d.Count(idx)
	if err != nil || count != 1 {
		t.Fatalf("Count after one Remove = %d, %v; want 1, nil", count, err)
	}

	if err := d.Remove(idx); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := d.Value(idx); err != ErrNotFound {
		t.Errorf("Value after refcount hits zero = %v, want ErrNotFound", err)
	}
}

func TestFindDoesNotAffectRefcount(t *testing.T) {
	d, _ := New(openStorage(t), collection.AlgXXHash3)
	idx, _ := d.Insert(serialize.NewString("y"))

	found, ok, err := d.Find(serialize.NewString("y"))
	if err != nil || !ok || found != idx {
		t.Fatalf("Find = %d, %v, %v; want %d, true, nil", found, ok, err, idx)
	}
	count, _ := d.Count(idx)
	if count != 1 {
		t.Errorf("Count after Find = %d, want unchanged 1", count)
	}

	if _, ok, err := d.Find(serialize.NewString("missing")); err != nil || ok {
		t.Errorf("Find(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestDistinctValuesGetDistinctIndexes(t *testing.T) {
	d, _ := New(openStorage(t), collection.AlgXXHash3)
	a, _ := d.Insert(serialize.NewString("a"))
	b, _ := d.Insert(serialize.NewString("b"))
	if a == b {
		t.Errorf("distinct values share an index: %d", a)
	}
}

func TestOpenReattachesAndRebuildsBloom(t *testing.T) {
	s := openStorage(t)
	d, _ := New(s, collection.AlgXXHash3)
	idx, _ := d.Insert(serialize.NewString("persisted"))

	reopened, err := Open(s, d.Index(), collection.AlgXXHash3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	v, err := reopened.Value(idx)
	if err != nil || v.String != "persisted" {
		t.Fatalf("Value after reopen = %q, %v; want persisted, nil", v.String, err)
	}
	found, ok, err := reopened.Find(serialize.NewString("persisted"))
	if err != nil || !ok || found != idx {
		t.Errorf("Find after reopen = %d, %v, %v; want %d, true, nil", found, ok, err, idx)
	}
}
