// Tests for the hash map, hash multi-map and dynamic vector layered
// over storage.Storage, plus the shared stable hash function.
package collection

import (
	"path/filepath"
	"testing"

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

func TestStableHashDeterministic(t *testing.T) {
	for _, alg := range []Algorithm{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		a := StableHash(alg, []byte("hello"))
		b := StableHash(alg, []byte("hello"))
		if a != b {
			t.Errorf("alg %d: StableHash not deterministic: %d != %d", alg, a, b)
		}
		if StableHash(alg, []byte("hello")) == StableHash(alg, []byte("world")) {
			t.Errorf("alg %d: distinct inputs hashed to the same value", alg)
		}
	}
}

func TestHashMapInsertAndValue(t *testing.T) {
	s := openStorage(t)
	m, err := NewHashMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	if err != nil {
		t.Fatalf("NewHashMap: %v", err)
	}
	if err := m.Insert(1, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, ok, err := m.Value(1)
	if err != nil || !ok || v != 100 {
		t.Fatalf("Value(1) = %d, %v, %v; want 100, true, nil", v, ok, err)
	}
	if _, ok, _ := m.Value(2); ok {
		t.Errorf("Value(2) found, want absent")
	}
}

func TestHashMapInsertReplacesExistingKey(t *testing.T) {
	s := openStorage(t)
	m, _ := NewHashMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	_ = m.Insert(1, 100)
	_ = m.Insert(1, 200)
	v, ok, _ := m.Value(1)
	if !ok || v != 200 {
		t.Fatalf("Value(1) = %d, %v; want 200, true", v, ok)
	}
	count, _ := m.Count()
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestHashMapRemove(t *testing.T) {
	s := openStorage(t)
	m, _ := NewHashMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	_ = m.Insert(1, 100)
	if err := m.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := m.Value(1); ok {
		t.Errorf("Value(1) found after Remove")
	}
	if err := m.Remove(1); err != ErrNotFound {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestHashMapRehashOnLoadFactor(t *testing.T) {
	s := openStorage(t)
	m, _ := NewHashMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	for i := uint64(0); i < 100; i++ {
		if err := m.Insert(i, i*10); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	for i := uint64(0); i < 100; i++ {
		v, ok, err := m.Value(i)
		if err != nil || !ok || v != i*10 {
			t.Fatalf("Value(%d) = %d, %v after rehash growth, want %d, true", i, v, ok, i*10)
		}
	}
}

func TestMultiMapInsertNeverReplaces(t *testing.T) {
	s := openStorage(t)
	mm, err := NewMultiMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	if err != nil {
		t.Fatalf("NewMultiMap: %v", err)
	}
	_ = mm.Insert(1, 100)
	_ = mm.Insert(1, 200)
	values, err := mm.Values(1)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("Values(1) = %v, want 2 entries", values)
	}
}

func TestMultiMapRemoveValueRemovesFirstMatch(t *testing.T) {
	s := openStorage(t)
	mm, _ := NewMultiMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	_ = mm.Insert(1, 100)
	_ = mm.Insert(1, 100)
	if err := mm.RemoveValue(1, 100); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	values, _ := mm.Values(1)
	if len(values) != 1 {
		t.Fatalf("Values(1) after one RemoveValue = %v, want 1 remaining", values)
	}
}

func TestMultiMapRemoveKeyRemovesAll(t *testing.T) {
	s := openStorage(t)
	mm, _ := NewMultiMap[uint64, uint64](s, AlgXXHash3, Uint64Codec, Uint64Codec)
	_ = mm.Insert(1, 100)
	_ = mm.Insert(1, 200)
	_ = mm.Insert(2, 300)
	if err := mm.RemoveKey(1); err != nil {
		t.Fatalf("RemoveKey: %v", err)
	}
	values, _ := mm.Values(1)
	if len(values) != 0 {
		t.Errorf("Values(1) after RemoveKey = %v, want empty", values)
	}
	values, _ = mm.Values(2)
	if len(values) != 1 {
		t.Errorf("Values(2) = %v, want untouched single entry", values)
	}
}

func TestVectorPushAtAndLen(t *testing.T) {
	s := openStorage(t)
	v, err := NewVector[uint64](s, Uint64Codec)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	for i := uint64(0); i < 20; i++ {
		if err := v.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if v.Len() != 20 {
		t.Fatalf("Len = %d, want 20", v.Len())
	}
	for i := uint64(0); i < 20; i++ {
		got, err := v.At(i)
		if err != nil || got != i {
			t.Fatalf("At(%d) = %d, %v; want %d, nil", i, got, err, i)
		}
	}
}

func TestVectorRemoveShiftsTail(t *testing.T) {
	s := openStorage(t)
	v, _ := NewVector[uint64](s, Uint64Codec)
	for _, x := range []uint64{10, 20, 30, 40} {
		_ = v.Push(x)
	}
	if err := v.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("Len after Remove = %d, want 3", v.Len())
	}
	want := []uint64{10, 30, 40}
	for i, w := range want {
		got, _ := v.At(uint64(i))
		if got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestVectorPopAndOutOfBounds(t *testing.T) {
	s := openStorage(t)
	v, _ := NewVector[uint64](s, Uint64Codec)
	_ = v.Push(1)
	_ = v.Push(2)
	got, err := v.Pop()
	if err != nil || got != 2 {
		t.Fatalf("Pop = %d, %v; want 2, nil", got, err)
	}
	if v.Len() != 1 {
		t.Errorf("Len after Pop = %d, want 1", v.Len())
	}
	if _, err := v.At(5); err != storage.ErrOutOfBounds {
		t.Errorf("At(5) = %v, want ErrOutOfBounds", err)
	}
}

func TestVectorReopenPreservesContent(t *testing.T) {
	s := openStorage(t)
	v, _ := NewVector[uint64](s, Uint64Codec)
	_ = v.Push(7)
	_ = v.Push(8)
	idx := v.Index()

	reopened, err := OpenVector[uint64](s, idx, Uint64Codec)
	if err != nil {
		t.Fatalf("OpenVector: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("reopened Len = %d, want 2", reopened.Len())
	}
	got, _ := reopened.At(1)
	if got != 8 {
		t.Errorf("reopened At(1) = %d, want 8", got)
	}
}
