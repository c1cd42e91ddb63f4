package db

import (
	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/dictionary"
	"github.com/jpl-au/agdb/storage"
)

// indexEntry pairs the dictionary index of an indexed value with the
// element that carries it, so an index lookup can re-read the exact
// value (to resolve hash collisions) without storing it twice.
type indexEntry struct {
	ValIdx storage.Index
	ID     int64
}

const indexEntrySize = 16

var indexEntryCodec = collection.FixedCodec[indexEntry]{
	Size: indexEntrySize,
	Encode: func(e indexEntry) []byte {
		buf := make([]byte, indexEntrySize)
		putI64(buf[0:8], int64(e.ValIdx))
		putI64(buf[8:16], e.ID)
		return buf
	},
	Decode: func(b []byte) indexEntry {
		return indexEntry{ValIdx: storage.Index(getI64(b[0:8])), ID: getI64(b[8:16])}
	},
}

// namedIndex is one secondary index maintained as Value -> set<ElementId>
// for a single property key, per spec.md §3/§4.6.
type namedIndex struct {
	key     Value
	byHash  *collection.MultiMap[uint64, indexEntry]
	dict    *dictionary.Dictionary
	alg     collection.Algorithm
}

func newNamedIndex(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm, key Value) (*namedIndex, error) {
	m, err := collection.NewMultiMap[uint64, indexEntry](s, alg, collection.Uint64Codec, indexEntryCodec)
	if err != nil {
		return nil, err
	}
	return &namedIndex{key: key, byHash: m, dict: dict, alg: alg}, nil
}

func openNamedIndex(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm, key Value, byHashIdx storage.Index) *namedIndex {
	return &namedIndex{
		key:    key,
		byHash: collection.OpenMultiMap[uint64, indexEntry](s, byHashIdx, alg, collection.Uint64Codec, indexEntryCodec),
		dict:   dict,
		alg:    alg,
	}
}

func (n *namedIndex) hashOf(v Value) uint64 { return collection.StableHash(n.alg, v.HashBytes()) }

// Add registers that id carries value (already present in the
// dictionary at valIdx) under this index's key.
func (n *namedIndex) Add(id ElementID, valIdx storage.Index, value Value) error {
	return n.byHash.Insert(n.hashOf(value), indexEntry{ValIdx: valIdx, ID: int64(id)})
}

// Remove unregisters id's (value) entry from this index.
func (n *namedIndex) Remove(id ElementID, value Value) error {
	h := n.hashOf(value)
	candidates, err := n.byHash.Values(h)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if c.ID == int64(id) {
			return n.byHash.RemoveValue(h, c)
		}
	}
	return nil
}

// Count returns the number of elements currently indexed.
func (n *namedIndex) Count() (uint64, error) { return n.byHash.Count() }

// Lookup returns every element id indexed under exactly value.
func (n *namedIndex) Lookup(value Value) ([]ElementID, error) {
	candidates, err := n.byHash.Values(n.hashOf(value))
	if err != nil {
		return nil, err
	}
	var out []ElementID
	for _, c := range candidates {
		v, err := n.dict.Value(c.ValIdx)
		if err != nil {
			return nil, err
		}
		if v.Equal(value) {
			out = append(out, ElementID(c.ID))
		}
	}
	return out, nil
}
