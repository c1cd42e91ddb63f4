// Package dictionary implements the content-addressed value store
// described in spec.md §4.3: hash(value) -> {value, refcount}, with a
// multi-map collision index keyed by the stable hash. Grounded on
// original_source/crates/dictionary/src/{dictionary,dictionary_value,
// dictionary_index}.rs.
package dictionary

import (
	"encoding/binary"
	"errors"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/serialize"
	"github.com/jpl-au/agdb/storage"
)

func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

// ErrNotFound is returned when a valueIndex has no live entry.
var ErrNotFound = errors.New("dictionary: value not found")

// refcountHeaderSize is the [refcount:u64][hash:u64] prefix stored ahead
// of every value's encoded bytes in its own storage record.
const refcountHeaderSize = 16

// Dictionary is a value store where each distinct Value is stored once
// and reference-counted. Values are deduplicated by their stable hash,
// with a bloom filter accelerating the common "definitely new" case
// before walking the hash's collision chain.
type Dictionary struct {
	s     *storage.Storage
	alg   collection.Algorithm
	index *collection.MultiMap[uint64, storage.Index] // hash -> candidate value index
	bloom *bloom
}

// New creates a fresh, empty dictionary.
func New(s *storage.Storage, alg collection.Algorithm) (*Dictionary, error) {
	idx, err := collection.NewMultiMap[uint64, storage.Index](s, alg, collection.Uint64Codec, collection.IndexCodec)
	if err != nil {
		return nil, err
	}
	return &Dictionary{s: s, alg: alg, index: idx, bloom: newBloom()}, nil
}

// Open attaches to a dictionary previously created at collisionIndex,
// rebuilding the bloom filter from the storage it already owns (per
// SPEC_FULL §4.3: "rebuilt on Open").
func Open(s *storage.Storage, collisionIndex storage.Index, alg collection.Algorithm) (*Dictionary, error) {
	d := &Dictionary{
		s:     s,
		alg:   alg,
		index: collection.OpenMultiMap[uint64, storage.Index](s, collisionIndex, alg, collection.Uint64Codec, collection.IndexCodec),
		bloom: newBloom(),
	}
	hashes, err := d.index.Keys()
	if err != nil {
		return nil, err
	}
	for _, h := range hashes {
		d.bloom.add(h)
	}
	return d, nil
}

// Index returns the storage index of the hash-collision multi-map, so
// the owning DB facade can persist it in the root record.
func (d *Dictionary) Index() storage.Index { return d.index.Index() }

func (d *Dictionary) hashOf(v serialize.Value) uint64 {
	return collection.StableHash(d.alg, v.HashBytes())
}

// Insert stores v, returning its stable valueIndex. If an equal value is
// already present its refcount is incremented and its existing index
// returned instead of allocating a new slot.
func (d *Dictionary) Insert(v serialize.Value) (storage.Index, error) {
	h := d.hashOf(v)
	if d.bloom.contains(h) {
		candidates, err := d.index.Values(h)
		if err != nil {
			return 0, err
		}
		for _, idx := range candidates {
			existing, refcount, _, err := d.readEntry(idx)
			if err != nil {
				return 0, err
			}
			if existing.Equal(v) {
				if err := d.writeRefcount(idx, refcount+1); err != nil {
					return 0, err
				}
				return idx, nil
			}
		}
	}

	payload := v.Encode()
	buf := make([]byte, refcountHeaderSize+len(payload))
	putUint64(buf[0:8], 1)
	putUint64(buf[8:16], h)
	copy(buf[refcountHeaderSize:], payload)
	idx, err := d.s.Insert(buf)
	if err != nil {
		return 0, err
	}
	if err := d.index.Insert(h, idx); err != nil {
		return 0, err
	}
	d.bloom.add(h)
	return idx, nil
}

// Find looks up v without affecting its reference count, reporting
// whether an equal value is already stored. Used for read-only
// resolution (alias lookup, condition evaluation) where inserting would
// wrongly bump the refcount.
func (d *Dictionary) Find(v serialize.Value) (storage.Index, bool, error) {
	h := d.hashOf(v)
	if !d.bloom.contains(h) {
		return 0, false, nil
	}
	candidates, err := d.index.Values(h)
	if err != nil {
		return 0, false, err
	}
	for _, idx := range candidates {
		existing, _, _, err := d.readEntry(idx)
		if err != nil {
			return 0, false, err
		}
		if existing.Equal(v) {
			return idx, true, nil
		}
	}
	return 0, false, nil
}

// Remove decrements valueIndex's refcount, freeing the slot and its
// collision-index entry once it reaches zero.
func (d *Dictionary) Remove(valueIndex storage.Index) error {
	v, refcount, h, err := d.readEntry(valueIndex)
	if err != nil {
		return err
	}
	if refcount > 1 {
		return d.writeRefcount(valueIndex, refcount-1)
	}
	if err := d.index.RemoveValue(h, valueIndex); err != nil {
		return err
	}
	_ = v
	return d.s.Remove(valueIndex)
}

// Value returns the value stored at valueIndex.
func (d *Dictionary) Value(valueIndex storage.Index) (serialize.Value, error) {
	v, _, _, err := d.readEntry(valueIndex)
	return v, err
}

// Count returns valueIndex's current reference count.
func (d *Dictionary) Count(valueIndex storage.Index) (uint64, error) {
	_, refcount, _, err := d.readEntry(valueIndex)
	return refcount, err
}

// Hash returns the stable hash stored alongside valueIndex.
func (d *Dictionary) Hash(valueIndex storage.Index) (uint64, error) {
	_, _, h, err := d.readEntry(valueIndex)
	return h, err
}

func (d *Dictionary) readEntry(valueIndex storage.Index) (serialize.Value, uint64, uint64, error) {
	buf, err := d.s.Value(valueIndex)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return serialize.Value{}, 0, 0, ErrNotFound
		}
		return serialize.Value{}, 0, 0, err
	}
	if len(buf) < refcountHeaderSize {
		return serialize.Value{}, 0, 0, ErrNotFound
	}
	refcount := getUint64(buf[0:8])
	h := getUint64(buf[8:16])
	var v serialize.Value
	if _, err := v.Decode(buf[refcountHeaderSize:]); err != nil {
		return serialize.Value{}, 0, 0, err
	}
	return v, refcount, h, nil
}

func (d *Dictionary) writeRefcount(valueIndex storage.Index, refcount uint64) error {
	buf := make([]byte, 8)
	putUint64(buf, refcount)
	return d.s.InsertAt(valueIndex, 0, buf)
}
