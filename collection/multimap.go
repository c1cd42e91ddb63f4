package collection

import "github.com/jpl-au/agdb/storage"

// MultiMap is an open-addressing hash multi-map over a single storage
// record: unlike HashMap, Insert never overwrites an existing key — it
// always places a new slot, so one key may map to many values. Grounded
// on spec.md §4.2 ("insert never replaces; values(key) returns all
// matching values in probe order") and
// original_source/crates/multi_map/src/multi_map.rs.
type MultiMap[K any, V any] struct {
	m *mapCommon[K, V]
}

// NewMultiMap allocates a fresh, empty multi-map using alg for key hashing.
func NewMultiMap[K any, V any](s *storage.Storage, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) (*MultiMap[K, V], error) {
	m, err := newMapCommon[K, V](s, alg, keyCodec, valCodec)
	if err != nil {
		return nil, err
	}
	return &MultiMap[K, V]{m: m}, nil
}

// OpenMultiMap attaches to a multi-map previously created at index.
func OpenMultiMap[K any, V any](s *storage.Storage, index storage.Index, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) *MultiMap[K, V] {
	return &MultiMap[K, V]{m: openMapCommon[K, V](s, index, alg, keyCodec, valCodec)}
}

// Index returns the storage index backing this multi-map.
func (mm *MultiMap[K, V]) Index() storage.Index { return mm.m.index }

// Count returns the number of live (key, value) slots.
func (mm *MultiMap[K, V]) Count() (uint64, error) {
	count, _, err := mm.m.header()
	return count, err
}

// Insert adds (key, val) as a new slot. It never replaces an existing
// entry, even if (key, val) is already present — callers that need
// dedup (the dictionary's collision index) check first with Values.
func (mm *MultiMap[K, V]) Insert(key K, val V) error {
	if err := mm.m.maybeGrow(); err != nil {
		return err
	}
	return mm.m.placeNoGrow(key, val)
}

// Values returns every value stored under key, in probe order (the order
// spec.md calls out as observable): starting at key's hash slot and
// walking forward, wrapping at capacity.
func (mm *MultiMap[K, V]) Values(key K) ([]V, error) {
	_, capacity, err := mm.m.header()
	if err != nil {
		return nil, err
	}
	if capacity == 0 {
		return nil, nil
	}
	pos := mm.m.hashOf(key) % capacity
	var out []V
	for range capacity {
		state, existingKey, val, err := mm.m.readSlot(pos)
		if err != nil {
			return nil, err
		}
		if state == stateEmpty {
			break
		}
		if state == stateValid && mm.m.keyEqual(existingKey, key) {
			out = append(out, val)
		}
		pos = (pos + 1) % capacity
	}
	return out, nil
}

// RemoveValue removes the first (key, val) slot found along key's probe
// sequence. Returns collection.ErrNotFound if no matching slot exists.
func (mm *MultiMap[K, V]) RemoveValue(key K, val V) error {
	count, capacity, err := mm.m.header()
	if err != nil {
		return err
	}
	if capacity == 0 {
		return ErrNotFound
	}
	pos := mm.m.hashOf(key) % capacity
	for range capacity {
		state, existingKey, existingVal, err := mm.m.readSlot(pos)
		if err != nil {
			return err
		}
		if state == stateEmpty {
			return ErrNotFound
		}
		if state == stateValid && mm.m.keyEqual(existingKey, key) && mm.m.valEqual(existingVal, val) {
			if err := mm.m.markDeleted(pos); err != nil {
				return err
			}
			return mm.m.setCount(count - 1)
		}
		pos = (pos + 1) % capacity
	}
	return ErrNotFound
}

// RemoveKey removes every slot stored under key.
func (mm *MultiMap[K, V]) RemoveKey(key K) error {
	values, err := mm.Values(key)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := mm.RemoveValue(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every distinct live key, in slot order (duplicates
// collapsed).
func (mm *MultiMap[K, V]) Keys() ([]K, error) {
	_, capacity, err := mm.m.header()
	if err != nil {
		return nil, err
	}
	var keys []K
	seen := func(k K) bool {
		for _, x := range keys {
			if mm.m.keyEqual(x, k) {
				return true
			}
		}
		return false
	}
	for pos := uint64(0); pos < capacity; pos++ {
		state, key, _, err := mm.m.readSlot(pos)
		if err != nil {
			return nil, err
		}
		if state == stateValid && !seen(key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
