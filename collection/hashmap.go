package collection

import "github.com/jpl-au/agdb/storage"

// HashMap is an open-addressing hash map over a single storage record,
// keyed by a fixed-width key. Insert replaces an existing key's value.
// Grounded on spec.md §4.2's hash map description and
// original_source/crates/map_common (MapValueState slot states).
type HashMap[K any, V any] struct {
	m *mapCommon[K, V]
}

// NewHashMap allocates a fresh, empty hash map using alg for key hashing.
func NewHashMap[K any, V any](s *storage.Storage, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) (*HashMap[K, V], error) {
	m, err := newMapCommon[K, V](s, alg, keyCodec, valCodec)
	if err != nil {
		return nil, err
	}
	return &HashMap[K, V]{m: m}, nil
}

// OpenHashMap attaches to a hash map previously created at index.
func OpenHashMap[K any, V any](s *storage.Storage, index storage.Index, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) *HashMap[K, V] {
	return &HashMap[K, V]{m: openMapCommon[K, V](s, index, alg, keyCodec, valCodec)}
}

// Index returns the storage index backing this map.
func (h *HashMap[K, V]) Index() storage.Index { return h.m.index }

// Count returns the number of live entries.
func (h *HashMap[K, V]) Count() (uint64, error) {
	count, _, err := h.m.header()
	return count, err
}

// Insert sets key to val, overwriting any existing value for key.
func (h *HashMap[K, V]) Insert(key K, val V) error {
	if err := h.m.maybeGrow(); err != nil {
		return err
	}
	count, capacity, err := h.m.header()
	if err != nil {
		return err
	}
	pos := h.m.hashOf(key) % capacity
	firstFree := int64(-1)
	for range capacity {
		state, existingKey, _, err := h.m.readSlot(pos)
		if err != nil {
			return err
		}
		switch state {
		case stateEmpty:
			place := pos
			if firstFree >= 0 {
				place = uint64(firstFree)
			}
			if err := h.m.writeSlot(place, stateValid, key, val); err != nil {
				return err
			}
			return h.m.setCount(count + 1)
		case stateDeleted:
			if firstFree < 0 {
				firstFree = int64(pos)
			}
		case stateValid:
			if h.m.keyEqual(existingKey, key) {
				return h.m.writeSlot(pos, stateValid, key, val)
			}
		}
		pos = (pos + 1) % capacity
	}
	return ErrNotFound
}

// Value looks up key, reporting whether it was found.
func (h *HashMap[K, V]) Value(key K) (V, bool, error) {
	var zero V
	_, capacity, err := h.m.header()
	if err != nil {
		return zero, false, err
	}
	pos := h.m.hashOf(key) % capacity
	for range capacity {
		state, existingKey, val, err := h.m.readSlot(pos)
		if err != nil {
			return zero, false, err
		}
		switch state {
		case stateEmpty:
			return zero, false, nil
		case stateValid:
			if h.m.keyEqual(existingKey, key) {
				return val, true, nil
			}
		}
		pos = (pos + 1) % capacity
	}
	return zero, false, nil
}

// Contains reports whether key is present.
func (h *HashMap[K, V]) Contains(key K) (bool, error) {
	_, ok, err := h.Value(key)
	return ok, err
}

// Remove deletes key, returning ErrNotFound if it was absent.
func (h *HashMap[K, V]) Remove(key K) error {
	count, capacity, err := h.m.header()
	if err != nil {
		return err
	}
	pos := h.m.hashOf(key) % capacity
	for range capacity {
		state, existingKey, _, err := h.m.readSlot(pos)
		if err != nil {
			return err
		}
		switch state {
		case stateEmpty:
			return ErrNotFound
		case stateValid:
			if h.m.keyEqual(existingKey, key) {
				if err := h.m.markDeleted(pos); err != nil {
					return err
				}
				return h.m.setCount(count - 1)
			}
		}
		pos = (pos + 1) % capacity
	}
	return ErrNotFound
}

// Keys returns every live key, in slot order.
func (h *HashMap[K, V]) Keys() ([]K, error) {
	_, capacity, err := h.m.header()
	if err != nil {
		return nil, err
	}
	var keys []K
	for pos := uint64(0); pos < capacity; pos++ {
		state, key, _, err := h.m.readSlot(pos)
		if err != nil {
			return nil, err
		}
		if state == stateValid {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
