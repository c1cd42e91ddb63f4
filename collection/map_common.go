package collection

import (
	"bytes"

	"github.com/jpl-au/agdb/storage"
)

type slotState byte

const (
	stateEmpty   slotState = 0
	stateValid   slotState = 1
	stateDeleted slotState = 2
)

// mapHeaderSize is the [count:u64][capacity:u64] prefix before slots.
const mapHeaderSize = 16

const initialMapCapacity = 8

// Rehash triggers once count/capacity would exceed 0.7, per spec.md §4.2.
const maxLoadNumerator = 7
const maxLoadDenominator = 10

// mapCommon is the open-addressing slot table shared by HashMap and
// MultiMap: one storage record holding [count][capacity][state|key|value]
// slots, linear-probed. Grounded on
// original_source/crates/map_common (MapCommon/MapValueState) and
// spec.md §4.2.
type mapCommon[K any, V any] struct {
	s        *storage.Storage
	index    storage.Index
	alg      Algorithm
	keyCodec FixedCodec[K]
	valCodec FixedCodec[V]
}

func (m *mapCommon[K, V]) slotSize() int {
	return 1 + m.keyCodec.Size + m.valCodec.Size
}

func newMapCommon[K any, V any](s *storage.Storage, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) (*mapCommon[K, V], error) {
	m := &mapCommon[K, V]{s: s, alg: alg, keyCodec: keyCodec, valCodec: valCodec}
	buf := make([]byte, mapHeaderSize+initialMapCapacity*m.slotSize())
	putUint64(buf[8:16], initialMapCapacity)
	idx, err := s.Insert(buf)
	if err != nil {
		return nil, err
	}
	m.index = idx
	return m, nil
}

func openMapCommon[K any, V any](s *storage.Storage, index storage.Index, alg Algorithm, keyCodec FixedCodec[K], valCodec FixedCodec[V]) *mapCommon[K, V] {
	return &mapCommon[K, V]{s: s, index: index, alg: alg, keyCodec: keyCodec, valCodec: valCodec}
}

func (m *mapCommon[K, V]) header() (count, capacity uint64, err error) {
	buf, err := m.s.ValueAt(m.index, 0, mapHeaderSize)
	if err != nil {
		return 0, 0, err
	}
	return getUint64(buf[0:8]), getUint64(buf[8:16]), nil
}

func (m *mapCommon[K, V]) setCount(count uint64) error {
	return m.s.InsertAt(m.index, 0, leUint64(count))
}

func (m *mapCommon[K, V]) slotOffset(pos uint64) int64 {
	return mapHeaderSize + int64(pos)*int64(m.slotSize())
}

func (m *mapCommon[K, V]) readSlot(pos uint64) (slotState, K, V, error) {
	var zeroK K
	var zeroV V
	buf, err := m.s.ValueAt(m.index, m.slotOffset(pos), int64(m.slotSize()))
	if err != nil {
		return stateEmpty, zeroK, zeroV, err
	}
	state := slotState(buf[0])
	key := m.keyCodec.Decode(buf[1 : 1+m.keyCodec.Size])
	val := m.valCodec.Decode(buf[1+m.keyCodec.Size:])
	return state, key, val, nil
}

func (m *mapCommon[K, V]) writeSlot(pos uint64, state slotState, key K, val V) error {
	buf := make([]byte, m.slotSize())
	buf[0] = byte(state)
	copy(buf[1:1+m.keyCodec.Size], m.keyCodec.Encode(key))
	copy(buf[1+m.keyCodec.Size:], m.valCodec.Encode(val))
	return m.s.InsertAt(m.index, m.slotOffset(pos), buf)
}

func (m *mapCommon[K, V]) markDeleted(pos uint64) error {
	return m.s.InsertAt(m.index, m.slotOffset(pos), []byte{byte(stateDeleted)})
}

func (m *mapCommon[K, V]) hashOf(key K) uint64 {
	return StableHash(m.alg, m.keyCodec.Encode(key))
}

func (m *mapCommon[K, V]) keyEqual(a, b K) bool {
	return bytes.Equal(m.keyCodec.Encode(a), m.keyCodec.Encode(b))
}

func (m *mapCommon[K, V]) valEqual(a, b V) bool {
	return bytes.Equal(m.valCodec.Encode(a), m.valCodec.Encode(b))
}

// maybeGrow doubles capacity and rehashes every valid slot if inserting
// one more entry would push the load factor past 0.7.
func (m *mapCommon[K, V]) maybeGrow() error {
	count, capacity, err := m.header()
	if err != nil {
		return err
	}
	if (count+1)*maxLoadDenominator > capacity*maxLoadNumerator {
		return m.grow()
	}
	return nil
}

func (m *mapCommon[K, V]) grow() error {
	count, oldCap, err := m.header()
	if err != nil {
		return err
	}
	oldIndex := m.index

	newCap := oldCap * 2
	if newCap == 0 {
		newCap = initialMapCapacity
	}
	buf := make([]byte, mapHeaderSize+int(newCap)*m.slotSize())
	putUint64(buf[8:16], newCap)
	newIndex, err := m.s.Insert(buf)
	if err != nil {
		return err
	}

	type kv struct {
		key K
		val V
	}
	entries := make([]kv, 0, count)
	for pos := uint64(0); pos < oldCap; pos++ {
		state, key, val, err := m.readSlot(pos)
		if err != nil {
			return err
		}
		if state == stateValid {
			entries = append(entries, kv{key, val})
		}
	}

	m.index = newIndex
	for _, e := range entries {
		if err := m.placeNoGrow(e.key, e.val); err != nil {
			return err
		}
	}
	return m.s.Remove(oldIndex)
}

// placeNoGrow inserts key/val at the first available slot in its probe
// sequence without checking the load factor (used by grow's reinsertion
// and MultiMap.Insert, which always places a new slot).
func (m *mapCommon[K, V]) placeNoGrow(key K, val V) error {
	count, capacity, err := m.header()
	if err != nil {
		return err
	}
	pos := m.hashOf(key) % capacity
	for range capacity {
		state, _, _, err := m.readSlot(pos)
		if err != nil {
			return err
		}
		if state != stateValid {
			if err := m.writeSlot(pos, stateValid, key, val); err != nil {
				return err
			}
			return m.setCount(count + 1)
		}
		pos = (pos + 1) % capacity
	}
	return ErrNotFound
}
