package collection

import "github.com/jpl-au/agdb/storage"

// vectorHeaderSize is the [length:u64] prefix before a vector's slots.
const vectorHeaderSize = 8

// Vector is a dynamic array of fixed-width elements backed by a single
// storage record: [length][slot0][slot1]..., capacity doubling on
// overflow via ResizeValue. Grounded on spec.md §4.2.
type Vector[T any] struct {
	s      *storage.Storage
	index  storage.Index
	codec  FixedCodec[T]
	length uint64
}

// NewVector allocates a fresh, empty vector.
func NewVector[T any](s *storage.Storage, codec FixedCodec[T]) (*Vector[T], error) {
	idx, err := s.Insert(make([]byte, vectorHeaderSize))
	if err != nil {
		return nil, err
	}
	return &Vector[T]{s: s, index: idx, codec: codec}, nil
}

// OpenVector attaches to a vector previously created at index.
func OpenVector[T any](s *storage.Storage, index storage.Index, codec FixedCodec[T]) (*Vector[T], error) {
	buf, err := s.ValueAt(index, 0, vectorHeaderSize)
	if err != nil {
		return nil, err
	}
	return &Vector[T]{s: s, index: index, codec: codec, length: getUint64(buf)}, nil
}

// Index returns the storage index backing this vector.
func (v *Vector[T]) Index() storage.Index { return v.index }

// Len returns the number of live elements.
func (v *Vector[T]) Len() uint64 { return v.length }

func (v *Vector[T]) capacity() (uint64, error) {
	size, err := v.s.ValueSize(v.index)
	if err != nil {
		return 0, err
	}
	return (size - vectorHeaderSize) / uint64(v.codec.Size), nil
}

func (v *Vector[T]) slotOffset(i uint64) int64 {
	return vectorHeaderSize + int64(i)*int64(v.codec.Size)
}

// At returns the element at i.
func (v *Vector[T]) At(i uint64) (T, error) {
	var zero T
	if i >= v.length {
		return zero, storage.ErrOutOfBounds
	}
	buf, err := v.s.ValueAt(v.index, v.slotOffset(i), int64(v.codec.Size))
	if err != nil {
		return zero, err
	}
	return v.codec.Decode(buf), nil
}

// Set overwrites the element at i.
func (v *Vector[T]) Set(i uint64, val T) error {
	if i >= v.length {
		return storage.ErrOutOfBounds
	}
	return v.s.InsertAt(v.index, v.slotOffset(i), v.codec.Encode(val))
}

func (v *Vector[T]) writeLength(n uint64) error {
	return v.s.InsertAt(v.index, 0, leUint64(n))
}

// Push appends val, doubling the record's capacity first if needed.
func (v *Vector[T]) Push(val T) error {
	cap, err := v.capacity()
	if err != nil {
		return err
	}
	if v.length == cap {
		newCap := cap * 2
		if newCap == 0 {
			newCap = 1
		}
		if err := v.s.ResizeValue(v.index, vectorHeaderSize+newCap*uint64(v.codec.Size)); err != nil {
			return err
		}
	}
	if err := v.s.InsertAt(v.index, v.slotOffset(v.length), v.codec.Encode(val)); err != nil {
		return err
	}
	v.length++
	return v.writeLength(v.length)
}

// Pop removes and returns the last element.
func (v *Vector[T]) Pop() (T, error) {
	var zero T
	if v.length == 0 {
		return zero, storage.ErrOutOfBounds
	}
	val, err := v.At(v.length - 1)
	if err != nil {
		return zero, err
	}
	v.length--
	return val, v.writeLength(v.length)
}

// Remove deletes the element at i, shifting later elements down by one
// slot to keep the vector dense.
func (v *Vector[T]) Remove(i uint64) error {
	if i >= v.length {
		return storage.ErrOutOfBounds
	}
	tailCount := v.length - i - 1
	if tailCount > 0 {
		if err := v.s.MoveAt(v.index, v.slotOffset(i+1), v.slotOffset(i), int64(tailCount)*int64(v.codec.Size)); err != nil {
			return err
		}
	}
	v.length--
	return v.writeLength(v.length)
}

// Shrink resizes the backing record's capacity down to exactly Len(),
// releasing any doubled-but-unused tail space.
func (v *Vector[T]) Shrink() error {
	return v.s.ResizeValue(v.index, vectorHeaderSize+v.length*uint64(v.codec.Size))
}
