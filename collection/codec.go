package collection

import (
	"encoding/binary"

	"github.com/jpl-au/agdb/storage"
)

// FixedCodec encodes and decodes a fixed-width value of type T. Vector
// slots and hash map key/value slots are all built from one of these, so
// their offsets within a storage record can be computed arithmetically
// instead of scanned.
type FixedCodec[T any] struct {
	Size   int
	Encode func(T) []byte
	Decode func([]byte) T
}

// Uint64Codec is the FixedCodec for a bare uint64, used for graph slot
// fields and dictionary indexes.
var Uint64Codec = FixedCodec[uint64]{
	Size: 8,
	Encode: func(v uint64) []byte {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v)
		return buf
	},
	Decode: func(b []byte) uint64 {
		return binary.LittleEndian.Uint64(b)
	},
}

// Int64Codec is the FixedCodec for a bare int64, used for graph and
// storage index fields that carry agdb's signed element-id convention.
var Int64Codec = FixedCodec[int64]{
	Size: 8,
	Encode: func(v int64) []byte {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v))
		return buf
	},
	Decode: func(b []byte) int64 {
		return int64(binary.LittleEndian.Uint64(b))
	},
}

// IndexCodec is the FixedCodec for a storage.Index, used by the
// dictionary's hash-to-index collision multi-map.
var IndexCodec = FixedCodec[storage.Index]{
	Size: 8,
	Encode: func(v storage.Index) []byte {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v))
		return buf
	},
	Decode: func(b []byte) storage.Index {
		return storage.Index(int64(binary.LittleEndian.Uint64(b)))
	},
}

func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

func leUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}
