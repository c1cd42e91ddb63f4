// Package serialize implements bit-exact little-endian encoding for the
// primitives and composite records the storage engine persists.
//
// Primitive encoders (int64, uint64, float64, string, []byte) are fixed
// here, and Value implements Codec on top of them. Fixed-width records
// such as graph slots and collection slots do not implement Codec; they
// are encoded through collection.FixedCodec.
package serialize

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Codec is the interface storage.InsertValue, ReadValue and ReplaceValue
// accept for writing a value to, or reading it from, a storage record.
type Codec interface {
	Encode() []byte
	Decode(bytes []byte) (int, error)
}

// ErrOutOfBounds is returned when a decode reads past the end of its input.
var ErrOutOfBounds = fmt.Errorf("serialize: out of bounds")

// EncodeInt64 encodes v as 8 little-endian bytes.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

// DecodeInt64 reads 8 little-endian bytes from the start of b.
func DecodeInt64(b []byte) (int64, error) {
	if len(b) < 8 {
		return 0, ErrOutOfBounds
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// EncodeUint64 encodes v as 8 little-endian bytes.
func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// DecodeUint64 reads 8 little-endian bytes from the start of b.
func DecodeUint64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, ErrOutOfBounds
	}
	return binary.LittleEndian.Uint64(b), nil
}

// EncodeFloat64 encodes v as its IEEE-754 bit pattern, little-endian.
func EncodeFloat64(v float64) []byte {
	return EncodeUint64(math.Float64bits(v))
}

// DecodeFloat64 reads a little-endian IEEE-754 bit pattern.
func DecodeFloat64(b []byte) (float64, error) {
	bits, err := DecodeUint64(b)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// EncodeBytes length-prefixes data with a uint64 byte count.
func EncodeBytes(data []byte) []byte {
	out := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint64(out, uint64(len(data)))
	copy(out[8:], data)
	return out
}

// DecodeBytes reads a length-prefixed byte slice and returns it along with
// the number of bytes consumed.
func DecodeBytes(b []byte) ([]byte, int, error) {
	if len(b) < 8 {
		return nil, 0, ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(b)
	end := 8 + int(n)
	if end < 8 || len(b) < end {
		return nil, 0, ErrOutOfBounds
	}
	out := make([]byte, n)
	copy(out, b[8:end])
	return out, end, nil
}

// EncodeString length-prefixes the UTF-8 bytes of s.
func EncodeString(s string) []byte {
	return EncodeBytes([]byte(s))
}

// DecodeString reads a length-prefixed string and the bytes consumed.
func DecodeString(b []byte) (string, int, error) {
	raw, n, err := DecodeBytes(b)
	if err != nil {
		return "", 0, err
	}
	return string(raw), n, nil
}

// EncodeInt64Slice length-prefixes a slice of int64 (element count, then
// 8 bytes per element).
func EncodeInt64Slice(v []int64) []byte {
	out := make([]byte, 8+8*len(v))
	binary.LittleEndian.PutUint64(out, uint64(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[8+8*i:], uint64(x))
	}
	return out
}

// DecodeInt64Slice reads a length-prefixed []int64 and the bytes consumed.
func DecodeInt64Slice(b []byte) ([]int64, int, error) {
	if len(b) < 8 {
		return nil, 0, ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(b)
	end := 8 + 8*int(n)
	if end < 8 || len(b) < end {
		return nil, 0, ErrOutOfBounds
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(b[8+8*i:]))
	}
	return out, end, nil
}

// EncodeUint64Slice length-prefixes a slice of uint64.
func EncodeUint64Slice(v []uint64) []byte {
	out := make([]byte, 8+8*len(v))
	binary.LittleEndian.PutUint64(out, uint64(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[8+8*i:], x)
	}
	return out
}

// DecodeUint64Slice reads a length-prefixed []uint64 and the bytes consumed.
func DecodeUint64Slice(b []byte) ([]uint64, int, error) {
	if len(b) < 8 {
		return nil, 0, ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(b)
	end := 8 + 8*int(n)
	if end < 8 || len(b) < end {
		return nil, 0, ErrOutOfBounds
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[8+8*i:])
	}
	return out, end, nil
}

// EncodeFloat64Slice length-prefixes a slice of float64.
func EncodeFloat64Slice(v []float64) []byte {
	out := make([]byte, 8+8*len(v))
	binary.LittleEndian.PutUint64(out, uint64(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[8+8*i:], math.Float64bits(x))
	}
	return out
}

// DecodeFloat64Slice reads a length-prefixed []float64 and the bytes consumed.
func DecodeFloat64Slice(b []byte) ([]float64, int, error) {
	if len(b) < 8 {
		return nil, 0, ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(b)
	end := 8 + 8*int(n)
	if end < 8 || len(b) < end {
		return nil, 0, ErrOutOfBounds
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8+8*i:]))
	}
	return out, end, nil
}

// EncodeStringSlice length-prefixes a slice of strings, each itself
// length-prefixed.
func EncodeStringSlice(v []string) []byte {
	out := EncodeUint64(uint64(len(v)))
	for _, s := range v {
		out = append(out, EncodeString(s)...)
	}
	return out
}

// DecodeStringSlice reads a length-prefixed []string and the bytes consumed.
func DecodeStringSlice(b []byte) ([]string, int, error) {
	if len(b) < 8 {
		return nil, 0, ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(b)
	pos := 8
	out := make([]string, 0, n)
	for range n {
		s, used, err := DecodeString(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
		pos += used
	}
	return out, pos, nil
}
