package serialize

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindBytes Kind = iota
	KindInt
	KindUInt
	KindFloat
	KindString
	KindVecInt
	KindVecUInt
	KindVecFloat
	KindVecString
)

// Value is a tagged union over the scalar and vector types the engine
// stores. Only the field matching Kind is meaningful.
type Value struct {
	Kind      Kind
	Bytes     []byte
	Int       int64
	UInt      uint64
	Float     float64
	String    string
	VecInt    []int64
	VecUInt   []uint64
	VecFloat  []float64
	VecString []string
}

func NewBytes(v []byte) Value       { return Value{Kind: KindBytes, Bytes: v} }
func NewInt(v int64) Value          { return Value{Kind: KindInt, Int: v} }
func NewUInt(v uint64) Value        { return Value{Kind: KindUInt, UInt: v} }
func NewFloat(v float64) Value      { return Value{Kind: KindFloat, Float: v} }
func NewString(v string) Value      { return Value{Kind: KindString, String: v} }
func NewVecInt(v []int64) Value     { return Value{Kind: KindVecInt, VecInt: v} }
func NewVecUInt(v []uint64) Value   { return Value{Kind: KindVecUInt, VecUInt: v} }
func NewVecFloat(v []float64) Value { return Value{Kind: KindVecFloat, VecFloat: v} }
func NewVecString(v []string) Value { return Value{Kind: KindVecString, VecString: v} }

// Encode serializes the value as a one-byte Kind tag followed by its
// variant-specific payload.
func (v Value) Encode() []byte {
	var payload []byte
	switch v.Kind {
	case KindBytes:
		payload = EncodeBytes(v.Bytes)
	case KindInt:
		payload = EncodeInt64(v.Int)
	case KindUInt:
		payload = EncodeUint64(v.UInt)
	case KindFloat:
		payload = EncodeFloat64(v.Float)
	case KindString:
		payload = EncodeString(v.String)
	case KindVecInt:
		payload = EncodeInt64Slice(v.VecInt)
	case KindVecUInt:
		payload = EncodeUint64Slice(v.VecUInt)
	case KindVecFloat:
		payload = EncodeFloat64Slice(v.VecFloat)
	case KindVecString:
		payload = EncodeStringSlice(v.VecString)
	}
	out := make([]byte, 0, 1+len(payload))
	out = append(out, byte(v.Kind))
	return append(out, payload...)
}

// Decode reads a Value starting at b[0] and returns the number of bytes
// consumed.
func (v *Value) Decode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, ErrOutOfBounds
	}
	kind := Kind(b[0])
	rest := b[1:]
	var used int
	var err error
	switch kind {
	case KindBytes:
		v.Bytes, used, err = DecodeBytes(rest)
	case KindInt:
		v.Int, err = DecodeInt64(rest)
		used = 8
	case KindUInt:
		v.UInt, err = DecodeUint64(rest)
		used = 8
	case KindFloat:
		v.Float, err = DecodeFloat64(rest)
		used = 8
	case KindString:
		v.String, used, err = DecodeString(rest)
	case KindVecInt:
		v.VecInt, used, err = DecodeInt64Slice(rest)
	case KindVecUInt:
		v.VecUInt, used, err = DecodeUint64Slice(rest)
	case KindVecFloat:
		v.VecFloat, used, err = DecodeFloat64Slice(rest)
	case KindVecString:
		v.VecString, used, err = DecodeStringSlice(rest)
	default:
		return 0, fmt.Errorf("serialize: unknown value kind %d", kind)
	}
	if err != nil {
		return 0, err
	}
	v.Kind = kind
	return 1 + used, nil
}

// Equal implements the canonical equality used by the dictionary's
// collision-chain comparison and by condition evaluation.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBytes:
		return string(v.Bytes) == string(other.Bytes)
	case KindInt:
		return v.Int == other.Int
	case KindUInt:
		return v.UInt == other.UInt
	case KindFloat:
		return floatTotalOrder(v.Float) == floatTotalOrder(other.Float)
	case KindString:
		return v.String == other.String
	case KindVecInt:
		return int64SliceEqual(v.VecInt, other.VecInt)
	case KindVecUInt:
		return uint64SliceEqual(v.VecUInt, other.VecUInt)
	case KindVecFloat:
		if len(v.VecFloat) != len(other.VecFloat) {
			return false
		}
		for i := range v.VecFloat {
			if floatTotalOrder(v.VecFloat[i]) != floatTotalOrder(other.VecFloat[i]) {
				return false
			}
		}
		return true
	case KindVecString:
		return stringSliceEqual(v.VecString, other.VecString)
	}
	return false
}

// HashBytes returns the encoding used for hash-bucket lookups: identical
// to Encode() except that float payloads are normalized through
// floatTotalOrder first, so that -0.0 and 0.0 (and any two NaNs) hash to
// the same bucket even though Encode() preserves their raw bit pattern
// for on-disk round-tripping. Equal() already treats them as equal;
// every hash computed for dictionary/index lookups must agree with that.
func (v Value) HashBytes() []byte {
	switch v.Kind {
	case KindFloat:
		out := make([]byte, 0, 9)
		out = append(out, byte(KindFloat))
		return append(out, EncodeUint64(floatTotalOrder(v.Float))...)
	case KindVecFloat:
		out := make([]byte, 0, 1+8+8*len(v.VecFloat))
		out = append(out, byte(KindVecFloat))
		out = append(out, EncodeUint64(uint64(len(v.VecFloat)))...)
		for _, f := range v.VecFloat {
			out = append(out, EncodeUint64(floatTotalOrder(f))...)
		}
		return out
	default:
		return v.Encode()
	}
}

// Compare provides the total order spec.md requires for Float (and, by
// extension, every Value kind) so that Values can serve as sorted-index
// and map keys. Cross-kind comparisons order by Kind first.
func (v Value) Compare(other Value) int {
	if v.Kind != other.Kind {
		return int(v.Kind) - int(other.Kind)
	}
	switch v.Kind {
	case KindBytes:
		return strings.Compare(string(v.Bytes), string(other.Bytes))
	case KindInt:
		return cmpInt64(v.Int, other.Int)
	case KindUInt:
		return cmpUint64(v.UInt, other.UInt)
	case KindFloat:
		return cmpUint64(floatTotalOrder(v.Float), floatTotalOrder(other.Float))
	case KindString:
		return strings.Compare(v.String, other.String)
	default:
		// Vector kinds have no natural total order beyond equality; callers
		// needing a stable order should sort by hash instead.
		if v.Equal(other) {
			return 0
		}
		ah, bh := fnvSeed(v.Encode()), fnvSeed(other.Encode())
		return cmpUint64(ah, bh)
	}
}

// Contains implements the Contains comparison from spec.md's condition
// DSL: substring containment for strings, membership for vector values.
// This resolves spec.md's Open Question by following its own suggested
// reading verbatim.
func (v Value) Contains(needle Value) bool {
	switch v.Kind {
	case KindString:
		return needle.Kind == KindString && strings.Contains(v.String, needle.String)
	case KindVecInt:
		if needle.Kind != KindInt {
			return false
		}
		for _, x := range v.VecInt {
			if x == needle.Int {
				return true
			}
		}
	case KindVecUInt:
		if needle.Kind != KindUInt {
			return false
		}
		for _, x := range v.VecUInt {
			if x == needle.UInt {
				return true
			}
		}
	case KindVecFloat:
		if needle.Kind != KindFloat {
			return false
		}
		for _, x := range v.VecFloat {
			if floatTotalOrder(x) == floatTotalOrder(needle.Float) {
				return true
			}
		}
	case KindVecString:
		if needle.Kind != KindString {
			return false
		}
		for _, x := range v.VecString {
			if x == needle.String {
				return true
			}
		}
	case KindBytes:
		return needle.Kind == KindBytes && strings.Contains(string(v.Bytes), string(needle.Bytes))
	}
	return false
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// floatTotalOrder maps a float64 to a uint64 such that the natural order
// of the uint64 matches IEEE total order: NaN sorts after all other
// values, and -0.0 collapses to the same key as +0.0.
func floatTotalOrder(f float64) uint64 {
	if math.IsNaN(f) {
		return math.MaxUint64
	}
	if f == 0 {
		f = 0 // normalize -0.0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uint64SliceEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
