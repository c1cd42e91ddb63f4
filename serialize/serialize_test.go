// Round-trip and equality tests for the primitive codecs and the Value
// tagged union.
package serialize

import "testing"

func TestInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		got, err := DecodeInt64(EncodeInt64(v))
		if err != nil || got != v {
			t.Errorf("round trip %d = %d, %v", v, got, err)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 63} {
		got, err := DecodeUint64(EncodeUint64(v))
		if err != nil || got != v {
			t.Errorf("round trip %d = %d, %v", v, got, err)
		}
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	for _, v := range []float64{0, -0, 1.5, -1.5, 3.14159} {
		got, err := DecodeFloat64(EncodeFloat64(v))
		if err != nil || got != v {
			t.Errorf("round trip %v = %v, %v", v, got, err)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := []byte("hello, world")
	got, used, err := DecodeBytes(EncodeBytes(in))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if string(got) != string(in) {
		t.Errorf("got %q, want %q", got, in)
	}
	if used != 8+len(in) {
		t.Errorf("used = %d, want %d", used, 8+len(in))
	}
}

func TestDecodeOutOfBounds(t *testing.T) {
	if _, err := DecodeInt64([]byte{1, 2, 3}); err != ErrOutOfBounds {
		t.Errorf("DecodeInt64 short input = %v, want ErrOutOfBounds", err)
	}
	if _, _, err := DecodeBytes([]byte{1, 2, 3}); err != ErrOutOfBounds {
		t.Errorf("DecodeBytes short length prefix = %v, want ErrOutOfBounds", err)
	}
}

func valueRoundTrip(t *testing.T, v Value) {
	t.Helper()
	encoded := v.Encode()
	var got Value
	used, err := got.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode(%#v): %v", v, err)
	}
	if used != len(encoded) {
		t.Errorf("Decode consumed %d bytes, want %d", used, len(encoded))
	}
	if !got.Equal(v) {
		t.Errorf("round trip %#v -> %#v, not equal", v, got)
	}
}

func TestValueRoundTripAllKinds(t *testing.T) {
	cases := []Value{
		NewBytes([]byte{1, 2, 3}),
		NewInt(-42),
		NewUInt(42),
		NewFloat(3.5),
		NewString("agdb"),
		NewVecInt([]int64{1, -2, 3}),
		NewVecUInt([]uint64{1, 2, 3}),
		NewVecFloat([]float64{1.5, -2.5}),
		NewVecString([]string{"a", "b"}),
	}
	for _, v := range cases {
		valueRoundTrip(t, v)
	}
}

func TestValueEqualRejectsKindMismatch(t *testing.T) {
	if NewInt(1).Equal(NewUInt(1)) {
		t.Errorf("Int(1) should not equal UInt(1)")
	}
}

func TestValueFloatTotalOrdering(t *testing.T) {
	a := NewFloat(1.0)
	b := NewFloat(1.0)
	if !a.Equal(b) {
		t.Errorf("equal floats compared unequal")
	}
	if NewFloat(1.0).Compare(NewFloat(2.0)) >= 0 {
		t.Errorf("1.0 should compare less than 2.0")
	}
}

func TestValueContainsStringSubstring(t *testing.T) {
	v := NewString("hello world")
	if !v.Contains(NewString("world")) {
		t.Errorf("Contains(world) = false, want true")
	}
	if v.Contains(NewString("xyz")) {
		t.Errorf("Contains(xyz) = true, want false")
	}
}

func TestValueContainsVectorMembership(t *testing.T) {
	v := NewVecInt([]int64{1, 2, 3})
	if !v.Contains(NewInt(2)) {
		t.Errorf("Contains(2) = false, want true")
	}
	if v.Contains(NewInt(9)) {
		t.Errorf("Contains(9) = true, want false")
	}
}

func TestValueHashStableAcrossCalls(t *testing.T) {
	v := NewString("stable")
	a := fnvSeed(v.Encode())
	b := fnvSeed(v.Encode())
	if a != b {
		t.Errorf("fnvSeed not stable: %d != %d", a, b)
	}
}
