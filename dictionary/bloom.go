package dictionary

import "hash/fnv"

// In-memory bloom filter accelerating Dictionary's negative lookups.
// Adapted from the teacher's sparse-region bloom filter (bloom.go),
// retuned from hashing string labels to hashing the uint64 stable hash
// of a Value. Sized for ~10k entries at 1% false positive rate. Rebuilt
// on Open; purely an optimization — false positives fall through to the
// real collision-chain walk, and the filter never produces false
// negatives.
const (
	bloomSize = 11982 // bytes, ~96k bits for 10k entries at 1% FP
	bloomK    = 7     // number of hash functions
)

type bloom struct {
	bits []byte
}

func newBloom() *bloom {
	return &bloom{bits: make([]byte, bloomSize)}
}

func (b *bloom) add(h uint64) {
	for _, pos := range bloomPositions(h) {
		b.bits[pos/8] |= 1 << (pos % 8)
	}
}

// contains returns true if h might be present, false if definitely absent.
func (b *bloom) contains(h uint64) bool {
	for _, pos := range bloomPositions(h) {
		if b.bits[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// bloomPositions returns bloomK bit positions using double hashing, the
// same FNV-64a/FNV-32a scheme the teacher's filter uses, seeded from the
// hash's byte representation instead of a string id.
func bloomPositions(h uint64) [bloomK]uint {
	buf := make([]byte, 8)
	for i := range 8 {
		buf[i] = byte(h >> (8 * i))
	}

	h64 := fnv.New64a()
	h64.Write(buf)
	a := h64.Sum64()

	h32 := fnv.New32a()
	h32.Write(buf)
	b := uint(h32.Sum32())

	nbits := uint(bloomSize * 8)
	var pos [bloomK]uint
	for i := range bloomK {
		pos[i] = (uint(a) + uint(i)*b) % nbits
	}
	return pos
}
