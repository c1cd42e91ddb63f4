// Package collection implements the hash map, hash multi-map and dynamic
// vector layered over storage.Storage, plus the stable hash function they
// (and the dictionary) share.
package collection

import (
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm selects the stable hash function used across collections and
// the dictionary. Mirrors the teacher's Config.HashAlgorithm, generalized
// from hashing string labels to hashing arbitrary serialized Values.
type Algorithm int

const (
	// AlgXXHash3 is the default: fast and well distributed.
	AlgXXHash3 Algorithm = iota
	// AlgFNV1a has no external dependency.
	AlgFNV1a
	// AlgBlake2b gives the best distribution at a speed cost.
	AlgBlake2b
)

// StableHash returns a deterministic 64-bit hash of b. It is "stable" in
// the spec.md sense: process-independent and portable across builds, so
// on-disk hash-keyed structures (dictionary, hash map) remain valid after
// a restart or on a different machine.
func StableHash(alg Algorithm, b []byte) uint64 {
	switch alg {
	case AlgXXHash3:
		return xxh3.Hash(b)
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(b)
		return h.Sum64()
	case AlgBlake2b:
		sum := blake2b.Sum512(b)
		var v uint64
		for i := range 8 {
			v |= uint64(sum[i]) << (8 * i)
		}
		return v
	default:
		return xxh3.Hash(b)
	}
}
