package serialize

import "hash/fnv"

// fnvSeed gives Value.Compare a stable (if arbitrary) total order for
// vector kinds that otherwise have no natural ordering beyond equality.
func fnvSeed(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}
