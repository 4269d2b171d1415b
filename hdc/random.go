package hdc

import (
	"encoding/binary"
	"math/rand"
)

// Random generates a deterministic pseudorandom Vector for the given seed.
// The same seed always produces the same vector. Vectors from different
// seeds are quasi-orthogonal with high probability (expected Hamming
// distance Dims/2).
func Random(seed uint64) Vector {
	var v Vector
	r := rand.New(rand.NewSource(int64(seed))) //nolint:gosec
	binary.LittleEndian.PutUint64(v[0:8], r.Uint64())
	binary.LittleEndian.PutUint64(v[8:16], r.Uint64())
	return v
}
