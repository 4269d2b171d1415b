// Package basis derives per-channel basis vectors for multi-channel encoding.
// The hdc encoder never generates basis vectors itself; callers pick them
// here (or anywhere else) and pass them in.
package basis

import (
	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"

	"github.com/Amansingh-afk/nanoedge/hdc"
)

// Seed returns the random seed for a named channel within a namespace seed.
// The same (name, namespace) pair always maps to the same seed.
func Seed(name string, namespace uint64) uint64 {
	h := murmur3.New64()
	h.Write([]byte(name))
	return h.Sum64() ^ namespace
}

// ForChannel returns the basis vector for one named channel.
func ForChannel(name string, namespace uint64) hdc.Vector {
	return hdc.Random(Seed(name, namespace))
}

// ForChannels returns one basis vector per channel name, in order.
func ForChannels(names []string, namespace uint64) []hdc.Vector {
	out := make([]hdc.Vector, len(names))
	for i, name := range names {
		out[i] = ForChannel(name, namespace)
	}
	return out
}

// Check verifies that every pair of basis vectors is at least minDistance
// bits apart. Random vectors sit near hdc.Dims/2, so a pair far below that is
// a seed collision or a duplicated channel.
func Check(vecs []hdc.Vector, minDistance int) error {
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			if d := hdc.Hamming(vecs[i], vecs[j]); d < minDistance {
				return errors.Errorf("basis vectors %d and %d are %d bits apart, want at least %d",
					i, j, d, minDistance)
			}
		}
	}
	return nil
}
