// Package hdc implements fixed-width Hyperdimensional Computing primitives.
// A Vector is a 128-bit binary hypervector stored as 16 bytes; bit i lives in
// byte i/8 at position i%8 (LSB first). All operations are bitwise, allocate
// nothing and cannot fail: the vector length is part of the type.
package hdc

import (
	"encoding/hex"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Dims is the number of bits in a hypervector.
	Dims = 128
	// Bytes is the storage size of a hypervector.
	Bytes = Dims / 8
)

// Vector is a 128-bit hypervector. The zero value is the all-zero vector.
// Pure operations take and return values; in-place operations use pointer
// receivers, so an output never aliases a read-only input.
type Vector [Bytes]byte

// Ones returns the all-ones vector.
func Ones() Vector {
	var v Vector
	v.Fill(0xFF)
	return v
}

// Popcount8 returns the number of set bits in b.
func Popcount8(b byte) int {
	return bits.OnesCount8(b)
}

// Popcount returns the number of set bits in v, in [0, Dims].
func (v Vector) Popcount() int {
	n := 0
	for _, b := range v {
		n += Popcount8(b)
	}
	return n
}

// Bind associates two vectors via XOR. The operation is its own inverse:
// Bind(Bind(a, b), b) == a.
func Bind(a, b Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Or returns the bitwise union of a and b.
func Or(a, b Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = a[i] | b[i]
	}
	return out
}

// And returns the bitwise intersection of a and b.
func And(a, b Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = a[i] & b[i]
	}
	return out
}

// Not returns the bitwise complement of v.
func Not(v Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = ^v[i]
	}
	return out
}

// Bundle ORs p into v. Bundling saturates: adding the same pattern twice has
// no further effect and the order of additions does not matter.
func (v *Vector) Bundle(p Vector) {
	for i := range v {
		v[i] |= p[i]
	}
}

// Hamming returns the number of differing bits between a and b, in [0, Dims].
func Hamming(a, b Vector) int {
	d := 0
	for i := range a {
		d += Popcount8(a[i] ^ b[i])
	}
	return d
}

// Similarity returns Dims - Hamming(a, b). Dims means identical, 0 means
// bitwise complements.
func Similarity(a, b Vector) int {
	return Dims - Hamming(a, b)
}

// Permute rotates v left by shift bit positions, modulo Dims: bit i moves to
// bit (i+shift) % Dims. Negative shifts rotate right.
// Rotation is what makes otherwise similar vectors quasi-orthogonal when
// encoding position; periodic patterns can still collide.
func (v *Vector) Permute(shift int) {
	s := shift % Dims
	if s < 0 {
		s += Dims
	}
	if s == 0 {
		return
	}

	byteShift := s / 8
	bitShift := uint(s % 8)

	var tmp Vector
	for i := 0; i < Bytes; i++ {
		dst := (i + byteShift) % Bytes
		if bitShift == 0 {
			tmp[dst] = v[i]
			continue
		}
		tmp[dst] |= v[i] << bitShift
		// carry the high bits into the next byte, wrapping last into first
		tmp[(dst+1)%Bytes] |= v[i] >> (8 - bitShift)
	}
	*v = tmp
}

// Clear sets every bit of v to 0.
func (v *Vector) Clear() {
	*v = Vector{}
}

// Fill sets every byte of v to b.
func (v *Vector) Fill(b byte) {
	for i := range v {
		v[i] = b
	}
}

// Copy copies src into dst. dst and src may be the same vector.
func Copy(dst, src *Vector) {
	*dst = *src
}

// Bit reports whether bit i is set. Panics if i is outside [0, Dims).
func (v Vector) Bit(i int) bool {
	return v[i>>3]&(1<<uint(i&7)) != 0
}

// SetBit sets or clears bit i. Panics if i is outside [0, Dims).
func (v *Vector) SetBit(i int, on bool) {
	if on {
		v[i>>3] |= 1 << uint(i&7)
	} else {
		v[i>>3] &^= 1 << uint(i&7)
	}
}

// String renders v as '0'/'1' characters, bit 0 first, grouped by byte.
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(Dims + Bytes - 1)
	for i := 0; i < Dims; i++ {
		if i > 0 && i%8 == 0 {
			b.WriteByte(' ')
		}
		if v.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Parse reads the String format back into a Vector. Spaces are ignored;
// exactly Dims '0'/'1' characters are required.
func Parse(s string) (Vector, error) {
	var v Vector
	n := 0
	for _, c := range s {
		switch c {
		case ' ':
			continue
		case '0', '1':
			if n >= Dims {
				return Vector{}, errors.Errorf("hdc: more than %d bits", Dims)
			}
			v.SetBit(n, c == '1')
			n++
		default:
			return Vector{}, errors.Errorf("hdc: invalid bit character %q", c)
		}
	}
	if n != Dims {
		return Vector{}, errors.Errorf("hdc: got %d bits, want %d", n, Dims)
	}
	return v, nil
}

// MarshalText encodes v as 32 lowercase hex characters, byte 0 first.
func (v Vector) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(Bytes))
	hex.Encode(out, v[:])
	return out, nil
}

// UnmarshalText decodes the MarshalText format.
func (v *Vector) UnmarshalText(text []byte) error {
	if len(text) != hex.EncodedLen(Bytes) {
		return errors.Errorf("hdc: hex vector must be %d characters, got %d",
			hex.EncodedLen(Bytes), len(text))
	}
	var tmp Vector
	if _, err := hex.Decode(tmp[:], text); err != nil {
		return errors.Wrap(err, "hdc: decode hex vector")
	}
	*v = tmp
	return nil
}

// FromBytes builds a Vector from exactly Bytes bytes.
func FromBytes(b []byte) (Vector, error) {
	var v Vector
	if len(b) != Bytes {
		return v, errors.Errorf("hdc: vector lengths don't match: %d vs %d", len(b), Bytes)
	}
	copy(v[:], b)
	return v, nil
}
