package hdc

// ADCMax is the full-scale reading of a 10-bit analog sample.
const ADCMax = 1023

// Encoder converts a set of channel readings to a hypervector.
type Encoder interface {
	Encode(values []uint16) Vector
}

// EncodeThermometer maps value onto a vector whose first level bits are set,
// where level = floor(value*Dims/max). Values at or above max set every bit.
// Close readings produce vectors a few bits apart, unlike plain binary
// coding where 011 -> 100 flips every bit.
// Panics if max is zero.
func EncodeThermometer(value, max uint16) Vector {
	if max == 0 {
		panic("hdc: max value must be positive")
	}
	if value >= max {
		return Ones()
	}

	// Widened so value*Dims cannot overflow; level is in [0, Dims-1].
	level := int(uint32(value) * Dims / uint32(max))

	var v Vector
	full := level / 8
	for i := 0; i < full; i++ {
		v[i] = 0xFF
	}
	if rem := uint(level % 8); rem > 0 {
		v[full] = byte(1<<rem) - 1
	}
	return v
}

// EncodeADC thermometer-encodes a 10-bit analog sample.
func EncodeADC(value uint16) Vector {
	return EncodeThermometer(value, ADCMax)
}

// EncodeBounded encodes a signed reading within [min, max] by shifting it to
// [0, max-min]. Readings below min encode as the zero vector; readings at or
// above max saturate.
// Panics if max <= min.
func EncodeBounded(value, min, max int16) Vector {
	if max <= min {
		panic("hdc: bounded range requires max > min")
	}
	span := int32(max) - int32(min) // at most 65535
	shifted := int32(value) - int32(min)
	if shifted < 0 {
		shifted = 0
	}
	return EncodeThermometer(uint16(shifted), uint16(span))
}

// EncodeChannels thermometer-encodes each reading, binds it with the
// channel's basis vector and bundles the results. The result does not depend
// on channel order. Once bundled, the contribution of individual channels
// cannot be recovered; distinct, dissimilar basis vectors keep the composite
// discriminative.
// Panics if len(values) != len(basis) or max is zero.
func EncodeChannels(values []uint16, basis []Vector, max uint16) Vector {
	if len(values) != len(basis) {
		panic("hdc: one basis vector per channel is required")
	}
	if max == 0 {
		panic("hdc: max value must be positive")
	}
	var out Vector
	for k, value := range values {
		out.Bundle(Bind(EncodeThermometer(value, max), basis[k]))
	}
	return out
}

// Sequence binds frames by position: ρ⁰(f₀) XOR ρ¹(f₁) XOR … where ρⁱ rotates
// by i bits. Rotating each frame by its index makes "a then b" differ from
// "b then a". An empty sequence is the zero vector.
func Sequence(frames ...Vector) Vector {
	var out Vector
	for i, f := range frames {
		f.Permute(i)
		out = Bind(out, f)
	}
	return out
}

// ChannelEncoder implements Encoder for a fixed set of channels sharing one
// reading range. It is safe for concurrent use.
type ChannelEncoder struct {
	basis []Vector
	max   uint16
}

// NewChannelEncoder creates a ChannelEncoder. The basis slice is copied.
// Panics if basis is empty or max is zero.
func NewChannelEncoder(basis []Vector, max uint16) *ChannelEncoder {
	switch {
	case len(basis) == 0:
		panic("hdc: ChannelEncoder needs at least one basis vector")
	case max == 0:
		panic("hdc: max value must be positive")
	}
	b := make([]Vector, len(basis))
	copy(b, basis)
	return &ChannelEncoder{basis: b, max: max}
}

// Channels returns the number of channels the encoder expects.
func (e *ChannelEncoder) Channels() int { return len(e.basis) }

// Max returns the reading range bound.
func (e *ChannelEncoder) Max() uint16 { return e.max }

// Encode returns the combined hypervector for one reading per channel.
// Panics if len(values) != Channels().
func (e *ChannelEncoder) Encode(values []uint16) Vector {
	return EncodeChannels(values, e.basis, e.max)
}
