package noise

import "math/bits"

const (
	splitMixGamma = 0x9e3779b97f4a7c15
	splitMixMul1  = 0xbf58476d1ce4e5b9
	splitMixMul2  = 0x94d049bb133111eb
)

// Source is a xoshiro256++ generator seeded through SplitMix64.
//
// A given seed produces the same stream on every platform and Go release.
// Permutation tables, and so every rendered image, depend on the exact
// sequence.
type Source struct {
	s [4]uint64
}

// NewSource expands seed into the 256-bit generator state with four
// consecutive SplitMix64 outputs.
func NewSource(seed uint64) *Source {
	src := &Source{}
	state := seed
	for i := range src.s {
		state += splitMixGamma
		z := state
		z = (z ^ (z >> 30)) * splitMixMul1
		z = (z ^ (z >> 27)) * splitMixMul2
		src.s[i] = z ^ (z >> 31)
	}
	return src
}

// Uint64 returns the next 64 bits of the stream.
func (r *Source) Uint64() uint64 {
	s := &r.s
	result := bits.RotateLeft64(s[0]+s[3], 23) + s[0]
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Uint32 returns the upper half of the next 64-bit output; the low bits of
// xoshiro have weak linear dependencies.
func (r *Source) Uint32() uint32 {
	return uint32(r.Uint64() >> 32)
}

// Uint32n returns a uniformly distributed value in [0, n) using a widening
// multiply with rejection. n == 0 returns a raw 32-bit draw.
func (r *Source) Uint32n(n uint32) uint32 {
	if n == 0 {
		return r.Uint32()
	}
	zone := (n << bits.LeadingZeros32(n)) - 1
	for {
		hi, lo := bits.Mul32(r.Uint32(), n)
		if lo <= zone {
			return hi
		}
	}
}

// Shuffle permutes p in place with a top-down Fisher-Yates pass.
func (r *Source) Shuffle(p []uint8) {
	for i := len(p) - 1; i > 0; i-- {
		j := r.Uint32n(uint32(i + 1))
		p[i], p[j] = p[j], p[i]
	}
}
