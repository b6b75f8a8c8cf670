package chip8

// randomSource is the deterministic pseudo-random generator behind the
// Cxnn instruction. It implements SplitMix64 (Steele, Lea, Flood 2014)
// with the algorithm spelled out in full: the exact output sequence is a
// consensus contract, so no platform or library generator may be
// substituted. The host seeds it with a block-derived value; the state is
// carried in snapshots.
type randomSource struct {
	state uint64
}

// next advances the generator and returns the next 64-bit output.
func (r *randomSource) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// nextByte returns the low byte of the next output.
func (r *randomSource) nextByte() uint8 {
	return uint8(r.next())
}
