package resound

// noiseState is a deterministic white noise source in [-1,1].
// Uses xorshift32 with the provided seed (seed 0 is mapped to state 1
// to avoid lockup).
type noiseState struct {
	state uint32
}

func newNoiseState(seed int) *noiseState {
	state := uint32(seed)
	if state == 0 {
		state = 1
	}
	return &noiseState{state: state}
}

func (n *noiseState) next() Smp {
	// xorshift32
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	u := float64(n.state) / float64(^uint32(0))
	return Smp(2*u - 1)
}
