package resound

import "math"

// computeDetuneRatios builds symmetric detune ratios around 1.0 using a spread in cents.
func computeDetuneRatios(voices int, cents float64) []float64 {
	if voices <= 1 {
		return []float64{1.0}
	}
	offsets := make([]float64, voices)
	spread := cents
	if spread < 0 {
		spread = 0
	}
	if voices == 2 {
		offsets[0] = -spread
		offsets[1] = spread
	} else {
		step := (2 * spread) / float64(voices-1)
		for i := range voices {
			offsets[i] = -spread + float64(i)*step
		}
	}
	ratios := make([]float64, voices)
	for i, c := range offsets {
		ratios[i] = math.Pow(2.0, c/1200.0)
	}
	return ratios
}

// computePans returns pan positions in [-spread, spread].
func computePans(voices int, spread float64) []float64 {
	if voices <= 1 || spread <= 0 {
		return []float64{0}
	}
	if spread > 1 {
		spread = 1
	}
	pans := make([]float64, voices)
	if voices == 2 {
		pans[0] = -spread
		pans[1] = spread
		return pans
	}
	step := 2 * spread / float64(voices-1)
	for i := range voices {
		pans[i] = -spread + float64(i)*step
	}
	return pans
}

// UnisonEvents expands a single event into a detuned, stereo-spread
// voice stack. detuneCents is the half-width of the detune range and
// spread the half-width of the pan range. Velocity is divided across
// the copies so the stack sums to roughly the original level.
func UnisonEvents(base Event, voices int, detuneCents, spread float64) []Event {
	if voices < 1 {
		voices = 1
	}
	ratios := computeDetuneRatios(voices, detuneCents)
	pans := computePans(voices, spread)
	norm := 1.0 / float64(voices)
	out := make([]Event, voices)
	for i := range voices {
		ev := base
		ev.Voice.Freq *= ratios[i]
		ev.Voice.Pan = pans[i%len(pans)]
		ev.Voice.Velocity *= norm
		out[i] = ev
	}
	return out
}
