package resound

import (
	"fmt"
	"math"
)

// FMParams configures two-operator FM: one sine modulator on a sine
// carrier. With ModIndex 0 the output is a pure sine at the carrier
// frequency.
type FMParams struct {
	ModRatio float64 // modulator freq = carrier * ratio, > 0
	ModIndex float64 // deviation depth, >= 0
	IndexEnv *Envelope
}

// NewFMParams validates and builds FM parameters.
func NewFMParams(modRatio, modIndex float64) (FMParams, error) {
	if !isFinite(modRatio) || modRatio <= 0 {
		return FMParams{}, fmt.Errorf("%w: fm mod ratio %v", ErrInvalidParameter, modRatio)
	}
	if !isFinite(modIndex) || modIndex < 0 {
		return FMParams{}, fmt.Errorf("%w: fm mod index %v", ErrInvalidParameter, modIndex)
	}
	return FMParams{ModRatio: modRatio, ModIndex: modIndex}, nil
}

// Sample evaluates the FM pair at time t for the given carrier
// frequency. The index envelope, when present, scales the modulation
// depth over the note.
func (fm FMParams) Sample(carrierFreq, t, noteDuration float64) Smp {
	idx := fm.ModIndex
	if fm.IndexEnv != nil {
		idx *= float64(fm.IndexEnv.Amp(t, noteDuration))
	}
	if idx == 0 {
		return Smp(math.Sin(2 * math.Pi * t * carrierFreq))
	}
	modFreq := carrierFreq * fm.ModRatio
	mod := math.Sin(2 * math.Pi * t * modFreq)
	return Smp(math.Sin(2 * math.Pi * t * (carrierFreq + mod*idx*modFreq)))
}

// Partial is one sinusoidal component of an additive voice.
type Partial struct {
	Ratio Smp // frequency multiplier relative to the voice, > 0
	Amp   Smp
	Phase Smp // phase offset in cycles
}

// NewPartial validates and builds a partial.
func NewPartial(ratio, amp, phase Smp) (Partial, error) {
	if !isFinite(float64(ratio)) || ratio <= 0 {
		return Partial{}, fmt.Errorf("%w: partial ratio %v", ErrInvalidParameter, ratio)
	}
	if !isFinite(float64(amp)) || !isFinite(float64(phase)) {
		return Partial{}, fmt.Errorf("%w: partial amp/phase must be finite", ErrInvalidParameter)
	}
	return Partial{Ratio: ratio, Amp: amp, Phase: phase}, nil
}

// additiveSample sums the partials at time t. The sum is divided by the
// partial count to keep the result inside [-1,1] for unit amplitudes.
func additiveSample(partials []Partial, freq, t float64) Smp {
	n := len(partials)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, p := range partials {
		sum += float64(p.Amp) * math.Sin(2*math.Pi*(t*freq*float64(p.Ratio)+float64(p.Phase)))
	}
	return Smp(sum / float64(n))
}
