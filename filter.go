package resound

import (
	"fmt"
	"math"
)

// FilterMode selects which state-variable output is taken.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterLowPass
	FilterHighPass
	FilterBandPass
	FilterNotch
	FilterAllPass
)

func (m FilterMode) String() string {
	switch m {
	case FilterNone:
		return "none"
	case FilterLowPass:
		return "lowpass"
	case FilterHighPass:
		return "highpass"
	case FilterBandPass:
		return "bandpass"
	case FilterNotch:
		return "notch"
	case FilterAllPass:
		return "allpass"
	}
	return "unknown"
}

// FilterSlope selects 12 or 24 dB/oct.
type FilterSlope int

const (
	Slope12 FilterSlope = iota
	Slope24
)

// paramSmoothing is the one-pole coefficient used on cutoff and
// resonance to suppress zipper noise on automation (~1000 samples).
const paramSmoothing = 0.999

// stateResetLimit triggers the stability reset; carried over from the
// original filter and admittedly heuristic.
const stateResetLimit = 10.0

// FilterParams is the immutable configuration of a voice filter.
// Cutoff and Resonance are set points; the running filter smooths
// toward them, so mid-render readbacks would differ.
type FilterParams struct {
	Mode      FilterMode
	Slope     FilterSlope
	Cutoff    float64 // Hz
	Resonance float64 // [0,1)
}

// NewFilterParams validates and builds filter parameters.
func NewFilterParams(mode FilterMode, slope FilterSlope, cutoff, resonance float64) (FilterParams, error) {
	if !isFinite(cutoff) || cutoff <= 0 {
		return FilterParams{}, fmt.Errorf("%w: filter cutoff %v", ErrInvalidParameter, cutoff)
	}
	if !isFinite(resonance) || resonance < 0 || resonance >= 1 {
		return FilterParams{}, fmt.Errorf("%w: filter resonance %v outside [0,1)", ErrInvalidParameter, resonance)
	}
	return FilterParams{Mode: mode, Slope: slope, Cutoff: cutoff, Resonance: resonance}, nil
}

// svfStage holds the integrator state of one Chamberlin SVF stage.
type svfStage struct {
	low, high, band, notch Smp
}

// process runs one sample through the stage.
//
//	f = 2*sin(pi*cutoff/sr)
//	low += f*band
//	high = in - low - q*band
//	band += f*high
//	notch = high + low
func (s *svfStage) process(in Smp, f, q Smp, mode FilterMode) Smp {
	s.low += f * s.band
	s.high = in - s.low - q*s.band
	s.band += f * s.high
	s.notch = s.high + s.low

	// Stability reset: on runaway or non-finite state, zero the stage
	// and pass the input through for this sample.
	if math.Abs(s.low) > stateResetLimit ||
		!isFinite(s.low) || !isFinite(s.high) || !isFinite(s.band) {
		*s = svfStage{}
		return in
	}

	var out Smp
	switch mode {
	case FilterLowPass:
		out = s.low
	case FilterHighPass:
		out = s.high
	case FilterBandPass:
		out = s.band
	case FilterNotch:
		out = s.notch
	case FilterAllPass:
		out = s.notch - s.band
	default:
		out = in
	}
	return clamp(out, -2, 2)
}

// svfFilter is the running, stateful form of FilterParams. State is
// per-voice and never shared across concurrently rendering voices.
type svfFilter struct {
	params FilterParams

	// smoothed parameter state; starts at the set point so a new voice
	// has no smoothing transient.
	cutoff    Smp
	resonance Smp

	stage1 svfStage
	stage2 svfStage
	sr     float64
}

func newSVFFilter(params FilterParams, sampleRate float64) *svfFilter {
	return &svfFilter{
		params:    params,
		cutoff:    Smp(params.Cutoff),
		resonance: Smp(params.Resonance),
		sr:        sampleRate,
	}
}

// setTargets updates the set points the smoothers run toward; used by
// filter envelopes and LFO routes.
func (f *svfFilter) setTargets(cutoff, resonance float64) {
	f.params.Cutoff = clamp(cutoff, minCutoffHz, maxCutoffHz)
	f.params.Resonance = clamp(resonance, 0, 0.999)
}

func (f *svfFilter) process(in Smp) Smp {
	if f.params.Mode == FilterNone {
		return in
	}

	// One-pole smoothing toward the set points.
	f.cutoff = paramSmoothing*f.cutoff + (1-paramSmoothing)*Smp(f.params.Cutoff)
	f.resonance = paramSmoothing*f.resonance + (1-paramSmoothing)*Smp(f.params.Resonance)

	fc := 2 * math.Sin(math.Pi*clamp(f.cutoff/f.sr, 0, 0.25))
	q := 1 - f.resonance

	out := f.stage1.process(in, fc, q, f.params.Mode)
	if f.params.Slope == Slope24 {
		out = f.stage2.process(out, fc, q, f.params.Mode)
	}
	return out
}
