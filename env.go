package resound

import (
	"fmt"
	"math"
)

// minEnvSegment is the shortest permitted attack/decay/release.
const minEnvSegment = 0.001

// Envelope is a stateless ADSR shape. The level at any time is a pure
// function of the parameters, the time and the note duration, so
// evaluation is sample-accurate regardless of past calls.
type Envelope struct {
	Attack  float64 // seconds, >= 0.001
	Decay   float64 // seconds, >= 0.001
	Sustain float64 // level in [0,1]
	Release float64 // seconds, >= 0.001
}

// NewEnvelope validates and builds an ADSR envelope.
func NewEnvelope(attack, decay, sustain, release float64) (Envelope, error) {
	e := Envelope{Attack: attack, Decay: decay, Sustain: sustain, Release: release}
	if err := e.validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// DefaultEnvelope is a gentle general-purpose ADSR.
func DefaultEnvelope() Envelope {
	return Envelope{Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: 0.1}
}

func (e Envelope) validate() error {
	for _, seg := range []struct {
		name  string
		value float64
	}{{"attack", e.Attack}, {"decay", e.Decay}, {"release", e.Release}} {
		if !isFinite(seg.value) || seg.value < minEnvSegment {
			return fmt.Errorf("%w: envelope %s %v (min %v)", ErrInvalidParameter, seg.name, seg.value, minEnvSegment)
		}
	}
	if !isFinite(e.Sustain) || e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("%w: envelope sustain %v outside [0,1]", ErrInvalidParameter, e.Sustain)
	}
	return nil
}

// Amp evaluates the envelope at time t for a note held noteDuration
// seconds. Piecewise linear: 0->1 over attack, 1->sustain over decay,
// held at sustain until noteDuration, sustain->0 over release. Total
// audible duration is noteDuration + release.
func (e Envelope) Amp(t, noteDuration float64) Smp {
	if t < 0 {
		return 0
	}
	if t < e.Attack {
		return Smp(t / e.Attack)
	}
	if t < e.Attack+e.Decay {
		x := (t - e.Attack) / e.Decay
		return Smp(1 + (e.Sustain-1)*x)
	}
	if t < noteDuration {
		return Smp(e.Sustain)
	}
	rel := t - noteDuration
	if rel < e.Release {
		return Smp(e.Sustain * (1 - rel/e.Release))
	}
	return 0
}

// Tail is the time the envelope keeps sounding past the note.
func (e Envelope) Tail() float64 {
	return e.Release
}

// Cutoff clamp bounds for filter envelopes.
const (
	minCutoffHz = 20.0
	maxCutoffHz = 20000.0
)

// FilterEnvelope sweeps a filter cutoff along an ADSR contour.
// Interpolation happens in the log-frequency domain so sweeps sound
// even across octaves.
type FilterEnvelope struct {
	Env        Envelope
	BaseCutoff float64 // Hz
	PeakCutoff float64 // Hz
	Amount     float64 // 0 disables, 1 full sweep
}

// NewFilterEnvelope validates and builds a filter envelope.
func NewFilterEnvelope(env Envelope, baseCutoff, peakCutoff, amount float64) (FilterEnvelope, error) {
	if err := env.validate(); err != nil {
		return FilterEnvelope{}, err
	}
	if !isFinite(baseCutoff) || baseCutoff <= 0 {
		return FilterEnvelope{}, fmt.Errorf("%w: base cutoff %v", ErrInvalidParameter, baseCutoff)
	}
	if !isFinite(peakCutoff) || peakCutoff <= 0 {
		return FilterEnvelope{}, fmt.Errorf("%w: peak cutoff %v", ErrInvalidParameter, peakCutoff)
	}
	if !isFinite(amount) {
		return FilterEnvelope{}, fmt.Errorf("%w: amount %v", ErrInvalidParameter, amount)
	}
	return FilterEnvelope{Env: env, BaseCutoff: baseCutoff, PeakCutoff: peakCutoff, Amount: amount}, nil
}

// Cutoff evaluates the swept cutoff at time t, clamped to [20, 20000] Hz.
// With Amount 0 the base cutoff is returned unchanged.
func (fe FilterEnvelope) Cutoff(t, noteDuration float64) float64 {
	if fe.Amount == 0 {
		return clamp(fe.BaseCutoff, minCutoffHz, maxCutoffHz)
	}
	env := float64(fe.Env.Amp(t, noteDuration))
	lnBase := math.Log(fe.BaseCutoff)
	lnPeak := math.Log(fe.PeakCutoff)
	cutoff := math.Exp(lnBase + (lnPeak-lnBase)*env*fe.Amount)
	return clamp(cutoff, minCutoffHz, maxCutoffHz)
}
