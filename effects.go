package resound

import (
	"fmt"
	"math"
)

// Effect is the per-sample contract every voice effect implements.
// State lives for the voice's render lifetime and is never shared
// across concurrently rendering voices. Given identical input and
// initial state, Process is deterministic.
type Effect interface {
	Process(in Smp) Smp
	Reset()
}

// StereoEffect processes interleaved stereo pairs; used on the master
// bus.
type StereoEffect interface {
	ProcessStereo(l, r Smp) (Smp, Smp)
	Reset()
}

// EffectSpec is one arm of the effect configuration variant. Specs are
// immutable; build instantiates the mutable per-voice state.
type EffectSpec interface {
	build(sampleRate float64) Effect
	fingerprint(w *fpWriter)
}

// stereoEffectSpec is implemented by specs with a native stereo form.
type stereoEffectSpec interface {
	buildStereo(sampleRate float64) StereoEffect
}

// buildChain instantiates the mutable effects for one voice render.
func buildChain(specs []EffectSpec, sampleRate float64) []Effect {
	if len(specs) == 0 {
		return nil
	}
	chain := make([]Effect, len(specs))
	for i, spec := range specs {
		chain[i] = spec.build(sampleRate)
	}
	return chain
}

// processChain applies the effects left to right.
func processChain(chain []Effect, in Smp) Smp {
	for _, fx := range chain {
		in = fx.Process(in)
	}
	return in
}

// buildStereoChain instantiates master-bus effects. Mono specs are
// lifted to stereo with independent left/right state.
func buildStereoChain(specs []EffectSpec, sampleRate float64) []StereoEffect {
	if len(specs) == 0 {
		return nil
	}
	chain := make([]StereoEffect, len(specs))
	for i, spec := range specs {
		if ss, ok := spec.(stereoEffectSpec); ok {
			chain[i] = ss.buildStereo(sampleRate)
		} else {
			chain[i] = &stereoAdapter{l: spec.build(sampleRate), r: spec.build(sampleRate)}
		}
	}
	return chain
}

// stereoAdapter runs two independent mono instances per channel.
type stereoAdapter struct {
	l, r Effect
}

func (a *stereoAdapter) ProcessStereo(l, r Smp) (Smp, Smp) {
	return a.l.Process(l), a.r.Process(r)
}

func (a *stereoAdapter) Reset() {
	a.l.Reset()
	a.r.Reset()
}

// lfo is a shared sine LFO helper for modulation effects.
type lfo struct {
	phase Smp
	incr  Smp
}

func newLFO(rateHz, sampleRate float64, phase Smp) *lfo {
	incr := Smp(0)
	if sampleRate > 0 {
		incr = Smp(rateHz / sampleRate)
	}
	return &lfo{phase: phase, incr: incr}
}

// next returns a sine in [-1,1] and advances the phase.
func (l *lfo) next() Smp {
	out := math.Sin(2 * math.Pi * l.phase)
	l.phase = math.Mod(l.phase+l.incr, 1.0)
	return out
}

// TremoloSpec modulates amplitude with a sine LFO.
type TremoloSpec struct {
	Rate  float64 // Hz
	Depth float64 // [0,1]
}

func (s TremoloSpec) build(sampleRate float64) Effect {
	return &tremolo{spec: s, lfo: newLFO(s.Rate, sampleRate, 0)}
}

func (s TremoloSpec) fingerprint(w *fpWriter) {
	w.writeTag("tremolo")
	w.writeFloat(s.Rate)
	w.writeFloat(s.Depth)
}

type tremolo struct {
	spec TremoloSpec
	lfo  *lfo
}

func (t *tremolo) Process(in Smp) Smp {
	depth := clamp(t.spec.Depth, 0, 1)
	// Modulate between 1-depth and 1.
	gain := 1 - depth*(0.5+0.5*t.lfo.next())
	return in * gain
}

func (t *tremolo) Reset() {
	t.lfo.phase = 0
}

// AutoPanSpec sweeps the signal across the stereo field with an LFO.
// On the master bus it applies complementary equal-power gains to the
// two channels; inside a mono voice chain it degrades to a tremolo.
type AutoPanSpec struct {
	Rate  float64 // Hz
	Depth float64 // [0,1], pan excursion
}

func (s AutoPanSpec) build(sampleRate float64) Effect {
	return &tremolo{spec: TremoloSpec{Rate: s.Rate, Depth: s.Depth * 0.5}, lfo: newLFO(s.Rate, sampleRate, 0)}
}

func (s AutoPanSpec) buildStereo(sampleRate float64) StereoEffect {
	return &autoPan{spec: s, lfo: newLFO(s.Rate, sampleRate, 0)}
}

func (s AutoPanSpec) fingerprint(w *fpWriter) {
	w.writeTag("autopan")
	w.writeFloat(s.Rate)
	w.writeFloat(s.Depth)
}

type autoPan struct {
	spec AutoPanSpec
	lfo  *lfo
}

func (a *autoPan) ProcessStereo(l, r Smp) (Smp, Smp) {
	pan := clamp(a.spec.Depth, 0, 1) * a.lfo.next()
	gl, gr := equalPowerPan(pan)
	// Complementary modulation: left fades as right rises.
	return l * Smp(gl) * math.Sqrt2, r * Smp(gr) * math.Sqrt2
}

func (a *autoPan) Reset() {
	a.lfo.phase = 0
}

// RingModSpec multiplies the input with a sine carrier.
type RingModSpec struct {
	Freq float64 // carrier Hz
	Mix  float64 // [0,1] wet amount
}

func (s RingModSpec) build(sampleRate float64) Effect {
	return &ringMod{spec: s, lfo: newLFO(s.Freq, sampleRate, 0)}
}

func (s RingModSpec) fingerprint(w *fpWriter) {
	w.writeTag("ringmod")
	w.writeFloat(s.Freq)
	w.writeFloat(s.Mix)
}

type ringMod struct {
	spec RingModSpec
	lfo  *lfo
}

func (r *ringMod) Process(in Smp) Smp {
	wet := in * r.lfo.next()
	mix := clamp(r.spec.Mix, 0, 1)
	return (1-mix)*in + mix*wet
}

func (r *ringMod) Reset() {
	r.lfo.phase = 0
}

// BitCrusherSpec quantizes amplitude to the given bit depth and holds
// each value for SampleRateDiv samples.
type BitCrusherSpec struct {
	Bits          int // 1..16
	SampleRateDiv int // >= 1
}

func (s BitCrusherSpec) build(sampleRate float64) Effect {
	bits := s.Bits
	if bits < 1 {
		bits = 1
	}
	if bits > 16 {
		bits = 16
	}
	div := s.SampleRateDiv
	if div < 1 {
		div = 1
	}
	return &bitCrusher{steps: math.Pow(2, float64(bits-1)), div: div}
}

func (s BitCrusherSpec) fingerprint(w *fpWriter) {
	w.writeTag("bitcrush")
	w.writeInt(s.Bits)
	w.writeInt(s.SampleRateDiv)
}

type bitCrusher struct {
	steps   float64
	div     int
	counter int
	held    Smp
}

func (b *bitCrusher) Process(in Smp) Smp {
	if b.counter == 0 {
		b.held = Smp(math.Round(float64(in)*b.steps) / b.steps)
	}
	b.counter++
	if b.counter >= b.div {
		b.counter = 0
	}
	return b.held
}

func (b *bitCrusher) Reset() {
	b.counter = 0
	b.held = 0
}

// SaturatorSpec applies tanh drive with dry/wet mix.
type SaturatorSpec struct {
	Drive float64 // >= 0, input gain into the shaper
	Mix   float64 // [0,1]
}

func (s SaturatorSpec) build(sampleRate float64) Effect {
	drive := s.Drive
	if drive < 0 {
		drive = 0
	}
	return &saturator{spec: SaturatorSpec{Drive: drive, Mix: clamp(s.Mix, 0, 1)}}
}

func (s SaturatorSpec) fingerprint(w *fpWriter) {
	w.writeTag("saturate")
	w.writeFloat(s.Drive)
	w.writeFloat(s.Mix)
}

type saturator struct {
	spec SaturatorSpec
}

func (s *saturator) Process(in Smp) Smp {
	wet := math.Tanh(in * (1 + s.spec.Drive))
	return (1-s.spec.Mix)*in + s.spec.Mix*wet
}

func (s *saturator) Reset() {}

func validateEffectSpecs(specs []EffectSpec) error {
	for i, spec := range specs {
		if spec == nil {
			return fmt.Errorf("%w: nil effect spec at index %d", ErrInvalidParameter, i)
		}
	}
	return nil
}
