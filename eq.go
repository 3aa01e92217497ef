package resound

import "math"

// The EQ bands are built on the topology-preserving transform (TPT)
// state-variable core (Simper):
//
//	a1 = 1/(1 + g*(g+k))
//	a2 = g*a1
//	a3 = g*a2
//	v3 = x - ic2eq
//	v1 = a1*ic1eq + a2*v3
//	v2 = ic2eq + a2*ic1eq + a3*v3
//	ic1eq = 2*v1 - ic1eq
//	ic2eq = 2*v2 - ic2eq
//
// A peaking band is then y = x + (A - 1) * k * bp.

// tptSVF holds the integrator state of one TPT SVF band.
type tptSVF struct {
	ic1eq, ic2eq Smp
	a0, a1, a2   Smp
	k            Smp
}

// tptCoefficient computes the one-pole SVF coefficient:
// tan(pi * min(0.499, f/sr)).
func tptCoefficient(cutoffHz, sampleRate float64) Smp {
	ratio := cutoffHz / sampleRate
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 0.499 {
		ratio = 0.499
	}
	return Smp(math.Tan(math.Pi * ratio))
}

func newTPTSVF(cutoffHz, q, sampleRate float64) *tptSVF {
	if q < 1e-6 {
		q = 1e-6
	}
	k := Smp(1 / q)
	g := tptCoefficient(cutoffHz, sampleRate)
	denom := Smp(1) + g*(g+k)
	if denom == 0 {
		denom = 1e-9
	}
	a0 := Smp(1) / denom
	a1 := g * a0
	a2 := g * a1
	return &tptSVF{a0: a0, a1: a1, a2: a2, k: k}
}

// process returns the lowpass, bandpass and highpass outputs.
func (s *tptSVF) process(x Smp) (lp, bp, hp Smp) {
	v3 := x - s.ic2eq
	v1 := s.a0*s.ic1eq + s.a1*v3
	v2 := s.ic2eq + s.a1*s.ic1eq + s.a2*v3
	s.ic1eq = 2*v1 - s.ic1eq
	s.ic2eq = 2*v2 - s.ic2eq
	lp = v2
	bp = v1
	hp = x - s.k*bp - lp
	return
}

func (s *tptSVF) reset() {
	s.ic1eq = 0
	s.ic2eq = 0
}

// EQSpec is a three-band equalizer: low shelf, mid peak, high shelf.
// Gains are linear multipliers; 1 is neutral.
type EQSpec struct {
	LowFreq  float64 // low/mid crossover Hz, default 250
	HighFreq float64 // mid/high crossover Hz, default 4000
	LowGain  float64
	MidGain  float64
	HighGain float64
}

func (s EQSpec) build(sampleRate float64) Effect {
	lowFreq := s.LowFreq
	if lowFreq <= 0 {
		lowFreq = 250
	}
	highFreq := s.HighFreq
	if highFreq <= lowFreq {
		highFreq = math.Max(4000, lowFreq*2)
	}
	gain := func(g float64) Smp {
		if g < 0 {
			g = 0
		}
		return Smp(g)
	}
	// Shelves come from the SVF band splits; Q of sqrt(1/2) keeps the
	// crossover flat at neutral gain.
	const q = math.Sqrt2 / 2
	return &eq3{
		low:      newTPTSVF(lowFreq, q, sampleRate),
		high:     newTPTSVF(highFreq, q, sampleRate),
		lowGain:  gain(s.LowGain),
		midGain:  gain(s.MidGain),
		highGain: gain(s.HighGain),
	}
}

func (s EQSpec) fingerprint(w *fpWriter) {
	w.writeTag("eq")
	w.writeFloat(s.LowFreq)
	w.writeFloat(s.HighFreq)
	w.writeFloat(s.LowGain)
	w.writeFloat(s.MidGain)
	w.writeFloat(s.HighGain)
}

type eq3 struct {
	low      *tptSVF
	high     *tptSVF
	lowGain  Smp
	midGain  Smp
	highGain Smp
}

func (e *eq3) Process(in Smp) Smp {
	// Split into three bands with two SVF crossovers, then recombine
	// with per-band gains. At unity gains the splits sum back to the
	// input within the filters' phase response.
	lowBand, _, rest := e.low.process(in)
	midBand, _, highBand := e.high.process(rest)
	return e.lowGain*lowBand + e.midGain*midBand + e.highGain*highBand
}

func (e *eq3) Reset() {
	e.low.reset()
	e.high.reset()
}
