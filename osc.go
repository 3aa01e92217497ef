package resound

import "math"

// oscillator is the per-voice phase accumulator over a wavetable.
// Phase advances by freq/sampleRate per audio sample and wraps in [0,1).
type oscillator struct {
	table *Wavetable
	noise *noiseState
	phase Smp
	level int
}

// newOscillator builds an oscillator for the given waveform kind.
// table is only consulted for Custom; the mip level is frozen at the
// voice's reference frequency.
func newOscillator(kind Waveform, table *Wavetable, freq, sampleRate float64, noiseSeed int) *oscillator {
	osc := &oscillator{}
	if kind == Noise {
		osc.noise = newNoiseState(noiseSeed)
		return osc
	}
	if kind == Custom && table != nil {
		osc.table = table
	} else {
		osc.table = builtinTable(kind)
	}
	if osc.table == nil {
		osc.table = SineTable()
	}
	osc.level = osc.table.levelFor(freq, sampleRate)
	return osc
}

func (o *oscillator) next(freq, sampleRate Smp) Smp {
	if o.noise != nil {
		return o.noise.next()
	}
	out := o.table.Sample(o.phase, o.level)
	if sampleRate > 0 {
		o.phase = math.Mod(o.phase+freq/sampleRate, 1.0)
		if o.phase < 0 {
			o.phase += 1.0
		}
	}
	return out
}
