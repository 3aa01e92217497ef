package resound

import (
	"fmt"
	"math"
)

// LFOTarget selects what a voice LFO route modulates.
type LFOTarget int

const (
	LFOTargetPitch  LFOTarget = iota // Depth in semitones
	LFOTargetCutoff                  // Depth in octaves around the cutoff
	LFOTargetAmp                     // Depth as a [0,1] amplitude fraction
)

// LFORoute modulates one synthesis parameter with a sine LFO.
type LFORoute struct {
	Target LFOTarget
	Rate   float64 // Hz
	Depth  float64
}

// Voice is the immutable input to synthesis. The composition layer
// builds it and passes it by value; the renderer never mutates it.
// Pan is carried here but applied at mix time so cached mono buffers
// stay pan-agnostic.
type Voice struct {
	Waveform Waveform
	Table    *Wavetable // used when Waveform is Custom
	Freq     float64    // Hz, the reference pitch for caching
	Duration float64    // seconds the note is held
	Env      Envelope

	Filter    *FilterParams
	FilterEnv *FilterEnvelope
	FM        *FMParams
	Partials  []Partial
	LFOs      []LFORoute
	Effects   []EffectSpec

	Velocity float64 // [0,1]
	Pan      float64 // [-1,1]

	// NoiseSeed keeps noise voices deterministic and cacheable.
	NoiseSeed int
}

// Validate checks every field a constructor would reject.
func (v *Voice) Validate() error {
	if !isFinite(v.Freq) || v.Freq <= 0 {
		return fmt.Errorf("%w: voice frequency %v", ErrInvalidParameter, v.Freq)
	}
	if !isFinite(v.Duration) || v.Duration <= 0 {
		return fmt.Errorf("%w: voice duration %v", ErrInvalidParameter, v.Duration)
	}
	if err := v.Env.validate(); err != nil {
		return err
	}
	if !isFinite(v.Velocity) || v.Velocity < 0 || v.Velocity > 1 {
		return fmt.Errorf("%w: voice velocity %v outside [0,1]", ErrInvalidParameter, v.Velocity)
	}
	if !isFinite(v.Pan) || v.Pan < -1 || v.Pan > 1 {
		return fmt.Errorf("%w: voice pan %v outside [-1,1]", ErrInvalidParameter, v.Pan)
	}
	if v.Waveform == Custom && v.Table == nil {
		return fmt.Errorf("%w: custom waveform without a table", ErrInvalidParameter)
	}
	return validateEffectSpecs(v.Effects)
}

// TotalDuration is the audible length including the release tail.
func (v *Voice) TotalDuration() float64 {
	return v.Duration + v.Env.Tail()
}

// NumSamples is the exact mono buffer length at the given rate.
func (v *Voice) NumSamples(sampleRate int) int {
	return int(math.Ceil(v.TotalDuration() * float64(sampleRate)))
}

// Fingerprint hashes every audibly significant field. Frequency and
// pan are deliberately excluded: cached buffers are reused across
// pitches via resampling and are pan-agnostic.
func (v *Voice) Fingerprint() CacheKey {
	w := newFpWriter()
	w.writeTag("voice")
	w.writeInt(int(v.Waveform))
	if v.Waveform == Custom && v.Table != nil {
		w.writeUint64(uint64(v.Table.hash))
	}
	if v.Waveform == Noise {
		w.writeInt(v.NoiseSeed)
	}
	w.writeFloat(v.Duration)
	w.writeFloat(v.Env.Attack)
	w.writeFloat(v.Env.Decay)
	w.writeFloat(v.Env.Sustain)
	w.writeFloat(v.Env.Release)
	w.writeFloat(v.Velocity)

	w.writeBool(v.Filter != nil)
	if v.Filter != nil {
		w.writeInt(int(v.Filter.Mode))
		w.writeInt(int(v.Filter.Slope))
		w.writeFloat(v.Filter.Cutoff)
		w.writeFloat(v.Filter.Resonance)
	}
	w.writeBool(v.FilterEnv != nil)
	if v.FilterEnv != nil {
		fe := v.FilterEnv
		w.writeFloat(fe.Env.Attack)
		w.writeFloat(fe.Env.Decay)
		w.writeFloat(fe.Env.Sustain)
		w.writeFloat(fe.Env.Release)
		w.writeFloat(fe.BaseCutoff)
		w.writeFloat(fe.PeakCutoff)
		w.writeFloat(fe.Amount)
	}
	w.writeBool(v.FM != nil)
	if v.FM != nil {
		w.writeFloat(v.FM.ModRatio)
		w.writeFloat(v.FM.ModIndex)
		w.writeBool(v.FM.IndexEnv != nil)
		if v.FM.IndexEnv != nil {
			w.writeFloat(v.FM.IndexEnv.Attack)
			w.writeFloat(v.FM.IndexEnv.Decay)
			w.writeFloat(v.FM.IndexEnv.Sustain)
			w.writeFloat(v.FM.IndexEnv.Release)
		}
	}
	w.writeInt(len(v.Partials))
	for _, p := range v.Partials {
		w.writeFloat(float64(p.Ratio))
		w.writeFloat(float64(p.Amp))
		w.writeFloat(float64(p.Phase))
	}
	w.writeInt(len(v.LFOs))
	for _, r := range v.LFOs {
		w.writeInt(int(r.Target))
		w.writeFloat(r.Rate)
		w.writeFloat(r.Depth)
	}
	w.writeInt(len(v.Effects))
	for _, fx := range v.Effects {
		fx.fingerprint(w)
	}
	return w.sum()
}

// renderVoice synthesizes the voice into a mono buffer of exactly
// ceil((duration + release) * sampleRate) samples at reference pitch.
func renderVoice(v *Voice, sampleRate int) []float32 {
	sr := float64(sampleRate)
	n := v.NumSamples(sampleRate)
	buf := make([]float32, n)

	osc := newOscillator(v.Waveform, v.Table, v.Freq, sr, v.NoiseSeed)
	var filter *svfFilter
	if v.Filter != nil {
		filter = newSVFFilter(*v.Filter, sr)
	}
	chain := buildChain(v.Effects, sr)

	var pitchLFO, cutoffLFO, ampLFO *lfo
	var pitchDepth, cutoffDepth, ampDepth float64
	for _, route := range v.LFOs {
		switch route.Target {
		case LFOTargetPitch:
			pitchLFO = newLFO(route.Rate, sr, 0)
			pitchDepth = route.Depth
		case LFOTargetCutoff:
			cutoffLFO = newLFO(route.Rate, sr, 0)
			cutoffDepth = route.Depth
		case LFOTargetAmp:
			ampLFO = newLFO(route.Rate, sr, 0)
			ampDepth = clamp(route.Depth, 0, 1)
		}
	}

	useFM := v.FM != nil
	useAdditive := !useFM && len(v.Partials) > 0

	for i := 0; i < n; i++ {
		t := float64(i) / sr

		var s Smp
		switch {
		case useFM:
			s = v.FM.Sample(v.Freq, t, v.Duration)
		case useAdditive:
			s = additiveSample(v.Partials, v.Freq, t)
		default:
			freq := v.Freq
			if pitchLFO != nil {
				freq *= semitonesToRatio(pitchDepth * float64(pitchLFO.next()))
			}
			s = osc.next(freq, sr)
		}

		s *= v.Env.Amp(t, v.Duration)

		if filter != nil {
			cutoff := filter.params.Cutoff
			if v.FilterEnv != nil {
				cutoff = v.FilterEnv.Cutoff(t, v.Duration)
			}
			if cutoffLFO != nil {
				cutoff *= math.Pow(2, cutoffDepth*float64(cutoffLFO.next()))
			}
			filter.setTargets(cutoff, filter.params.Resonance)
			s = filter.process(s)
		}

		s = processChain(chain, s)

		if ampLFO != nil {
			s *= 1 - ampDepth*(0.5+0.5*ampLFO.next())
		}

		buf[i] = float32(s)
	}

	// Velocity is a constant gain over the whole buffer; let the
	// vector dispatcher handle it.
	if v.Velocity != 1 {
		scaleBuffer(buf, float32(v.Velocity))
	}
	return buf
}
