package resound

import (
	"fmt"
	"math"
)

// WSOLA (waveform similarity overlap-add) time-stretching. Each output
// block is taken from the input near the nominal read position, at the
// offset in a +/- half-window search range that best correlates with
// the previous output tail, then overlap-added under a raised-cosine
// window. Stretching changes duration without changing pitch.

const (
	// wsolaWindowSeconds is the default analysis window (30 ms).
	wsolaWindowSeconds = 0.030

	// maxPitchShiftSemitones bounds PitchShift; beyond this the
	// artifacts are unacceptable.
	maxPitchShiftSemitones = 24.0
)

// hannWindow returns a raised-cosine window of length n.
func hannWindow(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// crossCorrelation scores the alignment of two equal-length slices.
func crossCorrelation(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// TimeStretch returns a copy whose duration is scaled by factor at
// unchanged pitch. Factor must be within [1/4, 4].
func (s *Sample) TimeStretch(factor float64) (*Sample, error) {
	if !isFinite(factor) || factor < 0.25 || factor > 4 {
		return nil, fmt.Errorf("%w: time stretch factor %v outside [0.25, 4]", ErrInvalidParameter, factor)
	}
	if len(s.Data) == 0 {
		return s.Clone(), nil
	}

	window := int(wsolaWindowSeconds * float64(s.Rate))
	if window < 16 {
		window = 16
	}
	if window > len(s.Data) {
		// Input shorter than one window: fall back to plain resampling.
		outLen := int(math.Ceil(float64(len(s.Data)) * factor))
		return &Sample{Data: resampleLinear(s.Data, 1/factor, outLen), Rate: s.Rate}, nil
	}
	inputHop := window / 4
	outputHop := int(float64(inputHop) * factor)
	if outputHop < 1 {
		outputHop = 1
	}
	search := window / 2

	outLen := int(math.Ceil(float64(len(s.Data)) * factor))
	out := make([]float32, outLen+window)
	norm := make([]float32, outLen+window)
	win := hannWindow(window)

	// The tail of the previous output block, used as the similarity
	// reference for the next one.
	overlap := window - outputHop
	if overlap < 1 {
		overlap = 1
	}

	outPos := 0
	for block := 0; outPos+window <= len(out); block++ {
		// Nominal input position maps the output timeline back to the
		// input timeline.
		nominal := int(float64(outPos) / factor)
		best := nominal
		if block > 0 && overlap < window {
			lo := nominal - search
			if lo < 0 {
				lo = 0
			}
			hi := nominal + search
			if hi > len(s.Data)-window {
				hi = len(s.Data) - window
			}
			if hi < lo {
				break
			}
			ref := out[outPos : outPos+overlap]
			bestScore := math.Inf(-1)
			for cand := lo; cand <= hi; cand++ {
				score := crossCorrelation(ref, s.Data[cand:cand+overlap])
				if score > bestScore {
					bestScore = score
					best = cand
				}
			}
		}
		if best > len(s.Data)-window {
			break
		}
		for i := 0; i < window; i++ {
			out[outPos+i] += s.Data[best+i] * win[i]
			norm[outPos+i] += win[i]
		}
		outPos += outputHop
	}

	// Divide out the window overlap energy.
	for i := range out {
		if norm[i] > 1e-6 {
			out[i] /= norm[i]
		}
	}
	return &Sample{Data: out[:outLen], Rate: s.Rate}, nil
}

// PitchShift returns a copy shifted by the given semitones at
// unchanged duration: time-stretch by the pitch ratio, then resample
// back to the original length.
func (s *Sample) PitchShift(semitones float64) (*Sample, error) {
	if !isFinite(semitones) || math.Abs(semitones) > maxPitchShiftSemitones {
		return nil, fmt.Errorf("%w: %v semitones (max +/-%v)",
			ErrExtremePitchShift, semitones, maxPitchShiftSemitones)
	}
	if semitones == 0 {
		return s.Clone(), nil
	}
	ratio := semitonesToRatio(semitones)
	stretched, err := s.TimeStretch(ratio)
	if err != nil {
		return nil, err
	}
	out := resampleLinear(stretched.Data, ratio, len(s.Data))
	return &Sample{Data: out, Rate: s.Rate}, nil
}
