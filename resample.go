package resound

import (
	"fmt"
	"math"

	"github.com/dh1tw/gosamplerate"
)

const (
	resampleMaxRatio = 1.0 * 16
	resampleMinRatio = 1.0 / 16

	// ratioSkipTolerance: below this deviation from 1.0 resampling is
	// skipped and the source is read directly.
	ratioSkipTolerance = 1e-4
)

func isValidRatio(ratio float64) bool {
	if !isFinite(ratio) || ratio <= 0 {
		return false
	}
	return ratio >= resampleMinRatio && ratio <= resampleMaxRatio
}

// playbackReader reads a cached mono buffer at a fixed playback rate
// with linear interpolation. Out-of-range positions are silence.
type playbackReader struct {
	src    []float32
	ratio  float64
	direct bool
}

// newPlaybackReader validates the ratio against the [1/16, 16] window.
func newPlaybackReader(src []float32, ratio float64) (*playbackReader, error) {
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("%w: resample ratio %v outside [%v, %v]",
			ErrExtremePitchShift, ratio, resampleMinRatio, resampleMaxRatio)
	}
	return &playbackReader{
		src:    src,
		ratio:  ratio,
		direct: math.Abs(ratio-1) <= ratioSkipTolerance,
	}, nil
}

// at returns output sample j, read from input position j*ratio.
func (r *playbackReader) at(j int) float32 {
	if r.direct {
		if j < 0 || j >= len(r.src) {
			return 0
		}
		return r.src[j]
	}
	pos := float64(j) * r.ratio
	i := int(pos)
	if pos < 0 || i >= len(r.src) {
		return 0
	}
	if i == len(r.src)-1 {
		return r.src[i]
	}
	frac := float32(pos - float64(i))
	return r.src[i] + frac*(r.src[i+1]-r.src[i])
}

// resampleLinear produces outLen samples read at the given ratio.
// Used by the offline pitch shifter; the mixer reads incrementally
// through playbackReader instead.
func resampleLinear(src []float32, ratio float64, outLen int) []float32 {
	out := make([]float32, outLen)
	for j := range out {
		pos := float64(j) * ratio
		i := int(pos)
		if i >= len(src) {
			break
		}
		if i == len(src)-1 {
			out[j] = src[i]
			continue
		}
		frac := float32(pos - float64(i))
		out[j] = src[i] + frac*(src[i+1]-src[i])
	}
	return out
}

// ConvertRate returns a copy of the sample converted to a new sample
// rate through libsamplerate. converterType selects quality (0 best
// sinc .. 4 linear), matching gosamplerate's converter constants.
func (s *Sample) ConvertRate(targetRate int, converterType int) (*Sample, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("%w: target rate %d", ErrInvalidParameter, targetRate)
	}
	if converterType < 0 || converterType > 4 {
		return nil, fmt.Errorf("%w: invalid converter type %d - must be between 0..4",
			ErrInvalidParameter, converterType)
	}
	ratio := float64(targetRate) / float64(s.Rate)
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("%w: rate conversion ratio %v", ErrExtremePitchShift, ratio)
	}
	if ratio == 1 {
		return &Sample{Data: append([]float32(nil), s.Data...), Rate: s.Rate}, nil
	}
	converted, err := gosamplerate.Simple(s.Data, ratio, 1, converterType)
	if err != nil {
		return nil, fmt.Errorf("rate conversion failed: %w", err)
	}
	return &Sample{Data: converted, Rate: targetRate}, nil
}
