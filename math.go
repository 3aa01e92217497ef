package resound

import "math"

func clamp(value float64, lo float64, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func lerp(a, b, t Smp) Smp {
	return a + (b-a)*t
}

// isFinite reports whether x is neither NaN nor an infinity.
func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// dbToLinear converts decibels to a linear amplitude multiplier.
func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// linearToDb converts a linear amplitude to decibels; silence maps to -inf.
func linearToDb(amp float64) float64 {
	if amp <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(amp)
}

// centsToRatio converts a detune offset in cents to a frequency ratio.
func centsToRatio(cents float64) float64 {
	return math.Pow(2.0, cents/1200.0)
}

// semitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func semitonesToRatio(semitones float64) float64 {
	return math.Pow(2.0, semitones/12.0)
}

// SoftClipMode selects the waveshaper used on the master bus.
type SoftClipMode int

const (
	SoftClipTanh SoftClipMode = iota
	SoftClipAtan
	SoftClipCubic
	SoftClipSoftsign
)

// softClipFunc returns the shaping function for a mode. All modes map
// the real line into [-1,1] (cubic into [-2/3, 2/3]).
func softClipFunc(mode SoftClipMode) func(Smp) Smp {
	switch mode {
	case SoftClipAtan:
		return func(x Smp) Smp {
			return (2.0 / math.Pi) * math.Atan(x)
		}
	case SoftClipCubic:
		return func(x Smp) Smp {
			if x < -1 {
				return -2.0 / 3.0
			}
			if x > 1 {
				return 2.0 / 3.0
			}
			return x - (x*x*x)/3.0
		}
	case SoftClipSoftsign:
		return func(x Smp) Smp {
			return x / (1 + math.Abs(x))
		}
	default:
		return math.Tanh
	}
}
