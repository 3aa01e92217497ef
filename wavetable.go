package resound

import (
	"fmt"
	"sync"
)

// minMipSize is the smallest wave kept in a mip chain.
const minMipSize = 64

// Wavetable is an immutable single-cycle table with FFT-lowpassed mip
// levels. Level 0 holds the full-size wave; each further level is a
// half-size, half-bandwidth copy used for higher playback frequencies.
type Wavetable struct {
	levels []Wave
	size   int
	// maxHarmonic is the highest partial present at level 0, used to
	// pick a mip level that keeps the spectrum below Nyquist.
	maxHarmonic int
	// hash identifies the table contents in voice fingerprints.
	hash CacheKey
}

func (wt *Wavetable) String() string {
	return fmt.Sprintf("Wavetable(size=%d levels=%d)", wt.size, len(wt.levels))
}

// Size returns the level-0 table length.
func (wt *Wavetable) Size() int { return wt.size }

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// newWavetable validates the wave and builds the mip chain.
func newWavetable(wave Wave, maxHarmonic int) (*Wavetable, error) {
	n := len(wave)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidWavetable)
	}
	if !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: size %d is not a power of two", ErrInvalidWavetable, n)
	}
	for i, v := range wave {
		if !isFinite(float64(v)) {
			return nil, fmt.Errorf("%w: non-finite value at index %d", ErrInvalidWavetable, i)
		}
	}
	if maxHarmonic <= 0 {
		maxHarmonic = n / 2
	}
	levels := []Wave{wave}
	for cur := wave; len(cur) > minMipSize; {
		cur = cur.buildFFTLowpass()
		levels = append(levels, cur)
	}
	h := newFpWriter()
	h.writeTag("table")
	h.writeInt(n)
	for _, v := range wave {
		h.writeFloat(float64(v))
	}
	return &Wavetable{levels: levels, size: n, maxHarmonic: maxHarmonic, hash: h.sum()}, nil
}

// Sample returns the interpolated sample at phase [0,1) from the given
// mip level. Levels out of range are clamped.
func (wt *Wavetable) Sample(phase Smp, level int) Smp {
	if level < 0 {
		level = 0
	}
	if level >= len(wt.levels) {
		level = len(wt.levels) - 1
	}
	return wt.levels[level].sampleAt(phase)
}

// levelFor picks the mip level whose spectrum stays below Nyquist at
// the given playback frequency.
func (wt *Wavetable) levelFor(freq, sampleRate float64) int {
	if freq <= 0 || sampleRate <= 0 {
		return 0
	}
	top := freq * float64(wt.maxHarmonic)
	nyquist := sampleRate / 2
	level := 0
	for top > nyquist && level < len(wt.levels)-1 {
		top /= 2
		level++
	}
	return level
}

// TableFromSamples builds a wavetable from one cycle of raw samples.
// The table length must be a power of two and every value finite.
func TableFromSamples(samples []Smp) (*Wavetable, error) {
	wave := append(Wave(nil), samples...)
	return newWavetable(wave, 0)
}

// TableFromFunc evaluates fn over one cycle. fn receives phase in [0,1).
func TableFromFunc(size int, fn func(phase float64) float64) (*Wavetable, error) {
	if size == 0 {
		size = DefaultWaveSize
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil table function", ErrInvalidWavetable)
	}
	wave := make(Wave, size)
	for i := range size {
		wave[i] = Smp(fn(float64(i) / float64(size)))
	}
	return newWavetable(wave, 0)
}

// TableFromHarmonics builds an additive table; amps[k] is the amplitude
// of harmonic k+1. The result is peak-normalized.
func TableFromHarmonics(amps []Smp) (*Wavetable, error) {
	if len(amps) == 0 {
		return nil, fmt.Errorf("%w: no harmonics", ErrInvalidWavetable)
	}
	for i, a := range amps {
		if !isFinite(float64(a)) {
			return nil, fmt.Errorf("%w: non-finite amplitude for harmonic %d", ErrInvalidWavetable, i+1)
		}
	}
	wave := harmonicWave(DefaultWaveSize, amps)
	wave.normalizeInPlace()
	return newWavetable(wave, len(amps))
}

// PWMTable builds a pulse table with the given pulse width in [0,1].
// The naive edge is acceptable here because PWM tables are meant for
// LFO-rate or resampled use; audible tones should go through the
// band-limited presets.
func PWMTable(pulseWidth float64) (*Wavetable, error) {
	return newWavetable(pulseWave(DefaultWaveSize, pulseWidth), 0)
}

func mustTable(wt *Wavetable, err error) *Wavetable {
	if err != nil {
		panic(err)
	}
	return wt
}

// Builtin tables are process-wide immutable singletons, created on
// first use.
var (
	sineTableOnce = sync.OnceValue(func() *Wavetable {
		return mustTable(newWavetable(sineWave(DefaultWaveSize), 1))
	})
	sawTableOnce = sync.OnceValue(func() *Wavetable {
		return mustTable(newWavetable(bandlimitedSawWave(DefaultWaveSize), sawHarmonics))
	})
	squareTableOnce = sync.OnceValue(func() *Wavetable {
		return mustTable(newWavetable(bandlimitedSquareWave(DefaultWaveSize), 2*squareHarmonics-1))
	})
	triangleTableOnce = sync.OnceValue(func() *Wavetable {
		return mustTable(newWavetable(bandlimitedTriangleWave(DefaultWaveSize), 2*squareHarmonics-1))
	})
)

// SineTable returns the shared sine wavetable.
func SineTable() *Wavetable { return sineTableOnce() }

// SawTable returns the shared band-limited sawtooth wavetable
// (31 harmonics at 1/n, peak-normalized).
func SawTable() *Wavetable { return sawTableOnce() }

// SquareTable returns the shared band-limited square wavetable
// (16 odd harmonics at 1/n).
func SquareTable() *Wavetable { return squareTableOnce() }

// TriangleTable returns the shared band-limited triangle wavetable
// (odd harmonics, alternating signs, 1/n^2).
func TriangleTable() *Wavetable { return triangleTableOnce() }

// builtinTable maps a waveform kind to its shared table. Noise and
// Custom have no builtin table.
func builtinTable(w Waveform) *Wavetable {
	switch w {
	case Sine:
		return SineTable()
	case Sawtooth:
		return SawTable()
	case Square:
		return SquareTable()
	case Triangle:
		return TriangleTable()
	}
	return nil
}
