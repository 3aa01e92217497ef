package resound

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultWaveSize defines the size of builtin waves.
const DefaultWaveSize = 2048

// Wave is a single-cycle waveform.
//
// Several such waves are kept at each mip level of a Wavetable; the
// oscillator picks a level by playback frequency so the spectrum stays
// below Nyquist.
type Wave []Smp

// removeDCInPlace subtracts the mean from the wave to center it at 0.
func (wave Wave) removeDCInPlace() {
	n := len(wave)
	if n == 0 {
		return
	}
	sum := 0.0
	for _, v := range wave {
		sum += float64(v)
	}
	mean := sum / float64(n)
	if math.Abs(mean) < 1e-12 {
		return
	}
	for i := range wave {
		wave[i] -= Smp(mean)
	}
}

// normalizeInPlace scales the wave so its peak magnitude is 1.
func (wave Wave) normalizeInPlace() {
	peak := 0.0
	for _, v := range wave {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	if peak < 1e-12 {
		return
	}
	for i := range wave {
		wave[i] /= Smp(peak)
	}
}

// sampleAt returns a sample at fractional phase [0,1) with linear
// interpolation between the two nearest table entries.
func (wave Wave) sampleAt(phase Smp) Smp {
	n := len(wave)
	if n == 0 {
		return 0
	}
	p := math.Mod(float64(phase), 1.0)
	if p < 0 {
		p += 1.0
	}
	pos := p * float64(n)
	i0 := int(pos) % n
	frac := pos - math.Floor(pos)
	i1 := (i0 + 1) % n
	return wave[i0] + Smp(frac)*(wave[i1]-wave[i0])
}

// buildFFTLowpass takes a wave and returns a half-size, lowpassed version
// using FFT bin masking. It zeros bins above half the Nyquist of the
// previous level and downsamples by 2.
func (wave Wave) buildFFTLowpass() Wave {
	n := len(wave)
	if n <= 1 {
		return append(Wave(nil), wave...)
	}
	x := make([]complex128, n)
	for i, v := range wave {
		x[i] = complex(float64(v), 0)
	}
	X := fft.FFT(x)

	// Zero upper half of bins (brickwall at N/4 of the original rate,
	// since we will downsample by 2).
	for k := n/4 + 1; k < n-(n/4); k++ {
		X[k] = 0
	}

	xt := fft.IFFT(X)
	nextN := n / 2
	out := make(Wave, nextN)
	for i := range nextN {
		out[i] = Smp(real(xt[2*i]))
	}
	out.removeDCInPlace()
	return out
}

func sineWave(size int) Wave {
	if size == 0 {
		size = DefaultWaveSize
	}
	wave := make(Wave, size)
	for i := range size {
		wave[i] = math.Sin(2 * math.Pi * float64(i) / float64(size))
	}
	return wave
}

// harmonicWave sums sine partials; amps[k] is the amplitude of harmonic
// k+1. Zero amplitudes are skipped.
func harmonicWave(size int, amps []Smp) Wave {
	if size == 0 {
		size = DefaultWaveSize
	}
	wave := make(Wave, size)
	for i := range size {
		phase := 2 * math.Pi * float64(i) / float64(size)
		var smp float64
		for k, amp := range amps {
			if amp == 0 {
				continue
			}
			smp += float64(amp) * math.Sin(float64(k+1)*phase)
		}
		wave[i] = Smp(smp)
	}
	return wave
}

// sawHarmonics is the number of partials in the band-limited saw.
const sawHarmonics = 31

// squareHarmonics is the number of odd partials in the band-limited square.
const squareHarmonics = 16

func bandlimitedSawWave(size int) Wave {
	amps := make([]Smp, sawHarmonics)
	for n := 1; n <= sawHarmonics; n++ {
		amps[n-1] = 1.0 / Smp(n)
	}
	wave := harmonicWave(size, amps)
	wave.normalizeInPlace()
	return wave
}

func bandlimitedSquareWave(size int) Wave {
	// 16 odd harmonics: 1, 3, 5, ... 31, each at 1/n.
	amps := make([]Smp, 2*squareHarmonics-1)
	for k := 0; k < squareHarmonics; k++ {
		n := 2*k + 1
		amps[n-1] = 1.0 / Smp(n)
	}
	wave := harmonicWave(size, amps)
	wave.normalizeInPlace()
	return wave
}

func bandlimitedTriangleWave(size int) Wave {
	// Odd harmonics with alternating signs at 1/n^2.
	amps := make([]Smp, 2*squareHarmonics-1)
	sign := 1.0
	for k := 0; k < squareHarmonics; k++ {
		n := 2*k + 1
		amps[n-1] = Smp(sign / float64(n*n))
		sign = -sign
	}
	wave := harmonicWave(size, amps)
	wave.normalizeInPlace()
	return wave
}

func pulseWave(size int, pw float64) Wave {
	if size == 0 {
		size = DefaultWaveSize
	}
	pw = clamp(pw, 0, 1)
	onSamples := int(math.Round(pw * float64(size)))
	wave := make(Wave, size)
	for i := range size {
		if i < onSamples {
			wave[i] = 1
		} else {
			wave[i] = -1
		}
	}
	wave.removeDCInPlace()
	return wave
}
